package dto

import "time"

// ── 作业 ──

// CreateAssignmentRequest 创建作业
type CreateAssignmentRequest struct {
	CourseID         string     `json:"course_id"         binding:"required,uuid"`
	Title            string     `json:"title"             binding:"required,max=200"`
	Description      string     `json:"description"       binding:"omitempty,max=5000"`
	DueDate          time.Time  `json:"due_date"          binding:"required"`
	NotificationTime *time.Time `json:"notification_time" binding:"omitempty"`
}

// UpdateAssignmentRequest 更新作业（字段为空表示不修改）
type UpdateAssignmentRequest struct {
	CourseID         *string    `json:"course_id"         binding:"omitempty,uuid"`
	Title            *string    `json:"title"             binding:"omitempty,min=1,max=200"`
	Description      *string    `json:"description"       binding:"omitempty,max=5000"`
	DueDate          *time.Time `json:"due_date"          binding:"omitempty"`
	NotificationTime *time.Time `json:"notification_time" binding:"omitempty"`
	// ClearNotification 为 true 时清除通知时间
	ClearNotification bool `json:"clear_notification"`
	// Version 客户端持有的版本号，提供时与当前版本不一致则拒绝
	Version *int `json:"version" binding:"omitempty,min=1"`
}

// ── 考试 ──

// CreateExamRequest 创建考试
type CreateExamRequest struct {
	CourseID         string     `json:"course_id"         binding:"required,uuid"`
	Title            string     `json:"title"             binding:"required,max=200"`
	Description      string     `json:"description"       binding:"omitempty,max=5000"`
	ExamDate         time.Time  `json:"exam_date"         binding:"required"`
	DurationMinutes  int        `json:"duration_minutes"  binding:"min=0,max=1440"`
	Location         string     `json:"location"          binding:"omitempty,max=100"`
	NotificationTime *time.Time `json:"notification_time" binding:"omitempty"`
}

// UpdateExamRequest 更新考试
type UpdateExamRequest struct {
	CourseID          *string    `json:"course_id"         binding:"omitempty,uuid"`
	Title             *string    `json:"title"             binding:"omitempty,min=1,max=200"`
	Description       *string    `json:"description"       binding:"omitempty,max=5000"`
	ExamDate          *time.Time `json:"exam_date"         binding:"omitempty"`
	DurationMinutes   *int       `json:"duration_minutes"  binding:"omitempty,min=0,max=1440"`
	Location          *string    `json:"location"          binding:"omitempty,max=100"`
	NotificationTime  *time.Time `json:"notification_time" binding:"omitempty"`
	ClearNotification bool       `json:"clear_notification"`
	Version           *int       `json:"version"           binding:"omitempty,min=1"`
}

// ── 自定义分类与事项 ──

// CreateCategoryRequest 创建自定义分类
type CreateCategoryRequest struct {
	Name  string `json:"name"  binding:"required,max=50"`
	Icon  string `json:"icon"  binding:"omitempty,max=50"`
	Color string `json:"color" binding:"omitempty,max=20"`
}

// UpdateCategoryRequest 更新自定义分类
type UpdateCategoryRequest struct {
	Name  *string `json:"name"  binding:"omitempty,min=1,max=50"`
	Icon  *string `json:"icon"  binding:"omitempty,max=50"`
	Color *string `json:"color" binding:"omitempty,max=20"`
}

// CategoryResponse 自定义分类
type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCustomItemRequest 创建自定义事项（分类 ID 取自路径）
type CreateCustomItemRequest struct {
	CourseID         *string    `json:"course_id"         binding:"omitempty,uuid"`
	Title            string     `json:"title"             binding:"required,max=200"`
	Description      string     `json:"description"       binding:"omitempty,max=5000"`
	DueDate          time.Time  `json:"due_date"          binding:"required"`
	NotificationTime *time.Time `json:"notification_time" binding:"omitempty"`
}

// UpdateCustomItemRequest 更新自定义事项
type UpdateCustomItemRequest struct {
	CategoryID        *string    `json:"category_id"       binding:"omitempty,uuid"`
	CourseID          *string    `json:"course_id"         binding:"omitempty,uuid"`
	Title             *string    `json:"title"             binding:"omitempty,min=1,max=200"`
	Description       *string    `json:"description"       binding:"omitempty,max=5000"`
	DueDate           *time.Time `json:"due_date"          binding:"omitempty"`
	NotificationTime  *time.Time `json:"notification_time" binding:"omitempty"`
	ClearNotification bool       `json:"clear_notification"`
	ClearCourse       bool       `json:"clear_course"`
	Version           *int       `json:"version"           binding:"omitempty,min=1"`
}

// ── 通用 ──

// WorkItemListRequest 列表筛选
type WorkItemListRequest struct {
	CourseID string `form:"course_id" binding:"omitempty,uuid"`
	Status   string `form:"status"    binding:"omitempty,oneof=pending completed overdue"`
}

// WorkItemResponse 作业 / 考试 / 自定义事项统一响应
type WorkItemResponse struct {
	ID               string     `json:"id"`
	Kind             string     `json:"kind"`
	CourseID         string     `json:"course_id,omitempty"`
	CategoryID       string     `json:"category_id,omitempty"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	DueDate          time.Time  `json:"due_date"`
	DurationMinutes  int        `json:"duration_minutes,omitempty"`
	Location         string     `json:"location,omitempty"`
	NotificationTime *time.Time `json:"notification_time,omitempty"`
	Status           string     `json:"status"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	Version          int        `json:"version"`
}
