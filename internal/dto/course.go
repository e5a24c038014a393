package dto

import (
	"time"

	"campus-life/backend/internal/scheduling"
)

// ── 课程请求 ──

// TimeSlotRequest 上课时段
// day_of_week: 0=周日 … 6=周六；时间格式 HH:MM
type TimeSlotRequest struct {
	DayOfWeek int    `json:"day_of_week" binding:"min=0,max=6"`
	StartTime string `json:"start_time"  binding:"required,len=5"`
	EndTime   string `json:"end_time"    binding:"required,len=5"`
}

// CreateCourseRequest 创建课程
type CreateCourseRequest struct {
	Name       string            `json:"name"       binding:"required,max=100"`
	Instructor string            `json:"instructor" binding:"omitempty,max=100"`
	Classroom  string            `json:"classroom"  binding:"omitempty,max=100"`
	Color      string            `json:"color"      binding:"omitempty,max=20"`
	Schedule   []TimeSlotRequest `json:"schedule"   binding:"required,min=1,dive"`
}

// UpdateCourseRequest 更新课程（时段整体替换）
type UpdateCourseRequest struct {
	Name       string            `json:"name"       binding:"required,max=100"`
	Instructor string            `json:"instructor" binding:"omitempty,max=100"`
	Classroom  string            `json:"classroom"  binding:"omitempty,max=100"`
	Color      string            `json:"color"      binding:"omitempty,max=20"`
	Schedule   []TimeSlotRequest `json:"schedule"   binding:"required,min=1,dive"`
	// Version 客户端持有的版本号，提供时与当前版本不一致则拒绝
	Version *int `json:"version" binding:"omitempty,min=1"`
}

// CheckConflictsRequest 冲突预检
type CheckConflictsRequest struct {
	Schedule        []TimeSlotRequest `json:"schedule"          binding:"required,min=1,dive"`
	ExcludeCourseID string            `json:"exclude_course_id" binding:"omitempty,uuid"`
}

// ImportICSRequest 通过 URL 导入 ICS 课表（支持 webcal://）
type ImportICSRequest struct {
	URL string `json:"url" binding:"required,max=2048"`
}

// ToSlots 转换为冲突检测使用的时段值
func ToSlots(reqs []TimeSlotRequest) []scheduling.TimeSlot {
	slots := make([]scheduling.TimeSlot, 0, len(reqs))
	for _, r := range reqs {
		slots = append(slots, scheduling.TimeSlot{DayOfWeek: r.DayOfWeek, StartTime: r.StartTime, EndTime: r.EndTime})
	}
	return slots
}

// ── 课程响应 ──

// TimeSlotResponse 时段
type TimeSlotResponse struct {
	DayOfWeek   int    `json:"day_of_week"`
	WeekdayName string `json:"weekday_name"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

// CourseResponse 课程详情
type CourseResponse struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Instructor string             `json:"instructor"`
	Classroom  string             `json:"classroom"`
	Color      string             `json:"color"`
	Source     string             `json:"source"`
	Schedule   []TimeSlotResponse `json:"schedule"`
	Version    int                `json:"version"`
	CreatedAt  time.Time          `json:"created_at"`
}

// ConflictCheckResponse 冲突预检结果
type ConflictCheckResponse struct {
	HasConflict bool                  `json:"has_conflict"`
	Conflicts   []scheduling.Conflict `json:"conflicts"`
}

// ImportICSResponse ICS 导入结果
type ImportICSResponse struct {
	ImportedCount int              `json:"imported_count"`
	Courses       []CourseResponse `json:"courses"`
}
