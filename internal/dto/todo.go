package dto

import "time"

// TodoFeedRequest 待办列表查询
// limit 缺省时取配置值，0 表示不截断
type TodoFeedRequest struct {
	Limit *int `form:"limit" binding:"omitempty,min=0,max=100"`
}

// TodoItemResponse 待办条目
type TodoItemResponse struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Title       string    `json:"title"`
	CourseID    string    `json:"course_id,omitempty"`
	CourseLabel string    `json:"course_label"`
	DueDate     time.Time `json:"due_date"`
	Status      string    `json:"status"`
	DaysUntil   int       `json:"days_until"`
	Priority    int       `json:"priority"`
	DueLabel    string    `json:"due_label"`
}

// TodoFeedResponse 待办列表
type TodoFeedResponse struct {
	ReminderSetting string             `json:"reminder_setting"`
	WindowDays      int                `json:"window_days"`
	GeneratedAt     time.Time          `json:"generated_at"`
	Items           []TodoItemResponse `json:"items"`
}
