package model

import (
	"time"

	"campus-life/backend/internal/scheduling"
)

// Exam 考试表 — 对应 exams
type Exam struct {
	ExamID          string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"exam_id"`
	UserID          string    `gorm:"type:uuid;not null"                             json:"user_id"`
	CourseID        string    `gorm:"type:uuid;not null"                             json:"course_id"`
	ExamDate        time.Time `gorm:"type:timestamptz;not null"                      json:"exam_date"`
	DurationMinutes int       `gorm:"not null;default:0"                             json:"duration_minutes"`
	Location        string    `gorm:"type:varchar(100);not null;default:''"          json:"location"`
	TrackedFields
	VersionedModel
}

// TableName 指定表名
func (Exam) TableName() string { return "exams" }

// WorkItem 转换为状态机快照；考试以开考时间列入待办，以结束时间判定逾期
func (e *Exam) WorkItem() scheduling.WorkItem {
	return scheduling.WorkItem{
		ID:       e.ExamID,
		Kind:     scheduling.KindExam,
		CourseID: e.CourseID,
		Title:    e.Title,
		DueAt:    e.ExamDate,
		Duration: time.Duration(e.DurationMinutes) * time.Minute,
		NotifyAt: e.NotificationTime,
		Status:   scheduling.Status(e.Status),
	}
}
