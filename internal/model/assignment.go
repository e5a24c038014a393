package model

import (
	"time"

	"campus-life/backend/internal/scheduling"
)

// Assignment 作业表 — 对应 assignments
type Assignment struct {
	AssignmentID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	UserID       string    `gorm:"type:uuid;not null"                             json:"user_id"`
	CourseID     string    `gorm:"type:uuid;not null"                             json:"course_id"`
	DueDate      time.Time `gorm:"type:timestamptz;not null"                      json:"due_date"`
	TrackedFields
	VersionedModel
}

// TableName 指定表名
func (Assignment) TableName() string { return "assignments" }

// WorkItem 转换为状态机快照
func (a *Assignment) WorkItem() scheduling.WorkItem {
	return scheduling.WorkItem{
		ID:       a.AssignmentID,
		Kind:     scheduling.KindAssignment,
		CourseID: a.CourseID,
		Title:    a.Title,
		DueAt:    a.DueDate,
		NotifyAt: a.NotificationTime,
		Status:   scheduling.Status(a.Status),
	}
}
