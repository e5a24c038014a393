package model

import (
	"time"

	"campus-life/backend/internal/scheduling"
)

// CustomCategory 自定义分类 — 对应 custom_categories
type CustomCategory struct {
	CategoryID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"category_id"`
	UserID     string `gorm:"type:uuid;not null"                             json:"user_id"`
	Name       string `gorm:"type:varchar(50);not null"                      json:"name"`
	Icon       string `gorm:"type:varchar(50);not null;default:''"           json:"icon"`
	Color      string `gorm:"type:varchar(20);not null;default:''"           json:"color"`
	SoftDeleteModel
}

// TableName 指定表名
func (CustomCategory) TableName() string { return "custom_categories" }

// CustomItem 自定义事项 — 对应 custom_items
type CustomItem struct {
	ItemID     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"item_id"`
	CategoryID string    `gorm:"type:uuid;not null"                             json:"category_id"`
	UserID     string    `gorm:"type:uuid;not null"                             json:"user_id"`
	CourseID   *string   `gorm:"type:uuid"                                      json:"course_id,omitempty"`
	DueDate    time.Time `gorm:"type:timestamptz;not null"                      json:"due_date"`
	TrackedFields
	VersionedModel
}

// TableName 指定表名
func (CustomItem) TableName() string { return "custom_items" }

// WorkItem 转换为状态机快照
func (c *CustomItem) WorkItem() scheduling.WorkItem {
	item := scheduling.WorkItem{
		ID:         c.ItemID,
		Kind:       scheduling.KindCustom,
		CategoryID: c.CategoryID,
		Title:      c.Title,
		DueAt:      c.DueDate,
		NotifyAt:   c.NotificationTime,
		Status:     scheduling.Status(c.Status),
	}
	if c.CourseID != nil {
		item.CourseID = *c.CourseID
	}
	return item
}
