package model

// UserPreference 用户偏好 — 对应 user_preferences
type UserPreference struct {
	UserID          string `gorm:"type:uuid;primaryKey"                    json:"user_id"`
	ReminderSetting string `gorm:"type:varchar(10);not null;default:'1day'" json:"reminder_setting"`
	BaseModel
}

// TableName 指定表名
func (UserPreference) TableName() string { return "user_preferences" }
