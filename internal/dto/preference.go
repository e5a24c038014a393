package dto

// UpdateReminderRequest 更新提醒设置
type UpdateReminderRequest struct {
	ReminderSetting string `json:"reminder_setting" binding:"required,oneof=15min 30min 1hour 2hours 1day 2days 1week"`
}

// PreferenceResponse 用户偏好
type PreferenceResponse struct {
	ReminderSetting string   `json:"reminder_setting"`
	LookaheadDays   int      `json:"lookahead_days"`
	Options         []string `json:"options"`
}
