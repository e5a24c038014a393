package scheduling

import (
	"errors"
	"fmt"
)

// ErrUnknownReminderSetting 未知的提醒提前量
var ErrUnknownReminderSetting = errors.New("未知的提醒设置")

// ReminderSetting 提醒提前量配置
type ReminderSetting string

const (
	Reminder15Min  ReminderSetting = "15min"
	Reminder30Min  ReminderSetting = "30min"
	Reminder1Hour  ReminderSetting = "1hour"
	Reminder2Hours ReminderSetting = "2hours"
	Reminder1Day   ReminderSetting = "1day"
	Reminder2Days  ReminderSetting = "2days"
	Reminder1Week  ReminderSetting = "1week"

	DefaultReminderSetting = Reminder1Day
)

// 不足一天的提前量统一折算为 0 天（仅当天）
var reminderLookahead = map[ReminderSetting]int{
	Reminder15Min:  0,
	Reminder30Min:  0,
	Reminder1Hour:  0,
	Reminder2Hours: 0,
	Reminder1Day:   1,
	Reminder2Days:  2,
	Reminder1Week:  7,
}

// ReminderSettings 全部可选值（按提前量升序）
func ReminderSettings() []ReminderSetting {
	return []ReminderSetting{
		Reminder15Min, Reminder30Min, Reminder1Hour, Reminder2Hours,
		Reminder1Day, Reminder2Days, Reminder1Week,
	}
}

// ParseReminderSetting 解析配置值
func ParseReminderSetting(v string) (ReminderSetting, error) {
	s := ReminderSetting(v)
	if _, ok := reminderLookahead[s]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownReminderSetting, v)
	}
	return s, nil
}

// LookaheadDays 待办聚合窗口天数；未知值按默认设置处理
func (r ReminderSetting) LookaheadDays() int {
	if d, ok := reminderLookahead[r]; ok {
		return d
	}
	return reminderLookahead[DefaultReminderSetting]
}
