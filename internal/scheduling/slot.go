package scheduling

import (
	"errors"
	"fmt"
	"strings"
)

// ── 时段冲突检测错误 ──

var (
	// ErrInvalidSlot 候选时段非法（格式错误、星期越界或开始时间不早于结束时间）
	ErrInvalidSlot = errors.New("无效的上课时段")
	// ErrScheduleConflict 与已有课程时段重叠
	ErrScheduleConflict = errors.New("上课时段与已有课程冲突")
)

// TimeSlot 每周重复的上课时段
type TimeSlot struct {
	DayOfWeek int    `json:"day_of_week"` // 0=周日 … 6=周六
	StartTime string `json:"start_time"`  // "HH:MM"，24 小时制补零
	EndTime   string `json:"end_time"`
}

func (s TimeSlot) String() string {
	return fmt.Sprintf("%s %s-%s", WeekdayName(s.DayOfWeek), s.StartTime, s.EndTime)
}

// Course 冲突检测所需的课程快照
type Course struct {
	ID       string
	Name     string
	Schedule []TimeSlot
}

// Conflict 一条冲突记录：候选时段与某课程的某个时段重叠
type Conflict struct {
	CourseID   string   `json:"course_id"`
	CourseName string   `json:"course_name"`
	DayOfWeek  int      `json:"day_of_week"`
	StartTime  string   `json:"start_time"`
	EndTime    string   `json:"end_time"`
	Candidate  TimeSlot `json:"candidate"`
}

// ConflictError 携带完整冲突列表的错误，errors.Is(err, ErrScheduleConflict) 成立
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	parts := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		parts = append(parts, fmt.Sprintf("%s(%s %s-%s)", c.CourseName, WeekdayName(c.DayOfWeek), c.StartTime, c.EndTime))
	}
	return fmt.Sprintf("%s: %s", ErrScheduleConflict.Error(), strings.Join(parts, ", "))
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrScheduleConflict
}

// ValidateSlot 校验单个时段
func ValidateSlot(s TimeSlot) error {
	if s.DayOfWeek < 0 || s.DayOfWeek > 6 {
		return fmt.Errorf("%w: day_of_week=%d 超出 0-6", ErrInvalidSlot, s.DayOfWeek)
	}
	if !isClock(s.StartTime) || !isClock(s.EndTime) {
		return fmt.Errorf("%w: 时间须为 HH:MM 格式 (%s-%s)", ErrInvalidSlot, s.StartTime, s.EndTime)
	}
	// 补零的 24 小时制字符串，字典序即时间序
	if s.StartTime >= s.EndTime {
		return fmt.Errorf("%w: 开始时间 %s 不早于结束时间 %s", ErrInvalidSlot, s.StartTime, s.EndTime)
	}
	return nil
}

// Overlaps 判断两个时段是否重叠（半开区间，端点相接不算冲突）
func Overlaps(a, b TimeSlot) bool {
	if a.DayOfWeek != b.DayOfWeek {
		return false
	}
	return !(a.EndTime <= b.StartTime || a.StartTime >= b.EndTime)
}

// FindConflicts 检查候选时段与其他课程的冲突。
//
// excludeCourseID 对应的课程被跳过（编辑课程时排除自身）；空字符串不排除任何课程。
// 先校验全部候选时段，任一非法即返回 ErrInvalidSlot。
// 不在首个冲突处短路，返回全部冲突供调用方一次性展示。
func FindConflicts(candidates []TimeSlot, excludeCourseID string, courses []Course) ([]Conflict, error) {
	for _, s := range candidates {
		if err := ValidateSlot(s); err != nil {
			return nil, err
		}
	}

	var conflicts []Conflict
	for _, cand := range candidates {
		for _, course := range courses {
			if excludeCourseID != "" && course.ID == excludeCourseID {
				continue
			}
			for _, other := range course.Schedule {
				if !Overlaps(cand, other) {
					continue
				}
				conflicts = append(conflicts, Conflict{
					CourseID:   course.ID,
					CourseName: course.Name,
					DayOfWeek:  other.DayOfWeek,
					StartTime:  other.StartTime,
					EndTime:    other.EndTime,
					Candidate:  cand,
				})
			}
		}
	}
	return conflicts, nil
}

// CheckSchedule 与 FindConflicts 相同，但有冲突时返回 *ConflictError
func CheckSchedule(candidates []TimeSlot, excludeCourseID string, courses []Course) error {
	conflicts, err := FindConflicts(candidates, excludeCourseID, courses)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return &ConflictError{Conflicts: conflicts}
	}
	return nil
}

var weekdayNames = [...]string{"周日", "周一", "周二", "周三", "周四", "周五", "周六"}

// WeekdayName 0-6 → 周日…周六
func WeekdayName(day int) string {
	if day < 0 || day > 6 {
		return fmt.Sprintf("周?(%d)", day)
	}
	return weekdayNames[day]
}

// isClock 校验 "HH:MM"（00:00 - 23:59）
func isClock(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	hh := int(s[0]-'0')*10 + int(s[1]-'0')
	mm := int(s[3]-'0')*10 + int(s[4]-'0')
	return hh < 24 && mm < 60
}
