package model

import "campus-life/backend/internal/scheduling"

// 课程来源
const (
	CourseSourceManual = "manual"
	CourseSourceICS    = "ics"
)

// Course 课程表 — 对应 courses
type Course struct {
	CourseID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	UserID     string `gorm:"type:uuid;not null"                             json:"user_id"`
	Name       string `gorm:"type:varchar(100);not null"                     json:"name"`
	Instructor string `gorm:"type:varchar(100);not null;default:''"          json:"instructor"`
	Classroom  string `gorm:"type:varchar(100);not null;default:''"          json:"classroom"`
	Color      string `gorm:"type:varchar(20);not null;default:''"           json:"color"`
	Source     string `gorm:"type:varchar(20);not null;default:'manual'"     json:"source"`
	VersionedModel

	// 关联
	Slots []CourseSlot `gorm:"foreignKey:CourseID;references:CourseID" json:"slots"`
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// CourseSlot 上课时段 — 对应 course_slots
type CourseSlot struct {
	CourseSlotID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_slot_id"`
	CourseID     string `gorm:"type:uuid;not null"                             json:"course_id"`
	DayOfWeek    int    `gorm:"type:smallint;not null"                         json:"day_of_week"` // 0=周日 … 6=周六
	StartTime    string `gorm:"type:varchar(5);not null"                       json:"start_time"`
	EndTime      string `gorm:"type:varchar(5);not null"                       json:"end_time"`
}

// TableName 指定表名
func (CourseSlot) TableName() string { return "course_slots" }

// ToScheduling 转换为冲突检测使用的课程快照
func (c *Course) ToScheduling() scheduling.Course {
	slots := make([]scheduling.TimeSlot, 0, len(c.Slots))
	for _, s := range c.Slots {
		slots = append(slots, scheduling.TimeSlot{DayOfWeek: s.DayOfWeek, StartTime: s.StartTime, EndTime: s.EndTime})
	}
	return scheduling.Course{ID: c.CourseID, Name: c.Name, Schedule: slots}
}

// CoursesToScheduling 批量转换
func CoursesToScheduling(courses []Course) []scheduling.Course {
	out := make([]scheduling.Course, 0, len(courses))
	for i := range courses {
		out = append(out, courses[i].ToScheduling())
	}
	return out
}

// SlotsFromScheduling 由时段值构造待持久化的 CourseSlot
func SlotsFromScheduling(slots []scheduling.TimeSlot) []CourseSlot {
	out := make([]CourseSlot, 0, len(slots))
	for _, s := range slots {
		out = append(out, CourseSlot{DayOfWeek: s.DayOfWeek, StartTime: s.StartTime, EndTime: s.EndTime})
	}
	return out
}
