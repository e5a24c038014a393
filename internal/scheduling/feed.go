package scheduling

import (
	"fmt"
	"sort"
	"time"
)

// UnknownCourseLabel 课程已被删除或不存在时的占位名称
const UnknownCourseLabel = "未知课程"

// DefaultFeedLimit 首页待办默认条数
const DefaultFeedLimit = 5

// FeedInput 待办聚合输入快照
type FeedInput struct {
	Assignments []WorkItem
	Exams       []WorkItem
	CustomItems []WorkItem
	// Courses 用于解析课程名称，可为空
	Courses []Course
	// CategoryNames 自定义分类 ID → 名称，可为空
	CategoryNames map[string]string

	ViewingInstant     time.Time
	ReminderWindowDays int
	// Limit <= 0 表示不截断
	Limit int
}

// RankedItem 待办列表中的一项
type RankedItem struct {
	Item        WorkItem `json:"-"`
	DaysUntil   int      `json:"days_until"`
	Priority    int      `json:"priority"` // 1 最紧急
	CourseLabel string   `json:"course_label"`
	DueLabel    string   `json:"due_label"`
}

// BuildFeed 合并作业、考试、自定义事项为按优先级排序的待办列表。
//
// 规则：
//  1. 排除已完成项
//  2. 作业/考试：0 <= daysUntil <= 窗口天数 时纳入，daysUntil 按生效截止时刻（考试为结束时间）计算
//  3. 自定义事项：满足规则 2，或设置了提醒时间且提醒已到（<= 0 天）且截止日未过（>= 0 天）
//  4. 优先级：daysUntil <= 1 → 1，<= 2 → 2，其余 3
//  5. 按 (优先级, 展示时刻) 稳定排序，同键保持输入顺序
//  6. 截断到 Limit
func BuildFeed(clock *CivilClock, in FeedInput) []RankedItem {
	courseNames := make(map[string]string, len(in.Courses))
	for _, c := range in.Courses {
		courseNames[c.ID] = c.Name
	}

	var feed []RankedItem
	consider := func(items []WorkItem) {
		for _, it := range items {
			if it.Status == StatusCompleted {
				continue
			}
			days := clock.DaysDifference(in.ViewingInstant, it.EffectiveDueInstant())
			include := days >= 0 && days <= in.ReminderWindowDays
			if !include && it.Kind == KindCustom && it.NotifyAt != nil {
				include = clock.DaysDifference(in.ViewingInstant, *it.NotifyAt) <= 0 &&
					clock.DaysDifference(in.ViewingInstant, it.DueAt) >= 0
			}
			if !include {
				continue
			}
			feed = append(feed, RankedItem{
				Item:        it,
				DaysUntil:   days,
				Priority:    priorityFor(days),
				CourseLabel: labelFor(it, courseNames, in.CategoryNames),
				DueLabel:    dueLabel(days),
			})
		}
	}
	consider(in.Assignments)
	consider(in.Exams)
	consider(in.CustomItems)

	sort.SliceStable(feed, func(i, j int) bool {
		if feed[i].Priority != feed[j].Priority {
			return feed[i].Priority < feed[j].Priority
		}
		return feed[i].Item.ListingInstant().Before(feed[j].Item.ListingInstant())
	})

	if in.Limit > 0 && len(feed) > in.Limit {
		feed = feed[:in.Limit]
	}
	return feed
}

func priorityFor(days int) int {
	switch {
	case days <= 1:
		return 1
	case days <= 2:
		return 2
	default:
		return 3
	}
}

func labelFor(it WorkItem, courseNames, categoryNames map[string]string) string {
	if it.CourseID != "" {
		if name, ok := courseNames[it.CourseID]; ok {
			return name
		}
		return UnknownCourseLabel
	}
	if it.Kind == KindCustom {
		if name, ok := categoryNames[it.CategoryID]; ok {
			return name
		}
	}
	return UnknownCourseLabel
}

func dueLabel(days int) string {
	switch days {
	case 0:
		return "今天"
	case 1:
		return "明天"
	}
	if days < 0 {
		return fmt.Sprintf("%d天前", -days)
	}
	return fmt.Sprintf("%d天后", days)
}
