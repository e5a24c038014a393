package scheduling

import "time"

// Status 待办状态
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusOverdue   Status = "overdue"
)

// Valid 是否为已知状态
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusOverdue:
		return true
	}
	return false
}

// Kind 待办种类（作业 / 考试 / 自定义分类事项）
type Kind string

const (
	KindAssignment Kind = "assignment"
	KindExam       Kind = "exam"
	KindCustom     Kind = "custom"
)

// WorkItem 作业、考试、自定义事项的统一快照。
//
// 考试的 DueAt 为开考时间，Duration 为考试时长；
// 作业与自定义事项的 Duration 为 0。
type WorkItem struct {
	ID         string
	Kind       Kind
	CourseID   string
	CategoryID string // 仅自定义事项
	Title      string
	DueAt      time.Time
	Duration   time.Duration
	NotifyAt   *time.Time
	Status     Status
}

// EffectiveDueInstant 判定逾期的时刻：考试为结束时间，其余为截止时间
func (w WorkItem) EffectiveDueInstant() time.Time {
	if w.Kind == KindExam {
		return w.DueAt.Add(w.Duration)
	}
	return w.DueAt
}

// ListingInstant 待办列表中的参照时刻；考试按开考时间展示与排序
func (w WorkItem) ListingInstant() time.Time {
	return w.DueAt
}

// ReconcileStatus 按参照时刻推导状态，返回新值，不修改入参。
//
//	completed → completed（只有用户显式操作才能离开）
//	pending   → overdue   当 ref > 有效截止时刻
//	overdue   → pending   当 ref <= 有效截止时刻（截止时间被改到未来）
//
// 恰好等于有效截止时刻时不算逾期。
func ReconcileStatus(item WorkItem, ref time.Time) WorkItem {
	out := item
	switch item.Status {
	case StatusCompleted:
		return out
	case StatusOverdue:
		if !ref.After(item.EffectiveDueInstant()) {
			out.Status = StatusPending
		}
	default:
		if ref.After(item.EffectiveDueInstant()) {
			out.Status = StatusOverdue
		} else {
			out.Status = StatusPending
		}
	}
	return out
}

// ReconcileAll 批量推导；changed 为状态发生变化的下标
func ReconcileAll(items []WorkItem, ref time.Time) (out []WorkItem, changed []int) {
	out = make([]WorkItem, len(items))
	for i, it := range items {
		out[i] = ReconcileStatus(it, ref)
		if out[i].Status != it.Status {
			changed = append(changed, i)
		}
	}
	return out, changed
}

// Complete 用户标记完成
func Complete(item WorkItem) WorkItem {
	out := item
	out.Status = StatusCompleted
	return out
}

// Reopen 用户取消完成：回到 pending 后立即按 ref 推导，已过期则直接为 overdue
func Reopen(item WorkItem, ref time.Time) WorkItem {
	out := item
	out.Status = StatusPending
	return ReconcileStatus(out, ref)
}
