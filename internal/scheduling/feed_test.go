package scheduling

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assignment(id string, due time.Time) WorkItem {
	return WorkItem{ID: id, Kind: KindAssignment, CourseID: "c-1", Title: id, DueAt: due, Status: StatusPending}
}

func feedIDs(feed []RankedItem) []string {
	ids := make([]string, 0, len(feed))
	for _, r := range feed {
		ids = append(ids, r.Item.ID)
	}
	return ids
}

func TestBuildFeed_ReminderWindow(t *testing.T) {
	viewing := tw(2025, 3, 1, 8, 0)
	feed := BuildFeed(TaiwanClock(), FeedInput{
		Assignments: []WorkItem{
			assignment("in", tw(2025, 3, 2, 20, 0)),
			assignment("out", tw(2025, 3, 3, 8, 0)),
		},
		ViewingInstant:     viewing,
		ReminderWindowDays: 1,
	})

	require.Len(t, feed, 1)
	assert.Equal(t, "in", feed[0].Item.ID)
	assert.Equal(t, 1, feed[0].DaysUntil)
	assert.Equal(t, 1, feed[0].Priority)
	assert.Equal(t, "明天", feed[0].DueLabel)
}

func TestBuildFeed_ExcludesCompletedAndPastDays(t *testing.T) {
	viewing := tw(2025, 3, 1, 8, 0)
	done := assignment("done", tw(2025, 3, 1, 20, 0))
	done.Status = StatusCompleted
	yesterday := assignment("yesterday", tw(2025, 2, 28, 23, 0))
	yesterday.Status = StatusOverdue
	earlierToday := assignment("earlier-today", tw(2025, 3, 1, 0, 30))
	earlierToday.Status = StatusOverdue

	feed := BuildFeed(TaiwanClock(), FeedInput{
		Assignments:        []WorkItem{done, yesterday, earlierToday},
		ViewingInstant:     viewing,
		ReminderWindowDays: 7,
	})

	// 今天稍早已逾期的仍算 daysUntil=0，会留在列表中
	assert.Equal(t, []string{"earlier-today"}, feedIDs(feed))
}

func TestBuildFeed_PriorityAndOrdering(t *testing.T) {
	viewing := tw(2025, 3, 1, 8, 0)
	feed := BuildFeed(TaiwanClock(), FeedInput{
		Assignments: []WorkItem{
			assignment("d5", tw(2025, 3, 6, 9, 0)),
			assignment("d2", tw(2025, 3, 3, 9, 0)),
			assignment("d1-late", tw(2025, 3, 2, 22, 0)),
			assignment("d0", tw(2025, 3, 1, 18, 0)),
		},
		ViewingInstant:     viewing,
		ReminderWindowDays: 7,
	})

	assert.Equal(t, []string{"d0", "d1-late", "d2", "d5"}, feedIDs(feed))
	assert.Equal(t, []int{1, 1, 2, 3}, []int{feed[0].Priority, feed[1].Priority, feed[2].Priority, feed[3].Priority})
}

func TestBuildFeed_StableForEqualKeys(t *testing.T) {
	viewing := tw(2025, 3, 1, 8, 0)
	due := tw(2025, 3, 1, 18, 0)
	a := assignment("first", due)
	b := assignment("second", due)

	in := FeedInput{ViewingInstant: viewing, ReminderWindowDays: 1}

	in.Assignments = []WorkItem{a, b}
	assert.Equal(t, []string{"first", "second"}, feedIDs(BuildFeed(TaiwanClock(), in)))

	in.Assignments = []WorkItem{b, a}
	assert.Equal(t, []string{"second", "first"}, feedIDs(BuildFeed(TaiwanClock(), in)))
}

func TestBuildFeed_SourceOrderAcrossCollections(t *testing.T) {
	viewing := tw(2025, 3, 1, 8, 0)
	due := tw(2025, 3, 1, 18, 0)

	feed := BuildFeed(TaiwanClock(), FeedInput{
		Assignments:        []WorkItem{assignment("hw", due)},
		Exams:              []WorkItem{{ID: "exam", Kind: KindExam, DueAt: due, Duration: time.Hour, Status: StatusPending}},
		CustomItems:        []WorkItem{{ID: "todo", Kind: KindCustom, DueAt: due, Status: StatusPending}},
		ViewingInstant:     viewing,
		ReminderWindowDays: 0,
	})

	assert.Equal(t, []string{"hw", "exam", "todo"}, feedIDs(feed))
}

func TestBuildFeed_ExamSpanningMidnight(t *testing.T) {
	// 前一天 23:30 开考、今天 01:30 结束，仍在进行中
	running := WorkItem{ID: "running", Kind: KindExam, DueAt: tw(2025, 3, 1, 23, 30), Duration: 2 * time.Hour, Status: StatusPending}
	// 后天 23:30 开考，结束在大后天，按结束时间算 2 天
	later := WorkItem{ID: "later", Kind: KindExam, DueAt: tw(2025, 3, 4, 23, 30), Duration: 2 * time.Hour, Status: StatusPending}

	feed := BuildFeed(TaiwanClock(), FeedInput{
		Exams:              []WorkItem{running},
		ViewingInstant:     tw(2025, 3, 2, 0, 30),
		ReminderWindowDays: 0,
	})
	require.Len(t, feed, 1)
	assert.Equal(t, "running", feed[0].Item.ID)
	assert.Equal(t, 0, feed[0].DaysUntil)
	assert.Equal(t, 1, feed[0].Priority)
	assert.Equal(t, "今天", feed[0].DueLabel)

	feed = BuildFeed(TaiwanClock(), FeedInput{
		Exams:              []WorkItem{later},
		ViewingInstant:     tw(2025, 3, 3, 8, 0),
		ReminderWindowDays: 7,
	})
	require.Len(t, feed, 1)
	assert.Equal(t, 2, feed[0].DaysUntil)
	assert.Equal(t, 2, feed[0].Priority)
}

func TestBuildFeed_CustomItemNotificationRule(t *testing.T) {
	viewing := tw(2025, 3, 1, 10, 0)
	notifyPast := tw(2025, 3, 1, 9, 0)
	notifyFuture := tw(2025, 3, 2, 9, 0)

	items := []WorkItem{
		{ID: "notified", Kind: KindCustom, CategoryID: "cat-1", DueAt: tw(2025, 3, 5, 12, 0), NotifyAt: &notifyPast, Status: StatusPending},
		{ID: "not-yet", Kind: KindCustom, CategoryID: "cat-1", DueAt: tw(2025, 3, 5, 12, 0), NotifyAt: &notifyFuture, Status: StatusPending},
		{ID: "no-notify", Kind: KindCustom, CategoryID: "cat-1", DueAt: tw(2025, 3, 5, 12, 0), Status: StatusPending},
		{ID: "due-passed", Kind: KindCustom, CategoryID: "cat-1", DueAt: tw(2025, 2, 28, 12, 0), NotifyAt: &notifyPast, Status: StatusOverdue},
	}

	feed := BuildFeed(TaiwanClock(), FeedInput{
		CustomItems:        items,
		CategoryNames:      map[string]string{"cat-1": "社团"},
		ViewingInstant:     viewing,
		ReminderWindowDays: 0,
	})

	require.Equal(t, []string{"notified"}, feedIDs(feed))
	assert.Equal(t, 4, feed[0].DaysUntil)
	assert.Equal(t, 3, feed[0].Priority)
	assert.Equal(t, "社团", feed[0].CourseLabel)
}

func TestBuildFeed_NotificationRuleOnlyForCustomItems(t *testing.T) {
	viewing := tw(2025, 3, 1, 10, 0)
	notify := tw(2025, 3, 1, 9, 0)
	hw := assignment("hw", tw(2025, 3, 5, 12, 0))
	hw.NotifyAt = &notify

	feed := BuildFeed(TaiwanClock(), FeedInput{
		Assignments:        []WorkItem{hw},
		ViewingInstant:     viewing,
		ReminderWindowDays: 1,
	})
	assert.Empty(t, feed)
}

func TestBuildFeed_Limit(t *testing.T) {
	viewing := tw(2025, 3, 1, 8, 0)
	var items []WorkItem
	for i := 0; i < 7; i++ {
		items = append(items, assignment(fmt.Sprintf("hw-%d", i), tw(2025, 3, 1, 9+i, 0)))
	}

	feed := BuildFeed(TaiwanClock(), FeedInput{
		Assignments:        items,
		ViewingInstant:     viewing,
		ReminderWindowDays: 1,
		Limit:              DefaultFeedLimit,
	})
	assert.Equal(t, []string{"hw-0", "hw-1", "hw-2", "hw-3", "hw-4"}, feedIDs(feed))

	all := BuildFeed(TaiwanClock(), FeedInput{Assignments: items, ViewingInstant: viewing, ReminderWindowDays: 1})
	assert.Len(t, all, 7)
}

func TestBuildFeed_MissingCourseFallsBackToPlaceholder(t *testing.T) {
	viewing := tw(2025, 3, 1, 8, 0)
	known := assignment("known", tw(2025, 3, 1, 12, 0))
	orphan := assignment("orphan", tw(2025, 3, 1, 13, 0))
	orphan.CourseID = "deleted"

	feed := BuildFeed(TaiwanClock(), FeedInput{
		Assignments:        []WorkItem{known, orphan},
		Courses:            []Course{{ID: "c-1", Name: "资料结构"}},
		ViewingInstant:     viewing,
		ReminderWindowDays: 0,
	})

	require.Len(t, feed, 2)
	assert.Equal(t, "资料结构", feed[0].CourseLabel)
	assert.Equal(t, UnknownCourseLabel, feed[1].CourseLabel)
}

func TestReminderSetting_LookaheadDays(t *testing.T) {
	want := map[ReminderSetting]int{
		Reminder15Min: 0, Reminder30Min: 0, Reminder1Hour: 0, Reminder2Hours: 0,
		Reminder1Day: 1, Reminder2Days: 2, Reminder1Week: 7,
	}
	for _, s := range ReminderSettings() {
		assert.Equal(t, want[s], s.LookaheadDays(), string(s))
	}
	assert.Equal(t, 1, ReminderSetting("bogus").LookaheadDays())
}

func TestParseReminderSetting(t *testing.T) {
	s, err := ParseReminderSetting("2days")
	require.NoError(t, err)
	assert.Equal(t, Reminder2Days, s)

	_, err = ParseReminderSetting("3days")
	assert.True(t, errors.Is(err, ErrUnknownReminderSetting))
}
