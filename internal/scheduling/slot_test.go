package scheduling

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlaps_Symmetric(t *testing.T) {
	slots := []TimeSlot{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00"},
		{DayOfWeek: 1, StartTime: "10:00", EndTime: "11:00"},
		{DayOfWeek: 1, StartTime: "09:30", EndTime: "10:30"},
		{DayOfWeek: 1, StartTime: "08:00", EndTime: "12:00"},
		{DayOfWeek: 1, StartTime: "11:00", EndTime: "11:30"},
		{DayOfWeek: 2, StartTime: "09:00", EndTime: "10:00"},
	}
	for _, a := range slots {
		for _, b := range slots {
			assert.Equal(t, Overlaps(a, b), Overlaps(b, a), "%s vs %s", a, b)
		}
	}
}

func TestOverlaps_TouchingEndpointsDoNotConflict(t *testing.T) {
	a := TimeSlot{DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00"}
	b := TimeSlot{DayOfWeek: 1, StartTime: "10:00", EndTime: "11:00"}
	assert.False(t, Overlaps(a, b))
	assert.False(t, Overlaps(b, a))
}

func TestOverlaps_DifferentDay(t *testing.T) {
	a := TimeSlot{DayOfWeek: 1, StartTime: "09:00", EndTime: "11:00"}
	b := TimeSlot{DayOfWeek: 2, StartTime: "09:00", EndTime: "11:00"}
	assert.False(t, Overlaps(a, b))
}

func TestFindConflicts_ConflictDetected(t *testing.T) {
	courses := []Course{
		{ID: "c-a", Name: "Course A", Schedule: []TimeSlot{{DayOfWeek: 1, StartTime: "09:00", EndTime: "11:00"}}},
	}
	candidate := []TimeSlot{{DayOfWeek: 1, StartTime: "10:00", EndTime: "12:00"}}

	conflicts, err := FindConflicts(candidate, "", courses)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "Course A", conflicts[0].CourseName)
	assert.Equal(t, 1, conflicts[0].DayOfWeek)
	assert.Equal(t, "09:00", conflicts[0].StartTime)
	assert.Equal(t, "11:00", conflicts[0].EndTime)
}

func TestFindConflicts_AdjacentSlots(t *testing.T) {
	courses := []Course{
		{ID: "c-a", Name: "Course A", Schedule: []TimeSlot{{DayOfWeek: 1, StartTime: "09:00", EndTime: "11:00"}}},
	}
	candidate := []TimeSlot{{DayOfWeek: 1, StartTime: "11:00", EndTime: "13:00"}}

	conflicts, err := FindConflicts(candidate, "", courses)
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestFindConflicts_SelfExclusionOnEdit(t *testing.T) {
	x := Course{ID: "c-x", Name: "X", Schedule: []TimeSlot{{DayOfWeek: 3, StartTime: "13:00", EndTime: "15:00"}}}
	courses := []Course{x, {ID: "c-y", Name: "Y", Schedule: []TimeSlot{{DayOfWeek: 4, StartTime: "13:00", EndTime: "15:00"}}}}

	// 把自己的时段往后挪 30 分钟，仍与原时段重叠，但排除自身后不应报冲突
	edited := []TimeSlot{{DayOfWeek: 3, StartTime: "13:30", EndTime: "15:30"}}
	conflicts, err := FindConflicts(edited, x.ID, courses)
	require.NoError(t, err)
	assert.Empty(t, conflicts)

	conflicts, err = FindConflicts(edited, "", courses)
	require.NoError(t, err)
	assert.Len(t, conflicts, 1)
}

func TestFindConflicts_ReportsEveryConflict(t *testing.T) {
	courses := []Course{
		{ID: "c-1", Name: "微积分", Schedule: []TimeSlot{
			{DayOfWeek: 1, StartTime: "08:10", EndTime: "10:00"},
			{DayOfWeek: 3, StartTime: "08:10", EndTime: "10:00"},
		}},
		{ID: "c-2", Name: "普通物理", Schedule: []TimeSlot{
			{DayOfWeek: 1, StartTime: "09:10", EndTime: "12:00"},
		}},
	}
	candidate := []TimeSlot{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00"},
		{DayOfWeek: 3, StartTime: "09:00", EndTime: "09:30"},
	}

	conflicts, err := FindConflicts(candidate, "", courses)
	require.NoError(t, err)
	require.Len(t, conflicts, 3)
	assert.Equal(t, "微积分", conflicts[0].CourseName)
	assert.Equal(t, "普通物理", conflicts[1].CourseName)
	assert.Equal(t, 3, conflicts[2].DayOfWeek)
}

func TestFindConflicts_InvalidSlot(t *testing.T) {
	tests := []struct {
		name string
		slot TimeSlot
	}{
		{"开始等于结束", TimeSlot{DayOfWeek: 1, StartTime: "10:00", EndTime: "10:00"}},
		{"开始晚于结束", TimeSlot{DayOfWeek: 1, StartTime: "11:00", EndTime: "10:00"}},
		{"星期越界", TimeSlot{DayOfWeek: 7, StartTime: "09:00", EndTime: "10:00"}},
		{"未补零", TimeSlot{DayOfWeek: 1, StartTime: "9:00", EndTime: "10:00"}},
		{"小时越界", TimeSlot{DayOfWeek: 1, StartTime: "09:00", EndTime: "24:00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FindConflicts([]TimeSlot{tt.slot}, "", nil)
			assert.True(t, errors.Is(err, ErrInvalidSlot), "got %v", err)
		})
	}
}

func TestCheckSchedule_ReturnsConflictError(t *testing.T) {
	courses := []Course{
		{ID: "c-a", Name: "Course A", Schedule: []TimeSlot{{DayOfWeek: 1, StartTime: "09:00", EndTime: "11:00"}}},
	}
	err := CheckSchedule([]TimeSlot{{DayOfWeek: 1, StartTime: "10:00", EndTime: "12:00"}}, "", courses)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrScheduleConflict))

	var ce *ConflictError
	require.True(t, errors.As(err, &ce))
	assert.Len(t, ce.Conflicts, 1)

	assert.NoError(t, CheckSchedule([]TimeSlot{{DayOfWeek: 2, StartTime: "10:00", EndTime: "12:00"}}, "", courses))
}
