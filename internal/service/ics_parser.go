package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"campus-life/backend/internal/model"
	"campus-life/backend/internal/scheduling"
)

// ── ICS 解析器 ──────────────────────────────────────────────
//
// 职责：将学校教务系统导出的 iCalendar (RFC 5545) 课表转为课程列表。
//
//   - DTSTART/DTEND 换算到民用时区后确定星期几与上课时间
//   - 每个 VEVENT 视为一个每周重复的时段（课表按周循环）
//   - 同名事件合并为一门课程，相同时段去重
//   - LOCATION 作为教室，跨日或时长非正的事件跳过
// ─────────────────────────────────────────────────────────────

const (
	icsMaxFileSize  = 5 * 1024 * 1024 // 5MB
	icsFetchTimeout = 30 * time.Second
)

// parsedCourseEvent ICS 解析中间结构
type parsedCourseEvent struct {
	Name      string
	Classroom string
	Slot      scheduling.TimeSlot
}

// FetchICSContent 从 URL 获取 ICS 内容
func FetchICSContent(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u := rawURL
	if strings.HasPrefix(u, "webcal://") {
		u = "https://" + strings.TrimPrefix(u, "webcal://")
	}

	ctx, cancel := context.WithTimeout(ctx, icsFetchTimeout)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("构造 ICS 请求失败: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("获取 ICS 失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("获取 ICS 失败: HTTP %d", resp.StatusCode)
	}
	// 限制响应体大小，防止恶意 URL 返回超大内容导致 OOM
	return struct {
		io.Reader
		io.Closer
	}{
		Reader: io.LimitReader(resp.Body, icsMaxFileSize),
		Closer: closerFunc(func() error {
			defer cancel()
			return resp.Body.Close()
		}),
	}, nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// ParseICS 解析 ICS 内容并按课程名聚合为待创建的课程
func ParseICS(reader io.Reader, userID string, loc *time.Location) ([]model.Course, error) {
	cal, err := ics.ParseCalendar(io.LimitReader(reader, icsMaxFileSize))
	if err != nil {
		return nil, fmt.Errorf("ICS 格式解析失败: %w", err)
	}

	var events []parsedCourseEvent
	for _, comp := range cal.Events() {
		evt, ok := parseVEvent(comp, loc)
		if !ok {
			continue
		}
		events = append(events, evt)
	}

	return groupEvents(events, userID), nil
}

// parseVEvent 解析单个 VEVENT 组件
func parseVEvent(evt *ics.VEvent, loc *time.Location) (parsedCourseEvent, bool) {
	summary := evt.GetProperty(ics.ComponentPropertySummary)
	if summary == nil || strings.TrimSpace(summary.Value) == "" {
		return parsedCourseEvent{}, false
	}

	dtStart, err := parseICSDateTime(evt, ics.ComponentPropertyDtStart, loc)
	if err != nil {
		return parsedCourseEvent{}, false
	}
	dtEnd, err := parseICSDateTime(evt, ics.ComponentPropertyDtEnd, loc)
	if err != nil {
		return parsedCourseEvent{}, false
	}
	if !dtEnd.After(dtStart) || dtEnd.YearDay() != dtStart.YearDay() {
		return parsedCourseEvent{}, false
	}

	classroom := ""
	if p := evt.GetProperty(ics.ComponentPropertyLocation); p != nil {
		classroom = strings.TrimSpace(p.Value)
	}

	return parsedCourseEvent{
		Name:      strings.TrimSpace(summary.Value),
		Classroom: classroom,
		Slot: scheduling.TimeSlot{
			DayOfWeek: int(dtStart.Weekday()),
			StartTime: dtStart.Format("15:04"),
			EndTime:   dtEnd.Format("15:04"),
		},
	}, true
}

// groupEvents 同名事件合并为一门课程，保持首次出现顺序
func groupEvents(events []parsedCourseEvent, userID string) []model.Course {
	index := make(map[string]int)
	seen := make(map[string]bool)
	var courses []model.Course

	for _, e := range events {
		i, ok := index[e.Name]
		if !ok {
			i = len(courses)
			index[e.Name] = i
			courses = append(courses, model.Course{
				UserID:    userID,
				Name:      e.Name,
				Classroom: e.Classroom,
				Source:    model.CourseSourceICS,
			})
		}

		key := e.Name + "|" + e.Slot.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		courses[i].Slots = append(courses[i].Slots, model.CourseSlot{
			DayOfWeek: e.Slot.DayOfWeek,
			StartTime: e.Slot.StartTime,
			EndTime:   e.Slot.EndTime,
		})
	}
	return courses
}

// parseICSDateTime 从 VEVENT 中解析日期时间属性并换算到 loc
func parseICSDateTime(evt *ics.VEvent, propName ics.ComponentProperty, loc *time.Location) (time.Time, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, fmt.Errorf("missing property %s", propName)
	}
	val := prop.Value

	tzid := ""
	for k, v := range prop.ICalParameters {
		if strings.ToUpper(k) == "TZID" && len(v) > 0 {
			tzid = v[0]
		}
	}

	for _, layout := range []string{"20060102T150405Z", "20060102T150405"} {
		t, err := time.Parse(layout, val)
		if err != nil {
			continue
		}
		if strings.HasSuffix(layout, "Z") {
			return t.In(loc), nil
		}
		if tzid != "" {
			if tzLoc, err := time.LoadLocation(tzid); err == nil {
				return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, tzLoc).In(loc), nil
			}
		}
		// 浮动时间按民用时区解释
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
	}

	return time.Time{}, fmt.Errorf("无法解析日期: %s", val)
}
