package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"campus-life/backend/internal/model"
	"campus-life/backend/internal/repository"
	"campus-life/backend/internal/scheduling"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoCourses    = errors.New("暂无课程可导出")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置响应头后写入 Response
type ExportService interface {
	// ExportTimetable 导出周课表与未完成事项为 Excel
	ExportTimetable(ctx context.Context, userID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	clock  *scheduling.CivilClock
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, clock *scheduling.CivilClock, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, clock: clock, logger: logger}
}

// 周一在前、周日在后
var exportDayOrder = []int{1, 2, 3, 4, 5, 6, 0}

const (
	sheetTimetable = "课表"
	sheetTodo      = "未完成事项"
)

// ═══════════════════════════════════════════════════════════
// ExportTimetable
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "课表"：行为时间段（按开始时间排序），列为周一 ~ 周日，单元格为 课程名 @ 教室
//   - Sheet "未完成事项"：作业、考试、自定义事项中未完成的条目，按截止时间排序

func (s *exportService) ExportTimetable(ctx context.Context, userID string) (*bytes.Buffer, string, error) {
	courses, err := s.repo.Course.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, "", err
	}
	if len(courses) == 0 {
		return nil, "", ErrExportNoCourses
	}

	rows, err := s.openRows(ctx, userID, courses)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, _ := f.NewSheet(sheetTimetable)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")
	f.NewSheet(sheetTodo)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	writeTimetable(f, courses, headerStyle)
	writeTodoSheet(f, rows, s.clock.Location(), headerStyle)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("课表_%s.xlsx", s.clock.Now().Format("20060102"))
	return buf, filename, nil
}

// ── 课表 Sheet ──

func writeTimetable(f *excelize.File, courses []model.Course, headerStyle int) {
	type span struct{ start, end string }

	cells := make(map[string][]string) // "dow:start:end" → 课程
	seen := make(map[span]bool)
	var spans []span

	for _, c := range courses {
		label := c.Name
		if c.Classroom != "" {
			label += " @ " + c.Classroom
		}
		for _, sl := range c.Slots {
			sp := span{sl.StartTime, sl.EndTime}
			if !seen[sp] {
				seen[sp] = true
				spans = append(spans, sp)
			}
			key := fmt.Sprintf("%d:%s:%s", sl.DayOfWeek, sl.StartTime, sl.EndTime)
			cells[key] = append(cells[key], label)
		}
	}
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end < spans[j].end
	})

	f.SetColWidth(sheetTimetable, "A", "A", 14)
	f.SetColWidth(sheetTimetable, "B", colName(len(exportDayOrder)), 22)

	f.SetCellValue(sheetTimetable, "A1", "时间")
	for i, dow := range exportDayOrder {
		f.SetCellValue(sheetTimetable, cell(colName(i+1), 1), scheduling.WeekdayName(dow))
	}
	f.SetCellStyle(sheetTimetable, "A1", cell(colName(len(exportDayOrder)), 1), headerStyle)

	for r, sp := range spans {
		row := r + 2
		f.SetCellValue(sheetTimetable, cell("A", row), sp.start+"-"+sp.end)
		for i, dow := range exportDayOrder {
			text := "-"
			if labels, ok := cells[fmt.Sprintf("%d:%s:%s", dow, sp.start, sp.end)]; ok {
				text = joinLabels(labels)
			}
			f.SetCellValue(sheetTimetable, cell(colName(i+1), row), text)
		}
	}
}

// ── 未完成事项 Sheet ──

type exportRow struct {
	kind   string
	title  string
	label  string
	start  time.Time
	end    time.Time
	status string
}

func (s *exportService) openRows(ctx context.Context, userID string, courses []model.Course) ([]exportRow, error) {
	names := make(map[string]string, len(courses))
	for _, c := range courses {
		names[c.CourseID] = c.Name
	}
	courseLabel := func(id string) string {
		if n, ok := names[id]; ok {
			return n
		}
		return scheduling.UnknownCourseLabel
	}
	now := s.clock.Now()
	open := func(item scheduling.WorkItem) (string, bool) {
		st := scheduling.ReconcileStatus(item, now).Status
		return string(st), st != scheduling.StatusCompleted
	}

	var rows []exportRow

	assignments, err := s.repo.Assignment.ListByUser(ctx, userID, repository.WorkItemFilter{})
	if err != nil {
		s.logger.Error("查询作业失败", zap.Error(err))
		return nil, err
	}
	for i := range assignments {
		a := &assignments[i]
		if st, ok := open(a.WorkItem()); ok {
			rows = append(rows, exportRow{"作业", a.Title, courseLabel(a.CourseID), a.DueDate, a.DueDate, st})
		}
	}

	exams, err := s.repo.Exam.ListByUser(ctx, userID, repository.WorkItemFilter{})
	if err != nil {
		s.logger.Error("查询考试失败", zap.Error(err))
		return nil, err
	}
	for i := range exams {
		e := &exams[i]
		if st, ok := open(e.WorkItem()); ok {
			rows = append(rows, exportRow{"考试", e.Title, courseLabel(e.CourseID), e.ExamDate, examEnd(e), st})
		}
	}

	categories, err := s.repo.CustomCategory.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询分类失败", zap.Error(err))
		return nil, err
	}
	catNames := make(map[string]string, len(categories))
	for _, c := range categories {
		catNames[c.CategoryID] = c.Name
	}

	customs, err := s.repo.CustomItem.ListByUser(ctx, userID, repository.WorkItemFilter{})
	if err != nil {
		s.logger.Error("查询自定义事项失败", zap.Error(err))
		return nil, err
	}
	for i := range customs {
		c := &customs[i]
		if st, ok := open(c.WorkItem()); ok {
			rows = append(rows, exportRow{"自定义", c.Title, catNames[c.CategoryID], c.DueDate, c.DueDate, st})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].start.Before(rows[j].start) })
	return rows, nil
}

func writeTodoSheet(f *excelize.File, rows []exportRow, loc *time.Location, headerStyle int) {
	headers := []string{"类型", "标题", "课程/分类", "开始", "截止", "状态"}
	for i, h := range headers {
		f.SetCellValue(sheetTodo, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheetTodo, "A1", cell(colName(len(headers)-1), 1), headerStyle)
	f.SetColWidth(sheetTodo, "B", "B", 30)
	f.SetColWidth(sheetTodo, "C", "C", 18)
	f.SetColWidth(sheetTodo, "D", "E", 18)

	const layout = "2006-01-02 15:04"
	for r, row := range rows {
		n := r + 2
		f.SetCellValue(sheetTodo, cell("A", n), row.kind)
		f.SetCellValue(sheetTodo, cell("B", n), row.title)
		f.SetCellValue(sheetTodo, cell("C", n), row.label)
		f.SetCellValue(sheetTodo, cell("D", n), row.start.In(loc).Format(layout))
		f.SetCellValue(sheetTodo, cell("E", n), row.end.In(loc).Format(layout))
		f.SetCellValue(sheetTodo, cell("F", n), row.status)
	}
}

// ── 辅助函数 ──

func joinLabels(labels []string) string {
	out := labels[0]
	for _, l := range labels[1:] {
		out += "\n" + l
	}
	return out
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
