package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-life/backend/internal/dto"
	"campus-life/backend/internal/model"
	"campus-life/backend/internal/repository"
	"campus-life/backend/internal/scheduling"
	pkgerrors "campus-life/backend/pkg/errors"
	"campus-life/backend/pkg/metrics"
)

// ── 课程模块业务错误 ──

var (
	ErrCourseNotFound     = errors.New("课程不存在")
	ErrICSParseFailed     = errors.New("ICS 文件解析失败")
	ErrICSEmpty           = errors.New("ICS 文件中未发现有效课程事件")
	ErrCourseVersionStale = errors.New("课程已被其他操作修改，请刷新后重试")
)

// ── CourseService 接口 ──────────────────────────────────────
//
//   - 创建 / 更新 / 导入均在仓储事务内完成"读取现有课程 → 冲突检测 → 写入"，
//     任一时段非法或与其他课程重叠时整体拒绝，返回全部冲突。
//   - 更新时排除课程自身的原有时段。
//   - 删除课程不级联删除作业、考试；待办中其课程名回退为占位文字。
// ─────────────────────────────────────────────────────────────

// CourseService 课程业务接口
type CourseService interface {
	Create(ctx context.Context, req *dto.CreateCourseRequest, userID string) (*dto.CourseResponse, error)
	GetByID(ctx context.Context, id, userID string) (*dto.CourseResponse, error)
	List(ctx context.Context, userID string) ([]dto.CourseResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateCourseRequest, userID string) (*dto.CourseResponse, error)
	Delete(ctx context.Context, id, userID string) error
	// CheckConflicts 冲突预检，不写入
	CheckConflicts(ctx context.Context, req *dto.CheckConflictsRequest, userID string) (*dto.ConflictCheckResponse, error)
	// ImportICS 从 ICS 课表批量创建课程
	ImportICS(ctx context.Context, reader io.Reader, userID string) (*dto.ImportICSResponse, error)
}

type courseService struct {
	repo    *repository.Repository
	clock   *scheduling.CivilClock
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, clock *scheduling.CivilClock, m *metrics.Metrics, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, clock: clock, metrics: m, logger: logger}
}

// conflictCheck 生成仓储事务内执行的冲突检测
func (s *courseService) conflictCheck(slots []scheduling.TimeSlot, excludeID string) repository.CourseCheck {
	return func(existing []model.Course) error {
		conflicts, err := scheduling.FindConflicts(slots, excludeID, model.CoursesToScheduling(existing))
		if err != nil {
			return err
		}
		s.metrics.ObserveConflictCheck(len(conflicts))
		if len(conflicts) > 0 {
			return &scheduling.ConflictError{Conflicts: conflicts}
		}
		return nil
	}
}

// ────────────────────── Create ──────────────────────

func (s *courseService) Create(ctx context.Context, req *dto.CreateCourseRequest, userID string) (*dto.CourseResponse, error) {
	slots := dto.ToSlots(req.Schedule)

	course := &model.Course{
		UserID:     userID,
		Name:       req.Name,
		Instructor: req.Instructor,
		Classroom:  req.Classroom,
		Color:      req.Color,
		Source:     model.CourseSourceManual,
		Slots:      model.SlotsFromScheduling(slots),
	}
	course.CreatedBy = &userID
	course.UpdatedBy = &userID

	if err := s.repo.Course.Create(ctx, course, s.conflictCheck(slots, "")); err != nil {
		if isScheduleRejection(err) {
			return nil, err
		}
		s.logger.Error("创建课程失败", zap.Error(err))
		return nil, err
	}

	return toCourseResponse(course), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *courseService) GetByID(ctx context.Context, id, userID string) (*dto.CourseResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return toCourseResponse(course), nil
}

// ────────────────────── List ──────────────────────

func (s *courseService) List(ctx context.Context, userID string) ([]dto.CourseResponse, error) {
	courses, err := s.repo.Course.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		result = append(result, *toCourseResponse(&courses[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *courseService) Update(ctx context.Context, id string, req *dto.UpdateCourseRequest, userID string) (*dto.CourseResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if err := checkClientVersion(req.Version, course.Version, ErrCourseVersionStale); err != nil {
		return nil, err
	}

	slots := dto.ToSlots(req.Schedule)
	course.Name = req.Name
	course.Instructor = req.Instructor
	course.Classroom = req.Classroom
	course.Color = req.Color
	course.Slots = model.SlotsFromScheduling(slots)
	course.UpdatedBy = &userID

	if err := s.repo.Course.Update(ctx, course, s.conflictCheck(slots, course.CourseID)); err != nil {
		if isScheduleRejection(err) {
			return nil, err
		}
		if pkgerrors.IsOptimisticLock(err) {
			return nil, ErrCourseVersionStale
		}
		s.logger.Error("更新课程失败", zap.String("course_id", id), zap.Error(err))
		return nil, err
	}

	return toCourseResponse(course), nil
}

// ────────────────────── Delete ──────────────────────

func (s *courseService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.repo.Course.GetByID(ctx, userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}

	if err := s.repo.Course.Delete(ctx, userID, id); err != nil {
		s.logger.Error("删除课程失败", zap.String("course_id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── CheckConflicts ──────────────────────

func (s *courseService) CheckConflicts(ctx context.Context, req *dto.CheckConflictsRequest, userID string) (*dto.ConflictCheckResponse, error) {
	courses, err := s.repo.Course.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Error(err))
		return nil, err
	}

	conflicts, err := scheduling.FindConflicts(dto.ToSlots(req.Schedule), req.ExcludeCourseID, model.CoursesToScheduling(courses))
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveConflictCheck(len(conflicts))

	if conflicts == nil {
		conflicts = []scheduling.Conflict{}
	}
	return &dto.ConflictCheckResponse{
		HasConflict: len(conflicts) > 0,
		Conflicts:   conflicts,
	}, nil
}

// ════════════════════════════════════════════════════════════
// ImportICS — 导入 ICS 课表
// ════════════════════════════════════════════════════════════
//
// 导入的每门课依次与"已有课程 + 本次先导入的课程"比较；
// 存在任何冲突时整批拒绝，冲突列表一并返回。

func (s *courseService) ImportICS(ctx context.Context, reader io.Reader, userID string) (*dto.ImportICSResponse, error) {
	courses, err := ParseICS(reader, userID, s.clock.Location())
	if err != nil {
		s.logger.Warn("ICS 解析失败", zap.Error(err))
		return nil, ErrICSParseFailed
	}
	if len(courses) == 0 {
		return nil, ErrICSEmpty
	}
	for i := range courses {
		courses[i].CreatedBy = &userID
		courses[i].UpdatedBy = &userID
	}

	check := func(existing []model.Course) error {
		known := model.CoursesToScheduling(existing)
		var all []scheduling.Conflict
		for i := range courses {
			candidate := courses[i].ToScheduling()
			conflicts, err := scheduling.FindConflicts(candidate.Schedule, "", known)
			if err != nil {
				return fmt.Errorf("课程 %q: %w", candidate.Name, err)
			}
			all = append(all, conflicts...)
			// 导入批次内部也不能互相重叠；尚未落库的课程 ID 为空
			known = append(known, candidate)
		}
		s.metrics.ObserveConflictCheck(len(all))
		if len(all) > 0 {
			return &scheduling.ConflictError{Conflicts: all}
		}
		return nil
	}

	if err := s.repo.Course.BatchCreate(ctx, userID, courses, check); err != nil {
		if isScheduleRejection(err) {
			return nil, err
		}
		s.logger.Error("课表导入事务失败", zap.Error(err))
		return nil, fmt.Errorf("课表导入失败: %w", err)
	}

	resp := &dto.ImportICSResponse{
		ImportedCount: len(courses),
		Courses:       make([]dto.CourseResponse, 0, len(courses)),
	}
	for i := range courses {
		resp.Courses = append(resp.Courses, *toCourseResponse(&courses[i]))
	}
	return resp, nil
}

// ── 辅助函数 ──

func isScheduleRejection(err error) bool {
	return errors.Is(err, scheduling.ErrInvalidSlot) || errors.Is(err, scheduling.ErrScheduleConflict)
}

func toCourseResponse(c *model.Course) *dto.CourseResponse {
	slots := make([]dto.TimeSlotResponse, 0, len(c.Slots))
	for _, s := range c.Slots {
		slots = append(slots, dto.TimeSlotResponse{
			DayOfWeek:   s.DayOfWeek,
			WeekdayName: scheduling.WeekdayName(s.DayOfWeek),
			StartTime:   s.StartTime,
			EndTime:     s.EndTime,
		})
	}
	return &dto.CourseResponse{
		ID:         c.CourseID,
		Name:       c.Name,
		Instructor: c.Instructor,
		Classroom:  c.Classroom,
		Color:      c.Color,
		Source:     c.Source,
		Schedule:   slots,
		Version:    c.Version,
		CreatedAt:  c.CreatedAt,
	}
}
