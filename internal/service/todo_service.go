package service

import (
	"context"

	"go.uber.org/zap"

	"campus-life/backend/internal/dto"
	"campus-life/backend/internal/model"
	"campus-life/backend/internal/repository"
	"campus-life/backend/internal/scheduling"
	"campus-life/backend/pkg/metrics"
)

// TodoService 首页待办聚合接口
type TodoService interface {
	// Feed 生成待办列表；limit 为 nil 时使用配置的默认条数，0 表示不截断
	Feed(ctx context.Context, userID string, limit *int) (*dto.TodoFeedResponse, error)
}

type todoService struct {
	repo         *repository.Repository
	pref         PreferenceService
	status       *statusSyncer
	defaultLimit int
	logger       *zap.Logger
}

// NewTodoService 创建 TodoService 实例
func NewTodoService(
	repo *repository.Repository,
	pref PreferenceService,
	clock *scheduling.CivilClock,
	m *metrics.Metrics,
	defaultLimit int,
	logger *zap.Logger,
) TodoService {
	return &todoService{
		repo:         repo,
		pref:         pref,
		status:       &statusSyncer{clock: clock, metrics: m, logger: logger},
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

func (s *todoService) Feed(ctx context.Context, userID string, limit *int) (*dto.TodoFeedResponse, error) {
	setting, err := s.pref.ReminderSetting(ctx, userID)
	if err != nil {
		return nil, err
	}

	in, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	in.ViewingInstant = s.status.clock.Now()
	in.ReminderWindowDays = setting.LookaheadDays()
	in.Limit = s.defaultLimit
	if limit != nil {
		in.Limit = *limit
	}

	ranked := scheduling.BuildFeed(s.status.clock, in)

	items := make([]dto.TodoItemResponse, 0, len(ranked))
	for _, r := range ranked {
		items = append(items, dto.TodoItemResponse{
			ID:          r.Item.ID,
			Kind:        string(r.Item.Kind),
			Title:       r.Item.Title,
			CourseID:    r.Item.CourseID,
			CourseLabel: r.CourseLabel,
			DueDate:     r.Item.ListingInstant(),
			Status:      string(r.Item.Status),
			DaysUntil:   r.DaysUntil,
			Priority:    r.Priority,
			DueLabel:    r.DueLabel,
		})
	}

	return &dto.TodoFeedResponse{
		ReminderSetting: string(setting),
		WindowDays:      in.ReminderWindowDays,
		GeneratedAt:     in.ViewingInstant,
		Items:           items,
	}, nil
}

// snapshot 读取用户全部事项并校正状态，组装聚合输入
func (s *todoService) snapshot(ctx context.Context, userID string) (scheduling.FeedInput, error) {
	var in scheduling.FeedInput

	courses, err := s.repo.Course.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Error(err))
		return in, err
	}
	in.Courses = model.CoursesToScheduling(courses)

	assignments, err := s.repo.Assignment.ListByUser(ctx, userID, repository.WorkItemFilter{})
	if err != nil {
		s.logger.Error("查询作业列表失败", zap.Error(err))
		return in, err
	}
	for i := range assignments {
		in.Assignments = append(in.Assignments, s.synced(ctx, assignments[i].WorkItem(), s.repo.Assignment.TransitionStatus))
	}

	exams, err := s.repo.Exam.ListByUser(ctx, userID, repository.WorkItemFilter{})
	if err != nil {
		s.logger.Error("查询考试列表失败", zap.Error(err))
		return in, err
	}
	for i := range exams {
		in.Exams = append(in.Exams, s.synced(ctx, exams[i].WorkItem(), s.repo.Exam.TransitionStatus))
	}

	customs, err := s.repo.CustomItem.ListByUser(ctx, userID, repository.WorkItemFilter{})
	if err != nil {
		s.logger.Error("查询自定义事项失败", zap.Error(err))
		return in, err
	}
	for i := range customs {
		in.CustomItems = append(in.CustomItems, s.synced(ctx, customs[i].WorkItem(), s.repo.CustomItem.TransitionStatus))
	}

	categories, err := s.repo.CustomCategory.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询分类列表失败", zap.Error(err))
		return in, err
	}
	in.CategoryNames = make(map[string]string, len(categories))
	for _, c := range categories {
		in.CategoryNames[c.CategoryID] = c.Name
	}

	return in, nil
}

func (s *todoService) synced(ctx context.Context, item scheduling.WorkItem, sink statusSink) scheduling.WorkItem {
	item.Status, _ = s.status.sync(ctx, item, sink)
	return item
}
