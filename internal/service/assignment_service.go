package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-life/backend/internal/dto"
	"campus-life/backend/internal/model"
	"campus-life/backend/internal/repository"
	"campus-life/backend/internal/scheduling"
	pkgerrors "campus-life/backend/pkg/errors"
	"campus-life/backend/pkg/metrics"
)

// ── 作业模块业务错误 ──

var (
	ErrAssignmentNotFound     = errors.New("作业不存在")
	ErrAssignmentVersionStale = errors.New("作业已被其他操作修改，请刷新后重试")
)

// AssignmentService 作业业务接口
// 读取与写入都会按当前时间校正 pending / overdue 状态
type AssignmentService interface {
	Create(ctx context.Context, req *dto.CreateAssignmentRequest, userID string) (*dto.WorkItemResponse, error)
	GetByID(ctx context.Context, id, userID string) (*dto.WorkItemResponse, error)
	List(ctx context.Context, req *dto.WorkItemListRequest, userID string) ([]dto.WorkItemResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateAssignmentRequest, userID string) (*dto.WorkItemResponse, error)
	Delete(ctx context.Context, id, userID string) error
	Complete(ctx context.Context, id, userID string) (*dto.WorkItemResponse, error)
	Reopen(ctx context.Context, id, userID string) (*dto.WorkItemResponse, error)
}

type assignmentService struct {
	repo   *repository.Repository
	status *statusSyncer
	logger *zap.Logger
}

// NewAssignmentService 创建 AssignmentService 实例
func NewAssignmentService(repo *repository.Repository, clock *scheduling.CivilClock, m *metrics.Metrics, logger *zap.Logger) AssignmentService {
	return &assignmentService{
		repo:   repo,
		status: &statusSyncer{clock: clock, metrics: m, logger: logger},
		logger: logger,
	}
}

// ────────────────────── Create ──────────────────────

func (s *assignmentService) Create(ctx context.Context, req *dto.CreateAssignmentRequest, userID string) (*dto.WorkItemResponse, error) {
	if err := validateNotification(req.DueDate, req.NotificationTime); err != nil {
		return nil, err
	}
	if err := ensureCourse(ctx, s.repo, userID, req.CourseID); err != nil {
		return nil, err
	}

	a := &model.Assignment{
		UserID:   userID,
		CourseID: req.CourseID,
		DueDate:  req.DueDate,
		TrackedFields: model.TrackedFields{
			Title:            req.Title,
			Description:      req.Description,
			NotificationTime: req.NotificationTime,
			Status:           string(scheduling.StatusPending),
		},
	}
	a.Status = string(s.status.settle(a.WorkItem()))
	a.CreatedBy = &userID
	a.UpdatedBy = &userID

	if err := s.repo.Assignment.Create(ctx, a); err != nil {
		s.logger.Error("创建作业失败", zap.Error(err))
		return nil, err
	}
	return toAssignmentResponse(a), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *assignmentService) GetByID(ctx context.Context, id, userID string) (*dto.WorkItemResponse, error) {
	a, err := s.load(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return toAssignmentResponse(a), nil
}

// ────────────────────── List ──────────────────────

func (s *assignmentService) List(ctx context.Context, req *dto.WorkItemListRequest, userID string) ([]dto.WorkItemResponse, error) {
	// 状态筛选在校正之后进行，避免漏掉刚逾期的记录
	list, err := s.repo.Assignment.ListByUser(ctx, userID, repository.WorkItemFilter{CourseID: req.CourseID})
	if err != nil {
		s.logger.Error("查询作业列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.WorkItemResponse, 0, len(list))
	for i := range list {
		a := &list[i]
		status, _ := s.status.sync(ctx, a.WorkItem(), s.repo.Assignment.TransitionStatus)
		a.Status = string(status)
		if req.Status != "" && a.Status != req.Status {
			continue
		}
		result = append(result, *toAssignmentResponse(a))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *assignmentService) Update(ctx context.Context, id string, req *dto.UpdateAssignmentRequest, userID string) (*dto.WorkItemResponse, error) {
	a, err := s.load(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := checkClientVersion(req.Version, a.Version, ErrAssignmentVersionStale); err != nil {
		return nil, err
	}

	if req.CourseID != nil && *req.CourseID != a.CourseID {
		if err := ensureCourse(ctx, s.repo, userID, *req.CourseID); err != nil {
			return nil, err
		}
		a.CourseID = *req.CourseID
	}
	if req.Title != nil {
		a.Title = *req.Title
	}
	if req.Description != nil {
		a.Description = *req.Description
	}
	if req.DueDate != nil {
		a.DueDate = *req.DueDate
	}
	if req.ClearNotification {
		a.NotificationTime = nil
	} else if req.NotificationTime != nil {
		a.NotificationTime = req.NotificationTime
	}
	if err := validateNotification(a.DueDate, a.NotificationTime); err != nil {
		return nil, err
	}

	a.Status = string(s.status.settle(a.WorkItem()))
	a.UpdatedBy = &userID
	return s.save(ctx, a)
}

// ────────────────────── Delete ──────────────────────

func (s *assignmentService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.repo.Assignment.GetByID(ctx, userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}
	if err := s.repo.Assignment.Delete(ctx, userID, id); err != nil {
		s.logger.Error("删除作业失败", zap.String("assignment_id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Complete / Reopen ──────────────────────

func (s *assignmentService) Complete(ctx context.Context, id, userID string) (*dto.WorkItemResponse, error) {
	a, err := s.load(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if a.Status == string(scheduling.StatusCompleted) {
		return toAssignmentResponse(a), nil
	}
	completeFields(&a.TrackedFields, s.status.clock.Now())
	a.UpdatedBy = &userID
	return s.save(ctx, a)
}

func (s *assignmentService) Reopen(ctx context.Context, id, userID string) (*dto.WorkItemResponse, error) {
	a, err := s.load(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	reopenFields(&a.TrackedFields, a.WorkItem(), s.status.clock.Now())
	a.UpdatedBy = &userID
	return s.save(ctx, a)
}

// ── 内部方法 ──

// load 读取并校正状态
func (s *assignmentService) load(ctx context.Context, id, userID string) (*model.Assignment, error) {
	a, err := s.repo.Assignment.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		s.logger.Error("查询作业失败", zap.String("assignment_id", id), zap.Error(err))
		return nil, err
	}

	status, persisted := s.status.sync(ctx, a.WorkItem(), s.repo.Assignment.TransitionStatus)
	a.Status = string(status)
	if persisted {
		a.Version++
	}
	return a, nil
}

func (s *assignmentService) save(ctx context.Context, a *model.Assignment) (*dto.WorkItemResponse, error) {
	if err := s.repo.Assignment.Update(ctx, a); err != nil {
		if pkgerrors.IsOptimisticLock(err) {
			return nil, ErrAssignmentVersionStale
		}
		s.logger.Error("更新作业失败", zap.String("assignment_id", a.AssignmentID), zap.Error(err))
		return nil, err
	}
	return toAssignmentResponse(a), nil
}
