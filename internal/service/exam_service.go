package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-life/backend/internal/dto"
	"campus-life/backend/internal/model"
	"campus-life/backend/internal/repository"
	"campus-life/backend/internal/scheduling"
	pkgerrors "campus-life/backend/pkg/errors"
	"campus-life/backend/pkg/metrics"
)

// ── 考试模块业务错误 ──

var (
	ErrExamNotFound     = errors.New("考试不存在")
	ErrExamVersionStale = errors.New("考试已被其他操作修改，请刷新后重试")
)

// ExamService 考试业务接口
// 考试以开考时间列入待办，以结束时间（开考 + 时长）判定逾期
type ExamService interface {
	Create(ctx context.Context, req *dto.CreateExamRequest, userID string) (*dto.WorkItemResponse, error)
	GetByID(ctx context.Context, id, userID string) (*dto.WorkItemResponse, error)
	List(ctx context.Context, req *dto.WorkItemListRequest, userID string) ([]dto.WorkItemResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateExamRequest, userID string) (*dto.WorkItemResponse, error)
	Delete(ctx context.Context, id, userID string) error
	Complete(ctx context.Context, id, userID string) (*dto.WorkItemResponse, error)
	Reopen(ctx context.Context, id, userID string) (*dto.WorkItemResponse, error)
}

type examService struct {
	repo   *repository.Repository
	status *statusSyncer
	logger *zap.Logger
}

// NewExamService 创建 ExamService 实例
func NewExamService(repo *repository.Repository, clock *scheduling.CivilClock, m *metrics.Metrics, logger *zap.Logger) ExamService {
	return &examService{
		repo:   repo,
		status: &statusSyncer{clock: clock, metrics: m, logger: logger},
		logger: logger,
	}
}

// ────────────────────── Create ──────────────────────

func (s *examService) Create(ctx context.Context, req *dto.CreateExamRequest, userID string) (*dto.WorkItemResponse, error) {
	if err := ensureCourse(ctx, s.repo, userID, req.CourseID); err != nil {
		return nil, err
	}

	e := &model.Exam{
		UserID:          userID,
		CourseID:        req.CourseID,
		ExamDate:        req.ExamDate,
		DurationMinutes: req.DurationMinutes,
		Location:        req.Location,
		TrackedFields: model.TrackedFields{
			Title:            req.Title,
			Description:      req.Description,
			NotificationTime: req.NotificationTime,
			Status:           string(scheduling.StatusPending),
		},
	}
	if err := validateNotification(examEnd(e), e.NotificationTime); err != nil {
		return nil, err
	}
	e.Status = string(s.status.settle(e.WorkItem()))
	e.CreatedBy = &userID
	e.UpdatedBy = &userID

	if err := s.repo.Exam.Create(ctx, e); err != nil {
		s.logger.Error("创建考试失败", zap.Error(err))
		return nil, err
	}
	return toExamResponse(e), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *examService) GetByID(ctx context.Context, id, userID string) (*dto.WorkItemResponse, error) {
	e, err := s.load(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return toExamResponse(e), nil
}

// ────────────────────── List ──────────────────────

func (s *examService) List(ctx context.Context, req *dto.WorkItemListRequest, userID string) ([]dto.WorkItemResponse, error) {
	list, err := s.repo.Exam.ListByUser(ctx, userID, repository.WorkItemFilter{CourseID: req.CourseID})
	if err != nil {
		s.logger.Error("查询考试列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.WorkItemResponse, 0, len(list))
	for i := range list {
		e := &list[i]
		status, _ := s.status.sync(ctx, e.WorkItem(), s.repo.Exam.TransitionStatus)
		e.Status = string(status)
		if req.Status != "" && e.Status != req.Status {
			continue
		}
		result = append(result, *toExamResponse(e))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *examService) Update(ctx context.Context, id string, req *dto.UpdateExamRequest, userID string) (*dto.WorkItemResponse, error) {
	e, err := s.load(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := checkClientVersion(req.Version, e.Version, ErrExamVersionStale); err != nil {
		return nil, err
	}

	if req.CourseID != nil && *req.CourseID != e.CourseID {
		if err := ensureCourse(ctx, s.repo, userID, *req.CourseID); err != nil {
			return nil, err
		}
		e.CourseID = *req.CourseID
	}
	if req.Title != nil {
		e.Title = *req.Title
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.ExamDate != nil {
		e.ExamDate = *req.ExamDate
	}
	if req.DurationMinutes != nil {
		e.DurationMinutes = *req.DurationMinutes
	}
	if req.Location != nil {
		e.Location = *req.Location
	}
	if req.ClearNotification {
		e.NotificationTime = nil
	} else if req.NotificationTime != nil {
		e.NotificationTime = req.NotificationTime
	}
	if err := validateNotification(examEnd(e), e.NotificationTime); err != nil {
		return nil, err
	}

	e.Status = string(s.status.settle(e.WorkItem()))
	e.UpdatedBy = &userID
	return s.save(ctx, e)
}

// ────────────────────── Delete ──────────────────────

func (s *examService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.repo.Exam.GetByID(ctx, userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrExamNotFound
		}
		return err
	}
	if err := s.repo.Exam.Delete(ctx, userID, id); err != nil {
		s.logger.Error("删除考试失败", zap.String("exam_id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Complete / Reopen ──────────────────────

func (s *examService) Complete(ctx context.Context, id, userID string) (*dto.WorkItemResponse, error) {
	e, err := s.load(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if e.Status == string(scheduling.StatusCompleted) {
		return toExamResponse(e), nil
	}
	completeFields(&e.TrackedFields, s.status.clock.Now())
	e.UpdatedBy = &userID
	return s.save(ctx, e)
}

func (s *examService) Reopen(ctx context.Context, id, userID string) (*dto.WorkItemResponse, error) {
	e, err := s.load(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	reopenFields(&e.TrackedFields, e.WorkItem(), s.status.clock.Now())
	e.UpdatedBy = &userID
	return s.save(ctx, e)
}

// ── 内部方法 ──

func (s *examService) load(ctx context.Context, id, userID string) (*model.Exam, error) {
	e, err := s.repo.Exam.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		s.logger.Error("查询考试失败", zap.String("exam_id", id), zap.Error(err))
		return nil, err
	}

	status, persisted := s.status.sync(ctx, e.WorkItem(), s.repo.Exam.TransitionStatus)
	e.Status = string(status)
	if persisted {
		e.Version++
	}
	return e, nil
}

func (s *examService) save(ctx context.Context, e *model.Exam) (*dto.WorkItemResponse, error) {
	if err := s.repo.Exam.Update(ctx, e); err != nil {
		if pkgerrors.IsOptimisticLock(err) {
			return nil, ErrExamVersionStale
		}
		s.logger.Error("更新考试失败", zap.String("exam_id", e.ExamID), zap.Error(err))
		return nil, err
	}
	return toExamResponse(e), nil
}

// examEnd 考试结束时间：逾期判定、提醒上限与导出共用
func examEnd(e *model.Exam) time.Time {
	return e.WorkItem().EffectiveDueInstant()
}
