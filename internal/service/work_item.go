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
	"campus-life/backend/pkg/metrics"
)

// ── 事项通用业务错误 ──

var (
	ErrNotifyAfterDue     = errors.New("通知时间不能晚于截止时间")
	ErrWorkItemCourseGone = errors.New("关联课程不存在")
)

// statusSink 持久化自动状态流转；返回 false 表示记录已被并发修改
type statusSink func(ctx context.Context, id, from, to string) (bool, error)

// statusSyncer 读取 / 写入事项时按当前时间校正状态
type statusSyncer struct {
	clock   *scheduling.CivilClock
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// sync 校正状态；发生流转时写回存储
// persisted 为 true 表示写回成功（存储中的版本号已递增）。写回失败只记录日志，下次读取会再次校正
func (s *statusSyncer) sync(ctx context.Context, item scheduling.WorkItem, sink statusSink) (status scheduling.Status, persisted bool) {
	next := scheduling.ReconcileStatus(item, s.clock.Now())
	if next.Status == item.Status {
		return item.Status, false
	}

	ok, err := sink(ctx, item.ID, string(item.Status), string(next.Status))
	if err != nil {
		s.logger.Warn("事项状态写回失败",
			zap.String("kind", string(item.Kind)),
			zap.String("id", item.ID),
			zap.Error(err),
		)
		return next.Status, false
	}
	if ok {
		s.metrics.ObserveTransition(string(item.Kind), string(next.Status))
	}
	return next.Status, ok
}

// settle 写操作前计算应落库的状态（不写存储）
func (s *statusSyncer) settle(item scheduling.WorkItem) scheduling.Status {
	return scheduling.ReconcileStatus(item, s.clock.Now()).Status
}

// checkClientVersion 客户端携带版本号时要求与存储一致
func checkClientVersion(expected *int, current int, stale error) error {
	if expected != nil && *expected != current {
		return stale
	}
	return nil
}

func validateNotification(due time.Time, notify *time.Time) error {
	if notify != nil && notify.After(due) {
		return ErrNotifyAfterDue
	}
	return nil
}

func completeFields(f *model.TrackedFields, now time.Time) {
	f.Status = string(scheduling.StatusCompleted)
	f.CompletedAt = &now
}

func reopenFields(f *model.TrackedFields, item scheduling.WorkItem, now time.Time) {
	f.Status = string(scheduling.Reopen(item, now).Status)
	f.CompletedAt = nil
}

// ── 响应转换 ──

func toAssignmentResponse(a *model.Assignment) *dto.WorkItemResponse {
	return &dto.WorkItemResponse{
		ID:               a.AssignmentID,
		Kind:             string(scheduling.KindAssignment),
		CourseID:         a.CourseID,
		Title:            a.Title,
		Description:      a.Description,
		DueDate:          a.DueDate,
		NotificationTime: a.NotificationTime,
		Status:           a.Status,
		CompletedAt:      a.CompletedAt,
		Version:          a.Version,
	}
}

func toExamResponse(e *model.Exam) *dto.WorkItemResponse {
	return &dto.WorkItemResponse{
		ID:               e.ExamID,
		Kind:             string(scheduling.KindExam),
		CourseID:         e.CourseID,
		Title:            e.Title,
		Description:      e.Description,
		DueDate:          e.ExamDate,
		DurationMinutes:  e.DurationMinutes,
		Location:         e.Location,
		NotificationTime: e.NotificationTime,
		Status:           e.Status,
		CompletedAt:      e.CompletedAt,
		Version:          e.Version,
	}
}

func toCustomItemResponse(c *model.CustomItem) *dto.WorkItemResponse {
	resp := &dto.WorkItemResponse{
		ID:               c.ItemID,
		Kind:             string(scheduling.KindCustom),
		CategoryID:       c.CategoryID,
		Title:            c.Title,
		Description:      c.Description,
		DueDate:          c.DueDate,
		NotificationTime: c.NotificationTime,
		Status:           c.Status,
		CompletedAt:      c.CompletedAt,
		Version:          c.Version,
	}
	if c.CourseID != nil {
		resp.CourseID = *c.CourseID
	}
	return resp
}

func ensureCourse(ctx context.Context, repo *repository.Repository, userID, courseID string) error {
	if _, err := repo.Course.GetByID(ctx, userID, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWorkItemCourseGone
		}
		return err
	}
	return nil
}
