package repository

import (
	"context"

	"gorm.io/gorm"

	"campus-life/backend/internal/model"
	"campus-life/backend/internal/scheduling"
)

// ExamRepository 考试数据访问接口
type ExamRepository interface {
	Create(ctx context.Context, e *model.Exam) error
	GetByID(ctx context.Context, userID, id string) (*model.Exam, error)
	ListByUser(ctx context.Context, userID string, filter WorkItemFilter) ([]model.Exam, error)
	ListOpen(ctx context.Context) ([]model.Exam, error)
	Update(ctx context.Context, e *model.Exam) error
	TransitionStatus(ctx context.Context, id, from, to string) (bool, error)
	Delete(ctx context.Context, userID, id string) error
}

type examRepo struct {
	db *gorm.DB
}

// NewExamRepo 创建 ExamRepository 实例
func NewExamRepo(db *gorm.DB) ExamRepository {
	return &examRepo{db: db}
}

func (r *examRepo) Create(ctx context.Context, e *model.Exam) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *examRepo) GetByID(ctx context.Context, userID, id string) (*model.Exam, error) {
	var e model.Exam
	err := r.db.WithContext(ctx).
		Where("exam_id = ? AND user_id = ?", id, userID).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *examRepo) ListByUser(ctx context.Context, userID string, filter WorkItemFilter) ([]model.Exam, error) {
	var list []model.Exam
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	err := filter.apply(q).
		Order("exam_date ASC, created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *examRepo) ListOpen(ctx context.Context) ([]model.Exam, error) {
	var list []model.Exam
	err := r.db.WithContext(ctx).
		Where("status <> ?", string(scheduling.StatusCompleted)).
		Order("exam_id ASC").
		Find(&list).Error
	return list, err
}

func (r *examRepo) Update(ctx context.Context, e *model.Exam) error {
	err := versionedUpdate(r.db.WithContext(ctx), &model.Exam{}, "exam_id", e.ExamID, e.UserID, e.Version,
		map[string]interface{}{
			"course_id":         e.CourseID,
			"title":             e.Title,
			"description":       e.Description,
			"exam_date":         e.ExamDate,
			"duration_minutes":  e.DurationMinutes,
			"location":          e.Location,
			"notification_time": e.NotificationTime,
			"status":            e.Status,
			"completed_at":      e.CompletedAt,
			"updated_by":        e.UpdatedBy,
		})
	if err != nil {
		return err
	}
	e.Version++
	return nil
}

func (r *examRepo) TransitionStatus(ctx context.Context, id, from, to string) (bool, error) {
	return transitionStatus(r.db.WithContext(ctx), &model.Exam{}, "exam_id", id, from, to)
}

func (r *examRepo) Delete(ctx context.Context, userID, id string) error {
	return softDelete(r.db.WithContext(ctx), &model.Exam{}, "exam_id", id, userID)
}
