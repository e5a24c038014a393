package repository

import (
	"context"

	"gorm.io/gorm"

	"campus-life/backend/internal/model"
	"campus-life/backend/internal/scheduling"
)

// AssignmentRepository 作业数据访问接口
type AssignmentRepository interface {
	Create(ctx context.Context, a *model.Assignment) error
	GetByID(ctx context.Context, userID, id string) (*model.Assignment, error)
	ListByUser(ctx context.Context, userID string, filter WorkItemFilter) ([]model.Assignment, error)
	// ListOpen 列出所有未完成作业，供状态刷新任务使用
	ListOpen(ctx context.Context) ([]model.Assignment, error)
	Update(ctx context.Context, a *model.Assignment) error
	TransitionStatus(ctx context.Context, id, from, to string) (bool, error)
	Delete(ctx context.Context, userID, id string) error
}

type assignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo 创建 AssignmentRepository 实例
func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) Create(ctx context.Context, a *model.Assignment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *assignmentRepo) GetByID(ctx context.Context, userID, id string) (*model.Assignment, error) {
	var a model.Assignment
	err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND user_id = ?", id, userID).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepo) ListByUser(ctx context.Context, userID string, filter WorkItemFilter) ([]model.Assignment, error) {
	var list []model.Assignment
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	err := filter.apply(q).
		Order("due_date ASC, created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *assignmentRepo) ListOpen(ctx context.Context) ([]model.Assignment, error) {
	var list []model.Assignment
	err := r.db.WithContext(ctx).
		Where("status <> ?", string(scheduling.StatusCompleted)).
		Order("assignment_id ASC").
		Find(&list).Error
	return list, err
}

func (r *assignmentRepo) Update(ctx context.Context, a *model.Assignment) error {
	err := versionedUpdate(r.db.WithContext(ctx), &model.Assignment{}, "assignment_id", a.AssignmentID, a.UserID, a.Version,
		map[string]interface{}{
			"course_id":         a.CourseID,
			"title":             a.Title,
			"description":       a.Description,
			"due_date":          a.DueDate,
			"notification_time": a.NotificationTime,
			"status":            a.Status,
			"completed_at":      a.CompletedAt,
			"updated_by":        a.UpdatedBy,
		})
	if err != nil {
		return err
	}
	a.Version++
	return nil
}

func (r *assignmentRepo) TransitionStatus(ctx context.Context, id, from, to string) (bool, error) {
	return transitionStatus(r.db.WithContext(ctx), &model.Assignment{}, "assignment_id", id, from, to)
}

func (r *assignmentRepo) Delete(ctx context.Context, userID, id string) error {
	return softDelete(r.db.WithContext(ctx), &model.Assignment{}, "assignment_id", id, userID)
}
