package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Course         CourseRepository
	Assignment     AssignmentRepository
	Exam           ExamRepository
	CustomCategory CustomCategoryRepository
	CustomItem     CustomItemRepository
	Preference     UserPreferenceRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:             db,
		Course:         NewCourseRepo(db),
		Assignment:     NewAssignmentRepo(db),
		Exam:           NewExamRepo(db),
		CustomCategory: NewCustomCategoryRepo(db),
		CustomItem:     NewCustomItemRepo(db),
		Preference:     NewUserPreferenceRepo(db),
	}
}

// BeginTx 开启事务
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到指定事务连接的 Repository 副本
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// lockUser 事务级用户锁，保证同一用户的"校验 + 写入"串行执行
func lockUser(tx *gorm.DB, userID string) error {
	return tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", userID).Error
}
