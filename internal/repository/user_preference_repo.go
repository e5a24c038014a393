package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"campus-life/backend/internal/model"
)

// UserPreferenceRepository 用户偏好数据访问接口
type UserPreferenceRepository interface {
	// Get 用户尚未设置时返回 gorm.ErrRecordNotFound
	Get(ctx context.Context, userID string) (*model.UserPreference, error)
	Upsert(ctx context.Context, pref *model.UserPreference) error
}

type userPreferenceRepo struct {
	db *gorm.DB
}

// NewUserPreferenceRepo 创建 UserPreferenceRepository 实例
func NewUserPreferenceRepo(db *gorm.DB) UserPreferenceRepository {
	return &userPreferenceRepo{db: db}
}

func (r *userPreferenceRepo) Get(ctx context.Context, userID string) (*model.UserPreference, error) {
	var pref model.UserPreference
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&pref).Error
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

func (r *userPreferenceRepo) Upsert(ctx context.Context, pref *model.UserPreference) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"reminder_setting": pref.ReminderSetting, "updated_at": gorm.Expr("NOW()")}),
		}).
		Create(pref).Error
}
