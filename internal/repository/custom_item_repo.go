package repository

import (
	"context"

	"gorm.io/gorm"

	"campus-life/backend/internal/model"
	"campus-life/backend/internal/scheduling"
)

// ── CustomCategory ──

// CustomCategoryRepository 自定义分类数据访问接口
type CustomCategoryRepository interface {
	Create(ctx context.Context, c *model.CustomCategory) error
	GetByID(ctx context.Context, userID, id string) (*model.CustomCategory, error)
	GetByName(ctx context.Context, userID, name string) (*model.CustomCategory, error)
	ListByUser(ctx context.Context, userID string) ([]model.CustomCategory, error)
	Update(ctx context.Context, c *model.CustomCategory) error
	Delete(ctx context.Context, userID, id string) error
	CountItems(ctx context.Context, categoryID string) (int64, error)
}

type customCategoryRepo struct {
	db *gorm.DB
}

// NewCustomCategoryRepo 创建 CustomCategoryRepository 实例
func NewCustomCategoryRepo(db *gorm.DB) CustomCategoryRepository {
	return &customCategoryRepo{db: db}
}

func (r *customCategoryRepo) Create(ctx context.Context, c *model.CustomCategory) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *customCategoryRepo) GetByID(ctx context.Context, userID, id string) (*model.CustomCategory, error) {
	var c model.CustomCategory
	err := r.db.WithContext(ctx).
		Where("category_id = ? AND user_id = ?", id, userID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customCategoryRepo) GetByName(ctx context.Context, userID, name string) (*model.CustomCategory, error) {
	var c model.CustomCategory
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND name = ?", userID, name).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customCategoryRepo) ListByUser(ctx context.Context, userID string) ([]model.CustomCategory, error) {
	var list []model.CustomCategory
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *customCategoryRepo) Update(ctx context.Context, c *model.CustomCategory) error {
	return r.db.WithContext(ctx).
		Model(&model.CustomCategory{}).
		Where("category_id = ? AND user_id = ?", c.CategoryID, c.UserID).
		Updates(map[string]interface{}{
			"name":       c.Name,
			"icon":       c.Icon,
			"color":      c.Color,
			"updated_by": c.UpdatedBy,
		}).Error
}

func (r *customCategoryRepo) Delete(ctx context.Context, userID, id string) error {
	return softDelete(r.db.WithContext(ctx), &model.CustomCategory{}, "category_id", id, userID)
}

func (r *customCategoryRepo) CountItems(ctx context.Context, categoryID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.CustomItem{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

// ── CustomItem ──

// CustomItemRepository 自定义事项数据访问接口
type CustomItemRepository interface {
	Create(ctx context.Context, item *model.CustomItem) error
	GetByID(ctx context.Context, userID, id string) (*model.CustomItem, error)
	ListByUser(ctx context.Context, userID string, filter WorkItemFilter) ([]model.CustomItem, error)
	ListByCategory(ctx context.Context, userID, categoryID string) ([]model.CustomItem, error)
	ListOpen(ctx context.Context) ([]model.CustomItem, error)
	Update(ctx context.Context, item *model.CustomItem) error
	TransitionStatus(ctx context.Context, id, from, to string) (bool, error)
	Delete(ctx context.Context, userID, id string) error
}

type customItemRepo struct {
	db *gorm.DB
}

// NewCustomItemRepo 创建 CustomItemRepository 实例
func NewCustomItemRepo(db *gorm.DB) CustomItemRepository {
	return &customItemRepo{db: db}
}

func (r *customItemRepo) Create(ctx context.Context, item *model.CustomItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *customItemRepo) GetByID(ctx context.Context, userID, id string) (*model.CustomItem, error) {
	var item model.CustomItem
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND user_id = ?", id, userID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *customItemRepo) ListByUser(ctx context.Context, userID string, filter WorkItemFilter) ([]model.CustomItem, error) {
	var list []model.CustomItem
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	err := filter.apply(q).
		Order("due_date ASC, created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *customItemRepo) ListByCategory(ctx context.Context, userID, categoryID string) ([]model.CustomItem, error) {
	var list []model.CustomItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND category_id = ?", userID, categoryID).
		Order("due_date ASC, created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *customItemRepo) ListOpen(ctx context.Context) ([]model.CustomItem, error) {
	var list []model.CustomItem
	err := r.db.WithContext(ctx).
		Where("status <> ?", string(scheduling.StatusCompleted)).
		Order("item_id ASC").
		Find(&list).Error
	return list, err
}

func (r *customItemRepo) Update(ctx context.Context, item *model.CustomItem) error {
	err := versionedUpdate(r.db.WithContext(ctx), &model.CustomItem{}, "item_id", item.ItemID, item.UserID, item.Version,
		map[string]interface{}{
			"category_id":       item.CategoryID,
			"course_id":         item.CourseID,
			"title":             item.Title,
			"description":       item.Description,
			"due_date":          item.DueDate,
			"notification_time": item.NotificationTime,
			"status":            item.Status,
			"completed_at":      item.CompletedAt,
			"updated_by":        item.UpdatedBy,
		})
	if err != nil {
		return err
	}
	item.Version++
	return nil
}

func (r *customItemRepo) TransitionStatus(ctx context.Context, id, from, to string) (bool, error) {
	return transitionStatus(r.db.WithContext(ctx), &model.CustomItem{}, "item_id", id, from, to)
}

func (r *customItemRepo) Delete(ctx context.Context, userID, id string) error {
	return softDelete(r.db.WithContext(ctx), &model.CustomItem{}, "item_id", id, userID)
}
