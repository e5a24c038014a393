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

// ── 自定义事项模块业务错误 ──

var (
	ErrCategoryNotFound       = errors.New("分类不存在")
	ErrCategoryNameExists     = errors.New("分类名称已存在")
	ErrCategoryHasItems       = errors.New("分类下存在事项，无法删除")
	ErrCustomItemNotFound     = errors.New("事项不存在")
	ErrCustomItemVersionStale = errors.New("事项已被其他操作修改，请刷新后重试")
)

// CustomItemService 自定义分类与事项业务接口
type CustomItemService interface {
	CreateCategory(ctx context.Context, req *dto.CreateCategoryRequest, userID string) (*dto.CategoryResponse, error)
	ListCategories(ctx context.Context, userID string) ([]dto.CategoryResponse, error)
	UpdateCategory(ctx context.Context, id string, req *dto.UpdateCategoryRequest, userID string) (*dto.CategoryResponse, error)
	DeleteCategory(ctx context.Context, id, userID string) error

	CreateItem(ctx context.Context, categoryID string, req *dto.CreateCustomItemRequest, userID string) (*dto.WorkItemResponse, error)
	ListItems(ctx context.Context, categoryID, userID string) ([]dto.WorkItemResponse, error)
	GetItem(ctx context.Context, id, userID string) (*dto.WorkItemResponse, error)
	UpdateItem(ctx context.Context, id string, req *dto.UpdateCustomItemRequest, userID string) (*dto.WorkItemResponse, error)
	DeleteItem(ctx context.Context, id, userID string) error
	CompleteItem(ctx context.Context, id, userID string) (*dto.WorkItemResponse, error)
	ReopenItem(ctx context.Context, id, userID string) (*dto.WorkItemResponse, error)
}

type customItemService struct {
	repo   *repository.Repository
	status *statusSyncer
	logger *zap.Logger
}

// NewCustomItemService 创建 CustomItemService 实例
func NewCustomItemService(repo *repository.Repository, clock *scheduling.CivilClock, m *metrics.Metrics, logger *zap.Logger) CustomItemService {
	return &customItemService{
		repo:   repo,
		status: &statusSyncer{clock: clock, metrics: m, logger: logger},
		logger: logger,
	}
}

// ════════════════════════════════════════════════════════════
// 分类
// ════════════════════════════════════════════════════════════

func (s *customItemService) CreateCategory(ctx context.Context, req *dto.CreateCategoryRequest, userID string) (*dto.CategoryResponse, error) {
	if err := s.ensureNameFree(ctx, userID, req.Name, ""); err != nil {
		return nil, err
	}

	c := &model.CustomCategory{
		UserID: userID,
		Name:   req.Name,
		Icon:   req.Icon,
		Color:  req.Color,
	}
	c.CreatedBy = &userID
	c.UpdatedBy = &userID

	if err := s.repo.CustomCategory.Create(ctx, c); err != nil {
		s.logger.Error("创建分类失败", zap.Error(err))
		return nil, err
	}
	return toCategoryResponse(c), nil
}

func (s *customItemService) ListCategories(ctx context.Context, userID string) ([]dto.CategoryResponse, error) {
	list, err := s.repo.CustomCategory.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询分类列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.CategoryResponse, 0, len(list))
	for i := range list {
		result = append(result, *toCategoryResponse(&list[i]))
	}
	return result, nil
}

func (s *customItemService) UpdateCategory(ctx context.Context, id string, req *dto.UpdateCategoryRequest, userID string) (*dto.CategoryResponse, error) {
	c, err := s.loadCategory(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != c.Name {
		if err := s.ensureNameFree(ctx, userID, *req.Name, id); err != nil {
			return nil, err
		}
		c.Name = *req.Name
	}
	if req.Icon != nil {
		c.Icon = *req.Icon
	}
	if req.Color != nil {
		c.Color = *req.Color
	}
	c.UpdatedBy = &userID

	if err := s.repo.CustomCategory.Update(ctx, c); err != nil {
		s.logger.Error("更新分类失败", zap.String("category_id", id), zap.Error(err))
		return nil, err
	}
	return toCategoryResponse(c), nil
}

func (s *customItemService) DeleteCategory(ctx context.Context, id, userID string) error {
	if _, err := s.loadCategory(ctx, id, userID); err != nil {
		return err
	}

	count, err := s.repo.CustomCategory.CountItems(ctx, id)
	if err != nil {
		s.logger.Error("统计分类事项失败", zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrCategoryHasItems
	}

	if err := s.repo.CustomCategory.Delete(ctx, userID, id); err != nil {
		s.logger.Error("删除分类失败", zap.String("category_id", id), zap.Error(err))
		return err
	}
	return nil
}

// ════════════════════════════════════════════════════════════
// 事项
// ════════════════════════════════════════════════════════════

func (s *customItemService) CreateItem(ctx context.Context, categoryID string, req *dto.CreateCustomItemRequest, userID string) (*dto.WorkItemResponse, error) {
	if _, err := s.loadCategory(ctx, categoryID, userID); err != nil {
		return nil, err
	}
	if err := validateNotification(req.DueDate, req.NotificationTime); err != nil {
		return nil, err
	}
	if req.CourseID != nil {
		if err := ensureCourse(ctx, s.repo, userID, *req.CourseID); err != nil {
			return nil, err
		}
	}

	item := &model.CustomItem{
		CategoryID: categoryID,
		UserID:     userID,
		CourseID:   req.CourseID,
		DueDate:    req.DueDate,
		TrackedFields: model.TrackedFields{
			Title:            req.Title,
			Description:      req.Description,
			NotificationTime: req.NotificationTime,
			Status:           string(scheduling.StatusPending),
		},
	}
	item.Status = string(s.status.settle(item.WorkItem()))
	item.CreatedBy = &userID
	item.UpdatedBy = &userID

	if err := s.repo.CustomItem.Create(ctx, item); err != nil {
		s.logger.Error("创建事项失败", zap.Error(err))
		return nil, err
	}
	return toCustomItemResponse(item), nil
}

func (s *customItemService) ListItems(ctx context.Context, categoryID, userID string) ([]dto.WorkItemResponse, error) {
	if _, err := s.loadCategory(ctx, categoryID, userID); err != nil {
		return nil, err
	}

	list, err := s.repo.CustomItem.ListByCategory(ctx, userID, categoryID)
	if err != nil {
		s.logger.Error("查询事项列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.WorkItemResponse, 0, len(list))
	for i := range list {
		item := &list[i]
		status, _ := s.status.sync(ctx, item.WorkItem(), s.repo.CustomItem.TransitionStatus)
		item.Status = string(status)
		result = append(result, *toCustomItemResponse(item))
	}
	return result, nil
}

func (s *customItemService) GetItem(ctx context.Context, id, userID string) (*dto.WorkItemResponse, error) {
	item, err := s.loadItem(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return toCustomItemResponse(item), nil
}

func (s *customItemService) UpdateItem(ctx context.Context, id string, req *dto.UpdateCustomItemRequest, userID string) (*dto.WorkItemResponse, error) {
	item, err := s.loadItem(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := checkClientVersion(req.Version, item.Version, ErrCustomItemVersionStale); err != nil {
		return nil, err
	}

	if req.CategoryID != nil && *req.CategoryID != item.CategoryID {
		if _, err := s.loadCategory(ctx, *req.CategoryID, userID); err != nil {
			return nil, err
		}
		item.CategoryID = *req.CategoryID
	}
	if req.ClearCourse {
		item.CourseID = nil
	} else if req.CourseID != nil {
		if err := ensureCourse(ctx, s.repo, userID, *req.CourseID); err != nil {
			return nil, err
		}
		item.CourseID = req.CourseID
	}
	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.DueDate != nil {
		item.DueDate = *req.DueDate
	}
	if req.ClearNotification {
		item.NotificationTime = nil
	} else if req.NotificationTime != nil {
		item.NotificationTime = req.NotificationTime
	}
	if err := validateNotification(item.DueDate, item.NotificationTime); err != nil {
		return nil, err
	}

	item.Status = string(s.status.settle(item.WorkItem()))
	item.UpdatedBy = &userID
	return s.saveItem(ctx, item)
}

func (s *customItemService) DeleteItem(ctx context.Context, id, userID string) error {
	if _, err := s.repo.CustomItem.GetByID(ctx, userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCustomItemNotFound
		}
		return err
	}
	if err := s.repo.CustomItem.Delete(ctx, userID, id); err != nil {
		s.logger.Error("删除事项失败", zap.String("item_id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *customItemService) CompleteItem(ctx context.Context, id, userID string) (*dto.WorkItemResponse, error) {
	item, err := s.loadItem(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if item.Status == string(scheduling.StatusCompleted) {
		return toCustomItemResponse(item), nil
	}
	completeFields(&item.TrackedFields, s.status.clock.Now())
	item.UpdatedBy = &userID
	return s.saveItem(ctx, item)
}

func (s *customItemService) ReopenItem(ctx context.Context, id, userID string) (*dto.WorkItemResponse, error) {
	item, err := s.loadItem(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	reopenFields(&item.TrackedFields, item.WorkItem(), s.status.clock.Now())
	item.UpdatedBy = &userID
	return s.saveItem(ctx, item)
}

// ── 内部方法 ──

func (s *customItemService) ensureNameFree(ctx context.Context, userID, name, selfID string) error {
	existing, err := s.repo.CustomCategory.GetByName(ctx, userID, name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询分类失败", zap.Error(err))
		return err
	}
	if existing != nil && existing.CategoryID != selfID {
		return ErrCategoryNameExists
	}
	return nil
}

func (s *customItemService) loadCategory(ctx context.Context, id, userID string) (*model.CustomCategory, error) {
	c, err := s.repo.CustomCategory.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *customItemService) loadItem(ctx context.Context, id, userID string) (*model.CustomItem, error) {
	item, err := s.repo.CustomItem.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomItemNotFound
		}
		s.logger.Error("查询事项失败", zap.String("item_id", id), zap.Error(err))
		return nil, err
	}

	status, persisted := s.status.sync(ctx, item.WorkItem(), s.repo.CustomItem.TransitionStatus)
	item.Status = string(status)
	if persisted {
		item.Version++
	}
	return item, nil
}

func (s *customItemService) saveItem(ctx context.Context, item *model.CustomItem) (*dto.WorkItemResponse, error) {
	if err := s.repo.CustomItem.Update(ctx, item); err != nil {
		if pkgerrors.IsOptimisticLock(err) {
			return nil, ErrCustomItemVersionStale
		}
		s.logger.Error("更新事项失败", zap.String("item_id", item.ItemID), zap.Error(err))
		return nil, err
	}
	return toCustomItemResponse(item), nil
}

func toCategoryResponse(c *model.CustomCategory) *dto.CategoryResponse {
	return &dto.CategoryResponse{
		ID:        c.CategoryID,
		Name:      c.Name,
		Icon:      c.Icon,
		Color:     c.Color,
		CreatedAt: c.CreatedAt,
	}
}
