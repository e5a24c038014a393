package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"campus-life/backend/internal/dto"
	"campus-life/backend/internal/service"
	"campus-life/backend/pkg/response"
)

// CustomItemHandler 自定义分类与事项 Handler
type CustomItemHandler struct {
	svc service.CustomItemService
}

// NewCustomItemHandler 创建 CustomItemHandler 实例
func NewCustomItemHandler(svc service.CustomItemService) *CustomItemHandler {
	return &CustomItemHandler{svc: svc}
}

// ──── 分类 ────

// CreateCategory POST /api/v1/custom-categories
func (h *CustomItemHandler) CreateCategory(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 23000, err.Error())
		return
	}

	resp, err := h.svc.CreateCategory(c.Request.Context(), &req, userID)
	if err != nil {
		handleCustomItemError(c, err)
		return
	}
	response.Created(c, resp)
}

// ListCategories GET /api/v1/custom-categories
func (h *CustomItemHandler) ListCategories(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.svc.ListCategories(c.Request.Context(), userID)
	if err != nil {
		handleCustomItemError(c, err)
		return
	}
	response.OK(c, resp)
}

// UpdateCategory PUT /api/v1/custom-categories/:id
func (h *CustomItemHandler) UpdateCategory(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 23000, err.Error())
		return
	}

	resp, err := h.svc.UpdateCategory(c.Request.Context(), c.Param("id"), &req, userID)
	if err != nil {
		handleCustomItemError(c, err)
		return
	}
	response.OK(c, resp)
}

// DeleteCategory DELETE /api/v1/custom-categories/:id
// 分类下仍有事项时拒绝删除
func (h *CustomItemHandler) DeleteCategory(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteCategory(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleCustomItemError(c, err)
		return
	}
	response.OK(c, nil)
}

// ──── 事项 ────

// CreateItem POST /api/v1/custom-categories/:id/items
func (h *CustomItemHandler) CreateItem(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateCustomItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 23000, err.Error())
		return
	}

	resp, err := h.svc.CreateItem(c.Request.Context(), c.Param("id"), &req, userID)
	if err != nil {
		handleCustomItemError(c, err)
		return
	}
	response.Created(c, resp)
}

// ListItems GET /api/v1/custom-categories/:id/items
func (h *CustomItemHandler) ListItems(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.svc.ListItems(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleCustomItemError(c, err)
		return
	}
	response.OK(c, resp)
}

// GetItem GET /api/v1/custom-items/:id
func (h *CustomItemHandler) GetItem(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.svc.GetItem(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleCustomItemError(c, err)
		return
	}
	response.OK(c, resp)
}

// UpdateItem PUT /api/v1/custom-items/:id
func (h *CustomItemHandler) UpdateItem(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateCustomItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 23000, err.Error())
		return
	}

	resp, err := h.svc.UpdateItem(c.Request.Context(), c.Param("id"), &req, userID)
	if err != nil {
		handleCustomItemError(c, err)
		return
	}
	response.OK(c, resp)
}

// DeleteItem DELETE /api/v1/custom-items/:id
func (h *CustomItemHandler) DeleteItem(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteItem(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleCustomItemError(c, err)
		return
	}
	response.OK(c, nil)
}

// CompleteItem PUT /api/v1/custom-items/:id/complete
func (h *CustomItemHandler) CompleteItem(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.svc.CompleteItem(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleCustomItemError(c, err)
		return
	}
	response.OK(c, resp)
}

// ReopenItem PUT /api/v1/custom-items/:id/reopen
func (h *CustomItemHandler) ReopenItem(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.svc.ReopenItem(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleCustomItemError(c, err)
		return
	}
	response.OK(c, resp)
}

func handleCustomItemError(c *gin.Context, err error) {
	if handleWorkItemError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrCategoryNotFound):
		response.NotFound(c, 23004, err.Error())
	case errors.Is(err, service.ErrCategoryNameExists):
		response.Conflict(c, 23005, err.Error())
	case errors.Is(err, service.ErrCategoryHasItems):
		response.Conflict(c, 23006, err.Error())
	case errors.Is(err, service.ErrCustomItemNotFound):
		response.NotFound(c, 23014, err.Error())
	case errors.Is(err, service.ErrCustomItemVersionStale):
		response.Conflict(c, 23009, err.Error())
	default:
		response.InternalError(c)
	}
}
