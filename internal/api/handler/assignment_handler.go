package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"campus-life/backend/internal/dto"
	"campus-life/backend/internal/service"
	"campus-life/backend/pkg/response"
)

// AssignmentHandler 作业模块 Handler
type AssignmentHandler struct {
	svc service.AssignmentService
}

// NewAssignmentHandler 创建 AssignmentHandler 实例
func NewAssignmentHandler(svc service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{svc: svc}
}

// Create 创建作业
// POST /api/v1/assignments
func (h *AssignmentHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 21000, err.Error())
		return
	}

	resp, err := h.svc.Create(c.Request.Context(), &req, userID)
	if err != nil {
		handleAssignmentError(c, err)
		return
	}
	response.Created(c, resp)
}

// List 作业列表，可按 course_id 与 status 过滤
// GET /api/v1/assignments
func (h *AssignmentHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.WorkItemListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 21000, err.Error())
		return
	}

	resp, err := h.svc.List(c.Request.Context(), &req, userID)
	if err != nil {
		handleAssignmentError(c, err)
		return
	}
	response.OK(c, resp)
}

// Get 作业详情
// GET /api/v1/assignments/:id
func (h *AssignmentHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.svc.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleAssignmentError(c, err)
		return
	}
	response.OK(c, resp)
}

// Update 更新作业
// PUT /api/v1/assignments/:id
func (h *AssignmentHandler) Update(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 21000, err.Error())
		return
	}

	resp, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req, userID)
	if err != nil {
		handleAssignmentError(c, err)
		return
	}
	response.OK(c, resp)
}

// Delete 删除作业
// DELETE /api/v1/assignments/:id
func (h *AssignmentHandler) Delete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleAssignmentError(c, err)
		return
	}
	response.OK(c, nil)
}

// Complete 标记完成
// PUT /api/v1/assignments/:id/complete
func (h *AssignmentHandler) Complete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.svc.Complete(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleAssignmentError(c, err)
		return
	}
	response.OK(c, resp)
}

// Reopen 取消完成，按当前时间重新判定待办或逾期
// PUT /api/v1/assignments/:id/reopen
func (h *AssignmentHandler) Reopen(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.svc.Reopen(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleAssignmentError(c, err)
		return
	}
	response.OK(c, resp)
}

// handleAssignmentError 作业模块错误映射
func handleAssignmentError(c *gin.Context, err error) {
	if handleWorkItemError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 21004, err.Error())
	case errors.Is(err, service.ErrAssignmentVersionStale):
		response.Conflict(c, 21009, err.Error())
	default:
		response.InternalError(c)
	}
}
