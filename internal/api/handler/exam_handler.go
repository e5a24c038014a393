package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"campus-life/backend/internal/dto"
	"campus-life/backend/internal/service"
	"campus-life/backend/pkg/response"
)

// ExamHandler 考试模块 Handler
type ExamHandler struct {
	svc service.ExamService
}

// NewExamHandler 创建 ExamHandler 实例
func NewExamHandler(svc service.ExamService) *ExamHandler {
	return &ExamHandler{svc: svc}
}

// Create 创建考试
// POST /api/v1/exams
func (h *ExamHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 22000, err.Error())
		return
	}

	resp, err := h.svc.Create(c.Request.Context(), &req, userID)
	if err != nil {
		handleExamError(c, err)
		return
	}
	response.Created(c, resp)
}

// List 考试列表
// GET /api/v1/exams
func (h *ExamHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.WorkItemListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 22000, err.Error())
		return
	}

	resp, err := h.svc.List(c.Request.Context(), &req, userID)
	if err != nil {
		handleExamError(c, err)
		return
	}
	response.OK(c, resp)
}

// Get 考试详情
// GET /api/v1/exams/:id
func (h *ExamHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.svc.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleExamError(c, err)
		return
	}
	response.OK(c, resp)
}

// Update 更新考试
// PUT /api/v1/exams/:id
func (h *ExamHandler) Update(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 22000, err.Error())
		return
	}

	resp, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req, userID)
	if err != nil {
		handleExamError(c, err)
		return
	}
	response.OK(c, resp)
}

// Delete 删除考试
// DELETE /api/v1/exams/:id
func (h *ExamHandler) Delete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleExamError(c, err)
		return
	}
	response.OK(c, nil)
}

// Complete 标记考试已完成
// PUT /api/v1/exams/:id/complete
func (h *ExamHandler) Complete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.svc.Complete(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleExamError(c, err)
		return
	}
	response.OK(c, resp)
}

// Reopen 取消完成，按当前时间重新判定待办或逾期
// PUT /api/v1/exams/:id/reopen
func (h *ExamHandler) Reopen(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.svc.Reopen(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleExamError(c, err)
		return
	}
	response.OK(c, resp)
}

func handleExamError(c *gin.Context, err error) {
	if handleWorkItemError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrExamNotFound):
		response.NotFound(c, 22004, err.Error())
	case errors.Is(err, service.ErrExamVersionStale):
		response.Conflict(c, 22009, err.Error())
	default:
		response.InternalError(c)
	}
}
