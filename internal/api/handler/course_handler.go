package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-life/backend/internal/api/middleware"
	"campus-life/backend/internal/dto"
	"campus-life/backend/internal/scheduling"
	"campus-life/backend/internal/service"
	"campus-life/backend/pkg/response"
)

// maxICSUploadSize ICS 上传文件大小上限
const maxICSUploadSize = 5 << 20

// CourseHandler 课程模块 Handler
type CourseHandler struct {
	svc service.CourseService
}

// NewCourseHandler 创建 CourseHandler 实例
func NewCourseHandler(svc service.CourseService) *CourseHandler {
	return &CourseHandler{svc: svc}
}

// Create 创建课程
// POST /api/v1/courses
func (h *CourseHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 20000, err.Error())
		return
	}

	resp, err := h.svc.Create(c.Request.Context(), &req, userID)
	if err != nil {
		handleCourseError(c, err)
		return
	}
	response.Created(c, resp)
}

// List 我的课程列表
// GET /api/v1/courses
func (h *CourseHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		handleCourseError(c, err)
		return
	}
	response.OK(c, resp)
}

// Get 课程详情
// GET /api/v1/courses/:id
func (h *CourseHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.svc.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleCourseError(c, err)
		return
	}
	response.OK(c, resp)
}

// Update 更新课程（时段整体替换，重新做冲突检测）
// PUT /api/v1/courses/:id
func (h *CourseHandler) Update(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 20000, err.Error())
		return
	}

	resp, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req, userID)
	if err != nil {
		handleCourseError(c, err)
		return
	}
	response.OK(c, resp)
}

// Delete 删除课程
// DELETE /api/v1/courses/:id
func (h *CourseHandler) Delete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleCourseError(c, err)
		return
	}
	response.OK(c, nil)
}

// CheckConflicts 冲突预检
// POST /api/v1/courses/conflicts
func (h *CourseHandler) CheckConflicts(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CheckConflictsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 20000, err.Error())
		return
	}

	resp, err := h.svc.CheckConflicts(c.Request.Context(), &req, userID)
	if err != nil {
		handleCourseError(c, err)
		return
	}
	response.OK(c, resp)
}

// ImportICS 导入 ICS 课表
// POST /api/v1/courses/import
//
// 支持两种方式：
//   - 文件上传: multipart/form-data, field="file"
//   - URL 导入: application/json, body={"url": "..."}
func (h *CourseHandler) ImportICS(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err == nil {
		defer file.Close()
		if header.Size > maxICSUploadSize {
			response.BadRequest(c, 20013, "ICS 文件不能超过 5MB")
			return
		}
		resp, err := h.svc.ImportICS(c.Request.Context(), file, userID)
		if err != nil {
			handleCourseError(c, err)
			return
		}
		response.Created(c, resp)
		return
	}
	if middleware.IsBodyTooLarge(err) {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
		return
	}

	var req dto.ImportICSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 20000, "请上传 ICS 文件或提供 ICS URL")
		return
	}

	body, err := service.FetchICSContent(c.Request.Context(), req.URL)
	if err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 20012, "ICS URL 获取失败", err.Error())
		return
	}
	defer body.Close()

	resp, err := h.svc.ImportICS(c.Request.Context(), body, userID)
	if err != nil {
		handleCourseError(c, err)
		return
	}
	response.Created(c, resp)
}

// handleCourseError 统一课程模块错误映射
// 冲突时把完整冲突列表放在 data 中返回
func handleCourseError(c *gin.Context, err error) {
	var conflictErr *scheduling.ConflictError
	switch {
	case errors.As(err, &conflictErr):
		response.ErrorWithData(c, http.StatusConflict, 20002, conflictErr.Error(), dto.ConflictCheckResponse{
			HasConflict: true,
			Conflicts:   conflictErr.Conflicts,
		})
	case errors.Is(err, scheduling.ErrInvalidSlot):
		response.ErrorWithDetails(c, http.StatusBadRequest, 20001, "无效的上课时段", err.Error())
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 20004, err.Error())
	case errors.Is(err, service.ErrCourseVersionStale):
		response.Conflict(c, 20009, err.Error())
	case errors.Is(err, service.ErrICSParseFailed):
		response.ErrorWithDetails(c, http.StatusBadRequest, 20010, "ICS 文件解析失败", err.Error())
	case errors.Is(err, service.ErrICSEmpty):
		response.ErrorWithDetails(c, http.StatusBadRequest, 20011, "ICS 文件中无有效课程", err.Error())
	default:
		response.InternalError(c)
	}
}
