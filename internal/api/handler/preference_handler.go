package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"campus-life/backend/internal/dto"
	"campus-life/backend/internal/scheduling"
	"campus-life/backend/internal/service"
	"campus-life/backend/pkg/response"
)

// PreferenceHandler 用户偏好 Handler
type PreferenceHandler struct {
	svc service.PreferenceService
}

// NewPreferenceHandler 创建 PreferenceHandler 实例
func NewPreferenceHandler(svc service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{svc: svc}
}

// Get GET /api/v1/preferences
func (h *PreferenceHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.svc.Get(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, resp)
}

// UpdateReminder PUT /api/v1/preferences/reminder
func (h *PreferenceHandler) UpdateReminder(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 25000, err.Error())
		return
	}

	resp, err := h.svc.UpdateReminder(c.Request.Context(), &req, userID)
	if err != nil {
		if errors.Is(err, scheduling.ErrUnknownReminderSetting) {
			response.BadRequest(c, 25000, err.Error())
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, resp)
}
