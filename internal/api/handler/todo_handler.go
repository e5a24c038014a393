package handler

import (
	"github.com/gin-gonic/gin"

	"campus-life/backend/internal/dto"
	"campus-life/backend/internal/service"
	"campus-life/backend/pkg/response"
)

// TodoHandler 首页待办 Handler
type TodoHandler struct {
	svc service.TodoService
}

// NewTodoHandler 创建 TodoHandler 实例
func NewTodoHandler(svc service.TodoService) *TodoHandler {
	return &TodoHandler{svc: svc}
}

// Feed 待办列表
// GET /api/v1/todos?limit=5
func (h *TodoHandler) Feed(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.TodoFeedRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 24000, err.Error())
		return
	}

	resp, err := h.svc.Feed(c.Request.Context(), userID, req.Limit)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, resp)
}
