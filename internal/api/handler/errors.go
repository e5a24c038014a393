package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-life/backend/internal/service"
	"campus-life/backend/pkg/response"
)

// handleWorkItemError 作业、考试、自定义事项共用的错误映射，已处理时返回 true
func handleWorkItemError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, service.ErrNotifyAfterDue):
		response.ErrorWithDetails(c, http.StatusBadRequest, 21101, "通知时间不能晚于截止时间", err.Error())
	case errors.Is(err, service.ErrWorkItemCourseGone):
		response.ErrorWithDetails(c, http.StatusBadRequest, 21102, "关联课程不存在", err.Error())
	default:
		return false
	}
	return true
}
