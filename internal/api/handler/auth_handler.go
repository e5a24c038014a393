package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-life/backend/internal/service"
	"campus-life/backend/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
// 登录与注册由外部身份服务负责
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Me 当前会话信息
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}
	response.OK(c, h.authSvc.Session(claims))
}

// Logout 用户登出，当前 Token 加入黑名单直至过期
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), claims); err != nil {
		if errors.Is(err, service.ErrRevocationUnavailable) {
			response.Error(c, http.StatusServiceUnavailable, 10007, err.Error())
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}
