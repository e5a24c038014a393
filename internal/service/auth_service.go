package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"campus-life/backend/internal/dto"
	"campus-life/backend/pkg/jwt"
)

var (
	ErrRevocationUnavailable = errors.New("Token 吊销服务不可用")
	ErrInvalidUserID         = errors.New("用户 ID 必须为 UUID")
)

// TokenRevoker 记录已吊销的 Token，*redis.Client 实现了该接口
type TokenRevoker interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthService 认证业务接口
// 账号体系由外部身份服务负责，本服务只校验与吊销 Token
type AuthService interface {
	Session(claims *jwt.Claims) *dto.SessionResponse
	Logout(ctx context.Context, claims *jwt.Claims) error
	// IssueToken 为指定用户签发 Token，仅供运维命令与联调使用
	IssueToken(userID string) (*dto.TokenResponse, error)
}

type authService struct {
	jwtMgr  *jwt.Manager
	revoker TokenRevoker
	now     func() time.Time
	logger  *zap.Logger
}

// NewAuthService 创建 AuthService 实例；revoker 为 nil 时登出不可用
func NewAuthService(jwtMgr *jwt.Manager, revoker TokenRevoker, logger *zap.Logger) AuthService {
	return &authService{
		jwtMgr:  jwtMgr,
		revoker: revoker,
		now:     time.Now,
		logger:  logger,
	}
}

func (s *authService) Session(claims *jwt.Claims) *dto.SessionResponse {
	resp := &dto.SessionResponse{UserID: claims.UserID, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time
	}
	return resp
}

func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if s.revoker == nil {
		return ErrRevocationUnavailable
	}
	if err := s.revoker.BlacklistToken(ctx, claims.ID, claims.Remaining(s.now())); err != nil {
		s.logger.Error("吊销 Token 失败", zap.String("user_id", claims.UserID), zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) IssueToken(userID string) (*dto.TokenResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, ErrInvalidUserID
	}

	token, err := s.jwtMgr.GenerateAccessToken(userID)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}
	claims, err := s.jwtMgr.ParseToken(token)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken: token,
		ExpiresAt:   claims.ExpiresAt.Time,
		UserID:      userID,
	}, nil
}
