package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"campus-life/backend/pkg/redis"
	"campus-life/backend/pkg/response"
)

// RateLimit 按 用户 × 路由模板 计数的滑动窗口限流。
// 挂在 JWTAuth 之后时以用户 ID 计数，未认证请求退回客户端 IP。
// rdb 为 nil 或 Redis 出错时放行。
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	retryAfter := strconv.Itoa(int(window.Seconds()))
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		allowed, err := rdb.CheckRateLimit(c.Request.Context(), rateLimitKey(c), limit, window)
		if err != nil || allowed {
			c.Next()
			return
		}

		c.Header("Retry-After", retryAfter)
		response.ErrorWithData(c, http.StatusTooManyRequests, 10004, "请求过于频繁，请稍后再试",
			gin.H{"limit": limit, "window_seconds": int(window.Seconds())})
		c.Abort()
	}
}

func rateLimitKey(c *gin.Context) string {
	subject := "ip:" + c.ClientIP()
	if uid := c.GetString(ContextUserID); uid != "" {
		subject = "user:" + uid
	}
	return fmt.Sprintf("rate_limit:%s:%s", subject, c.FullPath())
}
