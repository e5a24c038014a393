package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-life/backend/pkg/response"
)

// BodyLimit 请求体大小上限，需大于 ICS 上传上限。
// 声明的 Content-Length 超限直接 413；未声明长度的请求在读取时截断，
// 由读取方通过 IsBodyTooLarge 识别。
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			RejectBodyTooLarge(c, maxBytes)
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// IsBodyTooLarge 读取请求体的错误是否由 BodyLimit 截断引起
func IsBodyTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}

// RejectBodyTooLarge 以 413 终止请求
func RejectBodyTooLarge(c *gin.Context, maxBytes int64) {
	response.ErrorWithDetails(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大",
		fmt.Sprintf("上限 %d 字节", maxBytes))
	c.Abort()
}
