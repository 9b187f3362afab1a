package middleware

import (
	"github.com/gin-gonic/gin"

	"revizly/internal/pkg/id"
)

const (
	// RequestIDHeader 请求ID请求头
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey gin.Context 中的请求ID键
	RequestIDKey = "request_id"
)

// RequestID 为每个请求分配请求ID，沿用上游传入的值
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" || len(rid) > 128 {
			rid = id.NewRequestID()
		}
		c.Set(RequestIDKey, rid)
		c.Header(RequestIDHeader, rid)
		c.Next()
	}
}
