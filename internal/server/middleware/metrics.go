package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"revizly/internal/pkg/metrics"
)

// Metrics 记录请求计数与耗时，path 使用路由模板避免标签基数膨胀
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}
