package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/objectvault/pkg/metrics"
)

// PrometheusMiddleware 记录请求计数与耗时.
// 使用路由模板（如 /api/v1/buckets/:bucket）作为 path 标签，避免标签基数爆炸.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			// 未命中任何路由（404）
			path = "unmatched"
		}
		method := c.Request.Method

		metrics.RequestCounter.WithLabelValues(method, path).Inc()
		metrics.RequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
