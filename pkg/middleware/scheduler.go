// Package middleware 提供 gin 中间件：访问日志、CORS、追踪、指标、
// 熔断、限流、响应缓存以及 storage/scheduler 的 context 注入.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/objectvault/pkg/scheduler"
)

type schedulerKey struct{}

// SchedulerMiddleware 把全局调度器注入 request context，供 handler 查询任务状态.
func SchedulerMiddleware(sched *scheduler.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.WithValue(c.Request.Context(), schedulerKey{}, sched)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetScheduler 从 request context 取出调度器，未注入时返回 nil.
func GetScheduler(c *gin.Context) *scheduler.Scheduler {
	sched, _ := c.Request.Context().Value(schedulerKey{}).(*scheduler.Scheduler)
	return sched
}
