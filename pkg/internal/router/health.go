package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/objectvault/pkg/internal/handle"
)

// RegisterHealthCheckRoute 注册健康检查路由.
// /health 为整体存活探针，/health/* 为各依赖组件的深度检查.
func RegisterHealthCheckRoute(r *gin.Engine) {
	r.GET("/", handle.Health)
	r.GET("/health", handle.Health)
	r.GET("/healthz", handle.Health)

	healthRoutes := r.Group("/health")
	{
		healthRoutes.GET("/db", handle.HealthDB)
		healthRoutes.GET("/storage", handle.HealthStorage)
		healthRoutes.GET("/es", handle.HealthES)
		healthRoutes.GET("/mq", handle.HealthMQ)
		healthRoutes.GET("/kv", handle.HealthKV)
	}
}
