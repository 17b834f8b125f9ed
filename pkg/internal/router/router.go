// Package router 管理路由配置，用于设置HTTP服务的路由规则.
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterAPIRoutes 将全部业务路由注册到传入的路由组（约定上层传 /api/v1）.
// router 包只负责路径与处理器的绑定，处理器实现由 pkg/internal/handle 提供.
func RegisterAPIRoutes(g *gin.RouterGroup) {
	RegisterBucketsRoutes(g)
	RegisterObjectsRoutes(g)
	RegisterSearchRoutes(g)
	RegisterInteractionsRoutes(g)
	RegisterBehaviorsRoutes(g)
	RegisterSchedulerRoutes(g)
}
