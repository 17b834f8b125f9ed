// Package api 定义HTTP服务的接口注册入口.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/objectvault/pkg/internal/handle"
	"github.com/yeisme/objectvault/pkg/internal/router"
)

// RegisterGroup 注册全部 HTTP 路由到传入的 gin 引擎.
// 业务接口挂在 /api/v1 下，根路径与健康检查、Swagger 挂在引擎根部.
func RegisterGroup(e *gin.Engine) *gin.Engine {
	e.GET("/", handle.APIRoot)

	router.RegisterHealthCheckRoute(e)
	router.RegisterSwaggerRoute(e)
	router.RegisterAPIRoutes(e.Group("/api/v1"))

	return e
}
