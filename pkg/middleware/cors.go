package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/objectvault/pkg/configs"
)

// CORSMiddleware CORS 中间件. Debug 模式下放开所有来源.
func CORSMiddleware(cfg configs.ServerConfig) gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowWebSockets = true
	config.AllowFiles = true
	config.AddAllowHeaders("Authorization", "X-Session-ID")

	if cfg.Debug {
		// AllowAllOrigins 与 AllowOrigins 互斥, 同时设置会校验失败
		config.AllowAllOrigins = true
		config.AllowOrigins = nil
	}

	return cors.New(config)
}
