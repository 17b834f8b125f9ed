package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/objectvault/pkg/context"
	"github.com/yeisme/objectvault/pkg/internal/storage"
)

// StorageMiddleware 把存储管理器注入 request context，service 层从中取 DB/KV/MQ/对象存储.
func StorageMiddleware(manager *storage.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.WithStorageManager(c.Request.Context(), manager)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
