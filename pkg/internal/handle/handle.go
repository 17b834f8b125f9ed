// Package handle 提供 HTTP 请求处理器的实现.
package handle

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/objectvault/pkg/internal/service"
	"github.com/yeisme/objectvault/pkg/internal/storage/objstore"
	"github.com/yeisme/objectvault/pkg/internal/types"
)

// errStatus 把服务层错误映射为 HTTP 状态码：校验 400、缺失 404、冲突 409，
// 其余一律 500.
func errStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound), errors.Is(err, objstore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, objstore.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// clientInfo 从请求头提取行为上报用的客户端上下文.
func clientInfo(c *gin.Context) types.ClientInfo {
	return types.ClientInfo{
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
		Referer:   c.GetHeader("Referer"),
	}
}
