package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/objectvault/pkg/internal/handle"
)

// RegisterObjectsRoutes 注册对象管理路由.
// 对象键允许包含 "/"，读取类路由使用通配参数，
// 由处理器按 /stat、/public-url、/presigned-url 后缀分发.
func RegisterObjectsRoutes(g *gin.RouterGroup) {
	objectsRoutes := g.Group("/objects")
	{
		// 跨桶复制
		objectsRoutes.POST("/copy", handle.CopyObject)

		// 单桶对象操作
		bucketGroup := objectsRoutes.Group("/:bucket")
		{
			// 列出对象
			bucketGroup.GET("", handle.ListObjects)
			// 上传并触发索引流水线
			bucketGroup.POST("/upload", handle.UploadObject)
			// 下载 / 元数据 / 公共 URL / 预签名 URL
			bucketGroup.GET("/*key", handle.GetObject)
			// 仅响应头的元数据查询
			bucketGroup.HEAD("/*key", handle.HeadObject)
			// 删除对象并清理索引
			bucketGroup.DELETE("/*key", handle.DeleteObject)
		}
	}
}
