package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/objectvault/pkg/internal/handle"
)

// RegisterBucketsRoutes 注册存储桶管理路由.
func RegisterBucketsRoutes(g *gin.RouterGroup) {
	bucketsRoutes := g.Group("/buckets")
	{
		// 列出全部桶
		bucketsRoutes.GET("", handle.ListBuckets)
		// 创建桶
		bucketsRoutes.POST("", handle.CreateBucket)
		// 当前存储后端信息
		bucketsRoutes.GET("/storage/info", handle.StorageInfo)

		// 单个桶操作
		singleGroup := bucketsRoutes.Group("/:bucket_name")
		{
			// 删除桶
			singleGroup.DELETE("", handle.DeleteBucket)
			// 桶策略查询与设置
			singleGroup.GET("/policy", handle.GetBucketPolicy)
			singleGroup.PUT("/policy", handle.SetBucketPolicy)
			// 公共读切换
			singleGroup.PUT("/make-public", handle.MakeBucketPublic)
			singleGroup.PUT("/make-private", handle.MakeBucketPrivate)
		}
	}
}
