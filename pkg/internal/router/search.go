package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/objectvault/pkg/internal/handle"
)

// RegisterSearchRoutes 注册文章搜索与文档搜索路由.
func RegisterSearchRoutes(g *gin.RouterGroup) {
	// 文章索引搜索
	newsletterRoutes := g.Group("/newsletter/search")
	{
		// 关键词搜索（GET 走 query 参数，POST 走 JSON body）
		newsletterRoutes.GET("", handle.SearchNewsletter)
		newsletterRoutes.POST("", handle.SearchNewsletterPost)
		// 结构化条件高级搜索
		newsletterRoutes.POST("/advanced", handle.AdvancedSearch)
		// 搜索框联想
		newsletterRoutes.GET("/quick", handle.QuickSearch)
		// 标签聚合
		newsletterRoutes.GET("/tags/aggregate", handle.AggregateTags)
		// 文章详情（合并关系库互动统计）
		newsletterRoutes.GET("/:article_id", handle.GetArticle)
	}

	// 原始文档索引搜索
	documentsRoutes := g.Group("/documents")
	{
		documentsRoutes.GET("/search", handle.SearchDocuments)
		documentsRoutes.GET("/:doc_id/similar", handle.SimilarDocuments)
	}
}
