package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/objectvault/pkg/internal/handle"
)

// RegisterInteractionsRoutes 注册文章互动（点赞/评论）路由.
func RegisterInteractionsRoutes(g *gin.RouterGroup) {
	newslettersRoutes := g.Group("/newsletters")
	{
		// 评论操作（路径不带文章 ID）
		commentsGroup := newslettersRoutes.Group("/comments/:comment_id")
		{
			// 评论点赞切换
			commentsGroup.POST("/like", handle.ToggleCommentLike)
			// 回复分页
			commentsGroup.GET("/replies", handle.ListReplies)
			// 软删除评论
			commentsGroup.DELETE("", handle.DeleteComment)
		}

		// 单篇文章互动
		singleGroup := newslettersRoutes.Group("/:newsletter_id")
		{
			// 文章点赞切换
			singleGroup.POST("/like", handle.ToggleNewsletterLike)
			// 评论列表与发表
			singleGroup.GET("/comments", handle.ListComments)
			singleGroup.POST("/comments", handle.CreateComment)
		}
	}
}
