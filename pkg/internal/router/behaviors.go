package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/objectvault/pkg/internal/handle"
)

// RegisterBehaviorsRoutes 注册用户行为与阅读进度路由.
func RegisterBehaviorsRoutes(g *gin.RouterGroup) {
	behaviorsRoutes := g.Group("/user-behaviors")
	{
		// 行为记录
		behaviorsRoutes.POST("/record", handle.RecordBehavior)
		behaviorsRoutes.POST("/batch-record", handle.BatchRecordBehaviors)
		// 行为查询与统计
		behaviorsRoutes.GET("/query", handle.QueryBehaviors)
		behaviorsRoutes.GET("/statistics", handle.BehaviorStatistics)
		behaviorsRoutes.GET("/popular/:target_type", handle.PopularTargets)
		behaviorsRoutes.GET("/user/:user_id/timeline", handle.UserTimeline)
		// 历史记录清理
		behaviorsRoutes.DELETE("/cleanup", handle.CleanupBehaviors)

		// 阅读进度
		progressGroup := behaviorsRoutes.Group("/reading-progress")
		{
			progressGroup.POST("/save", handle.SaveReadingProgress)
			progressGroup.GET("/load/:user_id/:document_id", handle.LoadReadingProgress)
		}

		// 阅读会话生命周期
		sessionGroup := behaviorsRoutes.Group("/reading-session")
		{
			sessionGroup.POST("", handle.ManageReadingSession)
			sessionGroup.GET("/active/:user_id", handle.ActiveReadingSessions)
			sessionGroup.POST("/cleanup/:user_id", handle.CleanupReadingSessions)
		}

		// 阅读分析
		behaviorsRoutes.GET("/reading-analytics/user/:user_id", handle.ReadingAnalytics)
	}
}
