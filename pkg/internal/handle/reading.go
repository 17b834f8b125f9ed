package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/objectvault/pkg/internal/service"
	"github.com/yeisme/objectvault/pkg/internal/types"
	"github.com/yeisme/objectvault/pkg/log"
	"github.com/yeisme/objectvault/pkg/rule"
)

// 会话操作的响应文案.
var sessionActionMessages = map[string]string{
	"start":  "阅读会话已开始",
	"end":    "阅读会话已结束",
	"update": "阅读会话已更新",
}

// SaveReadingProgress 保存完整的阅读进度数据（整体进度、章节进度、滚动行为、洞察）.
//
//	@Summary		保存阅读进度
//	@Description	一次保存整体进度、章节进度、滚动行为与阅读洞察，逐组件落库并汇总保存结果
//	@Tags			阅读进度
//	@Accept			json
//	@Produce		json
//	@Param			progress	body		types.SaveProgressRequest	true	"阅读进度数据"
//	@Success		200			{object}	types.SaveProgressResponse	"保存结果"
//	@Failure		400			{object}	map[string]string			"请求参数错误"
//	@Router			/api/v1/user-behaviors/reading-progress/save [post]
func SaveReadingProgress(c *gin.Context) {
	l := log.Logger()

	var req types.SaveProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	svc := service.NewBehaviorService(c.Request.Context())

	c.JSON(http.StatusOK, svc.SaveCompleteProgress(c.Request.Context(), &req))
}

// LoadReadingProgress 加载用户在某文档上的阅读进度.
//
//	@Summary		加载阅读进度
//	@Description	返回整体进度、章节进度、最后会话、阅读历史统计、洞察与续读建议
//	@Tags			阅读进度
//	@Produce		json
//	@Param			user_id		path		string	true	"用户ID"
//	@Param			document_id	path		string	true	"文档ID"
//	@Success		200			{object}	types.LoadProgressResponse	"阅读进度数据"
//	@Failure		500			{object}	types.LoadProgressResponse	"加载失败"
//	@Router			/api/v1/user-behaviors/reading-progress/load/{user_id}/{document_id} [get]
func LoadReadingProgress(c *gin.Context) {
	l := log.Logger()

	userID := c.Param("user_id")
	documentID := c.Param("document_id")

	svc := service.NewBehaviorService(c.Request.Context())

	data, err := svc.LoadReadingProgress(c.Request.Context(), userID, documentID)
	if err != nil {
		l.Error().Err(err).Str("user", userID).Str("document", documentID).Msg("load reading progress failed")
		c.JSON(errStatus(err), types.LoadProgressResponse{Error: err.Error()})

		return
	}

	c.JSON(http.StatusOK, types.LoadProgressResponse{Success: true, Data: data})
}

// ManageReadingSession 管理阅读会话的开始、更新与结束.
//
//	@Summary		管理阅读会话
//	@Description	统一的阅读会话入口：action 为 start / end / update，会话数据放在 session_data 中
//	@Tags			阅读进度
//	@Accept			json
//	@Produce		json
//	@Param			session	body		types.ReadingSessionRequest		true	"会话操作请求"
//	@Success		200		{object}	types.ReadingSessionResponse	"会话处理结果"
//	@Failure		400		{object}	map[string]string				"请求参数错误"
//	@Failure		500		{object}	map[string]string				"服务器内部错误"
//	@Router			/api/v1/user-behaviors/reading-session [post]
func ManageReadingSession(c *gin.Context) {
	l := log.Logger()

	var req types.ReadingSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if err := rule.ValidateStruct(&req); err != nil {
		l.Warn().Err(err).Msg("invalid session action")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	svc := service.NewBehaviorService(c.Request.Context())

	result, err := svc.SaveReadingSession(c.Request.Context(), req.UserID, req.DocumentID, req.SessionData, req.Action)
	if err != nil {
		l.Error().Err(err).Str("user", req.UserID).Str("action", req.Action).Msg("manage reading session failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	id, _ := req.SessionData["id"].(string)

	c.JSON(http.StatusOK, types.ReadingSessionResponse{
		Success:    true,
		Action:     req.Action,
		SessionID:  id,
		Message:    sessionActionMessages[req.Action],
		BehaviorID: result.BehaviorID,
		CreatedAt:  result.CreatedAt,
	})
}

// ActiveReadingSessions 查询用户当前未结束的阅读会话.
//
//	@Summary		查询活跃阅读会话
//	@Description	返回用户最近开始且没有对应结束记录的阅读会话列表
//	@Tags			阅读进度
//	@Produce		json
//	@Param			user_id	path		string	true	"用户ID"
//	@Success		200		{object}	types.ActiveSessionsResponse	"活跃会话列表"
//	@Failure		500		{object}	map[string]string				"服务器内部错误"
//	@Router			/api/v1/user-behaviors/reading-session/active/{user_id} [get]
func ActiveReadingSessions(c *gin.Context) {
	l := log.Logger()

	userID := c.Param("user_id")

	svc := service.NewBehaviorService(c.Request.Context())

	resp, err := svc.ActiveSessions(c.Request.Context(), userID)
	if err != nil {
		l.Error().Err(err).Str("user", userID).Msg("list active sessions failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// CleanupReadingSessions 自动结束超时未关闭的阅读会话.
//
//	@Summary		清理过期阅读会话
//	@Description	将持续时间超过阈值的活跃会话标记为结束（退出原因 timeout_cleanup）
//	@Tags			阅读进度
//	@Produce		json
//	@Param			user_id						path		string	true	"用户ID"
//	@Param			max_session_duration_hours	query		int		false	"最大会话持续时间（小时，默认 24）"
//	@Success		200							{object}	types.CleanupSessionsResponse	"清理结果"
//	@Failure		400							{object}	map[string]string				"请求参数错误"
//	@Failure		500							{object}	map[string]string				"服务器内部错误"
//	@Router			/api/v1/user-behaviors/reading-session/cleanup/{user_id} [post]
func CleanupReadingSessions(c *gin.Context) {
	l := log.Logger()

	userID := c.Param("user_id")

	var req types.CleanupSessionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		l.Warn().Err(err).Msg("invalid query params")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if err := rule.ValidateStruct(&req); err != nil {
		l.Warn().Err(err).Msg("invalid query params")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	svc := service.NewBehaviorService(c.Request.Context())

	resp, err := svc.CleanupStaleSessions(c.Request.Context(), userID, req.MaxSessionDurationHours)
	if err != nil {
		l.Error().Err(err).Str("user", userID).Msg("cleanup stale sessions failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// ReadingAnalytics 返回用户的阅读习惯分析.
//
//	@Summary		用户阅读分析
//	@Description	统计最近 N 天的阅读会话数、阅读文档数、日均会话数、设备分布与阅读模式分布
//	@Tags			阅读进度
//	@Produce		json
//	@Param			user_id	path		string	true	"用户ID"
//	@Param			days	query		int		false	"分析天数（默认 30）"
//	@Success		200		{object}	types.ReadingAnalyticsResponse	"阅读分析结果"
//	@Failure		400		{object}	map[string]string				"请求参数错误"
//	@Failure		500		{object}	map[string]string				"服务器内部错误"
//	@Router			/api/v1/user-behaviors/reading-analytics/user/{user_id} [get]
func ReadingAnalytics(c *gin.Context) {
	l := log.Logger()

	userID := c.Param("user_id")

	var req types.ReadingAnalyticsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		l.Warn().Err(err).Msg("invalid query params")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if err := rule.ValidateStruct(&req); err != nil {
		l.Warn().Err(err).Msg("invalid query params")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	svc := service.NewBehaviorService(c.Request.Context())

	resp, err := svc.ReadingAnalytics(c.Request.Context(), userID, req.Days)
	if err != nil {
		l.Error().Err(err).Str("user", userID).Msg("reading analytics failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}
