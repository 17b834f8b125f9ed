package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/objectvault/pkg/internal/service"
	"github.com/yeisme/objectvault/pkg/internal/types"
	"github.com/yeisme/objectvault/pkg/log"
	"github.com/yeisme/objectvault/pkg/rule"
)

// sessionID 解析会话标识：请求体优先，其次 X-Session-ID 头，再缺省生成.
func sessionID(c *gin.Context, fromBody string) string {
	if fromBody != "" {
		return fromBody
	}

	if h := c.GetHeader("X-Session-ID"); h != "" {
		return h
	}

	return service.NewSessionID()
}

// RecordBehavior 记录单条用户行为.
//
//	@Summary		记录用户行为
//	@Description	记录一条用户行为，客户端 IP、User-Agent、Referer 由服务端从请求头提取；session_id 缺省取 X-Session-ID 头或自动生成
//	@Tags			用户行为
//	@Accept			json
//	@Produce		json
//	@Param			behavior	body		types.RecordBehaviorRequest		true	"行为上报请求"
//	@Success		200			{object}	types.RecordBehaviorResponse	"记录结果"
//	@Failure		400			{object}	map[string]string				"请求参数错误或行为类型无效"
//	@Failure		500			{object}	map[string]string				"服务器内部错误"
//	@Router			/api/v1/user-behaviors/record [post]
func RecordBehavior(c *gin.Context) {
	l := log.Logger()

	var req types.RecordBehaviorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	req.SessionID = sessionID(c, req.SessionID)

	svc := service.NewBehaviorService(c.Request.Context())

	resp, err := svc.RecordBehavior(c.Request.Context(), &req, clientInfo(c))
	if err != nil {
		l.Error().Err(err).Str("type", req.BehaviorType).Msg("record behavior failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// BatchRecordBehaviors 批量记录用户行为，逐条处理并汇总成功失败数.
//
//	@Summary		批量记录用户行为
//	@Description	一次上报多条行为记录，单条失败不影响其余记录，返回逐条结果
//	@Tags			用户行为
//	@Accept			json
//	@Produce		json
//	@Param			behaviors	body		[]types.RecordBehaviorRequest	true	"行为上报列表"
//	@Success		200			{object}	types.BatchRecordResponse		"批量记录结果"
//	@Failure		400			{object}	map[string]string				"请求参数错误"
//	@Router			/api/v1/user-behaviors/batch-record [post]
func BatchRecordBehaviors(c *gin.Context) {
	l := log.Logger()

	var reqs []types.RecordBehaviorRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		l.Warn().Err(err).Msg("invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	header := c.GetHeader("X-Session-ID")
	for i := range reqs {
		if reqs[i].SessionID == "" {
			reqs[i].SessionID = header
		}
	}

	svc := service.NewBehaviorService(c.Request.Context())

	c.JSON(http.StatusOK, svc.BatchRecord(c.Request.Context(), reqs, clientInfo(c)))
}

// QueryBehaviors 按条件查询行为记录.
//
//	@Summary		查询行为记录
//	@Description	按用户、会话、行为类型、目标与日期范围分页查询行为记录，按时间倒序
//	@Tags			用户行为
//	@Produce		json
//	@Param			user_id			query		string	false	"用户ID"
//	@Param			session_id		query		string	false	"会话ID"
//	@Param			behavior_type	query		string	false	"行为类型"
//	@Param			target_type		query		string	false	"目标类型"
//	@Param			target_id		query		string	false	"目标ID"
//	@Param			start_date		query		string	false	"开始日期 YYYY-MM-DD"
//	@Param			end_date		query		string	false	"结束日期 YYYY-MM-DD（含当日）"
//	@Param			page			query		int		false	"页码（默认 1）"
//	@Param			size			query		int		false	"每页数量（默认 20）"
//	@Success		200				{object}	types.BehaviorQueryResponse	"查询结果"
//	@Failure		400				{object}	map[string]string			"请求参数错误"
//	@Failure		500				{object}	map[string]string			"服务器内部错误"
//	@Router			/api/v1/user-behaviors/query [get]
func QueryBehaviors(c *gin.Context) {
	l := log.Logger()

	var req types.BehaviorQueryRequest
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

	resp, err := svc.QueryBehaviors(c.Request.Context(), &req)
	if err != nil {
		l.Error().Err(err).Msg("query behaviors failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// BehaviorStatistics 统计时间窗口内的行为分布.
//
//	@Summary		行为统计
//	@Description	统计最近 N 天的行为总量、独立用户数、独立会话数与按类型计数
//	@Tags			用户行为
//	@Produce		json
//	@Param			user_id			query		string	false	"用户ID（可选）"
//	@Param			behavior_type	query		string	false	"行为类型（可选）"
//	@Param			days			query		int		false	"统计天数（默认 7）"
//	@Success		200				{object}	types.BehaviorStatisticsResponse	"统计结果"
//	@Failure		400				{object}	map[string]string					"请求参数错误"
//	@Failure		500				{object}	map[string]string					"服务器内部错误"
//	@Router			/api/v1/user-behaviors/statistics [get]
func BehaviorStatistics(c *gin.Context) {
	l := log.Logger()

	var req types.BehaviorStatisticsRequest
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

	resp, err := svc.Statistics(c.Request.Context(), req.UserID, req.BehaviorType, req.Days)
	if err != nil {
		l.Error().Err(err).Msg("behavior statistics failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// PopularTargets 统计时间窗口内访问最多的目标.
//
//	@Summary		热门目标
//	@Description	按访问次数返回指定目标类型下最热门的目标，附带独立用户数与最近访问时间
//	@Tags			用户行为
//	@Produce		json
//	@Param			target_type		path		string	true	"目标类型（newsletter / document / search_query 等）"
//	@Param			behavior_type	query		string	false	"行为类型（可选）"
//	@Param			limit			query		int		false	"返回数量（默认 10）"
//	@Param			days			query		int		false	"统计天数（默认 7）"
//	@Success		200				{object}	types.PopularTargetsResponse	"热门目标结果"
//	@Failure		400				{object}	map[string]string				"请求参数错误"
//	@Failure		500				{object}	map[string]string				"服务器内部错误"
//	@Router			/api/v1/user-behaviors/popular/{target_type} [get]
func PopularTargets(c *gin.Context) {
	l := log.Logger()

	targetType := c.Param("target_type")

	var req types.PopularTargetsRequest
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

	resp, err := svc.PopularTargets(c.Request.Context(), targetType, req.BehaviorType, req.Limit, req.Days)
	if err != nil {
		l.Error().Err(err).Str("target_type", targetType).Msg("popular targets failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// UserTimeline 返回指定用户的行为时间线与统计.
//
//	@Summary		用户行为时间线
//	@Description	分页返回指定用户最近 N 天的行为记录（按时间倒序），附带同窗口的行为统计
//	@Tags			用户行为
//	@Produce		json
//	@Param			user_id	path		string	true	"用户ID"
//	@Param			days	query		int		false	"查看天数（默认 7）"
//	@Param			page	query		int		false	"页码（默认 1）"
//	@Param			size	query		int		false	"每页数量（默认 50）"
//	@Success		200		{object}	types.UserTimelineResponse	"时间线结果"
//	@Failure		400		{object}	map[string]string			"请求参数错误"
//	@Failure		500		{object}	map[string]string			"服务器内部错误"
//	@Router			/api/v1/user-behaviors/user/{user_id}/timeline [get]
func UserTimeline(c *gin.Context) {
	l := log.Logger()

	userID := c.Param("user_id")

	var req types.UserTimelineRequest
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

	resp, err := svc.UserTimeline(c.Request.Context(), userID, req.Days, req.Page, req.Size)
	if err != nil {
		l.Error().Err(err).Str("user", userID).Msg("user timeline failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// CleanupBehaviors 清理过期行为记录，dry_run 模式仅统计.
//
//	@Summary		清理历史行为
//	@Description	删除 N 天前的行为记录；dry_run 为 true 时仅统计命中数量不执行删除
//	@Tags			用户行为
//	@Produce		json
//	@Param			days	query		int		false	"删除 N 天前的记录（默认 90）"
//	@Param			dry_run	query		bool	false	"演练模式（默认 true）"
//	@Success		200		{object}	types.CleanupBehaviorsResponse	"清理结果"
//	@Failure		400		{object}	map[string]string				"请求参数错误"
//	@Failure		500		{object}	map[string]string				"服务器内部错误"
//	@Router			/api/v1/user-behaviors/cleanup [delete]
func CleanupBehaviors(c *gin.Context) {
	l := log.Logger()

	var req types.CleanupBehaviorsRequest
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

	dryRun := req.DryRun == nil || *req.DryRun

	svc := service.NewBehaviorService(c.Request.Context())

	resp, err := svc.CleanupBehaviors(c.Request.Context(), req.Days, dryRun)
	if err != nil {
		l.Error().Err(err).Msg("cleanup behaviors failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}
