package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/objectvault/pkg/internal/service"
	"github.com/yeisme/objectvault/pkg/internal/types"
	"github.com/yeisme/objectvault/pkg/log"
	"github.com/yeisme/objectvault/pkg/rule"
)

// ToggleNewsletterLike 切换文章点赞状态：已赞取消，未赞添加.
//
//	@Summary		文章点赞/取消点赞
//	@Description	切换指定文章的点赞状态并返回最新点赞数，userId 缺省使用匿名占位用户
//	@Tags			文章互动
//	@Accept			json
//	@Produce		json
//	@Param			newsletter_id	path		string					true	"文章ID"
//	@Param			like			body		types.LikeActionRequest	true	"点赞请求"
//	@Success		200				{object}	types.LikeResponse		"点赞结果"
//	@Failure		400				{object}	map[string]string		"请求参数错误"
//	@Failure		500				{object}	map[string]string		"服务器内部错误"
//	@Router			/api/v1/newsletters/{newsletter_id}/like [post]
func ToggleNewsletterLike(c *gin.Context) {
	l := log.Logger()

	newsletterID := c.Param("newsletter_id")

	var req types.LikeActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if err := rule.ValidateStruct(&req); err != nil {
		l.Warn().Err(err).Msg("invalid like action")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	svc := service.NewInteractionService(c.Request.Context())

	resp, err := svc.ToggleNewsletterLike(c.Request.Context(), newsletterID, req.UserID)
	if err != nil {
		l.Error().Err(err).Str("newsletter", newsletterID).Msg("toggle newsletter like failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// ToggleCommentLike 切换评论点赞状态.
//
//	@Summary		评论点赞/取消点赞
//	@Description	切换指定评论的点赞状态并返回最新点赞数
//	@Tags			文章互动
//	@Accept			json
//	@Produce		json
//	@Param			comment_id	path		string					true	"评论ID"
//	@Param			like		body		types.LikeActionRequest	true	"点赞请求"
//	@Success		200			{object}	types.LikeResponse		"点赞结果"
//	@Failure		400			{object}	map[string]string		"请求参数错误"
//	@Failure		404			{object}	map[string]string		"评论不存在"
//	@Failure		500			{object}	map[string]string		"服务器内部错误"
//	@Router			/api/v1/newsletters/comments/{comment_id}/like [post]
func ToggleCommentLike(c *gin.Context) {
	l := log.Logger()

	commentID := c.Param("comment_id")

	var req types.LikeActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if err := rule.ValidateStruct(&req); err != nil {
		l.Warn().Err(err).Msg("invalid like action")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	svc := service.NewInteractionService(c.Request.Context())

	resp, err := svc.ToggleCommentLike(c.Request.Context(), commentID, req.UserID)
	if err != nil {
		l.Error().Err(err).Str("comment", commentID).Msg("toggle comment like failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListComments 分页获取文章的顶层评论，每条预载前 3 条回复.
//
//	@Summary		获取文章评论
//	@Description	分页返回指定文章的顶层评论，支持按时间或点赞数排序，每条评论附带前 3 条回复
//	@Tags			文章互动
//	@Produce		json
//	@Param			newsletter_id	path		string	true	"文章ID"
//	@Param			page			query		int		false	"页码（默认 1）"
//	@Param			pageSize		query		int		false	"每页数量（默认 20）"
//	@Param			sortBy			query		string	false	"排序方式: latest / popular"
//	@Success		200				{object}	types.CommentListResponse	"评论列表"
//	@Failure		400				{object}	map[string]string			"请求参数错误"
//	@Failure		500				{object}	map[string]string			"服务器内部错误"
//	@Router			/api/v1/newsletters/{newsletter_id}/comments [get]
func ListComments(c *gin.Context) {
	l := log.Logger()

	newsletterID := c.Param("newsletter_id")

	var req types.CommentListRequest
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

	svc := service.NewInteractionService(c.Request.Context())

	resp, err := svc.ListComments(c.Request.Context(), newsletterID, &req)
	if err != nil {
		l.Error().Err(err).Str("newsletter", newsletterID).Msg("list comments failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// CreateComment 发表评论或回复.
//
//	@Summary		发表评论
//	@Description	为指定文章发表评论，携带 parentId 时作为对应评论的回复
//	@Tags			文章互动
//	@Accept			json
//	@Produce		json
//	@Param			newsletter_id	path		string						true	"文章ID"
//	@Param			comment			body		types.CommentCreateRequest	true	"评论内容"
//	@Success		200				{object}	types.CommentCreateResponse	"发表结果"
//	@Failure		400				{object}	map[string]string			"请求参数错误"
//	@Failure		404				{object}	map[string]string			"父评论不存在"
//	@Failure		500				{object}	map[string]string			"服务器内部错误"
//	@Router			/api/v1/newsletters/{newsletter_id}/comments [post]
func CreateComment(c *gin.Context) {
	l := log.Logger()

	newsletterID := c.Param("newsletter_id")

	var req types.CommentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if err := rule.ValidateStruct(&req); err != nil {
		l.Warn().Err(err).Msg("invalid comment content")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	svc := service.NewInteractionService(c.Request.Context())

	resp, err := svc.CreateComment(c.Request.Context(), newsletterID, &req)
	if err != nil {
		l.Error().Err(err).Str("newsletter", newsletterID).Msg("create comment failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteComment 软删除评论，正文替换为占位文本.
//
//	@Summary		删除评论
//	@Description	软删除指定评论，评论状态置为 deleted 且内容替换为占位文本
//	@Tags			文章互动
//	@Produce		json
//	@Param			comment_id	path		string						true	"评论ID"
//	@Success		200			{object}	types.CommentDeleteResponse	"删除结果"
//	@Failure		404			{object}	map[string]string			"评论不存在"
//	@Failure		500			{object}	map[string]string			"服务器内部错误"
//	@Router			/api/v1/newsletters/comments/{comment_id} [delete]
func DeleteComment(c *gin.Context) {
	l := log.Logger()

	commentID := c.Param("comment_id")

	svc := service.NewInteractionService(c.Request.Context())

	resp, err := svc.DeleteComment(c.Request.Context(), commentID)
	if err != nil {
		l.Error().Err(err).Str("comment", commentID).Msg("delete comment failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListReplies 分页获取某条评论的全部回复.
//
//	@Summary		获取评论回复
//	@Description	分页返回指定评论的回复列表，按时间正序
//	@Tags			文章互动
//	@Produce		json
//	@Param			comment_id	path		string	true	"评论ID"
//	@Param			page		query		int		false	"页码（默认 1）"
//	@Param			pageSize	query		int		false	"每页数量（默认 10）"
//	@Success		200			{object}	types.CommentRepliesResponse	"回复列表"
//	@Failure		400			{object}	map[string]string				"请求参数错误"
//	@Failure		500			{object}	map[string]string				"服务器内部错误"
//	@Router			/api/v1/newsletters/comments/{comment_id}/replies [get]
func ListReplies(c *gin.Context) {
	l := log.Logger()

	commentID := c.Param("comment_id")

	var req types.CommentRepliesRequest
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

	svc := service.NewInteractionService(c.Request.Context())

	resp, err := svc.ListReplies(c.Request.Context(), commentID, &req)
	if err != nil {
		l.Error().Err(err).Str("comment", commentID).Msg("list replies failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}
