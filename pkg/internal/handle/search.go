package handle

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/objectvault/pkg/internal/service"
	"github.com/yeisme/objectvault/pkg/internal/types"
	"github.com/yeisme/objectvault/pkg/log"
	"github.com/yeisme/objectvault/pkg/rule"
)

// SearchNewsletter 关键词搜索文章索引.
//
//	@Summary		搜索文章
//	@Description	在文章索引中按关键词搜索，分类与标签会拼接进查询词，支持高亮与排序
//	@Tags			文章搜索
//	@Produce		json
//	@Param			query		query		string		true	"搜索关键词"
//	@Param			categories	query		[]string	false	"分类列表"
//	@Param			tags		query		[]string	false	"标签列表"
//	@Param			from		query		int			false	"起始位置（默认 0）"
//	@Param			size		query		int			false	"返回数量（默认 20）"
//	@Param			sort_by		query		string		false	"排序字段: _score / post_date"
//	@Param			highlight	query		bool		false	"是否返回高亮片段（默认 true）"
//	@Success		200			{object}	types.NewsletterSearchResponse	"搜索结果"
//	@Failure		400			{object}	map[string]string				"请求参数错误"
//	@Failure		500			{object}	map[string]string				"服务器内部错误"
//	@Router			/api/v1/newsletter/search [get]
func SearchNewsletter(c *gin.Context) {
	l := log.Logger()

	var req types.NewsletterSearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		l.Warn().Err(err).Msg("invalid query params")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	searchNewsletter(c, &req)
}

// SearchNewsletterPost 关键词搜索文章索引（POST JSON）.
//
//	@Summary		搜索文章（POST）
//	@Description	与 GET 搜索语义相同，参数通过 JSON body 传递，便于复杂查询词
//	@Tags			文章搜索
//	@Accept			json
//	@Produce		json
//	@Param			search	body		types.NewsletterSearchRequest	true	"搜索请求"
//	@Success		200		{object}	types.NewsletterSearchResponse	"搜索结果"
//	@Failure		400		{object}	map[string]string				"请求参数错误"
//	@Failure		500		{object}	map[string]string				"服务器内部错误"
//	@Router			/api/v1/newsletter/search [post]
func SearchNewsletterPost(c *gin.Context) {
	l := log.Logger()

	var req types.NewsletterSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	// JSON 绑定不带 query 默认值，这里补齐
	if req.From < 0 {
		req.From = 0
	}

	if req.Size <= 0 {
		req.Size = 20
	}

	searchNewsletter(c, &req)
}

func searchNewsletter(c *gin.Context, req *types.NewsletterSearchRequest) {
	l := log.Logger()

	if err := rule.ValidateStruct(req); err != nil {
		l.Warn().Err(err).Msg("invalid search request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	svc := service.NewSearchService(c.Request.Context())

	resp, err := svc.SearchArticles(c.Request.Context(), req)
	if err != nil {
		l.Error().Err(err).Str("query", req.Query).Msg("search articles failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// AdvancedSearch 结构化条件搜索文章索引.
//
//	@Summary		高级搜索
//	@Description	按关键词与结构化条件（类型、标签、日期范围、字数范围）组合搜索文章
//	@Tags			文章搜索
//	@Accept			json
//	@Produce		json
//	@Param			search	body		types.AdvancedSearchRequest		true	"高级搜索请求"
//	@Success		200		{object}	types.AdvancedSearchResponse	"搜索结果"
//	@Failure		400		{object}	map[string]string				"请求参数错误"
//	@Failure		500		{object}	map[string]string				"服务器内部错误"
//	@Router			/api/v1/newsletter/search/advanced [post]
func AdvancedSearch(c *gin.Context) {
	l := log.Logger()

	var req types.AdvancedSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if req.From < 0 {
		req.From = 0
	}

	if req.Size <= 0 {
		req.Size = 20
	}

	if err := rule.ValidateStruct(&req); err != nil {
		l.Warn().Err(err).Msg("invalid search request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	svc := service.NewSearchService(c.Request.Context())

	resp, err := svc.SearchWithFilters(c.Request.Context(), &req)
	if err != nil {
		l.Error().Err(err).Msg("advanced search failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// QuickSearch 搜索框联想用的快速搜索，返回精简结果.
//
//	@Summary		快速搜索
//	@Description	为搜索框联想提供前 5 条精简结果（标题、副标题、日期、高亮）
//	@Tags			文章搜索
//	@Produce		json
//	@Param			q			query		string		true	"搜索关键词"
//	@Param			categories	query		[]string	false	"分类列表"
//	@Param			tags		query		[]string	false	"标签列表"
//	@Success		200			{object}	types.QuickSearchResponse	"快速搜索结果"
//	@Failure		400			{object}	map[string]string			"请求参数错误"
//	@Failure		500			{object}	map[string]string			"服务器内部错误"
//	@Router			/api/v1/newsletter/search/quick [get]
func QuickSearch(c *gin.Context) {
	l := log.Logger()

	q := c.Query("q")
	if q == "" {
		l.Warn().Msg("missing query keyword")
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query keyword"})

		return
	}

	svc := service.NewSearchService(c.Request.Context())

	resp, err := svc.QuickSearch(c.Request.Context(), q, c.QueryArray("categories"), c.QueryArray("tags"))
	if err != nil {
		l.Error().Err(err).Str("query", q).Msg("quick search failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// AggregateTags 聚合文章索引中的标签分布.
//
//	@Summary		标签聚合
//	@Description	统计文章索引中的标签使用情况，返回按文档数排序的标签列表
//	@Tags			文章搜索
//	@Produce		json
//	@Param			size			query		int	false	"返回标签数量上限（默认 50）"
//	@Param			min_doc_count	query		int	false	"最小文档数阈值（默认 1）"
//	@Success		200				{object}	types.TagsAggregateResponse	"标签聚合结果"
//	@Failure		400				{object}	map[string]string			"请求参数错误"
//	@Failure		500				{object}	map[string]string			"服务器内部错误"
//	@Router			/api/v1/newsletter/search/tags/aggregate [get]
func AggregateTags(c *gin.Context) {
	l := log.Logger()

	var req types.TagsAggregateRequest
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

	svc := service.NewSearchService(c.Request.Context())

	resp, err := svc.AggregateTags(c.Request.Context(), req.Size, req.MinDocCount)
	if err != nil {
		l.Error().Err(err).Msg("aggregate tags failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetArticle 按文档 ID 查询文章详情，并合并关系库中的互动统计.
//
//	@Summary		查询文章详情
//	@Description	按索引文档 ID 返回文章全文与元数据，阅读量、点赞数等计数合并自关系库
//	@Tags			文章搜索
//	@Produce		json
//	@Param			article_id	path		string							true	"文章文档 ID"
//	@Success		200			{object}	types.ArticleDetailResponse		"文章详情"
//	@Failure		404			{object}	map[string]string				"文章不存在"
//	@Failure		500			{object}	map[string]string				"服务器内部错误"
//	@Router			/api/v1/newsletter/search/{article_id} [get]
func GetArticle(c *gin.Context) {
	l := log.Logger()

	articleID := c.Param("article_id")

	svc := service.NewSearchService(c.Request.Context())

	article, err := svc.GetArticleByID(c.Request.Context(), articleID)
	if err != nil {
		l.Error().Err(err).Str("article", articleID).Msg("get article failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, types.ArticleDetailResponse{Success: true, Article: article})
}

// SearchDocuments 在原始文档索引中搜索.
//
//	@Summary		搜索文档
//	@Description	在文档索引中按关键词搜索原始文档，支持按桶和文档类型过滤与模糊匹配
//	@Tags			文档搜索
//	@Produce		json
//	@Param			query			query		string	true	"搜索关键词"
//	@Param			bucket_name		query		string	false	"限定桶名"
//	@Param			document_type	query		string	false	"限定文档类型"
//	@Param			fuzzy			query		bool	false	"是否启用模糊匹配（默认 true）"
//	@Param			size			query		int		false	"返回数量（默认 20）"
//	@Success		200				{object}	types.DocumentSearchResponse	"文档搜索结果"
//	@Failure		400				{object}	map[string]string				"请求参数错误"
//	@Failure		500				{object}	map[string]string				"服务器内部错误"
//	@Router			/api/v1/documents/search [get]
func SearchDocuments(c *gin.Context) {
	l := log.Logger()

	var req types.DocumentSearchRequest
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

	svc := service.NewDocumentService(c.Request.Context())

	docs, err := svc.SearchDocuments(c.Request.Context(), &req)
	if err != nil {
		l.Error().Err(err).Str("query", req.Query).Msg("search documents failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, types.DocumentSearchResponse{Total: len(docs), Documents: docs})
}

// SimilarDocuments 查询与指定文档内容相似的文档.
//
//	@Summary		查询相似文档
//	@Description	基于 more_like_this 返回与指定文档内容相似的文档列表
//	@Tags			文档搜索
//	@Produce		json
//	@Param			doc_id	path		string	true	"文档 ID"
//	@Param			size	query		int		false	"返回数量（默认 5）"
//	@Success		200		{object}	types.SimilarDocumentsResponse	"相似文档结果"
//	@Failure		404		{object}	map[string]string				"文档不存在"
//	@Failure		500		{object}	map[string]string				"服务器内部错误"
//	@Router			/api/v1/documents/{doc_id}/similar [get]
func SimilarDocuments(c *gin.Context) {
	l := log.Logger()

	docID := c.Param("doc_id")

	size := 5
	if raw := c.Query("size"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 50 {
			size = v
		}
	}

	svc := service.NewDocumentService(c.Request.Context())

	similar, err := svc.SimilarDocuments(c.Request.Context(), docID, size)
	if err != nil {
		l.Error().Err(err).Str("document", docID).Msg("similar documents failed")
		c.JSON(errStatus(err), gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, types.SimilarDocumentsResponse{
		DocumentID: docID,
		Total:      len(similar),
		Similar:    similar,
	})
}
