package types

// NewsletterSearchRequest 文章搜索请求，GET 走 query 参数，POST 走 JSON body.
type NewsletterSearchRequest struct {
	Query      string   `form:"query" json:"query" binding:"required" rule:"required,min=1"` // 搜索关键词
	Categories []string `form:"categories" json:"categories,omitempty"`                      // 可选：分类（并入查询词）
	Tags       []string `form:"tags" json:"tags,omitempty"`                                  // 可选：标签（并入查询词）
	From       int      `form:"from,default=0" json:"from,omitempty" rule:"omitempty,min=0"`
	Size       int      `form:"size,default=20" json:"size,omitempty" rule:"omitempty,min=1,max=100"`
	SortBy     string   `form:"sort_by,default=_score" json:"sort_by,omitempty"` // _score / post_date / size
	Highlight  *bool    `form:"highlight,default=true" json:"highlight,omitempty"`
}

// SearchHit 单条搜索结果.
type SearchHit struct {
	ID             string              `json:"id"`
	Score          float64             `json:"score"`
	Title          string              `json:"title"`
	Content        string              `json:"content"` // 正文摘要（前 500 字符）
	BucketName     string              `json:"bucket_name"`
	ObjectName     string              `json:"object_name"`
	DocumentType   string              `json:"document_type"`
	Size           int64               `json:"size"`
	ContentType    string              `json:"content_type"`
	MinioPublicURL string              `json:"minio_public_url,omitempty"`
	Statistics     map[string]any      `json:"statistics,omitempty"`
	Highlight      map[string][]string `json:"highlight,omitempty"` // 高亮片段（按字段）
}

// NewsletterSearchResponse 文章搜索结果.
type NewsletterSearchResponse struct {
	Success       bool        `json:"success"`
	Total         int64       `json:"total"`
	Results       []SearchHit `json:"results"`
	Query         string      `json:"query"`          // 实际执行的查询词（含分类与标签）
	OriginalQuery string      `json:"original_query"` // 用户原始查询词
	Categories    []string    `json:"categories"`
	Tags          []string    `json:"tags"`
	From          int         `json:"from"`
	Size          int         `json:"size"`
}

// AdvancedSearchRequest 高级搜索请求（结构化过滤）.
type AdvancedSearchRequest struct {
	Query        string   `json:"query,omitempty"`
	Categories   []string `json:"categories,omitempty"`
	ArticleType  string   `json:"article_type,omitempty"` // 精确匹配 document_type
	Tags         []string `json:"tags,omitempty"`
	DateFrom     string   `json:"date_from,omitempty"` // YYYY-MM-DD
	DateTo       string   `json:"date_to,omitempty"`
	MinWordcount int      `json:"min_wordcount,omitempty" rule:"omitempty,min=0"`
	MaxWordcount int      `json:"max_wordcount,omitempty" rule:"omitempty,min=0"`
	From         int      `json:"from,omitempty" rule:"omitempty,min=0"`
	Size         int      `json:"size,omitempty" rule:"omitempty,min=1,max=100"`
	SortBy       string   `json:"sort_by,omitempty"` // _score / post_date / size
}

// AdvancedSearchFilters 高级搜索回显的过滤条件.
type AdvancedSearchFilters struct {
	Query         string   `json:"query"`
	OriginalQuery string   `json:"original_query"`
	Categories    []string `json:"categories"`
	Type          string   `json:"type"`
	Tags          []string `json:"tags"`
	DateFrom      string   `json:"date_from"`
	DateTo        string   `json:"date_to"`
	MinWordcount  int      `json:"min_wordcount"`
	MaxWordcount  int      `json:"max_wordcount"`
}

// AdvancedSearchResponse 高级搜索结果.
type AdvancedSearchResponse struct {
	Success bool                  `json:"success"`
	Total   int64                 `json:"total"`
	Results []SearchHit           `json:"results"`
	Filters AdvancedSearchFilters `json:"filters"`
	From    int                   `json:"from"`
	Size    int                   `json:"size"`
}

// QuickSearchItem 快速搜索简化结果项.
type QuickSearchItem struct {
	Title     string              `json:"title"`
	Subtitle  string              `json:"subtitle,omitempty"`
	Score     float64             `json:"score"`
	Date      string              `json:"date,omitempty"` // 发布日期
	Type      string              `json:"type,omitempty"`
	Highlight map[string][]string `json:"highlight,omitempty"`
}

// QuickSearchResponse 快速搜索结果（搜索框联想）.
type QuickSearchResponse struct {
	Query         string            `json:"query"`
	OriginalQuery string            `json:"original_query"`
	Categories    []string          `json:"categories"`
	Tags          []string          `json:"tags"`
	Total         int64             `json:"total"`
	Results       []QuickSearchItem `json:"results"`
}

// ArticleDetailResponse 文章详情，article 为索引文档与关系库统计的合并视图.
type ArticleDetailResponse struct {
	Success bool           `json:"success"`
	Article map[string]any `json:"article"`
}

// TagsAggregateRequest 标签聚合查询参数.
type TagsAggregateRequest struct {
	Size        int `form:"size,default=50" rule:"omitempty,min=1,max=200"`
	MinDocCount int `form:"min_doc_count,default=1" rule:"omitempty,min=1"`
}

// TagCount 单个标签聚合项.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int64  `json:"count"`
}

// TagsAggregateResponse 标签聚合结果.
type TagsAggregateResponse struct {
	Success        bool       `json:"success"`
	TotalTags      int        `json:"total_tags"`
	Tags           []TagCount `json:"tags"`
	TotalDocuments int64      `json:"total_documents"`
}

// DocumentSearchRequest 原始文档索引搜索请求.
type DocumentSearchRequest struct {
	Query        string `form:"query" json:"query" binding:"required"` // 搜索关键词
	BucketName   string `form:"bucket_name" json:"bucket_name,omitempty"`
	DocumentType string `form:"document_type" json:"document_type,omitempty"`
	Fuzzy        *bool  `form:"fuzzy,default=true" json:"fuzzy,omitempty"` // 是否启用模糊匹配
	Size         int    `form:"size,default=20" json:"size,omitempty" rule:"omitempty,min=1,max=100"`
}

// DocumentSearchResponse 原始文档索引搜索结果.
type DocumentSearchResponse struct {
	Total     int              `json:"total"`
	Documents []map[string]any `json:"documents"`
}

// SimilarDocumentsResponse 相似文档结果.
type SimilarDocumentsResponse struct {
	DocumentID string           `json:"document_id"`
	Total      int              `json:"total"`
	Similar    []map[string]any `json:"similar"`
}
