package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"gorm.io/gorm"

	"github.com/yeisme/objectvault/pkg/configs"
	ctxPkg "github.com/yeisme/objectvault/pkg/context"
	"github.com/yeisme/objectvault/pkg/internal/model"
	"github.com/yeisme/objectvault/pkg/internal/storage/db"
	"github.com/yeisme/objectvault/pkg/internal/storage/es"
	"github.com/yeisme/objectvault/pkg/internal/types"
	nlog "github.com/yeisme/objectvault/pkg/log"
)

// SearchService 文章搜索服务，查询在管道索引上执行，
// 详情页再用关系库的计数数据做补全.
type SearchService struct {
	esClient *es.Client
	dbClient *db.Client
}

func NewSearchService(c context.Context) *SearchService {
	return &SearchService{
		esClient: ctxPkg.GetESClient(c),
		dbClient: ctxPkg.GetDBClient(c),
	}
}

// searchFields 关键词检索的加权字段集.
var searchFields = []string{
	"title^3",
	"content^2",
	"content_full",
	"html_content",
	"object_name",
}

// buildFinalQuery 把分类与标签直接拼进查询词：参与相关度而非精确过滤.
func buildFinalQuery(query string, categories, tags []string) string {
	final := query

	if len(categories) > 0 {
		final = strings.TrimSpace(final + " " + strings.Join(categories, " "))
	}

	var validTags []string
	for _, tag := range tags {
		if strings.TrimSpace(tag) != "" {
			validTags = append(validTags, tag)
		}
	}
	if len(validTags) > 0 {
		final = strings.TrimSpace(final + " " + strings.Join(validTags, " "))
	}

	return final
}

// keywordClause 基础搜索的关键词子查询：多字段加权匹配加上标题与正文的前缀短语.
func keywordClause(finalQuery string) map[string]any {
	return map[string]any{
		"bool": map[string]any{
			"should": []any{
				map[string]any{
					"multi_match": map[string]any{
						"query":         finalQuery,
						"fields":        searchFields,
						"type":          "best_fields",
						"fuzziness":     "AUTO",
						"prefix_length": 2,
					},
				},
				map[string]any{
					"match_phrase_prefix": map[string]any{
						"title": map[string]any{"query": finalQuery, "boost": 2},
					},
				},
				map[string]any{
					"match_phrase_prefix": map[string]any{
						"content": map[string]any{"query": finalQuery, "boost": 0.5},
					},
				},
			},
			"minimum_should_match": 1,
		},
	}
}

// SearchArticles 基础文章搜索. 空查询词退化为 match_all.
func (ss *SearchService) SearchArticles(ctx context.Context, req *types.NewsletterSearchRequest) (*types.NewsletterSearchResponse, error) {
	l := nlog.Logger()
	cfg := configs.GetConfig()

	finalQuery := buildFinalQuery(req.Query, req.Categories, req.Tags)

	body := map[string]any{
		"from": req.From,
		"size": req.Size,
		"_source": map[string]any{
			"excludes": []string{"embeddings"},
		},
	}

	if strings.TrimSpace(finalQuery) != "" {
		body["query"] = map[string]any{
			"bool": map[string]any{
				"must": []any{keywordClause(finalQuery)},
			},
		}
	} else {
		body["query"] = map[string]any{"match_all": map[string]any{}}
	}

	switch req.SortBy {
	case "", "_score":
		// 默认按相关度
	case "size":
		l.Warn().Msg("size sort not supported on article search, keeping default order")
	case "post_date":
		body["sort"] = []any{
			map[string]any{"publish_date": map[string]any{"order": "desc", "missing": "_last"}},
			"_score",
		}
	}

	if req.Highlight == nil || *req.Highlight {
		body["highlight"] = map[string]any{
			"fields": map[string]any{
				"title":    map[string]any{"fragment_size": 200, "number_of_fragments": 1},
				"subtitle": map[string]any{"fragment_size": 150, "number_of_fragments": 1},
				"content":  map[string]any{"fragment_size": 300, "number_of_fragments": 3},
			},
			"pre_tags":  []string{"<mark>"},
			"post_tags": []string{"</mark>"},
		}
	}

	resp, err := ss.esClient.SearchBody(ctx, cfg.ES.PipelineIndex, body)
	if err != nil {
		return nil, fmt.Errorf("search articles: %w", err)
	}

	hits, total := hitsFromResponse(resp)

	return &types.NewsletterSearchResponse{
		Success:       true,
		Total:         total,
		Results:       mapSearchHits(hits, 500),
		Query:         finalQuery,
		OriginalQuery: req.Query,
		Categories:    emptyIfNil(req.Categories),
		Tags:          emptyIfNil(req.Tags),
		From:          req.From,
		Size:          req.Size,
	}, nil
}

// SearchWithFilters 高级搜索：关键词走 must，结构化条件走 filter.
// 字数范围以 size 字节数近似（字数×10），日期范围仅回显.
func (ss *SearchService) SearchWithFilters(ctx context.Context, req *types.AdvancedSearchRequest) (*types.AdvancedSearchResponse, error) {
	cfg := configs.GetConfig()

	finalQuery := buildFinalQuery(req.Query, req.Categories, req.Tags)

	var must, filter []any

	if finalQuery != "" {
		must = append(must, map[string]any{
			"multi_match": map[string]any{
				"query":     finalQuery,
				"fields":    searchFields,
				"type":      "best_fields",
				"fuzziness": "AUTO",
			},
		})
	}

	if req.ArticleType != "" {
		filter = append(filter, map[string]any{
			"term": map[string]any{"document_type": req.ArticleType},
		})
	}

	if req.MinWordcount > 0 || req.MaxWordcount > 0 {
		sizeRange := map[string]any{}
		if req.MinWordcount > 0 {
			sizeRange["gte"] = req.MinWordcount * 10
		}
		if req.MaxWordcount > 0 {
			sizeRange["lte"] = req.MaxWordcount * 10
		}
		filter = append(filter, map[string]any{"range": map[string]any{"size": sizeRange}})
	}

	var queryBody map[string]any
	if len(must) == 0 && len(filter) == 0 {
		queryBody = map[string]any{"match_all": map[string]any{}}
	} else {
		boolQuery := map[string]any{}
		if len(must) > 0 {
			boolQuery["must"] = must
		}
		if len(filter) > 0 {
			boolQuery["filter"] = filter
		}
		queryBody = map[string]any{"bool": boolQuery}
	}

	body := map[string]any{
		"from": req.From,
		"size": req.Size,
		"_source": map[string]any{
			"excludes": []string{"embeddings", "content"},
		},
		"query": queryBody,
	}

	if finalQuery != "" {
		body["highlight"] = map[string]any{
			"fields": map[string]any{
				"title":    map[string]any{},
				"subtitle": map[string]any{},
				"content":  map[string]any{"fragment_size": 200, "number_of_fragments": 2},
			},
		}
	}

	if req.SortBy == "size" {
		body["sort"] = []any{map[string]any{"size": map[string]any{"order": "desc"}}}
	}

	resp, err := ss.esClient.SearchBody(ctx, cfg.ES.PipelineIndex, body)
	if err != nil {
		return nil, fmt.Errorf("advanced search: %w", err)
	}

	hits, total := hitsFromResponse(resp)

	return &types.AdvancedSearchResponse{
		Success: true,
		Total:   total,
		Results: mapSearchHits(hits, 300),
		Filters: types.AdvancedSearchFilters{
			Query:         finalQuery,
			OriginalQuery: req.Query,
			Categories:    emptyIfNil(req.Categories),
			Type:          req.ArticleType,
			Tags:          emptyIfNil(req.Tags),
			DateFrom:      req.DateFrom,
			DateTo:        req.DateTo,
			MinWordcount:  req.MinWordcount,
			MaxWordcount:  req.MaxWordcount,
		},
		From: req.From,
		Size: req.Size,
	}, nil
}

// QuickSearch 搜索框联想用的简化搜索：固定取前 10 条按相关度.
func (ss *SearchService) QuickSearch(ctx context.Context, q string, categories, tags []string) (*types.QuickSearchResponse, error) {
	req := &types.NewsletterSearchRequest{
		Query:      q,
		Categories: categories,
		Tags:       tags,
		From:       0,
		Size:       10,
		SortBy:     "_score",
	}

	result, err := ss.SearchArticles(ctx, req)
	if err != nil {
		return nil, err
	}

	items := make([]types.QuickSearchItem, 0, len(result.Results))
	for _, hit := range result.Results {
		items = append(items, types.QuickSearchItem{
			Title:     hit.Title,
			Score:     hit.Score,
			Highlight: hit.Highlight,
		})
	}

	return &types.QuickSearchResponse{
		Query:         result.Query,
		OriginalQuery: q,
		Categories:    emptyIfNil(categories),
		Tags:          emptyIfNil(tags),
		Total:         result.Total,
		Results:       items,
	}, nil
}

// GetArticleByID 取文章详情：ES 文档为主体，关系库的计数与状态字段做缺口补全，
// 关系库不可用时回退为零值计数，不影响详情返回.
func (ss *SearchService) GetArticleByID(ctx context.Context, articleID string) (map[string]any, error) {
	l := nlog.Logger()
	cfg := configs.GetConfig()

	source, found, err := ss.esClient.GetDoc(ctx, cfg.ES.PipelineIndex, articleID)
	if err != nil {
		return nil, fmt.Errorf("get article %s: %w", articleID, err)
	}
	if !found {
		return nil, notFoundErr("article not found: %s", articleID)
	}

	article := map[string]any{
		"id":               articleID,
		"title":            strOr(source, "title", strField(source, "object_name")),
		"subtitle":         strField(source, "subtitle"),
		"content":          strField(source, "content"),
		"content_full":     strField(source, "content_full"),
		"html_content":     strField(source, "html_content"),
		"bucket_name":      strField(source, "bucket_name"),
		"object_name":      strField(source, "object_name"),
		"document_type":    strField(source, "document_type"),
		"size":             numField(source, "size"),
		"content_type":     strField(source, "content_type"),
		"minio_public_url": strField(source, "minio_public_url"),
		"statistics":       mapOr(source, "statistics"),
		"tags":             sliceField(source, "tags"),
		"publish_date":     source["publish_date"],
		"created_at":       source["created_at"],
		"updated_at":       source["updated_at"],
		"metadata":         mapOr(source, "metadata"),
	}

	if _, ok := source["embeddings"]; ok {
		article["has_embeddings"] = true
	}

	nl, err := ss.lookupNewsletter(ctx, articleID)
	switch {
	case err == nil && nl != nil:
		ss.mergeNewsletterFields(article, nl)
	case err != nil:
		l.Error().Err(err).Str("article_id", articleID).Msg("newsletter lookup failed, using zeroed counters")
		fillZeroCounters(article)
	default:
		l.Warn().Str("article_id", articleID).Msg("no newsletter row for article")
		fillZeroCounters(article)
	}

	return article, nil
}

func (ss *SearchService) lookupNewsletter(ctx context.Context, id string) (*model.Newsletter, error) {
	if ss.dbClient == nil {
		return nil, errors.New("db client not initialized")
	}

	var nl model.Newsletter
	err := ss.dbClient.GetDB().WithContext(ctx).Where("id = ?", id).First(&nl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &nl, nil
}

// mergeNewsletterFields 只补 ES 里缺失或空的字段，不覆盖已有内容；
// metadata 按键做同样的补缺合并.
func (ss *SearchService) mergeNewsletterFields(article map[string]any, nl *model.Newsletter) {
	pgFields := map[string]any{
		"category":             nl.Category,
		"source_url":           nl.SourceURL,
		"read_time":            nl.ReadTime,
		"view_count":           nl.ViewCount,
		"like_count":           nl.LikeCount,
		"share_count":          nl.ShareCount,
		"comment_count":        nl.CommentCount,
		"featured":             nl.Featured,
		"member_only":          nl.MemberOnly,
		"status":               nl.Status,
		"content_file_key":     nl.ContentFileKey,
		"content_storage_type": nl.ContentStorageType,
	}
	if nl.PublishedAt != nil {
		pgFields["published_at"] = nl.PublishedAt.UTC().Format(time.RFC3339)
	}

	for field, value := range pgFields {
		if isGapValue(article[field]) {
			article[field] = value
		}
	}

	if nl.MetadataJSON == "" {
		return
	}

	var pgMeta map[string]any
	if err := sonic.Unmarshal([]byte(nl.MetadataJSON), &pgMeta); err != nil {
		return
	}

	meta, ok := article["metadata"].(map[string]any)
	if !ok {
		meta = map[string]any{}
		article["metadata"] = meta
	}
	for key, value := range pgMeta {
		if value == nil {
			continue
		}
		if cur, exists := meta[key]; !exists || cur == nil || cur == "" {
			meta[key] = value
		}
	}
}

// isGapValue 判断 ES 字段是否视为缺口（缺失、空串、零、false）.
func isGapValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case float64:
		return val == 0
	case int:
		return val == 0
	case bool:
		return !val
	}

	return false
}

func fillZeroCounters(article map[string]any) {
	article["view_count"] = 0
	article["like_count"] = 0
	article["share_count"] = 0
	article["comment_count"] = 0
	article["featured"] = false
	article["member_only"] = false
}

// AggregateTags 聚合全部文档的标签，按出现次数倒序.
func (ss *SearchService) AggregateTags(ctx context.Context, size, minDocCount int) (*types.TagsAggregateResponse, error) {
	cfg := configs.GetConfig()

	body := map[string]any{
		"size": 0,
		"aggs": map[string]any{
			"tags_aggregation": map[string]any{
				"terms": map[string]any{
					"field":         "tags",
					"size":          size,
					"min_doc_count": minDocCount,
					"order":         map[string]any{"_count": "desc"},
				},
			},
		},
	}

	resp, err := ss.esClient.SearchBody(ctx, cfg.ES.PipelineIndex, body)
	if err != nil {
		return nil, fmt.Errorf("aggregate tags: %w", err)
	}

	tagList := make([]types.TagCount, 0)
	if aggs, ok := resp["aggregations"].(map[string]any); ok {
		if tagsAgg, ok := aggs["tags_aggregation"].(map[string]any); ok {
			if buckets, ok := tagsAgg["buckets"].([]any); ok {
				for _, b := range buckets {
					bucket, ok := b.(map[string]any)
					if !ok {
						continue
					}
					tagList = append(tagList, types.TagCount{
						Tag:   strField(bucket, "key"),
						Count: int64(numField(bucket, "doc_count")),
					})
				}
			}
		}
	}

	_, total := hitsFromResponse(resp)

	return &types.TagsAggregateResponse{
		Success:        true,
		TotalTags:      len(tagList),
		Tags:           tagList,
		TotalDocuments: total,
	}, nil
}

// ---- ES 响应解析辅助 ----

// hitsFromResponse 取出命中列表与 total.value.
func hitsFromResponse(resp map[string]any) ([]map[string]any, int64) {
	hitsWrap, _ := resp["hits"].(map[string]any)

	var total int64
	if t, ok := hitsWrap["total"].(map[string]any); ok {
		total = int64(numField(t, "value"))
	}

	rawHits, _ := hitsWrap["hits"].([]any)
	hits := make([]map[string]any, 0, len(rawHits))
	for _, h := range rawHits {
		if hit, ok := h.(map[string]any); ok {
			hits = append(hits, hit)
		}
	}

	return hits, total
}

// mapSearchHits 把 ES 命中压平为结果视图，正文截断为预览长度.
func mapSearchHits(hits []map[string]any, previewLen int) []types.SearchHit {
	results := make([]types.SearchHit, 0, len(hits))

	for _, hit := range hits {
		source, _ := hit["_source"].(map[string]any)

		preview := ""
		if content := strField(source, "content"); content != "" {
			preview = truncateRunes(content, previewLen) + "..."
		} else if full := strField(source, "content_full"); full != "" {
			preview = truncateRunes(full, previewLen) + "..."
		}

		item := types.SearchHit{
			ID:             strField(hit, "_id"),
			Score:          numField(hit, "_score"),
			Title:          strOr(source, "title", strField(source, "object_name")),
			Content:        preview,
			BucketName:     strField(source, "bucket_name"),
			ObjectName:     strField(source, "object_name"),
			DocumentType:   strField(source, "document_type"),
			Size:           int64(numField(source, "size")),
			ContentType:    strField(source, "content_type"),
			MinioPublicURL: strField(source, "minio_public_url"),
			Statistics:     mapField(source, "statistics"),
		}

		if hl, ok := hit["highlight"].(map[string]any); ok {
			item.Highlight = toHighlight(hl)
		}

		results = append(results, item)
	}

	return results
}

func toHighlight(raw map[string]any) map[string][]string {
	hl := make(map[string][]string, len(raw))

	for field, frags := range raw {
		list, ok := frags.([]any)
		if !ok {
			continue
		}
		texts := make([]string, 0, len(list))
		for _, f := range list {
			if s, ok := f.(string); ok {
				texts = append(texts, s)
			}
		}
		hl[field] = texts
	}

	return hl
}

func strField(m map[string]any, key string) string {
	v, _ := m[key].(string)

	return v
}

// strOr 取字符串字段，为空时用回退值.
func strOr(m map[string]any, key, fallback string) string {
	if v := strField(m, key); v != "" {
		return v
	}

	return fallback
}

func numField(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}

	return 0
}

func mapField(m map[string]any, key string) map[string]any {
	v, _ := m[key].(map[string]any)

	return v
}

// mapOr 同 mapField，但缺失时给空对象而不是 null.
func mapOr(m map[string]any, key string) map[string]any {
	if v := mapField(m, key); v != nil {
		return v
	}

	return map[string]any{}
}

func sliceField(m map[string]any, key string) []any {
	v, _ := m[key].([]any)
	if v == nil {
		return []any{}
	}

	return v
}

// emptyIfNil 响应里用空数组而不是 null.
func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}
