package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/yeisme/objectvault/pkg/configs"
	ctxPkg "github.com/yeisme/objectvault/pkg/context"
	"github.com/yeisme/objectvault/pkg/internal/storage/es"
	"github.com/yeisme/objectvault/pkg/internal/types"
)

// DocumentService 面向原始文档索引的检索，不做关系库补全.
type DocumentService struct {
	esClient *es.Client
}

func NewDocumentService(c context.Context) *DocumentService {
	return &DocumentService{
		esClient: ctxPkg.GetESClient(c),
	}
}

// SearchDocuments 文档索引全文检索. 模糊模式放宽匹配并附带标题通配，
// 桶与文档类型作为精确过滤条件.
func (ds *DocumentService) SearchDocuments(ctx context.Context, req *types.DocumentSearchRequest) ([]map[string]any, error) {
	cfg := configs.GetConfig()

	var must, should []any

	if req.Fuzzy == nil || *req.Fuzzy {
		should = append(should,
			map[string]any{"match": map[string]any{"content": map[string]any{"query": req.Query, "fuzziness": "AUTO"}}},
			map[string]any{"match": map[string]any{"title": map[string]any{"query": req.Query, "fuzziness": "AUTO", "boost": 2.0}}},
			map[string]any{"match": map[string]any{"description": map[string]any{"query": req.Query, "fuzziness": "AUTO", "boost": 1.5}}},
			map[string]any{"match": map[string]any{"keywords": map[string]any{"query": req.Query, "boost": 1.5}}},
			map[string]any{"match_phrase_prefix": map[string]any{"content": map[string]any{"query": req.Query}}},
			map[string]any{"wildcard": map[string]any{"title": "*" + strings.ToLower(req.Query) + "*"}},
		)
	} else {
		should = append(should,
			map[string]any{"match": map[string]any{"content": req.Query}},
			map[string]any{"match": map[string]any{"title": map[string]any{"query": req.Query, "boost": 2.0}}},
			map[string]any{"match": map[string]any{"description": map[string]any{"query": req.Query, "boost": 1.5}}},
		)
	}

	if req.BucketName != "" {
		must = append(must, map[string]any{"term": map[string]any{"bucket_name": req.BucketName}})
	}
	if req.DocumentType != "" {
		must = append(must, map[string]any{"term": map[string]any{"document_type": req.DocumentType}})
	}
	if len(must) == 0 {
		must = append(must, map[string]any{"match_all": map[string]any{}})
	}

	minimumShouldMatch := 0
	if len(should) > 0 {
		minimumShouldMatch = 1
	}

	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must":                 must,
				"should":               should,
				"minimum_should_match": minimumShouldMatch,
			},
		},
		"size": req.Size,
		"highlight": map[string]any{
			"fields": map[string]any{
				"content":     map[string]any{"fragment_size": 150, "number_of_fragments": 3},
				"title":       map[string]any{},
				"description": map[string]any{},
			},
		},
		"_source": map[string]any{
			"excludes": []string{"content_full", "html_content"},
		},
	}

	resp, err := ds.esClient.SearchBody(ctx, cfg.ES.PipelineIndex, body)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}

	hits, _ := hitsFromResponse(resp)

	documents := make([]map[string]any, 0, len(hits))
	for _, hit := range hits {
		doc := mapOr(hit, "_source")
		doc["_score"] = numField(hit, "_score")
		doc["_id"] = strField(hit, "_id")
		if hl, ok := hit["highlight"].(map[string]any); ok {
			doc["_highlight"] = hl
		}
		documents = append(documents, doc)
	}

	return documents, nil
}

// SimilarDocuments 基于 more_like_this 找相似文档，参照文档不存在时返回空列表.
func (ds *DocumentService) SimilarDocuments(ctx context.Context, documentID string, size int) ([]map[string]any, error) {
	cfg := configs.GetConfig()

	_, found, err := ds.esClient.GetDoc(ctx, cfg.ES.PipelineIndex, documentID)
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", documentID, err)
	}
	if !found {
		return []map[string]any{}, nil
	}

	body := map[string]any{
		"query": map[string]any{
			"more_like_this": map[string]any{
				"fields": []string{"content", "title", "description", "keywords"},
				"like": []any{
					map[string]any{
						"_index": cfg.ES.PipelineIndex,
						"_id":    documentID,
					},
				},
				"min_term_freq":        1,
				"max_query_terms":      25,
				"min_doc_freq":         1,
				"minimum_should_match": "30%",
			},
		},
		"size": size,
		"_source": map[string]any{
			"excludes": []string{"content_full", "html_content"},
		},
	}

	resp, err := ds.esClient.SearchBody(ctx, cfg.ES.PipelineIndex, body)
	if err != nil {
		return nil, fmt.Errorf("similar documents: %w", err)
	}

	hits, _ := hitsFromResponse(resp)

	documents := make([]map[string]any, 0, len(hits))
	for _, hit := range hits {
		if strField(hit, "_id") == documentID {
			continue
		}
		doc := mapOr(hit, "_source")
		doc["_score"] = numField(hit, "_score")
		doc["_id"] = strField(hit, "_id")
		documents = append(documents, doc)
	}

	return documents, nil
}
