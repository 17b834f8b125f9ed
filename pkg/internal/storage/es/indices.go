package es

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	nlog "github.com/yeisme/objectvault/pkg/log"
)

// ikMissingHint 未安装 IK 分词插件时，ES 创建索引返回的错误特征.
const ikMissingHint = "analyzer [ik_max_word] has not been configured"

// articleIndexMapping 文章索引映射. 中文分词优先用 IK，插件缺失时回退标准分词器.
func articleIndexMapping() map[string]any {
	return map[string]any{
		"mappings": map[string]any{
			"properties": map[string]any{
				// PostgreSQL 关联
				"pg_id": map[string]any{"type": "keyword"},

				// 文章基本信息
				"id": map[string]any{"type": "keyword"},
				"title": map[string]any{
					"type":            "text",
					"analyzer":        "ik_max_word",
					"search_analyzer": "ik_smart",
					"fields": map[string]any{
						"keyword": map[string]any{"type": "keyword"},
					},
				},
				"summary": map[string]any{"type": "text", "analyzer": "ik_max_word"},
				"content": map[string]any{"type": "text", "analyzer": "ik_max_word"},

				// 分类和标签
				"category": map[string]any{"type": "keyword"},
				"tags":     map[string]any{"type": "keyword"},

				// 作者
				"author": map[string]any{"type": "keyword"},

				// 时间信息
				"publish_date":  map[string]any{"type": "date"},
				"upload_time":   map[string]any{"type": "date"},
				"last_modified": map[string]any{"type": "date"},

				// 统计信息
				"read_time":  map[string]any{"type": "integer"},
				"view_count": map[string]any{"type": "integer"},
				"like_count": map[string]any{"type": "integer"},
				"word_count": map[string]any{"type": "integer"},

				// 状态标记
				"featured":     map[string]any{"type": "boolean"},
				"member_only":  map[string]any{"type": "boolean"},
				"is_published": map[string]any{"type": "boolean"},

				// 对象存储相关
				"bucket_name":      map[string]any{"type": "keyword"},
				"object_name":      map[string]any{"type": "keyword"},
				"file_path":        map[string]any{"type": "keyword"},
				"minio_public_url": map[string]any{"type": "keyword"},
				"content_hash":     map[string]any{"type": "keyword"},

				// 文件信息
				"file_type":    map[string]any{"type": "keyword"},
				"file_size":    map[string]any{"type": "long"},
				"content_type": map[string]any{"type": "keyword"},

				// 额外的元数据
				"metadata": map[string]any{"type": "object", "enabled": true},

				// SEO 相关
				"description": map[string]any{"type": "text", "analyzer": "ik_max_word"},
				"keywords":    map[string]any{"type": "keyword"},

				// 搜索优化字段
				"searchable_content": map[string]any{"type": "text", "analyzer": "ik_max_word"},
			},
		},
		"settings": map[string]any{
			"number_of_shards":   2,
			"number_of_replicas": 1,
			"analysis": map[string]any{
				"analyzer": map[string]any{
					"ik_max_word": map[string]any{"type": "custom", "tokenizer": "ik_max_word"},
					"ik_smart":    map[string]any{"type": "custom", "tokenizer": "ik_smart"},
				},
			},
		},
	}
}

// pipelineIndexMapping 文档管道兜底索引映射，结构比文章索引轻量.
func pipelineIndexMapping() map[string]any {
	return map[string]any{
		"mappings": map[string]any{
			"properties": map[string]any{
				"bucket_name": map[string]any{"type": "keyword"},
				"object_name": map[string]any{"type": "keyword"},
				"size":        map[string]any{"type": "long"},
				"content_type": map[string]any{
					"type": "keyword",
				},
				"upload_time":      map[string]any{"type": "date"},
				"minio_public_url": map[string]any{"type": "keyword"},
				"content":          map[string]any{"type": "text", "analyzer": "ik_max_word"},
				"content_full":     map[string]any{"type": "text"},
				"html_content":     map[string]any{"type": "text"},
				"content_hash":     map[string]any{"type": "keyword"},
				"document_metadata": map[string]any{
					"type": "object", "enabled": true,
				},
				"statistics": map[string]any{
					"type": "object", "enabled": true,
				},
				"extracted_urls": map[string]any{"type": "keyword"},
				"document_type":  map[string]any{"type": "keyword"},
				"title": map[string]any{
					"type":     "text",
					"analyzer": "ik_max_word",
					"fields": map[string]any{
						"keyword": map[string]any{"type": "keyword"},
					},
				},
				"subtitle":     map[string]any{"type": "text", "analyzer": "ik_max_word"},
				"tags":         map[string]any{"type": "keyword"},
				"publish_date": map[string]any{"type": "date"},
				"searchable":   map[string]any{"type": "boolean"},
				"description":  map[string]any{"type": "text"},
				"keywords":     map[string]any{"type": "keyword"},
				"author":       map[string]any{"type": "keyword"},
			},
		},
		"settings": map[string]any{
			"number_of_shards":   2,
			"number_of_replicas": 1,
			"analysis": map[string]any{
				"analyzer": map[string]any{
					"ik_max_word": map[string]any{"type": "custom", "tokenizer": "ik_max_word"},
					"ik_smart":    map[string]any{"type": "custom", "tokenizer": "ik_smart"},
				},
			},
		},
	}
}

// InitIndices 创建文章索引与文档管道索引（不存在时）. 应用启动与 es init 子命令都会调用.
func (c *Client) InitIndices(ctx context.Context) error {
	if err := c.createIndexIfNotExists(ctx, c.cfg.ArticleIndex, articleIndexMapping()); err != nil {
		return fmt.Errorf("init article index: %w", err)
	}

	if err := c.createIndexIfNotExists(ctx, c.cfg.PipelineIndex, pipelineIndexMapping()); err != nil {
		return fmt.Errorf("init pipeline index: %w", err)
	}

	nlog.Logger().Info().
		Str("article_index", c.cfg.ArticleIndex).
		Str("pipeline_index", c.cfg.PipelineIndex).
		Msg("elasticsearch 索引初始化完成")

	return nil
}

// IndexExists 判断索引是否存在.
func (c *Client) IndexExists(ctx context.Context, index string) (bool, error) {
	res, err := c.Indices.Exists([]string{index}, c.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", index, err)
	}
	defer res.Body.Close() //nolint:errcheck

	if res.StatusCode == 404 {
		return false, nil
	}

	if res.IsError() {
		return false, responseError("check index "+index, res.StatusCode, res.Body)
	}

	return true, nil
}

// createIndexIfNotExists 创建索引；IK 分词器缺失时降级为标准分词器重建映射后重试.
func (c *Client) createIndexIfNotExists(ctx context.Context, index string, mapping map[string]any) error {
	exists, err := c.IndexExists(ctx, index)
	if err != nil {
		return err
	}

	if exists {
		nlog.Logger().Debug().Str("index", index).Msg("索引已存在")
		return nil
	}

	if err := c.createIndex(ctx, index, mapping); err != nil {
		if !strings.Contains(err.Error(), ikMissingHint) {
			return err
		}

		nlog.Logger().Warn().Str("index", index).
			Msg("IK 分词器未安装，使用标准分词器创建索引（如需中文分词请安装 elasticsearch-analysis-ik 插件）")

		return c.createIndex(ctx, index, standardAnalyzerMapping(mapping))
	}

	nlog.Logger().Info().Str("index", index).Msg("索引创建成功")

	return nil
}

func (c *Client) createIndex(ctx context.Context, index string, mapping map[string]any) error {
	payload, err := sonic.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("marshal index mapping: %w", err)
	}

	res, err := c.Indices.Create(
		index,
		c.Indices.Create.WithContext(ctx),
		c.Indices.Create.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", index, err)
	}
	defer res.Body.Close() //nolint:errcheck

	if res.IsError() {
		return responseError("create index "+index, res.StatusCode, res.Body)
	}

	return nil
}

// standardAnalyzerMapping 将映射中的 IK 分词器替换为标准分词器，自定义分析器定义一并去除.
func standardAnalyzerMapping(mapping map[string]any) map[string]any {
	// sonic 序列化一轮做深拷贝，避免改动调用方持有的原映射
	data, err := sonic.Marshal(mapping)
	if err != nil {
		return mapping
	}

	var copied map[string]any
	if err := sonic.Unmarshal(data, &copied); err != nil {
		return mapping
	}

	if mappings, ok := copied["mappings"].(map[string]any); ok {
		if props, ok := mappings["properties"].(map[string]any); ok {
			for _, v := range props {
				field, ok := v.(map[string]any)
				if !ok {
					continue
				}

				if a, ok := field["analyzer"].(string); ok && isIKAnalyzer(a) {
					field["analyzer"] = "standard"
				}

				if a, ok := field["search_analyzer"].(string); ok && isIKAnalyzer(a) {
					field["search_analyzer"] = "standard"
				}
			}
		}
	}

	if settings, ok := copied["settings"].(map[string]any); ok {
		delete(settings, "analysis")
	}

	return copied
}

func isIKAnalyzer(name string) bool {
	return name == "ik_max_word" || name == "ik_smart"
}

// DeleteIndex 删除索引（仅用于测试或重置），索引不存在时静默成功.
func (c *Client) DeleteIndex(ctx context.Context, index string) error {
	exists, err := c.IndexExists(ctx, index)
	if err != nil {
		return err
	}

	if !exists {
		nlog.Logger().Info().Str("index", index).Msg("索引不存在，跳过删除")
		return nil
	}

	res, err := c.Indices.Delete([]string{index}, c.Indices.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete index %s: %w", index, err)
	}
	defer res.Body.Close() //nolint:errcheck

	if res.IsError() {
		return responseError("delete index "+index, res.StatusCode, res.Body)
	}

	nlog.Logger().Info().Str("index", index).Msg("索引已删除")

	return nil
}

// Reindex 将文档从源索引迁移到目标索引（封装 _reindex API），等待任务完成.
func (c *Client) Reindex(ctx context.Context, sourceIndex, targetIndex string) error {
	body := map[string]any{
		"source": map[string]any{"index": sourceIndex},
		"dest":   map[string]any{"index": targetIndex},
	}

	payload, err := sonic.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal reindex body: %w", err)
	}

	res, err := c.Client.Reindex(
		bytes.NewReader(payload),
		c.Client.Reindex.WithContext(ctx),
		c.Client.Reindex.WithWaitForCompletion(true),
	)
	if err != nil {
		return fmt.Errorf("reindex %s to %s: %w", sourceIndex, targetIndex, err)
	}
	defer res.Body.Close() //nolint:errcheck

	if res.IsError() {
		return responseError(fmt.Sprintf("reindex %s to %s", sourceIndex, targetIndex), res.StatusCode, res.Body)
	}

	nlog.Logger().Info().Str("source", sourceIndex).Str("target", targetIndex).Msg("重新索引完成")

	return nil
}
