package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/yeisme/objectvault/pkg/configs"
	nlog "github.com/yeisme/objectvault/pkg/log"
)

// ReconcileStats 单个桶的索引对账统计.
type ReconcileStats struct {
	Scanned   int `json:"scanned"`   // 参与对账的文档类对象数
	Missing   int `json:"missing"`   // 缺失索引条目的对象数
	Reindexed int `json:"reindexed"` // 成功补建索引的对象数
	Duplicate int `json:"duplicate"` // 命中去重缓存而跳过的对象数
	Failed    int `json:"failed"`    // 下载或索引失败的对象数
}

// ReconcileBucket 扫描桶内对象，为缺失索引条目的文档补建索引.
// limit 大于 0 时最多处理 limit 个文档类对象，剩余部分留给下一轮.
func (ps *PipelineService) ReconcileBucket(ctx context.Context, bucket string, limit int) (ReconcileStats, error) {
	l := nlog.Logger()
	cfg := configs.GetConfig()

	var stats ReconcileStats

	if ps.esClient == nil {
		return stats, fmt.Errorf("elasticsearch client not initialized")
	}

	objects, err := ps.store.ListObjects(ctx, bucket, "", true)
	if err != nil {
		return stats, fmt.Errorf("list objects in %s: %w", bucket, err)
	}

	for _, obj := range objects {
		if obj.IsDir {
			continue
		}

		format := classifyFormat(obj.Key, obj.ContentType)
		if !cfg.Pipeline.TypeEnabled(string(format)) {
			continue
		}

		if limit > 0 && stats.Scanned >= limit {
			break
		}

		stats.Scanned++

		docID := ArticleDocID(bucket, obj.Key)

		_, found, err := ps.esClient.GetDoc(ctx, cfg.ES.ArticleIndex, docID)
		if err != nil {
			stats.Failed++
			l.Warn().Err(err).Str("bucket", bucket).Str("key", obj.Key).Msg("check index entry failed")

			continue
		}

		if found {
			continue
		}

		stats.Missing++

		data, _, err := ps.store.DownloadObject(ctx, bucket, obj.Key)
		if err != nil {
			stats.Failed++
			l.Warn().Err(err).Str("bucket", bucket).Str("key", obj.Key).Msg("download for reindex failed")

			continue
		}

		// 相同字节已被摄取过则不再重复建立索引条目
		if ps.kvClient != nil {
			if exists, kerr := ps.kvClient.Exists(ctx, dedupKeyPrefix+hashBytes(data)); kerr == nil && exists {
				stats.Duplicate++

				continue
			}
		}

		result := &PipelineResult{}
		result.PublicURL = ps.resolveAccessURL(ctx, bucket, obj.Key)
		ps.indexDocument(ctx, bucket, obj.Key, data, obj.ContentType, result)

		if result.Indexed {
			stats.Reindexed++
		} else {
			stats.Failed++
		}
	}

	return stats, nil
}

// PruneDedupCache 清理去重缓存中指向已删除索引文档的悬挂条目.
// 返回删除的键数量.
func (ps *PipelineService) PruneDedupCache(ctx context.Context) (int, error) {
	if ps.kvClient == nil {
		return 0, nil
	}

	if ps.esClient == nil {
		return 0, fmt.Errorf("elasticsearch client not initialized")
	}

	cfg := configs.GetConfig()

	keys, err := ps.kvClient.Keys(ctx, dedupKeyPrefix+"*")
	if err != nil {
		return 0, fmt.Errorf("list dedup keys: %w", err)
	}

	pruned := 0

	for _, key := range keys {
		contentHash := strings.TrimPrefix(key, dedupKeyPrefix)

		value, err := ps.kvClient.Get(ctx, key)
		if err != nil {
			continue
		}

		// 条目指向的文档在任一索引仍存在则保留
		if _, found, gerr := ps.esClient.GetDoc(ctx, cfg.ES.ArticleIndex, string(value)); gerr == nil && found {
			continue
		}

		if _, found, gerr := ps.esClient.GetDoc(ctx, cfg.ES.PipelineIndex, contentHash); gerr == nil && found {
			continue
		}

		if derr := ps.kvClient.Delete(ctx, key); derr == nil {
			pruned++
		}
	}

	return pruned, nil
}
