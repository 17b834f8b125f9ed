package service

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"time"

	"github.com/yeisme/objectvault/pkg/configs"
	ctxPkg "github.com/yeisme/objectvault/pkg/context"
	"github.com/yeisme/objectvault/pkg/internal/storage/es"
	"github.com/yeisme/objectvault/pkg/internal/storage/kv"
	"github.com/yeisme/objectvault/pkg/internal/storage/mq"
	"github.com/yeisme/objectvault/pkg/internal/storage/objstore"
	nlog "github.com/yeisme/objectvault/pkg/log"
	"github.com/yeisme/objectvault/pkg/queue"
)

// dedupKeyPrefix 内容哈希去重缓存的键前缀.
const dedupKeyPrefix = "pipeline:dedup:"

// PipelineService 文档摄取管道：对象写入存储后，符合配置类型的文档
// 提取内容并写入全文索引，索引失败回退到轻量管道索引.
type PipelineService struct {
	store    objstore.ObjectStorage
	esClient *es.Client
	kvClient *kv.Client
	mqClient *mq.Client
}

func NewPipelineService(c context.Context) *PipelineService {
	return &PipelineService{
		store:    ctxPkg.GetObjectStorage(c),
		esClient: ctxPkg.GetESClient(c),
		kvClient: ctxPkg.GetKVClient(c),
		mqClient: ctxPkg.GetMQClient(c),
	}
}

// PipelineResult 上传管道执行结果. Err 记录次要环节（索引、URL）的失败说明，
// 对象已写入存储时整体仍视为成功.
type PipelineResult struct {
	Uploaded     bool
	Indexed      bool
	Duplicate    bool
	ETag         string
	Size         int64
	ContentType  string
	PublicURL    string
	DocID        string
	Index        string
	DocumentType string
	Err          string
}

// ProcessUpload 上传对象并按配置走文档索引管道.
// 对象上传失败整体失败；之后的 URL 解析与索引均为尽力而为.
func (ps *PipelineService) ProcessUpload(ctx context.Context, bucket, key string, data []byte, contentType string, metadata map[string]string) (*PipelineResult, error) {
	l := nlog.Logger()
	cfg := configs.GetConfig()

	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(key))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	upload, err := ps.store.UploadObject(ctx, bucket, key, data, contentType, metadata)
	if err != nil {
		return nil, fmt.Errorf("upload object %s/%s: %w", bucket, key, err)
	}

	result := &PipelineResult{
		Uploaded:    true,
		ETag:        upload.ETag,
		Size:        upload.Size,
		ContentType: contentType,
	}

	result.PublicURL = ps.resolveAccessURL(ctx, bucket, key)

	format := classifyFormat(key, contentType)
	if cfg.Pipeline.Enabled && cfg.Pipeline.TypeEnabled(string(format)) {
		ps.indexDocument(ctx, bucket, key, data, contentType, result)
	}

	if pub := ps.mqClient.Publisher(); pub != nil && cfg.Events.Enabled && cfg.Events.Object.Stored {
		payload := queue.ObjectStoredPayload{
			Object: queue.ObjectRef{
				Bucket:      bucket,
				ObjectKey:   key,
				ETag:        upload.ETag,
				Size:        upload.Size,
				Hash:        hashBytes(data),
				ContentType: contentType,
			},
			Source:   ps.store.Backend(),
			FileName: filepath.Base(key),
		}
		if err := queue.PublishObjectStored(pub, payload, queue.WithProducer(configs.AppName)); err != nil {
			l.Warn().Err(err).Str("bucket", bucket).Str("key", key).Msg("publish object stored event failed")
		}
	}

	return result, nil
}

// resolveAccessURL 解析对象访问地址：桶公开可读用公共 URL，
// 否则回退到预签名 GET，两者都失败返回空串.
func (ps *PipelineService) resolveAccessURL(ctx context.Context, bucket, key string) string {
	l := nlog.Logger()
	cfg := configs.GetConfig()

	urlInfo, err := ps.store.PublicURL(ctx, bucket, key)
	if err == nil && urlInfo.IsPublic {
		return urlInfo.URL
	}

	presigned, perr := ps.store.PresignedURL(ctx, bucket, key, cfg.Pipeline.GetPresignExpiry(), objstore.PresignGet)
	if perr != nil {
		l.Warn().Err(perr).Str("bucket", bucket).Str("key", key).Msg("resolve access url failed")
		return ""
	}

	return presigned
}

// indexDocument 提取内容并写入文章索引，失败回退到管道索引.
func (ps *PipelineService) indexDocument(ctx context.Context, bucket, key string, data []byte, contentType string, result *PipelineResult) {
	l := nlog.Logger()
	cfg := configs.GetConfig()

	res := ExtractWithLimit(data, key, contentType, cfg.Pipeline.MaxContentSize)
	result.DocumentType = string(res.Format)

	doc := BuildArticleDoc(bucket, key, int64(len(data)), contentType, res, result.PublicURL)

	if err := ps.esClient.IndexDoc(ctx, cfg.ES.ArticleIndex, doc.ID, doc); err == nil {
		result.Indexed = true
		result.DocID = doc.ID
		result.Index = cfg.ES.ArticleIndex
	} else {
		l.Warn().Err(err).Str("bucket", bucket).Str("key", key).Msg("article index failed, falling back to pipeline index")

		legacy := buildPipelineDoc(bucket, key, int64(len(data)), contentType, result.PublicURL, res)
		if ferr := ps.esClient.IndexDoc(ctx, cfg.ES.PipelineIndex, res.ContentHash, legacy); ferr == nil {
			result.Indexed = true
			result.DocID = res.ContentHash
			result.Index = cfg.ES.PipelineIndex
		} else {
			result.Err = fmt.Sprintf("index failed: %v", ferr)
			l.Error().Err(ferr).Str("bucket", bucket).Str("key", key).Msg("pipeline index fallback failed")
			ps.publishIndexFailed(bucket, key, res.ContentHash, ferr)

			return
		}
	}

	result.Duplicate = ps.markDedup(ctx, res.ContentHash, result.DocID)

	if pub := ps.mqClient.Publisher(); pub != nil && cfg.Events.Enabled && cfg.Events.Pipeline.Indexed {
		payload := queue.DocumentIndexedPayload{
			Object: queue.ObjectRef{
				Bucket:      bucket,
				ObjectKey:   key,
				Size:        int64(len(data)),
				Hash:        res.ContentHash,
				ContentType: contentType,
			},
			Index:        result.Index,
			DocID:        result.DocID,
			DocumentType: result.DocumentType,
			Title:        doc.Title,
			Duplicate:    result.Duplicate,
		}
		if err := queue.PublishDocumentIndexed(pub, payload, queue.WithProducer(configs.AppName)); err != nil {
			l.Warn().Err(err).Str("doc_id", result.DocID).Msg("publish document indexed event failed")
		}
	}
}

// markDedup 在 KV 去重缓存里登记内容哈希，已存在说明同样字节此前已被摄取.
func (ps *PipelineService) markDedup(ctx context.Context, contentHash, docID string) bool {
	if ps.kvClient == nil || contentHash == "" {
		return false
	}

	cfg := configs.GetConfig()
	key := dedupKeyPrefix + contentHash

	if exists, err := ps.kvClient.Exists(ctx, key); err == nil && exists {
		return true
	}

	if err := ps.kvClient.Set(ctx, key, []byte(docID), cfg.Pipeline.GetDedupCacheTTL()); err != nil {
		nlog.Logger().Debug().Err(err).Str("hash", contentHash).Msg("dedup cache set failed")
	}

	return false
}

func (ps *PipelineService) publishIndexFailed(bucket, key, contentHash string, cause error) {
	cfg := configs.GetConfig()
	pub := ps.mqClient.Publisher()
	if pub == nil || !cfg.Events.Enabled || !cfg.Events.Pipeline.IndexFailed {
		return
	}

	payload := queue.DocumentIndexFailedPayload{
		Object: queue.ObjectRef{Bucket: bucket, ObjectKey: key, Hash: contentHash},
		Index:  cfg.ES.PipelineIndex,
		Error:  cause.Error(),
	}
	if err := queue.PublishDocumentIndexFailed(pub, payload, queue.WithProducer(configs.AppName)); err != nil {
		nlog.Logger().Warn().Err(err).Str("bucket", bucket).Str("key", key).Msg("publish index failed event failed")
	}
}

// ProcessDelete 删除对象并尽力清理两个索引中的对应文档与去重缓存.
// 返回值表示是否清掉了至少一条索引文档.
func (ps *PipelineService) ProcessDelete(ctx context.Context, bucket, key string) (bool, error) {
	l := nlog.Logger()
	cfg := configs.GetConfig()

	docID := ArticleDocID(bucket, key)

	// 删除前先读回 content_hash，用于清理回退索引与去重缓存
	contentHash := ""
	if source, found, err := ps.esClient.GetDoc(ctx, cfg.ES.ArticleIndex, docID); err == nil && found {
		contentHash, _ = source["content_hash"].(string)
	}

	if err := ps.store.DeleteObject(ctx, bucket, key); err != nil {
		return false, fmt.Errorf("delete object %s/%s: %w", bucket, key, err)
	}

	removed := false

	if ok, err := ps.esClient.DeleteDoc(ctx, cfg.ES.ArticleIndex, docID); err != nil {
		l.Warn().Err(err).Str("doc_id", docID).Msg("delete article index entry failed")
	} else if ok {
		removed = true
	}

	if contentHash != "" {
		if ok, err := ps.esClient.DeleteDoc(ctx, cfg.ES.PipelineIndex, contentHash); err != nil {
			l.Warn().Err(err).Str("content_hash", contentHash).Msg("delete pipeline index entry failed")
		} else if ok {
			removed = true
		}

		if ps.kvClient != nil {
			_ = ps.kvClient.Delete(ctx, dedupKeyPrefix+contentHash)
		}
	}

	if pub := ps.mqClient.Publisher(); pub != nil && cfg.Events.Enabled && cfg.Events.Object.Deleted {
		payload := queue.ObjectDeletedPayload{
			Object: queue.ObjectRef{Bucket: bucket, ObjectKey: key, Hash: contentHash},
		}
		if err := queue.PublishObjectDeleted(pub, payload, queue.WithProducer(configs.AppName)); err != nil {
			l.Warn().Err(err).Str("bucket", bucket).Str("key", key).Msg("publish object deleted event failed")
		}
	}

	if pub := ps.mqClient.Publisher(); pub != nil && removed && cfg.Events.Enabled && cfg.Events.Pipeline.Removed {
		payload := queue.DocumentRemovedPayload{
			Object: queue.ObjectRef{Bucket: bucket, ObjectKey: key, Hash: contentHash},
			Index:  cfg.ES.ArticleIndex,
			DocID:  docID,
		}
		if err := queue.PublishDocumentRemoved(pub, payload, queue.WithProducer(configs.AppName)); err != nil {
			l.Warn().Err(err).Str("doc_id", docID).Msg("publish document removed event failed")
		}
	}

	return removed, nil
}

// buildPipelineDoc 组装回退索引文档，文档 ID 使用内容哈希，字节级幂等.
func buildPipelineDoc(bucket, key string, size int64, contentType, publicURL string, res ExtractResult) map[string]any {
	metadata := map[string]any{
		"format": string(res.Format),
	}
	if res.Title != "" {
		metadata["title"] = res.Title
	}
	if len(res.Headings) > 0 {
		metadata["headings"] = res.Headings
	}
	if res.Format == FormatMarkdown {
		metadata["has_code"] = res.HasCode
		metadata["code_blocks_count"] = res.CodeBlocks
	}

	title := res.Title
	if title == "" {
		title = key
	}

	doc := map[string]any{
		"bucket_name":       bucket,
		"object_name":       key,
		"size":              size,
		"content_type":      contentType,
		"upload_time":       time.Now().UTC().Format(time.RFC3339),
		"minio_public_url":  publicURL,
		"content":           res.Content,
		"content_hash":      res.ContentHash,
		"document_metadata": metadata,
		"statistics": map[string]any{
			"word_count": res.WordCount,
			"char_count": res.CharCount,
			"line_count": res.LineCount,
			"url_count":  len(res.URLs),
		},
		"extracted_urls": res.URLs,
		"document_type":  string(res.Format),
		"title":          title,
		"searchable":     true,
	}

	if res.ContentFull != "" {
		doc["content_full"] = res.ContentFull
	}
	if res.HTMLContent != "" {
		doc["html_content"] = res.HTMLContent
	}
	if res.Description != "" {
		doc["description"] = res.Description
	}
	if len(res.Keywords) > 0 {
		doc["keywords"] = res.Keywords
	}
	if res.Author != "" {
		doc["author"] = res.Author
	}

	return doc
}
