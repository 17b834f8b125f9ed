package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yeisme/objectvault/pkg/configs"
	ctxPkg "github.com/yeisme/objectvault/pkg/context"
	"github.com/yeisme/objectvault/pkg/internal/storage/mq"
	"github.com/yeisme/objectvault/pkg/internal/storage/objstore"
	"github.com/yeisme/objectvault/pkg/internal/types"
	nlog "github.com/yeisme/objectvault/pkg/log"
	"github.com/yeisme/objectvault/pkg/queue"
)

// ObjectService 对象管理服务. 上传与删除走摄取管道以联动全文索引，
// 其余操作直接落到对象存储.
type ObjectService struct {
	store    objstore.ObjectStorage
	pipeline *PipelineService
	mqClient *mq.Client
}

func NewObjectService(c context.Context) *ObjectService {
	return &ObjectService{
		store:    ctxPkg.GetObjectStorage(c),
		pipeline: NewPipelineService(c),
		mqClient: ctxPkg.GetMQClient(c),
	}
}

// ListObjects 列举对象，非递归模式以 "/" 聚合出伪目录.
func (o *ObjectService) ListObjects(ctx context.Context, bucket string, req *types.ListObjectsRequest) (*types.ListObjectsResponse, error) {
	objects, err := o.store.ListObjects(ctx, bucket, req.Prefix, req.Recursive)
	if err != nil {
		return nil, fmt.Errorf("list objects %s: %w", bucket, err)
	}

	if req.MaxKeys > 0 && len(objects) > req.MaxKeys {
		objects = objects[:req.MaxKeys]
	}

	infos := make([]types.ObjectInfo, 0, len(objects))
	for _, obj := range objects {
		info := types.ObjectInfo{
			Name:        obj.Key,
			Size:        obj.Size,
			ETag:        obj.ETag,
			IsDir:       obj.IsDir,
			ContentType: obj.ContentType,
		}
		if !obj.LastModified.IsZero() {
			info.LastModified = obj.LastModified.UTC().Format(time.RFC3339)
		}
		infos = append(infos, info)
	}

	return &types.ListObjectsResponse{
		Bucket:  bucket,
		Prefix:  req.Prefix,
		Objects: infos,
		Total:   len(infos),
	}, nil
}

// UploadObject 上传对象并触发文档索引管道.
func (o *ObjectService) UploadObject(ctx context.Context, bucket, key string, data []byte, contentType string, metadata map[string]string) (*types.UploadObjectResponse, error) {
	result, err := o.pipeline.ProcessUpload(ctx, bucket, key, data, contentType, metadata)
	if err != nil {
		return nil, err
	}

	return &types.UploadObjectResponse{
		Success:      true,
		Bucket:       bucket,
		ObjectName:   key,
		Size:         result.Size,
		ContentType:  result.ContentType,
		ETag:         result.ETag,
		Uploaded:     result.Uploaded,
		Indexed:      result.Indexed,
		IsDuplicate:  result.Duplicate,
		DocumentID:   result.DocID,
		IndexName:    result.Index,
		DocumentType: result.DocumentType,
		PublicURL:    result.PublicURL,
		Error:        result.Err,
	}, nil
}

// DownloadObject 下载对象全部内容，不存在返回 ErrNotFound.
func (o *ObjectService) DownloadObject(ctx context.Context, bucket, key string) ([]byte, objstore.ObjectStat, error) {
	data, stat, err := o.store.DownloadObject(ctx, bucket, key)
	if err != nil {
		return nil, objstore.ObjectStat{}, fmt.Errorf("download object %s/%s: %w", bucket, key, err)
	}

	o.publishAccessed(bucket, key, "download")

	return data, stat, nil
}

// StatObject 查询对象元数据.
func (o *ObjectService) StatObject(ctx context.Context, bucket, key string) (*types.ObjectStatResponse, error) {
	stat, err := o.store.StatObject(ctx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("stat object %s/%s: %w", bucket, key, err)
	}

	return &types.ObjectStatResponse{
		Bucket:       stat.Bucket,
		ObjectName:   stat.Key,
		Size:         stat.Size,
		ETag:         stat.ETag,
		ContentType:  stat.ContentType,
		LastModified: stat.LastModified.UTC().Format(time.RFC3339),
		Metadata:     stat.Metadata,
	}, nil
}

// DeleteObject 删除对象并清理对应的索引文档.
func (o *ObjectService) DeleteObject(ctx context.Context, bucket, key string) (*types.DeleteObjectResponse, error) {
	removed, err := o.pipeline.ProcessDelete(ctx, bucket, key)
	if err != nil {
		return nil, err
	}

	return &types.DeleteObjectResponse{
		Success:    true,
		Bucket:     bucket,
		ObjectName: key,
		Removed:    removed,
	}, nil
}

// CopyObject 服务端复制对象，目标键缺省沿用源键.
func (o *ObjectService) CopyObject(ctx context.Context, req *types.CopyObjectRequest) (*types.CopyObjectResponse, error) {
	destObject := req.DestObject
	if destObject == "" {
		destObject = req.SourceObject
	}

	result, err := o.store.CopyObject(ctx, req.SourceBucket, req.SourceObject, req.DestBucket, destObject)
	if err != nil {
		return nil, fmt.Errorf("copy object %s/%s -> %s/%s: %w", req.SourceBucket, req.SourceObject, req.DestBucket, destObject, err)
	}

	cfg := configs.GetConfig()
	if pub := o.mqClient.Publisher(); pub != nil && cfg.Events.Enabled && cfg.Events.Object.Copied {
		payload := queue.ObjectCopiedPayload{
			Source: queue.ObjectRef{Bucket: req.SourceBucket, ObjectKey: req.SourceObject},
			Target: queue.ObjectRef{Bucket: result.Bucket, ObjectKey: result.Key, ETag: result.ETag},
		}
		if err := queue.PublishObjectCopied(pub, payload, queue.WithProducer(configs.AppName)); err != nil {
			nlog.Logger().Warn().Err(err).Str("bucket", req.DestBucket).Str("key", destObject).Msg("publish object copied event failed")
		}
	}

	return &types.CopyObjectResponse{
		Success:      true,
		SourceBucket: req.SourceBucket,
		SourceObject: req.SourceObject,
		DestBucket:   result.Bucket,
		DestObject:   result.Key,
		ETag:         result.ETag,
	}, nil
}

// PresignedURL 生成预签名访问 URL，支持 GET 下载与 PUT 上传.
func (o *ObjectService) PresignedURL(ctx context.Context, bucket, key string, req *types.PresignedURLRequest) (*types.PresignedURLResponse, error) {
	method := objstore.PresignGet
	if req.Method == "PUT" {
		method = objstore.PresignPut
	}

	expiry := time.Duration(req.ExpirySeconds) * time.Second

	url, err := o.store.PresignedURL(ctx, bucket, key, expiry, method)
	if err != nil {
		return nil, fmt.Errorf("presign %s %s/%s: %w", method, bucket, key, err)
	}

	if method == objstore.PresignGet {
		o.publishAccessed(bucket, key, "presigned")
	}

	return &types.PresignedURLResponse{
		Bucket:     bucket,
		ObjectName: key,
		Method:     string(method),
		URL:        url,
		ExpiresIn:  req.ExpirySeconds,
	}, nil
}

// PublicURL 构造对象的公共访问 URL 并给出桶是否公开可读.
func (o *ObjectService) PublicURL(ctx context.Context, bucket, key string) (*types.PublicURLResponse, error) {
	info, err := o.store.PublicURL(ctx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("public url %s/%s: %w", bucket, key, err)
	}

	o.publishAccessed(bucket, key, "public-url")

	return &types.PublicURLResponse{
		Bucket:     bucket,
		ObjectName: key,
		URL:        info.URL,
		Public:     info.IsPublic,
	}, nil
}

// publishAccessed 发布对象访问事件，用于热点统计，默认关闭.
func (o *ObjectService) publishAccessed(bucket, key, method string) {
	cfg := configs.GetConfig()

	pub := o.mqClient.Publisher()
	if pub == nil || !cfg.Events.Enabled || !cfg.Events.Object.Accessed {
		return
	}

	payload := queue.ObjectAccessedPayload{
		Object: queue.ObjectRef{Bucket: bucket, ObjectKey: key},
		Method: method,
	}
	if err := queue.PublishObjectAccessed(pub, payload, queue.WithProducer(configs.AppName)); err != nil {
		nlog.Logger().Warn().Err(err).Str("bucket", bucket).Str("key", key).Msg("publish object accessed event failed")
	}
}
