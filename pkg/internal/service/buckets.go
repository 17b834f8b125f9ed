package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"

	"github.com/yeisme/objectvault/pkg/configs"
	ctxPkg "github.com/yeisme/objectvault/pkg/context"
	"github.com/yeisme/objectvault/pkg/internal/storage/mq"
	"github.com/yeisme/objectvault/pkg/internal/storage/objstore"
	"github.com/yeisme/objectvault/pkg/internal/types"
	nlog "github.com/yeisme/objectvault/pkg/log"
	"github.com/yeisme/objectvault/pkg/queue"
)

// bucketNamePattern 桶名约束：小写字母数字开头结尾，中间允许中划线与点.
var bucketNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)

// BucketService 存储桶管理服务.
type BucketService struct {
	store    objstore.ObjectStorage
	mqClient *mq.Client
}

func NewBucketService(c context.Context) *BucketService {
	return &BucketService{
		store:    ctxPkg.GetObjectStorage(c),
		mqClient: ctxPkg.GetMQClient(c),
	}
}

// ListBuckets 列举全部存储桶.
func (bs *BucketService) ListBuckets(ctx context.Context) (*types.ListBucketsResponse, error) {
	buckets, err := bs.store.ListBuckets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}

	infos := make([]types.BucketInfo, 0, len(buckets))
	for _, b := range buckets {
		infos = append(infos, types.BucketInfo{
			Name:         b.Name,
			CreationDate: b.CreationDate.UTC().Format(time.RFC3339),
		})
	}

	return &types.ListBucketsResponse{
		Buckets: infos,
		Total:   len(infos),
	}, nil
}

// CreateBucket 创建存储桶，桶名需满足 S3 命名约束，已存在返回 ErrConflict.
func (bs *BucketService) CreateBucket(ctx context.Context, name string) (*types.CreateBucketResponse, error) {
	if !bucketNamePattern.MatchString(name) {
		return nil, validationErr("invalid bucket name: %s", name)
	}

	if err := bs.store.CreateBucket(ctx, name); err != nil {
		return nil, fmt.Errorf("create bucket %s: %w", name, err)
	}

	bs.publishBucketEvent(name, queue.PublishBucketCreated, func(cfg *configs.EventsConfig) bool { return cfg.Bucket.Created })

	return &types.CreateBucketResponse{
		Success: true,
		Bucket:  name,
		Message: "bucket created",
	}, nil
}

// DeleteBucket 删除存储桶，非空返回 ErrConflict，不存在返回 ErrNotFound.
func (bs *BucketService) DeleteBucket(ctx context.Context, name string) (*types.DeleteBucketResponse, error) {
	if err := bs.store.DeleteBucket(ctx, name); err != nil {
		return nil, fmt.Errorf("delete bucket %s: %w", name, err)
	}

	bs.publishBucketEvent(name, queue.PublishBucketDeleted, func(cfg *configs.EventsConfig) bool { return cfg.Bucket.Deleted })

	return &types.DeleteBucketResponse{
		Success: true,
		Bucket:  name,
		Message: "bucket deleted",
	}, nil
}

// GetBucketPolicy 查询桶策略，未设置策略时返回空对象.
func (bs *BucketService) GetBucketPolicy(ctx context.Context, name string) (*types.BucketPolicyResponse, error) {
	raw, err := bs.store.GetBucketPolicy(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get bucket policy %s: %w", name, err)
	}

	policy := map[string]any{}
	if raw != "" {
		if err := sonic.Unmarshal([]byte(raw), &policy); err != nil {
			return nil, fmt.Errorf("decode bucket policy %s: %w", name, err)
		}
	}

	return &types.BucketPolicyResponse{
		Bucket: name,
		Policy: policy,
	}, nil
}

// SetBucketPolicy 设置桶策略，policy 为标准 S3 策略文档.
func (bs *BucketService) SetBucketPolicy(ctx context.Context, name string, policy map[string]any) (*types.BucketPolicyResponse, error) {
	raw, err := sonic.Marshal(policy)
	if err != nil {
		return nil, fmt.Errorf("encode bucket policy %s: %w", name, err)
	}

	if err := bs.store.SetBucketPolicy(ctx, name, string(raw)); err != nil {
		return nil, fmt.Errorf("set bucket policy %s: %w", name, err)
	}

	return &types.BucketPolicyResponse{
		Bucket: name,
		Policy: policy,
	}, nil
}

// MakeBucketPublic 设置桶为公开读.
func (bs *BucketService) MakeBucketPublic(ctx context.Context, name string) (*types.MakeBucketPublicResponse, error) {
	if err := bs.store.MakeBucketPublic(ctx, name); err != nil {
		return nil, fmt.Errorf("make bucket %s public: %w", name, err)
	}

	return &types.MakeBucketPublicResponse{
		Success: true,
		Bucket:  name,
		Public:  true,
	}, nil
}

// MakeBucketPrivate 恢复桶为私有.
func (bs *BucketService) MakeBucketPrivate(ctx context.Context, name string) (*types.MakeBucketPublicResponse, error) {
	if err := bs.store.MakeBucketPrivate(ctx, name); err != nil {
		return nil, fmt.Errorf("make bucket %s private: %w", name, err)
	}

	return &types.MakeBucketPublicResponse{
		Success: true,
		Bucket:  name,
		Public:  false,
	}, nil
}

// StorageInfo 返回当前后端的连接信息与配置完整性.
func (bs *BucketService) StorageInfo(ctx context.Context) *types.StorageInfoResponse {
	cfg := configs.GetConfig().Storage
	missing := objstore.ValidateConfig()

	info := &types.StorageInfoResponse{
		Backend:    bs.store.Backend(),
		Configured: len(missing) == 0,
		Missing:    missing,
	}

	switch cfg.Backend {
	case configs.StorageBackendOSS:
		info.Endpoint = cfg.OSS.Endpoint
		info.Secure = cfg.OSS.UseSSL
		info.PublicHost = cfg.OSS.GetEndpointURL()
		if cfg.OSS.UseCNAME && cfg.OSS.CNAMEDomain != "" {
			info.PublicHost = cfg.OSS.Scheme() + "://" + cfg.OSS.CNAMEDomain
		}
	default:
		info.Endpoint = cfg.MinIO.Endpoint
		info.Secure = cfg.MinIO.UseSSL
		info.PublicHost = cfg.MinIO.GetEndpointURL()
	}

	return info
}

// publishBucketEvent 在事件开关允许时发布桶生命周期事件，发布失败只记日志.
func (bs *BucketService) publishBucketEvent(bucket string, publish func(pub message.Publisher, payload queue.BucketPayload, opts ...func(*queue.EventHeader)) error, enabled func(*configs.EventsConfig) bool) {
	cfg := configs.GetConfig()

	pub := bs.mqClient.Publisher()
	if pub == nil || !cfg.Events.Enabled || !enabled(&cfg.Events) {
		return
	}

	payload := queue.BucketPayload{Bucket: bucket, Backend: bs.store.Backend()}
	if err := publish(pub, payload, queue.WithProducer(configs.AppName)); err != nil {
		nlog.Logger().Warn().Err(err).Str("bucket", bucket).Msg("publish bucket event failed")
	}
}
