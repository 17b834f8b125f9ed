// Package objstore 提供统一的对象存储抽象，屏蔽 MinIO 与阿里云 OSS 的后端差异.
//
// 所有后端实现同一个 ObjectStorage 接口，语义对齐：
//   - 创建已存在的桶返回 ErrConflict，删除非空桶返回 ErrConflict
//   - 删除不存在的对象视为成功（幂等删除）
//   - 上传时统一做元数据清洗（键值长度与字符集约束）
//   - ETag 统一去除两侧引号
//
// 后端由 configs.StorageConfig.Backend 决定，通过 factory.go 的 New 获取实例.
package objstore

import (
	"context"
	"time"
)

// BucketInfo 桶信息.
type BucketInfo struct {
	Name         string    `json:"name"`
	CreationDate time.Time `json:"creation_date"`
}

// ObjectInfo 列表项信息. 非递归列举时以 "/" 聚合出伪目录，IsDir 为 true 且 Size 为 0.
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ETag         string    `json:"etag,omitempty"`
	ContentType  string    `json:"content_type,omitempty"`
	LastModified time.Time `json:"last_modified,omitempty"`
	IsDir        bool      `json:"is_dir"`
}

// ObjectStat 对象元信息.
type ObjectStat struct {
	Bucket       string            `json:"bucket"`
	Key          string            `json:"key"`
	Size         int64             `json:"size"`
	ETag         string            `json:"etag"`
	ContentType  string            `json:"content_type"`
	LastModified time.Time         `json:"last_modified"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// UploadResult 上传结果.
type UploadResult struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	ETag   string `json:"etag"`
	Size   int64  `json:"size"`
}

// CopyResult 复制结果.
type CopyResult struct {
	Bucket       string    `json:"bucket"`
	Key          string    `json:"key"`
	ETag         string    `json:"etag,omitempty"`
	LastModified time.Time `json:"last_modified,omitempty"`
}

// PublicURLInfo 对象公开访问信息. IsPublic 依据桶策略/ACL 推断，推断失败时为 false.
type PublicURLInfo struct {
	URL      string `json:"url"`
	IsPublic bool   `json:"is_public"`
}

// PresignMethod 预签名支持的 HTTP 方法.
type PresignMethod string

const (
	PresignGet PresignMethod = "GET"
	PresignPut PresignMethod = "PUT"
)

// ObjectStorage 对象存储统一接口. 两个后端（MinIO / OSS）行为对齐，
// 业务层不感知后端差异.
type ObjectStorage interface {
	// Backend 返回后端标识（"minio" 或 "oss"）.
	Backend() string

	// ListBuckets 列举全部桶.
	ListBuckets(ctx context.Context) ([]BucketInfo, error)
	// CreateBucket 创建桶，已存在返回 ErrConflict.
	CreateBucket(ctx context.Context, bucket string) error
	// DeleteBucket 删除空桶，非空返回 ErrConflict，不存在返回 ErrNotFound.
	DeleteBucket(ctx context.Context, bucket string) error
	// BucketExists 判断桶是否存在.
	BucketExists(ctx context.Context, bucket string) (bool, error)

	// ListObjects 列举对象. recursive 为 false 时以 "/" 分组出伪目录.
	ListObjects(ctx context.Context, bucket, prefix string, recursive bool) ([]ObjectInfo, error)
	// UploadObject 上传对象，元数据先经清洗再写入.
	UploadObject(ctx context.Context, bucket, key string, data []byte, contentType string, metadata map[string]string) (UploadResult, error)
	// DownloadObject 下载对象全部内容，不存在返回 ErrNotFound.
	DownloadObject(ctx context.Context, bucket, key string) ([]byte, ObjectStat, error)
	// StatObject 获取对象元信息，不存在返回 ErrNotFound.
	StatObject(ctx context.Context, bucket, key string) (ObjectStat, error)
	// DeleteObject 删除对象，对不存在的键静默成功.
	DeleteObject(ctx context.Context, bucket, key string) error
	// CopyObject 服务端复制对象.
	CopyObject(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) (CopyResult, error)

	// PresignedURL 生成预签名 URL，仅支持 GET 与 PUT.
	PresignedURL(ctx context.Context, bucket, key string, expiry time.Duration, method PresignMethod) (string, error)
	// PublicURL 构造对象的公开访问 URL 并推断桶是否公开可读.
	PublicURL(ctx context.Context, bucket, key string) (PublicURLInfo, error)

	// GetBucketPolicy 获取桶策略 JSON，未设置时返回 "{}".
	GetBucketPolicy(ctx context.Context, bucket string) (string, error)
	// SetBucketPolicy 设置桶策略 JSON.
	SetBucketPolicy(ctx context.Context, bucket, policy string) error
	// MakeBucketPublic 将桶设置为公开读（MinIO 写策略，OSS 写 ACL）.
	MakeBucketPublic(ctx context.Context, bucket string) error
	// MakeBucketPrivate 将桶恢复为私有.
	MakeBucketPrivate(ctx context.Context, bucket string) error

	// HealthCheck 后端连通性检查.
	HealthCheck(ctx context.Context) error
	// Close 释放底层连接.
	Close() error
}
