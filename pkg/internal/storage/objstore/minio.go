package objstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yeisme/objectvault/pkg/configs"
	nlog "github.com/yeisme/objectvault/pkg/log"
)

// minioStore 基于 minio-go 的 ObjectStorage 实现.
type minioStore struct {
	cli *minio.Client
	cfg configs.MinIOConfig
}

// newMinIOStore 初始化 MinIO 客户端并做一次连通性校验.
func newMinIOStore(ctx context.Context) (ObjectStorage, error) {
	cfg := configs.GetConfig().Storage.MinIO
	endpoint := cfg.Endpoint
	// 允许用户传完整 schema endpoint（http:// 或 https://）
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			cfg.UseSSL = true
		}
	}

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	cli.SetAppInfo(configs.AppName, configs.AppVersion)

	if _, err := cli.ListBuckets(ctx); err != nil {
		return nil, fmt.Errorf("minio connectivity check: %w", err)
	}

	nlog.Logger().Info().Str("endpoint", cfg.Endpoint).Msg("minio connected")

	return &minioStore{cli: cli, cfg: cfg}, nil
}

func (s *minioStore) Backend() string {
	return string(configs.StorageBackendMinIO)
}

func (s *minioStore) ListBuckets(ctx context.Context) ([]BucketInfo, error) {
	raw, err := s.cli.ListBuckets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", translateMinIOErr(err))
	}

	buckets := make([]BucketInfo, 0, len(raw))
	for _, b := range raw {
		buckets = append(buckets, BucketInfo{Name: b.Name, CreationDate: b.CreationDate})
	}

	return buckets, nil
}

func (s *minioStore) CreateBucket(ctx context.Context, bucket string) error {
	exists, err := s.cli.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", bucket, translateMinIOErr(err))
	}

	if exists {
		return fmt.Errorf("bucket %s: %w", bucket, ErrConflict)
	}

	if err := s.cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", bucket, translateMinIOErr(err))
	}

	return nil
}

func (s *minioStore) DeleteBucket(ctx context.Context, bucket string) error {
	exists, err := s.cli.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", bucket, translateMinIOErr(err))
	}

	if !exists {
		return fmt.Errorf("bucket %s: %w", bucket, ErrNotFound)
	}

	if err := s.cli.RemoveBucket(ctx, bucket); err != nil {
		return fmt.Errorf("delete bucket %s: %w", bucket, translateMinIOErr(err))
	}

	return nil
}

func (s *minioStore) BucketExists(ctx context.Context, bucket string) (bool, error) {
	exists, err := s.cli.BucketExists(ctx, bucket)
	if err != nil {
		return false, fmt.Errorf("check bucket %s: %w", bucket, translateMinIOErr(err))
	}

	return exists, nil
}

func (s *minioStore) ListObjects(ctx context.Context, bucket, prefix string, recursive bool) ([]ObjectInfo, error) {
	objects := make([]ObjectInfo, 0)

	for obj := range s.cli.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: recursive,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects in %s: %w", bucket, translateMinIOErr(obj.Err))
		}

		// 非递归列举时，minio 以尾部 "/" 的零大小条目表示公共前缀
		isDir := strings.HasSuffix(obj.Key, "/") && obj.Size == 0

		objects = append(objects, ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			ETag:         trimETag(obj.ETag),
			ContentType:  obj.ContentType,
			LastModified: obj.LastModified,
			IsDir:        isDir,
		})
	}

	return objects, nil
}

func (s *minioStore) UploadObject(ctx context.Context, bucket, key string, data []byte, contentType string, metadata map[string]string) (UploadResult, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	info, err := s.cli.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: SanitizeMetadata(metadata),
	})
	if err != nil {
		return UploadResult{}, fmt.Errorf("upload %s/%s: %w", bucket, key, translateMinIOErr(err))
	}

	return UploadResult{
		Bucket: info.Bucket,
		Key:    info.Key,
		ETag:   trimETag(info.ETag),
		Size:   info.Size,
	}, nil
}

func (s *minioStore) DownloadObject(ctx context.Context, bucket, key string) ([]byte, ObjectStat, error) {
	obj, err := s.cli.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectStat{}, fmt.Errorf("get %s/%s: %w", bucket, key, translateMinIOErr(err))
	}
	defer obj.Close() //nolint:errcheck

	info, err := obj.Stat()
	if err != nil {
		return nil, ObjectStat{}, fmt.Errorf("stat %s/%s: %w", bucket, key, translateMinIOErr(err))
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, ObjectStat{}, fmt.Errorf("read %s/%s: %w", bucket, key, translateMinIOErr(err))
	}

	return data, statFromMinIO(bucket, info), nil
}

func (s *minioStore) StatObject(ctx context.Context, bucket, key string) (ObjectStat, error) {
	info, err := s.cli.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return ObjectStat{}, fmt.Errorf("stat %s/%s: %w", bucket, key, translateMinIOErr(err))
	}

	return statFromMinIO(bucket, info), nil
}

func (s *minioStore) DeleteObject(ctx context.Context, bucket, key string) error {
	// S3 DELETE 对不存在的键本就返回成功，幂等语义天然成立
	if err := s.cli.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete %s/%s: %w", bucket, key, translateMinIOErr(err))
	}

	return nil
}

func (s *minioStore) CopyObject(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) (CopyResult, error) {
	info, err := s.cli.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: dstBucket, Object: dstKey},
		minio.CopySrcOptions{Bucket: srcBucket, Object: srcKey},
	)
	if err != nil {
		return CopyResult{}, fmt.Errorf("copy %s/%s to %s/%s: %w", srcBucket, srcKey, dstBucket, dstKey, translateMinIOErr(err))
	}

	return CopyResult{
		Bucket:       info.Bucket,
		Key:          info.Key,
		ETag:         trimETag(info.ETag),
		LastModified: info.LastModified,
	}, nil
}

func (s *minioStore) PresignedURL(ctx context.Context, bucket, key string, expiry time.Duration, method PresignMethod) (string, error) {
	var (
		u   *url.URL
		err error
	)

	switch method {
	case PresignGet:
		u, err = s.cli.PresignedGetObject(ctx, bucket, key, expiry, nil)
	case PresignPut:
		u, err = s.cli.PresignedPutObject(ctx, bucket, key, expiry)
	default:
		return "", fmt.Errorf("unsupported presign method: %s", method)
	}

	if err != nil {
		return "", fmt.Errorf("presign %s %s/%s: %w", method, bucket, key, translateMinIOErr(err))
	}

	return u.String(), nil
}

func (s *minioStore) PublicURL(ctx context.Context, bucket, key string) (PublicURLInfo, error) {
	// MinIO 采用 path-style 访问
	ep := s.cli.EndpointURL()
	rawURL := fmt.Sprintf("%s://%s/%s/%s", ep.Scheme, ep.Host, bucket, key)

	isPublic := false
	if policy, err := s.GetBucketPolicy(ctx, bucket); err == nil {
		isPublic = policyAllowsPublicRead(policy)
	}

	return PublicURLInfo{URL: rawURL, IsPublic: isPublic}, nil
}

func (s *minioStore) GetBucketPolicy(ctx context.Context, bucket string) (string, error) {
	policy, err := s.cli.GetBucketPolicy(ctx, bucket)
	if err != nil {
		return "", fmt.Errorf("get bucket policy %s: %w", bucket, translateMinIOErr(err))
	}

	if policy == "" {
		return "{}", nil
	}

	return policy, nil
}

func (s *minioStore) SetBucketPolicy(ctx context.Context, bucket, policy string) error {
	if err := s.cli.SetBucketPolicy(ctx, bucket, policy); err != nil {
		return fmt.Errorf("set bucket policy %s: %w", bucket, translateMinIOErr(err))
	}

	return nil
}

func (s *minioStore) MakeBucketPublic(ctx context.Context, bucket string) error {
	policy, err := publicReadPolicy(bucket)
	if err != nil {
		return err
	}

	return s.SetBucketPolicy(ctx, bucket, policy)
}

func (s *minioStore) MakeBucketPrivate(ctx context.Context, bucket string) error {
	// 空策略即删除桶策略，回到默认私有
	return s.SetBucketPolicy(ctx, bucket, "")
}

func (s *minioStore) HealthCheck(ctx context.Context) error {
	_, err := s.cli.ListBuckets(ctx)
	return err
}

func (s *minioStore) Close() error {
	return nil
}

// statFromMinIO 转换 minio 对象信息，用户元数据键转小写并去掉 X-Amz-Meta- 前缀.
func statFromMinIO(bucket string, info minio.ObjectInfo) ObjectStat {
	var meta map[string]string

	if len(info.UserMetadata) > 0 {
		meta = make(map[string]string, len(info.UserMetadata))
		for k, v := range info.UserMetadata {
			meta[strings.ToLower(strings.TrimPrefix(k, "X-Amz-Meta-"))] = v
		}
	}

	return ObjectStat{
		Bucket:       bucket,
		Key:          info.Key,
		Size:         info.Size,
		ETag:         trimETag(info.ETag),
		ContentType:  info.ContentType,
		LastModified: info.LastModified,
		Metadata:     meta,
	}
}

// publicReadPolicy 生成允许匿名 GetObject 的桶策略 JSON.
func publicReadPolicy(bucket string) (string, error) {
	policy := map[string]any{
		"Version": "2012-10-17",
		"Statement": []map[string]any{
			{
				"Effect":    "Allow",
				"Principal": map[string]any{"AWS": []string{"*"}},
				"Action":    []string{"s3:GetObject"},
				"Resource":  []string{fmt.Sprintf("arn:aws:s3:::%s/*", bucket)},
			},
		},
	}

	data, err := sonic.Marshal(policy)
	if err != nil {
		return "", fmt.Errorf("marshal bucket policy: %w", err)
	}

	return string(data), nil
}

// policyAllowsPublicRead 解析桶策略，判断是否存在允许任意主体 GetObject 的条款.
func policyAllowsPublicRead(policy string) bool {
	if policy == "" || policy == "{}" {
		return false
	}

	var doc struct {
		Statement []struct {
			Effect    string `json:"Effect"`
			Principal any    `json:"Principal"`
			Action    any    `json:"Action"`
		} `json:"Statement"`
	}

	if err := sonic.Unmarshal([]byte(policy), &doc); err != nil {
		return false
	}

	for _, stmt := range doc.Statement {
		if stmt.Effect != "Allow" {
			continue
		}

		if !principalIsWildcard(stmt.Principal) {
			continue
		}

		for _, action := range toStringSlice(stmt.Action) {
			if action == "s3:GetObject" || action == "s3:*" {
				return true
			}
		}
	}

	return false
}

// principalIsWildcard 判断策略主体是否覆盖所有人，兼容 "*" 与 {"AWS": "*"} 两种写法.
func principalIsWildcard(principal any) bool {
	switch p := principal.(type) {
	case string:
		return p == "*"
	case map[string]any:
		for _, aws := range toStringSlice(p["AWS"]) {
			if aws == "*" {
				return true
			}
		}
	}

	return false
}

// toStringSlice 将策略中可能为字符串或字符串数组的字段拍平.
func toStringSlice(v any) []string {
	switch val := v.(type) {
	case string:
		return []string{val}
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}

		return out
	}

	return nil
}
