package objstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"github.com/yeisme/objectvault/pkg/configs"
	nlog "github.com/yeisme/objectvault/pkg/log"
)

// listPageSize 单次列举请求的最大条目数.
const listPageSize = 1000

// ossStore 基于阿里云 OSS SDK 的 ObjectStorage 实现.
type ossStore struct {
	cli *oss.Client
	cfg configs.OSSConfig
}

// newOSSStore 初始化 OSS 客户端. 配置了 CNAME 时以自定义域名访问（此时桶级操作受限于该域名绑定的桶）.
func newOSSStore(ctx context.Context) (ObjectStorage, error) {
	cfg := configs.GetConfig().Storage.OSS

	endpoint := cfg.GetEndpointURL()
	opts := make([]oss.ClientOption, 0, 1)

	if cfg.UseCNAME && cfg.CNAMEDomain != "" {
		endpoint = fmt.Sprintf("%s://%s", cfg.Scheme(), cfg.CNAMEDomain)
		opts = append(opts, oss.UseCname(true))
	}

	cli, err := oss.New(endpoint, cfg.AccessKeyID, cfg.AccessKeySecret, opts...)
	if err != nil {
		return nil, fmt.Errorf("create oss client: %w", err)
	}

	nlog.Logger().Info().
		Str("endpoint", cfg.Endpoint).
		Bool("cname", cfg.UseCNAME).
		Msg("oss connected")

	return &ossStore{cli: cli, cfg: cfg}, nil
}

func (s *ossStore) Backend() string {
	return string(configs.StorageBackendOSS)
}

func (s *ossStore) ListBuckets(ctx context.Context) ([]BucketInfo, error) {
	buckets := make([]BucketInfo, 0)
	marker := ""

	for {
		res, err := s.cli.ListBuckets(oss.Marker(marker), oss.MaxKeys(listPageSize))
		if err != nil {
			return nil, fmt.Errorf("list buckets: %w", translateOSSErr(err))
		}

		for _, b := range res.Buckets {
			buckets = append(buckets, BucketInfo{Name: b.Name, CreationDate: b.CreationDate})
		}

		if !res.IsTruncated {
			break
		}

		marker = res.NextMarker
	}

	return buckets, nil
}

func (s *ossStore) CreateBucket(ctx context.Context, bucket string) error {
	// OSS 重复创建自己的桶不报错，先显式查重保证冲突语义
	exists, err := s.cli.IsBucketExist(bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", bucket, translateOSSErr(err))
	}

	if exists {
		return fmt.Errorf("bucket %s: %w", bucket, ErrConflict)
	}

	if err := s.cli.CreateBucket(bucket); err != nil {
		return fmt.Errorf("create bucket %s: %w", bucket, translateOSSErr(err))
	}

	return nil
}

func (s *ossStore) DeleteBucket(ctx context.Context, bucket string) error {
	exists, err := s.cli.IsBucketExist(bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", bucket, translateOSSErr(err))
	}

	if !exists {
		return fmt.Errorf("bucket %s: %w", bucket, ErrNotFound)
	}

	if err := s.cli.DeleteBucket(bucket); err != nil {
		return fmt.Errorf("delete bucket %s: %w", bucket, translateOSSErr(err))
	}

	return nil
}

func (s *ossStore) BucketExists(ctx context.Context, bucket string) (bool, error) {
	exists, err := s.cli.IsBucketExist(bucket)
	if err != nil {
		return false, fmt.Errorf("check bucket %s: %w", bucket, translateOSSErr(err))
	}

	return exists, nil
}

func (s *ossStore) ListObjects(ctx context.Context, bucket, prefix string, recursive bool) ([]ObjectInfo, error) {
	bkt, err := s.cli.Bucket(bucket)
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", bucket, translateOSSErr(err))
	}

	objects := make([]ObjectInfo, 0)
	marker := ""

	for {
		listOpts := []oss.Option{oss.Prefix(prefix), oss.Marker(marker), oss.MaxKeys(listPageSize)}
		if !recursive {
			listOpts = append(listOpts, oss.Delimiter("/"))
		}

		res, err := bkt.ListObjects(listOpts...)
		if err != nil {
			return nil, fmt.Errorf("list objects in %s: %w", bucket, translateOSSErr(err))
		}

		for _, dir := range res.CommonPrefixes {
			objects = append(objects, ObjectInfo{Key: dir, IsDir: true})
		}

		for _, obj := range res.Objects {
			objects = append(objects, ObjectInfo{
				Key:          obj.Key,
				Size:         obj.Size,
				ETag:         trimETag(obj.ETag),
				LastModified: obj.LastModified,
			})
		}

		if !res.IsTruncated {
			break
		}

		marker = res.NextMarker
	}

	return objects, nil
}

func (s *ossStore) UploadObject(ctx context.Context, bucket, key string, data []byte, contentType string, metadata map[string]string) (UploadResult, error) {
	bkt, err := s.cli.Bucket(bucket)
	if err != nil {
		return UploadResult{}, fmt.Errorf("open bucket %s: %w", bucket, translateOSSErr(err))
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var respHeader http.Header

	putOpts := []oss.Option{
		oss.ContentType(contentType),
		oss.GetResponseHeader(&respHeader),
	}
	// oss.Meta 会自动加 X-Oss-Meta- 前缀
	for k, v := range SanitizeMetadata(metadata) {
		putOpts = append(putOpts, oss.Meta(k, v))
	}

	if err := bkt.PutObject(key, bytes.NewReader(data), putOpts...); err != nil {
		return UploadResult{}, fmt.Errorf("upload %s/%s: %w", bucket, key, translateOSSErr(err))
	}

	return UploadResult{
		Bucket: bucket,
		Key:    key,
		ETag:   trimETag(respHeader.Get("ETag")),
		Size:   int64(len(data)),
	}, nil
}

func (s *ossStore) DownloadObject(ctx context.Context, bucket, key string) ([]byte, ObjectStat, error) {
	bkt, err := s.cli.Bucket(bucket)
	if err != nil {
		return nil, ObjectStat{}, fmt.Errorf("open bucket %s: %w", bucket, translateOSSErr(err))
	}

	body, err := bkt.GetObject(key)
	if err != nil {
		return nil, ObjectStat{}, fmt.Errorf("get %s/%s: %w", bucket, key, translateOSSErr(err))
	}
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, ObjectStat{}, fmt.Errorf("read %s/%s: %w", bucket, key, translateOSSErr(err))
	}

	stat, err := s.StatObject(ctx, bucket, key)
	if err != nil {
		return nil, ObjectStat{}, err
	}

	return data, stat, nil
}

func (s *ossStore) StatObject(ctx context.Context, bucket, key string) (ObjectStat, error) {
	bkt, err := s.cli.Bucket(bucket)
	if err != nil {
		return ObjectStat{}, fmt.Errorf("open bucket %s: %w", bucket, translateOSSErr(err))
	}

	header, err := bkt.GetObjectDetailedMeta(key)
	if err != nil {
		return ObjectStat{}, fmt.Errorf("stat %s/%s: %w", bucket, key, translateOSSErr(err))
	}

	return statFromOSSHeader(bucket, key, header), nil
}

func (s *ossStore) DeleteObject(ctx context.Context, bucket, key string) error {
	bkt, err := s.cli.Bucket(bucket)
	if err != nil {
		return fmt.Errorf("open bucket %s: %w", bucket, translateOSSErr(err))
	}

	// OSS 删除不存在的键同样返回成功
	if err := bkt.DeleteObject(key); err != nil {
		return fmt.Errorf("delete %s/%s: %w", bucket, key, translateOSSErr(err))
	}

	return nil
}

func (s *ossStore) CopyObject(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) (CopyResult, error) {
	dstBkt, err := s.cli.Bucket(dstBucket)
	if err != nil {
		return CopyResult{}, fmt.Errorf("open bucket %s: %w", dstBucket, translateOSSErr(err))
	}

	res, err := dstBkt.CopyObjectFrom(srcBucket, srcKey, dstKey)
	if err != nil {
		return CopyResult{}, fmt.Errorf("copy %s/%s to %s/%s: %w", srcBucket, srcKey, dstBucket, dstKey, translateOSSErr(err))
	}

	return CopyResult{
		Bucket:       dstBucket,
		Key:          dstKey,
		ETag:         trimETag(res.ETag),
		LastModified: res.LastModified,
	}, nil
}

func (s *ossStore) PresignedURL(ctx context.Context, bucket, key string, expiry time.Duration, method PresignMethod) (string, error) {
	bkt, err := s.cli.Bucket(bucket)
	if err != nil {
		return "", fmt.Errorf("open bucket %s: %w", bucket, translateOSSErr(err))
	}

	var httpMethod oss.HTTPMethod

	switch method {
	case PresignGet:
		httpMethod = oss.HTTPGet
	case PresignPut:
		httpMethod = oss.HTTPPut
	default:
		return "", fmt.Errorf("unsupported presign method: %s", method)
	}

	signedURL, err := bkt.SignURL(key, httpMethod, int64(expiry.Seconds()))
	if err != nil {
		return "", fmt.Errorf("presign %s %s/%s: %w", method, bucket, key, translateOSSErr(err))
	}

	return signedURL, nil
}

func (s *ossStore) PublicURL(ctx context.Context, bucket, key string) (PublicURLInfo, error) {
	var rawURL string

	if s.cfg.UseCNAME && s.cfg.CNAMEDomain != "" {
		rawURL = fmt.Sprintf("%s://%s/%s", s.cfg.Scheme(), s.cfg.CNAMEDomain, key)
	} else {
		// OSS 默认 virtual-host 访问风格
		rawURL = fmt.Sprintf("%s://%s.%s/%s", s.cfg.Scheme(), bucket, s.cfg.Endpoint, key)
	}

	isPublic := false
	if aclRes, err := s.cli.GetBucketACL(bucket); err == nil {
		isPublic = aclRes.ACL == string(oss.ACLPublicRead) || aclRes.ACL == string(oss.ACLPublicReadWrite)
	}

	return PublicURLInfo{URL: rawURL, IsPublic: isPublic}, nil
}

func (s *ossStore) GetBucketPolicy(ctx context.Context, bucket string) (string, error) {
	policy, err := s.cli.GetBucketPolicy(bucket)
	if err != nil {
		// 未设置策略不算错误，返回空文档
		var svcErr oss.ServiceError
		if errors.As(err, &svcErr) && svcErr.Code == "NoSuchBucketPolicy" {
			return "{}", nil
		}

		return "", fmt.Errorf("get bucket policy %s: %w", bucket, translateOSSErr(err))
	}

	if policy == "" {
		return "{}", nil
	}

	return policy, nil
}

func (s *ossStore) SetBucketPolicy(ctx context.Context, bucket, policy string) error {
	if err := s.cli.SetBucketPolicy(bucket, policy); err != nil {
		return fmt.Errorf("set bucket policy %s: %w", bucket, translateOSSErr(err))
	}

	return nil
}

func (s *ossStore) MakeBucketPublic(ctx context.Context, bucket string) error {
	if err := s.cli.SetBucketACL(bucket, oss.ACLPublicRead); err != nil {
		return fmt.Errorf("set bucket acl %s: %w", bucket, translateOSSErr(err))
	}

	return nil
}

func (s *ossStore) MakeBucketPrivate(ctx context.Context, bucket string) error {
	if err := s.cli.SetBucketACL(bucket, oss.ACLPrivate); err != nil {
		return fmt.Errorf("set bucket acl %s: %w", bucket, translateOSSErr(err))
	}

	return nil
}

func (s *ossStore) HealthCheck(ctx context.Context) error {
	_, err := s.cli.ListBuckets(oss.MaxKeys(1))
	return err
}

func (s *ossStore) Close() error {
	return nil
}

// statFromOSSHeader 从响应头还原对象元信息，X-Oss-Meta-* 还原为小写业务键.
func statFromOSSHeader(bucket, key string, header http.Header) ObjectStat {
	size, _ := strconv.ParseInt(header.Get("Content-Length"), 10, 64)

	var lastModified time.Time
	if t, err := http.ParseTime(header.Get("Last-Modified")); err == nil {
		lastModified = t
	}

	var meta map[string]string

	for k, v := range header {
		if !strings.HasPrefix(k, "X-Oss-Meta-") || len(v) == 0 {
			continue
		}

		if meta == nil {
			meta = make(map[string]string)
		}

		meta[strings.ToLower(strings.TrimPrefix(k, "X-Oss-Meta-"))] = v[0]
	}

	return ObjectStat{
		Bucket:       bucket,
		Key:          key,
		Size:         size,
		ETag:         trimETag(header.Get("ETag")),
		ContentType:  header.Get("Content-Type"),
		LastModified: lastModified,
		Metadata:     meta,
	}
}
