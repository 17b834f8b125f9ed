package objstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	minio "github.com/minio/minio-go/v7"
)

// 哨兵错误，供上层用 errors.Is 判定并映射为 HTTP 状态码.
var (
	// ErrNotFound 桶或对象不存在.
	ErrNotFound = errors.New("objstore: not found")

	// ErrConflict 资源冲突，如创建已存在的桶、删除非空的桶.
	ErrConflict = errors.New("objstore: conflict")
)

// translateMinIOErr 将 minio-go 的响应错误翻译为哨兵错误，其余原样返回.
func translateMinIOErr(err error) error {
	if err == nil {
		return nil
	}

	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		return fmt.Errorf("%s: %w", resp.Code, ErrNotFound)
	case "BucketAlreadyOwnedByYou", "BucketAlreadyExists", "BucketNotEmpty":
		return fmt.Errorf("%s: %w", resp.Code, ErrConflict)
	}

	return err
}

// translateOSSErr 将 OSS SDK 的服务端错误翻译为哨兵错误，其余原样返回.
func translateOSSErr(err error) error {
	if err == nil {
		return nil
	}

	var svcErr oss.ServiceError
	if !errors.As(err, &svcErr) {
		return err
	}

	switch svcErr.Code {
	case "NoSuchKey", "NoSuchBucket", "SymlinkTargetNotExist":
		return fmt.Errorf("%s: %w", svcErr.Code, ErrNotFound)
	case "BucketAlreadyExists", "BucketNotEmpty":
		return fmt.Errorf("%s: %w", svcErr.Code, ErrConflict)
	}

	return err
}

// trimETag 去除 ETag 两侧引号，两个后端返回风格不同，统一裸值.
func trimETag(etag string) string {
	return strings.Trim(etag, `"`)
}
