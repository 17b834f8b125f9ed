package objstore

import (
	"errors"
	"strings"
	"testing"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	minio "github.com/minio/minio-go/v7"
)

// TestTranslateMinIOErr 测试 minio 响应错误到哨兵错误的映射.
func TestTranslateMinIOErr(t *testing.T) {
	if translateMinIOErr(nil) != nil {
		t.Error("nil should stay nil")
	}

	for _, code := range []string{"NoSuchKey", "NoSuchBucket", "NotFound"} {
		err := translateMinIOErr(minio.ErrorResponse{Code: code})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("code %s: got %v, want ErrNotFound", code, err)
		}
	}

	for _, code := range []string{"BucketAlreadyOwnedByYou", "BucketAlreadyExists", "BucketNotEmpty"} {
		err := translateMinIOErr(minio.ErrorResponse{Code: code})
		if !errors.Is(err, ErrConflict) {
			t.Errorf("code %s: got %v, want ErrConflict", code, err)
		}
	}

	plain := errors.New("connection refused")
	if got := translateMinIOErr(plain); got != plain {
		t.Errorf("unrelated error rewritten: %v", got)
	}

	other := minio.ErrorResponse{Code: "AccessDenied"}
	if got := translateMinIOErr(other); errors.Is(got, ErrNotFound) || errors.Is(got, ErrConflict) {
		t.Errorf("AccessDenied should pass through, got %v", got)
	}
}

// TestTranslateOSSErr 测试 OSS 服务端错误到哨兵错误的映射.
func TestTranslateOSSErr(t *testing.T) {
	if translateOSSErr(nil) != nil {
		t.Error("nil should stay nil")
	}

	err := translateOSSErr(oss.ServiceError{Code: "NoSuchKey"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("NoSuchKey: got %v, want ErrNotFound", err)
	}

	err = translateOSSErr(oss.ServiceError{Code: "BucketNotEmpty"})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("BucketNotEmpty: got %v, want ErrConflict", err)
	}

	plain := errors.New("dial timeout")
	if got := translateOSSErr(plain); got != plain {
		t.Errorf("unrelated error rewritten: %v", got)
	}
}

// TestTrimETag 测试 ETag 引号统一剥离.
func TestTrimETag(t *testing.T) {
	if got := trimETag(`"abc123"`); got != "abc123" {
		t.Errorf("trimETag = %q", got)
	}
	if got := trimETag("abc123"); got != "abc123" {
		t.Errorf("bare etag changed: %q", got)
	}
	if got := trimETag(""); got != "" {
		t.Errorf("empty etag changed: %q", got)
	}
}

// TestSanitizeMetadata 测试元数据清洗的丢弃规则.
func TestSanitizeMetadata(t *testing.T) {
	if SanitizeMetadata(nil) != nil {
		t.Error("nil input should return nil")
	}
	if SanitizeMetadata(map[string]string{}) != nil {
		t.Error("empty input should return nil")
	}

	input := map[string]string{
		"author":                       "ada",
		"":                             "empty key",
		strings.Repeat("k", 1025):      "long key",
		"long-value":                   strings.Repeat("v", 2049),
		"newline":                      "line1\nline2",
		"chinese-value":                "中文",
		"x-amz-meta-original-filename": "notes.md",
	}

	got := SanitizeMetadata(input)
	if len(got) != 2 {
		t.Fatalf("sanitized = %v, want 2 surviving entries", got)
	}
	if got["author"] != "ada" || got["x-amz-meta-original-filename"] != "notes.md" {
		t.Errorf("sanitized = %v", got)
	}

	// 全部非法时返回 nil 而不是空 map
	if got := SanitizeMetadata(map[string]string{"": "x"}); got != nil {
		t.Errorf("all-dropped input should return nil, got %v", got)
	}

	// 原 map 不被修改
	if len(input) != 7 {
		t.Errorf("input mutated, len = %d", len(input))
	}
}

// TestASCIIPrintable 测试可打印 ASCII 判定.
func TestASCIIPrintable(t *testing.T) {
	if !asciiPrintable("plain text 123 !~") {
		t.Error("printable ASCII rejected")
	}
	if asciiPrintable("tab\there") {
		t.Error("control character accepted")
	}
	if asciiPrintable("中文") {
		t.Error("non-ASCII accepted")
	}
	if !asciiPrintable("") {
		t.Error("empty string rejected")
	}
}
