package mq

import (
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/yeisme/objectvault/pkg/internal/model"
	"github.com/yeisme/objectvault/pkg/queue"
)

// TestBuildAuditRequestBucketEvents 测试桶事件到审计请求的映射.
func TestBuildAuditRequestBucketEvents(t *testing.T) {
	tests := []struct {
		name     string
		topic    string
		behavior model.BehaviorType
	}{
		{"created", queue.TopicBucketCreated, model.BehaviorBucketCreate},
		{"deleted", queue.TopicBucketDeleted, model.BehaviorBucketDelete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := queue.NewWatermillMessage(tt.topic, queue.BucketPayload{
				Bucket:  "articles",
				Backend: "minio",
			}, queue.WithTraceID("trace-1"), queue.WithProducer("api"))
			if err != nil {
				t.Fatalf("build message: %v", err)
			}

			req, err := buildAuditRequest(tt.topic, msg)
			if err != nil {
				t.Fatalf("buildAuditRequest: %v", err)
			}

			if req.BehaviorType != string(tt.behavior) {
				t.Errorf("BehaviorType = %q, want %q", req.BehaviorType, tt.behavior)
			}
			if req.TargetType != "bucket" {
				t.Errorf("TargetType = %q, want bucket", req.TargetType)
			}
			if req.TargetID != "articles" {
				t.Errorf("TargetID = %q, want articles", req.TargetID)
			}
			if req.SessionID != "trace-1" {
				t.Errorf("SessionID = %q, want trace-1", req.SessionID)
			}

			if got := req.Metadata["source"]; got != "event" {
				t.Errorf("metadata source = %v, want event", got)
			}
			if got := req.Metadata["topic"]; got != tt.topic {
				t.Errorf("metadata topic = %v, want %q", got, tt.topic)
			}
			if got := req.Metadata["backend"]; got != "minio" {
				t.Errorf("metadata backend = %v, want minio", got)
			}
			if got := req.Metadata["producer"]; got != "api" {
				t.Errorf("metadata producer = %v, want api", got)
			}

			ts, ok := req.Metadata["occurred_at"].(time.Time)
			if !ok || ts.IsZero() {
				t.Errorf("metadata occurred_at = %v, want non-zero time", req.Metadata["occurred_at"])
			}
		})
	}
}

// TestBuildAuditRequestObjectStored 测试对象写入事件携带文件名与对象元数据.
func TestBuildAuditRequestObjectStored(t *testing.T) {
	msg, err := queue.NewWatermillMessage(queue.TopicObjectStored, queue.ObjectStoredPayload{
		Object: queue.ObjectRef{
			Bucket:      "articles",
			ObjectKey:   "notes/report.md",
			ETag:        "abc123",
			Size:        2048,
			ContentType: "text/markdown",
		},
		FileName: "report.md",
	})
	if err != nil {
		t.Fatalf("build message: %v", err)
	}

	req, err := buildAuditRequest(queue.TopicObjectStored, msg)
	if err != nil {
		t.Fatalf("buildAuditRequest: %v", err)
	}

	if req.BehaviorType != string(model.BehaviorDocumentUpload) {
		t.Errorf("BehaviorType = %q, want %q", req.BehaviorType, model.BehaviorDocumentUpload)
	}
	if req.TargetType != "document" {
		t.Errorf("TargetType = %q, want document", req.TargetType)
	}
	if req.TargetID != "articles/notes/report.md" {
		t.Errorf("TargetID = %q, want articles/notes/report.md", req.TargetID)
	}

	if got := req.ActionDetails["file_name"]; got != "report.md" {
		t.Errorf("action details file_name = %v, want report.md", got)
	}

	if got := req.Metadata["etag"]; got != "abc123" {
		t.Errorf("metadata etag = %v, want abc123", got)
	}
	if got := req.Metadata["size"]; got != int64(2048) {
		t.Errorf("metadata size = %v, want 2048", got)
	}
	if got := req.Metadata["content_type"]; got != "text/markdown" {
		t.Errorf("metadata content_type = %v, want text/markdown", got)
	}
}

// TestBuildAuditRequestObjectDeleted 测试删除事件不携带动作详情.
func TestBuildAuditRequestObjectDeleted(t *testing.T) {
	msg, err := queue.NewWatermillMessage(queue.TopicObjectDeleted, queue.ObjectDeletedPayload{
		Object: queue.ObjectRef{Bucket: "articles", ObjectKey: "old.md"},
	})
	if err != nil {
		t.Fatalf("build message: %v", err)
	}

	req, err := buildAuditRequest(queue.TopicObjectDeleted, msg)
	if err != nil {
		t.Fatalf("buildAuditRequest: %v", err)
	}

	if req.BehaviorType != string(model.BehaviorDocumentDelete) {
		t.Errorf("BehaviorType = %q, want %q", req.BehaviorType, model.BehaviorDocumentDelete)
	}
	if req.TargetID != "articles/old.md" {
		t.Errorf("TargetID = %q, want articles/old.md", req.TargetID)
	}
	if req.ActionDetails != nil {
		t.Errorf("ActionDetails = %v, want nil", req.ActionDetails)
	}
}

// TestBuildAuditRequestObjectCopied 测试复制事件落在目标坐标并记录来源.
func TestBuildAuditRequestObjectCopied(t *testing.T) {
	msg, err := queue.NewWatermillMessage(queue.TopicObjectCopied, queue.ObjectCopiedPayload{
		Source: queue.ObjectRef{Bucket: "articles", ObjectKey: "draft.md"},
		Target: queue.ObjectRef{Bucket: "backup", ObjectKey: "draft-copy.md"},
	})
	if err != nil {
		t.Fatalf("build message: %v", err)
	}

	req, err := buildAuditRequest(queue.TopicObjectCopied, msg)
	if err != nil {
		t.Fatalf("buildAuditRequest: %v", err)
	}

	if req.BehaviorType != string(model.BehaviorDocumentUpload) {
		t.Errorf("BehaviorType = %q, want %q", req.BehaviorType, model.BehaviorDocumentUpload)
	}
	if req.TargetID != "backup/draft-copy.md" {
		t.Errorf("TargetID = %q, want backup/draft-copy.md", req.TargetID)
	}
	if got := req.ActionDetails["operation"]; got != "copy" {
		t.Errorf("action details operation = %v, want copy", got)
	}
	if got := req.ActionDetails["source"]; got != "articles/draft.md" {
		t.Errorf("action details source = %v, want articles/draft.md", got)
	}
}

// TestBuildAuditRequestObjectAccessed 测试访问方式决定行为类型.
func TestBuildAuditRequestObjectAccessed(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		behavior    model.BehaviorType
		wantDetails bool
	}{
		{"download", "download", model.BehaviorDocumentDownload, true},
		{"presigned", "presigned", model.BehaviorDocumentView, true},
		{"unspecified", "", model.BehaviorDocumentView, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := queue.NewWatermillMessage(queue.TopicObjectAccessed, queue.ObjectAccessedPayload{
				Object: queue.ObjectRef{Bucket: "articles", ObjectKey: "guide.md"},
				Method: tt.method,
			})
			if err != nil {
				t.Fatalf("build message: %v", err)
			}

			req, err := buildAuditRequest(queue.TopicObjectAccessed, msg)
			if err != nil {
				t.Fatalf("buildAuditRequest: %v", err)
			}

			if req.BehaviorType != string(tt.behavior) {
				t.Errorf("BehaviorType = %q, want %q", req.BehaviorType, tt.behavior)
			}

			if !tt.wantDetails {
				if req.ActionDetails != nil {
					t.Errorf("ActionDetails = %v, want nil", req.ActionDetails)
				}
				return
			}
			if got := req.ActionDetails["method"]; got != tt.method {
				t.Errorf("action details method = %v, want %q", got, tt.method)
			}
		})
	}
}

// TestBuildAuditRequestUnknownTopic 测试非审计主题返回空请求.
func TestBuildAuditRequestUnknownTopic(t *testing.T) {
	msg, err := queue.NewWatermillMessage(queue.TopicDocumentIndexed, queue.DocumentIndexedPayload{
		Object: queue.ObjectRef{Bucket: "articles", ObjectKey: "guide.md"},
		Index:  "articles",
		DocID:  "doc-1",
	})
	if err != nil {
		t.Fatalf("build message: %v", err)
	}

	req, err := buildAuditRequest(queue.TopicDocumentIndexed, msg)
	if err != nil {
		t.Fatalf("buildAuditRequest: %v", err)
	}
	if req != nil {
		t.Errorf("req = %+v, want nil for non-audit topic", req)
	}
}

// TestBuildAuditRequestBadPayload 测试负载解析失败时返回错误.
func TestBuildAuditRequestBadPayload(t *testing.T) {
	msg := message.NewMessage(watermill.NewUUID(), []byte("{not json"))

	req, err := buildAuditRequest(queue.TopicBucketCreated, msg)
	if err == nil {
		t.Fatal("expected error for malformed payload")
	}
	if req != nil {
		t.Errorf("req = %+v, want nil on parse failure", req)
	}
}

// TestAuditSessionIDFallback 测试缺少 TraceID 时回退到消息 ID.
func TestAuditSessionIDFallback(t *testing.T) {
	msg, err := queue.NewWatermillMessage(queue.TopicBucketCreated, queue.BucketPayload{
		Bucket: "articles",
	})
	if err != nil {
		t.Fatalf("build message: %v", err)
	}

	req, err := buildAuditRequest(queue.TopicBucketCreated, msg)
	if err != nil {
		t.Fatalf("buildAuditRequest: %v", err)
	}

	if req.SessionID == "" {
		t.Fatal("SessionID is empty")
	}
	if req.SessionID != msg.UUID {
		t.Errorf("SessionID = %q, want message UUID %q", req.SessionID, msg.UUID)
	}
}
