package queue_test

import (
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/yeisme/objectvault/pkg/queue"
)

// capturePublisher 把发布的消息留在内存里供断言.
type capturePublisher struct {
	topic    string
	messages []*message.Message
}

func (p *capturePublisher) Publish(topic string, messages ...*message.Message) error {
	p.topic = topic
	p.messages = append(p.messages, messages...)

	return nil
}

func (p *capturePublisher) Close() error { return nil }

// TestNewEventHeader 测试事件头默认值与可选项.
func TestNewEventHeader(t *testing.T) {
	hdr := queue.NewEventHeader(queue.TopicObjectStored)

	if hdr.Topic != queue.TopicObjectStored {
		t.Errorf("Topic = %q", hdr.Topic)
	}
	if hdr.Version != queue.PayloadVersionV1 {
		t.Errorf("Version = %q, want v1", hdr.Version)
	}
	if hdr.OccurredAt.IsZero() || hdr.OccurredAt.Location() != time.UTC {
		t.Errorf("OccurredAt = %v, want non-zero UTC", hdr.OccurredAt)
	}

	hdr = queue.NewEventHeader(queue.TopicObjectStored, queue.WithTraceID("trace-1"), queue.WithProducer("objectvault"))
	if hdr.TraceID != "trace-1" || hdr.Producer != "objectvault" {
		t.Errorf("header = %+v", hdr)
	}
}

// TestNewWatermillMessage 测试消息构造的 ID 与元数据.
func TestNewWatermillMessage(t *testing.T) {
	payload := queue.BucketPayload{Bucket: "articles", Backend: "minio"}

	msg, err := queue.NewWatermillMessage(queue.TopicBucketCreated, payload, queue.WithTraceID("trace-1"))
	if err != nil {
		t.Fatalf("new message: %v", err)
	}

	if msg.UUID == "" {
		t.Error("message UUID should be set")
	}
	if msg.Metadata.Get("topic") != queue.TopicBucketCreated {
		t.Errorf("metadata topic = %q", msg.Metadata.Get("topic"))
	}
	if msg.Metadata.Get("trace_id") != "trace-1" {
		t.Errorf("metadata trace_id = %q", msg.Metadata.Get("trace_id"))
	}
	if msg.Metadata.Get("version") != queue.PayloadVersionV1 {
		t.Errorf("metadata version = %q", msg.Metadata.Get("version"))
	}
	if _, err := time.Parse(time.RFC3339Nano, msg.Metadata.Get("occurred_at")); err != nil {
		t.Errorf("metadata occurred_at = %q, want RFC3339Nano", msg.Metadata.Get("occurred_at"))
	}
}

// TestEncodeDecodeRoundtrip 测试信封编解码往返.
func TestEncodeDecodeRoundtrip(t *testing.T) {
	env := queue.Message[queue.ObjectDeletedPayload]{
		Header: queue.NewEventHeader(queue.TopicObjectDeleted, queue.WithProducer("objectvault")),
		Payload: queue.ObjectDeletedPayload{
			Object: queue.ObjectRef{Bucket: "articles", ObjectKey: "2026/08/intro.md"},
		},
	}

	data, err := queue.Encode(env)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := queue.Decode[queue.ObjectDeletedPayload](data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Header.Topic != queue.TopicObjectDeleted || decoded.Header.Producer != "objectvault" {
		t.Errorf("header = %+v", decoded.Header)
	}
	if decoded.Payload.Object.Bucket != "articles" || decoded.Payload.Object.ObjectKey != "2026/08/intro.md" {
		t.Errorf("payload = %+v", decoded.Payload)
	}
}

// TestPublishParseRoundtrip 测试发布辅助函数与强类型解析的配合.
func TestPublishParseRoundtrip(t *testing.T) {
	pub := &capturePublisher{}

	err := queue.PublishObjectStored(pub, queue.ObjectStoredPayload{
		Object: queue.ObjectRef{
			Bucket:      "articles",
			ObjectKey:   "2026/08/intro.md",
			ETag:        "abc123",
			Size:        42,
			ContentType: "text/markdown",
		},
		Source:   "upload",
		FileName: "intro.md",
	}, queue.WithTraceID("trace-9"))
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	if pub.topic != queue.TopicObjectStored {
		t.Errorf("published topic = %q", pub.topic)
	}
	if len(pub.messages) != 1 {
		t.Fatalf("len(messages) = %d", len(pub.messages))
	}

	env, err := queue.ParseObjectStored(pub.messages[0])
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if env.Header.Topic != queue.TopicObjectStored || env.Header.TraceID != "trace-9" {
		t.Errorf("header = %+v", env.Header)
	}
	obj := env.Payload.Object
	if obj.Bucket != "articles" || obj.ObjectKey != "2026/08/intro.md" || obj.Size != 42 {
		t.Errorf("object = %+v", obj)
	}
	if env.Payload.FileName != "intro.md" {
		t.Errorf("file name = %q", env.Payload.FileName)
	}
}
