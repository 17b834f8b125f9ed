package queue

import "time"

// EventHeader 定义所有事件的通用头部元数据.
// 建议在发布消息时填充 TraceID、OccurredAt、Producer 等，便于追踪链路与审计.
type EventHeader struct {
	// Topic 冗余记录消息主题，便于离线处理或转储后定位来源主题.
	Topic string `json:"topic"`
	// TraceID 分布式追踪/关联 ID，可来自中间件或业务生成.
	TraceID string `json:"trace_id,omitempty"`
	// Producer 生产者服务名或节点标识.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC，RFC3339）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 事件负载版本，便于向后兼容演进.
	Version string `json:"version,omitempty"`
}

// Message 是统一的消息封装，Header + Payload.
// T 即不同主题对应的负载结构体.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// -------------------------- 存储桶领域 --------------------------

// BucketPayload 存储桶创建/删除事件负载.
type BucketPayload struct {
	Bucket string `json:"bucket"`
	// Backend 后端类型（minio/oss）.
	Backend string `json:"backend,omitempty"`
}

// -------------------------- 对象存储领域 --------------------------

// ObjectRef 标识对象存储中的一个对象.
type ObjectRef struct {
	Bucket      string `json:"bucket"`
	ObjectKey   string `json:"object_key"`
	ETag        string `json:"etag,omitempty"`
	Size        int64  `json:"size,omitempty"`
	Hash        string `json:"hash,omitempty"` // 内容 SHA-256，十六进制
	ContentType string `json:"content_type,omitempty"`
}

// ObjectStoredPayload 对象已写入对象存储.
type ObjectStoredPayload struct {
	Object ObjectRef `json:"object"`
	// Optional 业务上下文，如触发来源（上传接口/同步任务）、原始文件名等.
	Source   string `json:"source,omitempty"`
	FileName string `json:"file_name,omitempty"`
}

// ObjectDeletedPayload 对象被删除.
type ObjectDeletedPayload struct {
	Object ObjectRef `json:"object"`
}

// ObjectCopiedPayload 对象复制完成，携带源与目标坐标.
type ObjectCopiedPayload struct {
	Source ObjectRef `json:"source"`
	Target ObjectRef `json:"target"`
}

// ObjectAccessedPayload 对象被访问.
type ObjectAccessedPayload struct {
	Object ObjectRef `json:"object"`
	// Method 访问方式：download/presigned/public-url.
	Method string `json:"method,omitempty"`
}

// -------------------------- 文档索引领域 --------------------------

// DocumentIndexedPayload 文档写入搜索索引完成.
type DocumentIndexedPayload struct {
	Object ObjectRef `json:"object"`
	Index  string    `json:"index"`
	DocID  string    `json:"doc_id"`
	// DocumentType 文档格式（markdown/html/text/rst）.
	DocumentType string `json:"document_type,omitempty"`
	Title        string `json:"title,omitempty"`
	// Duplicate 内容哈希命中去重缓存.
	Duplicate bool `json:"duplicate,omitempty"`
}

// DocumentIndexFailedPayload 文档索引写入失败.
type DocumentIndexFailedPayload struct {
	Object ObjectRef `json:"object"`
	Index  string    `json:"index,omitempty"`
	Error  string    `json:"error"`
}

// DocumentRemovedPayload 索引条目被移除.
type DocumentRemovedPayload struct {
	Object ObjectRef `json:"object"`
	Index  string    `json:"index"`
	DocID  string    `json:"doc_id"`
}

// -------------------------- 用户行为领域 --------------------------

// BehaviorRecordedPayload 用户行为流水落库完成.
type BehaviorRecordedPayload struct {
	BehaviorID string `json:"behavior_id"`
	UserID     string `json:"user_id,omitempty"`
	Action     string `json:"action"`
	TargetType string `json:"target_type,omitempty"`
	TargetID   string `json:"target_id,omitempty"`
}
