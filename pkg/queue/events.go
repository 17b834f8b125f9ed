package queue

import "github.com/ThreeDotsLabs/watermill/message"

// -------------------------- 基于业务封装 events --------------------------

// PublishBucketCreated 发布 ov.bucket.created 事件。
func PublishBucketCreated(pub message.Publisher, payload BucketPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicBucketCreated, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicBucketCreated, msg)
}

// PublishBucketDeleted 发布 ov.bucket.deleted 事件。
func PublishBucketDeleted(pub message.Publisher, payload BucketPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicBucketDeleted, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicBucketDeleted, msg)
}

// PublishObjectStored 发布 ov.object.stored 事件。
// 对象写入对象存储成功后调用，通知下游流程（索引、审计等）。
// 可通过可选项 opts 注入 TraceID、Producer 等头部信息。
func PublishObjectStored(pub message.Publisher, payload ObjectStoredPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicObjectStored, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicObjectStored, msg)
}

// PublishObjectDeleted 发布 ov.object.deleted 事件。
func PublishObjectDeleted(pub message.Publisher, payload ObjectDeletedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicObjectDeleted, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicObjectDeleted, msg)
}

// PublishObjectCopied 发布 ov.object.copied 事件。
func PublishObjectCopied(pub message.Publisher, payload ObjectCopiedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicObjectCopied, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicObjectCopied, msg)
}

// PublishObjectAccessed 发布 ov.object.accessed 事件。
func PublishObjectAccessed(pub message.Publisher, payload ObjectAccessedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicObjectAccessed, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicObjectAccessed, msg)
}

// PublishDocumentIndexed 发布 ov.document.indexed 事件。
func PublishDocumentIndexed(pub message.Publisher, payload DocumentIndexedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicDocumentIndexed, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicDocumentIndexed, msg)
}

// PublishDocumentIndexFailed 发布 ov.document.index.failed 事件。
func PublishDocumentIndexFailed(pub message.Publisher, payload DocumentIndexFailedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicDocumentIndexFailed, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicDocumentIndexFailed, msg)
}

// PublishDocumentRemoved 发布 ov.document.removed 事件。
func PublishDocumentRemoved(pub message.Publisher, payload DocumentRemovedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicDocumentRemoved, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicDocumentRemoved, msg)
}

// PublishBehaviorRecorded 发布 ov.behavior.recorded 事件。
func PublishBehaviorRecorded(pub message.Publisher, payload BehaviorRecordedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicBehaviorRecorded, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicBehaviorRecorded, msg)
}

// ParseBucketCreated 将 Watermill 消息解析为强类型 Envelope（BucketPayload）。
func ParseBucketCreated(msg *message.Message) (Message[BucketPayload], error) {
	return ParseWatermillMessage[BucketPayload](msg)
}

// ParseBucketDeleted 将 Watermill 消息解析为强类型 Envelope（BucketPayload）。
func ParseBucketDeleted(msg *message.Message) (Message[BucketPayload], error) {
	return ParseWatermillMessage[BucketPayload](msg)
}

// ParseObjectStored 将 Watermill 消息解析为强类型 Envelope（ObjectStoredPayload）。
func ParseObjectStored(msg *message.Message) (Message[ObjectStoredPayload], error) {
	return ParseWatermillMessage[ObjectStoredPayload](msg)
}

// ParseObjectDeleted 将 Watermill 消息解析为强类型 Envelope（ObjectDeletedPayload）。
func ParseObjectDeleted(msg *message.Message) (Message[ObjectDeletedPayload], error) {
	return ParseWatermillMessage[ObjectDeletedPayload](msg)
}

// ParseObjectCopied 将 Watermill 消息解析为强类型 Envelope（ObjectCopiedPayload）。
func ParseObjectCopied(msg *message.Message) (Message[ObjectCopiedPayload], error) {
	return ParseWatermillMessage[ObjectCopiedPayload](msg)
}

// ParseObjectAccessed 将 Watermill 消息解析为强类型 Envelope（ObjectAccessedPayload）。
func ParseObjectAccessed(msg *message.Message) (Message[ObjectAccessedPayload], error) {
	return ParseWatermillMessage[ObjectAccessedPayload](msg)
}

// ParseDocumentIndexed 将 Watermill 消息解析为强类型 Envelope（DocumentIndexedPayload）。
func ParseDocumentIndexed(msg *message.Message) (Message[DocumentIndexedPayload], error) {
	return ParseWatermillMessage[DocumentIndexedPayload](msg)
}

// ParseDocumentIndexFailed 将 Watermill 消息解析为强类型 Envelope（DocumentIndexFailedPayload）。
func ParseDocumentIndexFailed(msg *message.Message) (Message[DocumentIndexFailedPayload], error) {
	return ParseWatermillMessage[DocumentIndexFailedPayload](msg)
}

// ParseDocumentRemoved 将 Watermill 消息解析为强类型 Envelope（DocumentRemovedPayload）。
func ParseDocumentRemoved(msg *message.Message) (Message[DocumentRemovedPayload], error) {
	return ParseWatermillMessage[DocumentRemovedPayload](msg)
}

// ParseBehaviorRecorded 将 Watermill 消息解析为强类型 Envelope（BehaviorRecordedPayload）。
func ParseBehaviorRecorded(msg *message.Message) (Message[BehaviorRecordedPayload], error) {
	return ParseWatermillMessage[BehaviorRecordedPayload](msg)
}
