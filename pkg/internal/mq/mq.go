// Package mq 订阅存储领域事件，转写为用户行为审计流水。
//
// 审计转写是异步尽力而为路径：消费失败只记日志并确认消息，
// API 侧的行为上报不经过也不依赖该路径。桶与对象事件映射到
// 行为枚举的存储组与文档组；文档索引流水线的事件由触发它们的
// 对象事件覆盖，不重复转写。
package mq

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	ctxPkg "github.com/yeisme/objectvault/pkg/context"
	"github.com/yeisme/objectvault/pkg/internal/model"
	"github.com/yeisme/objectvault/pkg/internal/service"
	"github.com/yeisme/objectvault/pkg/internal/storage"
	"github.com/yeisme/objectvault/pkg/internal/types"
	"github.com/yeisme/objectvault/pkg/log"
	"github.com/yeisme/objectvault/pkg/queue"
)

// auditTopics 需要转写为审计流水的主题集合.
var auditTopics = []string{
	queue.TopicBucketCreated,
	queue.TopicBucketDeleted,
	queue.TopicObjectStored,
	queue.TopicObjectDeleted,
	queue.TopicObjectCopied,
	queue.TopicObjectAccessed,
}

// StartConsumers 为每个审计主题启动一个消费 goroutine，随 ctx 取消退出。
// MQ 未配置时为空操作。
func StartConsumers(ctx context.Context, mgr *storage.Manager) error {
	if mgr == nil {
		return fmt.Errorf("storage manager is nil")
	}

	client := mgr.GetMQClient()
	if client == nil {
		return nil
	}

	baseCtx := ctxPkg.WithStorageManager(ctx, mgr)

	for _, topic := range auditTopics {
		ch, err := client.Subscribe(baseCtx, topic)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}

		go consumeLoop(baseCtx, topic, ch)
	}

	return nil
}

// consumeLoop 顺序消费单个主题。审计允许至多一次语义，
// 处理失败也确认消息，避免毒消息反复重投。
func consumeLoop(ctx context.Context, topic string, ch <-chan *message.Message) {
	l := log.Logger().With().Str("consumer", topic).Logger()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			if err := recordAudit(ctx, topic, msg); err != nil {
				l.Warn().Err(err).Str("message_id", msg.UUID).Msg("audit record failed")
			}

			msg.Ack()
		}
	}
}

// recordAudit 解析消息并落一条行为流水.
func recordAudit(ctx context.Context, topic string, msg *message.Message) error {
	req, err := buildAuditRequest(topic, msg)
	if err != nil {
		return fmt.Errorf("parse %s: %w", topic, err)
	}

	if req == nil {
		return nil
	}

	svc := service.NewBehaviorService(ctx)

	_, err = svc.RecordBehavior(ctx, req, types.ClientInfo{})

	return err
}

// buildAuditRequest 将一条存储事件映射为行为上报请求，未知主题返回 nil.
func buildAuditRequest(topic string, msg *message.Message) (*types.RecordBehaviorRequest, error) {
	switch topic {
	case queue.TopicBucketCreated:
		env, err := queue.ParseBucketCreated(msg)
		if err != nil {
			return nil, err
		}

		return bucketAudit(model.BehaviorBucketCreate, env, msg), nil

	case queue.TopicBucketDeleted:
		env, err := queue.ParseBucketDeleted(msg)
		if err != nil {
			return nil, err
		}

		return bucketAudit(model.BehaviorBucketDelete, env, msg), nil

	case queue.TopicObjectStored:
		env, err := queue.ParseObjectStored(msg)
		if err != nil {
			return nil, err
		}

		req := objectAudit(model.BehaviorDocumentUpload, env.Header, env.Payload.Object, msg)
		if env.Payload.FileName != "" {
			req.ActionDetails = map[string]any{"file_name": env.Payload.FileName}
		}

		return req, nil

	case queue.TopicObjectDeleted:
		env, err := queue.ParseObjectDeleted(msg)
		if err != nil {
			return nil, err
		}

		return objectAudit(model.BehaviorDocumentDelete, env.Header, env.Payload.Object, msg), nil

	case queue.TopicObjectCopied:
		env, err := queue.ParseObjectCopied(msg)
		if err != nil {
			return nil, err
		}

		req := objectAudit(model.BehaviorDocumentUpload, env.Header, env.Payload.Target, msg)
		req.ActionDetails = map[string]any{
			"operation": "copy",
			"source":    env.Payload.Source.Bucket + "/" + env.Payload.Source.ObjectKey,
		}

		return req, nil

	case queue.TopicObjectAccessed:
		env, err := queue.ParseObjectAccessed(msg)
		if err != nil {
			return nil, err
		}

		behavior := model.BehaviorDocumentView
		if env.Payload.Method == "download" {
			behavior = model.BehaviorDocumentDownload
		}

		req := objectAudit(behavior, env.Header, env.Payload.Object, msg)
		if env.Payload.Method != "" {
			req.ActionDetails = map[string]any{"method": env.Payload.Method}
		}

		return req, nil
	}

	return nil, nil
}

func bucketAudit(bt model.BehaviorType, env queue.Message[queue.BucketPayload], msg *message.Message) *types.RecordBehaviorRequest {
	metadata := auditMetadata(env.Header)
	if env.Payload.Backend != "" {
		metadata["backend"] = env.Payload.Backend
	}

	return &types.RecordBehaviorRequest{
		BehaviorType: string(bt),
		SessionID:    auditSessionID(env.Header, msg),
		TargetType:   "bucket",
		TargetID:     env.Payload.Bucket,
		Metadata:     metadata,
	}
}

func objectAudit(bt model.BehaviorType, hdr queue.EventHeader, obj queue.ObjectRef, msg *message.Message) *types.RecordBehaviorRequest {
	metadata := auditMetadata(hdr)
	if obj.ETag != "" {
		metadata["etag"] = obj.ETag
	}

	if obj.Size > 0 {
		metadata["size"] = obj.Size
	}

	if obj.ContentType != "" {
		metadata["content_type"] = obj.ContentType
	}

	return &types.RecordBehaviorRequest{
		BehaviorType: string(bt),
		SessionID:    auditSessionID(hdr, msg),
		TargetType:   "document",
		TargetID:     obj.Bucket + "/" + obj.ObjectKey,
		Metadata:     metadata,
	}
}

// auditSessionID 优先用事件的 TraceID 归组，缺省回退到消息 ID.
func auditSessionID(hdr queue.EventHeader, msg *message.Message) string {
	if hdr.TraceID != "" {
		return hdr.TraceID
	}

	return msg.UUID
}

func auditMetadata(hdr queue.EventHeader) map[string]any {
	metadata := map[string]any{
		"source": "event",
		"topic":  hdr.Topic,
	}
	if hdr.Producer != "" {
		metadata["producer"] = hdr.Producer
	}

	if !hdr.OccurredAt.IsZero() {
		metadata["occurred_at"] = hdr.OccurredAt
	}

	return metadata
}
