// Package context 拓展上下文功能，将日志、服务等集成到上下文中，方便在应用程序各处传递和使用.
package context

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/objectvault/pkg/internal/storage"
	dbc "github.com/yeisme/objectvault/pkg/internal/storage/db"
	esc "github.com/yeisme/objectvault/pkg/internal/storage/es"
	kvc "github.com/yeisme/objectvault/pkg/internal/storage/kv"
	mqc "github.com/yeisme/objectvault/pkg/internal/storage/mq"
	"github.com/yeisme/objectvault/pkg/internal/storage/objstore"
)

// managerKey 非导出类型，避免与其他包的 context 键冲突.
type managerKey struct{}

// WithStorageManager 将 Manager 存储到 context 中.
func WithStorageManager(ctx context.Context, mgr *storage.Manager) context.Context {
	return context.WithValue(ctx, managerKey{}, mgr)
}

// GetManager 从 context 中获取 Manager，未注入时返回 nil.
func GetManager(ctx context.Context) *storage.Manager {
	mgr, _ := ctx.Value(managerKey{}).(*storage.Manager)
	return mgr
}

// GetObjectStorage 从 context 中获取对象存储客户端.
func GetObjectStorage(ctx context.Context) objstore.ObjectStorage {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetObjectStorage()
	}

	return nil
}

// GetDBClient 从 context 中获取 DB 客户端.
func GetDBClient(ctx context.Context) *dbc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetDBClient()
	}

	return nil
}

// GetMQClient 从 context 中获取 MQ 客户端.
func GetMQClient(ctx context.Context) *mqc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetMQClient()
	}

	return nil
}

// GetKVClient 从 context 中获取 KV 客户端.
func GetKVClient(ctx context.Context) *kvc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetKVClient()
	}

	return nil
}

// GetESClient 从 context 中获取 Elasticsearch 客户端.
func GetESClient(ctx context.Context) *esc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetESClient()
	}

	return nil
}

// WithTraceContext 创建带有追踪上下文的logger.
func WithTraceContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		return logger.With().
			Str("trace_id", span.SpanContext().TraceID().String()).
			Str("span_id", span.SpanContext().SpanID().String()).
			Logger()
	}

	return logger
}
