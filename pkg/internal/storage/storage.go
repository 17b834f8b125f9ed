// Package storage 管理存储层客户端的初始化与聚合，包括关系库、KV、消息队列、
// 对象存储与 Elasticsearch，应用启动时初始化一次，借助 context 传递.
package storage

import (
	"context"
	"fmt"
	"sync"

	dbc "github.com/yeisme/objectvault/pkg/internal/storage/db"
	esc "github.com/yeisme/objectvault/pkg/internal/storage/es"
	kvc "github.com/yeisme/objectvault/pkg/internal/storage/kv"
	mqc "github.com/yeisme/objectvault/pkg/internal/storage/mq"
	"github.com/yeisme/objectvault/pkg/internal/storage/objstore"
	nlog "github.com/yeisme/objectvault/pkg/log"
)

// Manager 聚合全部存储客户端.
type Manager struct {
	DB       *dbc.Client
	KV       *kvc.Client
	MQ       *mqc.Client
	ObjStore objstore.ObjectStorage
	ES       *esc.Client
}

var (
	initOnce sync.Once
	manager  *Manager
	initErr  error
)

// Init 初始化全部存储客户端（单例）. 对象存储与数据库为硬依赖，
// ES/KV/MQ 初始化失败时记录错误并继续，对应能力降级.
func Init(ctx context.Context) (*Manager, error) {
	initOnce.Do(func() {
		mgr := &Manager{}

		store, err := objstore.New(ctx)
		if err != nil {
			initErr = fmt.Errorf("init object storage: %w", err)
			return
		}

		mgr.ObjStore = store

		db, err := dbc.New(ctx)
		if err != nil {
			initErr = fmt.Errorf("init database: %w", err)
			return
		}

		mgr.DB = db

		es, err := esc.New(ctx)
		if err != nil {
			nlog.Logger().Warn().Err(err).Msg("elasticsearch 初始化失败，索引与搜索功能降级")
		} else {
			mgr.ES = es
			if err := es.InitIndices(ctx); err != nil {
				nlog.Logger().Warn().Err(err).Msg("elasticsearch 索引初始化失败")
			}
		}

		kv, err := kvc.NewKVClient(ctx)
		if err != nil {
			nlog.Logger().Warn().Err(err).Msg("KV 存储初始化失败，缓存与去重功能降级")
		} else {
			mgr.KV = kv
		}

		mq, err := mqc.New(ctx)
		if err != nil {
			nlog.Logger().Warn().Err(err).Msg("MQ 初始化失败，事件发布功能降级")
		} else {
			mgr.MQ = mq
		}

		manager = mgr

		nlog.Logger().Info().
			Str("backend", store.Backend()).
			Bool("es", mgr.ES != nil).
			Bool("kv", mgr.KV != nil).
			Bool("mq", mgr.MQ != nil).
			Msg("存储管理器已初始化")
	})

	return manager, initErr
}

// GetManager 返回已初始化的 Manager，未初始化时为 nil.
func GetManager() *Manager {
	return manager
}

// GetDBClient 返回数据库客户端.
func (m *Manager) GetDBClient() *dbc.Client {
	return m.DB
}

// GetKVClient 返回 KV 客户端.
func (m *Manager) GetKVClient() *kvc.Client {
	return m.KV
}

// GetMQClient 返回 MQ 客户端.
func (m *Manager) GetMQClient() *mqc.Client {
	return m.MQ
}

// GetObjectStorage 返回对象存储客户端.
func (m *Manager) GetObjectStorage() objstore.ObjectStorage {
	return m.ObjStore
}

// GetESClient 返回 Elasticsearch 客户端.
func (m *Manager) GetESClient() *esc.Client {
	return m.ES
}

// HealthStatus 各存储组件健康状态.
type HealthStatus struct {
	Database      bool `json:"database"`
	KV            bool `json:"kv"`
	MQ            bool `json:"mq"`
	ObjectStorage bool `json:"object_storage"`
	Elasticsearch bool `json:"elasticsearch"`
}

// Health 逐一探测各组件连通性.
func (m *Manager) Health(ctx context.Context) HealthStatus {
	status := HealthStatus{}

	if m.DB != nil {
		if sqlDB, err := m.DB.DB.DB(); err == nil {
			status.Database = sqlDB.PingContext(ctx) == nil
		}
	}

	if m.KV != nil {
		_, err := m.KV.Exists(ctx, "health-probe")
		status.KV = err == nil
	}

	status.MQ = m.MQ != nil

	if m.ObjStore != nil {
		status.ObjectStorage = m.ObjStore.HealthCheck(ctx) == nil
	}

	if m.ES != nil {
		status.Elasticsearch = m.ES.HealthCheck(ctx) == nil
	}

	return status
}

// Close 依次关闭全部存储连接.
func (m *Manager) Close() error {
	var errs []error

	if m.MQ != nil {
		if err := m.MQ.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close mq: %w", err))
		}
	}

	if m.KV != nil {
		if err := m.KV.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close kv: %w", err))
		}
	}

	if m.ES != nil {
		if err := m.ES.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close es: %w", err))
		}
	}

	if m.ObjStore != nil {
		if err := m.ObjStore.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close object storage: %w", err))
		}
	}

	if m.DB != nil {
		if sqlDB, err := m.DB.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close database: %w", err))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close storage: %v", errs)
	}

	return nil
}
