// Package kv 提供键值存储的统一接口与多后端实现.
//
// 后端通过 init 注册工厂，运行时按配置选择；业务侧只依赖 KVStore 接口。
// 去重缓存、响应缓存等场景只需要 Get/Set/Delete/Exists/Keys 五个原语。
package kv

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yeisme/objectvault/pkg/configs"
)

// ErrNotFound 键不存在。各后端统一包装该哨兵，调用方用 errors.Is 判断.
var ErrNotFound = errors.New("kv: key not found")

// Client 包装具体后端，便于在 storage.Manager 上暴露统一字段类型.
type Client struct {
	KVStore
}

// KVStore 键值存储接口.
//
// Keys 的 pattern 约定：空串或 "*" 匹配全部；以 "*" 结尾做前缀匹配；
// 其余为精确匹配。redis 后端额外支持其原生 glob 语法.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Set ttl<=0 表示永不过期.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Keys(ctx context.Context, pattern string) ([]string, error)
	Close() error
}

// KVType 后端类型标识.
type KVType string

const (
	KVTypeMemory     KVType = "memory"
	KVTypeRedis      KVType = "redis"
	KVTypeNATS       KVType = "nats"
	KVTypeGroupcache KVType = "groupcache"
)

// KVFactory 后端构造函数。驱动自行从 cfg 中取各自的子配置段.
type KVFactory func(ctx context.Context, cfg configs.KVConfig) (KVStore, error)

var kvFactories = map[KVType]KVFactory{}

// RegisterKVFactory 注册后端工厂，仅应在驱动文件的 init 中调用.
func RegisterKVFactory(t KVType, factory KVFactory) {
	kvFactories[t] = factory
}

// GetRegisteredKVTypes 返回按名称排序的已注册后端列表.
func GetRegisteredKVTypes() []KVType {
	types := make([]KVType, 0, len(kvFactories))
	for t := range kvFactories {
		types = append(types, t)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

// NewKVStore 按类型构造后端实例.
func NewKVStore(ctx context.Context, t KVType, cfg configs.KVConfig) (KVStore, error) {
	factory, ok := kvFactories[t]
	if !ok {
		return nil, fmt.Errorf("unsupported kv type: %s", t)
	}

	return factory(ctx, cfg)
}

// NewKVClient 按全局配置构造 KV 客户端.
func NewKVClient(ctx context.Context) (*Client, error) {
	cfg := configs.GetConfig().KV

	store, err := NewKVStore(ctx, KVType(cfg.Type), cfg)
	if err != nil {
		return nil, err
	}

	return &Client{KVStore: store}, nil
}

// matchPattern 实现接口约定的简化匹配，供非 redis 后端共用.
func matchPattern(key, pattern string) bool {
	switch {
	case pattern == "" || pattern == "*":
		return true
	case strings.HasSuffix(pattern, "*"):
		return strings.HasPrefix(key, pattern[:len(pattern)-1])
	default:
		return key == pattern
	}
}
