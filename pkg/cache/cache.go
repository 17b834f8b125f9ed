// Package cache 在 KV 存储之上提供类型安全的泛型缓存.
//
// 值经 sonic 序列化为 JSON 存入底层 KV（Redis/NATS KV/Groupcache/内存），
// 支持 TTL；GetOrSet 通过 singleflight 合并并发回源，防止缓存击穿.
//
// 用法:
//
//	c := cache.NewCache(kvStore)
//	err := cache.Set(ctx, c, "likes:news-1", stat, time.Minute)
//	stat, err := cache.Get[LikeStat](ctx, c, "likes:news-1")
//	stat, err := cache.GetOrSet(ctx, c, "likes:news-1", loadFromDB, time.Minute)
//
// 线程安全取决于底层 KV 实现；缓存未命中返回底层存储的 kv.ErrNotFound.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"golang.org/x/sync/singleflight"

	"github.com/yeisme/objectvault/pkg/internal/storage/kv"
)

// Cache 基于KV存储的缓存实现.
type Cache struct {
	kvStore kv.KVStore
}

// NewCache 创建一个新的缓存实例.
func NewCache(kvStore kv.KVStore) *Cache {
	return &Cache{kvStore: kvStore}
}

// Get 读取并反序列化缓存值.
func Get[T any](ctx context.Context, c *Cache, key string) (T, error) {
	var value T

	data, err := c.kvStore.Get(ctx, key)
	if err != nil {
		return value, err
	}

	if err := sonic.Unmarshal(data, &value); err != nil {
		var zero T
		return zero, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return value, nil
}

// Set 序列化并写入缓存值.
func Set[T any](ctx context.Context, c *Cache, key string, value T, ttl time.Duration) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	return c.kvStore.Set(ctx, key, data, ttl)
}

// Delete 删除缓存键.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.kvStore.Delete(ctx, key)
}

// Exists 检查缓存键是否存在.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	return c.kvStore.Exists(ctx, key)
}

// flightGroup 合并并发的同键回源.
var flightGroup singleflight.Group

// GetOrSet 读取缓存，未命中时执行 getter 并回填.
// 同一键的并发未命中只执行一次 getter，其余调用共享结果；回填失败不影响返回值.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, getter func() (T, error), ttl time.Duration) (T, error) {
	var zero T

	if value, err := Get[T](ctx, c, key); err == nil {
		return value, nil
	}

	result, err, _ := flightGroup.Do(key, func() (any, error) {
		value, err := getter()
		if err != nil {
			return zero, err
		}

		_ = Set(ctx, c, key, value, ttl)

		return value, nil
	})
	if err != nil {
		return zero, err
	}

	value, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected cache value type for key %s", key)
	}

	return value, nil
}

// Clear 枚举并删除所有键. 不支持 Keys 的存储会返回错误.
func (c *Cache) Clear(ctx context.Context) error {
	keys, err := c.kvStore.Keys(ctx, "*")
	if err != nil {
		return err
	}

	for _, key := range keys {
		if delErr := c.kvStore.Delete(ctx, key); delErr != nil {
			return delErr
		}
	}

	return nil
}
