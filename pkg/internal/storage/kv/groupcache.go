package kv

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang/groupcache"

	"github.com/yeisme/objectvault/pkg/configs"
)

// groupStore 单写多读场景的分布式读缓存。写入落在本地表，
// 读经由 groupcache 组走对等节点归并；TTL 在本地表上判定.
//
// groupcache 的组缓存是不可变语义，同键覆写后其他节点可能继续
// 命中旧值直至淘汰，适合内容哈希这类天然不可变的键.
type groupStore struct {
	group *groupcache.Group
	pool  *groupcache.HTTPPool

	mu    sync.RWMutex
	local map[string]memoryEntry
}

func newGroupStore(_ context.Context, cfg configs.KVConfig) (KVStore, error) {
	s := &groupStore{local: make(map[string]memoryEntry)}

	s.group = groupcache.NewGroup(cfg.Groupcache.Name, cfg.Groupcache.CacheBytes, groupcache.GetterFunc(
		func(_ context.Context, key string, dest groupcache.Sink) error {
			s.mu.RLock()
			entry, ok := s.local[key]
			s.mu.RUnlock()

			if !ok || entry.expired(time.Now()) {
				return fmt.Errorf("fill %s: %w", key, ErrNotFound)
			}

			return dest.SetBytes(entry.data)
		}))

	if len(cfg.Groupcache.Peers) > 0 {
		s.pool = groupcache.NewHTTPPoolOpts(cfg.Groupcache.Self, &groupcache.HTTPPoolOptions{})
		s.pool.Set(cfg.Groupcache.Peers...)
	}

	return s, nil
}

func (s *groupStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte

	if err := s.group.Get(ctx, key, groupcache.AllocatingByteSliceSink(&data)); err != nil {
		return nil, fmt.Errorf("get %s: %w", key, ErrNotFound)
	}

	out := make([]byte, len(data))
	copy(out, data)

	return out, nil
}

func (s *groupStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{data: make([]byte, len(value))}
	copy(entry.data, value)

	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl).UnixNano()
	}

	s.mu.Lock()
	s.local[key] = entry
	s.mu.Unlock()

	return nil
}

func (s *groupStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.local, key)
	s.mu.Unlock()

	return nil
}

func (s *groupStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	entry, ok := s.local[key]
	s.mu.RUnlock()

	return ok && !entry.expired(time.Now()), nil
}

func (s *groupStore) Keys(_ context.Context, pattern string) ([]string, error) {
	now := time.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.local))

	for key, entry := range s.local {
		if entry.expired(now) {
			continue
		}

		if matchPattern(key, pattern) {
			keys = append(keys, key)
		}
	}

	return keys, nil
}

func (s *groupStore) Close() error {
	return nil
}

func init() {
	RegisterKVFactory(KVTypeGroupcache, newGroupStore)
}
