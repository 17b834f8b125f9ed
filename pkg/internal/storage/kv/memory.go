package kv

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yeisme/objectvault/pkg/configs"
)

// janitorInterval 内存后端后台清扫过期键的周期.
const janitorInterval = time.Minute

// memoryEntry 带过期时间的值，expiresAt 为 0 表示永不过期.
type memoryEntry struct {
	data      []byte
	expiresAt int64 // unix 纳秒
}

func (e memoryEntry) expired(now time.Time) bool {
	return e.expiresAt > 0 && now.UnixNano() >= e.expiresAt
}

// memoryStore 进程内 KV，开发与单测默认后端。
// 读路径惰性剔除过期键，后台 janitor 周期性兜底清扫.
type memoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	stop    chan struct{}
	once    sync.Once
}

func newMemoryStore(_ context.Context, _ configs.KVConfig) (KVStore, error) {
	s := &memoryStore{
		entries: make(map[string]memoryEntry),
		stop:    make(chan struct{}),
	}

	go s.janitor()

	return s, nil
}

func (s *memoryStore) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for key, entry := range s.entries {
				if entry.expired(now) {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		}
	}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || entry.expired(time.Now()) {
		return nil, fmt.Errorf("get %s: %w", key, ErrNotFound)
	}

	out := make([]byte, len(entry.data))
	copy(out, entry.data)

	return out, nil
}

func (s *memoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{data: make([]byte, len(value))}
	copy(entry.data, value)

	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl).UnixNano()
	}

	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()

	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()

	return nil
}

func (s *memoryStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	return ok && !entry.expired(time.Now()), nil
}

func (s *memoryStore) Keys(_ context.Context, pattern string) ([]string, error) {
	now := time.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.entries))

	for key, entry := range s.entries {
		if entry.expired(now) {
			continue
		}

		if matchPattern(key, pattern) {
			keys = append(keys, key)
		}
	}

	return keys, nil
}

func (s *memoryStore) Close() error {
	s.once.Do(func() { close(s.stop) })
	return nil
}

func init() {
	RegisterKVFactory(KVTypeMemory, newMemoryStore)
}
