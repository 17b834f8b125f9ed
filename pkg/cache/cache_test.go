package cache_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yeisme/objectvault/pkg/cache"
)

// likeStat 测试用的点赞计数结构体，模拟交互服务缓存的数据形态.
type likeStat struct {
	NewsletterID string `json:"newsletterId"`
	LikeCount    int    `json:"likeCount"`
	IsLiked      bool   `json:"isLiked"`
}

// mockKVStore 模拟KV存储实现.
type mockKVStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMockKVStore() *mockKVStore {
	return &mockKVStore{
		data: make(map[string][]byte),
	}
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if value, exists := m.data[key]; exists {
		return value, nil
	}

	return nil, fmt.Errorf("key not found")
}

func (m *mockKVStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()

	return nil
}

func (m *mockKVStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()

	return nil
}

func (m *mockKVStore) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, exists := m.data[key]

	return exists, nil
}

func (m *mockKVStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.data))
	for key := range m.data {
		keys = append(keys, key)
	}

	return keys, nil
}

func (m *mockKVStore) Close() error {
	return nil
}

func (m *mockKVStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.data)
}

// TestCacheRoundTrip 测试泛型 Set/Get 的序列化往返.
func TestCacheRoundTrip(t *testing.T) {
	c := cache.NewCache(newMockKVStore())
	ctx := context.Background()

	if _, err := cache.Get[likeStat](ctx, c, "likes:missing"); err == nil {
		t.Error("expected error for missing key")
	}

	stat := likeStat{NewsletterID: "articles/guide.md", LikeCount: 3, IsLiked: true}
	if err := cache.Set(ctx, c, "likes:articles/guide.md", stat, 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := cache.Get[likeStat](ctx, c, "likes:articles/guide.md")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != stat {
		t.Errorf("got %+v, want %+v", got, stat)
	}
}

// TestCacheDeleteExists 测试删除与存在性检查.
func TestCacheDeleteExists(t *testing.T) {
	c := cache.NewCache(newMockKVStore())
	ctx := context.Background()

	if err := cache.Set(ctx, c, "likes:doc-1", likeStat{LikeCount: 1}, 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	exists, err := c.Exists(ctx, "likes:doc-1")
	if err != nil || !exists {
		t.Fatalf("Exists = %v, %v", exists, err)
	}

	if err := c.Delete(ctx, "likes:doc-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	exists, err = c.Exists(ctx, "likes:doc-1")
	if err != nil || exists {
		t.Errorf("Exists after delete = %v, %v", exists, err)
	}
}

// TestGetOrSet 测试未命中回源、命中走缓存.
func TestGetOrSet(t *testing.T) {
	c := cache.NewCache(newMockKVStore())
	ctx := context.Background()

	callCount := 0
	getter := func() (likeStat, error) {
		callCount++
		return likeStat{NewsletterID: "doc-5", LikeCount: 7}, nil
	}

	first, err := cache.GetOrSet(ctx, c, "likes:doc-5", getter, 0)
	if err != nil {
		t.Fatalf("get or set: %v", err)
	}
	if callCount != 1 {
		t.Errorf("getter called %d times, want 1", callCount)
	}

	second, err := cache.GetOrSet(ctx, c, "likes:doc-5", getter, 0)
	if err != nil {
		t.Fatalf("get or set: %v", err)
	}
	if callCount != 1 {
		t.Errorf("getter called %d times after hit, want 1", callCount)
	}
	if first != second {
		t.Errorf("results differ: %+v vs %+v", first, second)
	}
}

// TestGetOrSetGetterError 测试回源失败时错误原样返回.
func TestGetOrSetGetterError(t *testing.T) {
	c := cache.NewCache(newMockKVStore())
	ctx := context.Background()

	wantErr := errors.New("db unreachable")
	_, err := cache.GetOrSet(ctx, c, "likes:err", func() (likeStat, error) {
		return likeStat{}, wantErr
	}, 0)
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want getter error", err)
	}
}

// TestGetOrSetSingleflight 测试同键并发未命中只回源一次.
func TestGetOrSetSingleflight(t *testing.T) {
	c := cache.NewCache(newMockKVStore())
	ctx := context.Background()

	var calls atomic.Int32
	getter := func() (likeStat, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return likeStat{NewsletterID: "hot-doc", LikeCount: 99}, nil
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := cache.GetOrSet(ctx, c, "likes:hot-doc", getter, 0)
			if err != nil {
				t.Errorf("get or set: %v", err)
				return
			}
			if got.LikeCount != 99 {
				t.Errorf("got %+v", got)
			}
		}()
	}
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("getter called %d times under concurrency, want 1", n)
	}
}

// TestCacheClear 测试清空.
func TestCacheClear(t *testing.T) {
	store := newMockKVStore()
	c := cache.NewCache(store)
	ctx := context.Background()

	for i := range 3 {
		key := fmt.Sprintf("likes:doc-%d", i)
		if err := cache.Set(ctx, c, key, likeStat{LikeCount: i}, 0); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if store.len() != 0 {
		t.Errorf("store has %d entries after clear, want 0", store.len())
	}
}

// TestCacheGenericTypes 测试对基础类型与切片的支持.
func TestCacheGenericTypes(t *testing.T) {
	c := cache.NewCache(newMockKVStore())
	ctx := context.Background()

	if err := cache.Set(ctx, c, "str", "hello", 0); err != nil {
		t.Fatalf("set string: %v", err)
	}
	if got, err := cache.Get[string](ctx, c, "str"); err != nil || got != "hello" {
		t.Errorf("string round trip = %q, %v", got, err)
	}

	if err := cache.Set(ctx, c, "count", 42, 0); err != nil {
		t.Fatalf("set int: %v", err)
	}
	if got, err := cache.Get[int](ctx, c, "count"); err != nil || got != 42 {
		t.Errorf("int round trip = %d, %v", got, err)
	}

	tags := []string{"docker", "redis"}
	if err := cache.Set(ctx, c, "tags", tags, 0); err != nil {
		t.Fatalf("set slice: %v", err)
	}
	got, err := cache.Get[[]string](ctx, c, "tags")
	if err != nil || len(got) != 2 || got[0] != "docker" {
		t.Errorf("slice round trip = %v, %v", got, err)
	}
}
