package middleware

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"

	appcache "github.com/yeisme/objectvault/pkg/cache"
)

const (
	DefaultMaxBodyBytes = 1 << 20 // 1MB
	defaultCacheTTL     = 30 * time.Second
	defaultBypassHeader = "X-Cache-Bypass"

	cacheKeyGrow = 64 // key builder 预分配容量
)

// CacheConfig 响应缓存中间件配置.
type CacheConfig struct {
	Cache   *appcache.Cache                       // 必须: 业务注入的 Cache 实例
	TTL     time.Duration                         // 默认 TTL
	TTLFunc func(*gin.Context, int) time.Duration // 可选: 按请求/状态动态 TTL

	Methods     []string // 允许缓存的 HTTP 方法 (默认 GET,HEAD)
	StatusCodes []int    // 允许缓存的响应状态码 (默认 200)

	KeyFunc     func(*gin.Context) string // 生成缓存键
	Skipper     func(*gin.Context) bool   // 返回 true 跳过缓存
	VaryHeaders []string                  // 参与 Key 的 Header 列表

	RespectCacheControl bool   // 响应含 no-store/private 时不缓存, max-age 覆写 TTL
	BypassHeader        string // 请求携带该 header(任意值) 则跳过缓存

	MaxBodyBytes int // 可缓存响应体最大字节 (0=不限制)
}

// DefaultCacheConfig 返回一份默认配置.
func DefaultCacheConfig(c *appcache.Cache) CacheConfig {
	return CacheConfig{
		Cache:               c,
		TTL:                 defaultCacheTTL,
		Methods:             []string{http.MethodGet, http.MethodHead},
		StatusCodes:         []int{http.StatusOK},
		BypassHeader:        defaultBypassHeader,
		MaxBodyBytes:        DefaultMaxBodyBytes,
		RespectCacheControl: true,
	}
}

// CacheMiddleware 把命中条件内的响应写入 KV 缓存，并在命中时直接回放:
//   - 支持 ETag / If-None-Match 协商与 304
//   - 响应带 X-Cache: HIT/MISS 与 Age 头
//   - 缓存读写失败只降级为未命中，不影响主流程
//
// 使用示例:
//
//	c := cache.NewCache(kvStore)
//	router.Use(middleware.CacheMiddleware(middleware.DefaultCacheConfig(c)))
func CacheMiddleware(cfg CacheConfig) gin.HandlerFunc {
	if cfg.Cache == nil {
		panic("CacheMiddleware: Cache cannot be nil")
	}

	cfg = normalizeCacheConfig(cfg)
	methods := stringSet(cfg.Methods)
	statuses := intSet(cfg.StatusCodes)

	return func(c *gin.Context) {
		if bypassCache(c, cfg, methods) {
			c.Next()
			return
		}

		key := cfg.KeyFunc(c)
		if replayCached(c, cfg, key) {
			return
		}

		// MISS 头必须在 body 写出前设置
		c.Writer.Header().Set("X-Cache", "MISS")

		bw := &bodyCaptureWriter{ResponseWriter: c.Writer, max: cfg.MaxBodyBytes}
		c.Writer = bw
		c.Next()
		storeResponse(c, cfg, key, bw, statuses)
	}
}

func normalizeCacheConfig(cfg CacheConfig) CacheConfig {
	if len(cfg.Methods) == 0 {
		cfg.Methods = []string{http.MethodGet, http.MethodHead}
	}

	if len(cfg.StatusCodes) == 0 {
		cfg.StatusCodes = []int{http.StatusOK}
	}

	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *gin.Context) string { return buildCacheKey(c, cfg.VaryHeaders) }
	}

	if cfg.BypassHeader == "" {
		cfg.BypassHeader = defaultBypassHeader
	}

	return cfg
}

// cachedResponse 序列化存储结构.
type cachedResponse struct {
	Status   int               `json:"s"`
	Header   map[string]string `json:"h,omitempty"`
	Body     []byte            `json:"b,omitempty"`
	ETag     string            `json:"e,omitempty"`
	StoredAt int64             `json:"t"` // unix nano, 用于 Age
}

// buildCacheKey 以 方法+路由+排序query+排序vary头 做 xxhash.
// query 与 header 均排序, 保证同一请求生成稳定键.
func buildCacheKey(c *gin.Context, vary []string) string {
	var b strings.Builder
	b.Grow(cacheKeyGrow)

	b.WriteString(c.Request.Method)
	b.WriteByte(':')

	path := c.FullPath()
	if path == "" { // 未匹配路由时退回原始路径
		path = c.Request.URL.Path
	}

	b.WriteString(path)

	if q := c.Request.URL.Query(); len(q) > 0 {
		keys := make([]string, 0, len(q))
		for k := range q {
			keys = append(keys, k)
		}

		sort.Strings(keys)
		b.WriteByte('?')

		for i, k := range keys {
			if i > 0 {
				b.WriteByte('&')
			}

			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(strings.Join(q[k], ","))
		}
	}

	if len(vary) > 0 {
		sorted := make([]string, len(vary))
		copy(sorted, vary)
		sort.Strings(sorted)
		b.WriteString("|hv=")

		for i, h := range sorted {
			if i > 0 {
				b.WriteByte('&')
			}

			b.WriteString(h)
			b.WriteByte('=')
			b.WriteString(c.GetHeader(h))
		}
	}

	return fmt.Sprintf("rc:%x", xxhash.Sum64String(b.String()))
}

// bodyCaptureWriter 在转发响应的同时捕获 body, 超出 max 后标记截断.
type bodyCaptureWriter struct {
	gin.ResponseWriter

	buf       bytes.Buffer
	max       int
	truncated bool
}

func (w *bodyCaptureWriter) Write(b []byte) (int, error) {
	switch {
	case w.max == 0:
		w.buf.Write(b)
	case w.truncated:
		// 已截断, 不再缓冲
	case len(b) > w.max-w.buf.Len():
		w.buf.Write(b[:w.max-w.buf.Len()])
		w.truncated = true
	default:
		w.buf.Write(b)
	}

	return w.ResponseWriter.Write(b)
}

func stringSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		set[strings.ToUpper(s)] = struct{}{}
	}

	return set
}

func intSet(items []int) map[int]struct{} {
	set := make(map[int]struct{}, len(items))
	for _, i := range items {
		set[i] = struct{}{}
	}

	return set
}

func bypassCache(c *gin.Context, cfg CacheConfig, methods map[string]struct{}) bool {
	if cfg.Skipper != nil && cfg.Skipper(c) {
		return true
	}

	if _, ok := methods[c.Request.Method]; !ok {
		return true
	}

	return c.GetHeader(cfg.BypassHeader) != ""
}

// replayCached 尝试回放缓存的响应; 命中返回 true.
func replayCached(c *gin.Context, cfg CacheConfig, key string) bool {
	entry, err := appcache.Get[cachedResponse](c.Request.Context(), cfg.Cache, key)
	if err != nil {
		return false
	}

	h := c.Writer.Header()
	for k, v := range entry.Header {
		h.Set(k, v)
	}

	if entry.ETag != "" {
		h.Set("ETag", entry.ETag)
	}

	h.Set("Age", strconv.FormatInt(int64(time.Since(time.Unix(0, entry.StoredAt)).Seconds()), 10))
	h.Set("X-Cache", "HIT")

	if entry.ETag != "" && c.GetHeader("If-None-Match") == entry.ETag {
		c.Status(http.StatusNotModified)
		c.Abort()

		return true
	}

	c.Status(entry.Status)

	if c.Request.Method != http.MethodHead {
		_, _ = c.Writer.Write(entry.Body)
	}

	c.Abort()

	return true
}

// parseCacheControlTTL 解析响应的 Cache-Control; 返回 (覆写TTL, 是否允许缓存).
func parseCacheControlTTL(h http.Header) (time.Duration, bool) {
	cc := strings.ToLower(h.Get("Cache-Control"))
	if cc == "" {
		return 0, true
	}

	if strings.Contains(cc, "no-store") || strings.Contains(cc, "private") {
		return 0, false
	}

	if idx := strings.Index(cc, "max-age="); idx >= 0 {
		part := cc[idx+len("max-age="):]
		if cidx := strings.Index(part, ","); cidx >= 0 {
			part = part[:cidx]
		}

		if secs, err := strconv.Atoi(strings.TrimSpace(part)); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second, true
		}
	}

	return 0, true
}

func storeResponse(c *gin.Context, cfg CacheConfig, key string, bw *bodyCaptureWriter, statuses map[int]struct{}) {
	status := c.Writer.Status()
	if _, ok := statuses[status]; !ok {
		return
	}

	if bw.truncated {
		return
	}

	ttl := cfg.TTL

	if cfg.RespectCacheControl {
		override, cacheable := parseCacheControlTTL(c.Writer.Header())
		if !cacheable {
			return
		}

		if override > 0 && cfg.TTLFunc == nil {
			ttl = override
		}
	}

	if cfg.TTLFunc != nil {
		ttl = cfg.TTLFunc(c, status)
	}

	if ttl <= 0 {
		return
	}

	body := make([]byte, bw.buf.Len())
	copy(body, bw.buf.Bytes())

	hdr := make(map[string]string, len(c.Writer.Header()))

	for k, v := range c.Writer.Header() {
		if len(v) > 0 {
			hdr[k] = v[0]
		}
	}

	etag := c.Writer.Header().Get("ETag")
	if etag == "" {
		// 响应头已发出, ETag 只能记录在缓存条目里供下次命中协商
		etag = fmt.Sprintf("%q", fmt.Sprintf("%x", xxhash.Sum64(body)))
		hdr["ETag"] = etag
	}

	entry := cachedResponse{Status: status, Header: hdr, Body: body, ETag: etag, StoredAt: time.Now().UnixNano()}

	// 请求 context 在 handler 返回后即取消, 异步写入需剥离取消信号
	go func(ctx context.Context) {
		_ = appcache.Set(ctx, cfg.Cache, key, entry, ttl)
	}(context.WithoutCancel(c.Request.Context()))
}
