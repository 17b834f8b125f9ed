package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yeisme/objectvault/pkg/configs"
)

// RateLimitMiddleware 基于 token bucket 的限流中间件.
// key 维度由配置决定：global、ip 或 header:<名称>.
func RateLimitMiddleware(cfg configs.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	keyMode := strings.ToLower(strings.TrimSpace(cfg.Key))
	if keyMode == "" || keyMode == "global" {
		limiter := rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)

		return func(c *gin.Context) {
			if !limiter.Allow() {
				rejectRateLimited(c)
				return
			}

			c.Next()
		}
	}

	limiters := newKeyedLimiters(cfg)
	keyOf := requestKeyFunc(keyMode)

	return func(c *gin.Context) {
		if !limiters.get(keyOf(c)).Allow() {
			rejectRateLimited(c)
			return
		}

		c.Next()
	}
}

func rejectRateLimited(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
}

// requestKeyFunc 把 key 配置解析成请求维度提取函数.
func requestKeyFunc(keyMode string) func(*gin.Context) string {
	if header, ok := strings.CutPrefix(keyMode, "header:"); ok {
		return func(c *gin.Context) string {
			if key := c.GetHeader(header); key != "" {
				return key
			}

			return clientIP(c)
		}
	}

	// "ip" 与未识别的配置都按客户端 IP 限流
	return clientIP
}

// keyedLimiters 按 key 懒建 limiter，条目过多时整表重置.
type keyedLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
	burst    int
}

const (
	limiterCleanupInterval = 10 * time.Minute
	maxLimiterEntries      = 10000
)

func newKeyedLimiters(cfg configs.RateLimitConfig) *keyedLimiters {
	kl := &keyedLimiters{
		limiters: map[string]*rate.Limiter{},
		rps:      cfg.RPS,
		burst:    cfg.Burst,
	}

	go kl.cleanupLoop()

	return kl
}

func (kl *keyedLimiters) get(key string) *rate.Limiter {
	if key == "" {
		key = "unknown"
	}

	kl.mu.Lock()
	defer kl.mu.Unlock()

	if l, ok := kl.limiters[key]; ok {
		return l
	}

	l := rate.NewLimiter(rate.Limit(kl.rps), kl.burst)
	kl.limiters[key] = l

	return l
}

// cleanupLoop 不跟踪逐 key 的访问时间，表超限时整体丢弃重建.
func (kl *keyedLimiters) cleanupLoop() {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		kl.mu.Lock()
		if len(kl.limiters) > maxLimiterEntries {
			kl.limiters = map[string]*rate.Limiter{}
		}
		kl.mu.Unlock()
	}
}

func clientIP(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}

	if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
		return host
	}

	return c.Request.RemoteAddr
}
