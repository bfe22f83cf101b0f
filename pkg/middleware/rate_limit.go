package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yeisme/filecdn/pkg/configs"
)

const (
	cleanupInterval   = 10 * time.Minute
	maxLimiterEntries = 10000
)

// RateLimitMiddleware 返回一个基于配置的限流中间件. 配置了 Methods 时只对这些方法限流.
func RateLimitMiddleware(cfg configs.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	methods := make(map[string]struct{}, len(cfg.Methods))
	for _, m := range cfg.Methods {
		methods[strings.ToUpper(strings.TrimSpace(m))] = struct{}{}
	}

	limited := func(c *gin.Context) bool {
		if len(methods) == 0 {
			return true
		}

		_, ok := methods[c.Request.Method]

		return ok
	}

	// 选择 key 维度
	keyMode := strings.ToLower(strings.TrimSpace(cfg.Key))
	if keyMode == "global" || keyMode == "" {
		limiter := rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)

		return func(c *gin.Context) {
			if limited(c) && !limiter.Allow() {
				abort(c, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			c.Next()
		}
	}

	limiters := newLimiterSet(rate.Limit(cfg.RPS), cfg.Burst)

	return func(c *gin.Context) {
		if !limited(c) {
			c.Next()
			return
		}

		var key string

		if h, ok := strings.CutPrefix(keyMode, "header:"); ok {
			key = c.GetHeader(h)
		}

		if key == "" { // fallback 到 IP
			key = clientIP(c)
		}

		if key == "" {
			key = "unknown"
		}

		if !limiters.get(key).Allow() {
			abort(c, http.StatusTooManyRequests, "rate limit exceeded, request too frequent, please try again later")
			return
		}

		c.Next()
	}
}

// limiterSet 按 key 划分的限流器集合，条目过多时整体重置.
type limiterSet struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
	lastGC   time.Time
}

func newLimiterSet(limit rate.Limit, burst int) *limiterSet {
	return &limiterSet{limiters: map[string]*rate.Limiter{}, limit: limit, burst: burst, lastGC: time.Now()}
}

func (s *limiterSet) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if time.Since(s.lastGC) > cleanupInterval {
		if len(s.limiters) > maxLimiterEntries {
			s.limiters = map[string]*rate.Limiter{}
		}

		s.lastGC = time.Now()
	}

	if l, ok := s.limiters[key]; ok {
		return l
	}

	l := rate.NewLimiter(s.limit, s.burst)
	s.limiters[key] = l

	return l
}

func clientIP(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		// 进一步尝试从 RemoteAddr
		host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
		if err == nil {
			ip = host
		} else {
			ip = c.Request.RemoteAddr
		}
	}

	return ip
}
