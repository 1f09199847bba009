package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type RateLimiterConfig struct {
	RequestsPerMinute int
	Burst             int
	CleanupInterval   time.Duration
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter keeps a token bucket per client IP. Idle buckets are dropped
// by a background loop until Stop is called.
type RateLimiter struct {
	perMinute int
	limit     rate.Limit
	burst     int
	cleanup   time.Duration
	log       *slog.Logger

	mu       sync.Mutex
	limiters map[string]*clientLimiter

	stopOnce sync.Once
	stopCh   chan struct{}
}

func NewRateLimiter(cfg RateLimiterConfig, log *slog.Logger) *RateLimiter {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 30
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 10
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	if log == nil {
		log = slog.Default()
	}

	rl := &RateLimiter{
		perMinute: cfg.RequestsPerMinute,
		limit:     rate.Limit(float64(cfg.RequestsPerMinute) / 60.0),
		burst:     cfg.Burst,
		cleanup:   cfg.CleanupInterval,
		log:       log,
		limiters:  make(map[string]*clientLimiter),
		stopCh:    make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Middleware answers 429 with Retry-After once the caller's bucket is empty.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		key := ctx.ClientIP()
		if rl.get(key).Allow() {
			ctx.Next()
			return
		}

		rl.log.Warn("rate limit exceeded",
			slog.String("client_ip", key),
			slog.String("path", ctx.Request.URL.Path),
		)

		// seconds until one token refills
		retryAfter := (60 + rl.perMinute - 1) / rl.perMinute
		ctx.Header("Retry-After", strconv.Itoa(retryAfter))
		ctx.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"message": "Too many requests. Please try again later.",
		})
	}
}

func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, ok := rl.limiters[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = cl
	}
	cl.lastAccess = time.Now()
	return cl.limiter
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictIdle(time.Now())
		case <-rl.stopCh:
			return
		}
	}
}

// evictIdle drops buckets untouched for two cleanup intervals.
func (rl *RateLimiter) evictIdle(now time.Time) {
	ttl := rl.cleanup * 2

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, cl := range rl.limiters {
		if now.Sub(cl.lastAccess) > ttl {
			delete(rl.limiters, key)
		}
	}
}
