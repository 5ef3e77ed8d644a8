package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/mo-amir99/lms-progress-server/pkg/apperrors"
	"github.com/mo-amir99/lms-progress-server/pkg/response"
)

// Counter is the subset of the cache client used for shared rate limiting.
type Counter interface {
	Increment(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, expiration time.Duration) error
}

// RateLimiter limits requests per client IP. With a Counter it enforces a
// fixed window shared across instances; without one it falls back to a local
// token bucket per IP.
type RateLimiter struct {
	limit    int
	window   time.Duration
	counter  Counter
	logger   *slog.Logger
	now      func() time.Time
	mu       sync.Mutex
	visitors map[string]*visitor
	stop     chan struct{}
	stopOnce sync.Once
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per window.
// counter may be nil.
func NewRateLimiter(limit int, window time.Duration, counter Counter, logger *slog.Logger) *RateLimiter {
	if limit <= 0 {
		limit = 100
	}
	if window <= 0 {
		window = time.Minute
	}

	rl := &RateLimiter{
		limit:    limit,
		window:   window,
		counter:  counter,
		logger:   logger,
		now:      time.Now,
		visitors: make(map[string]*visitor),
		stop:     make(chan struct{}),
	}

	if counter == nil {
		go rl.cleanup()
	}

	return rl
}

// Middleware returns a Gin middleware that enforces rate limiting.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()

		if !rl.allow(c.Request.Context(), key) {
			c.Header("Retry-After", strconv.FormatInt(rl.retryAfter(), 10))
			response.AppError(rl.logger, c, apperrors.New("Too many requests. Please try again later.", http.StatusTooManyRequests, apperrors.ErrTooMany, nil))
			c.Abort()
			return
		}

		c.Next()
	}
}

// Stop ends the background cleanup of idle local buckets.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// retryAfter is the window in whole seconds, rounded up and never below one.
func (rl *RateLimiter) retryAfter() int64 {
	seconds := int64((rl.window + time.Second - 1) / time.Second)
	if seconds < 1 {
		return 1
	}
	return seconds
}

func (rl *RateLimiter) allow(ctx context.Context, key string) bool {
	if rl.counter != nil {
		return rl.allowShared(ctx, key)
	}
	return rl.allowLocal(key)
}

func (rl *RateLimiter) allowShared(ctx context.Context, key string) bool {
	bucket := rl.now().UnixNano() / int64(rl.window)
	redisKey := "ratelimit:" + key + ":" + strconv.FormatInt(bucket, 10)

	count, err := rl.counter.Increment(ctx, redisKey)
	if err != nil {
		// Fail open: an unavailable cache must not take the API down.
		if rl.logger != nil {
			rl.logger.Warn("rate limit counter unavailable", slog.String("error", err.Error()))
		}
		return true
	}

	if count == 1 {
		if err := rl.counter.Expire(ctx, redisKey, rl.window); err != nil && rl.logger != nil {
			rl.logger.Warn("rate limit expire failed", slog.String("error", err.Error()))
		}
	}

	return count <= int64(rl.limit)
}

func (rl *RateLimiter) allowLocal(key string) bool {
	rl.mu.Lock()
	v, exists := rl.visitors[key]
	if !exists {
		every := rate.Every(rl.window / time.Duration(rl.limit))
		v = &visitor{limiter: rate.NewLimiter(every, rl.limit)}
		rl.visitors[key] = v
	}
	v.lastSeen = rl.now()
	rl.mu.Unlock()

	return v.limiter.Allow()
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.evictIdle(rl.now().Add(-3 * rl.window))
		}
	}
}

func (rl *RateLimiter) evictIdle(cutoff time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, key)
		}
	}
}
