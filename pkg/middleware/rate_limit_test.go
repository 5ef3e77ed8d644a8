package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mo-amir99/lms-progress-server/pkg/logger"
)

type fakeCounter struct {
	mu      sync.Mutex
	counts  map[string]int64
	expires map[string]time.Duration
	err     error
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: map[string]int64{}, expires: map[string]time.Duration{}}
}

func (f *fakeCounter) Increment(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeCounter) Expire(_ context.Context, key string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expires[key] = ttl
	return nil
}

func limitedRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func hit(r http.Handler) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiterLocalBucket(t *testing.T) {
	rl := NewRateLimiter(2, time.Hour, nil, logger.NewNop())
	t.Cleanup(rl.Stop)
	r := limitedRouter(rl)

	assert.Equal(t, http.StatusOK, hit(r))
	assert.Equal(t, http.StatusOK, hit(r))
	assert.Equal(t, http.StatusTooManyRequests, hit(r))
}

func TestRateLimiterSharedWindow(t *testing.T) {
	counter := newFakeCounter()
	rl := NewRateLimiter(2, time.Minute, counter, logger.NewNop())
	fixed := time.Date(2024, 1, 1, 12, 0, 30, 0, time.UTC)
	rl.now = func() time.Time { return fixed }
	r := limitedRouter(rl)

	assert.Equal(t, http.StatusOK, hit(r))
	assert.Equal(t, http.StatusOK, hit(r))
	assert.Equal(t, http.StatusTooManyRequests, hit(r))

	require.Len(t, counter.expires, 1)
	for _, ttl := range counter.expires {
		assert.Equal(t, time.Minute, ttl)
	}

	rl.now = func() time.Time { return fixed.Add(time.Minute) }
	assert.Equal(t, http.StatusOK, hit(r))
}

func TestRateLimiterSharedSubSecondWindow(t *testing.T) {
	counter := newFakeCounter()
	rl := NewRateLimiter(1, 100*time.Millisecond, counter, logger.NewNop())
	fixed := time.Date(2024, 1, 1, 12, 0, 30, 0, time.UTC)
	rl.now = func() time.Time { return fixed }
	r := limitedRouter(rl)

	assert.Equal(t, http.StatusOK, hit(r))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	rl.now = func() time.Time { return fixed.Add(100 * time.Millisecond) }
	assert.Equal(t, http.StatusOK, hit(r))
}

func TestRateLimiterFailsOpen(t *testing.T) {
	counter := newFakeCounter()
	counter.err = errors.New("connection refused")
	rl := NewRateLimiter(1, time.Minute, counter, logger.NewNop())
	r := limitedRouter(rl)

	assert.Equal(t, http.StatusOK, hit(r))
	assert.Equal(t, http.StatusOK, hit(r))
}

func TestEvictIdle(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute, nil, logger.NewNop())
	t.Cleanup(rl.Stop)

	rl.allowLocal("a")
	rl.evictIdle(time.Now().Add(time.Hour))

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Empty(t, rl.visitors)
}
