package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(t *testing.T, cfg *Config) (*Limiter, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	l := NewLimiter(cfg)
	l.now = c.now
	t.Cleanup(l.Stop)
	return l, c
}

func testConfig(limit int) *Config {
	return &Config{Enabled: true, DefaultLimit: limit, DefaultWindow: time.Minute}
}

func TestBucket_TakeAndRefill(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	b := newBucket(2, 1, start)

	assert.True(t, b.take(start))
	assert.True(t, b.take(start))
	assert.False(t, b.take(start))
	assert.Equal(t, time.Second, b.nextToken())
	assert.Equal(t, start.Add(2*time.Second), b.full())

	assert.True(t, b.take(start.Add(1500*time.Millisecond)))
	assert.False(t, b.take(start.Add(1600*time.Millisecond)))

	b.take(start.Add(time.Hour))
	assert.InDelta(t, 1.0, b.tokens, 0.0001)
}

func TestLimiter_Allow(t *testing.T) {
	limiter, c := newTestLimiter(t, testConfig(10))

	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/webhook/other", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	allowed, info := limiter.Allow("127.0.0.1", "/webhook/other", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Equal(t, 6*time.Second, info.RetryAfter)
	assert.Equal(t, c.now().Add(time.Minute), info.ResetTime)

	allowed, _ = limiter.Allow("10.0.0.9", "/webhook/other", "GET")
	assert.True(t, allowed, "other clients have their own bucket")

	c.advance(6 * time.Second)
	allowed, _ = limiter.Allow("127.0.0.1", "/webhook/other", "GET")
	assert.True(t, allowed)
}

func TestLimiter_Lists(t *testing.T) {
	cfg := testConfig(1)
	cfg.Whitelist = ipSet([]string{" 127.0.0.1 "})
	cfg.Blacklist = ipSet([]string{"10.6.6.6", ""})
	limiter, _ := newTestLimiter(t, cfg)

	for i := 0; i < 20; i++ {
		allowed, _ := limiter.Allow("127.0.0.1", "/webhook/trigger", "POST")
		require.True(t, allowed)
	}
	allowed, _ := limiter.Allow("10.6.6.6", "/health", "GET")
	assert.False(t, allowed)
	assert.Empty(t, limiter.buckets)
}

func TestLimiter_Disabled(t *testing.T) {
	limiter, _ := newTestLimiter(t, &Config{Enabled: false, DefaultLimit: 1})

	for i := 0; i < 5; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/webhook/trigger", "POST")
		require.True(t, allowed)
		assert.Zero(t, info.Limit)
	}
}

func TestLimiter_WebhookTriggerLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t, NewConfig(true, 1000, time.Minute, nil, nil))

	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/webhook/trigger", "POST")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 30, info.Limit)
	}
	allowed, info := limiter.Allow("127.0.0.1", "/webhook/trigger", "POST")
	assert.False(t, allowed)
	assert.Equal(t, 2*time.Second, info.RetryAfter)

	allowed, info = limiter.Allow("127.0.0.1", "/actions", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 60, info.Limit)

	allowed, info = limiter.Allow("127.0.0.1", "/other", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	limiter, _ := newTestLimiter(t, testConfig(1))

	for i := 0; i < 5; i++ {
		allowed, _ := limiter.Allow("127.0.0.1", "/health", "GET")
		require.True(t, allowed)
	}
}

func TestMatchEndpoint_Prefix(t *testing.T) {
	configs := []EndpointConfig{{Path: "/drafts/", Method: "POST", Limit: 3}}

	assert.Equal(t, 3, matchEndpoint("/drafts/rec1", "POST", configs).Limit)
	assert.Nil(t, matchEndpoint("/drafts/rec1", "GET", configs))
	assert.Nil(t, matchEndpoint("/other", "POST", configs))
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter, _ := newTestLimiter(t, testConfig(100))

	var wg sync.WaitGroup
	var allowedCount atomic.Int64
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := limiter.Allow("127.0.0.1", "/webhook/trigger", "GET"); allowed {
				allowedCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), allowedCount.Load())
}

func TestLimiter_SweepDropsIdleBuckets(t *testing.T) {
	cfg := testConfig(10)
	cfg.IdleTTL = 10 * time.Minute
	limiter, c := newTestLimiter(t, cfg)

	limiter.Allow("192.0.2.1", "/webhook/trigger", "POST")
	c.advance(9 * time.Minute)
	limiter.Allow("192.0.2.2", "/webhook/trigger", "POST")

	c.advance(2 * time.Minute)
	assert.Equal(t, 1, limiter.sweep())
	assert.Len(t, limiter.buckets, 1)
	assert.Contains(t, limiter.buckets, "192.0.2.2 POST /webhook/trigger")
}

func TestLimiter_StopTwice(t *testing.T) {
	cfg := testConfig(1)
	cfg.CleanupInterval = time.Millisecond
	limiter := NewLimiter(cfg)

	limiter.Stop()
	assert.NotPanics(t, limiter.Stop)
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter, _ := newTestLimiter(t, nil)

	allowed, info := limiter.Allow("127.0.0.1", "/webhook/status", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 120, info.Limit)
}

func TestMiddleware(t *testing.T) {
	limiter, _ := newTestLimiter(t, testConfig(1))

	handler := Middleware(limiter, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/webhook/status", nil)
	req.RemoteAddr = "192.0.2.1:5555"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestClientID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "192.0.2.1", ClientID(req))

	req.RemoteAddr = "not-an-addr"
	assert.Equal(t, "not-an-addr", ClientID(req))
}
