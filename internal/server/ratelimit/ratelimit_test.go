package ratelimit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(t *testing.T, cfg *Config) (*Limiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	l := NewLimiter(cfg)
	l.now = clock.Now
	t.Cleanup(l.Stop)
	return l, clock
}

func TestLimiter_DefaultLimit(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})

	for i := 0; i < 10; i++ {
		allowed, info := l.Allow("127.0.0.1", "/v1/drafts", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	allowed, info := l.Allow("127.0.0.1", "/v1/drafts", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Equal(t, 6*time.Second, info.RetryAfter)
	assert.True(t, info.ResetTime.After(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)))
}

func TestLimiter_Refill(t *testing.T) {
	l, clock := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 60, DefaultWindow: time.Minute})

	for i := 0; i < 60; i++ {
		allowed, _ := l.Allow("c", "/x", "GET")
		require.True(t, allowed)
	}
	allowed, _ := l.Allow("c", "/x", "GET")
	require.False(t, allowed)

	clock.Advance(time.Second)
	allowed, _ = l.Allow("c", "/x", "GET")
	assert.True(t, allowed)
	allowed, _ = l.Allow("c", "/x", "GET")
	assert.False(t, allowed)
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute})

	allowed, _ := l.Allow("a", "/x", "GET")
	assert.True(t, allowed)
	allowed, _ = l.Allow("a", "/x", "GET")
	assert.False(t, allowed)
	allowed, _ = l.Allow("b", "/x", "GET")
	assert.True(t, allowed)
}

func TestLimiter_Lists(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Allowlist:     map[string]bool{"10.0.0.1": true},
		Denylist:      map[string]bool{"10.0.0.2": true},
	})

	for i := 0; i < 5; i++ {
		allowed, info := l.Allow("10.0.0.1", "/x", "GET")
		assert.True(t, allowed)
		assert.Zero(t, info.Limit)
	}
	allowed, _ := l.Allow("10.0.0.2", "/x", "GET")
	assert.False(t, allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: false, DefaultLimit: 1, DefaultWindow: time.Minute})

	for i := 0; i < 5; i++ {
		allowed, _ := l.Allow("c", "/x", "GET")
		assert.True(t, allowed)
	}
	assert.Zero(t, l.Len())
}

func TestLimiter_Rules(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		Rules: []Rule{
			{Path: "/health", Method: "GET"},
			{Path: "/v1/emails", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},
			{Path: "/v1/drafts/", Method: "DELETE", Limit: 5, Window: time.Minute},
		},
	})

	for i := 0; i < 2; i++ {
		allowed, info := l.Allow("c", "/v1/emails", "POST")
		require.True(t, allowed)
		assert.Equal(t, 10, info.Limit)
	}
	allowed, _ := l.Allow("c", "/v1/emails", "POST")
	assert.False(t, allowed, "burst exhausted")

	allowed, info := l.Allow("c", "/v1/emails", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 100, info.Limit, "method mismatch uses the default")

	for i := 0; i < 100; i++ {
		allowed, _ := l.Allow("c", "/health", "GET")
		require.True(t, allowed)
	}

	// Prefix rules share one bucket across IDs.
	for i := 0; i < 5; i++ {
		allowed, _ := l.Allow("c", fmt.Sprintf("/v1/drafts/%d", i), "DELETE")
		require.True(t, allowed)
	}
	allowed, _ = l.Allow("c", "/v1/drafts/99", "DELETE")
	assert.False(t, allowed)
}

func TestConfig_RuleForPrefersLongestPrefix(t *testing.T) {
	cfg := &Config{
		DefaultLimit:  7,
		DefaultWindow: time.Second,
		Rules: []Rule{
			{Path: "/v1/", Method: "GET", Limit: 1, Window: time.Minute},
			{Path: "/v1/drafts/", Method: "GET", Limit: 2, Window: time.Minute},
		},
	}

	assert.Equal(t, 2, cfg.ruleFor("/v1/drafts/abc", "GET").Limit)
	assert.Equal(t, 1, cfg.ruleFor("/v1/documents/abc", "GET").Limit)
	assert.Equal(t, 7, cfg.ruleFor("/other", "GET").Limit)
}

func TestLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Minute})

	var wg sync.WaitGroup
	var allowed atomic.Int32
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("c", "/x", "GET"); ok {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(100), allowed.Load())
}

func TestLimiter_Sweep(t *testing.T) {
	l, clock := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})

	l.Allow("old", "/x", "GET")
	clock.Advance(IdleTTL / 2)
	l.Allow("recent", "/x", "GET")
	clock.Advance(IdleTTL/2 + time.Second)

	l.sweep()
	assert.Equal(t, 1, l.Len())
}

func TestNewLimiter_NilConfig(t *testing.T) {
	l, _ := newTestLimiter(t, nil)

	allowed, info := l.Allow("c", "/v1/drafts", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 600, info.Limit)

	l.Stop()
	l.Stop()
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "42")
	t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_ALLOWLIST", " 10.0.0.1, ,10.0.0.2")
	t.Setenv("RATE_LIMIT_DENYLIST", "")

	cfg := LoadConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 42, cfg.DefaultLimit)
	assert.Equal(t, 30*time.Second, cfg.DefaultWindow)
	assert.Equal(t, map[string]bool{"10.0.0.1": true, "10.0.0.2": true}, cfg.Allowlist)
	assert.Empty(t, cfg.Denylist)
	assert.NotEmpty(t, cfg.Rules)
}

func TestLoadConfig_IgnoresInvalidValues(t *testing.T) {
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "lots")
	t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", "soon")

	cfg := LoadConfig()
	assert.Equal(t, 600, cfg.DefaultLimit)
	assert.Equal(t, time.Minute, cfg.DefaultWindow)
}
