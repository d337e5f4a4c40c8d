package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(rate float64, burst int) *Limiter {
	cfg := NewConfig(rate, burst)
	cfg.CleanupInterval = 0
	return NewLimiter(cfg)
}

func TestAllow_BurstThenDeny(t *testing.T) {
	l := newTestLimiter(1, 3)
	defer l.Stop()

	now := time.Now()
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		allowed, info := l.Allow("1.2.3.4", "/match", "POST")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 3, info.Limit)
		assert.Equal(t, 2-i, info.Remaining)
	}

	allowed, info := l.Allow("1.2.3.4", "/match", "POST")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.InDelta(t, time.Second.Seconds(), info.RetryAfter.Seconds(), 0.01)
	assert.True(t, info.ResetTime.After(now))
}

func TestAllow_Refills(t *testing.T) {
	l := newTestLimiter(2, 1)
	defer l.Stop()

	now := time.Now()
	l.now = func() time.Time { return now }

	allowed, _ := l.Allow("c", "/match", "POST")
	require.True(t, allowed)
	allowed, _ = l.Allow("c", "/match", "POST")
	require.False(t, allowed)

	now = now.Add(500 * time.Millisecond)
	allowed, _ = l.Allow("c", "/match", "POST")
	assert.True(t, allowed)
}

func TestAllow_SeparateBucketsPerClientAndEndpoint(t *testing.T) {
	l := newTestLimiter(1, 1)
	defer l.Stop()

	allowed, _ := l.Allow("a", "/match", "POST")
	require.True(t, allowed)
	allowed, _ = l.Allow("b", "/match", "POST")
	assert.True(t, allowed)
	allowed, _ = l.Allow("a", "/cache/stats", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 3, l.Len())
}

func TestAllow_Disabled(t *testing.T) {
	l := NewLimiter(nil)
	defer l.Stop()

	for i := 0; i < 100; i++ {
		allowed, info := l.Allow("c", "/match", "POST")
		require.True(t, allowed)
		assert.Zero(t, info.Limit)
	}
}

func TestAllow_HealthUnlimited(t *testing.T) {
	l := newTestLimiter(1, 1)
	defer l.Stop()

	for i := 0; i < 20; i++ {
		allowed, _ := l.Allow("c", "/health", "GET")
		require.True(t, allowed)
	}
	assert.Zero(t, l.Len())
}

func TestAllow_BatchRouteStricter(t *testing.T) {
	l := newTestLimiter(3, 6)
	defer l.Stop()

	now := time.Now()
	l.now = func() time.Time { return now }

	_, info := l.Allow("c", "/match/batch", "POST")
	assert.Equal(t, 2, info.Limit)
}

func TestMatchEndpoint(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/match", Method: "POST", Rate: 1},
		{Path: "/cache/", Method: "GET", Rate: 2},
	}

	assert.Equal(t, 1.0, MatchEndpoint("/match", "POST", configs).Rate)
	assert.Nil(t, MatchEndpoint("/match", "GET", configs))
	assert.Equal(t, 2.0, MatchEndpoint("/cache/stats", "GET", configs).Rate)
	assert.Zero(t, MatchEndpoint("/metrics", "GET", configs).Rate)
}

func TestEvictIdle(t *testing.T) {
	l := newTestLimiter(1, 1)
	defer l.Stop()

	now := time.Now()
	l.now = func() time.Time { return now }
	l.Allow("old", "/match", "POST")

	now = now.Add(2 * time.Hour)
	l.Allow("new", "/match", "POST")
	l.evictIdle()
	assert.Equal(t, 1, l.Len())
}

func TestAllow_Concurrent(t *testing.T) {
	l := newTestLimiter(1, 10)
	defer l.Stop()

	now := time.Now()
	l.now = func() time.Time { return now }

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("c", "/match", "POST"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, allowed)
	l.Stop()
}
