package ratelimit

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		Enabled:       true,
		DefaultLimit:  5,
		DefaultWindow: time.Minute,
		Rules: []Rule{
			{PathPrefix: "/health", Limit: 0},
			{PathPrefix: "/rank", Method: "POST", Limit: 2, Window: time.Minute},
		},
	}
}

func TestLimiter_AllowsWithinLimit(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	for i := 0; i < 2; i++ {
		allowed, info := l.Allow("10.0.0.1", "/rank", "POST")
		assert.True(t, allowed, "request %d should be allowed", i)
		assert.Equal(t, 2, info.Limit)
	}
}

func TestLimiter_BlocksOverLimit(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	l.Allow("10.0.0.1", "/rank", "POST")
	l.Allow("10.0.0.1", "/rank", "POST")

	allowed, info := l.Allow("10.0.0.1", "/rank", "POST")
	require.False(t, allowed)
	assert.False(t, info.Allowed)
	assert.GreaterOrEqual(t, info.RetryAfter, time.Duration(0))
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	l.Allow("10.0.0.1", "/rank", "POST")
	l.Allow("10.0.0.1", "/rank", "POST")

	allowed, _ := l.Allow("10.0.0.2", "/rank", "POST")
	assert.True(t, allowed, "second client has its own bucket")
}

func TestLimiter_UnlimitedEndpoint(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	for i := 0; i < 50; i++ {
		allowed, _ := l.Allow("10.0.0.1", "/health", "GET")
		require.True(t, allowed)
	}
}

func TestLimiter_DefaultLimitForUnmatchedEndpoint(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	var blocked bool
	for i := 0; i < 6; i++ {
		if allowed, _ := l.Allow("10.0.0.1", "/programs", "GET"); !allowed {
			blocked = true
		}
	}
	assert.True(t, blocked, "default limit of 5 should block the sixth request")
}

func TestLimiter_Disabled(t *testing.T) {
	l := NewLimiter(&Config{Enabled: false})
	defer l.Stop()

	for i := 0; i < 100; i++ {
		allowed, _ := l.Allow("10.0.0.1", "/rank", "POST")
		require.True(t, allowed)
	}
}

func TestTokenBucket_Refills(t *testing.T) {
	tb := newTokenBucket(1, 1000) // refills essentially instantly

	require.True(t, tb.allow())
	time.Sleep(5 * time.Millisecond)
	assert.True(t, tb.allow(), "bucket should refill after the window")
}

func TestLimiter_ConcurrentAccess(t *testing.T) {
	l := NewLimiter(&Config{Enabled: true, DefaultLimit: 1000, DefaultWindow: time.Minute})
	defer l.Stop()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(id int) {
			defer func() { done <- struct{}{} }()
			client := fmt.Sprintf("10.0.0.%d", id)
			for j := 0; j < 50; j++ {
				l.Allow(client, "/programs", "GET")
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
