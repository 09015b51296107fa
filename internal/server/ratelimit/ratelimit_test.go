package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		Whitelist:     make(map[string]bool),
		Blacklist:     make(map[string]bool),
		EndpointConfigs: []EndpointConfig{
			{Path: "/recommend", Method: "POST", Limit: 5, Window: time.Minute, Burst: 5},
			{Path: "/burst", Method: "POST", Limit: 10, Window: time.Minute, Burst: 2},
		},
	}
}

func TestLimiterDisabled(t *testing.T) {
	l := NewLimiter(&Config{Enabled: false})
	defer l.Stop()

	for i := 0; i < 50; i++ {
		allowed, _ := l.Allow("1.2.3.4", "/recommend", "POST")
		assert.True(t, allowed)
	}
}

func TestLimiterWhitelistAndBlacklist(t *testing.T) {
	cfg := testConfig()
	cfg.Whitelist["10.0.0.1"] = true
	cfg.Blacklist["10.0.0.2"] = true
	l := NewLimiter(cfg)
	defer l.Stop()

	for i := 0; i < 20; i++ {
		allowed, _ := l.Allow("10.0.0.1", "/recommend", "POST")
		assert.True(t, allowed, "whitelisted client must never be limited")
	}

	allowed, info := l.Allow("10.0.0.2", "/recommend", "POST")
	assert.False(t, allowed)
	assert.False(t, info.Allowed)
}

func TestLimiterEndpointBudget(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	clientID := "192.168.1.1"
	for i := 0; i < 5; i++ {
		allowed, info := l.Allow(clientID, "/recommend", "POST")
		require.True(t, allowed, "request %d should fit the budget", i+1)
		assert.Equal(t, 5, info.Limit)
	}

	allowed, info := l.Allow(clientID, "/recommend", "POST")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
	assert.True(t, info.ResetTime.After(time.Now()))
}

func TestLimiterBurstCapacity(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	// Burst 2 caps the bucket even though the per-minute limit is 10.
	for i := 0; i < 2; i++ {
		allowed, _ := l.Allow("c", "/burst", "POST")
		require.True(t, allowed)
	}
	allowed, _ := l.Allow("c", "/burst", "POST")
	assert.False(t, allowed)
}

func TestLimiterDefaultFallback(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	// No endpoint config for GET lookups, so the default limit applies.
	allowed, info := l.Allow("c", "/holdings/lookup", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 100, info.Limit)
}

func TestLimiterIsolatesClients(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	for i := 0; i < 5; i++ {
		allowed, _ := l.Allow("a", "/recommend", "POST")
		require.True(t, allowed)
	}
	allowed, _ := l.Allow("a", "/recommend", "POST")
	require.False(t, allowed)

	allowed, _ = l.Allow("b", "/recommend", "POST")
	assert.True(t, allowed, "another client keeps its own budget")
}

func TestLimiterRefill(t *testing.T) {
	cfg := testConfig()
	cfg.EndpointConfigs = []EndpointConfig{
		{Path: "/fast", Method: "POST", Limit: 600, Window: time.Minute, Burst: 1},
	}
	l := NewLimiter(cfg)
	defer l.Stop()

	allowed, _ := l.Allow("c", "/fast", "POST")
	require.True(t, allowed)
	allowed, _ = l.Allow("c", "/fast", "POST")
	require.False(t, allowed)

	// 10 tokens per second, so one returns well within 200ms.
	time.Sleep(200 * time.Millisecond)
	allowed, _ = l.Allow("c", "/fast", "POST")
	assert.True(t, allowed)
}

func TestLimiterNilConfigDefaults(t *testing.T) {
	l := NewLimiter(nil)
	defer l.Stop()

	allowed, info := l.Allow("c", "/anything", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestLimiterStopIdempotent(t *testing.T) {
	l := NewLimiter(testConfig())
	l.Stop()
	l.Stop()
}

func TestDropIdleBuckets(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	l.Allow("stale", "/recommend", "POST")
	require.Len(t, l.buckets, 1)

	l.dropIdleBuckets(time.Now().Add(time.Second))
	assert.Empty(t, l.buckets)
	assert.Empty(t, l.lastAccess)
}
