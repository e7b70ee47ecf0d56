package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(max int, window time.Duration) (*Limiter, *time.Time) {
	rl := NewLimiter(max, window)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestAllowWithinWindow(t *testing.T) {
	rl, now := newTestLimiter(3, time.Minute)
	defer rl.Stop()

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"), "keys are independent")

	assert.Equal(t, 61, rl.RetryAfterSeconds("1.2.3.4"))
	*now = now.Add(30 * time.Second)
	assert.Equal(t, 31, rl.RetryAfterSeconds("1.2.3.4"))

	*now = now.Add(31 * time.Second)
	assert.True(t, rl.Allow("1.2.3.4"), "new window")
}

func TestReset(t *testing.T) {
	rl, _ := newTestLimiter(1, time.Minute)
	defer rl.Stop()

	assert.True(t, rl.Allow("k"))
	assert.False(t, rl.Allow("k"))
	rl.Reset("k")
	assert.True(t, rl.Allow("k"))
	assert.Equal(t, 0, rl.RetryAfterSeconds("unknown"))
}

func TestCleanupDropsStaleBuckets(t *testing.T) {
	rl, now := newTestLimiter(1, time.Minute)
	defer rl.Stop()

	rl.Allow("a")
	*now = now.Add(2 * time.Minute)
	rl.Allow("b")
	rl.cleanup()

	rl.mu.RLock()
	defer rl.mu.RUnlock()
	assert.NotContains(t, rl.buckets, "a")
	assert.Contains(t, rl.buckets, "b")
}

func TestExtractIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", ExtractIP(r))

	r.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", ExtractIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.3")
	assert.Equal(t, "203.0.113.7", ExtractIP(r))
}

func TestFormatRetryMessage(t *testing.T) {
	assert.Equal(t, "2 minute(s)", FormatRetryMessage(120))
	assert.Equal(t, "45 second(s)", FormatRetryMessage(45))
}
