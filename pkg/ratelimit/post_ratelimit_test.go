package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPostLimiterCooldown(t *testing.T) {
	rl := NewPostLimiter(2, 10*time.Second, time.Minute)
	defer rl.Stop()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow(1))
	assert.True(t, rl.Allow(1))
	assert.False(t, rl.Allow(1), "third post starts the cooldown")
	assert.Equal(t, 61, rl.CooldownSeconds(1))
	assert.Equal(t, 0, rl.CooldownSeconds(2))

	// the window has passed but the cooldown has not
	now = now.Add(30 * time.Second)
	assert.False(t, rl.Allow(1))

	rl.cleanup()
	rl.mu.RLock()
	assert.Contains(t, rl.buckets, int64(1), "cleanup keeps members in cooldown")
	rl.mu.RUnlock()

	now = now.Add(31 * time.Second)
	assert.Equal(t, 0, rl.CooldownSeconds(1))
	assert.True(t, rl.Allow(1))
}

func TestPostLimiterWindowReset(t *testing.T) {
	rl := NewPostLimiter(1, 10*time.Second, time.Minute)
	defer rl.Stop()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow(7))
	now = now.Add(11 * time.Second)
	assert.True(t, rl.Allow(7))
}
