package ratelimit

import (
	"sync"
	"time"
)

// postBucket is in one of two states: counting inside a window, or
// blocked until cooldownUntil.
type postBucket struct {
	count         int
	windowStart   time.Time
	cooldownUntil time.Time
}

// PostLimiter throttles forum posting per member. Exceeding maxPosts in a
// window blocks the member for the whole cooldown, which is usually longer
// than the window.
//
//	limiter := ratelimit.NewPostLimiter(5, 30*time.Second, 2*time.Minute)
//	if !limiter.Allow(userID) { ... 429 ... }
type PostLimiter struct {
	mu          sync.RWMutex
	buckets     map[int64]*postBucket
	maxPosts    int
	window      time.Duration
	cooldown    time.Duration
	now         func() time.Time
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

func NewPostLimiter(maxPosts int, window, cooldown time.Duration) *PostLimiter {
	rl := &PostLimiter{
		buckets:     make(map[int64]*postBucket),
		maxPosts:    maxPosts,
		window:      window,
		cooldown:    cooldown,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Allow counts one post for userID. While in cooldown every call fails.
func (rl *PostLimiter) Allow(userID int64) bool {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.buckets[userID]
	if !exists {
		rl.buckets[userID] = &postBucket{count: 1, windowStart: now}
		return true
	}

	if !b.cooldownUntil.IsZero() {
		if now.Before(b.cooldownUntil) {
			return false
		}
		b.count = 1
		b.windowStart = now
		b.cooldownUntil = time.Time{}
		return true
	}

	if now.Sub(b.windowStart) > rl.window {
		b.count = 1
		b.windowStart = now
		return true
	}

	b.count++
	if b.count > rl.maxPosts {
		b.cooldownUntil = now.Add(rl.cooldown)
		return false
	}
	return true
}

// CooldownSeconds is the Retry-After value for userID, 0 when not blocked.
func (rl *PostLimiter) CooldownSeconds(userID int64) int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	b, exists := rl.buckets[userID]
	if !exists || b.cooldownUntil.IsZero() {
		return 0
	}

	remaining := b.cooldownUntil.Sub(rl.now())
	if remaining <= 0 {
		return 0
	}
	return int(remaining.Seconds()) + 1
}

func (rl *PostLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCleanup) })
}

func (rl *PostLimiter) cleanupLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanup keeps buckets that are still inside their window or cooldown.
func (rl *PostLimiter) cleanup() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for userID, b := range rl.buckets {
		windowExpired := now.Sub(b.windowStart) > rl.window
		cooldownExpired := b.cooldownUntil.IsZero() || now.After(b.cooldownUntil)
		if windowExpired && cooldownExpired {
			delete(rl.buckets, userID)
		}
	}
}
