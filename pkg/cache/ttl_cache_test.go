package cache

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// newTestCache returns a cache whose clock the test controls.
func newTestCache(ttl time.Duration) (*TTLCache[string, int], *time.Time) {
	c := New[string, int](ttl, time.Hour)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestGetSetExpiry(t *testing.T) {
	c, now := newTestCache(time.Minute)
	defer c.Close()

	c.Set("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	*now = now.Add(2 * time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len(), "expired entries stay until the sweep")

	c.evictExpired()
	assert.Equal(t, 0, c.Len())
}

func TestTakeIsOneShot(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	defer c.Close()

	c.Set("captcha", 7)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, ok := c.Take("captcha"); ok && v == 7 {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	_, ok := c.Get("captcha")
	assert.False(t, ok)
}

func TestTakeExpired(t *testing.T) {
	c, now := newTestCache(time.Minute)
	defer c.Close()

	c.Set("a", 1)
	*now = now.Add(time.Hour)
	_, ok := c.Take("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestDeleteFuncAndClear(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	defer c.Close()

	c.Set("forum:a", 1)
	c.Set("forum:b", 2)
	c.Set("users:a", 3)

	c.DeleteFunc(func(k string) bool { return strings.HasPrefix(k, "forum:") })
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("users:a")
	assert.True(t, ok)

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestCloseTwice(t *testing.T) {
	c := New[int, int](time.Minute, time.Minute)
	c.Close()
	assert.NotPanics(t, c.Close)
}
