package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	applog "github.com/akinalp/forum/pkg/log"
)

// RedisResultCache shares results between server instances. Values are
// stored as JSON under <prefix>:<generation>:<key>; Purge bumps the
// generation so stale entries are never read again and simply expire.
type RedisResultCache[V any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisClient connects and pings.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func NewRedisResultCache[V any](client *redis.Client, prefix string, ttl time.Duration) *RedisResultCache[V] {
	return &RedisResultCache[V]{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisResultCache[V]) generationKey() string {
	return c.prefix + ":gen"
}

func (c *RedisResultCache[V]) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, c.generationKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *RedisResultCache[V]) entryKey(gen int64, key string) string {
	return fmt.Sprintf("%s:%d:%s", c.prefix, gen, key)
}

func (c *RedisResultCache[V]) Get(ctx context.Context, key string) (V, bool) {
	var zero V

	gen, err := c.generation(ctx)
	if err != nil {
		warn(ctx).Err(err).Msg("result cache generation read failed")
		return zero, false
	}

	data, err := c.client.Get(ctx, c.entryKey(gen, key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			warn(ctx).Err(err).Msg("result cache get failed")
		}
		return zero, false
	}

	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		warn(ctx).Err(err).Msg("result cache entry is corrupt")
		return zero, false
	}
	return v, true
}

// Generation returns -1 when the counter cannot be read; Set ignores it.
func (c *RedisResultCache[V]) Generation(ctx context.Context) int64 {
	gen, err := c.generation(ctx)
	if err != nil {
		warn(ctx).Err(err).Msg("result cache generation read failed")
		return -1
	}
	return gen
}

// Set writes under gen. After a purge nothing reads that generation again,
// so a stale value is simply left to expire.
func (c *RedisResultCache[V]) Set(ctx context.Context, gen int64, key string, value V) {
	if gen < 0 {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		warn(ctx).Err(err).Msg("result cache marshal failed")
		return
	}

	if err := c.client.Set(ctx, c.entryKey(gen, key), data, c.ttl).Err(); err != nil {
		warn(ctx).Err(err).Msg("result cache set failed")
	}
}

func (c *RedisResultCache[V]) Purge(ctx context.Context) {
	if err := c.client.Incr(ctx, c.generationKey()).Err(); err != nil {
		warn(ctx).Err(err).Msg("result cache purge failed")
	}
}

// Close is a no-op; the client is shared and closed by its owner.
func (c *RedisResultCache[V]) Close() error {
	return nil
}

func warn(ctx context.Context) *zerolog.Event {
	l := applog.Ctx(ctx)
	return l.Warn()
}
