package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps fixed-window counters in Redis, shared across instances.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore creates a Redis-backed counter store.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Incr(ctx context.Context, key string, d time.Duration) (int64, time.Time, error) {
	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, time.Time{}, fmt.Errorf("ratelimit incr %s: %w", key, err)
	}

	count := incr.Val()
	remaining := ttl.Val()
	if remaining < 0 {
		// First hit of the window (or a key that lost its expiry): arm it.
		if err := s.rdb.PExpire(ctx, key, d).Err(); err != nil {
			return 0, time.Time{}, fmt.Errorf("ratelimit expire %s: %w", key, err)
		}
		remaining = d
	}
	return count, time.Now().Add(remaining), nil
}
