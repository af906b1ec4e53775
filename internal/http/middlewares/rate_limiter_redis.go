package middlewares

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCounter shares the login window across instances: INCR the key,
// set the expiry on the first hit of the window.
type RedisCounter struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisCounter(rdb *redis.Client) *RedisCounter {
	return &RedisCounter{rdb: rdb, prefix: "ratelimit:"}
}

func (r *RedisCounter) Hit(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	fullKey := r.prefix + key

	count, err := r.rdb.Incr(ctx, fullKey).Result()

	if err != nil {
		return 0, 0, err
	}

	if count == 1 {
		err = r.rdb.Expire(ctx, fullKey, window).Err()

		if err != nil {
			return 0, 0, err
		}

		return int(count), window, nil
	}

	ttl, err := r.rdb.TTL(ctx, fullKey).Result()

	if err != nil || ttl < 0 {
		ttl = window
	}

	return int(count), ttl, nil
}
