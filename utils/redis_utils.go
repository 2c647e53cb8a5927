package utils

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisRateLimitStore backs the fixed-window request counters shared across
// horizontally scaled instances.
type RedisRateLimitStore struct {
	inner *redis.Client
}

func GetRedisRateLimitStore() (*RedisRateLimitStore, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")),
		Password: os.Getenv("REDIS_PASSWD"),
		DB:       0, // use default DB
	})
	_, err := redisClient.Ping(context.Background()).Result()
	if err != nil {
		return nil, err
	}
	return &RedisRateLimitStore{inner: redisClient}, nil
}

// Hit increments the counter for key within the current window and returns
// the running count. The first hit of a window arms the expiry.
func (r *RedisRateLimitStore) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := r.inner.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		r.inner.Expire(ctx, key, window)
	}
	return count, nil
}
