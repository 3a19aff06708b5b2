package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	applog "applestore/internal/log"
)

const redisPrefix = "view:"

// Redis shares rendered views between instances.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// ConnectRedis parses url, connects and pings.
func ConnectRedis(ctx context.Context, url string, ttl time.Duration) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return NewRedis(client, ttl), nil
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := r.client.Get(ctx, redisPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			applog.Warn(nil, "cache.redis.get.fail", err, map[string]any{"key": key})
		}
		return nil, false
	}
	return b, true
}

func (r *Redis) Set(ctx context.Context, key string, body []byte) {
	if err := r.client.Set(ctx, redisPrefix+key, body, r.ttl).Err(); err != nil {
		applog.Warn(nil, "cache.redis.set.fail", err, map[string]any{"key": key})
	}
}

func (r *Redis) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, redisPrefix+k)
	}
	return r.client.Del(ctx, full...).Err()
}

func (r *Redis) Close() error { return r.client.Close() }
