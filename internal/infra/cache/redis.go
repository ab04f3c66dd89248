package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis is a string cache backed by Redis. Errors are logged and reported as
// misses: the cache never fails a lookup.
type Redis struct {
	client  redis.Cmdable
	prefix  string
	ttl     time.Duration
	timeout time.Duration
	logger  *zap.Logger
}

// NewRedisClient connects to addr.
func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

// NewRedis wraps client. Keys are stored under prefix.
func NewRedis(client redis.Cmdable, prefix string, ttl time.Duration, logger *zap.Logger) *Redis {
	return &Redis{
		client:  client,
		prefix:  prefix,
		ttl:     ttl,
		timeout: 500 * time.Millisecond,
		logger:  logger,
	}
}

// Get retrieves a value. Returns false on a miss or a Redis failure.
func (r *Redis) Get(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	val, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		r.logger.Warn("redis get failed", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return val, true
}

// Set stores a value with the configured TTL.
func (r *Redis) Set(key string, value string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.client.Set(ctx, r.prefix+key, value, r.ttl).Err(); err != nil {
		r.logger.Warn("redis set failed", zap.String("key", key), zap.Error(err))
	}
}

// Delete removes a value.
func (r *Redis) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		r.logger.Warn("redis delete failed", zap.String("key", key), zap.Error(err))
	}
}
