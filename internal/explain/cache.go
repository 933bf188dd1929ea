package explain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cardwatch-dev/cardwatch/internal/model"
)

// Cache stores explanations by key. A miss is ("", false, nil).
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Cached serves explanations from a Cache before calling the wrapped
// Explainer. Cache failures are logged and never fail an explanation.
type Cached struct {
	Explainer Explainer
	Cache     Cache
	TTL       time.Duration
	Logger    *slog.Logger
}

// Name returns the wrapped provider name.
func (c *Cached) Name() string { return c.Explainer.Name() }

// Explain returns the cached rationale for txn, or asks the wrapped
// Explainer and stores its answer.
func (c *Cached) Explain(ctx context.Context, txn model.Transaction, score model.Score) (string, error) {
	key := CacheKey(c.Explainer.Name(), txn.ID)

	text, ok, err := c.Cache.Get(ctx, key)
	switch {
	case err != nil:
		c.logger().Warn("explanation cache read failed", "key", key, "error", err)
	case ok:
		return text, nil
	}

	text, err = c.Explainer.Explain(ctx, txn, score)
	if err != nil {
		return "", err
	}
	if err := c.Cache.Set(ctx, key, text, c.TTL); err != nil {
		c.logger().Warn("explanation cache write failed", "key", key, "error", err)
	}
	return text, nil
}

func (c *Cached) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// CacheKey returns the key an explanation is stored under.
func CacheKey(provider, txnID string) string {
	return fmt.Sprintf("explain:%s:%s", provider, txnID)
}

// RedisCache is a Cache backed by Redis.
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache connects to addr and verifies the connection.
func NewRedisCache(ctx context.Context, addr string) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return &RedisCache{rdb: rdb}, nil
}

// Get returns the value stored under key.
func (r *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set stores value under key for ttl.
func (r *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.rdb.Set(ctx, key, value, ttl).Err()
}

// Close closes the Redis connection.
func (r *RedisCache) Close() error {
	return r.rdb.Close()
}
