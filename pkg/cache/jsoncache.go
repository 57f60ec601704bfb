package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// JSONCache is a best-effort read-through cache over Redis. A nil receiver or
// an unreachable Redis never fails a request; callers always fall back to the
// underlying file store.
type JSONCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewJSONCache wraps an existing Redis client. Pass a nil client to disable
// caching entirely.
func NewJSONCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *JSONCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JSONCache{client: client, ttl: ttl, logger: logger}
}

// Get unmarshals the cached value into v and reports whether it was present.
func (c *JSONCache) Get(ctx context.Context, key string, v interface{}) bool {
	if c == nil || c.client == nil {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		c.logger.Warn("cache payload corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Set stores v under key for the configured TTL.
func (c *JSONCache) Set(ctx context.Context, key string, v interface{}) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops keys after a write to the backing store.
func (c *JSONCache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.client == nil || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("cache invalidate failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
