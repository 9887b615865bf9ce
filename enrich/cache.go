package enrich

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is an optional Redis-backed lookup cache shared by enrichment
// clients. A nil *Cache is valid and caches nothing, so clients never
// branch on whether caching is configured.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCache connects a lookup cache. An empty addr returns nil, the
// no-op cache.
func NewCache(addr string, ttl time.Duration, logger *slog.Logger) *Cache {
	if addr == "" {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the cached value for key and whether it was present.
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	if c == nil {
		return "", false
	}
	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("cache read failed", "key", key, "error", err)
		}
		return "", false
	}
	return value, true
}

// Set stores a value under key. Failures are logged and ignored: the
// cache is an optimization, not a store.
func (c *Cache) Set(ctx context.Context, key, value string) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.logger.Debug("cache write failed", "key", key, "error", err)
	}
}

// Close releases the underlying connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
