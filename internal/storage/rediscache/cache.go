// Package rediscache caches rendered simulation results in Redis so
// repeated identical requests skip a full Monte Carlo run.
package rediscache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"property-deal-lab/internal/storage"
)

// defaultTTL bounds staleness of cached results. Simulation output is
// deterministic for a fixed seed, so a long TTL is safe.
const defaultTTL = 24 * time.Hour

// Cache implements storage.ResultCache using Redis.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a Cache connected to addr.
func New(addr string) *Cache {
	return &Cache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    defaultTTL,
	}
}

// Compile-time interface check.
var _ storage.ResultCache = (*Cache)(nil)

// Get returns the cached value and whether it was present. A Redis
// error degrades to a cache miss.
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// Set stores a value under key with the cache TTL.
func (c *Cache) Set(ctx context.Context, key, value string) error {
	return c.client.Set(ctx, key, value, c.ttl).Err()
}

// Close releases the underlying client.
func (c *Cache) Close() error {
	return c.client.Close()
}
