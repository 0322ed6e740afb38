// Package cache is the Redis adapter for the two destination caches:
// fetch profiles (permanent, destination identity never changes) and
// destination contexts (time-bounded, the map data underneath drifts).
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"kairos/internal/observability"
)

type Cache struct {
	c *redis.Client
}

func New(c *redis.Client) *Cache {
	return &Cache{c: c}
}

// ProfileKey is the cache key for a destination's fetch profile.
// Cached without TTL.
func ProfileKey(destination string) string {
	return "kairos:profile:" + normalizeKey(destination)
}

// ContextKey is the cache key for a destination's curated context,
// per schema version so a version switch never serves stale shapes.
func ContextKey(destination string, schemaVersion int) string {
	return fmt.Sprintf("kairos:context:v%d:%s", schemaVersion, normalizeKey(destination))
}

func normalizeKey(destination string) string {
	return strings.ToLower(strings.Join(strings.Fields(destination), "_"))
}

// Get unmarshals the cached value into dst. The bool reports a hit.
func (r *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, err := r.c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		observability.ObserveCache("redis", "miss")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	observability.ObserveCache("redis", "hit")
	return true, json.Unmarshal(v, dst)
}

// Set stores v as JSON. A zero ttl means no expiry.
func (r *Cache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	observability.ObserveCache("redis", "set")
	return r.c.Set(ctx, key, b, ttl).Err()
}

func (r *Cache) Del(ctx context.Context, key string) error {
	observability.ObserveCache("redis", "del")
	return r.c.Del(ctx, key).Err()
}
