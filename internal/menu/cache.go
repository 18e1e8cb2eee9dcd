package menu

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "authz:perms:"

// PermissionCache is a read-through Redis cache of the flattened
// permission set per principal. Cache failures behave as misses: the
// caller falls back to a live fetch, never to a stale allow.
type PermissionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPermissionCache constructs the cache with the given entry lifetime.
func NewPermissionCache(client *redis.Client, ttl time.Duration) *PermissionCache {
	return &PermissionCache{client: client, ttl: ttl}
}

// Get returns the cached permission set and whether it was present.
func (c *PermissionCache) Get(ctx context.Context, principalID int64) ([]string, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	payload, err := c.client.Get(ctx, c.key(principalID)).Bytes()
	if err != nil {
		return nil, false
	}
	var perms []string
	if err := json.Unmarshal(payload, &perms); err != nil {
		return nil, false
	}
	return perms, true
}

// Set stores the permission set. Errors are dropped; the cache is an
// optimization, not a source of truth.
func (c *PermissionCache) Set(ctx context.Context, principalID int64, perms []string) {
	if c == nil || c.client == nil {
		return
	}
	payload, err := json.Marshal(perms)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, c.key(principalID), payload, c.ttl).Err()
}

// Invalidate removes one principal's cached set.
func (c *PermissionCache) Invalidate(ctx context.Context, principalID int64) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, c.key(principalID)).Err()
}

// Sweep removes every cached permission set. Scheduled from the worker so
// remote permission changes propagate on a known cadence even when entry
// TTLs are long.
func (c *PermissionCache) Sweep(ctx context.Context) (int, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	var removed int
	iter := c.client.Scan(ctx, 0, cacheKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, iter.Err()
}

func (c *PermissionCache) key(principalID int64) string {
	return fmt.Sprintf("%s%d", cacheKeyPrefix, principalID)
}
