package shared

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NavigationHistory keeps a bounded list of routes each principal recently
// visited. The original front end cached this in browser local storage
// behind a global hook; here it is explicit state owned by an injected
// service so nothing reaches for ambient storage.
type NavigationHistory struct {
	client *redis.Client
	limit  int64
	ttl    time.Duration
}

// NewNavigationHistory constructs the history service. limit bounds the
// entries retained per principal.
func NewNavigationHistory(client *redis.Client, limit int64, ttl time.Duration) *NavigationHistory {
	if limit <= 0 {
		limit = 20
	}
	return &NavigationHistory{client: client, limit: limit, ttl: ttl}
}

// Record prepends a visited route, deduplicating an immediate repeat.
func (h *NavigationHistory) Record(ctx context.Context, principalID int64, path string) error {
	if h == nil || h.client == nil || principalID == 0 || path == "" {
		return nil
	}
	key := h.key(principalID)
	head, err := h.client.LIndex(ctx, key, 0).Result()
	if err == nil && head == path {
		return nil
	}
	pipe := h.client.TxPipeline()
	pipe.LPush(ctx, key, path)
	pipe.LTrim(ctx, key, 0, h.limit-1)
	if h.ttl > 0 {
		pipe.Expire(ctx, key, h.ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// Recent returns the principal's recent routes, newest first.
func (h *NavigationHistory) Recent(ctx context.Context, principalID int64) ([]string, error) {
	if h == nil || h.client == nil {
		return nil, nil
	}
	return h.client.LRange(ctx, h.key(principalID), 0, h.limit-1).Result()
}

// Trim re-applies the length bound across all history keys. Run from the
// background worker; Record already trims on write, so this only matters
// after the limit is lowered.
func (h *NavigationHistory) Trim(ctx context.Context) (int, error) {
	if h == nil || h.client == nil {
		return 0, nil
	}
	var trimmed int
	iter := h.client.Scan(ctx, 0, "nav:history:*", 100).Iterator()
	for iter.Next(ctx) {
		if err := h.client.LTrim(ctx, iter.Val(), 0, h.limit-1).Err(); err != nil {
			return trimmed, err
		}
		trimmed++
	}
	return trimmed, iter.Err()
}

func (h *NavigationHistory) key(principalID int64) string {
	return fmt.Sprintf("nav:history:%d", principalID)
}
