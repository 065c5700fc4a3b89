package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const likeCountTTL = 5 * time.Minute

// LikeCountCache caches per-sandwich like counts in Redis.
// Key format: likes:<sandwich_id>
type LikeCountCache struct {
	client *redis.Client
}

// NewLikeCountCache creates a LikeCountCache wrapping the given Redis client.
func NewLikeCountCache(client *redis.Client) *LikeCountCache {
	return &LikeCountCache{client: client}
}

// Get returns the cached count and whether the key was present.
func (c *LikeCountCache) Get(ctx context.Context, sandwichID string) (int64, bool, error) {
	count, err := c.client.Get(ctx, c.key(sandwichID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("like count get: %w", err)
	}
	return count, true, nil
}

// Set stores the count (expires after likeCountTTL).
func (c *LikeCountCache) Set(ctx context.Context, sandwichID string, count int64) error {
	return c.client.Set(ctx, c.key(sandwichID), count, likeCountTTL).Err()
}

// Invalidate drops the cached count so the next read refills from storage.
func (c *LikeCountCache) Invalidate(ctx context.Context, sandwichID string) error {
	return c.client.Del(ctx, c.key(sandwichID)).Err()
}

func (c *LikeCountCache) key(sandwichID string) string {
	return fmt.Sprintf("likes:%s", sandwichID)
}
