package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// CreationRateWindow and CreationRateThreshold bound game creations per
	// caller: at most 30 per rolling 60 seconds.
	CreationRateWindow    = 60 * time.Second
	CreationRateThreshold = 30
)

// RateLimiter bounds game creations per caller over a fixed window.
type RateLimiter interface {
	Allow(ctx context.Context, playerID string) (bool, error)
}

type creationLimiter struct {
	client    *redis.Client
	window    time.Duration
	threshold int64
}

// NewCreationLimiter creates the Redis-backed creation rate limiter. The
// counter is updated atomically per caller (INCR), so concurrent creations
// cannot slip past the threshold.
func NewCreationLimiter(client *redis.Client) RateLimiter {
	return &creationLimiter{
		client:    client,
		window:    CreationRateWindow,
		threshold: CreationRateThreshold,
	}
}

func (c *creationLimiter) key(playerID string) string {
	return fmt.Sprintf("ratelimit:create:%s", playerID)
}

func (c *creationLimiter) Allow(ctx context.Context, playerID string) (bool, error) {
	key := c.key(playerID)
	n, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := c.client.Expire(ctx, key, c.window).Err(); err != nil {
			return false, err
		}
	}
	return n <= c.threshold, nil
}
