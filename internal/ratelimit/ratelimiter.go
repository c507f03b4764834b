package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"nexusai/internal/utils"
)

// Limiter is used to enforce per-caller rate limits on inbound
// requests.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// NoopLimiter allows all requests; the default when no Redis is
// configured.
type NoopLimiter struct{}

func NewNoopLimiter() *NoopLimiter {
	return &NoopLimiter{}
}

func (l *NoopLimiter) Allow(ctx context.Context, key string) bool {
	return true
}

// RateLimiter implements distributed sliding-window rate limiting over
// Redis sorted sets. The window and limit are fixed at construction.
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	logger *utils.Logger
}

// NewRateLimiter creates a limiter allowing limit requests per key per
// window. A limit of zero or less means unlimited.
func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
		logger: utils.NewLogger("ratelimit"),
	}
}

// Allow reports whether a request for the key fits the window. Redis
// trouble fails open so a broken limiter never blocks traffic.
func (rl *RateLimiter) Allow(ctx context.Context, key string) bool {
	if rl.limit <= 0 {
		return true
	}

	allowed, err := rl.allow(ctx, key)
	if err != nil {
		rl.logger.Warn("rate limit check failed, allowing request", "error", err.Error())
		return true
	}
	return allowed
}

func (rl *RateLimiter) allow(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("ratelimit:%s", key)
	now := time.Now()
	windowStart := now.Add(-rl.window)

	pipe := rl.client.Pipeline()

	// drop entries that left the window
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart.UnixMilli()))

	// count what is still inside it
	countCmd := pipe.ZCard(ctx, redisKey)

	// record this request with its timestamp as score
	timestamp := now.UnixMilli()
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(timestamp),
		Member: fmt.Sprintf("%d:%d", timestamp, now.Nanosecond()),
	})

	pipe.Expire(ctx, redisKey, 2*rl.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	return int(countCmd.Val()) < rl.limit, nil
}

// CurrentUsage returns the request count currently inside the window.
func (rl *RateLimiter) CurrentUsage(ctx context.Context, key string) (int64, error) {
	redisKey := fmt.Sprintf("ratelimit:%s", key)
	windowStart := time.Now().Add(-rl.window)

	if err := rl.client.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart.UnixMilli())).Err(); err != nil {
		return 0, fmt.Errorf("failed to clean old entries: %w", err)
	}

	count, err := rl.client.ZCard(ctx, redisKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get current usage: %w", err)
	}

	return count, nil
}

// Reset clears the window for a key.
func (rl *RateLimiter) Reset(ctx context.Context, key string) error {
	return rl.client.Del(ctx, fmt.Sprintf("ratelimit:%s", key)).Err()
}
