package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ RateLimiter = (*RedisRateLimiter)(nil)

const rateLimitKeyPrefix = "medibook:ratelimit:"

// RedisRateLimiter counts requests per key in fixed windows shared by every
// server instance.
type RedisRateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

func (r *RedisRateLimiter) Allow(ctx context.Context, key string) (RateLimitResult, error) {
	start := r.now().Truncate(r.window)
	windowKey := rateLimitKeyPrefix + key + ":" + strconv.FormatInt(start.Unix(), 10)

	pipe := r.client.TxPipeline()
	count := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, r.window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return RateLimitResult{}, fmt.Errorf("failed to count request: %w", err)
	}

	return RateLimitResult{
		Allowed:    count.Val() <= int64(r.limit),
		RetryAfter: start.Add(r.window).Sub(r.now()),
	}, nil
}
