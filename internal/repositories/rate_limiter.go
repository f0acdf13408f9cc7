package repository

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/aaravmahajanofficial/grocery-order-platform/internal/api/middleware"
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RateLimitRepository interface {
	CheckCheckoutRateLimit(ctx context.Context, shopID uuid.UUID) (bool, int, int, error)
}

type redisRateLimiter struct {
	client *redis.Client
	cfg    config.RateConfig
}

func NewRateLimitRepo(client *redis.Client, cfg config.RateConfig) RateLimitRepository {
	return &redisRateLimiter{client: client, cfg: cfg}
}

// CheckCheckoutRateLimit records a checkout attempt in a sliding window kept as
// a sorted set scored by attempt time in milliseconds.
// Returns isAllowed, attempts left, seconds to wait, error.
func (r *redisRateLimiter) CheckCheckoutRateLimit(ctx context.Context, shopID uuid.UUID) (bool, int, int, error) {

	logger := middleware.LoggerFromContext(ctx)

	key := fmt.Sprintf("checkout_attempts:%s", shopID)

	now := time.Now().UnixMilli()
	window := r.cfg.WindowSize.Milliseconds()
	windowStart := now - window

	pipe := r.client.TxPipeline()

	// drop attempts older than the window
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("(%d", windowStart))

	// members must be unique or two attempts in the same millisecond collapse
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: uuid.NewString()})

	count := pipe.ZCard(ctx, key)

	pipe.PExpire(ctx, key, r.cfg.WindowSize)

	if _, err := pipe.Exec(ctx); err != nil {
		logger.Error("Redis pipeline execution failed for rate limit", slog.String("key", key), slog.Any("error", err))
		return false, 0, 0, fmt.Errorf("redis pipeline error for rate limit check: %w", err)
	}

	attempts := count.Val()

	if attempts > r.cfg.MaxAttempts {

		scores, err := r.client.ZRangeWithScores(ctx, key, 0, 0).Result()
		if err != nil || len(scores) == 0 {
			logger.Error("Failed to get oldest attempt time for rate limit", slog.String("key", key), slog.Any("error", err))
			return false, 0, int(r.cfg.WindowSize.Seconds()), fmt.Errorf("failed to get oldest attempt time: %w", err)
		}

		oldest := int64(scores[0].Score)
		retryAfter := int(math.Ceil(float64(max(oldest+window-now, 0)) / 1000))

		logger.Warn("Checkout rate limit exceeded", slog.String("shopId", shopID.String()), slog.Int64("attempts", attempts))
		return false, 0, retryAfter, nil
	}

	remaining := r.cfg.MaxAttempts - attempts

	logger.Debug("Rate limit check passed", slog.String("shopId", shopID.String()), slog.Int64("remaining", remaining))
	return true, int(remaining), 0, nil
}
