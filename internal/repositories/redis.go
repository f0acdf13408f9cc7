package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/grocery-order-platform/internal/config"
	"github.com/redis/go-redis/v9"
)

const redisPingTimeout = 5 * time.Second

// NewRedisClient connects the client shared by the order cache and the
// checkout rate limiter. The connection is verified before it is returned.
func NewRedisClient(ctx context.Context, cfg config.RedisConnect) (*redis.Client, error) {

	opt, err := redis.ParseURL(cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opt.DB = cfg.DB

	logger := slog.With(slog.String("redis_addr", opt.Addr), slog.Int("redis_db", opt.DB))
	logger.Info("Connecting to Redis")

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opt.Addr, err)
	}

	logger.Info("Successfully connected to Redis")
	return client, nil
}
