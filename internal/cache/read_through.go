package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/grocery-order-platform/internal/api/middleware"
	"golang.org/x/sync/singleflight"
)

// ReadThrough returns the cached value under key, or calls load once per key
// across concurrent callers and stores the result. Cache failures are logged
// and never fail the read.
//
// The key's version is read before loading. If the key is deleted while the
// load runs, the loaded value is returned but not stored.
func ReadThrough[T any](ctx context.Context, c Cache, group *singleflight.Group, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {

	logger := middleware.LoggerFromContext(ctx).With(slog.String("cacheKey", key))

	var cached T

	found, err := c.Get(ctx, key, &cached)
	if err != nil {
		logger.Warn("Cache read failed", slog.String("error", err.Error()))
	} else if found {
		return cached, nil
	}

	v, err, _ := group.Do(key, func() (any, error) {
		// shared by every waiter, so one caller going away must not fail the rest
		loadCtx := context.WithoutCancel(ctx)

		version, versionErr := c.Version(loadCtx, key)
		if versionErr != nil {
			logger.Warn("Cache version read failed, result will not be cached", slog.String("error", versionErr.Error()))
		}

		value, err := load(loadCtx)
		if err != nil || versionErr != nil {
			return value, err
		}

		stored, err := c.SetIfVersion(loadCtx, key, value, ttl, version)
		switch {
		case err != nil:
			logger.Warn("Cache write failed", slog.String("error", err.Error()))
		case !stored:
			logger.Debug("Entry invalidated during load, not cached")
		}

		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return v.(T), nil
}
