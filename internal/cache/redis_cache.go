package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/grocery-order-platform/internal/config"
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/metrics"
	"github.com/redis/go-redis/v9"
)

// redisCache stores JSON values under a service-wide namespace so several
// deployments can share one Redis database.
type redisCache struct {
	client     *redis.Client
	namespace  string
	defaultTTL time.Duration
}

func NewRedisCache(client *redis.Client, cfg *config.CacheConfig) Cache {
	return &redisCache{
		client:     client,
		namespace:  cfg.KeyPrefix,
		defaultTTL: cfg.DefaultTTL,
	}
}

// Versions outlive any entry and any load, so a reset to zero never
// coincides with a version a reader is still holding.
const versionTTL = 24 * time.Hour

func (r *redisCache) storageKey(key string) string {
	if r.namespace == "" {
		return key
	}

	return Key(r.namespace, key)
}

func (r *redisCache) versionKey(key string) string {
	return r.storageKey(key) + ":version"
}

func (r *redisCache) Get(ctx context.Context, key string, value any) (bool, error) {

	data, err := r.client.Get(ctx, r.storageKey(key)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		metrics.CacheLookup("miss")
		return false, nil
	case err != nil:
		metrics.CacheLookup("error")
		return false, fmt.Errorf("failed to get key %s from redis: %w", key, err)
	}

	if err := json.Unmarshal(data, value); err != nil {
		metrics.CacheLookup("error")
		return false, fmt.Errorf("failed to unmarshal cache data for key %s: %w", key, err)
	}

	metrics.CacheLookup("hit")

	return true, nil
}

// Set stores value as JSON. A non-positive ttl falls back to the configured
// default so no entry lives forever.
func (r *redisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}

	if ttl <= 0 {
		ttl = r.defaultTTL
	}

	if err := r.client.Set(ctx, r.storageKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s in redis: %w", key, err)
	}

	return nil
}

// Delete removes the entry and bumps its version in one transaction.
func (r *redisCache) Delete(ctx context.Context, key string) error {
	vk := r.versionKey(key)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, vk)
		pipe.Expire(ctx, vk, versionTTL)
		pipe.Del(ctx, r.storageKey(key))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete key %s from redis: %w", key, err)
	}

	return nil
}

// Version returns how many times key has been deleted, zero if never.
func (r *redisCache) Version(ctx context.Context, key string) (int64, error) {
	version, err := r.client.Get(ctx, r.versionKey(key)).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("failed to get version of key %s from redis: %w", key, err)
	}

	return version, nil
}

// SetIfVersion stores value only while the key's version still equals
// version. It reports false when a Delete got in first.
func (r *redisCache) SetIfVersion(ctx context.Context, key string, value any, ttl time.Duration, version int64) (bool, error) {

	data, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}

	if ttl <= 0 {
		ttl = r.defaultTTL
	}

	vk := r.versionKey(key)
	stored := false

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, vk).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		if current != version {
			return nil
		}

		if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, r.storageKey(key), data, ttl)
			return nil
		}); err != nil {
			return err
		}

		stored = true
		return nil
	}, vk)

	switch {
	case errors.Is(err, redis.TxFailedErr):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("failed to set key %s in redis: %w", key, err)
	}

	return stored, nil
}

// Close releases the underlying client, which may be shared with the rate limiter.
func (r *redisCache) Close() error {
	if err := r.client.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return fmt.Errorf("failed to close redis client: %w", err)
	}

	return nil
}
