package cache

import (
	"context"
	"time"
)

// Cache stores JSON values by key. Delete also bumps the key's version, so a
// value loaded before the delete can be refused by SetIfVersion.
type Cache interface {
	Get(ctx context.Context, key string, value any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Version(ctx context.Context, key string) (int64, error)
	SetIfVersion(ctx context.Context, key string, value any, ttl time.Duration, version int64) (bool, error)
	Close() error
}

func Key(prefix string, id string) string {
	return prefix + ":" + id
}

// Carts are never cached: their totals must reflect live catalog prices.
const OrderKeyPrefix = "order"
