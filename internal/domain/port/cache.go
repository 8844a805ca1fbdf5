package port

import (
	"context"
	"time"
)

// CachePort stores encoded query results. Get returns nil, nil on a miss.
type CachePort interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// Acquire takes a short-lived lock on key. It reports false when the
	// lock is already held.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}
