package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"

	"prxwallet/internal/domain/port"
)

// ErrNotStored means the cache refused the entry, e.g. because it costs more
// than the whole cache.
var ErrNotStored = errors.New("cache entry was not stored")

// LocalAdapter is the in-process cache used when no Redis is configured.
type LocalAdapter struct {
	c *ristretto.Cache

	mu    sync.Mutex
	locks map[string]time.Time
}

var _ port.CachePort = (*LocalAdapter)(nil)

func NewLocalAdapter(maxCost int64) (*LocalAdapter, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &LocalAdapter{c: c, locks: make(map[string]time.Time)}, nil
}

func (a *LocalAdapter) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := a.c.Get(key)
	if !ok {
		return nil, nil
	}
	b, _ := v.([]byte)
	return b, nil
}

func (a *LocalAdapter) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if !a.c.SetWithTTL(key, value, int64(len(value)), ttl) {
		return ErrNotStored
	}
	// make the write visible to the next Get
	a.c.Wait()
	if _, ok := a.c.Get(key); !ok {
		return ErrNotStored
	}
	return nil
}

// Delete removes values and releases locks under the given keys.
func (a *LocalAdapter) Delete(_ context.Context, keys ...string) error {
	a.mu.Lock()
	for _, k := range keys {
		delete(a.locks, k)
	}
	a.mu.Unlock()

	for _, k := range keys {
		a.c.Del(k)
	}
	return nil
}

func (a *LocalAdapter) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := time.Now()
	for k, until := range a.locks {
		if !now.Before(until) {
			delete(a.locks, k)
		}
	}
	if _, held := a.locks[key]; held {
		return false, nil
	}
	a.locks[key] = now.Add(ttl)
	return true, nil
}

func (a *LocalAdapter) Ping(context.Context) error { return nil }

func (a *LocalAdapter) Close() error {
	a.c.Close()
	return nil
}
