package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"prxwallet/internal/domain/model"
	"prxwallet/internal/domain/port"
)

const (
	keyPrice         = "price"
	keyWallet        = "wallet"
	keyHistoryPrefix = "history:"
)

// WalletService serves the read side of the wallet. Identical concurrent
// reads share one backend call and results are kept in the cache for ttl.
type WalletService struct {
	backend port.BackendPort
	cache   port.CachePort
	ttl     time.Duration
	timeout time.Duration
	logger  *slog.Logger

	group singleflight.Group
	// gen moves on every Refresh and Invalidate. Fetches started under an
	// older generation do not write the cache.
	gen atomic.Uint64

	mu          sync.Mutex
	historyKeys map[string]struct{}
}

func NewWalletService(backend port.BackendPort, cache port.CachePort, ttl, timeout time.Duration, logger *slog.Logger) *WalletService {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &WalletService{
		backend:     backend,
		cache:       cache,
		ttl:         ttl,
		timeout:     timeout,
		logger:      logger,
		historyKeys: make(map[string]struct{}),
	}
}

func (s *WalletService) Price(ctx context.Context) (*model.Price, error) {
	return load(ctx, s, keyPrice, s.backend.Price)
}

func (s *WalletService) WalletInfo(ctx context.Context) (*model.WalletInfo, error) {
	return load(ctx, s, keyWallet, s.backend.WalletInfo)
}

func (s *WalletService) History(ctx context.Context, userID string) ([]model.Transaction, error) {
	key := keyHistoryPrefix + userID
	s.mu.Lock()
	s.historyKeys[key] = struct{}{}
	s.mu.Unlock()

	return load(ctx, s, key, func(ctx context.Context) ([]model.Transaction, error) {
		return s.backend.History(ctx, userID)
	})
}

// Refresh skips the cache and refetches price and wallet concurrently. It
// never joins a read that was already in flight.
func (s *WalletService) Refresh(ctx context.Context) error {
	s.gen.Add(1)
	s.group.Forget(keyPrice)
	s.group.Forget(keyWallet)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := shared(gctx, s, keyPrice, s.backend.Price)
		return err
	})
	g.Go(func() error {
		_, err := shared(gctx, s, keyWallet, s.backend.WalletInfo)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to refresh wallet: %w", err)
	}
	return nil
}

// Invalidate drops every cached read, e.g. after the backend changed.
func (s *WalletService) Invalidate(ctx context.Context) error {
	keys := []string{keyPrice, keyWallet}
	s.mu.Lock()
	for k := range s.historyKeys {
		keys = append(keys, k)
	}
	s.historyKeys = make(map[string]struct{})
	s.mu.Unlock()

	s.gen.Add(1)
	for _, k := range keys {
		s.group.Forget(k)
	}

	if err := s.cache.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}

func load[T any](ctx context.Context, s *WalletService, key string, fetch func(context.Context) (T, error)) (T, error) {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache read failed", "key", key, "error", err)
	} else if data != nil {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			return v, nil
		}
		s.logger.Warn("dropping undecodable cache entry", "key", key)
	}
	return shared(ctx, s, key, fetch)
}

// shared runs fetch once per key for all concurrent callers. The call is
// detached from the caller's cancellation and bounded by the backend timeout.
func shared[T any](ctx context.Context, s *WalletService, key string, fetch func(context.Context) (T, error)) (T, error) {
	ch := s.group.DoChan(key, func() (any, error) {
		gen := s.gen.Load()
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		v, err := fetch(fctx)
		if err != nil {
			return nil, err
		}
		if s.gen.Load() != gen {
			return v, nil
		}
		if data, err := json.Marshal(v); err == nil {
			if err := s.cache.Set(fctx, key, data, s.ttl); err != nil {
				s.logger.Warn("cache write failed", "key", key, "error", err)
			}
		}
		return v, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		if res.Shared {
			s.logger.Debug("shared backend read", "key", key)
		}
		return res.Val.(T), nil
	}
}
