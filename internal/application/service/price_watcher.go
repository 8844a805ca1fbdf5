package service

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Refresher is refreshed on every tick.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// PriceWatcher keeps the price and wallet snapshots warm.
type PriceWatcher struct {
	target Refresher
	logger *slog.Logger
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
	mu     sync.Mutex
}

func NewPriceWatcher(target Refresher, logger *slog.Logger) *PriceWatcher {
	return &PriceWatcher{
		target: target,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start runs the refresh loop. If interval <= 0, 30 seconds is used.
func (w *PriceWatcher) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	w.mu.Lock()
	if w.ticker != nil {
		w.ticker.Stop()
	}
	w.ticker = time.NewTicker(interval)
	tick := w.ticker
	w.mu.Unlock()

	w.logger.Info("price watcher starting", "interval", interval.String())
	go w.loop(ctx, tick)
}

func (w *PriceWatcher) Stop() {
	w.mu.Lock()
	if w.ticker != nil {
		w.ticker.Stop()
	}
	w.mu.Unlock()
	w.once.Do(func() { close(w.done) })
	w.logger.Info("price watcher stopped")
}

func (w *PriceWatcher) loop(ctx context.Context, tick *time.Ticker) {
	for {
		select {
		case <-tick.C:
			start := time.Now()
			if err := w.target.Refresh(ctx); err != nil {
				w.logger.Error("refresh failed", "error", err, "duration", time.Since(start))
			} else {
				w.logger.Debug("refresh completed", "duration", time.Since(start))
			}
		case <-w.done:
			return
		case <-ctx.Done():
			return
		}
	}
}
