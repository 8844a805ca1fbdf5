// Package worker delivers wallet events off the submission path.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"prxwallet/internal/domain/model"
	"prxwallet/internal/domain/port"
)

var (
	ErrQueueFull = errors.New("worker: event queue is full")
	ErrClosed    = errors.New("worker: pool is closed")
)

const deliveryTimeout = 10 * time.Second

// Pool queues events and hands them to sink from a fixed set of workers.
// When sink fails the event goes to fallback instead.
type Pool struct {
	workers  int
	sink     port.Notifier
	fallback port.Notifier
	logger   *slog.Logger

	queue chan model.Event
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

var _ port.Notifier = (*Pool)(nil)

// NewPool creates the pool and starts its workers.
func NewPool(workers, queueSize int, sink, fallback port.Notifier, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	p := &Pool{
		workers:  workers,
		sink:     sink,
		fallback: fallback,
		logger:   logger,
		queue:    make(chan model.Event, queueSize),
	}

	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go func(id int) {
			defer p.wg.Done()
			p.workerLoop(id)
		}(i)
	}
	return p
}

// Notify enqueues e without waiting for delivery.
func (p *Pool) Notify(ctx context.Context, e model.Event) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	select {
	case p.queue <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

// Close stops accepting events and waits for the queue to drain.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}

func (p *Pool) workerLoop(id int) {
	for e := range p.queue {
		p.processOne(id, e)
	}
}

func (p *Pool) processOne(id int, e model.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	if err := p.sink.Notify(ctx, e); err != nil {
		p.logger.Error("worker: delivery failed, using fallback", "worker", id, "receipt_id", e.ReceiptID, "error", err)
		if p.fallback == nil {
			return
		}
		if err := p.fallback.Notify(ctx, e); err != nil {
			p.logger.Error("worker: fallback delivery failed", "worker", id, "receipt_id", e.ReceiptID, "error", err)
		}
		return
	}

	p.logger.Debug("worker: delivered event", "worker", id, "type", e.Type, "receipt_id", e.ReceiptID)
}
