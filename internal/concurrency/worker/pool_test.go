package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"prxwallet/internal/domain/model"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type recorder struct {
	mu     sync.Mutex
	events []model.Event
	err    error
}

func (r *recorder) Notify(_ context.Context, e model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestPoolDeliversAndDrains(t *testing.T) {
	sink := &recorder{}
	p := NewPool(3, 16, sink, nil, discard)

	for i := 0; i < 10; i++ {
		if err := p.Notify(context.Background(), model.Event{Type: "t"}); err != nil {
			t.Fatalf("Notify: %v", err)
		}
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if got := sink.count(); got != 10 {
		t.Fatalf("delivered %d, want 10", got)
	}

	if err := p.Notify(context.Background(), model.Event{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("Notify after Close: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestPoolFallback(t *testing.T) {
	sink := &recorder{err: errors.New("broker down")}
	fallback := &recorder{}
	p := NewPool(1, 4, sink, fallback, discard)

	if err := p.Notify(context.Background(), model.Event{ReceiptID: "r1"}); err != nil {
		t.Fatal(err)
	}
	p.Close()

	if fallback.count() != 1 {
		t.Fatalf("fallback got %d events", fallback.count())
	}
}
