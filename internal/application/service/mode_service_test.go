package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"prxwallet/internal/domain/model"
)

func TestModeServiceSwitches(t *testing.T) {
	live := &countingBackend{price: decimal.NewFromInt(1)}
	demo := &countingBackend{price: decimal.NewFromInt(2)}
	ms := NewModeService(live, demo, model.LiveMode, discard)

	var switched []model.DataMode
	ms.OnSwitch(func(_ context.Context, m model.DataMode) error {
		switched = append(switched, m)
		return nil
	})

	ctx := context.Background()
	p, err := ms.Price(ctx)
	if err != nil || !p.Value.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("live price = %v, %v", p, err)
	}

	if err := ms.SwitchMode(ctx, model.DemoMode); err != nil {
		t.Fatal(err)
	}
	if err := ms.SwitchMode(ctx, model.DemoMode); err != nil {
		t.Fatal(err)
	}
	p, _ = ms.Price(ctx)
	if !p.Value.Equal(decimal.NewFromInt(2)) || ms.GetCurrentMode() != model.DemoMode {
		t.Fatalf("demo price = %s mode = %s", p.Value, ms.GetCurrentMode())
	}
	if len(switched) != 1 {
		t.Fatalf("switch hooks ran %d times", len(switched))
	}
}

func TestModeServiceWithoutLive(t *testing.T) {
	ms := NewModeService(nil, &countingBackend{}, model.LiveMode, discard)
	if ms.GetCurrentMode() != model.DemoMode {
		t.Fatalf("mode = %s", ms.GetCurrentMode())
	}
	if err := ms.SwitchMode(context.Background(), model.LiveMode); err == nil {
		t.Fatal("switched to a missing backend")
	}
}

type countingRefresher struct{ n chan struct{} }

func (r countingRefresher) Refresh(context.Context) error {
	select {
	case r.n <- struct{}{}:
	default:
	}
	return nil
}

func TestPriceWatcherRefreshes(t *testing.T) {
	r := countingRefresher{n: make(chan struct{}, 1)}
	w := NewPriceWatcher(r, discard)
	w.Start(context.Background(), 10*time.Millisecond)
	defer w.Stop()

	select {
	case <-r.n:
	case <-time.After(time.Second):
		t.Fatal("watcher never refreshed")
	}
}
