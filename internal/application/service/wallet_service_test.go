package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"prxwallet/internal/domain/model"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *memCache) Acquire(context.Context, string, time.Duration) (bool, error) { return true, nil }
func (c *memCache) Ping(context.Context) error { return nil }
func (c *memCache) Close() error { return nil }

// countingBackend counts reads. Submit and the auth calls are unused here.
type countingBackend struct {
	prices  atomic.Int32
	wallets atomic.Int32
	release chan struct{}
	price   decimal.Decimal
}

func (b *countingBackend) Login(context.Context, model.Credentials) (*model.AuthResult, error) {
	return nil, nil
}
func (b *countingBackend) Signup(context.Context, model.SignupRequest) (*model.AuthResult, error) {
	return nil, nil
}
func (b *countingBackend) Me(context.Context) (*model.User, error) { return nil, nil }
func (b *countingBackend) ChangePassword(context.Context, model.PasswordChange) error { return nil }
func (b *countingBackend) Submit(context.Context, model.SubmitRequest) (*model.Receipt, error) {
	return nil, nil
}

func (b *countingBackend) Price(context.Context) (*model.Price, error) {
	b.prices.Add(1)
	if b.release != nil {
		<-b.release
	}
	return &model.Price{Value: b.price, FetchedAt: time.Now()}, nil
}

func (b *countingBackend) WalletInfo(context.Context) (*model.WalletInfo, error) {
	b.wallets.Add(1)
	return &model.WalletInfo{Address: "PRXwallet", PRXBalance: decimal.NewFromInt(5)}, nil
}

func (b *countingBackend) History(context.Context, string) ([]model.Transaction, error) {
	return []model.Transaction{}, nil
}

func TestWalletServiceCoalescesPrice(t *testing.T) {
	backend := &countingBackend{release: make(chan struct{}), price: decimal.RequireFromString("0.5")}
	svc := NewWalletService(backend, newMemCache(), time.Minute, time.Second, discard)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := svc.Price(context.Background())
			if err == nil && !p.Value.Equal(decimal.RequireFromString("0.5")) {
				t.Errorf("price = %s", p.Value)
			}
			errs <- err
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(backend.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("Price: %v", err)
		}
	}
	if got := backend.prices.Load(); got != 1 {
		t.Fatalf("backend price calls = %d, want 1", got)
	}
}

func TestWalletServiceRefreshBypassesCache(t *testing.T) {
	backend := &countingBackend{price: decimal.NewFromInt(1)}
	svc := NewWalletService(backend, newMemCache(), time.Minute, time.Second, discard)
	ctx := context.Background()

	if _, err := svc.WalletInfo(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.WalletInfo(ctx); err != nil {
		t.Fatal(err)
	}
	if got := backend.wallets.Load(); got != 1 {
		t.Fatalf("cached read hit backend: %d calls", got)
	}

	if err := svc.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if backend.wallets.Load() != 2 || backend.prices.Load() != 1 {
		t.Fatalf("after refresh wallets=%d prices=%d", backend.wallets.Load(), backend.prices.Load())
	}

	if err := svc.Invalidate(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Price(ctx); err != nil {
		t.Fatal(err)
	}
	if got := backend.prices.Load(); got != 2 {
		t.Fatalf("invalidate kept price cached: %d calls", got)
	}
}

// stalePrice holds its first price read until first is closed and answers
// every later read with a newer price.
type stalePrice struct {
	*countingBackend
	first chan struct{}
}

func (b *stalePrice) Price(context.Context) (*model.Price, error) {
	if b.prices.Add(1) == 1 {
		<-b.first
		return &model.Price{Value: decimal.NewFromInt(1)}, nil
	}
	return &model.Price{Value: decimal.NewFromInt(2)}, nil
}

func TestWalletServiceRefreshSkipsInFlightRead(t *testing.T) {
	backend := &stalePrice{countingBackend: &countingBackend{}, first: make(chan struct{})}
	svc := NewWalletService(backend, newMemCache(), time.Minute, time.Second, discard)
	ctx := context.Background()

	stale := make(chan error, 1)
	go func() {
		_, err := svc.Price(ctx)
		stale <- err
	}()
	for backend.prices.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	if err := svc.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got := backend.prices.Load(); got != 2 {
		t.Fatalf("refresh joined the in-flight read: %d price calls", got)
	}

	close(backend.first)
	if err := <-stale; err != nil {
		t.Fatalf("stale Price: %v", err)
	}

	p, err := svc.Price(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !p.Value.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("cached price = %s, want the refreshed 2", p.Value)
	}
	if got := backend.prices.Load(); got != 2 {
		t.Fatalf("price read missed the cache: %d calls", got)
	}
}
