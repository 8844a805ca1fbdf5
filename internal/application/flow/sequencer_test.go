package flow

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"prxwallet/internal/application/validation"
	"prxwallet/internal/domain/model"
)

const (
	sender   = "PRXa1b2c3d4e5f6g7h8i9j0k1l2m3n4"
	receiver = "PRXz9y8x7w6v5u4t3s2r1q0p9o8n7m6"
)

type fakeBackend struct {
	mu    sync.Mutex
	calls []model.SubmitRequest
	err   error
	block chan struct{}
}

func (f *fakeBackend) Submit(_ context.Context, req model.SubmitRequest) (*model.Receipt, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return &model.Receipt{Route: req.Route, Amount: req.Amount, Currency: model.Currency(req.Currency), TxID: "tx-1"}, nil
}

type fakeWallet struct {
	price     decimal.Decimal
	refreshed int
}

func (f *fakeWallet) Price(context.Context) (*model.Price, error) {
	return &model.Price{Value: f.price, FetchedAt: time.Now()}, nil
}

func (f *fakeWallet) Refresh(context.Context) error {
	f.refreshed++
	return nil
}

type fakeConfirmer struct {
	answer bool
	got    *model.Summary
}

func (f *fakeConfirmer) Confirm(_ context.Context, s model.Summary) (bool, error) {
	f.got = &s
	return f.answer, nil
}

type fakeAuth struct {
	err error
}

func (f fakeAuth) Available(context.Context) bool { return true }
func (f fakeAuth) Authenticate(context.Context, string) error { return f.err }

type fakeJournal struct {
	receipts []model.Receipt
}

func (f *fakeJournal) SaveReceipt(_ context.Context, r model.Receipt) error {
	f.receipts = append(f.receipts, r)
	return nil
}
func (f *fakeJournal) ListReceipts(context.Context, int) ([]model.Receipt, error) {
	return f.receipts, nil
}
func (f *fakeJournal) Ping(context.Context) error { return nil }
func (f *fakeJournal) Close() error { return nil }

type fakeNotifier struct {
	events []model.Event
}

func (f *fakeNotifier) Notify(_ context.Context, e model.Event) error {
	f.events = append(f.events, e)
	return nil
}

type fixture struct {
	backend  *fakeBackend
	wallet   *fakeWallet
	confirm  *fakeConfirmer
	journal  *fakeJournal
	notifier *fakeNotifier
	states   []model.FlowState
}

func newFixture(t *testing.T, flow model.Flow, auth *fakeAuth) (*Sequencer, *fixture) {
	t.Helper()
	fx := &fixture{
		backend:  &fakeBackend{},
		wallet:   &fakeWallet{price: decimal.NewFromInt(2)},
		confirm:  &fakeConfirmer{answer: true},
		journal:  &fakeJournal{},
		notifier: &fakeNotifier{},
	}
	deps := Deps{
		Validator: validation.New(),
		Backend:   fx.backend,
		Wallet:    fx.wallet,
		Confirmer: fx.confirm,
		Notifier:  fx.notifier,
		Journal:   fx.journal,
	}
	if auth != nil {
		deps.Authenticator = *auth
	}
	seq := New(flow, deps)
	seq.Observe(func(_, to model.FlowState) { fx.states = append(fx.states, to) })
	return seq, fx
}

func TestRunTransferSucceeds(t *testing.T) {
	seq, fx := newFixture(t, model.FlowTransfer, &fakeAuth{})
	form := &model.TransferData{Amount: " 10 ", SenderAddress: sender, ReceiverAddress: receiver}

	rec, err := seq.Run(context.Background(), form)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []model.FlowState{model.StateValidating, model.StateAuthenticating, model.StateConfirming, model.StateSubmitting, model.StateSuccess}
	if !reflect.DeepEqual(fx.states, want) {
		t.Fatalf("states = %v, want %v", fx.states, want)
	}

	if len(fx.backend.calls) != 1 {
		t.Fatalf("submit calls = %d", len(fx.backend.calls))
	}
	req := fx.backend.calls[0]
	if req.Route != model.RouteTransferPRX || req.Amount != "10" || req.Equivalent != "20.000000" {
		t.Errorf("unexpected request %+v", req)
	}
	if req.ReceiverAddress != receiver || req.IdempotencyKey == "" {
		t.Errorf("unexpected request %+v", req)
	}

	if fx.confirm.got == nil || fx.confirm.got.To != model.USDT || fx.confirm.got.Receiver != receiver {
		t.Errorf("unexpected summary %+v", fx.confirm.got)
	}

	if form.Amount != "" || form.ReceiverAddress != "" || form.SenderAddress != sender {
		t.Errorf("form after success = %+v", form)
	}
	if rec.ID != req.IdempotencyKey || rec.Status != model.ReceiptSuccess {
		t.Errorf("receipt = %+v", rec)
	}
	if len(fx.journal.receipts) != 1 || len(fx.notifier.events) != 1 || fx.wallet.refreshed != 1 {
		t.Errorf("journal=%d events=%d refreshed=%d", len(fx.journal.receipts), len(fx.notifier.events), fx.wallet.refreshed)
	}
	if seq.State() != model.StateSuccess {
		t.Errorf("state = %v", seq.State())
	}
}

func TestRunExchangeRoutes(t *testing.T) {
	tests := []struct {
		flow  model.Flow
		input model.Currency
		route model.Route
	}{
		{model.FlowExchange, model.USDT, model.RouteBuy},
		{model.FlowExchange, model.PRX, model.RouteSell},
		{model.FlowCard, model.USDT, model.RouteCardBuy},
		{model.FlowCard, model.PRX, model.RouteCardSell},
	}

	for _, tt := range tests {
		t.Run(string(tt.route), func(t *testing.T) {
			seq, fx := newFixture(t, tt.flow, nil)
			form := &model.TransferData{Amount: "4", SenderAddress: sender, InputCurrency: tt.input}
			if _, err := seq.Run(context.Background(), form); err != nil {
				t.Fatalf("Run: %v", err)
			}
			req := fx.backend.calls[0]
			if req.Route != tt.route || req.ReceiverAddress != "" {
				t.Errorf("request = %+v", req)
			}
		})
	}
}

func TestRunNeverSubmitsInvalidForm(t *testing.T) {
	seq, fx := newFixture(t, model.FlowTransfer, nil)
	form := &model.TransferData{Amount: "0", SenderAddress: sender}

	_, err := seq.Run(context.Background(), form)
	if !model.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, s := range fx.states {
		if s == model.StateSubmitting {
			t.Fatal("reached submitting with an invalid form")
		}
	}
	if len(fx.backend.calls) != 0 {
		t.Fatal("backend was called")
	}
	if seq.State() != model.StateIdle {
		t.Errorf("state = %v", seq.State())
	}
}

func TestRunAuthenticationFails(t *testing.T) {
	seq, fx := newFixture(t, model.FlowExchange, &fakeAuth{err: errors.New("wrong pin")})
	form := &model.TransferData{Amount: "1", SenderAddress: sender}

	_, err := seq.Run(context.Background(), form)
	if !errors.Is(err, model.ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
	if len(fx.backend.calls) != 0 || seq.State() != model.StateIdle {
		t.Errorf("calls=%d state=%v", len(fx.backend.calls), seq.State())
	}
}

func TestRunCanceled(t *testing.T) {
	seq, fx := newFixture(t, model.FlowExchange, nil)
	fx.confirm.answer = false
	form := &model.TransferData{Amount: "1", SenderAddress: sender}

	_, err := seq.Run(context.Background(), form)
	if !errors.Is(err, model.ErrCanceled) {
		t.Fatalf("expected ErrCanceled, got %v", err)
	}
	if form.Amount != "1" {
		t.Error("form was reset on cancel")
	}
	if seq.State() != model.StateIdle {
		t.Errorf("state = %v", seq.State())
	}
}

func TestRunSubmitFails(t *testing.T) {
	seq, fx := newFixture(t, model.FlowExchange, nil)
	fx.backend.err = &model.RequestError{Status: http.StatusUnprocessableEntity, Message: "Insufficient balance"}
	form := &model.TransferData{Amount: "1", SenderAddress: sender}

	_, err := seq.Run(context.Background(), form)
	var re *model.RequestError
	if !errors.As(err, &re) || re.Message != "Insufficient balance" {
		t.Fatalf("expected RequestError, got %v", err)
	}
	if seq.State() != model.StateFailed {
		t.Errorf("state = %v", seq.State())
	}
	if form.Amount != "1" {
		t.Error("form was reset on failure")
	}
	if len(fx.journal.receipts) != 1 || fx.journal.receipts[0].Status != model.ReceiptFailed {
		t.Errorf("journal = %+v", fx.journal.receipts)
	}
	if len(fx.notifier.events) != 0 {
		t.Error("notified on failure")
	}

	// The next run starts from idle again.
	fx.backend.err = nil
	fx.states = nil
	if _, err := seq.Run(context.Background(), form); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if fx.states[0] != model.StateIdle {
		t.Errorf("states = %v", fx.states)
	}
}

func TestRunBusy(t *testing.T) {
	seq, fx := newFixture(t, model.FlowExchange, nil)
	fx.backend.block = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := seq.Run(context.Background(), &model.TransferData{Amount: "1", SenderAddress: sender})
		done <- err
	}()

	deadline := time.After(2 * time.Second)
	for seq.State() != model.StateSubmitting {
		select {
		case <-deadline:
			t.Fatal("first run never reached submitting")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if _, err := seq.Run(context.Background(), &model.TransferData{Amount: "1", SenderAddress: sender}); !errors.Is(err, model.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	close(fx.backend.block)
	if err := <-done; err != nil {
		t.Fatalf("first run: %v", err)
	}
}
