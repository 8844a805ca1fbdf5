// Package demo is an in-memory wallet backend with a drifting price. It backs
// demo mode and end-to-end tests.
package demo

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	mrand "math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"prxwallet/internal/domain/model"
	"prxwallet/internal/domain/port"
)

var (
	startPRX  = decimal.NewFromInt(100)
	startUSDT = decimal.NewFromInt(1000)
	minPrice  = decimal.RequireFromString("0.01")
)

// AccessTokener is the part of the session the backend needs to tell callers
// apart.
type AccessTokener interface {
	AccessToken(ctx context.Context) (string, error)
}

type account struct {
	user     model.User
	password string
	wallet   model.WalletInfo
	history  []model.Transaction
}

type Backend struct {
	name   string
	tokens AccessTokener
	log    *slog.Logger

	mu         sync.Mutex
	rng        *mrand.Rand
	price      decimal.Decimal
	byEmail    map[string]*account
	byAddress  map[string]*account
	sessions   map[string]*account
	refresh    map[string]*account
	idempotent map[string]model.Receipt
	cancel     context.CancelFunc
}

var _ port.BackendPort = (*Backend)(nil)

func NewBackend(name string, tokens AccessTokener, log *slog.Logger) *Backend {
	return &Backend{
		name:       name,
		tokens:     tokens,
		log:        log,
		rng:        mrand.New(mrand.NewSource(time.Now().UnixNano())),
		price:      decimal.RequireFromString("0.25"),
		byEmail:    make(map[string]*account),
		byAddress:  make(map[string]*account),
		sessions:   make(map[string]*account),
		refresh:    make(map[string]*account),
		idempotent: make(map[string]model.Receipt),
	}
}

func (b *Backend) Name() string { return b.name }

// SetPrice pins the price, e.g. for tests.
func (b *Backend) SetPrice(p decimal.Decimal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.price = p
}

// Start lets the price drift by up to ±1% every interval until ctx ends or
// Close is called.
func (b *Backend) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)
	b.mu.Lock()
	b.cancel = cancel
	b.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.drift()
			}
		}
	}()
}

func (b *Backend) drift() {
	b.mu.Lock()
	defer b.mu.Unlock()

	step := decimal.NewFromFloat(1 + (b.rng.Float64()-0.5)*0.02)
	b.price = b.price.Mul(step).Round(6)
	if b.price.LessThan(minPrice) {
		b.price = minPrice
	}
}

func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	return nil
}

func (b *Backend) Signup(_ context.Context, req model.SignupRequest) (*model.AuthResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, exists := b.byEmail[email]; exists {
		return nil, &model.RequestError{Status: http.StatusConflict, Message: "Email already registered"}
	}

	acc := &account{
		user: model.User{
			ID:            uuid.NewString(),
			Email:         email,
			Name:          req.Name,
			WalletAddress: newAddress(),
		},
		password: req.Password,
	}
	acc.wallet = model.WalletInfo{Address: acc.user.WalletAddress, PRXBalance: startPRX, USDTBalance: startUSDT}
	b.byEmail[email] = acc
	b.byAddress[acc.user.WalletAddress] = acc

	b.log.Info("demo: account created", "backend", b.name, "user_id", acc.user.ID)
	return b.issue(acc), nil
}

func (b *Backend) Login(_ context.Context, creds model.Credentials) (*model.AuthResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.byEmail[strings.ToLower(strings.TrimSpace(creds.Email))]
	if !ok || acc.password != creds.Password {
		return nil, &model.RequestError{Status: http.StatusUnauthorized, Message: "Invalid email or password"}
	}
	return b.issue(acc), nil
}

// issue hands out a fresh token pair. Callers hold mu.
func (b *Backend) issue(acc *account) *model.AuthResult {
	t := model.Tokens{AccessToken: "demo-" + uuid.NewString(), RefreshToken: "demo-r-" + uuid.NewString()}
	b.sessions[t.AccessToken] = acc
	b.refresh[t.RefreshToken] = acc
	return &model.AuthResult{Tokens: t, User: acc.user}
}

// caller resolves the account behind the session token. Callers hold mu.
func (b *Backend) caller(ctx context.Context) (*account, error) {
	if b.tokens == nil {
		return nil, &model.RequestError{Status: http.StatusUnauthorized, Message: "Unauthorized"}
	}
	tok, err := b.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	acc, ok := b.sessions[tok]
	if !ok {
		return nil, &model.RequestError{Status: http.StatusUnauthorized, Message: "Unauthorized"}
	}
	return acc, nil
}

func (b *Backend) Me(ctx context.Context) (*model.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, err := b.caller(ctx)
	if err != nil {
		return nil, err
	}
	u := acc.user
	return &u, nil
}

func (b *Backend) ChangePassword(ctx context.Context, req model.PasswordChange) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, err := b.caller(ctx)
	if err != nil {
		return err
	}
	if acc.password != req.Current {
		return &model.RequestError{Status: http.StatusBadRequest, Message: "Current password is incorrect"}
	}
	acc.password = req.New
	return nil
}

func (b *Backend) WalletInfo(ctx context.Context) (*model.WalletInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, err := b.caller(ctx)
	if err != nil {
		return nil, err
	}
	w := acc.wallet
	return &w, nil
}

func (b *Backend) Price(_ context.Context) (*model.Price, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return &model.Price{Value: b.price, FetchedAt: time.Now()}, nil
}

func (b *Backend) History(ctx context.Context, userID string) ([]model.Transaction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, err := b.caller(ctx)
	if err != nil {
		return nil, err
	}
	if acc.user.ID != userID {
		return nil, &model.RequestError{Status: http.StatusForbidden, Message: "Forbidden"}
	}
	out := make([]model.Transaction, len(acc.history))
	// newest first
	for i, tx := range acc.history {
		out[len(acc.history)-1-i] = tx
	}
	return out, nil
}

func (b *Backend) Submit(ctx context.Context, req model.SubmitRequest) (*model.Receipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, err := b.caller(ctx)
	if err != nil {
		return nil, err
	}
	if rec, ok := b.idempotent[req.IdempotencyKey]; ok && req.IdempotencyKey != "" {
		return &rec, nil
	}
	if req.SenderAddress != acc.user.WalletAddress {
		return nil, &model.RequestError{Status: http.StatusForbidden, Message: "Sender address does not belong to this account"}
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return nil, &model.RequestError{Status: http.StatusBadRequest, Message: "Invalid amount"}
	}

	var received decimal.Decimal
	switch req.Route {
	case model.RouteTransferPRX, model.RouteTransferUSDT:
		received, err = b.transfer(acc, req, amount)
	case model.RouteBuy, model.RouteCardBuy:
		received, err = b.exchange(acc, model.USDT, amount, amount.DivRound(b.price, 6))
	case model.RouteSell, model.RouteCardSell:
		received, err = b.exchange(acc, model.PRX, amount, amount.Mul(b.price).Round(6))
	default:
		err = &model.RequestError{Status: http.StatusNotFound, Message: fmt.Sprintf("Cannot POST %s", req.Route)}
	}
	if err != nil {
		return nil, err
	}

	tx := model.Transaction{
		ID:             uuid.NewString(),
		Amount:         amount,
		ReceivedAmount: received,
		Operation:      req.Route.Operation(),
		SenderID:       acc.user.ID,
		Date:           time.Now(),
	}
	acc.history = append(acc.history, tx)

	rec := model.Receipt{
		Route:      req.Route,
		Amount:     req.Amount,
		Currency:   model.Currency(req.Currency),
		Equivalent: req.Equivalent,
		Sender:     req.SenderAddress,
		Receiver:   req.ReceiverAddress,
		Status:     model.ReceiptSuccess,
		TxID:       tx.ID,
		CreatedAt:  tx.Date,
	}
	if req.IdempotencyKey != "" {
		b.idempotent[req.IdempotencyKey] = rec
	}
	return &rec, nil
}

// transfer moves funds between demo wallets. Callers hold mu.
func (b *Backend) transfer(from *account, req model.SubmitRequest, amount decimal.Decimal) (decimal.Decimal, error) {
	to, ok := b.byAddress[req.ReceiverAddress]
	if !ok {
		return decimal.Zero, &model.RequestError{Status: http.StatusNotFound, Message: "Receiver wallet not found"}
	}

	cur := model.PRX
	if req.Route == model.RouteTransferUSDT {
		cur = model.USDT
	}
	if err := debit(&from.wallet, cur, amount); err != nil {
		return decimal.Zero, err
	}
	credit(&to.wallet, cur, amount)
	return amount, nil
}

// exchange swaps spent of pay for got of its counter currency. Callers hold mu.
func (b *Backend) exchange(acc *account, pay model.Currency, spent, got decimal.Decimal) (decimal.Decimal, error) {
	if !got.IsPositive() {
		return decimal.Zero, &model.RequestError{Status: http.StatusBadRequest, Message: "Amount too small"}
	}
	if err := debit(&acc.wallet, pay, spent); err != nil {
		return decimal.Zero, err
	}
	credit(&acc.wallet, pay.Counter(), got)
	return got, nil
}

func debit(w *model.WalletInfo, c model.Currency, amount decimal.Decimal) error {
	if w.Balance(c).LessThan(amount) {
		return &model.RequestError{Status: http.StatusUnprocessableEntity, Message: "Insufficient " + c.String() + " balance"}
	}
	credit(w, c, amount.Neg())
	return nil
}

func credit(w *model.WalletInfo, c model.Currency, amount decimal.Decimal) {
	if c == model.USDT {
		w.USDTBalance = w.USDTBalance.Add(amount)
		return
	}
	w.PRXBalance = w.PRXBalance.Add(amount)
}

func newAddress() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "PRX" + strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	return "PRX" + hex.EncodeToString(b)
}
