package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"prxwallet/internal/application/conversion"
	"prxwallet/internal/application/flow"
	"prxwallet/internal/application/service"
	"prxwallet/internal/application/session"
	"prxwallet/internal/domain/model"
	"prxwallet/internal/domain/port"
)

// WalletUseCase is what the screens and the gateway talk to: cached reads,
// quotes and trade sequencers bound to the session's wallet.
type WalletUseCase struct {
	wallet  *service.WalletService
	session *session.Session
	deps    flow.Deps
	logger  *slog.Logger
}

// NewWalletUseCase wires the shared sequencer dependencies. deps.Wallet
// defaults to the wallet service.
func NewWalletUseCase(wallet *service.WalletService, sess *session.Session, deps flow.Deps, logger *slog.Logger) *WalletUseCase {
	if deps.Wallet == nil {
		deps.Wallet = wallet
	}
	deps.Logger = logger
	return &WalletUseCase{
		wallet:  wallet,
		session: sess,
		deps:    deps,
		logger:  logger,
	}
}

func (uc *WalletUseCase) Price(ctx context.Context) (*model.Price, error) {
	return uc.wallet.Price(ctx)
}

func (uc *WalletUseCase) WalletInfo(ctx context.Context) (*model.WalletInfo, error) {
	if !uc.session.LoggedIn(ctx) {
		return nil, model.ErrNotLoggedIn
	}
	return uc.wallet.WalletInfo(ctx)
}

// History lists the logged-in user's transactions.
func (uc *WalletUseCase) History(ctx context.Context) ([]model.Transaction, error) {
	userID, err := uc.session.UserID(ctx)
	if err != nil {
		return nil, err
	}
	return uc.wallet.History(ctx, userID)
}

func (uc *WalletUseCase) Refresh(ctx context.Context) error {
	return uc.wallet.Refresh(ctx)
}

// Quote converts amount at the current price. Invalid input yields "0".
func (uc *WalletUseCase) Quote(ctx context.Context, amount string, from model.Currency) (string, error) {
	p, err := uc.wallet.Price(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load price: %w", err)
	}
	return conversion.Quote(amount, from, *p), nil
}

type Option func(*flow.Deps)

// WithConfirmer replaces the confirmer for one sequencer.
func WithConfirmer(c port.Confirmer) Option {
	return func(d *flow.Deps) { d.Confirmer = c }
}

// WithAuthenticator replaces the local authenticator for one sequencer.
func WithAuthenticator(a port.Authenticator) Option {
	return func(d *flow.Deps) { d.Authenticator = a }
}

// Sequencer builds a sequencer for f over the shared dependencies.
func (uc *WalletUseCase) Sequencer(f model.Flow, opts ...Option) *flow.Sequencer {
	deps := uc.deps
	for _, opt := range opts {
		opt(&deps)
	}
	return flow.New(f, deps)
}

// Fill sets the sender to the session's wallet when the form has none.
func (uc *WalletUseCase) Fill(ctx context.Context, form *model.TransferData) error {
	if strings.TrimSpace(form.SenderAddress) != "" {
		return nil
	}
	addr, err := uc.session.WalletAddress(ctx)
	if err != nil {
		return err
	}
	if addr == "" {
		return model.ErrNotLoggedIn
	}
	form.SenderAddress = addr
	return nil
}

// Summarize validates form and returns what the user would confirm.
func (uc *WalletUseCase) Summarize(ctx context.Context, f model.Flow, form *model.TransferData) (*model.Summary, error) {
	if err := uc.Fill(ctx, form); err != nil {
		return nil, err
	}
	return uc.Sequencer(f).Summarize(ctx, form)
}

// Submit runs one trade on a fresh sequencer.
func (uc *WalletUseCase) Submit(ctx context.Context, f model.Flow, form *model.TransferData, opts ...Option) (*model.Receipt, error) {
	if err := uc.Fill(ctx, form); err != nil {
		return nil, err
	}
	return uc.Sequencer(f, opts...).Run(ctx, form)
}

// Receipts lists journaled submissions, newest first.
func (uc *WalletUseCase) Receipts(ctx context.Context, limit int) ([]model.Receipt, error) {
	if uc.deps.Journal == nil {
		return nil, model.ErrNoJournal
	}
	return uc.deps.Journal.ListReceipts(ctx, limit)
}
