// Package flow runs a trade form through validation, local authentication,
// confirmation and submission. Transfer, exchange and card payment share the
// same sequence and differ only in the resolved route.
package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"prxwallet/internal/application/conversion"
	"prxwallet/internal/application/validation"
	"prxwallet/internal/domain/model"
	"prxwallet/internal/domain/port"
)

const EventSubmitted = "submission.succeeded"

// Submitter issues the trade mutation.
type Submitter interface {
	Submit(ctx context.Context, req model.SubmitRequest) (*model.Receipt, error)
}

// Reader supplies the price snapshot for the summary and refetches reads
// after a successful submit.
type Reader interface {
	Price(ctx context.Context) (*model.Price, error)
	Refresh(ctx context.Context) error
}

// Deps are the collaborators of a Sequencer. Authenticator, Notifier and
// Journal are optional.
type Deps struct {
	Validator     *validation.Validator
	Backend       Submitter
	Wallet        Reader
	Authenticator port.Authenticator
	Confirmer     port.Confirmer
	Notifier      port.Notifier
	Journal       port.JournalPort
	Logger        *slog.Logger
}

// Observer is called on every state transition.
type Observer func(from, to model.FlowState)

type Sequencer struct {
	flow model.Flow
	deps Deps

	mu        sync.Mutex
	busy      bool
	state     model.FlowState
	observers []Observer
}

func New(flow model.Flow, deps Deps) *Sequencer {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Sequencer{flow: flow, deps: deps, state: model.StateIdle}
}

func (s *Sequencer) Flow() model.Flow { return s.flow }

func (s *Sequencer) State() model.FlowState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Sequencer) Observe(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

func (s *Sequencer) transition(to model.FlowState) {
	s.mu.Lock()
	from := s.state
	s.state = to
	observers := append([]Observer(nil), s.observers...)
	s.mu.Unlock()

	s.deps.Logger.Debug("flow state", "flow", s.flow, "from", from, "to", to)
	for _, o := range observers {
		o(from, to)
	}
}

// Summarize validates form and builds the confirmation summary without
// submitting anything.
func (s *Sequencer) Summarize(ctx context.Context, form *model.TransferData) (*model.Summary, error) {
	if err := s.deps.Validator.Trade(s.flow, form); err != nil {
		return nil, err
	}
	sum, _, err := s.summarize(ctx, form)
	return sum, err
}

func (s *Sequencer) summarize(ctx context.Context, form *model.TransferData) (*model.Summary, string, error) {
	amount, err := conversion.ParseAmount(form.Amount)
	if err != nil {
		return nil, "", &model.ValidationError{Fields: map[string]string{"amount": err.Error()}}
	}

	input, ok := model.ParseCurrency(string(form.Currency()))
	if !ok {
		return nil, "", &model.ValidationError{Fields: map[string]string{"input_currency": "input_currency must be PRX or USDT"}}
	}
	route, err := model.ResolveRoute(s.flow, input)
	if err != nil {
		return nil, "", err
	}

	price, err := s.deps.Wallet.Price(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load price: %w", err)
	}

	sum := &model.Summary{
		Flow:       s.flow,
		Route:      route,
		Amount:     amount.String(),
		From:       input,
		Equivalent: conversion.Equivalent(amount.String(), input, price.Value),
		To:         input.Counter(),
	}
	if s.flow.NeedsReceiver() {
		sum.Receiver = form.ReceiverAddress
	}
	return sum, amount.String(), nil
}

// Run takes form through the whole sequence. On success the amount and
// receiver are cleared and the sender is kept.
func (s *Sequencer) Run(ctx context.Context, form *model.TransferData) (*model.Receipt, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, model.ErrBusy
	}
	s.busy = true
	prev := s.state
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	if prev != model.StateIdle {
		s.transition(model.StateIdle)
	}

	s.transition(model.StateValidating)
	if err := s.deps.Validator.Trade(s.flow, form); err != nil {
		s.transition(model.StateIdle)
		return nil, err
	}

	sum, amount, err := s.summarize(ctx, form)
	if err != nil {
		s.transition(model.StateIdle)
		return nil, err
	}

	if a := s.deps.Authenticator; a != nil && a.Available(ctx) {
		s.transition(model.StateAuthenticating)
		if err := a.Authenticate(ctx, fmt.Sprintf("Confirm %s of %s %s", s.flow, sum.Amount, sum.From)); err != nil {
			s.transition(model.StateIdle)
			if errors.Is(err, model.ErrAuthentication) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", model.ErrAuthentication, err)
		}
	}

	s.transition(model.StateConfirming)
	ok, err := s.deps.Confirmer.Confirm(ctx, *sum)
	if err != nil {
		s.transition(model.StateIdle)
		return nil, fmt.Errorf("failed to confirm: %w", err)
	}
	if !ok {
		s.transition(model.StateIdle)
		return nil, model.ErrCanceled
	}

	s.transition(model.StateSubmitting)
	req := model.SubmitRequest{
		Route:           sum.Route,
		IdempotencyKey:  uuid.NewString(),
		Amount:          amount,
		Currency:        string(sum.From),
		Equivalent:      sum.Equivalent,
		SenderAddress:   form.SenderAddress,
		ReceiverAddress: sum.Receiver,
	}

	receipt, err := s.deps.Backend.Submit(ctx, req)
	if err != nil {
		s.record(ctx, failedReceipt(req, err))
		s.transition(model.StateFailed)
		s.deps.Logger.Error("submission failed", "flow", s.flow, "route", req.Route, "error", err)
		if model.IsRequest(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to submit %s: %w", req.Route, err)
	}

	rec := *receipt
	if rec.ID == "" {
		rec.ID = req.IdempotencyKey
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	rec.Status = model.ReceiptSuccess
	s.record(ctx, rec)

	form.Reset()
	s.transition(model.StateSuccess)
	s.deps.Logger.Info("submission succeeded", "flow", s.flow, "route", rec.Route, "tx_id", rec.TxID)

	if n := s.deps.Notifier; n != nil {
		ev := model.Event{
			Type:      EventSubmitted,
			ReceiptID: rec.ID,
			Route:     rec.Route,
			Amount:    rec.Amount,
			Currency:  rec.Currency,
			At:        rec.CreatedAt,
		}
		if err := n.Notify(ctx, ev); err != nil {
			s.deps.Logger.Warn("failed to notify", "receipt_id", rec.ID, "error", err)
		}
	}
	if err := s.deps.Wallet.Refresh(ctx); err != nil {
		s.deps.Logger.Warn("failed to refresh after submit", "error", err)
	}

	return &rec, nil
}

func (s *Sequencer) record(ctx context.Context, r model.Receipt) {
	if s.deps.Journal == nil {
		return
	}
	if err := s.deps.Journal.SaveReceipt(ctx, r); err != nil {
		s.deps.Logger.Error("failed to save receipt", "receipt_id", r.ID, "error", err)
	}
}

func failedReceipt(req model.SubmitRequest, err error) model.Receipt {
	return model.Receipt{
		ID:         req.IdempotencyKey,
		Route:      req.Route,
		Amount:     req.Amount,
		Currency:   model.Currency(req.Currency),
		Equivalent: req.Equivalent,
		Sender:     req.SenderAddress,
		Receiver:   req.ReceiverAddress,
		Status:     model.ReceiptFailed,
		Error:      err.Error(),
		CreatedAt:  time.Now().UTC(),
	}
}
