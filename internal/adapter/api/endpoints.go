package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"prxwallet/internal/domain/model"
)

func (c *Client) Login(ctx context.Context, creds model.Credentials) (*model.AuthResult, error) {
	var out model.AuthResult
	if err := c.do(public(ctx), http.MethodPost, pathLogin, creds, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Signup(ctx context.Context, req model.SignupRequest) (*model.AuthResult, error) {
	var out model.AuthResult
	if err := c.do(public(ctx), http.MethodPost, pathSignup, req, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var out model.User
	if err := c.do(ctx, http.MethodGet, pathMe, nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ChangePassword(ctx context.Context, req model.PasswordChange) error {
	return c.do(ctx, http.MethodPost, pathChangePassword, req, nil, nil)
}

func (c *Client) WalletInfo(ctx context.Context) (*model.WalletInfo, error) {
	var out model.WalletInfo
	if err := c.do(ctx, http.MethodGet, pathWalletInfo, nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Price(ctx context.Context) (*model.Price, error) {
	var out model.Price
	if err := c.do(ctx, http.MethodGet, pathPrice, nil, &out, nil); err != nil {
		return nil, err
	}
	if out.FetchedAt.IsZero() {
		out.FetchedAt = time.Now()
	}
	return &out, nil
}

func (c *Client) History(ctx context.Context, userID string) ([]model.Transaction, error) {
	var out []model.Transaction
	if err := c.do(ctx, http.MethodGet, pathUserHistory+url.PathEscape(userID), nil, &out, nil); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Transaction{}
	}
	return out, nil
}

type submitResponse struct {
	ID     string `json:"id"`
	TxID   string `json:"tx_id"`
	TxHash string `json:"tx_hash"`
}

// Submit issues the trade mutation for req.Route.
func (c *Client) Submit(ctx context.Context, req model.SubmitRequest) (*model.Receipt, error) {
	key := req.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}
	header := http.Header{"Idempotency-Key": []string{key}}

	var out submitResponse
	if err := c.do(ctx, http.MethodPost, req.Route.Path(), req, &out, header); err != nil {
		return nil, err
	}

	txID := out.TxID
	if txID == "" {
		txID = out.TxHash
	}
	if txID == "" {
		txID = out.ID
	}

	return &model.Receipt{
		Route:      req.Route,
		Amount:     req.Amount,
		Currency:   model.Currency(req.Currency),
		Equivalent: req.Equivalent,
		Sender:     req.SenderAddress,
		Receiver:   req.ReceiverAddress,
		Status:     model.ReceiptSuccess,
		TxID:       txID,
		CreatedAt:  time.Now(),
	}, nil
}
