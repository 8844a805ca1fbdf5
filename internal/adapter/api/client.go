// Package api talks to the wallet backend over JSON/HTTP.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"prxwallet/internal/domain/model"
)

const (
	pathLogin          = "/auth/login"
	pathSignup         = "/auth/signup"
	pathMe             = "/auth/me"
	pathChangePassword = "/auth/change-password"
	pathRefresh        = "/auth/refresh"
	pathPrice          = "/transaction/price"
	pathWalletInfo     = "/wallet/info"
	pathUserHistory    = "/transaction/user/"

	maxErrorBody = 64 << 10
)

// Client implements port.BackendPort against the REST backend.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

type Option func(*Client)

// WithTransport replaces the underlying round tripper (tests, proxies).
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if bt, ok := c.http.Transport.(*bearerTransport); ok {
			bt.base = rt
		}
	}
}

// WithRefreshSkew sets how long before expiry an access token is renewed.
func WithRefreshSkew(d time.Duration) Option {
	return func(c *Client) {
		if bt, ok := c.http.Transport.(*bearerTransport); ok && d > 0 {
			bt.skew = d
		}
	}
}

func NewClient(baseURL string, tokens TokenSource, timeout time.Duration, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}

	bt := &bearerTransport{
		base:   http.DefaultTransport,
		tokens: tokens,
		skew:   30 * time.Second,
		log:    logger,
	}
	c.http = &http.Client{Timeout: timeout, Transport: bt}
	bt.refresh = c.refreshTokens

	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, header http.Header) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend request", "method", method, "path", path, "status", resp.StatusCode, "latency", time.Since(start))

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

type errorBody struct {
	Message json.RawMessage `json:"message"`
	Error   string          `json:"error"`
}

// decodeError pulls a human message out of the error body. The backend
// sends message either as a string or as a list of strings.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	re := &model.RequestError{Status: resp.StatusCode}

	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err == nil {
		var s string
		var list []string
		switch {
		case json.Unmarshal(eb.Message, &s) == nil && s != "":
			re.Message = s
		case json.Unmarshal(eb.Message, &list) == nil && len(list) > 0:
			re.Message = strings.Join(list, "; ")
		case eb.Error != "":
			re.Message = eb.Error
		}
	}
	if re.Message == "" {
		re.Message = http.StatusText(resp.StatusCode)
	}
	return re
}

func (c *Client) refreshTokens(ctx context.Context, refreshToken string) (*model.Tokens, error) {
	var t model.Tokens
	in := map[string]string{"refresh_token": refreshToken}
	if err := c.do(public(ctx), http.MethodPost, pathRefresh, in, &t, nil); err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	if t.AccessToken == "" {
		return nil, fmt.Errorf("refresh token: empty access token")
	}
	return &t, nil
}
