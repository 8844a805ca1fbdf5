package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"

	"prxwallet/internal/domain/model"
)

// TokenSource hands out and stores bearer tokens. The session implements it.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) (string, error)
	SetTokens(ctx context.Context, t model.Tokens) error
}

type refreshFunc func(ctx context.Context, refreshToken string) (*model.Tokens, error)

// bearerTransport attaches the access token to every private request. A
// token close to expiry is refreshed up front; a 401 triggers one refresh
// and one retry.
type bearerTransport struct {
	base    http.RoundTripper
	tokens  TokenSource
	refresh refreshFunc
	skew    time.Duration
	log     *slog.Logger

	mu sync.Mutex
}

type publicKey struct{}

// public marks a request that goes out without a bearer token. The refresh
// call is one, so renew never re-enters the transport.
func public(ctx context.Context) context.Context {
	return context.WithValue(ctx, publicKey{}, true)
}

func isPublic(ctx context.Context) bool {
	v, _ := ctx.Value(publicKey{}).(bool)
	return v
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if isPublic(req.Context()) || t.tokens == nil {
		return t.base.RoundTrip(req)
	}

	ctx := req.Context()
	token, err := t.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	if token != "" && expiresWithin(token, t.skew) {
		if fresh, err := t.renew(ctx, token); err == nil {
			token = fresh
		} else {
			t.log.Warn("proactive token refresh failed", "error", err)
		}
	}

	resp, err := t.base.RoundTrip(withBearer(req, token))
	if err != nil || resp.StatusCode != http.StatusUnauthorized || token == "" {
		return resp, err
	}
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	fresh, err := t.renew(ctx, token)
	if err != nil {
		t.log.Warn("token refresh after 401 failed", "path", req.URL.Path, "error", err)
		return resp, nil
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	retry := withBearer(req, fresh)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		retry.Body = body
	}
	return t.base.RoundTrip(retry)
}

// renew swaps stale for a new access token. Concurrent callers holding the
// same stale token share one refresh.
func (t *bearerTransport) renew(ctx context.Context, stale string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	current, err := t.tokens.AccessToken(ctx)
	if err != nil {
		return "", err
	}
	if current != "" && current != stale {
		return current, nil
	}

	rt, err := t.tokens.RefreshToken(ctx)
	if err != nil {
		return "", err
	}
	if rt == "" {
		return "", model.ErrNotLoggedIn
	}

	fresh, err := t.refresh(ctx, rt)
	if err != nil {
		return "", err
	}
	if err := t.tokens.SetTokens(ctx, *fresh); err != nil {
		return "", err
	}
	t.log.Debug("access token refreshed")
	return fresh.AccessToken, nil
}

func withBearer(req *http.Request, token string) *http.Request {
	r := req.Clone(req.Context())
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

// expiresWithin reads exp from a JWT without verifying it. Opaque tokens
// never count as expiring.
func expiresWithin(token string, d time.Duration) bool {
	claims := &jwt.StandardClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return false
	}
	if claims.ExpiresAt == 0 {
		return false
	}
	return time.Until(time.Unix(claims.ExpiresAt, 0)) < d
}
