// Package session is the explicit client session: tokens, identity and
// lock flags kept in the secure store and handed to whoever needs them.
package session

import (
	"context"
	"fmt"
	"strconv"

	"prxwallet/internal/domain/model"
	"prxwallet/internal/domain/port"
)

// Secure store keys.
const (
	KeyAccessToken      = "access_token"
	KeyRefreshToken     = "refresh_token"
	KeyUserID           = "user_id"
	KeyWalletAddress    = "wallet_address"
	KeyAppLocked        = "app_locked"
	KeyBiometricEnabled = "biometric_enabled"
	KeyPinHash          = "pin_hash"
)

type Session struct {
	store port.SecretStore
}

func New(store port.SecretStore) *Session {
	return &Session{store: store}
}

// Store exposes the underlying secure store for components that keep their
// own keys in it.
func (s *Session) Store() port.SecretStore { return s.store }

func (s *Session) AccessToken(ctx context.Context) (string, error) {
	return s.store.Get(ctx, KeyAccessToken)
}

func (s *Session) RefreshToken(ctx context.Context) (string, error) {
	return s.store.Get(ctx, KeyRefreshToken)
}

func (s *Session) SetTokens(ctx context.Context, t model.Tokens) error {
	if err := s.store.Set(ctx, KeyAccessToken, t.AccessToken); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}
	if t.RefreshToken == "" {
		return nil
	}
	if err := s.store.Set(ctx, KeyRefreshToken, t.RefreshToken); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

// SetUser remembers who is logged in and which wallet they send from.
func (s *Session) SetUser(ctx context.Context, u model.User) error {
	if err := s.store.Set(ctx, KeyUserID, u.ID); err != nil {
		return fmt.Errorf("store user id: %w", err)
	}
	if err := s.store.Set(ctx, KeyWalletAddress, u.WalletAddress); err != nil {
		return fmt.Errorf("store wallet address: %w", err)
	}
	return nil
}

func (s *Session) UserID(ctx context.Context) (string, error) {
	id, err := s.store.Get(ctx, KeyUserID)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", model.ErrNotLoggedIn
	}
	return id, nil
}

func (s *Session) WalletAddress(ctx context.Context) (string, error) {
	return s.store.Get(ctx, KeyWalletAddress)
}

func (s *Session) LoggedIn(ctx context.Context) bool {
	tok, err := s.AccessToken(ctx)
	return err == nil && tok != ""
}

func (s *Session) AppLocked(ctx context.Context) bool {
	return s.flag(ctx, KeyAppLocked)
}

func (s *Session) SetAppLocked(ctx context.Context, v bool) error {
	return s.store.Set(ctx, KeyAppLocked, strconv.FormatBool(v))
}

func (s *Session) BiometricEnabled(ctx context.Context) bool {
	return s.flag(ctx, KeyBiometricEnabled)
}

func (s *Session) SetBiometricEnabled(ctx context.Context, v bool) error {
	return s.store.Set(ctx, KeyBiometricEnabled, strconv.FormatBool(v))
}

func (s *Session) flag(ctx context.Context, key string) bool {
	v, err := s.store.Get(ctx, key)
	if err != nil {
		return false
	}
	b, _ := strconv.ParseBool(v)
	return b
}

// Clear forgets tokens and identity. Device settings (PIN, flags) stay.
func (s *Session) Clear(ctx context.Context) error {
	return s.store.Delete(ctx, KeyAccessToken, KeyRefreshToken, KeyUserID, KeyWalletAddress)
}
