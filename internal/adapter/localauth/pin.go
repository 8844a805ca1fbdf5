// Package localauth is the on-device identity check that gates submissions.
// A PIN enrolled on this device stands in for the platform biometric prompt.
package localauth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"prxwallet/internal/application/session"
	"prxwallet/internal/domain/model"
)

var ErrNoPin = errors.New("no PIN enrolled")

// PinSource asks the user for their PIN.
type PinSource func(ctx context.Context, reason string) (string, error)

// StaticPin answers with a PIN that was collected up front, e.g. from a
// request header.
func StaticPin(pin string) PinSource {
	return func(context.Context, string) (string, error) { return pin, nil }
}

type PinAuthenticator struct {
	sess   *session.Session
	source PinSource
}

func NewPinAuthenticator(sess *session.Session, source PinSource) *PinAuthenticator {
	return &PinAuthenticator{sess: sess, source: source}
}

// Available reports whether a PIN is enrolled and the check is switched on.
func (a *PinAuthenticator) Available(ctx context.Context) bool {
	hash, err := a.sess.Store().Get(ctx, session.KeyPinHash)
	return err == nil && hash != "" && a.sess.BiometricEnabled(ctx)
}

func (a *PinAuthenticator) Authenticate(ctx context.Context, reason string) error {
	hash, err := a.sess.Store().Get(ctx, session.KeyPinHash)
	if err != nil {
		return fmt.Errorf("load pin: %w", err)
	}
	if hash == "" {
		return model.ErrAuthentication
	}

	pin, err := a.source(ctx, reason)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrAuthentication, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return model.ErrAuthentication
		}
		return fmt.Errorf("verify pin: %w", err)
	}
	return nil
}

// Unlock asks for the PIN when the app lock is on.
func (a *PinAuthenticator) Unlock(ctx context.Context) error {
	if !a.sess.AppLocked(ctx) {
		return nil
	}
	return a.Authenticate(ctx, "prxwallet is locked")
}

// SetAppLock turns the startup PIN check on or off. Turning it on needs an
// enrolled PIN.
func SetAppLock(ctx context.Context, sess *session.Session, on bool) error {
	if on {
		hash, err := sess.Store().Get(ctx, session.KeyPinHash)
		if err != nil {
			return fmt.Errorf("load pin: %w", err)
		}
		if hash == "" {
			return ErrNoPin
		}
	}
	return sess.SetAppLocked(ctx, on)
}

// Enroll stores the PIN hash and turns the check on.
func Enroll(ctx context.Context, sess *session.Session, pin string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash pin: %w", err)
	}
	if err := sess.Store().Set(ctx, session.KeyPinHash, string(hash)); err != nil {
		return fmt.Errorf("store pin: %w", err)
	}
	return sess.SetBiometricEnabled(ctx, true)
}

// Disable removes the PIN and turns off both the check and the app lock.
func Disable(ctx context.Context, sess *session.Session) error {
	if err := sess.Store().Delete(ctx, session.KeyPinHash); err != nil {
		return err
	}
	if err := sess.SetAppLocked(ctx, false); err != nil {
		return err
	}
	return sess.SetBiometricEnabled(ctx, false)
}
