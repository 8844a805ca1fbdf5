package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"prxwallet/internal/application/session"
	"prxwallet/internal/application/validation"
	"prxwallet/internal/domain/model"
	"prxwallet/internal/domain/port"
)

type AuthUseCase struct {
	backend   port.BackendPort
	session   *session.Session
	validator *validation.Validator
	logger    *slog.Logger
	onChange  []func(context.Context) error
}

func NewAuthUseCase(backend port.BackendPort, sess *session.Session, val *validation.Validator, logger *slog.Logger) *AuthUseCase {
	return &AuthUseCase{
		backend:   backend,
		session:   sess,
		validator: val,
		logger:    logger,
	}
}

// OnSessionChange registers fn to run after every login and logout, e.g.
// to drop reads cached for the previous user.
func (uc *AuthUseCase) OnSessionChange(fn func(context.Context) error) {
	uc.onChange = append(uc.onChange, fn)
}

func (uc *AuthUseCase) changed(ctx context.Context) {
	for _, fn := range uc.onChange {
		if err := fn(ctx); err != nil {
			uc.logger.Warn("session change hook failed", "error", err)
		}
	}
}

func (uc *AuthUseCase) Login(ctx context.Context, form validation.LoginForm) (*model.User, error) {
	if err := uc.validator.Struct(form); err != nil {
		return nil, err
	}

	res, err := uc.backend.Login(ctx, model.Credentials{Email: form.Email, Password: form.Password})
	if err != nil {
		return nil, fmt.Errorf("failed to log in: %w", err)
	}
	return uc.persist(ctx, res)
}

func (uc *AuthUseCase) Signup(ctx context.Context, form validation.SignupForm) (*model.User, error) {
	if err := uc.validator.Struct(form); err != nil {
		return nil, err
	}

	res, err := uc.backend.Signup(ctx, model.SignupRequest{Name: form.Name, Email: form.Email, Password: form.Password})
	if err != nil {
		return nil, fmt.Errorf("failed to sign up: %w", err)
	}
	return uc.persist(ctx, res)
}

// persist stores the tokens, then the user. Some backends answer auth
// calls with tokens only, in which case the profile is fetched.
func (uc *AuthUseCase) persist(ctx context.Context, res *model.AuthResult) (*model.User, error) {
	if err := uc.session.SetTokens(ctx, res.Tokens); err != nil {
		return nil, err
	}

	user := res.User
	if user.ID == "" || user.WalletAddress == "" {
		me, err := uc.backend.Me(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load profile: %w", err)
		}
		user = *me
	}

	if err := uc.session.SetUser(ctx, user); err != nil {
		return nil, err
	}
	uc.changed(ctx)
	uc.logger.Info("logged in", "user_id", user.ID)
	return &user, nil
}

func (uc *AuthUseCase) Logout(ctx context.Context) error {
	if err := uc.session.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	uc.changed(ctx)
	uc.logger.Info("logged out")
	return nil
}

// Me fetches the profile and refreshes the stored identity.
func (uc *AuthUseCase) Me(ctx context.Context) (*model.User, error) {
	if !uc.session.LoggedIn(ctx) {
		return nil, model.ErrNotLoggedIn
	}
	me, err := uc.backend.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if err := uc.session.SetUser(ctx, *me); err != nil {
		return nil, err
	}
	return me, nil
}

func (uc *AuthUseCase) ChangePassword(ctx context.Context, form validation.ChangePasswordForm) error {
	if err := uc.validator.Struct(form); err != nil {
		return err
	}
	if !uc.session.LoggedIn(ctx) {
		return model.ErrNotLoggedIn
	}
	if err := uc.backend.ChangePassword(ctx, model.PasswordChange{Current: form.Current, New: form.New}); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}
	return nil
}
