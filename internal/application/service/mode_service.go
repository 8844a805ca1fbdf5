package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"prxwallet/internal/domain/model"
	"prxwallet/internal/domain/port"
)

// ModeService holds the live and demo backends and forwards every call to
// the current one.
type ModeService struct {
	backends map[model.DataMode]port.BackendPort
	onSwitch []func(context.Context, model.DataMode) error
	logger   *slog.Logger

	mu          sync.RWMutex
	currentMode model.DataMode
}

var _ port.BackendPort = (*ModeService)(nil)

func NewModeService(live, demo port.BackendPort, initial model.DataMode, logger *slog.Logger) *ModeService {
	backends := map[model.DataMode]port.BackendPort{model.DemoMode: demo}
	if live != nil {
		backends[model.LiveMode] = live
	}
	if _, ok := backends[initial]; !ok {
		initial = model.DemoMode
	}
	return &ModeService{
		backends:    backends,
		currentMode: initial,
		logger:      logger,
	}
}

// OnSwitch registers fn to run after every mode change.
func (s *ModeService) OnSwitch(fn func(context.Context, model.DataMode) error) {
	s.onSwitch = append(s.onSwitch, fn)
}

func (s *ModeService) SwitchMode(ctx context.Context, mode model.DataMode) error {
	if _, ok := s.backends[mode]; !ok {
		return fmt.Errorf("no backend configured for %s mode", mode)
	}

	s.mu.Lock()
	if s.currentMode == mode {
		s.mu.Unlock()
		return nil
	}
	old := s.currentMode
	s.currentMode = mode
	s.mu.Unlock()

	s.logger.Info("mode_service: mode updated", "old", old, "new", mode)
	for _, fn := range s.onSwitch {
		if err := fn(ctx, mode); err != nil {
			return err
		}
	}
	return nil
}

func (s *ModeService) GetCurrentMode() model.DataMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentMode
}

func (s *ModeService) current() port.BackendPort {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.backends[s.currentMode]
}

func (s *ModeService) Login(ctx context.Context, creds model.Credentials) (*model.AuthResult, error) {
	return s.current().Login(ctx, creds)
}

func (s *ModeService) Signup(ctx context.Context, req model.SignupRequest) (*model.AuthResult, error) {
	return s.current().Signup(ctx, req)
}

func (s *ModeService) Me(ctx context.Context) (*model.User, error) {
	return s.current().Me(ctx)
}

func (s *ModeService) ChangePassword(ctx context.Context, req model.PasswordChange) error {
	return s.current().ChangePassword(ctx, req)
}

func (s *ModeService) WalletInfo(ctx context.Context) (*model.WalletInfo, error) {
	return s.current().WalletInfo(ctx)
}

func (s *ModeService) Price(ctx context.Context) (*model.Price, error) {
	return s.current().Price(ctx)
}

func (s *ModeService) History(ctx context.Context, userID string) ([]model.Transaction, error) {
	return s.current().History(ctx, userID)
}

func (s *ModeService) Submit(ctx context.Context, req model.SubmitRequest) (*model.Receipt, error) {
	return s.current().Submit(ctx, req)
}
