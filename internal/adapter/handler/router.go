package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"prxwallet/internal/domain/model"
	"prxwallet/internal/domain/port"
)

type Handlers struct {
	Health *HealthHandler
	Auth   *AuthHandler
	Wallet *WalletHandler
	Trade  *TradeHandler
	Mode   *ModeHandler
}

// NewRouter mounts the gateway routes. Trade routes sit behind the
// idempotency middleware.
func NewRouter(h Handlers, cache port.CachePort, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(logger))

	r.Get("/health", h.Health.Check)
	if h.Auth != nil {
		r.Post("/auth/signup", h.Auth.Signup)
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/logout", h.Auth.Logout)
		r.Get("/me", h.Auth.Me)
	}

	r.Get("/prices/latest", h.Wallet.LatestPrice)
	r.Get("/quote", h.Wallet.Quote)
	r.Get("/wallet", h.Wallet.Wallet)
	r.Get("/history", h.Wallet.History)
	r.Post("/refresh", h.Wallet.Refresh)
	r.Get("/receipts", h.Wallet.Receipts)

	r.Group(func(r chi.Router) {
		r.Use(Idempotency(cache, logger))
		r.Post("/transfer", h.Trade.Flow(model.FlowTransfer))
		r.Post("/exchange", h.Trade.Flow(model.FlowExchange))
		r.Post("/card", h.Trade.Flow(model.FlowCard))
	})

	if h.Mode != nil {
		r.Get("/mode", h.Mode.Current)
		r.Post("/mode/{mode}", h.Mode.Switch)
	}
	return r
}
