package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"prxwallet/internal/adapter/confirm"
	"prxwallet/internal/application/usecase"
	"prxwallet/internal/domain/model"
	"prxwallet/internal/domain/port"
)

// PinHeader carries the PIN for the local authentication step.
const PinHeader = "X-Wallet-PIN"

// AuthFactory builds the local authenticator for a request from the PIN the
// caller supplied.
type AuthFactory func(pin string) port.Authenticator

type tradeRequest struct {
	model.TransferData
	Confirmed bool `json:"confirmed"`
}

type confirmationResponse struct {
	ConfirmationRequired bool          `json:"confirmation_required"`
	Summary              model.Summary `json:"summary"`
}

type TradeHandler struct {
	useCase *usecase.WalletUseCase
	auth    AuthFactory
	logger  *slog.Logger
}

func NewTradeHandler(useCase *usecase.WalletUseCase, auth AuthFactory, logger *slog.Logger) *TradeHandler {
	return &TradeHandler{
		useCase: useCase,
		auth:    auth,
		logger:  logger,
	}
}

// Flow serves POST /transfer, /exchange and /card. Without "confirmed" the
// summary comes back with 409 so the caller can show it and resubmit.
func (h *TradeHandler) Flow(f model.Flow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tradeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid body"})
			return
		}
		form := req.TransferData

		if !req.Confirmed {
			sum, err := h.useCase.Summarize(r.Context(), f, &form)
			if err != nil {
				writeError(w, h.logger, err)
				return
			}
			writeJSON(w, http.StatusConflict, confirmationResponse{ConfirmationRequired: true, Summary: *sum})
			return
		}

		opts := []usecase.Option{usecase.WithConfirmer(confirm.Preapproved{})}
		if h.auth != nil {
			opts = append(opts, usecase.WithAuthenticator(h.auth(r.Header.Get(PinHeader))))
		}

		rec, err := h.useCase.Submit(r.Context(), f, &form, opts...)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		h.logger.Info("trade submitted", "flow", f, "route", rec.Route, "receipt_id", rec.ID)
		writeJSON(w, http.StatusOK, rec)
	}
}
