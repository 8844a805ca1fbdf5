package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"prxwallet/internal/application/usecase"
	"prxwallet/internal/domain/model"
)

const defaultReceiptLimit = 50

type WalletHandler struct {
	useCase *usecase.WalletUseCase
	logger  *slog.Logger
}

func NewWalletHandler(useCase *usecase.WalletUseCase, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{
		useCase: useCase,
		logger:  logger,
	}
}

func (h *WalletHandler) LatestPrice(w http.ResponseWriter, r *http.Request) {
	price, err := h.useCase.Price(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, price)
}

type quoteResponse struct {
	Amount     string         `json:"amount"`
	Currency   model.Currency `json:"currency"`
	Equivalent string         `json:"equivalent"`
	To         model.Currency `json:"to"`
}

// Quote handles GET /quote?amount=&currency=. Bad input is answered with
// the "0" sentinel, not an error.
func (h *WalletHandler) Quote(w http.ResponseWriter, r *http.Request) {
	amount := r.URL.Query().Get("amount")
	cur := model.Currency(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("currency"))))
	if cur == "" {
		cur = model.PRX
	}

	eq, err := h.useCase.Quote(r.Context(), amount, cur)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, quoteResponse{Amount: amount, Currency: cur, Equivalent: eq, To: cur.Counter()})
}

func (h *WalletHandler) Wallet(w http.ResponseWriter, r *http.Request) {
	info, err := h.useCase.WalletInfo(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *WalletHandler) History(w http.ResponseWriter, r *http.Request) {
	txs, err := h.useCase.History(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (h *WalletHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.useCase.Refresh(r.Context()); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *WalletHandler) Receipts(w http.ResponseWriter, r *http.Request) {
	limit := defaultReceiptLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	receipts, err := h.useCase.Receipts(r.Context(), limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if receipts == nil {
		receipts = []model.Receipt{}
	}
	writeJSON(w, http.StatusOK, receipts)
}
