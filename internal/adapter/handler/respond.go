package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"prxwallet/internal/domain/model"
)

type errorResponse struct {
	Error    string            `json:"error"`
	Fields   map[string]string `json:"fields,omitempty"`
	Upstream int               `json:"upstream_status,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto gateway status codes.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		ve *model.ValidationError
		re *model.RequestError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "validation failed", Fields: ve.Fields})
	case errors.Is(err, model.ErrAuthentication), errors.Is(err, model.ErrNotLoggedIn):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, model.ErrBusy), errors.Is(err, model.ErrCanceled):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, model.ErrNoJournal):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.As(err, &re):
		logger.Warn("backend rejected request", "status", re.Status, "message", re.Message)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: re.Message, Upstream: re.Status})
	default:
		logger.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
