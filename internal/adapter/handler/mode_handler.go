package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"prxwallet/internal/application/service"
	"prxwallet/internal/domain/model"
)

type ModeHandler struct {
	modeService *service.ModeService
	log         *slog.Logger
}

func NewModeHandler(ms *service.ModeService, log *slog.Logger) *ModeHandler {
	return &ModeHandler{
		modeService: ms,
		log:         log,
	}
}

func (h *ModeHandler) Current(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"mode": h.modeService.GetCurrentMode().String()})
}

// Switch handles POST /mode/{mode}.
func (h *ModeHandler) Switch(w http.ResponseWriter, r *http.Request) {
	mode, ok := model.ParseMode(chi.URLParam(r, "mode"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown mode"})
		return
	}

	currentMode := h.modeService.GetCurrentMode()
	if currentMode == mode {
		h.log.Info("already in requested mode", "mode", mode)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "already in requested mode", "mode": mode.String()})
		return
	}

	h.log.Info("switching mode", "from", currentMode, "to", mode)
	if err := h.modeService.SwitchMode(r.Context(), mode); err != nil {
		h.log.Error("switch mode failed", "from", currentMode, "to", mode, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to switch mode"})
		return
	}

	h.log.Info("mode switched successfully", "new_mode", mode)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "mode": mode.String()})
}
