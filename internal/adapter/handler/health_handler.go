package handler

import (
	"log/slog"
	"net/http"

	"prxwallet/internal/domain/port"
)

type HealthHandler struct {
	journal port.JournalPort
	cache   port.CachePort
	logger  *slog.Logger
}

// NewHealthHandler checks the cache and, when configured, the journal.
func NewHealthHandler(journal port.JournalPort, cache port.CachePort, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		journal: journal,
		cache:   cache,
		logger:  logger,
	}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	journalStatus := "disabled"
	cacheStatus := "healthy"
	overallStatus := "healthy"

	if h.journal != nil {
		journalStatus = "healthy"
		if err := h.journal.Ping(r.Context()); err != nil {
			journalStatus = "unhealthy"
			overallStatus = "degraded"
			h.logger.Warn("journal health check failed", "error", err)
		}
	}

	if err := h.cache.Ping(r.Context()); err != nil {
		cacheStatus = "unhealthy"
		overallStatus = "degraded"
		h.logger.Warn("cache health check failed", "error", err)
	}

	response := map[string]interface{}{
		"status": overallStatus,
		"checks": map[string]string{
			"journal": journalStatus,
			"cache":   cacheStatus,
		},
	}

	statusCode := http.StatusOK
	if overallStatus == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, statusCode, response)
}
