package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"prxwallet/internal/domain/port"
)

const (
	IdempotencyHeader   = "Idempotency-Key"
	IdempotencyCacheTTL = 24 * time.Hour
	LockTimeout         = 30 * time.Second

	idempotencyPrefix = "idempotency:"
	lockPrefix        = "lock:"
)

type cachedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// responseRecorder captures the status and body so a successful response
// can be replayed.
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func (rw *responseRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseRecorder) Write(b []byte) (int, error) {
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}

// Idempotency replays the stored 2xx response for a repeated
// Idempotency-Key and rejects a concurrent duplicate with 409. Requests
// without the header pass through.
func Idempotency(cache port.CachePort, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyHeader)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			cacheKey := idempotencyPrefix + r.URL.Path + ":" + key
			lockKey := lockPrefix + r.URL.Path + ":" + key

			data, err := cache.Get(ctx, cacheKey)
			if err != nil {
				logger.Warn("idempotency lookup failed", "key", key, "error", err)
			} else if data != nil {
				var cached cachedResponse
				if err := json.Unmarshal(data, &cached); err == nil {
					logger.Info("idempotency cache hit", "key", key)
					w.Header().Set("Content-Type", "application/json")
					w.Header().Set("X-Idempotency-Hit", "true")
					w.WriteHeader(cached.Status)
					_, _ = w.Write(cached.Body)
					return
				}
			}

			acquired, err := cache.Acquire(ctx, lockKey, LockTimeout)
			if err != nil {
				logger.Error("idempotency lock failed", "key", key, "error", err)
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
				return
			}
			if !acquired {
				logger.Warn("concurrent request with same idempotency key", "key", key)
				writeJSON(w, http.StatusConflict, errorResponse{Error: "a request with this idempotency key is being processed"})
				return
			}
			defer func() {
				if err := cache.Delete(ctx, lockKey); err != nil {
					logger.Warn("failed to release idempotency lock", "key", key, "error", err)
				}
			}()

			rec := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.statusCode < 200 || rec.statusCode >= 300 {
				return
			}
			payload, err := json.Marshal(cachedResponse{Status: rec.statusCode, Body: bytes.TrimSpace(rec.body.Bytes())})
			if err != nil {
				return
			}
			if err := cache.Set(ctx, cacheKey, payload, IdempotencyCacheTTL); err != nil {
				logger.Warn("failed to cache response", "key", key, "error", err)
			}
		})
	}
}

// RequestLogger logs one line per request.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
