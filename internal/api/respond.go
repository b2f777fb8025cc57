package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"goodwatch/internal/logging"
	"goodwatch/internal/services"
)

const (
	rateLimitedMessage = "Rate limit exceeded. Please try again in a moment."
	unavailableMessage = "Service temporarily unavailable. Please try again later."
	internalMessage    = "Internal server error"
	maxBodyBytes       = 1 << 16
)

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", logging.Error(err))
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	writeJSON(w, logger, status, ErrorResponse{Error: message})
}

// writeServiceError maps a classified error to a status and a client-safe
// message. Only validation and not-found detail reaches the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, message := errorStatus(err)
	log := logging.WithContext(r.Context(), logger)
	switch {
	case status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable:
		logging.ErrorWithContext(log, "request failed", "request_failed",
			logging.String("route", r.URL.Path),
			logging.String("error_kind", services.Kind(err)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "inspect the wrapped error for the failing component"),
		)
	case status >= http.StatusTooManyRequests:
		log.Info("request degraded",
			logging.String("route", r.URL.Path),
			logging.Int("status", status),
			logging.String("error_kind", services.Kind(err)),
			logging.Bool("retryable", services.Retryable(err)),
		)
	default:
		log.Debug("request rejected",
			logging.String("route", r.URL.Path),
			logging.Int("status", status),
			logging.Error(err),
		)
	}
	writeError(w, logger, status, message)
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest, clientDetail(err)
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, clientDetail(err)
	case errors.Is(err, services.ErrRateLimited):
		return http.StatusTooManyRequests, rateLimitedMessage
	case errors.Is(err, services.ErrUnavailable),
		errors.Is(err, services.ErrTimeout),
		errors.Is(err, services.ErrTransient),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, unavailableMessage
	default:
		return http.StatusInternalServerError, internalMessage
	}
}

// clientDetail keeps the innermost message of a wrapped error chain.
func clientDetail(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		msg = msg[i+2:]
	}
	return msg
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return services.Wrap(services.ErrValidation, "api", "decode", "request body is required", nil)
	}
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return services.Wrap(services.ErrValidation, "api", "decode", "request body is required", nil)
		}
		return services.Wrap(services.ErrValidation, "api", "decode", "invalid JSON body", nil)
	}
	return nil
}
