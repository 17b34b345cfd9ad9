package api

// responses.go provides helper functions for sending HTTP responses from the license API handlers.

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/information-sharing-networks/license-server/internal/logger"
)

// RespondWithErrorResponse maps err to an error response and sends it as a JSON payload.
//
// It logs the full error details server-side and sends a sanitized response to the client
func RespondWithErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse := MapErrorToResponse(err, r)

	reqLogger := logger.ContextRequestLogger(r.Context())
	level := slog.LevelWarn
	if errorResponse.StatusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	reqLogger.Log(r.Context(), level, "Request failed",
		slog.String("error", err.Error()),
		slog.Int("status_code", errorResponse.StatusCode),
		slog.Int("error_code", int(errorResponse.ErrorCode)),
		slog.String("request_id", errorResponse.RequestID),
	)

	RespondWithPayload(w, errorResponse.StatusCode, errorResponse)
}

// RespondWithPayload sends a JSON response with the given status code
func RespondWithPayload(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			// If encoding fails, log it but don't try to send another response
			// (headers are already written)
			slog.Error("Failed to encode JSON response",
				slog.String("error", err.Error()),
			)
		}
	}
}

// HandleMethodNotAllowed returns a 405 error response
func HandleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	RespondWithErrorResponse(w, r, NewMethodNotAllowedError(r.Method))
}
