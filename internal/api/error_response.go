package api

// error_response.go maps errors from the license, marketplace and crypto packages to HTTP error responses

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/information-sharing-networks/license-server/internal/crypto"
	"github.com/information-sharing-networks/license-server/internal/license"
	"github.com/information-sharing-networks/license-server/internal/logger"
	"github.com/information-sharing-networks/license-server/internal/marketplace"
)

// ErrorResponse is the body of every error response
type ErrorResponse struct {
	// Errors is a message, or a list of FieldError for validation errors
	Errors any `json:"errors" swaggertype:"string" example:"failed to verify license"`

	// ErrorCode is 7000-7999 for technical errors, 8000-8999 for functional errors
	ErrorCode ErrorCode `json:"errorCode" example:"8001"`

	// RequestID identifies the request in the server logs
	RequestID string `json:"requestId,omitempty" example:"host/abcdef-000001"`

	// StatusCode is the HTTP status of the response
	StatusCode int `json:"-"`
}

// MapErrorToResponse maps api, license, marketplace, crypto, or generic errors to an error response.
//
// Server side failures (configuration, signing, internal) are returned with a generic message;
// the full error is logged by RespondWithErrorResponse.
func MapErrorToResponse(err error, r *http.Request) *ErrorResponse {
	requestID := middleware.GetReqID(r.Context())

	var apiErr *ApiError
	if errors.As(err, &apiErr) {
		return errorResponseFromApi(apiErr, requestID)
	}

	var licenseErr *license.LicenseError
	if errors.As(err, &licenseErr) {
		return errorResponseFromLicense(licenseErr, requestID)
	}

	var marketplaceErr *marketplace.Error
	if errors.As(err, &marketplaceErr) {
		code := ErrCodeVerificationFailed
		if marketplaceErr.Code() == marketplace.ErrCodeUnavailable {
			code = ErrCodeMarketplaceUnavailable
		}
		return newErrorResponse(http.StatusBadRequest, code, marketplaceErr.Message(), requestID)
	}

	var cryptoErr *crypto.CryptoError
	if errors.As(err, &cryptoErr) {
		switch cryptoErr.Code() {
		case crypto.ErrCodeKeyManagement:
			return newErrorResponse(http.StatusInternalServerError, ErrCodeConfiguration, "license signing is not configured", requestID)
		case crypto.ErrCodeSigning:
			return newErrorResponse(http.StatusInternalServerError, ErrCodeSigning, "failed to sign license", requestID)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return newErrorResponse(http.StatusServiceUnavailable, ErrCodeInternalError, "request timed out", requestID)
	}

	// fallback - this is not expected - if it does happen, return an internal error response and log the unmapped error
	reqLogger := logger.ContextRequestLogger(r.Context())
	reqLogger.Error("BUG: Unmapped error type in MapErrorToResponse",
		slog.String("error_type", fmt.Sprintf("%T", err)),
		slog.String("error", err.Error()),
		slog.String("request_id", requestID),
	)
	return newErrorResponse(http.StatusInternalServerError, ErrCodeInternalError, "an internal error occurred", requestID)
}

func errorResponseFromApi(err *ApiError, requestID string) *ErrorResponse {
	var statusCode int
	switch err.Code() {
	case ErrCodeMalformedRequest:
		statusCode = http.StatusBadRequest
	case ErrCodeValidation:
		statusCode = http.StatusUnprocessableEntity
	case ErrCodeMethodNotAllowed:
		statusCode = http.StatusMethodNotAllowed
	case ErrCodeRequestTooLarge:
		statusCode = http.StatusRequestEntityTooLarge
	case ErrCodeRateLimitExceeded:
		statusCode = http.StatusTooManyRequests
	default:
		return newErrorResponse(http.StatusInternalServerError, ErrCodeInternalError, "an internal error occurred", requestID)
	}

	resp := newErrorResponse(statusCode, err.Code(), err.Message(), requestID)
	if len(err.Details()) > 0 {
		resp.Errors = err.Details()
	}
	return resp
}

func errorResponseFromLicense(err *license.LicenseError, requestID string) *ErrorResponse {
	switch err.Code() {
	case license.ErrCodeUnknownProduct:
		return newErrorResponse(http.StatusBadRequest, ErrCodeUnknownProduct, err.Message(), requestID)
	case license.ErrCodeValidation:
		resp := newErrorResponse(http.StatusUnprocessableEntity, ErrCodeValidation, err.Message(), requestID)
		if err.Field() != "" {
			resp.Errors = []FieldError{{Field: err.Field(), Message: err.Message()}}
		}
		return resp
	case license.ErrCodeMalformedEnvelope, license.ErrCodeInvalidSignature, license.ErrCodeInvalidPayload:
		return newErrorResponse(http.StatusBadRequest, ErrCodeInvalidLicense, err.Message(), requestID)
	case license.ErrCodeConfiguration:
		return newErrorResponse(http.StatusInternalServerError, ErrCodeConfiguration, "license signing is not configured", requestID)
	case license.ErrCodeSigning:
		return newErrorResponse(http.StatusInternalServerError, ErrCodeSigning, "failed to sign license", requestID)
	default:
		return newErrorResponse(http.StatusInternalServerError, ErrCodeInternalError, "an internal error occurred", requestID)
	}
}

func newErrorResponse(statusCode int, code ErrorCode, msg, requestID string) *ErrorResponse {
	return &ErrorResponse{
		Errors:     msg,
		ErrorCode:  code,
		RequestID:  requestID,
		StatusCode: statusCode,
	}
}
