package api

// errors.go defines the error codes returned by the license API

import "fmt"

// ApiError represents a structured error raised at the HTTP boundary.
type ApiError struct {
	// code is the API error code
	code ErrorCode

	// message is a human-readable error message
	message string

	// details lists the fields that failed validation (validation errors only)
	details []FieldError

	// wrapped is the optional underlying error
	wrapped error
}

func (e *ApiError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrapped)
	}
	return e.message
}

func (e *ApiError) Code() ErrorCode       { return e.code }
func (e *ApiError) Message() string       { return e.message }
func (e *ApiError) Details() []FieldError { return e.details }
func (e *ApiError) Unwrap() error         { return e.wrapped }

// ErrorCode is returned in the errorCode field of error responses.
//
//   - 7000-7999 technical errors: the request could not be processed (bad input, server problem).
//   - 8000-8999 functional errors: the request was valid but no license can be issued for it.
type ErrorCode int

const (
	// ErrCodeMalformedRequest is used when the request body is not valid JSON
	ErrCodeMalformedRequest ErrorCode = 7001

	// ErrCodeValidation is used when the request body does not match the request schema
	ErrCodeValidation ErrorCode = 7002

	// ErrCodeMethodNotAllowed is used when a license endpoint is called with a method other than POST
	ErrCodeMethodNotAllowed ErrorCode = 7003

	// ErrCodeRequestTooLarge is used when the request body exceeds MAX_REQUEST_SIZE
	// - this is only used in the middleware
	ErrCodeRequestTooLarge ErrorCode = 7004

	// ErrCodeRateLimitExceeded is used when the rate limit is exceeded
	// - this is only used in the middleware
	ErrCodeRateLimitExceeded ErrorCode = 7005

	// ErrCodeInternalError is used when an internal server error occurs
	ErrCodeInternalError ErrorCode = 7006

	// ErrCodeConfiguration is used when the signing key is missing or invalid
	ErrCodeConfiguration ErrorCode = 7007

	// ErrCodeSigning is used when the license could not be signed
	ErrCodeSigning ErrorCode = 7008

	// ErrCodeInvalidLicense is used when a license string cannot be decoded or verified
	ErrCodeInvalidLicense ErrorCode = 7009

	// ErrCodeVerificationFailed is used when the marketplace does not confirm the purchase
	ErrCodeVerificationFailed ErrorCode = 8001

	// ErrCodeUnknownProduct is used when the productId is not in the product catalog
	ErrCodeUnknownProduct ErrorCode = 8002

	// ErrCodeMarketplaceUnavailable is used when the marketplace could not be reached.
	// The purchase is not verified, so this is reported like ErrCodeVerificationFailed (400).
	ErrCodeMarketplaceUnavailable ErrorCode = 8003
)

// NewMalformedRequestError creates an error for request bodies that cannot be parsed.
func NewMalformedRequestError(msg string) error {
	return &ApiError{code: ErrCodeMalformedRequest, message: msg}
}

// WrapMalformedRequestError wraps an existing error as a malformed request error.
func WrapMalformedRequestError(err error, msg string) error {
	return &ApiError{code: ErrCodeMalformedRequest, message: msg, wrapped: err}
}

// NewValidationError creates a schema validation error listing the invalid fields.
func NewValidationError(msg string, details ...FieldError) error {
	return &ApiError{code: ErrCodeValidation, message: msg, details: details}
}

// NewMethodNotAllowedError creates an error for requests using an unsupported method.
func NewMethodNotAllowedError(method string) error {
	return &ApiError{code: ErrCodeMethodNotAllowed, message: fmt.Sprintf("method %s not allowed", method)}
}

// NewRequestTooLargeError creates a request too large error.
func NewRequestTooLargeError(msg string) error {
	return &ApiError{code: ErrCodeRequestTooLarge, message: msg}
}

// NewRateLimitError creates a rate limit exceeded error.
func NewRateLimitError(msg string) error {
	return &ApiError{code: ErrCodeRateLimitExceeded, message: msg}
}

// WrapInternalError wraps an existing error as an internal error.
func WrapInternalError(err error, msg string) error {
	return &ApiError{code: ErrCodeInternalError, message: msg, wrapped: err}
}
