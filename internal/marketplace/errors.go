package marketplace

import "fmt"

// ErrorCode classifies marketplace verification failures.
type ErrorCode string

const (
	// ErrCodeRejected means the marketplace answered and the license is not valid for the product
	ErrCodeRejected ErrorCode = "rejected"

	// ErrCodeUnavailable means the marketplace could not be reached or returned a server error
	ErrCodeUnavailable ErrorCode = "unavailable"
)

// Error is returned by Client.VerifyLicense for every failed verification.
// Both codes are verification failures from the caller's point of view.
type Error struct {
	code    ErrorCode
	message string
	status  int
	wrapped error

	// temporary failures are retried
	temporary bool
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrapped)
	}
	return e.message
}

func (e *Error) Code() ErrorCode { return e.code }

// Message is the caller facing description (it never includes the wrapped transport error)
func (e *Error) Message() string { return e.message }

// StatusCode is the marketplace HTTP status, 0 when no response was received
func (e *Error) StatusCode() int { return e.status }

func (e *Error) Unwrap() error { return e.wrapped }

func NewRejectedError(status int, msg string) error {
	return &Error{code: ErrCodeRejected, message: msg, status: status}
}

func NewUnavailableError(status int, msg string) error {
	return &Error{code: ErrCodeUnavailable, message: msg, status: status}
}

func WrapUnavailableError(err error, msg string) error {
	return &Error{code: ErrCodeUnavailable, message: msg, wrapped: err}
}

// newTemporaryError is an unavailable error for transport failures and server errors, which are worth retrying
func newTemporaryError(err error, status int, msg string) error {
	return &Error{code: ErrCodeUnavailable, message: msg, status: status, wrapped: err, temporary: true}
}
