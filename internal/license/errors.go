package license

import "fmt"

type ErrorCode string

const (
	// ErrCodeConfiguration: the signing key is missing or cannot be used. This is a server side fault.
	ErrCodeConfiguration ErrorCode = "configuration"

	// ErrCodeSigning: the signature operation failed (should not happen with a well formed key)
	ErrCodeSigning ErrorCode = "signing"

	// ErrCodeMalformedEnvelope: a wire string could not be split into data and signature
	ErrCodeMalformedEnvelope ErrorCode = "malformed_envelope"

	// ErrCodeUnknownProduct: a product id that is not in the catalog
	ErrCodeUnknownProduct ErrorCode = "unknown_product"

	// ErrCodeValidation: the caller supplied an unusable value (e.g a required product id is missing)
	ErrCodeValidation ErrorCode = "validation"

	// ErrCodeInvalidSignature: the signature does not match the payload
	ErrCodeInvalidSignature ErrorCode = "invalid_signature"

	// ErrCodeInvalidPayload: the signed payload could not be interpreted
	ErrCodeInvalidPayload ErrorCode = "invalid_payload"
)

// LicenseError represents a structured error from the license package
type LicenseError struct {
	code    ErrorCode
	message string

	// field is the request field the error relates to (validation errors only)
	field string

	wrapped error
}

func (e *LicenseError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrapped)
	}
	return e.message
}

func (e *LicenseError) Code() ErrorCode { return e.code }
func (e *LicenseError) Field() string   { return e.field }
func (e *LicenseError) Message() string { return e.message }
func (e *LicenseError) Unwrap() error   { return e.wrapped }

// NewConfigurationError is returned when the private key is absent or unparsable.
func NewConfigurationError(msg string) error {
	return &LicenseError{code: ErrCodeConfiguration, message: msg}
}

// WrapConfigurationError wraps a key loading failure.
func WrapConfigurationError(err error, msg string) error {
	return &LicenseError{code: ErrCodeConfiguration, message: msg, wrapped: err}
}

// WrapSigningError wraps a failure of the underlying crypto operation.
func WrapSigningError(err error, msg string) error {
	return &LicenseError{code: ErrCodeSigning, message: msg, wrapped: err}
}

// NewMalformedEnvelopeError is returned when a wire string cannot be decoded.
func NewMalformedEnvelopeError(msg string) error {
	return &LicenseError{code: ErrCodeMalformedEnvelope, message: msg}
}

// WrapMalformedEnvelopeError wraps a decoding failure of one of the envelope segments.
func WrapMalformedEnvelopeError(err error, msg string) error {
	return &LicenseError{code: ErrCodeMalformedEnvelope, message: msg, wrapped: err}
}

// NewUnknownProductError is returned for product ids that are not in the catalog.
func NewUnknownProductError(productID string) error {
	return &LicenseError{code: ErrCodeUnknownProduct, message: fmt.Sprintf("unknown product: %s", productID), field: "productId"}
}

// NewValidationError creates a validation error for the named request field.
func NewValidationError(field, msg string) error {
	return &LicenseError{code: ErrCodeValidation, message: msg, field: field}
}

// WrapSignatureError wraps a signature verification failure.
func WrapSignatureError(err error, msg string) error {
	return &LicenseError{code: ErrCodeInvalidSignature, message: msg, wrapped: err}
}

// NewInvalidPayloadError is returned when signed data cannot be interpreted as a payload.
func NewInvalidPayloadError(msg string) error {
	return &LicenseError{code: ErrCodeInvalidPayload, message: msg}
}

// WrapInvalidPayloadError wraps a payload parsing failure.
func WrapInvalidPayloadError(err error, msg string) error {
	return &LicenseError{code: ErrCodeInvalidPayload, message: msg, wrapped: err}
}
