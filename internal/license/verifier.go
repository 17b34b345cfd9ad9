package license

import (
	"strings"
	"time"

	"github.com/information-sharing-networks/license-server/internal/crypto"
)

// VerifiedLicense is a license whose signature has been checked.
type VerifiedLicense struct {
	Scheme  Scheme
	Framing Framing

	// Data is the signed payload
	Data string

	// Record is set for structured payloads
	Record *Record

	// LicenseKey is the marketplace license key (purchases only)
	LicenseKey string

	IsTrial   bool
	ProductID string

	// ExpiresAt is set for trials
	ExpiresAt *time.Time
}

// Expired reports whether a trial license has expired at now. Purchased licenses never expire.
func (v *VerifiedLicense) Expired(now time.Time) bool {
	return v.ExpiresAt != nil && !now.Before(*v.ExpiresAt)
}

// Verifier checks licenses with the published public key.
type Verifier struct {
	publicKey any
}

// NewVerifier creates a verifier for an *rsa.PublicKey or ed25519.PublicKey
func NewVerifier(publicKey any) (*Verifier, error) {
	if _, err := crypto.AlgorithmForKey(publicKey); err != nil {
		return nil, WrapConfigurationError(err, "unsupported public key")
	}
	return &Verifier{publicKey: publicKey}, nil
}

// Verify decodes a wire string, checks the signature and parses the payload.
func (v *Verifier) Verify(wire string) (*VerifiedLicense, error) {
	env, err := Decode(wire)
	if err != nil {
		return nil, err
	}

	verified, err := v.VerifyLicense(env.Data, env.Sig)
	if err != nil {
		return nil, err
	}
	verified.Framing = env.Framing
	return verified, nil
}

// VerifyLicense checks sig over data and parses the payload.
func (v *Verifier) VerifyLicense(data, sig string) (*VerifiedLicense, error) {
	if err := crypto.Verify(v.publicKey, []byte(data), sig); err != nil {
		return nil, WrapSignatureError(err, "license signature is not valid")
	}

	payload, err := ParsePayload(data)
	if err != nil {
		return nil, err
	}

	verified := &VerifiedLicense{
		Scheme:  payload.Scheme,
		Data:    data,
		IsTrial: payload.IsTrial(),
	}

	var expDate string
	switch payload.Scheme {
	case SchemeStructured:
		verified.Record = payload.Record
		verified.LicenseKey = payload.Record.LicenseKey
		verified.ProductID = payload.Record.ProductID
		expDate = payload.Record.ExpDate
		if verified.IsTrial && expDate == "" {
			return nil, NewInvalidPayloadError("trial license has no expiry")
		}
	default:
		if verified.IsTrial {
			expDate = strings.TrimPrefix(data, TrialPrefix)
		} else {
			verified.LicenseKey = data
		}
	}

	if expDate != "" {
		expiresAt, err := ParseTimestamp(expDate)
		if err != nil {
			return nil, WrapInvalidPayloadError(err, "invalid trial expiry")
		}
		verified.ExpiresAt = &expiresAt
	}

	return verified, nil
}
