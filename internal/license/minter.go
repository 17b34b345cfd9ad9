package license

import (
	"errors"

	"github.com/information-sharing-networks/license-server/internal/crypto"
)

// Minter signs license payloads with the configured private key.
// The key is loaded once and never changes, so a Minter is safe for concurrent use.
type Minter struct {
	signer *crypto.Signer
}

// NewMinter returns a Minter for signer. A nil signer (no key configured) is a configuration error.
func NewMinter(signer *crypto.Signer) (*Minter, error) {
	if signer == nil {
		return nil, NewConfigurationError("license signing key is not configured")
	}
	return &Minter{signer: signer}, nil
}

// NewMinterFromPEM parses the PEM private key held in configuration (see crypto.RestorePEMNewlines) and returns a Minter.
func NewMinterFromPEM(pemText, newlinePlaceholder string) (*Minter, error) {
	signer, err := crypto.NewSignerFromPEM(pemText, newlinePlaceholder)
	if err != nil {
		return nil, WrapConfigurationError(err, "failed to load license signing key")
	}
	return NewMinter(signer)
}

// Signer returns the underlying signer (used to publish the public key)
func (m *Minter) Signer() *crypto.Signer { return m.signer }

// Sign signs canonical payload data and returns the license without the trial flag.
func (m *Minter) Sign(data string) (License, error) {
	sig, err := m.signer.Sign([]byte(data))
	if err != nil {
		var cryptoErr *crypto.CryptoError
		if errors.As(err, &cryptoErr) && cryptoErr.Code() == crypto.ErrCodeKeyManagement {
			return License{}, WrapConfigurationError(err, "license signing key cannot be used")
		}
		return License{}, WrapSigningError(err, "failed to sign license")
	}

	return License{Data: data, Sig: sig}, nil
}

// Mint canonicalizes and signs a payload.
// The returned license carries the payload scheme and the trial flag read from the payload.
func (m *Minter) Mint(p Payload) (License, error) {
	data, err := p.Canonical()
	if err != nil {
		return License{}, err
	}

	l, err := m.Sign(data)
	if err != nil {
		return License{}, err
	}

	l.Scheme = p.Scheme
	l.IsTrial = p.IsTrial()
	return l, nil
}
