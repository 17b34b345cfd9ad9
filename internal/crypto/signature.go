// signature.go signs and verifies license payloads.
//
// signatures cover the raw payload bytes (no JWS header) and are returned base64 encoded (standard alphabet, padded),
// which is the format the client applications verify.
package crypto

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Signer holds a private key loaded from configuration.
// It is immutable once created and safe for concurrent use.
type Signer struct {
	privateKey any
	publicKey  any
	algorithm  Algorithm
	keyID      string
}

// NewSigner creates a Signer for an *rsa.PrivateKey or ed25519.PrivateKey.
func NewSigner(privateKey any) (*Signer, error) {
	if privateKey == nil {
		return nil, NewKeyManagementError("private key is nil")
	}

	publicKey, err := PublicKeyOf(privateKey)
	if err != nil {
		return nil, err
	}

	if k, ok := privateKey.(*rsa.PrivateKey); ok {
		if err := k.Validate(); err != nil {
			return nil, WrapKeyManagementError(err, "invalid RSA private key")
		}
	}

	algorithm, err := AlgorithmForKey(privateKey)
	if err != nil {
		return nil, err
	}

	keyID, err := GenerateKeyID(publicKey)
	if err != nil {
		return nil, WrapKeyManagementError(err, "failed to generate key id")
	}

	return &Signer{
		privateKey: privateKey,
		publicKey:  publicKey,
		algorithm:  algorithm,
		keyID:      keyID,
	}, nil
}

// NewSignerFromPEM parses PEM text held in configuration and returns a Signer.
// newlinePlaceholder is the character that was substituted for newlines when the key was stored (see RestorePEMNewlines).
func NewSignerFromPEM(pemText, newlinePlaceholder string) (*Signer, error) {
	if pemText == "" {
		return nil, NewKeyManagementError("private key is not configured")
	}

	privateKey, err := ParsePrivateKeyPEM([]byte(RestorePEMNewlines(pemText, newlinePlaceholder)))
	if err != nil {
		return nil, err
	}
	return NewSigner(privateKey)
}

// Algorithm returns the signing algorithm
func (s *Signer) Algorithm() Algorithm { return s.algorithm }

// KeyID returns the thumbprint based key id of the signing key (as published in the JWK set)
func (s *Signer) KeyID() string { return s.keyID }

// PublicKey returns the public key that verifies signatures created by the signer
func (s *Signer) PublicKey() any { return s.publicKey }

// Sign signs data and returns the base64 encoded signature.
func (s *Signer) Sign(data []byte) (string, error) {
	var (
		sig []byte
		err error
	)

	switch k := s.privateKey.(type) {
	case *rsa.PrivateKey:
		digest := sha256.Sum256(data)
		sig, err = rsa.SignPKCS1v15(rand.Reader, k, crypto.SHA256, digest[:])
	case ed25519.PrivateKey:
		sig = ed25519.Sign(k, data)
	default:
		return "", NewInternalError(fmt.Sprintf("unsupported private key type %T", s.privateKey))
	}
	if err != nil {
		return "", WrapSigningError(err, "failed to sign data")
	}

	return base64.StdEncoding.EncodeToString(sig), nil
}

// Verify checks a base64 encoded signature over data with an RSA or Ed25519 public key.
func Verify(publicKey any, data []byte, signature string) error {
	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return WrapSignatureError(err, "signature is not valid base64")
	}

	switch k := publicKey.(type) {
	case *rsa.PublicKey:
		digest := sha256.Sum256(data)
		if err := rsa.VerifyPKCS1v15(k, crypto.SHA256, digest[:], sig); err != nil {
			return WrapSignatureError(err, "signature verification failed")
		}
	case ed25519.PublicKey:
		if len(k) != ed25519.PublicKeySize {
			return NewKeyManagementError("invalid Ed25519 public key length")
		}
		if !ed25519.Verify(k, data, sig) {
			return NewSignatureError("signature verification failed")
		}
	default:
		return NewKeyManagementError(fmt.Sprintf("unsupported public key type %T", publicKey))
	}

	return nil
}
