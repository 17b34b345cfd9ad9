// JWK (JSON Web Key) support for license signing keys
//
// these functions convert raw RSA/Ed25519 keys to JWK format (and vice versa)
// Reference: https://datatracker.ietf.org/doc/html/rfc7517 (JSON Web Key standard)
//
// the server publishes its public key at /.well-known/jwks.json so client applications
// (and licensectl verify --jwks-url) can discover the key used to sign licenses.
// keygen also writes JWK sets alongside the PEM files.

package crypto

import (
	"context"
	"crypto"
	"crypto/ed25519"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"os"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
)

// PublicKeyToJWK converts an RSA or Ed25519 public key to JWK format.
// If keyID is empty the key id is generated from the key thumbprint.
func PublicKeyToJWK(publicKey any, keyID string) (jwk.Key, error) {
	if publicKey == nil {
		return nil, fmt.Errorf("public key is nil")
	}
	return importJWK(publicKey, publicKey, keyID)
}

// PrivateKeyToJWK converts an RSA or Ed25519 private key to JWK format.
// If keyID is empty the key id is generated from the public key thumbprint.
func PrivateKeyToJWK(privateKey any, keyID string) (jwk.Key, error) {
	if privateKey == nil {
		return nil, fmt.Errorf("private key is nil")
	}
	publicKey, err := PublicKeyOf(privateKey)
	if err != nil {
		return nil, err
	}
	return importJWK(privateKey, publicKey, keyID)
}

func importJWK(raw, publicKey any, keyID string) (jwk.Key, error) {
	alg, err := AlgorithmForKey(raw)
	if err != nil {
		return nil, err
	}

	if keyID == "" {
		keyID, err = GenerateKeyID(publicKey)
		if err != nil {
			return nil, err
		}
	}

	// create the jwk key
	key, err := jwk.Import(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWK from %T: %w", raw, err)
	}

	// Set key ID
	if err := key.Set(jwk.KeyIDKey, keyID); err != nil {
		return nil, fmt.Errorf("failed to set key ID: %w", err)
	}

	// Set algorithm
	switch alg {
	case AlgorithmRSA:
		err = key.Set(jwk.AlgorithmKey, jwa.RS256())
	case AlgorithmEd25519:
		err = key.Set(jwk.AlgorithmKey, jwa.EdDSA())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to set algorithm: %w", err)
	}

	// Set key usage
	if err := key.Set(jwk.KeyUsageKey, jwk.ForSignature); err != nil {
		return nil, fmt.Errorf("failed to set key usage: %w", err)
	}

	return key, nil
}

// PublicJWKSet returns a JWK set containing the public key, as served at /.well-known/jwks.json
func PublicJWKSet(publicKey any, keyID string) (jwk.Set, error) {
	key, err := PublicKeyToJWK(publicKey, keyID)
	if err != nil {
		return nil, err
	}

	set := jwk.NewSet()
	if err := set.AddKey(key); err != nil {
		return nil, fmt.Errorf("failed to add key to JWK set: %w", err)
	}
	return set, nil
}

// ParsePrivateJWK parses a JWK (or JWK set) and returns the first key as *rsa.PrivateKey or ed25519.PrivateKey
func ParsePrivateJWK(data []byte) (any, error) {
	set, err := jwk.Parse(data)
	if err != nil {
		return nil, WrapKeyManagementError(err, "failed to parse JWK set")
	}

	key, ok := set.Key(0)
	if !ok {
		return nil, NewKeyManagementError("JWK set is empty")
	}

	var raw any
	if err := jwk.Export(key, &raw); err != nil {
		return nil, WrapKeyManagementError(err, "failed to export key")
	}

	if _, err := PublicKeyOf(raw); err != nil {
		return nil, NewKeyManagementError(fmt.Sprintf("JWK is not an RSA or Ed25519 private key (%T)", raw))
	}
	return raw, nil
}

// ParsePublicJWK parses a JWK (or JWK set) and returns the public key with the given key id.
// When keyID is empty the first key in the set is used.
func ParsePublicJWK(data []byte, keyID string) (any, error) {
	set, err := jwk.Parse(data)
	if err != nil {
		return nil, WrapKeyManagementError(err, "failed to parse JWK set")
	}
	return PublicKeyFromSet(set, keyID)
}

// PublicKeyFromSet returns the public key with the given key id from a JWK set.
// When keyID is empty the first key in the set is used.
// If the set holds a private key, its public half is returned.
func PublicKeyFromSet(set jwk.Set, keyID string) (any, error) {
	if set == nil || set.Len() == 0 {
		return nil, NewKeyManagementError("JWK set is empty")
	}

	var key jwk.Key
	if keyID == "" {
		key, _ = set.Key(0)
	} else {
		var ok bool
		key, ok = set.LookupKeyID(keyID)
		if !ok {
			return nil, NewKeyManagementError(fmt.Sprintf("key %q not found in JWK set", keyID))
		}
	}

	var raw any
	if err := jwk.Export(key, &raw); err != nil {
		return nil, WrapKeyManagementError(err, "failed to export public key")
	}

	switch k := raw.(type) {
	case *rsa.PublicKey, ed25519.PublicKey:
		return k, nil
	case *rsa.PrivateKey, ed25519.PrivateKey:
		return PublicKeyOf(k)
	default:
		alg, _ := key.Algorithm()
		return nil, NewKeyManagementError(fmt.Sprintf("expected RSA or Ed25519 public key but got key with algorithm %v and type %T", alg, raw))
	}
}

// SaveJWKSetFile writes key as a single entry JWK set.
// Private keys are written with 0600 permissions, public keys with 0644.
//
// Parameters:
//   - baseDir: The base directory to scope file access (e.g., "./keys")
//   - filename: The filename within the base directory (e.g., "license.public.jwk")
func SaveJWKSetFile(key jwk.Key, baseDir, filename string) error {
	jwkSet := jwk.NewSet()
	if err := jwkSet.AddKey(key); err != nil {
		return fmt.Errorf("failed to add key to JWK set: %w", err)
	}

	jsonBytes, err := json.MarshalIndent(jwkSet, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JWK set: %w", err)
	}

	var raw any
	if err := jwk.Export(key, &raw); err != nil {
		return fmt.Errorf("failed to export key: %w", err)
	}

	perm := os.FileMode(0644)
	switch raw.(type) {
	case *rsa.PrivateKey, ed25519.PrivateKey:
		perm = 0600
	}
	return writeFile(baseDir, filename, jsonBytes, perm)
}

// FetchJWKSet fetches a JWK set from a URL
func FetchJWKSet(ctx context.Context, url string) (jwk.Set, error) {
	set, err := jwk.Fetch(ctx, url)
	if err != nil {
		return nil, WrapKeyManagementError(err, "failed to fetch JWK set")
	}

	return set, nil
}

// GenerateKeyID generates a key ID from an RSA or Ed25519 public key using the SHA-256 thumbprint (RFC 7638).
// Returns the first 16 characters of the hex-encoded thumbprint.
func GenerateKeyID(publicKey any) (string, error) {
	if publicKey == nil {
		return "", fmt.Errorf("public key is nil")
	}

	// Import to JWK to calculate thumbprint
	jwkKey, err := jwk.Import(publicKey)
	if err != nil {
		return "", fmt.Errorf("failed to import key: %w", err)
	}

	thumbprint, err := jwkKey.Thumbprint(crypto.SHA256)
	if err != nil {
		return "", fmt.Errorf("failed to generate thumbprint: %w", err)
	}

	return fmt.Sprintf("%x", thumbprint)[:16], nil
}
