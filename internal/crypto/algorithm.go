// algorithm.go defines the signing algorithms supported for license signatures.
package crypto

import (
	"crypto/ed25519"
	"crypto/rsa"
	"fmt"
)

// Algorithm specifies which signing algorithm is used for license signatures
type Algorithm string

const (
	// AlgorithmRSA: RSASSA-PKCS1-v1_5 with SHA-256 (RS256).
	// Existing client applications verify this scheme, so it is the default.
	AlgorithmRSA Algorithm = "RS256"

	// AlgorithmEd25519: EdDSA with Ed25519 curve
	AlgorithmEd25519 Algorithm = "EdDSA"
)

// AlgorithmForKey returns the signing algorithm used for a private or public key
func AlgorithmForKey(key any) (Algorithm, error) {
	switch k := key.(type) {
	case *rsa.PrivateKey, *rsa.PublicKey:
		return AlgorithmRSA, nil
	case ed25519.PrivateKey, ed25519.PublicKey:
		return AlgorithmEd25519, nil
	default:
		return "", NewKeyManagementError(fmt.Sprintf("unsupported key type %T", k))
	}
}
