package license

import (
	"testing"

	"github.com/information-sharing-networks/license-server/internal/crypto"
)

// newTestMinter returns a minter and a verifier for a freshly generated Ed25519 key
func newTestMinter(t *testing.T) (*Minter, *Verifier) {
	t.Helper()

	privateKey, err := crypto.GenerateEd25519KeyPair()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	return newTestMinterForKey(t, privateKey)
}

func newTestMinterForKey(t *testing.T, privateKey any) (*Minter, *Verifier) {
	t.Helper()

	signer, err := crypto.NewSigner(privateKey)
	if err != nil {
		t.Fatalf("failed to create signer: %v", err)
	}
	minter, err := NewMinter(signer)
	if err != nil {
		t.Fatalf("failed to create minter: %v", err)
	}
	verifier, err := NewVerifier(signer.PublicKey())
	if err != nil {
		t.Fatalf("failed to create verifier: %v", err)
	}
	return minter, verifier
}

func assertErrorCode(t *testing.T, err error, want ErrorCode) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected a %s error, got nil", want)
	}
	licenseErr, ok := err.(*LicenseError)
	if !ok {
		t.Fatalf("expected *LicenseError, got %T (%v)", err, err)
	}
	if licenseErr.Code() != want {
		t.Fatalf("error code = %s, want %s (%v)", licenseErr.Code(), want, err)
	}
}
