package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/information-sharing-networks/license-server/internal/config"
	"github.com/information-sharing-networks/license-server/internal/crypto"
	"github.com/information-sharing-networks/license-server/internal/license"
	"github.com/information-sharing-networks/license-server/internal/marketplace"
)

// stubVerifier records the last request and returns a fixed result
type stubVerifier struct {
	purchase   *marketplace.Purchase
	err        error
	calls      int
	licenseKey string
	permalink  string
}

func (s *stubVerifier) VerifyLicense(_ context.Context, licenseKey, permalink string) (*marketplace.Purchase, error) {
	s.calls++
	s.licenseKey = licenseKey
	s.permalink = permalink
	return s.purchase, s.err
}

func newTestService(t *testing.T, scheme license.Scheme, catalog *license.Catalog, verifier PurchaseVerifier) (*LicenseService, *license.Verifier) {
	t.Helper()

	privateKey, err := crypto.GenerateEd25519KeyPair()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	signer, err := crypto.NewSigner(privateKey)
	if err != nil {
		t.Fatalf("failed to create signer: %v", err)
	}
	svc, err := NewLicenseService(LicenseServiceConfig{
		Scheme:   scheme,
		Signer:   signer,
		Catalog:  catalog,
		Verifier: verifier,
		Now:      func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("NewLicenseService() error = %v", err)
	}
	v, err := license.NewVerifier(signer.PublicKey())
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}
	return svc, v
}

func TestActivate(t *testing.T) {
	catalog := license.NewCatalog(map[string]string{"pro": "pro-permalink"}, "default-permalink")

	t.Run("structured", func(t *testing.T) {
		stub := &stubVerifier{purchase: &marketplace.Purchase{LicenseKey: "ABC-123"}}
		svc, v := newTestService(t, license.SchemeStructured, catalog, stub)

		l, err := svc.Activate(context.Background(), "ABC-123", "pro")
		if err != nil {
			t.Fatalf("Activate() error = %v", err)
		}
		if stub.permalink != "pro-permalink" || stub.licenseKey != "ABC-123" {
			t.Errorf("marketplace called with %q/%q", stub.licenseKey, stub.permalink)
		}
		if l.IsTrial || !strings.Contains(l.Data, `"ABC-123"`) {
			t.Errorf("unexpected license %+v", l)
		}

		verified, err := v.Verify(l.Encode())
		if err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		if verified.LicenseKey != "ABC-123" || verified.ProductID != "pro" || verified.Record.IssuedAt != "2026-03-01T12:00:00.000Z" {
			t.Errorf("unexpected verified license %+v", verified)
		}
	})

	t.Run("legacy signs the marketplace license key", func(t *testing.T) {
		stub := &stubVerifier{purchase: &marketplace.Purchase{LicenseKey: "ABC-123"}}
		svc, _ := newTestService(t, license.SchemeLegacy, catalog, stub)

		l, err := svc.Activate(context.Background(), "ABC-123", "")
		if err != nil {
			t.Fatalf("Activate() error = %v", err)
		}
		if stub.permalink != "default-permalink" {
			t.Errorf("permalink = %q, want default-permalink", stub.permalink)
		}
		if l.Data != "ABC-123" || !strings.HasPrefix(l.Encode(), "ABC-123|") {
			t.Errorf("unexpected legacy license %+v", l)
		}
	})

	t.Run("unknown product", func(t *testing.T) {
		stub := &stubVerifier{purchase: &marketplace.Purchase{LicenseKey: "ABC-123"}}
		svc, _ := newTestService(t, license.SchemeStructured, catalog, stub)

		l, err := svc.Activate(context.Background(), "ABC-123", "enterprise")
		var licenseErr *license.LicenseError
		if !errors.As(err, &licenseErr) || licenseErr.Code() != license.ErrCodeUnknownProduct {
			t.Fatalf("expected unknown product error, got %v", err)
		}
		if stub.calls != 0 {
			t.Error("marketplace should not be called for an unknown product")
		}
		if l.Data != "" || l.Sig != "" {
			t.Errorf("no license should be produced, got %+v", l)
		}
	})

	t.Run("verification failed", func(t *testing.T) {
		stub := &stubVerifier{err: marketplace.NewRejectedError(404, "That license does not exist")}
		svc, _ := newTestService(t, license.SchemeStructured, catalog, stub)

		l, err := svc.Activate(context.Background(), "ABC-123", "pro")
		var mErr *marketplace.Error
		if !errors.As(err, &mErr) || mErr.Code() != marketplace.ErrCodeRejected {
			t.Fatalf("expected marketplace rejection, got %v", err)
		}
		if l.Sig != "" {
			t.Errorf("no license should be produced, got %+v", l)
		}
	})
}

func TestIssueTrial(t *testing.T) {
	catalog := license.NewCatalog(map[string]string{"pro": "pro-permalink"}, "")
	svc, v := newTestService(t, license.SchemeStructured, catalog, &stubVerifier{})

	l, err := svc.IssueTrial(context.Background(), "pro")
	if err != nil {
		t.Fatalf("IssueTrial() error = %v", err)
	}
	if !l.IsTrial {
		t.Error("trial license not flagged as trial")
	}

	verified, err := v.Verify(l.Encode())
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	want := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	if verified.ExpiresAt == nil || !verified.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", verified.ExpiresAt, want)
	}

	if _, err := svc.IssueTrial(context.Background(), "enterprise"); err == nil {
		t.Error("expected an error for an unknown product")
	}
	if svc.TrialDays() != 14 {
		t.Errorf("TrialDays() = %d, want 14", svc.TrialDays())
	}
}

func TestLoadSigner(t *testing.T) {
	privateKey, err := crypto.GenerateRSAKeyPair(2048)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	pemData, err := crypto.EncodePrivateKeyPEM(privateKey)
	if err != nil {
		t.Fatalf("failed to encode key: %v", err)
	}

	t.Run("flattened environment value", func(t *testing.T) {
		cfg := &config.ServerEnvironment{
			LicensePrivateKey:        crypto.FlattenPEM(pemData, "_"),
			LicensePrivateKeyNewline: "_",
		}
		signer, err := LoadSigner(cfg)
		if err != nil {
			t.Fatalf("LoadSigner() error = %v", err)
		}
		if signer.Algorithm() != crypto.AlgorithmRSA {
			t.Errorf("Algorithm() = %s", signer.Algorithm())
		}
	})

	t.Run("key file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "signing.pem")
		if err := os.WriteFile(path, pemData, 0600); err != nil {
			t.Fatalf("failed to write key: %v", err)
		}
		if _, err := LoadSigner(&config.ServerEnvironment{SigningKeyPath: path}); err != nil {
			t.Fatalf("LoadSigner() error = %v", err)
		}
	})

	t.Run("invalid key is a configuration error", func(t *testing.T) {
		_, err := LoadSigner(&config.ServerEnvironment{LicensePrivateKey: "not a key", LicensePrivateKeyNewline: "_"})
		var licenseErr *license.LicenseError
		if !errors.As(err, &licenseErr) || licenseErr.Code() != license.ErrCodeConfiguration {
			t.Fatalf("expected configuration error, got %v", err)
		}
	})
}
