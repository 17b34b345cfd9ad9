package services

import (
	"context"
	"time"

	"github.com/information-sharing-networks/license-server/internal/crypto"
	"github.com/information-sharing-networks/license-server/internal/license"
	"github.com/information-sharing-networks/license-server/internal/marketplace"
)

// PurchaseVerifier checks a license key with the marketplace.
// The returned error is a *marketplace.Error when the purchase could not be verified.
type PurchaseVerifier interface {
	VerifyLicense(ctx context.Context, licenseKey, permalink string) (*marketplace.Purchase, error)
}

// LicenseServiceConfig configures a LicenseService
type LicenseServiceConfig struct {
	Scheme    license.Scheme
	TrialDays int
	Signer    *crypto.Signer
	Catalog   *license.Catalog
	Verifier  PurchaseVerifier

	// Now defaults to time.Now
	Now func() time.Time
}

// LicenseService issues signed licenses for purchases and trials.
type LicenseService struct {
	scheme   license.Scheme
	minter   *license.Minter
	catalog  *license.Catalog
	verifier PurchaseVerifier
	trials   *license.TrialGenerator
	now      func() time.Time
}

func NewLicenseService(cfg LicenseServiceConfig) (*LicenseService, error) {
	minter, err := license.NewMinter(cfg.Signer)
	if err != nil {
		return nil, err
	}
	if cfg.Verifier == nil {
		return nil, license.NewConfigurationError("purchase verifier is not configured")
	}

	catalog := cfg.Catalog
	if catalog == nil {
		catalog = license.NewCatalog(nil, "")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &LicenseService{
		scheme:   cfg.Scheme,
		minter:   minter,
		catalog:  catalog,
		verifier: cfg.Verifier,
		trials:   license.NewTrialGenerator(cfg.Scheme, cfg.TrialDays, catalog, license.WithClock(now)),
		now:      now,
	}, nil
}

// Scheme returns the scheme used for new licenses
func (s *LicenseService) Scheme() license.Scheme { return s.scheme }

// TrialDays returns the trial length
func (s *LicenseService) TrialDays() int { return s.trials.Days() }

// Activate verifies licenseKey with the marketplace and returns a signed license for the purchase.
//
// productID selects the marketplace product; it may be empty when a default product is configured.
// No license is produced when the product is unknown or the marketplace does not confirm the purchase.
func (s *LicenseService) Activate(ctx context.Context, licenseKey, productID string) (license.License, error) {
	permalink, err := s.catalog.Resolve(productID)
	if err != nil {
		return license.License{}, err
	}

	purchase, err := s.verifier.VerifyLicense(ctx, licenseKey, permalink)
	if err != nil {
		return license.License{}, err
	}

	return s.minter.Mint(license.NewPurchasePayload(s.scheme, purchase.LicenseKey, productID, s.now()))
}

// IssueTrial returns a signed trial license for productID (which may be empty, see license.Catalog.Check).
func (s *LicenseService) IssueTrial(ctx context.Context, productID string) (license.License, error) {
	if err := ctx.Err(); err != nil {
		return license.License{}, err
	}

	p, err := s.trials.Generate(productID)
	if err != nil {
		return license.License{}, err
	}
	return s.minter.Mint(p)
}
