package services

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/information-sharing-networks/license-server/internal/config"
	"github.com/information-sharing-networks/license-server/internal/crypto"
	"github.com/information-sharing-networks/license-server/internal/license"
	"github.com/information-sharing-networks/license-server/internal/marketplace"
)

// Services aggregates the components used by the license server.
type Services struct {
	Signer  *crypto.Signer
	License *LicenseService
}

// NewServices creates service implementations based on configuration.
// This is the single entry point for loading the signing key and creating the marketplace client.
func NewServices(cfg *config.ServerEnvironment, logger *slog.Logger) (*Services, error) {
	signer, err := LoadSigner(cfg)
	if err != nil {
		return nil, err
	}

	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to load product catalog: %w", err)
	}

	client, err := marketplace.NewClient(marketplace.Config{
		BaseURL:         cfg.MarketplaceAPIURL,
		Timeout:         cfg.MarketplaceTimeout,
		MaxRetries:      cfg.MarketplaceMaxRetries,
		RetryBaseDelay:  cfg.MarketplaceRetryBaseDelay,
		BreakerFailures: cfg.MarketplaceBreakerFailures,
		BreakerTimeout:  cfg.MarketplaceBreakerTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create marketplace client: %w", err)
	}

	licenseService, err := NewLicenseService(LicenseServiceConfig{
		Scheme:    cfg.Scheme(),
		TrialDays: cfg.TrialDays,
		Signer:    signer,
		Catalog:   catalog,
		Verifier:  client,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("license signing key loaded",
		slog.String("algorithm", string(signer.Algorithm())),
		slog.String("kid", signer.KeyID()),
		slog.String("scheme", cfg.Scheme().String()),
	)

	return &Services{
		Signer:  signer,
		License: licenseService,
	}, nil
}

// LoadSigner creates the signer from SIGNING_KEY_PATH (a PEM or JWK file) or LICENSE_PRIVATE_KEY.
func LoadSigner(cfg *config.ServerEnvironment) (*crypto.Signer, error) {
	if cfg.SigningKeyPath != "" {
		privateKey, err := crypto.ReadPrivateKeyFile(filepath.Dir(cfg.SigningKeyPath), filepath.Base(cfg.SigningKeyPath))
		if err != nil {
			return nil, license.WrapConfigurationError(err, "failed to load signing key")
		}
		signer, err := crypto.NewSigner(privateKey)
		if err != nil {
			return nil, license.WrapConfigurationError(err, "invalid signing key")
		}
		return signer, nil
	}

	signer, err := crypto.NewSignerFromPEM(cfg.LicensePrivateKey, cfg.LicensePrivateKeyNewline)
	if err != nil {
		return nil, license.WrapConfigurationError(err, "failed to load signing key")
	}
	return signer, nil
}
