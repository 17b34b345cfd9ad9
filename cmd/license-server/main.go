package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/information-sharing-networks/license-server/internal/config"
	"github.com/information-sharing-networks/license-server/internal/logger"
	"github.com/information-sharing-networks/license-server/internal/server"
	"github.com/information-sharing-networks/license-server/internal/version"
	"github.com/spf13/cobra"
)

//	@title			license-server
//	@description	license-server issues signed licenses for marketplace purchases and time limited trials.
//	@description
//	@description	Licenses are signed with the server key (RSA PKCS#1 v1.5 SHA-256 or Ed25519) and can be verified offline
//	@description	with the public key published at `/.well-known/jwks.json`.
//	@description
//	@description	## License formats
//	@description	- **legacy**: `data|sig` - data is the marketplace license key or `TRIAL:<expDate>`
//	@description	- **v2**: `v2.<base64url(data)>.<sig>` - data is a canonical JSON record and isTrial is signed
//	@description
//	@description	## Common Error Responses
//	@description	All endpoints may return:
//	@description	- `405` Method not allowed
//	@description	- `413` Request body exceeds size limit
//	@description	- `429` Rate limit exceeded
//	@description	- `500` Internal server error
//	@description
//	@description	## Request Limits
//	@description	- **Rate limiting**: Configurable requests per second (see env vars) - default 100 rps (set to 0 to disable)
//	@description	- **Request size limits**: Configurable (see env vars) - default 64KB
//	@description
//	@description	The license endpoints are also served under `/.netlify/functions` for clients built against earlier deployments.
//	@license.name	MIT

//	@servers.url			https://licenses.example.com
//	@servers.description	Production server
//	@servers.url			http://localhost:8080
//	@servers.description	Development server

//	@accept		json
//	@produce	json

//	@tag.name			Licenses
//	@tag.description	License activation and trial endpoints

//	@tag.name			Common
//	@tag.description	Server API endpoints (jwks, health, readiness, version, etc.)

func main() {
	cmd := &cobra.Command{
		Use:   "license-server",
		Short: "License issuing server",
		Long:  `license-server verifies marketplace purchases and issues signed licenses and trial licenses`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}

	v := version.Get()
	cmd.Version = fmt.Sprintf("%s (built %s, commit %s)", v.Version, v.BuildDate, v.GitCommit)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.NewServerConfig()
	if err != nil {
		log.Printf("failed to load configuration: %v", err.Error())
		os.Exit(1)
	}

	appLogger := logger.InitLogger(logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)

	// the signing key is never logged
	appLogger.Info("Configuration loaded",
		slog.String("ENVIRONMENT", cfg.Environment),
		slog.String("HOST", cfg.Host),
		slog.Int("PORT", cfg.Port),
		slog.String("LOG_LEVEL", cfg.LogLevel),
		slog.String("LICENSE_SCHEME", cfg.Scheme().String()),
		slog.Bool("LICENSE_PRIVATE_KEY_SET", cfg.LicensePrivateKey != ""),
		slog.String("SIGNING_KEY_PATH", cfg.SigningKeyPath),
		slog.Int("TRIAL_DAYS", cfg.TrialDays),
		slog.String("MARKETPLACE_API_URL", cfg.MarketplaceAPIURL),
		slog.String("MARKETPLACE_PRODUCT_PERMALINK", cfg.MarketplaceProductPermalink),
		slog.Any("PRODUCT_PERMALINKS", cfg.ProductPermalinks),
		slog.Duration("MARKETPLACE_TIMEOUT", cfg.MarketplaceTimeout),
		slog.Int("MARKETPLACE_MAX_RETRIES", cfg.MarketplaceMaxRetries),
		slog.Int("MARKETPLACE_BREAKER_FAILURES", cfg.MarketplaceBreakerFailures),
		slog.String("CONFIG_FILE", cfg.ConfigFile),
	)

	appLogger.Info("Starting server", slog.String("version", version.Get().Version))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := server.NewServer(cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := server.Start(ctx); err != nil {
		appLogger.Error("Server error", slog.String("error", err.Error()))
		return err
	}

	appLogger.Info("server shutdown complete")
	return nil
}
