package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Netflix/go-env"

	"github.com/information-sharing-networks/license-server/internal/license"
)

// Environment variables with defaults
type ServerEnvironment struct {

	// http server settings
	Environment           string        `env:"ENVIRONMENT,default=dev"`
	Host                  string        `env:"HOST,default=0.0.0.0"`
	Port                  int           `env:"PORT,default=8080"`
	LogLevel              string        `env:"LOG_LEVEL,default=debug"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT,default=10s"`
	ReadTimeout           time.Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout          time.Duration `env:"WRITE_TIMEOUT,default=15s"`
	IdleTimeout           time.Duration `env:"IDLE_TIMEOUT,default=60s"`
	RateLimitRPS          int32         `env:"RATE_LIMIT_RPS,default=100"`
	RateLimitBurst        int32         `env:"RATE_LIMIT_BURST,default=200"`
	MaxRequestSize        int64         `env:"MAX_REQUEST_SIZE,default=65536"`

	// license settings
	LicenseScheme            string `env:"LICENSE_SCHEME,default=v2"`
	LicensePrivateKey        string `env:"LICENSE_PRIVATE_KEY"`
	LicensePrivateKeyNewline string `env:"LICENSE_PRIVATE_KEY_NEWLINE,default=_"`
	SigningKeyPath           string `env:"SIGNING_KEY_PATH"`
	TrialDays                int    `env:"TRIAL_DAYS,default=0"`

	// marketplace settings
	MarketplaceAPIURL           string        `env:"MARKETPLACE_API_URL,default=https://api.gumroad.com/v2"`
	MarketplaceProductPermalink string        `env:"MARKETPLACE_PRODUCT_PERMALINK"`
	ProductPermalinks           []string      `env:"PRODUCT_PERMALINKS,separator=|"`
	MarketplaceTimeout          time.Duration `env:"MARKETPLACE_TIMEOUT,default=10s"`
	MarketplaceMaxRetries       int           `env:"MARKETPLACE_MAX_RETRIES,default=0"`
	MarketplaceRetryBaseDelay   time.Duration `env:"MARKETPLACE_RETRY_BASE_DELAY,default=250ms"`
	MarketplaceBreakerFailures  int           `env:"MARKETPLACE_BREAKER_FAILURES,default=5"`
	MarketplaceBreakerTimeout   time.Duration `env:"MARKETPLACE_BREAKER_TIMEOUT,default=30s"`

	// ConfigFile is an optional JSON file of baked variables (see ReadConfigFile)
	ConfigFile string `env:"CONFIG_FILE"`
}

var validEnvs = map[string]bool{
	"dev":     true,
	"test":    true,
	"prod":    true,
	"staging": true,
}

// legacyAliases maps the variable names used by earlier deployments to their current names
var legacyAliases = map[string]string{
	"GUMROAD_API":        "MARKETPLACE_API_URL",
	"GUMROAD_PRODUCT_ID": "MARKETPLACE_PRODUCT_PERMALINK",
}

// NewServerConfig loads environment variables and returns a ServerEnvironment struct that contains the values
func NewServerConfig() (*ServerEnvironment, error) {
	return LoadServerConfig(os.Environ())
}

// LoadServerConfig builds the configuration from environ (KEY=value entries).
//
// When CONFIG_FILE is set, the variables in the file are used for any name that is not set in environ.
// Legacy variable names are accepted when the current name is not set.
func LoadServerConfig(environ []string) (*ServerEnvironment, error) {
	es, err := env.EnvironToEnvSet(environ)
	if err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if path := es["CONFIG_FILE"]; path != "" {
		baked, err := ReadConfigFile(path)
		if err != nil {
			return nil, err
		}
		for k, v := range baked {
			if _, set := es[k]; !set {
				es[k] = v
			}
		}
	}

	for legacy, current := range legacyAliases {
		if v, ok := es[legacy]; ok {
			if _, set := es[current]; !set {
				es[current] = v
			}
		}
	}

	var cfg ServerEnvironment
	if err := env.Unmarshal(es, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Scheme returns the configured license scheme
func (cfg *ServerEnvironment) Scheme() license.Scheme {
	s, err := license.ParseScheme(cfg.LicenseScheme)
	if err != nil {
		return license.SchemeStructured
	}
	return s
}

// Catalog returns the product catalog built from PRODUCT_PERMALINKS and MARKETPLACE_PRODUCT_PERMALINK
func (cfg *ServerEnvironment) Catalog() (*license.Catalog, error) {
	permalinks, err := license.ParseProductPermalinks(cfg.ProductPermalinks)
	if err != nil {
		return nil, err
	}
	return license.NewCatalog(permalinks, cfg.MarketplaceProductPermalink), nil
}

// validateConfig checks for required env variables
func validateConfig(cfg *ServerEnvironment) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	if !validEnvs[cfg.Environment] {
		return fmt.Errorf("invalid ENVIRONMENT: %s", cfg.Environment)
	}
	if cfg.MaxRequestSize < 1 {
		return fmt.Errorf("MAX_REQUEST_SIZE must be at least 1")
	}
	if cfg.RateLimitRPS < 0 || cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be 0 or greater")
	}

	if _, err := license.ParseScheme(cfg.LicenseScheme); err != nil {
		return fmt.Errorf("invalid LICENSE_SCHEME: %w", err)
	}
	if cfg.TrialDays < 0 {
		return fmt.Errorf("TRIAL_DAYS must be 0 (scheme default) or greater")
	}

	hasKey := strings.TrimSpace(cfg.LicensePrivateKey) != ""
	hasKeyPath := cfg.SigningKeyPath != ""
	if hasKey == hasKeyPath {
		return fmt.Errorf("exactly one of LICENSE_PRIVATE_KEY or SIGNING_KEY_PATH must be set")
	}
	if cfg.LicensePrivateKeyNewline == "" {
		return fmt.Errorf("LICENSE_PRIVATE_KEY_NEWLINE must not be empty")
	}

	if cfg.MarketplaceAPIURL == "" {
		return fmt.Errorf("MARKETPLACE_API_URL is required")
	}
	if _, err := license.ParseProductPermalinks(cfg.ProductPermalinks); err != nil {
		return fmt.Errorf("invalid PRODUCT_PERMALINKS: %w", err)
	}
	if cfg.MarketplaceProductPermalink == "" && len(cfg.ProductPermalinks) == 0 {
		return fmt.Errorf("one of MARKETPLACE_PRODUCT_PERMALINK or PRODUCT_PERMALINKS must be set")
	}

	if cfg.MarketplaceTimeout <= 0 {
		return fmt.Errorf("MARKETPLACE_TIMEOUT must be greater than 0")
	}
	if cfg.MarketplaceMaxRetries < 0 {
		return fmt.Errorf("MARKETPLACE_MAX_RETRIES must be 0 or greater")
	}
	if cfg.MarketplaceBreakerFailures < 0 {
		return fmt.Errorf("MARKETPLACE_BREAKER_FAILURES must be 0 (disabled) or greater")
	}

	return nil
}
