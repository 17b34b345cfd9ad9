package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/information-sharing-networks/license-server/internal/crypto"
	"github.com/information-sharing-networks/license-server/internal/license"
)

// verifiedOutput is printed by verify
type verifiedOutput struct {
	Valid      bool            `json:"valid"`
	Scheme     license.Scheme  `json:"scheme"`
	Framing    string          `json:"framing"`
	IsTrial    bool            `json:"isTrial"`
	LicenseKey string          `json:"licenseKey,omitempty"`
	ProductID  string          `json:"productId,omitempty"`
	ExpiresAt  string          `json:"expiresAt,omitempty"`
	Expired    bool            `json:"expired"`
	Record     *license.Record `json:"record,omitempty"`
}

func newVerifyCmd() *cobra.Command {
	var (
		licenseArg    string
		publicKeyPath string
		jwksURL       string
		kid           string
		allowExpired  bool
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a signed license",
		Long: `Verify the signature of a license string (data|sig or v2.<data>.<sig>) and print its contents.

The public key is read from a PEM or JWK file, or fetched from the server's JWK set.
Expired trial licenses fail verification unless --allow-expired is set.

Example:
  licensectl verify --license @license.txt --jwks-url https://licenses.example.com/.well-known/jwks.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			wire, err := readLicenseArg(licenseArg)
			if err != nil {
				return err
			}

			publicKey, err := loadPublicKey(cmd, publicKeyPath, jwksURL, kid)
			if err != nil {
				return err
			}

			verifier, err := license.NewVerifier(publicKey)
			if err != nil {
				return err
			}
			verified, err := verifier.Verify(wire)
			if err != nil {
				return fmt.Errorf("license is not valid: %w", err)
			}

			out := verifiedOutput{
				Valid:      true,
				Scheme:     verified.Scheme,
				Framing:    string(verified.Framing),
				IsTrial:    verified.IsTrial,
				LicenseKey: verified.LicenseKey,
				ProductID:  verified.ProductID,
				Expired:    verified.Expired(time.Now()),
				Record:     verified.Record,
			}
			if verified.ExpiresAt != nil {
				out.ExpiresAt = license.FormatTimestamp(*verified.ExpiresAt)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				return err
			}

			if out.Expired && !allowExpired {
				return fmt.Errorf("trial license expired at %s", out.ExpiresAt)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&licenseArg, "license", "", "License string, or @path to read it from a file (required)")
	cmd.Flags().StringVar(&publicKeyPath, "public-key", "", "Path to the public key (PEM or JWK)")
	cmd.Flags().StringVar(&jwksURL, "jwks-url", "", "URL of the server JWK set")
	cmd.Flags().StringVar(&kid, "kid", "", "Key ID to select from the JWK set (default: the only key)")
	cmd.Flags().BoolVar(&allowExpired, "allow-expired", false, "Do not fail on expired trial licenses")
	_ = cmd.MarkFlagRequired("license")
	cmd.MarkFlagsOneRequired("public-key", "jwks-url")
	cmd.MarkFlagsMutuallyExclusive("public-key", "jwks-url")

	return cmd
}

func loadPublicKey(cmd *cobra.Command, publicKeyPath, jwksURL, kid string) (any, error) {
	if jwksURL != "" {
		appLogger.Debug("fetching JWK set", slog.String("url", jwksURL))

		set, err := crypto.FetchJWKSet(cmd.Context(), jwksURL)
		if err != nil {
			return nil, err
		}
		return crypto.PublicKeyFromSet(set, kid)
	}

	return crypto.ReadPublicKeyFile(filepath.Dir(publicKeyPath), filepath.Base(publicKeyPath))
}
