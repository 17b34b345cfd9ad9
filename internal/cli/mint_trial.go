package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/information-sharing-networks/license-server/internal/api"
	"github.com/information-sharing-networks/license-server/internal/config"
	"github.com/information-sharing-networks/license-server/internal/license"
	"github.com/information-sharing-networks/license-server/internal/services"
)

func newMintTrialCmd() *cobra.Command {
	var (
		productID string
		days      int
	)

	cmd := &cobra.Command{
		Use:   "mint-trial",
		Short: "Mint a trial license with the server signing key",
		Long: `Mint a trial license locally using the server configuration (LICENSE_PRIVATE_KEY or SIGNING_KEY_PATH,
LICENSE_SCHEME, TRIAL_DAYS and the product catalog).

The output has the same format as the /activate-trial response.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewServerConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			signer, err := services.LoadSigner(cfg)
			if err != nil {
				return err
			}
			minter, err := license.NewMinter(signer)
			if err != nil {
				return err
			}
			catalog, err := cfg.Catalog()
			if err != nil {
				return err
			}

			trialDays := cfg.TrialDays
			if days > 0 {
				trialDays = days
			}
			generator := license.NewTrialGenerator(cfg.Scheme(), trialDays, catalog)

			p, err := generator.Generate(productID)
			if err != nil {
				return err
			}
			l, err := minter.Mint(p)
			if err != nil {
				return err
			}

			appLogger.Info("trial license minted",
				slog.String("scheme", cfg.Scheme().String()),
				slog.Int("days", generator.Days()),
				slog.String("product_id", productID),
			)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(api.NewLicenseResponse(l))
		},
	}

	cmd.Flags().StringVar(&productID, "product-id", "", "Product id from the catalog")
	cmd.Flags().IntVar(&days, "days", 0, "Trial length in days (default: TRIAL_DAYS or the scheme default)")

	return cmd
}
