package cli

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/information-sharing-networks/license-server/internal/config"
)

func newBakeConfigCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "bake-config",
		Short: "Write the license configuration from the environment to a config file",
		Long: fmt.Sprintf(`Write the license variables that are set in the environment to a JSON config file.

Deployments that cannot set environment variables at runtime point CONFIG_FILE at this file.
Variables: %s
(GUMROAD_API and GUMROAD_PRODUCT_ID are accepted as the legacy names of MARKETPLACE_API_URL and MARKETPLACE_PRODUCT_PERMALINK)

The file contains the signing key and is written with mode 0600.`, strings.Join(config.BakedVariables, ", ")),
		RunE: func(cmd *cobra.Command, args []string) error {
			values := config.BakeConfig(os.LookupEnv)
			if _, ok := values["LICENSE_PRIVATE_KEY"]; !ok {
				return fmt.Errorf("LICENSE_PRIVATE_KEY is not set")
			}

			if err := config.WriteConfigFile(output, values); err != nil {
				return err
			}

			names := make([]string, 0, len(values))
			for name := range values {
				names = append(names, name)
			}
			slices.Sort(names)
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s)\n", output, strings.Join(names, ", "))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "env.json", "Output file")

	return cmd
}
