// Package cli implements licensectl, the operator tool for license-server.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/information-sharing-networks/license-server/internal/logger"
	"github.com/information-sharing-networks/license-server/internal/version"
)

var appLogger = slog.Default()

// NewRootCmd creates the licensectl command tree
func NewRootCmd() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:               "licensectl",
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		Short:             "license-server operator CLI",
		Long:              `licensectl verifies and decodes signed licenses, mints trial licenses with the server signing key and bakes deployment config files`,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries command output
			appLogger = slog.New(tint.NewHandler(cmd.ErrOrStderr(), &tint.Options{Level: logger.ParseLogLevel(logLevel)}))
			return nil
		},
	}

	v := version.Get()
	rootCmd.Version = fmt.Sprintf("%s (built %s, commit %s)", v.Version, v.BuildDate, v.GitCommit)

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error, none)")

	rootCmd.AddCommand(newVerifyCmd())
	rootCmd.AddCommand(newDecodeCmd())
	rootCmd.AddCommand(newMintTrialCmd())
	rootCmd.AddCommand(newBakeConfigCmd())

	return rootCmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// readLicenseArg returns the license string from a flag value; @path reads it from a file
func readLicenseArg(value string) (string, error) {
	if path, ok := strings.CutPrefix(value, "@"); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read license file: %w", err)
		}
		value = string(data)
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("license is empty")
	}
	return value, nil
}
