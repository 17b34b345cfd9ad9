package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/information-sharing-networks/license-server/internal/license"
)

type decodedOutput struct {
	Framing string          `json:"framing"`
	Scheme  license.Scheme  `json:"scheme"`
	Data    string          `json:"data"`
	Sig     string          `json:"sig"`
	IsTrial bool            `json:"isTrial"`
	Record  *license.Record `json:"record,omitempty"`
}

func newDecodeCmd() *cobra.Command {
	var licenseArg string

	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode a license without verifying it",
		Long: `Split a license string into its data and signature and print the payload.

The signature is NOT checked - use verify for that.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			wire, err := readLicenseArg(licenseArg)
			if err != nil {
				return err
			}

			env, err := license.Decode(wire)
			if err != nil {
				return err
			}
			p, err := license.ParsePayload(env.Data)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(decodedOutput{
				Framing: string(env.Framing),
				Scheme:  p.Scheme,
				Data:    env.Data,
				Sig:     env.Sig,
				IsTrial: p.IsTrial(),
				Record:  p.Record,
			})
		},
	}

	cmd.Flags().StringVar(&licenseArg, "license", "", "License string, or @path to read it from a file (required)")
	_ = cmd.MarkFlagRequired("license")

	return cmd
}
