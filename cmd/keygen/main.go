// keygen generates license signing key pairs in PEM and JWK format.
package main

import (
	"fmt"
	"os"

	"github.com/information-sharing-networks/license-server/internal/crypto"
	"github.com/information-sharing-networks/license-server/internal/version"
	"github.com/spf13/cobra"
)

// file naming convention - name.private.pem, name.public.pem, name.public.jwk and name.private.jwk
const (
	privatePEMFileNameFormat = "%s.private.pem"
	publicPEMFileNameFormat  = "%s.public.pem"
	publicJWKFileNameFormat  = "%s.public.jwk"
	privateJWKFileNameFormat = "%s.private.jwk"
)

var (
	name       string
	outputDir  string
	keyType    string
	rsaSize    int
	privateJWK bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:               "keygen",
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		Short:             "License signing key generator",
		Long:              "Generate RSA or Ed25519 key pairs for signing licenses",
	}

	v := version.Get()
	rootCmd.Version = fmt.Sprintf("%s (built %s, commit %s)", v.Version, v.BuildDate, v.GitCommit)

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new key pair",
		Long: `Generate a new RSA or Ed25519 key pair.

The private key is written as PKCS#8 PEM and the public key as PEM and as a JWK set.
The key id is the thumbprint of the public key, the same kid the server publishes at /.well-known/jwks.json.

The flattened private key is printed as a LICENSE_PRIVATE_KEY value (newlines replaced with _).`,
		RunE: runGenerate,
	}

	generateCmd.Flags().StringVarP(&name, "name", "n", "license", "Base name for the key files")
	generateCmd.Flags().StringVarP(&keyType, "type", "t", "", "Key type: rsa or ed25519 [required]")
	generateCmd.Flags().StringVarP(&outputDir, "outputdir", "o", "", "Output directory for generated keys [required]")
	generateCmd.Flags().IntVarP(&rsaSize, "size", "s", 2048, "RSA key size in bits (2048 or 4096)")
	generateCmd.Flags().BoolVar(&privateJWK, "private-jwk", false, "Also write the private key as a JWK set")
	_ = generateCmd.MarkFlagRequired("type")
	_ = generateCmd.MarkFlagRequired("outputdir")

	rootCmd.AddCommand(generateCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if keyType != "rsa" && keyType != "ed25519" {
		return fmt.Errorf("invalid key type: %s (must be 'rsa' or 'ed25519')", keyType)
	}

	if keyType == "rsa" && rsaSize != 2048 && rsaSize != 4096 {
		return fmt.Errorf("invalid RSA key size: %d (must be 2048 or 4096)", rsaSize)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var privateKey any
	var err error
	if keyType == "rsa" {
		fmt.Printf("Generating %d-bit RSA key pair\n", rsaSize)
		privateKey, err = crypto.GenerateRSAKeyPair(rsaSize)
	} else {
		fmt.Println("Generating Ed25519 key pair")
		privateKey, err = crypto.GenerateEd25519KeyPair()
	}
	if err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}

	publicKey, err := crypto.PublicKeyOf(privateKey)
	if err != nil {
		return err
	}
	keyID, err := crypto.GenerateKeyID(publicKey)
	if err != nil {
		return fmt.Errorf("failed to generate key ID: %w", err)
	}

	if err := crypto.SavePrivateKeyToPEMFile(privateKey, outputDir, fmt.Sprintf(privatePEMFileNameFormat, name)); err != nil {
		return fmt.Errorf("failed to save private key: %w", err)
	}
	fmt.Printf("✓ Private PEM: %s\n", fmt.Sprintf(privatePEMFileNameFormat, name))

	if err := crypto.SavePublicKeyToPEMFile(publicKey, outputDir, fmt.Sprintf(publicPEMFileNameFormat, name)); err != nil {
		return fmt.Errorf("failed to save public key: %w", err)
	}
	fmt.Printf("✓ Public PEM:  %s\n", fmt.Sprintf(publicPEMFileNameFormat, name))

	publicJWK, err := crypto.PublicKeyToJWK(publicKey, keyID)
	if err != nil {
		return err
	}
	if err := crypto.SaveJWKSetFile(publicJWK, outputDir, fmt.Sprintf(publicJWKFileNameFormat, name)); err != nil {
		return fmt.Errorf("failed to save public JWK: %w", err)
	}
	fmt.Printf("✓ Public JWK:  %s (kid: %s)\n", fmt.Sprintf(publicJWKFileNameFormat, name), keyID)

	if privateJWK {
		key, err := crypto.PrivateKeyToJWK(privateKey, keyID)
		if err != nil {
			return err
		}
		if err := crypto.SaveJWKSetFile(key, outputDir, fmt.Sprintf(privateJWKFileNameFormat, name)); err != nil {
			return fmt.Errorf("failed to save private JWK: %w", err)
		}
		fmt.Printf("✓ Private JWK: %s (kid: %s)\n", fmt.Sprintf(privateJWKFileNameFormat, name), keyID)
	}

	pemData, err := crypto.EncodePrivateKeyPEM(privateKey)
	if err != nil {
		return err
	}
	fmt.Printf("\nLICENSE_PRIVATE_KEY=%s\n", crypto.FlattenPEM(pemData, "_"))

	return nil
}
