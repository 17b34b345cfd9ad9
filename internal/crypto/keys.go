// this file contains functions to generate, parse and store license signing keys
//
// The license server signs with RSA by default (client applications verify RSA PKCS#1 v1.5 signatures).
// Ed25519 keys are also supported for new deployments.
//
// Private keys are normally supplied as PEM text in configuration. Both PKCS#8 ("PRIVATE KEY")
// and PKCS#1 ("RSA PRIVATE KEY") blocks are accepted.
// Keys written by this package are PEM files in PKCS#8 format (https://datatracker.ietf.org/doc/html/rfc5208)
// or JWK sets.

package crypto

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"strings"
)

// DefaultNewlinePlaceholder is the character substituted for newlines when a PEM key
// is stored in a configuration system that cannot hold multi-line values.
const DefaultNewlinePlaceholder = "_"

// GenerateEd25519KeyPair generates a new ED25519 private key
func GenerateEd25519KeyPair() (ed25519.PrivateKey, error) {
	_, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key pair: %w", err)
	}

	return privateKey, nil
}

// GenerateRSAKeyPair generates a new RSA key pair with the specified bit size
// minimum key size is 2048 bits - key size must be a multiple of 256
func GenerateRSAKeyPair(bits int) (*rsa.PrivateKey, error) {
	if bits < 2048 {
		return nil, fmt.Errorf("key size must be at least 2048 bits")
	}

	if bits%256 != 0 {
		return nil, fmt.Errorf("key size should be a multiple of 256")
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key pair: %w", err)
	}

	return privateKey, nil
}

// RestorePEMNewlines reverses the newline substitution applied to PEM text stored in single line configuration values.
//
// Values that already contain newlines are returned unchanged. Escaped newlines (a literal backslash followed by n)
// are always restored. An empty placeholder disables the substitution.
func RestorePEMNewlines(value, placeholder string) string {
	value = strings.TrimSpace(value)
	if strings.Contains(value, "\n") {
		return value
	}

	value = strings.ReplaceAll(value, `\n`, "\n")
	if placeholder != "" {
		value = strings.ReplaceAll(value, placeholder, "\n")
	}
	return value
}

// FlattenPEM converts PEM text to a single line by substituting placeholder for each newline.
// It is the inverse of RestorePEMNewlines.
func FlattenPEM(pemData []byte, placeholder string) string {
	return strings.ReplaceAll(strings.TrimSpace(string(pemData)), "\n", placeholder)
}

// ParsePrivateKeyPEM parses a PEM encoded RSA or Ed25519 private key.
// The returned key is either *rsa.PrivateKey or ed25519.PrivateKey.
func ParsePrivateKeyPEM(pemData []byte) (any, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, NewKeyManagementError("failed to decode PEM block")
	}

	switch block.Type {
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, WrapKeyManagementError(err, "failed to parse PKCS#8 private key")
		}
		switch k := key.(type) {
		case *rsa.PrivateKey, ed25519.PrivateKey:
			return k, nil
		default:
			return nil, NewKeyManagementError(fmt.Sprintf("unsupported private key type %T", key))
		}
	case "RSA PRIVATE KEY":
		key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, WrapKeyManagementError(err, "failed to parse PKCS#1 private key")
		}
		return key, nil
	default:
		return nil, NewKeyManagementError(fmt.Sprintf("PEM block is not a private key (type: %s)", block.Type))
	}
}

// ParsePublicKeyPEM parses a PEM encoded RSA or Ed25519 public key (SubjectPublicKeyInfo or PKCS#1).
// The returned key is either *rsa.PublicKey or ed25519.PublicKey.
func ParsePublicKeyPEM(pemData []byte) (any, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, NewKeyManagementError("failed to decode PEM block")
	}

	switch block.Type {
	case "PUBLIC KEY":
		key, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, WrapKeyManagementError(err, "failed to parse public key")
		}
		switch k := key.(type) {
		case *rsa.PublicKey, ed25519.PublicKey:
			return k, nil
		default:
			return nil, NewKeyManagementError(fmt.Sprintf("unsupported public key type %T", key))
		}
	case "RSA PUBLIC KEY":
		key, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, WrapKeyManagementError(err, "failed to parse PKCS#1 public key")
		}
		return key, nil
	default:
		return nil, NewKeyManagementError(fmt.Sprintf("PEM block is not a public key (type: %s)", block.Type))
	}
}

// PublicKeyOf returns the public half of an RSA or Ed25519 private key
func PublicKeyOf(privateKey any) (any, error) {
	switch k := privateKey.(type) {
	case *rsa.PrivateKey:
		if k == nil {
			return nil, NewKeyManagementError("private key is nil")
		}
		return &k.PublicKey, nil
	case ed25519.PrivateKey:
		if len(k) != ed25519.PrivateKeySize {
			return nil, NewKeyManagementError("invalid Ed25519 private key length")
		}
		return k.Public().(ed25519.PublicKey), nil
	default:
		return nil, NewKeyManagementError(fmt.Sprintf("unsupported private key type %T", privateKey))
	}
}

// EncodePrivateKeyPEM encodes an RSA or Ed25519 private key as a PKCS#8 PEM block
func EncodePrivateKeyPEM(privateKey any) ([]byte, error) {
	privBytes, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		return nil, WrapKeyManagementError(err, "failed to marshal private key")
	}

	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privBytes}), nil
}

// EncodePublicKeyPEM encodes an RSA or Ed25519 public key as a SubjectPublicKeyInfo PEM block
func EncodePublicKeyPEM(publicKey any) ([]byte, error) {
	pubBytes, err := x509.MarshalPKIXPublicKey(publicKey)
	if err != nil {
		return nil, WrapKeyManagementError(err, "failed to marshal public key")
	}

	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes}), nil
}

// SavePrivateKeyToPEMFile saves a private key to a PEM file in PKCS#8 format
// note the key is not encrypted
//
// Parameters:
//   - baseDir: The base directory to scope file access (e.g., "./keys")
//   - filename: The filename within the base directory (e.g., "license.private.pem")
func SavePrivateKeyToPEMFile(privateKey any, baseDir, filename string) error {
	pemData, err := EncodePrivateKeyPEM(privateKey)
	if err != nil {
		return err
	}
	return writeFile(baseDir, filename, pemData, 0600)
}

// SavePublicKeyToPEMFile saves a public key to a PEM file in SubjectPublicKeyInfo format
//
// Parameters:
//   - baseDir: The base directory to scope file access (e.g., "./keys")
//   - filename: The filename within the base directory (e.g., "license.public.pem")
func SavePublicKeyToPEMFile(publicKey any, baseDir, filename string) error {
	pemData, err := EncodePublicKeyPEM(publicKey)
	if err != nil {
		return err
	}
	return writeFile(baseDir, filename, pemData, 0644)
}

// ReadPrivateKeyFile loads a private key from a PEM file or a JWK set file (the first key in the set is used).
//
// Parameters:
//   - baseDir: The base directory to scope file access (e.g., "./keys")
//   - filename: The filename within the base directory (e.g., "license.private.pem")
func ReadPrivateKeyFile(baseDir, filename string) (any, error) {
	data, err := readFile(baseDir, filename)
	if err != nil {
		return nil, err
	}

	if isJSON(data) {
		return ParsePrivateJWK(data)
	}
	return ParsePrivateKeyPEM(data)
}

// ReadPublicKeyFile loads a public key from a PEM file or a JWK set file (the first key in the set is used).
//
// Parameters:
//   - baseDir: The base directory to scope file access (e.g., "./keys")
//   - filename: The filename within the base directory (e.g., "license.public.pem")
func ReadPublicKeyFile(baseDir, filename string) (any, error) {
	data, err := readFile(baseDir, filename)
	if err != nil {
		return nil, err
	}

	if isJSON(data) {
		return ParsePublicJWK(data, "")
	}
	return ParsePublicKeyPEM(data)
}

func isJSON(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func readFile(baseDir, filename string) ([]byte, error) {
	root, err := os.OpenRoot(baseDir)
	if err != nil {
		return nil, WrapKeyManagementError(err, fmt.Sprintf("failed to open root directory %s", baseDir))
	}
	defer root.Close()

	data, err := root.ReadFile(filename)
	if err != nil {
		return nil, WrapKeyManagementError(err, "failed to read file")
	}
	return data, nil
}

func writeFile(baseDir, filename string, data []byte, perm os.FileMode) error {
	root, err := os.OpenRoot(baseDir)
	if err != nil {
		return fmt.Errorf("failed to open root directory %s: %w", baseDir, err)
	}
	defer root.Close()

	if err := root.WriteFile(filename, data, perm); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
