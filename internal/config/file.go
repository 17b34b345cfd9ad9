package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// BakedVariables are the variables written by licensectl bake-config.
// Deployment targets that cannot set environment variables at runtime read them back via CONFIG_FILE.
var BakedVariables = []string{
	"LICENSE_SCHEME",
	"LICENSE_PRIVATE_KEY",
	"LICENSE_PRIVATE_KEY_NEWLINE",
	"TRIAL_DAYS",
	"MARKETPLACE_API_URL",
	"MARKETPLACE_PRODUCT_PERMALINK",
	"PRODUCT_PERMALINKS",
}

// ReadConfigFile reads a baked config file: a JSON object of variable names to string values.
func ReadConfigFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("config file %s is not a JSON object of strings: %w", path, err)
	}
	return values, nil
}

// BakeConfig returns the baked variables that are set in lookup (legacy names are mapped to current ones)
func BakeConfig(lookup func(string) (string, bool)) map[string]string {
	values := map[string]string{}
	for _, name := range BakedVariables {
		if v, ok := lookup(name); ok && v != "" {
			values[name] = v
		}
	}
	for legacy, current := range legacyAliases {
		if _, ok := values[current]; ok {
			continue
		}
		if v, ok := lookup(legacy); ok && v != "" {
			values[current] = v
		}
	}
	return values
}

// WriteConfigFile writes values as a baked config file readable only by the owner (it holds the signing key).
func WriteConfigFile(path string, values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config file: %w", err)
	}
	if err := os.WriteFile(filepath.Clean(path), append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
