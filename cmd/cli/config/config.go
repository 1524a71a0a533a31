package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const defaultAPIURL = "http://localhost:8080"

const tokenFileName = ".threatwatch_token"

// APIURL returns the base URL for the Threatwatch API.
// It can be overridden with the THREATWATCH_API_URL environment variable.
func APIURL() string {
	if v := os.Getenv("THREATWATCH_API_URL"); v != "" {
		return v
	}
	return defaultAPIURL
}

// Token returns the bearer token for API calls: THREATWATCH_TOKEN if set,
// otherwise the contents of ~/.threatwatch_token.
func Token() (string, error) {
	if v := os.Getenv("THREATWATCH_TOKEN"); v != "" {
		return v, nil
	}
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", fmt.Errorf("no token: set THREATWATCH_TOKEN or run with a saved token: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// SaveToken writes the token to ~/.threatwatch_token with owner-only permissions.
func SaveToken(token string) error {
	return os.WriteFile(tokenPath(), []byte(token), 0600)
}

func tokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return tokenFileName
	}
	return filepath.Join(home, tokenFileName)
}
