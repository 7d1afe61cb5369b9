// Package config provides configuration management for shutterbook services.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	// pricing.location must resolve on images without a zoneinfo database
	_ "time/tzdata"
)

// Config is the full service configuration.
type Config struct {
	AdminAPI  AdminAPIConfig
	PublicAPI PublicAPIConfig
	Database  DatabaseConfig
	Logging   LoggingConfig
	Pricing   PricingConfig
}

// AdminAPIConfig holds configuration for the gRPC form builder API.
type AdminAPIConfig struct {
	Host           string
	Port           int
	MaxConnections int
	RequestTimeout time.Duration
}

// PublicAPIConfig holds configuration for the customer-facing HTTP API.
type PublicAPIConfig struct {
	Host              string
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	RequestsPerSecond float64
	Burst             int
}

// DatabaseConfig holds the connection URL (sqlite://path or postgres://...).
type DatabaseConfig struct {
	URL string
}

// LoggingConfig selects the zerolog level and writer.
type LoggingConfig struct {
	Level  string
	Format string
}

// PricingConfig holds the shop-local settings used when pricing.
type PricingConfig struct {
	// Location is the IANA zone campaign date windows are evaluated in.
	Location string
}

// LoadLocation resolves the configured pricing zone.
func (p PricingConfig) LoadLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(p.Location)
	if err != nil {
		return nil, fmt.Errorf("invalid pricing.location %q: %w", p.Location, err)
	}
	return loc, nil
}

// Default returns configuration with default values.
func Default() *Config {
	return &Config{
		AdminAPI: AdminAPIConfig{
			Host:           "0.0.0.0",
			Port:           50051,
			MaxConnections: 1000,
			RequestTimeout: 30 * time.Second,
		},
		PublicAPI: PublicAPIConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			RequestsPerSecond: 20,
			Burst:             40,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Pricing: PricingConfig{
			Location: "Asia/Tokyo",
		},
	}
}

// HMACSecrets extracts HMAC secrets from environment variables.
// Supports SB_HMAC_SECRET (single) and SB_HMAC_SECRET_N (rotation).
// Returns map of secret_id -> decoded secret bytes.
// Secret IDs are 32 hex chars matching the API key format.
func HMACSecrets() (map[string][]byte, error) {
	secrets := make(map[string][]byte)

	// Format: <secret_id>:<base64_secret>
	if val := os.Getenv("SB_HMAC_SECRET"); val != "" {
		secretID, decoded, err := ParseHMACSecretWithID(val)
		if err != nil {
			return nil, fmt.Errorf("SB_HMAC_SECRET: %w", err)
		}
		secrets[secretID] = decoded
	}

	// Numbered secrets keep old keys valid while new ones roll out
	for i := 1; ; i++ {
		key := fmt.Sprintf("SB_HMAC_SECRET_%d", i)
		val := os.Getenv(key)
		if val == "" {
			break
		}
		secretID, decoded, err := ParseHMACSecretWithID(val)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		if _, exists := secrets[secretID]; exists {
			return nil, fmt.Errorf("duplicate secret_id '%s' found in environment variables (check SB_HMAC_SECRET and SB_HMAC_SECRET_* for conflicts)", secretID)
		}
		secrets[secretID] = decoded
	}

	return secrets, nil
}

// ParseHMACSecretWithID parses secret_id:base64_secret format.
// Secret ID must be 32 lowercase hex chars.
func ParseHMACSecretWithID(envValue string) (secretID string, secret []byte, err error) {
	parts := strings.SplitN(strings.TrimSpace(envValue), ":", 2)
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("format must be <secret_id>:<base64_secret>")
	}

	secretID = parts[0]
	if len(secretID) != 32 {
		return "", nil, fmt.Errorf("secret_id must be 32 hex chars")
	}
	for _, c := range secretID {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return "", nil, fmt.Errorf("secret_id must be hex chars only")
		}
	}

	secret, err = base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", nil, fmt.Errorf("invalid base64 encoding: %w", err)
	}
	if len(secret) < 32 {
		return "", nil, fmt.Errorf("secret must be at least 32 bytes, got %d", len(secret))
	}

	return secretID, secret, nil
}
