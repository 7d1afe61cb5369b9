package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// LoadConfig loads configuration using viper.
// CLI flags > environment > config file > defaults precedence.
// A .env file in the working directory is read into the environment first;
// variables already set win over it.
//
// flagBindings maps config keys (e.g. "admin_api.port") to flags; a flag
// only overrides when the user set it.
func LoadConfig(configPath string, flags *pflag.FlagSet, flagBindings map[string]string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	v := viper.New()

	d := Default()
	v.SetDefault("admin_api.host", d.AdminAPI.Host)
	v.SetDefault("admin_api.port", d.AdminAPI.Port)
	v.SetDefault("admin_api.max_connections", d.AdminAPI.MaxConnections)
	v.SetDefault("admin_api.request_timeout", d.AdminAPI.RequestTimeout.String())
	v.SetDefault("public_api.host", d.PublicAPI.Host)
	v.SetDefault("public_api.port", d.PublicAPI.Port)
	v.SetDefault("public_api.read_timeout", d.PublicAPI.ReadTimeout.String())
	v.SetDefault("public_api.write_timeout", d.PublicAPI.WriteTimeout.String())
	v.SetDefault("public_api.requests_per_second", d.PublicAPI.RequestsPerSecond)
	v.SetDefault("public_api.burst", d.PublicAPI.Burst)
	v.SetDefault("database.url", "")
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("pricing.location", d.Pricing.Location)

	// Bind environment variables with SB_ prefix
	v.SetEnvPrefix("SB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Secrets must be environment-only
	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	if flags != nil {
		for key, name := range flagBindings {
			if f := flags.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		AdminAPI: AdminAPIConfig{
			Host:           v.GetString("admin_api.host"),
			Port:           v.GetInt("admin_api.port"),
			MaxConnections: v.GetInt("admin_api.max_connections"),
			RequestTimeout: v.GetDuration("admin_api.request_timeout"),
		},
		PublicAPI: PublicAPIConfig{
			Host:              v.GetString("public_api.host"),
			Port:              v.GetInt("public_api.port"),
			ReadTimeout:       v.GetDuration("public_api.read_timeout"),
			WriteTimeout:      v.GetDuration("public_api.write_timeout"),
			RequestsPerSecond: v.GetFloat64("public_api.requests_per_second"),
			Burst:             v.GetInt("public_api.burst"),
		},
		Database: DatabaseConfig{URL: v.GetString("database.url")},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Pricing: PricingConfig{Location: v.GetString("pricing.location")},
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks port ranges, positive limits and timeouts, and known enums.
func validateConfig(cfg *Config) error {
	if cfg.AdminAPI.Port <= 0 || cfg.AdminAPI.Port > 65535 {
		return fmt.Errorf("admin_api.port must be between 1 and 65535, got %d", cfg.AdminAPI.Port)
	}
	if cfg.PublicAPI.Port <= 0 || cfg.PublicAPI.Port > 65535 {
		return fmt.Errorf("public_api.port must be between 1 and 65535, got %d", cfg.PublicAPI.Port)
	}
	if cfg.AdminAPI.MaxConnections <= 0 {
		return fmt.Errorf("admin_api.max_connections must be positive, got %d", cfg.AdminAPI.MaxConnections)
	}
	if cfg.AdminAPI.RequestTimeout <= 0 {
		return fmt.Errorf("admin_api.request_timeout must be positive, got %v", cfg.AdminAPI.RequestTimeout)
	}
	if cfg.PublicAPI.ReadTimeout <= 0 || cfg.PublicAPI.WriteTimeout <= 0 {
		return fmt.Errorf("public_api timeouts must be positive")
	}
	if cfg.PublicAPI.RequestsPerSecond <= 0 {
		return fmt.Errorf("public_api.requests_per_second must be positive, got %v", cfg.PublicAPI.RequestsPerSecond)
	}
	if cfg.PublicAPI.Burst <= 0 {
		return fmt.Errorf("public_api.burst must be positive, got %d", cfg.PublicAPI.Burst)
	}
	switch cfg.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text, got %q", cfg.Logging.Format)
	}
	if _, err := cfg.Pricing.LoadLocation(); err != nil {
		return err
	}
	return nil
}

// validateNoSecretsInConfig enforces environment-only secrets.
// InConfig looks at the file only; IsSet would also see SB_HMAC_SECRET.
func validateNoSecretsInConfig(v *viper.Viper) error {
	if v.InConfig("hmac_secret") || v.InConfig("admin_api.hmac_secret") {
		return fmt.Errorf("HMAC secrets not allowed in config files (use SB_HMAC_SECRET environment variable)")
	}
	return nil
}
