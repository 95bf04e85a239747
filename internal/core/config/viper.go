package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration using viper.
// Precedence: CLI flags (applied by the caller) > environment > config file
// > defaults. Environment variables use the LC_ prefix with underscores, e.g.
// LC_INGEST_API_PORT.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("ingest_api.host", "0.0.0.0")
	v.SetDefault("ingest_api.port", 8080)
	v.SetDefault("ingest_api.request_timeout", "30s")
	v.SetDefault("ingest_api.max_body_bytes", 1024*1024)
	v.SetDefault("ingest_api.database_url", "")

	v.SetEnvPrefix("LC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Host:           v.GetString("ingest_api.host"),
		Port:           v.GetInt("ingest_api.port"),
		RequestTimeout: v.GetDuration("ingest_api.request_timeout"),
		MaxBodyBytes:   v.GetInt("ingest_api.max_body_bytes"),
		DatabaseURL:    v.GetString("ingest_api.database_url"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks port range and positive timeouts and body limits.
// DatabaseURL is checked at startup, not here, so migrate-only invocations
// can pass it as a flag instead.
func validateConfig(cfg *Config) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", cfg.RequestTimeout)
	}
	if cfg.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive, got %d", cfg.MaxBodyBytes)
	}
	return nil
}
