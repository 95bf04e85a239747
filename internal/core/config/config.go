// Package config provides configuration management for ListCutter services.
package config

import "time"

// Config holds configuration for the ingestion API service.
type Config struct {
	Host           string
	Port           int
	RequestTimeout time.Duration
	MaxBodyBytes   int
	DatabaseURL    string
}

// DefaultConfig returns configuration with default values.
// DatabaseURL has no default: callers must supply one explicitly, either via
// config, environment, or the --db-url flag.
func DefaultConfig() *Config {
	return &Config{
		Host:           "0.0.0.0",
		Port:           8080,
		RequestTimeout: 30 * time.Second,
		MaxBodyBytes:   1024 * 1024,
	}
}
