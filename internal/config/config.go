// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port               string
	FrontendURL        string
	DBPath             string
	SessionCacheTTL    time.Duration
	CacheSweepInterval time.Duration
	OpenRouter         OpenRouterConfig
}

// OpenRouterConfig controls the response generation backend. An empty APIKey
// means responses are simulated locally.
type OpenRouterConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		FrontendURL:        getEnv("FRONTEND_URL", ""),
		DBPath:             getEnv("DB_PATH", "./data/math_council.db"),
		SessionCacheTTL:    getEnvMinutes("SESSION_CACHE_TTL_MINUTES", 60*time.Minute),
		CacheSweepInterval: getEnvMinutes("CACHE_SWEEP_INTERVAL_MINUTES", 5*time.Minute),
		OpenRouter: OpenRouterConfig{
			APIKey:  getEnv("OPENROUTER_API_KEY", ""),
			BaseURL: getEnv("OPENROUTER_BASE_URL", ""),
			Model:   getEnv("OPENROUTER_MODEL", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.SessionCacheTTL <= 0 {
		return fmt.Errorf("SESSION_CACHE_TTL_MINUTES must be > 0")
	}
	if c.CacheSweepInterval <= 0 {
		return fmt.Errorf("CACHE_SWEEP_INTERVAL_MINUTES must be > 0")
	}
	return nil
}

// AIEnabled returns true if a live generation backend is configured.
func (c *Config) AIEnabled() bool {
	return c.OpenRouter.APIKey != ""
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvMinutes(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Minute
}
