package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// Setenv("") still counts as set for getEnv, so pin the required keys to
	// real values and verify the remaining defaults.
	t.Setenv("PORT", "8080")
	t.Setenv("DB_PATH", "./data/math_council.db")
	for _, key := range []string{
		"FRONTEND_URL",
		"SESSION_CACHE_TTL_MINUTES", "CACHE_SWEEP_INTERVAL_MINUTES",
		"OPENROUTER_API_KEY", "OPENROUTER_BASE_URL", "OPENROUTER_MODEL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := getEnv("UNSET_TEST_KEY", "8080"); got != "8080" {
		t.Errorf("Expected fallback 8080, got %q", got)
	}
	if cfg.SessionCacheTTL != 60*time.Minute {
		t.Errorf("Expected default TTL 60m, got %v", cfg.SessionCacheTTL)
	}
	if cfg.CacheSweepInterval != 5*time.Minute {
		t.Errorf("Expected default sweep interval 5m, got %v", cfg.CacheSweepInterval)
	}
	if cfg.AIEnabled() {
		t.Error("Expected AI disabled without an API key")
	}
	if !cfg.IsDevelopment() {
		t.Error("Expected development mode without a frontend URL")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_PATH", "/tmp/council.db")
	t.Setenv("SESSION_CACHE_TTL_MINUTES", "15")
	t.Setenv("CACHE_SWEEP_INTERVAL_MINUTES", "2")
	t.Setenv("OPENROUTER_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Expected port 9090, got %q", cfg.Port)
	}
	if cfg.DBPath != "/tmp/council.db" {
		t.Errorf("Expected DB path override, got %q", cfg.DBPath)
	}
	if cfg.SessionCacheTTL != 15*time.Minute {
		t.Errorf("Expected TTL 15m, got %v", cfg.SessionCacheTTL)
	}
	if cfg.CacheSweepInterval != 2*time.Minute {
		t.Errorf("Expected sweep interval 2m, got %v", cfg.CacheSweepInterval)
	}
	if !cfg.AIEnabled() {
		t.Error("Expected AI enabled with an API key")
	}
}

func TestGetEnvMinutesRejectsGarbage(t *testing.T) {
	t.Setenv("TTL_TEST_KEY", "not-a-number")
	if got := getEnvMinutes("TTL_TEST_KEY", time.Hour); got != time.Hour {
		t.Errorf("Expected fallback for garbage value, got %v", got)
	}

	t.Setenv("TTL_TEST_KEY", "-5")
	if got := getEnvMinutes("TTL_TEST_KEY", time.Hour); got != time.Hour {
		t.Errorf("Expected fallback for negative value, got %v", got)
	}
}

func TestValidate(t *testing.T) {
	valid := &Config{
		Port:               "8080",
		DBPath:             "./db",
		SessionCacheTTL:    time.Hour,
		CacheSweepInterval: time.Minute,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.Port = "" }},
		{"empty db path", func(c *Config) { c.DBPath = "" }},
		{"zero ttl", func(c *Config) { c.SessionCacheTTL = 0 }},
		{"zero sweep interval", func(c *Config) { c.CacheSweepInterval = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := *valid
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestIsDevelopment(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"", true},
		{"http://localhost:3000", true},
		{"http://127.0.0.1:3000", true},
		{"https://council.example.com", false},
	}
	for _, tc := range cases {
		cfg := &Config{FrontendURL: tc.url}
		if got := cfg.IsDevelopment(); got != tc.want {
			t.Errorf("IsDevelopment(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}
