// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"PAGECRAFT_DB_PATH" envDefault:"./data/pagecraft.db"`
	SessionSecret string `env:"PAGECRAFT_SESSION_SECRET,required"`
	ServerHost    string `env:"PAGECRAFT_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"PAGECRAFT_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"PAGECRAFT_ENV" envDefault:"development"`
	LogLevel      string `env:"PAGECRAFT_LOG_LEVEL" envDefault:"info"`

	// BaseDomain is the apex under which site subdomains are served.
	BaseDomain string `env:"PAGECRAFT_BASE_DOMAIN" envDefault:"pagecraft.site"`

	// Cache configuration
	RedisURL    string `env:"PAGECRAFT_REDIS_URL"`                        // Optional Redis URL for distributed caching
	CachePrefix string `env:"PAGECRAFT_CACHE_PREFIX" envDefault:"pcraft:"` // Redis key prefix

	// Analytics provider configuration
	AnalyticsURL      string  `env:"PAGECRAFT_ANALYTICS_URL"`      // Base URL of the umami-compatible server
	AnalyticsUsername string  `env:"PAGECRAFT_ANALYTICS_USERNAME"` // Provider login
	AnalyticsPassword string  `env:"PAGECRAFT_ANALYTICS_PASSWORD"` // Provider password
	AnalyticsRPS      float64 `env:"PAGECRAFT_ANALYTICS_RPS" envDefault:"10"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// AnalyticsEnabled returns true if an analytics provider is configured.
func (c Config) AnalyticsEnabled() bool {
	return c.AnalyticsURL != ""
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("PAGECRAFT_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("PAGECRAFT_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("PAGECRAFT_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if cfg.AnalyticsEnabled() && (cfg.AnalyticsUsername == "" || cfg.AnalyticsPassword == "") {
		return nil, fmt.Errorf("PAGECRAFT_ANALYTICS_URL is set but credentials are missing; " +
			"set PAGECRAFT_ANALYTICS_USERNAME and PAGECRAFT_ANALYTICS_PASSWORD")
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
