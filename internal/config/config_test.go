// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	require.NoError(t, os.Setenv(key, value))
}

func TestLoad_Defaults(t *testing.T) {
	// Clear environment and set only required var
	os.Clearenv()
	setEnv(t, "PAGECRAFT_SESSION_SECRET", "test-secret-key-32-bytes-long!!!")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./data/pagecraft.db", cfg.DBPath)
	assert.Equal(t, "localhost", cfg.ServerHost)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "pagecraft.site", cfg.BaseDomain)
	assert.False(t, cfg.AnalyticsEnabled())
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	customSecret := "custom-secret-key-32-bytes-long!"
	setEnv(t, "PAGECRAFT_SESSION_SECRET", customSecret)
	setEnv(t, "PAGECRAFT_DB_PATH", "/custom/path.db")
	setEnv(t, "PAGECRAFT_SERVER_HOST", "0.0.0.0")
	setEnv(t, "PAGECRAFT_SERVER_PORT", "3000")
	setEnv(t, "PAGECRAFT_ENV", "production")
	setEnv(t, "PAGECRAFT_BASE_DOMAIN", "example.dev")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, customSecret, cfg.SessionSecret)
	assert.Equal(t, "/custom/path.db", cfg.DBPath)
	assert.Equal(t, 3000, cfg.ServerPort)
	assert.Equal(t, "example.dev", cfg.BaseDomain)
}

func TestLoad_RequiredSessionSecret(t *testing.T) {
	os.Clearenv()
	// Don't set PAGECRAFT_SESSION_SECRET

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_SessionSecretTooShort(t *testing.T) {
	tests := []struct {
		name   string
		secret string
	}{
		{"short", "short"},
		{"31_bytes", "1234567890123456789012345678901"}, // 31 bytes
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			setEnv(t, "PAGECRAFT_SESSION_SECRET", tt.secret)

			_, err := Load()
			require.Error(t, err, "Load() should fail with %d-byte secret", len(tt.secret))
		})
	}
}

func TestLoad_AnalyticsRequiresCredentials(t *testing.T) {
	os.Clearenv()
	setEnv(t, "PAGECRAFT_SESSION_SECRET", "test-secret-key-32-bytes-long!!!")
	setEnv(t, "PAGECRAFT_ANALYTICS_URL", "https://analytics.example.com")

	_, err := Load()
	require.Error(t, err, "Load() should fail with analytics URL but no credentials")

	setEnv(t, "PAGECRAFT_ANALYTICS_USERNAME", "admin")
	setEnv(t, "PAGECRAFT_ANALYTICS_PASSWORD", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.AnalyticsEnabled())
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"development", true},
		{"production", false},
		{"staging", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := Config{Env: tt.env}
			assert.Equal(t, tt.want, cfg.IsDevelopment())
		})
	}
}

func TestConfig_ServerAddr(t *testing.T) {
	assert.Equal(t, "localhost:8080", Config{ServerHost: "localhost", ServerPort: 8080}.ServerAddr())
	assert.Equal(t, "0.0.0.0:3000", Config{ServerHost: "0.0.0.0", ServerPort: 3000}.ServerAddr())
}

func TestConfig_UseRedisCache(t *testing.T) {
	assert.False(t, Config{}.UseRedisCache())
	assert.True(t, Config{RedisURL: "redis://localhost:6379"}.UseRedisCache())
}
