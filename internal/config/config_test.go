package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 3001, cfg.Port)
	assert.Equal(t, "user-token", cfg.Auth.SessionKeyPrefix)
	assert.Equal(t, time.Hour, cfg.Auth.SessionTTL())
	assert.Equal(t, time.Hour, cfg.Auth.TokenExpiry)
	assert.Equal(t, devSecret, cfg.Auth.Secret)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_SessionTTLExceedsTokenExpiry(t *testing.T) {
	t.Setenv("TOKEN_EXPIRY", "30m")
	t.Setenv("SESSION_TTL_SECONDS", "3600")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not exceed TOKEN_EXPIRY")
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENV", "Production")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET is required")

	t.Setenv("JWT_SECRET", "short")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 characters")

	t.Setenv("JWT_SECRET", strings.Repeat("k", 32))
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SESSION_KEY_PREFIX", "pg-session")
	t.Setenv("SESSION_TTL_SECONDS", "600")
	t.Setenv("TOKEN_EXPIRY", "24h")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "pg-session", cfg.Auth.SessionKeyPrefix)
	assert.Equal(t, 10*time.Minute, cfg.Auth.SessionTTL())
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenExpiry)
	assert.Equal(t, []string{"http://localhost:3001", "https://a.example", "https://b.example"}, cfg.AllowedOrigins())
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", User: "u", Password: "p@ss", Name: "n"}
	dsn := d.DSN()
	assert.Contains(t, dsn, "tcp(db:3306)/n")
	assert.Contains(t, dsn, "parseTime=true")

	d.URL = "u:p@tcp(other:3307)/x"
	assert.Equal(t, "u:p@tcp(other:3307)/x", d.DSN())
}
