package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredDBEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_HOST", "db.example.com")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASS", "hunter2")
	t.Setenv("DB_NAME", "eventdb")
	// Clear optional variables so defaults are exercised regardless of
	// the surrounding environment.
	t.Setenv("DB_PORT", "")
	t.Setenv("DB_ENCRYPT", "")
	t.Setenv("DB_TRUST_CERT", "")
	t.Setenv("PORT", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("APP_ENV", "")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredDBEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "db.example.com", cfg.DBHost)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, "5000", cfg.Port)
	assert.True(t, cfg.DBEncrypt)
	assert.False(t, cfg.DBTrustCert)
	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_MissingDatabaseEnv(t *testing.T) {
	setRequiredDBEnv(t)
	t.Setenv("DB_HOST", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_Overrides(t *testing.T) {
	setRequiredDBEnv(t)
	t.Setenv("DB_PORT", "6000")
	t.Setenv("DB_ENCRYPT", "false")
	t.Setenv("DB_TRUST_CERT", "true")
	t.Setenv("PORT", "8080")
	t.Setenv("APP_ENV", "production")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "6000", cfg.DBPort)
	assert.False(t, cfg.DBEncrypt)
	assert.True(t, cfg.DBTrustCert)
	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.IsProduction())
}

func TestLoadConfig_InvalidBoolFallsBack(t *testing.T) {
	setRequiredDBEnv(t)
	t.Setenv("DB_ENCRYPT", "banana")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.DBEncrypt)
}
