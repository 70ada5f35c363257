package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "chamados-service", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())

	assert.True(t, cfg.Postgres.RunMigrations)
	assert.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr)

	assert.Equal(t, 480, cfg.Auth.AccessTokenTTLMinutes)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, 6, cfg.Auth.MinPasswordLength)
	assert.Equal(t, 5*time.Minute, cfg.Auth.IdempotencyTTL())

	assert.Equal(t, "data/anexos", cfg.Storage.BaseDir)
	assert.Empty(t, cfg.SMTP.Host, "email disabled unless configured")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "5")
	t.Setenv("AUTH_IDEMPOTENCY_TTL_SECONDS", "60")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.Equal(t, 5*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, time.Minute, cfg.Auth.IdempotencyTTL())
	assert.False(t, cfg.Postgres.RunMigrations)
}

func TestLoadRejectsInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	_, err := Load()
	assert.Error(t, err)
}

func TestDurationHelpersGuardNonPositive(t *testing.T) {
	app := AppConfig{RequestTimeoutSeconds: 0}
	assert.Equal(t, time.Duration(0), app.RequestTimeout())

	auth := AuthConfig{IdempotencyTTLSeconds: -1}
	assert.Equal(t, 5*time.Minute, auth.IdempotencyTTL())
}
