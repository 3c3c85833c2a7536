package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SUPABASE_DB_CONNECTION", "")
	t.Setenv("SESSION_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, "shelflife.db", cfg.DatabaseURL)
	assert.Equal(t, DevSessionSecret, cfg.SessionSecret)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10, cfg.AuthRateLimit)
	assert.Equal(t, time.Minute, cfg.AuthRateWindow)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_PORT", ":9090")
	t.Setenv("DATABASE_URL", "postgres://user:pass@db:5432/shelflife")
	t.Setenv("SESSION_SECRET", "a-real-secret")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("AUTH_RATE_LIMIT", "5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, ":9090", cfg.Port)
	assert.Equal(t, "postgres://user:pass@db:5432/shelflife", cfg.DatabaseURL)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, 5, cfg.AuthRateLimit)
}

func TestLoadSupabaseAlias(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SUPABASE_DB_CONNECTION", "postgresql://supabase/db")
	t.Setenv("APP_ENV", "")
	t.Setenv("SESSION_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgresql://supabase/db", cfg.DatabaseURL)
}

func TestProductionRejectsDevSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{DatabaseURL: "shelflife.db", SessionSecret: "s", SessionTTL: time.Hour}
	require.NoError(t, base.Validate())

	noTTL := base
	noTTL.SessionTTL = 0
	assert.Error(t, noTTL.Validate())

	badLimit := base
	badLimit.RedisAddr = "localhost:6379"
	assert.Error(t, badLimit.Validate())
}
