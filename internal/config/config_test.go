package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Should apply defaults", func(t *testing.T) {
		t.Setenv("POSTGRES_DSN", "postgres://helpdesk@localhost/helpdesk")
		cfg, err := Load("does-not-exist.env")
		require.NoError(t, err)
		assert.Equal(t, "HelpDesk Pro", cfg.App.Name)
		assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
		assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
		assert.Equal(t, 8*time.Hour, cfg.Auth.TokenTTL())
		assert.True(t, cfg.Postgres.RunMigrations)
		assert.False(t, cfg.Seed.Enabled)
	})
	t.Run("Should read overrides", func(t *testing.T) {
		t.Setenv("POSTGRES_DSN", "postgres://helpdesk@localhost/helpdesk")
		t.Setenv("APP_PORT", "9090")
		t.Setenv("SEED_DEMO_DATA", "true")
		t.Setenv("POSTGRES_MAX_CONNS", "20")
		t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "15")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "9090", cfg.App.Port)
		assert.True(t, cfg.Seed.Enabled)
		assert.Equal(t, int32(20), cfg.Postgres.MaxConns)
		assert.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL())
	})
	t.Run("Should require a DSN", func(t *testing.T) {
		t.Setenv("POSTGRES_DSN", "")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "POSTGRES_DSN is required")
	})
	t.Run("Should report every malformed value", func(t *testing.T) {
		t.Setenv("POSTGRES_DSN", "postgres://helpdesk@localhost/helpdesk")
		t.Setenv("REDIS_DB", "x")
		t.Setenv("POSTGRES_MAX_CONNS", "lots")
		t.Setenv("SEED_DEMO_DATA", "maybe")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "REDIS_DB")
		assert.Contains(t, err.Error(), "POSTGRES_MAX_CONNS")
		assert.Contains(t, err.Error(), "SEED_DEMO_DATA")
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			App:      AppConfig{Env: "development", Port: "8080"},
			Postgres: PostgresConfig{DSN: "postgres://x", MinConns: 2, MaxConns: 10},
			Auth:     AuthConfig{JWTSecret: devJWTSecret, BcryptCost: 12},
		}
	}

	t.Run("Should accept the development defaults", func(t *testing.T) {
		cfg := valid()
		assert.NoError(t, cfg.Validate())
	})
	t.Run("Should demand a real secret in production", func(t *testing.T) {
		cfg := valid()
		cfg.App.Env = "production"
		assert.ErrorContains(t, cfg.Validate(), "AUTH_JWT_SECRET")
		cfg.Auth.JWTSecret = "s3cret"
		assert.NoError(t, cfg.Validate())
	})
	t.Run("Should reject inconsistent pool sizes, ports and bcrypt costs", func(t *testing.T) {
		cfg := valid()
		cfg.Postgres.MinConns = 20
		cfg.App.Port = "http"
		cfg.Auth.BcryptCost = 2
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "POSTGRES_MIN_CONNS")
		assert.Contains(t, err.Error(), "APP_PORT")
		assert.Contains(t, err.Error(), "AUTH_BCRYPT_COST")
	})
}
