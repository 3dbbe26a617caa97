package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
		Port:      "8375",
		Env:       "test",
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("valid development config", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, validConfig().Validate())
	})

	t.Run("missing port", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Port = ""
		assert.ErrorContains(t, cfg.Validate(), "PORT")
	})

	t.Run("missing jwt secret", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.JWTSecret = ""
		assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET")
	})

	t.Run("non-positive token ttl", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.TokenTTL = 0
		assert.ErrorContains(t, cfg.Validate(), "TOKEN_TTL")
	})

	t.Run("production rejects default secret", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Env = "production"
		cfg.JWTSecret = "your-secret-key-change-in-production"
		cfg.DBPassword = "something-strong"
		assert.ErrorContains(t, cfg.Validate(), "default value")
	})

	t.Run("production rejects short secret", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Env = "production"
		cfg.JWTSecret = "short"
		cfg.DBPassword = "something-strong"
		assert.ErrorContains(t, cfg.Validate(), "32 characters")
	})

	t.Run("production rejects weak db password", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Env = "production"
		cfg.JWTSecret = "0123456789abcdef0123456789abcdef"
		cfg.DBPassword = "password"
		assert.ErrorContains(t, cfg.Validate(), "DB_PASSWORD")
	})
}

func TestGitHubEnabled(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	assert.False(t, cfg.GitHubEnabled())

	cfg.GitHubClientID = "id"
	assert.False(t, cfg.GitHubEnabled())

	cfg.GitHubClientSecret = "secret"
	assert.True(t, cfg.GitHubEnabled())
}
