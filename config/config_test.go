package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	for _, key := range []string{"JWT_SECRET", "PORT", "DB_DRIVER", "ACCESS_TOKEN_TTL", "ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("ACCESS_TOKEN_TTL", "1h")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 6543, cfg.DBPort)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"dev default secret", Config{Environment: "development", DBDriver: "sqlite", JWTSecret: defaultJWTSecret}, false},
		{"empty secret", Config{Environment: "development", DBDriver: "sqlite"}, true},
		{"unknown driver", Config{Environment: "development", DBDriver: "mysql", JWTSecret: "x"}, true},
		{"prod default secret", Config{Environment: "production", DBDriver: "sqlite", JWTSecret: defaultJWTSecret}, true},
		{"prod postgres no password", Config{Environment: "production", DBDriver: "postgres", JWTSecret: "s3cret"}, true},
		{"prod ok", Config{Environment: "production", DBDriver: "postgres", JWTSecret: "s3cret", DBPassword: "pw"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
