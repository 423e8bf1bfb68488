package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, time.Hour, cfg.JWT.AccessExpiration)
	assert.Equal(t, SessionDriverMemory, cfg.Wizard.SessionDriver)
	assert.Equal(t, 24*time.Hour, cfg.Wizard.SessionTTL)
	assert.Equal(t, 10*time.Minute, cfg.Wizard.SweepInterval)
	assert.EqualValues(t, 25, cfg.Database.MaxConns)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins())
	assert.False(t, cfg.Wizard.StrictEmail)
	assert.Empty(t, cfg.SMTP.Host)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, "http://localhost:3000/invitations", cfg.SMTP.InvitationBaseURL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("SESSION_DRIVER", "redis")
	t.Setenv("REDIS_URL", "redis://cache:6379/2")
	t.Setenv("WIZARD_SESSION_TTL", "30m")
	t.Setenv("FRONTEND_URL", "https://app.mind-links.io, https://admin.mind-links.io")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://postgres:pw@db:6543/mindlinks?sslmode=disable", cfg.DatabaseURL())
	assert.Equal(t, SessionDriverRedis, cfg.Wizard.SessionDriver)
	assert.Equal(t, "redis://cache:6379/2", cfg.Redis.URL)
	assert.Equal(t, 30*time.Minute, cfg.Wizard.SessionTTL)
	assert.Equal(t, []string{"https://app.mind-links.io", "https://admin.mind-links.io"}, cfg.AllowedOrigins())
	assert.Equal(t, "https://app.mind-links.io/invitations", cfg.SMTP.InvitationBaseURL)
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"missing jwt secret", map[string]string{"STORAGE_DRIVER": "memory"}},
		{"postgres without password", map[string]string{"JWT_SECRET_KEY": "s", "STORAGE_DRIVER": "postgres"}},
		{"unknown storage driver", map[string]string{"JWT_SECRET_KEY": "s", "STORAGE_DRIVER": "sqlite"}},
		{"unknown session driver", map[string]string{"JWT_SECRET_KEY": "s", "STORAGE_DRIVER": "memory", "SESSION_DRIVER": "file"}},
		{"bad ttl", map[string]string{"JWT_SECRET_KEY": "s", "STORAGE_DRIVER": "memory", "WIZARD_SESSION_TTL": "soon"}},
		{"zero sweep interval", map[string]string{"JWT_SECRET_KEY": "s", "STORAGE_DRIVER": "memory", "WIZARD_SWEEP_INTERVAL": "0s"}},
		{"bad port", map[string]string{"JWT_SECRET_KEY": "s", "STORAGE_DRIVER": "memory", "APP_PORT": "http"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET_KEY", "")
			t.Setenv("DB_PASSWORD", "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
