package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "simplesecurity", cfg.AppName)
	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, "pass2app", cfg.AdminPassword)
	assert.Equal(t, "bcrypt", cfg.PasswordScheme)
	assert.Equal(t, time.Hour, cfg.TicketTTL)
	assert.False(t, cfg.CookieSecure)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("ADMIN_PASSWORD", "s3cret")
	t.Setenv("TICKET_TTL", "30m")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("DB_MAX_CONNS", "5")

	cfg := Load()

	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.Equal(t, "s3cret", cfg.AdminPassword)
	assert.Equal(t, 30*time.Minute, cfg.TicketTTL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, int32(5), cfg.DBMaxConns)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("TICKET_TTL", "not-a-duration")
	t.Setenv("COOKIE_SECURE", "not-a-bool")
	t.Setenv("DB_MAX_CONNS", "nope")

	cfg := Load()

	assert.Equal(t, time.Hour, cfg.TicketTTL)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, int32(10), cfg.DBMaxConns)
}

func TestPostgresDSN(t *testing.T) {
	t.Setenv("DB_USER", "alice")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_NAME", "auth")

	cfg := Load()
	require.Equal(t, "postgres://alice:pw@db:5433/auth?sslmode=disable", cfg.PostgresDSN())
}

func TestCORSOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", " http://a.local , http://b.local ,")
	cfg := Load()
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.CORSOrigins())
}
