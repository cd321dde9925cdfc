package config

import (
	"os"
	"testing"
	"time"

	"partner-portal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("ADMIN_SECRET", "")
	t.Setenv("PARTNER_CACHE_TTL", "")

	cfg, err := Load(logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, StorageDriverPostgres, cfg.Storage.Driver)
	assert.True(t, cfg.Storage.FallbackMemory)
	assert.Zero(t, cfg.PartnerTTL)
	assert.Equal(t, 5*time.Second, cfg.Webhook.Timeout)
	assert.Empty(t, cfg.AdminSecret)
}

func TestLoadFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("ADMIN_SECRET", "scooby")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("PARTNER_CACHE_TTL", "30s")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")

	cfg, err := Load(logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "scooby", cfg.AdminSecret)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 30*time.Second, cfg.PartnerTTL)
	assert.Equal(t, 10, cfg.DB.MaxOpenConns)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STORAGE_DRIVER", "mysql")

	_, err := Load(logger.NewNop())
	require.Error(t, err)
}

func TestGetDSN(t *testing.T) {
	cfg := DBConfig{Host: "db", User: "u", Password: "p", Name: "n", Port: "5432", SSLMode: "disable", TimeZone: "UTC"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC", cfg.GetDSN())

	cfg.DSN = "postgres://x"
	assert.Equal(t, "postgres://x", cfg.GetDSN())
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
