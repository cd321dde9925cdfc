package app

import (
	"path/filepath"
	"testing"
	"time"

	"partner-portal/internal/config"
	"partner-portal/internal/db"
	"partner-portal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unreachablePostgres(fallback bool) config.Config {
	return config.Config{
		Storage: config.StorageConfig{Driver: config.StorageDriverPostgres, FallbackMemory: fallback},
		DB: config.DBConfig{
			DSN:             "host=127.0.0.1 port=1 user=postgres password=postgres dbname=none sslmode=disable connect_timeout=1",
			ConnMaxLifetime: time.Minute,
		},
	}
}

func TestOpenStorageFallsBackToMemory(t *testing.T) {
	repo, dbConn, storage, err := openStorage(unreachablePostgres(true), logger.NewNop())

	require.NoError(t, err)
	assert.NotNil(t, repo)
	assert.Nil(t, dbConn)
	assert.Equal(t, config.StorageDriverMemory, storage)
}

func TestOpenStorageWithoutFallbackFails(t *testing.T) {
	_, _, _, err := openStorage(unreachablePostgres(false), logger.NewNop())

	assert.Error(t, err)
}

func TestOpenStorageSQLite(t *testing.T) {
	cfg := config.Config{Storage: config.StorageConfig{
		Driver:     config.StorageDriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "portal.db"),
	}}

	repo, dbConn, storage, err := openStorage(cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(dbConn) })

	assert.NotNil(t, repo)
	assert.Equal(t, config.StorageDriverSQLite, storage)
}
