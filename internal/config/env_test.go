package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnvVars(t *testing.T, vars map[string]string) {
	t.Helper()
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestParseEnv_AllFields(t *testing.T) {
	// Arrange
	envVars := map[string]string{
		"CONFIG": "/path/to/config.json",

		"STORAGE_DB_DATABASE_URI": "/home/u/.koodo/library.db",
		"STORAGE_LIBRARY_DIR":     "/home/u/.koodo/library",

		"DRIVE_BACKEND":         "webdav",
		"DRIVE_ADDRESS":         "https://drive.example.com/dav",
		"DRIVE_TOKEN":           "secret-token",
		"DRIVE_FOLDER":          "/mnt/backup",
		"DRIVE_REQUEST_TIMEOUT": "30s",

		"SYNC_WORKER_COUNT":       "8",
		"SYNC_CONFLICT_POLICY":    "prefer-local",
		"SYNC_RETRY_MAX_ATTEMPTS": "5",
		"SYNC_RETRY_BASE_DELAY":   "100ms",
		"SYNC_RETRY_MAX_DELAY":    "2s",

		"WORKERS_SYNC_INTERVAL": "10m",
	}
	setEnvVars(t, envVars)

	// Act
	cfg := &Config{}
	err := parseEnv(cfg)

	// Assert
	require.NoError(t, err)

	assert.Equal(t, "/path/to/config.json", cfg.JSONFilePath)

	assert.Equal(t, "/home/u/.koodo/library.db", cfg.Storage.DB.DSN)
	assert.Equal(t, "/home/u/.koodo/library", cfg.Storage.Library)

	assert.Equal(t, "webdav", cfg.Drive.Backend)
	assert.Equal(t, "https://drive.example.com/dav", cfg.Drive.Address)
	assert.Equal(t, "secret-token", cfg.Drive.Token)
	assert.Equal(t, "/mnt/backup", cfg.Drive.Folder)
	assert.Equal(t, 30*time.Second, cfg.Drive.RequestTimeout)

	assert.Equal(t, 8, cfg.Sync.WorkerCount)
	assert.Equal(t, "prefer-local", cfg.Sync.ConflictPolicy)
	assert.Equal(t, 5, cfg.Sync.Retry.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.Sync.Retry.BaseDelay)
	assert.Equal(t, 2*time.Second, cfg.Sync.Retry.MaxDelay)

	assert.Equal(t, 10*time.Minute, cfg.Workers.SyncInterval)
}

func TestParseEnv_PartialFields(t *testing.T) {
	setEnvVars(t, map[string]string{
		"DRIVE_BACKEND":       "folder",
		"STORAGE_LIBRARY_DIR": "/data/library",
	})

	cfg := &Config{}
	err := parseEnv(cfg)

	require.NoError(t, err)
	assert.Equal(t, "folder", cfg.Drive.Backend)
	assert.Equal(t, "/data/library", cfg.Storage.Library)
	assert.Empty(t, cfg.Storage.DB.DSN)
	assert.Zero(t, cfg.Sync.WorkerCount)
}

func TestParseEnv_InvalidDuration(t *testing.T) {
	setEnvVars(t, map[string]string{
		"DRIVE_REQUEST_TIMEOUT": "not-a-duration",
	})

	cfg := &Config{}
	err := parseEnv(cfg)

	require.Error(t, err)
}
