package config

import (
	"time"
)

// Config is the top-level configuration container for the sync engine.
// It aggregates all sub-configurations and is populated by merging values
// from environment variables, command-line flags, and an optional JSON
// file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type Config struct {
	// Storage holds configuration for the local persistence layer: the
	// record database and the blob library directory.
	Storage Storage `envPrefix:"STORAGE_"`

	// Drive holds configuration for the remote drive backend.
	Drive Drive `envPrefix:"DRIVE_"`

	// Sync holds the reconciliation and transfer engine settings.
	Sync Sync `envPrefix:"SYNC_"`

	// Workers holds background worker settings.
	Workers Workers `envPrefix:"WORKERS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Storage groups the local persistence settings.
type Storage struct {
	// DB holds the local record database settings.
	DB DB `envPrefix:"DB_"`

	// Library is the root directory of the local blob library; the
	// "book", "cover" and "config" folders live below it.
	// Env: STORAGE_LIBRARY_DIR
	Library string `env:"LIBRARY_DIR"`
}

// DB holds connection settings for the local SQLite record database.
type DB struct {
	// DSN is the SQLite file path or connection string
	// (e.g. "~/.koodo/library.db").
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Drive holds settings for the remote blob/record backend.
type Drive struct {
	// Backend selects the drive implementation: "webdav" for the HTTP
	// drive API, "folder" for a mounted local folder.
	// Env: DRIVE_BACKEND
	Backend string `env:"BACKEND"`

	// Address is the base URL of the remote drive API, used by the
	// webdav backend.
	// Env: DRIVE_ADDRESS
	Address string `env:"ADDRESS"`

	// Token is the bearer token presented to the remote drive API.
	// Env: DRIVE_TOKEN
	Token string `env:"TOKEN"`

	// Folder is the target directory used by the folder backend.
	// Env: DRIVE_FOLDER
	Folder string `env:"FOLDER"`

	// RequestTimeout bounds a single remote request (e.g. "30s").
	// Env: DRIVE_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Sync holds the transfer engine settings.
type Sync struct {
	// WorkerCount bounds per-phase transfer concurrency. Entries within
	// a phase are independently atomic, so this is an optimization knob,
	// not a correctness one.
	// Env: SYNC_WORKER_COUNT
	WorkerCount int `env:"WORKER_COUNT"`

	// ConflictPolicy is the default conflict policy
	// ("prefer-local", "prefer-remote" or "ask").
	// Env: SYNC_CONFLICT_POLICY
	ConflictPolicy string `env:"CONFLICT_POLICY"`

	// Retry holds the per-entry backoff parameters for transient
	// transport failures.
	Retry Retry `envPrefix:"RETRY_"`
}

// Retry holds bounded exponential backoff parameters.
type Retry struct {
	// MaxAttempts caps how many times one entry is tried.
	// Env: SYNC_RETRY_MAX_ATTEMPTS
	MaxAttempts int `env:"MAX_ATTEMPTS"`

	// BaseDelay is the initial backoff delay (e.g. "200ms").
	// Env: SYNC_RETRY_BASE_DELAY
	BaseDelay time.Duration `env:"BASE_DELAY"`

	// MaxDelay caps the backoff delay curve (e.g. "5s").
	// Env: SYNC_RETRY_MAX_DELAY
	MaxDelay time.Duration `env:"MAX_DELAY"`
}

// Workers holds configuration for background worker processes.
type Workers struct {
	// SyncInterval defines how often the periodic sync job runs.
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`
}

// Defaults applied by GetConfig for fields left unset by every source.
const (
	DefaultWorkerCount    = 4
	DefaultMaxAttempts    = 3
	DefaultBaseDelay      = 200 * time.Millisecond
	DefaultMaxDelay       = 5 * time.Second
	DefaultRequestTimeout = 30 * time.Second
	DefaultSyncInterval   = 5 * time.Minute
	DefaultConflictPolicy = "ask"
)

// GetConfig loads, merges, defaults, and validates the engine
// configuration from all available sources in the following priority
// order (an earlier source wins for fields it sets):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//
// Returns a fully populated *Config or an error if any source fails to
// load or the final config fails validation.
func GetConfig() (*Config, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}

// applyDefaults fills engine knobs that no source provided.
func (cfg *Config) applyDefaults() {
	if cfg.Sync.WorkerCount <= 0 {
		cfg.Sync.WorkerCount = DefaultWorkerCount
	}
	if cfg.Sync.ConflictPolicy == "" {
		cfg.Sync.ConflictPolicy = DefaultConflictPolicy
	}
	if cfg.Sync.Retry.MaxAttempts <= 0 {
		cfg.Sync.Retry.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Sync.Retry.BaseDelay <= 0 {
		cfg.Sync.Retry.BaseDelay = DefaultBaseDelay
	}
	if cfg.Sync.Retry.MaxDelay <= 0 {
		cfg.Sync.Retry.MaxDelay = DefaultMaxDelay
	}
	if cfg.Drive.RequestTimeout <= 0 {
		cfg.Drive.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Workers.SyncInterval <= 0 {
		cfg.Workers.SyncInterval = DefaultSyncInterval
	}
}
