package config

// validate checks that the final merged [Config] satisfies the invariants
// the engine relies on at startup.
//
// Returns nil if the configuration is valid, or a descriptive sentinel
// error otherwise.
func (cfg *Config) validate() error {
	if cfg.Storage.DB.DSN == "" || cfg.Storage.Library == "" {
		return ErrInvalidStorageConfigs
	}

	switch cfg.Drive.Backend {
	case "webdav":
		if cfg.Drive.Address == "" {
			return ErrInvalidDriveConfigs
		}
	case "folder":
		if cfg.Drive.Folder == "" {
			return ErrInvalidDriveConfigs
		}
	case "":
		// No remote backend: compare-only and localOnly flows still work.
	default:
		return ErrInvalidDriveConfigs
	}

	switch cfg.Sync.ConflictPolicy {
	case "prefer-local", "prefer-remote", "ask":
	default:
		return ErrInvalidSyncConfigs
	}

	return nil
}
