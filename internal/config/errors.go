package config

import "errors"

// Validation errors returned by [Config.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidStorageConfigs indicates invalid local storage settings
	// (for example, an empty database path or library directory).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidDriveConfigs indicates invalid remote drive settings
	// (for example, an unknown backend or a webdav backend without an
	// address).
	ErrInvalidDriveConfigs = errors.New("invalid drive configuration")
	// ErrInvalidSyncConfigs indicates invalid engine settings
	// (for example, an unrecognized conflict policy).
	ErrInvalidSyncConfigs = errors.New("invalid sync configuration")
)
