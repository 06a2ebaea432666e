package config

import (
	"flag"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-d local record database path
//	-l library directory (blob storage root)
//	-drive-backend remote backend name ("webdav" or "folder")
//	-drive-address remote drive base URL
//	-drive-token remote drive bearer token
//	-drive-folder target directory for the folder backend
//	-request-timeout remote request timeout (e.g. "30s")
//	-sync-workers transfer worker count
//	-conflict-policy conflict policy ("prefer-local", "prefer-remote", "ask")
//	-sync-interval periodic sync interval (e.g. "5m")
//	-c/-config json file path with configs
func ParseFlags() *Config {
	var databaseDSN string
	var libraryDir string
	var driveBackend string
	var driveAddress string
	var driveToken string
	var driveFolder string
	var requestTimeout time.Duration
	var syncWorkers int
	var conflictPolicy string
	var syncInterval time.Duration
	var jsonConfigPath string

	flag.StringVar(&databaseDSN, "d", "", "Local record database path")
	flag.StringVar(&libraryDir, "l", "", "Library directory (blob storage root)")
	flag.StringVar(&driveBackend, "drive-backend", "", "Remote drive backend (webdav, folder)")
	flag.StringVar(&driveAddress, "drive-address", "", "Remote drive base URL")
	flag.StringVar(&driveToken, "drive-token", "", "Remote drive bearer token")
	flag.StringVar(&driveFolder, "drive-folder", "", "Folder backend target directory")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Remote request timeout (e.g., 30s)")
	flag.IntVar(&syncWorkers, "sync-workers", 0, "Transfer worker count")
	flag.StringVar(&conflictPolicy, "conflict-policy", "", "Conflict policy (prefer-local, prefer-remote, ask)")
	flag.DurationVar(&syncInterval, "sync-interval", 0, "Periodic sync interval (e.g., 5m)")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")

	flag.Parse()

	return &Config{
		Storage: Storage{
			DB:      DB{DSN: databaseDSN},
			Library: libraryDir,
		},
		Drive: Drive{
			Backend:        driveBackend,
			Address:        driveAddress,
			Token:          driveToken,
			Folder:         driveFolder,
			RequestTimeout: requestTimeout,
		},
		Sync: Sync{
			WorkerCount:    syncWorkers,
			ConflictPolicy: conflictPolicy,
		},
		Workers:      Workers{SyncInterval: syncInterval},
		JSONFilePath: jsonConfigPath,
	}
}
