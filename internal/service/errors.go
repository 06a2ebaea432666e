package service

import "errors"

var (
	// ErrSyncInProgress is returned when a run is requested while
	// another run holds the run lock. Runs are never interleaved; a
	// concurrent run against the same cursor would corrupt the
	// watermarks.
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrConflictUnresolved marks a conflict entry for which no policy
	// decision was available.
	ErrConflictUnresolved = errors.New("conflict unresolved")

	// ErrUnknownSyncMode is returned for a mode with no configured
	// target.
	ErrUnknownSyncMode = errors.New("unknown sync mode")

	// ErrCoverNotFound is returned when no cover exists for the key.
	ErrCoverNotFound = errors.New("cover not found")
)
