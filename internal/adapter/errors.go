package adapter

import "errors"

// Sentinel errors used to classify remote drive failures. The
// orchestrator matches these with [errors.Is] to decide between retrying
// an entry and failing it permanently.
var (
	// ErrTransient marks network failures, timeouts, rate limits and
	// server-side errors. Entries failing with it are retried with
	// bounded backoff and, if still failing, leave the run in
	// partialFailure so the next run picks them up again.
	ErrTransient = errors.New("transient drive error")

	// ErrQuotaOrAuth marks authentication, authorization and quota
	// failures. Fatal for the affected entry but not for the rest of
	// the run.
	ErrQuotaOrAuth = errors.New("drive quota or auth error")

	// ErrNoBackend is returned when a remote operation is requested but
	// no drive backend has been configured.
	ErrNoBackend = errors.New("no drive backend configured")
)
