package store

import "errors"

// Sentinel errors returned by storage implementations to signal
// well-known failure conditions. Callers should use [errors.Is] to match
// against these values.
var (
	// ErrRecordNotFound is returned when a Get targets a record
	// (identified by collection and key) that does not exist.
	ErrRecordNotFound = errors.New("sync record was not found")

	// ErrBlobNotFound is returned when a Download targets an object that
	// does not exist in the requested folder.
	ErrBlobNotFound = errors.New("blob was not found")

	// ErrCursorCommit is returned when the all-or-nothing cursor write
	// cannot be completed. A run that hits this error must be reported
	// as fatal: the watermark state on disk is the previous cursor.
	ErrCursorCommit = errors.New("sync cursor commit failed")
)

// Low-level database operation errors, wrapped by repository methods when
// a SQL-level operation fails before any domain logic applies.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised
	// SQL query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a read query against
	// the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrScanningRows is returned when scanning column values from a
	// result set fails.
	ErrScanningRows = errors.New("failed to scan record rows")
)
