package ingest

import "errors"

// Source errors.
var (
	// ErrAlreadyRunning is returned when starting a source that is running.
	ErrAlreadyRunning = errors.New("source already running")

	// ErrConnectTimeout is returned when the initial broker connect does not
	// complete in time.
	ErrConnectTimeout = errors.New("broker connect timed out")
)
