package export

import "errors"

// Export errors.
var (
	// ErrNoData is returned when there is nothing to export.
	ErrNoData = errors.New("nothing to export")

	// ErrUnknownFormat is returned for an unsupported export format.
	ErrUnknownFormat = errors.New("unknown export format")
)
