package telemetry

import "errors"

// Sentinel kinds for normalizer rejections. Callers drop the message for all
// of them; they only differ for diagnostics.
var (
	ErrBadEnvelope  = errors.New("malformed envelope")
	ErrNotTelemetry = errors.New("not a telemetry update")
	ErrBadGeometry  = errors.New("non-finite or missing position")
)
