package repository

import "errors"

// Sentinel kinds for marker store errors.
var (
	ErrNotFound    = errors.New("marker not found")
	ErrUnknownKind = errors.New("unknown chart kind")
)
