package link

import "errors"

var (
	// ErrNotFound indicates the short code is unknown. Permanent.
	ErrNotFound = errors.New("link not found")

	// ErrCodeConflict indicates the short code is already taken.
	ErrCodeConflict = errors.New("short code already exists")

	// ErrStoreUnavailable indicates a transient storage failure.
	// Callers must never collapse this into ErrNotFound.
	ErrStoreUnavailable = errors.New("link store unavailable")
)
