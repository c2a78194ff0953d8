package domain

import "errors"

var (
	// ErrInvalidInput: the caller's request cannot be calculated as sent (client error).
	ErrInvalidInput = errors.New("invalid input")
	// ErrStoreUnavailable: the catalog store failed; the cause is wrapped for logs only.
	ErrStoreUnavailable = errors.New("catalog store unavailable")
)
