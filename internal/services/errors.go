package services

import "errors"

var (
	// ErrStoreUnavailable wraps any failure to load the series store.
	ErrStoreUnavailable = errors.New("series store unavailable")
)
