package storage

import "errors"

// Common storage errors.
var (
	// ErrNotFound is returned when a quad is not found.
	ErrNotFound = errors.New("quad not found")

	// ErrClosed is returned when operating on a closed store.
	ErrClosed = errors.New("store is closed")
)
