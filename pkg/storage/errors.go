package storage

import "errors"

// Sentinel errors for storage operations.
var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a record violates a uniqueness
	// constraint (duplicate ID, username, or email).
	ErrConflict = errors.New("record already exists")
)
