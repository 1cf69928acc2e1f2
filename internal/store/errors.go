package store

import "errors"

// Predefined errors for the store layer.
var (
	// ErrNotFound indicates that a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict indicates an insert reused an existing id.
	ErrConflict = errors.New("conflict")
)
