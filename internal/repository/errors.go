package repository

import "errors"

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned on unique constraint violations.
	ErrConflict = errors.New("already exists")
	// ErrStaleVersion is returned when an optimistic write lost a race too many times.
	ErrStaleVersion = errors.New("stale version")
)
