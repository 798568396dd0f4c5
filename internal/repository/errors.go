package repository

import "errors"

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("repository: email already registered")
)
