package storage

import "errors"

var (
	ErrNotFound   = errors.New("blob not found")
	ErrEmptyKey   = errors.New("storage key must not be empty")
	ErrInvalidKey = errors.New("storage key contains invalid path segment")
	// ErrDisabled is returned by reads when archiving is turned off.
	ErrDisabled = errors.New("storage disabled")
)
