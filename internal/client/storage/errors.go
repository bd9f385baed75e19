package storage

import "errors"

// Common client storage errors
var (
	// ErrEntityNotFound indicates that no entity matches the requested id
	ErrEntityNotFound = errors.New("entity not found")

	// ErrCursorNotFound indicates that the stream has never been pulled by this user
	ErrCursorNotFound = errors.New("sync cursor not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
