package storage

import "errors"

// Common storage errors
var (
	// ErrUnknownTable indicates that the table is not served by the rows API
	ErrUnknownTable = errors.New("unknown table")

	// ErrForbidden indicates that the row belongs to another user
	ErrForbidden = errors.New("row belongs to another user")

	// ErrInvalidRow indicates that a row has no remote id
	ErrInvalidRow = errors.New("invalid row")
)
