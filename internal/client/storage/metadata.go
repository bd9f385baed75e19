package storage

import "context"

//go:generate moq -out metadata_mock.go . MetadataStorage

// MetadataStorage defines interface for storing client metadata
type MetadataStorage interface {
	// SaveActiveUser records the user the local store is synchronized for
	SaveActiveUser(ctx context.Context, userID string) error

	// GetActiveUser returns an empty string if no user has synced yet
	GetActiveUser(ctx context.Context) (string, error)

	// GetSchemaVersion returns the version of the local store layout
	GetSchemaVersion(ctx context.Context) (int, error)
}
