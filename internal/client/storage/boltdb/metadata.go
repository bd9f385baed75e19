package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/rentkeeper/internal/client/storage"
)

var (
	keyActiveUser    = []byte("active_user_id")
	keySchemaVersion = []byte("schema_version")
)

// SaveActiveUser records the user the local store is synchronized for
func (s *Storage) SaveActiveUser(ctx context.Context, userID string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		if err := bucket.Put(keyActiveUser, []byte(userID)); err != nil {
			return fmt.Errorf("failed to save active user: %w", err)
		}

		return nil
	})
}

// GetActiveUser returns an empty string if no user has synced yet
func (s *Storage) GetActiveUser(ctx context.Context) (string, error) {
	if s.db == nil {
		return "", storage.ErrStorageClosed
	}

	var userID string
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}
		userID = string(bucket.Get(keyActiveUser))
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to get active user: %w", err)
	}

	return userID, nil
}

// GetSchemaVersion returns the version of the local store layout
func (s *Storage) GetSchemaVersion(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, storage.ErrStorageClosed
	}

	var version uint64
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}
		version = readUint64(bucket.Get(keySchemaVersion))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}

	return int(version), nil
}
