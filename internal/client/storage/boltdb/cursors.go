package boltdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/rentkeeper/internal/client/storage"
	"github.com/iudanet/rentkeeper/internal/models"
)

var _ storage.CursorStorage = (*Storage)(nil)

func cursorKey(userID, syncKey string) []byte {
	return []byte(userID + "\x00" + syncKey)
}

func userPrefix(userID string) []byte {
	return []byte(userID + "\x00")
}

// GetCursor returns the pull position of (userID, syncKey)
func (s *Storage) GetCursor(ctx context.Context, userID, syncKey string) (*models.SyncCursor, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var cursor *models.SyncCursor
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCursors)
		if bucket == nil {
			return fmt.Errorf("cursors bucket not found")
		}

		data := bucket.Get(cursorKey(userID, syncKey))
		if data == nil {
			return storage.ErrCursorNotFound
		}

		cursor = &models.SyncCursor{}
		if err := json.Unmarshal(data, cursor); err != nil {
			return fmt.Errorf("failed to unmarshal cursor: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return cursor, nil
}

// SaveCursor replaces the stored cursor
func (s *Storage) SaveCursor(ctx context.Context, cursor *models.SyncCursor) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	if cursor.SyncKey == "" {
		return fmt.Errorf("cursor without sync key")
	}

	data, err := json.Marshal(cursor)
	if err != nil {
		return fmt.Errorf("failed to marshal cursor: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCursors)
		if bucket == nil {
			return fmt.Errorf("cursors bucket not found")
		}
		if err := bucket.Put(cursorKey(cursor.UserID, cursor.SyncKey), data); err != nil {
			return fmt.Errorf("failed to save cursor: %w", err)
		}
		return nil
	})
}

// DeleteUserCursors removes every cursor of the user
func (s *Storage) DeleteUserCursors(ctx context.Context, userID string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCursors)
		if bucket == nil {
			return fmt.Errorf("cursors bucket not found")
		}

		// Удалять во время обхода курсором нельзя, сначала собираем ключи
		prefix := userPrefix(userID)
		var keys [][]byte
		c := bucket.Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}

		for _, k := range keys {
			if err := bucket.Delete(k); err != nil {
				return fmt.Errorf("failed to delete cursor: %w", err)
			}
		}
		return nil
	})
}

// ListCursors returns every cursor of the user
func (s *Storage) ListCursors(ctx context.Context, userID string) ([]*models.SyncCursor, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var cursors []*models.SyncCursor
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCursors)
		if bucket == nil {
			return fmt.Errorf("cursors bucket not found")
		}

		prefix := userPrefix(userID)
		c := bucket.Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var cursor models.SyncCursor
			if err := json.Unmarshal(v, &cursor); err != nil {
				return fmt.Errorf("failed to unmarshal cursor: %w", err)
			}
			cursors = append(cursors, &cursor)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return cursors, nil
}
