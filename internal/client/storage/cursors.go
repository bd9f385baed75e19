package storage

import (
	"context"

	"github.com/iudanet/rentkeeper/internal/models"
)

//go:generate moq -out cursorstorage_mock.go . CursorStorage

// CursorStorage persists incremental pull positions keyed by (user id, sync key).
type CursorStorage interface {
	// GetCursor returns ErrCursorNotFound when the stream was never pulled.
	GetCursor(ctx context.Context, userID, syncKey string) (*models.SyncCursor, error)

	// SaveCursor replaces the stored cursor of (cursor.UserID, cursor.SyncKey).
	SaveCursor(ctx context.Context, cursor *models.SyncCursor) error

	// DeleteUserCursors removes every cursor of the user.
	DeleteUserCursors(ctx context.Context, userID string) error

	// ListCursors returns every cursor of the user.
	ListCursors(ctx context.Context, userID string) ([]*models.SyncCursor, error)
}
