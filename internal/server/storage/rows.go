package storage

import (
	"context"
	"encoding/json"
)

// Row is one stored row of a rows API table.
// Body holds the row's JSON without the server-owned updated_at and user_id.
type Row struct {
	RemoteID  string
	UserID    string
	Body      json.RawMessage
	UpdatedAt int64 // миллисекунды, проставляются сервером
}

// RowQuery selects one page of a user's rows.
type RowQuery struct {
	Table  string
	UserID string
	Since  int64 // включительно
	Limit  int
	Offset int
}

//go:generate moq -out rowstorage_mock.go . RowStorage

// RowStorage defines interface for rows API persistence
type RowStorage interface {
	// UpsertRows writes rows keyed by remote id and stamps them with a server time
	// strictly greater than any earlier stamp of the table.
	// Returns ErrForbidden if any row belongs to another user; nothing is written then.
	UpsertRows(ctx context.Context, table, userID string, rows []*Row) ([]*Row, error)

	// SelectRows returns rows with updated_at >= q.Since ordered by (updated_at, remote_id)
	SelectRows(ctx context.Context, q RowQuery) ([]*Row, error)

	// SelectRemoteIDs returns one window of the user's remote ids ordered by remote id
	SelectRemoteIDs(ctx context.Context, table, userID string, offset, limit int) ([]string, error)

	// DeleteRow removes the user's row. A missing row is not an error.
	DeleteRow(ctx context.Context, table, userID, remoteID string) (bool, error)

	// Ping checks that the storage is reachable
	Ping(ctx context.Context) error
}
