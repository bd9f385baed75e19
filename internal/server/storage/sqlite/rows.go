package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/rentkeeper/internal/server/storage"
)

// UpsertRows creates or updates rows of table owned by userID.
// All rows of one call share a stamp strictly greater than the table's previous stamp.
func (s *Storage) UpsertRows(ctx context.Context, table, userID string, rows []*storage.Row) ([]*storage.Row, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stamp, err := s.nextStamp(ctx, tx, table)
	if err != nil {
		return nil, err
	}

	// Чужая строка с тем же remote_id не обновляется: RowsAffected = 0
	query := `
		INSERT INTO sync_rows (table_name, remote_id, user_id, updated_at, body)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (table_name, remote_id) DO UPDATE
		SET updated_at = excluded.updated_at, body = excluded.body
		WHERE sync_rows.user_id = excluded.user_id
	`

	saved := make([]*storage.Row, 0, len(rows))
	for _, row := range rows {
		if row.RemoteID == "" {
			return nil, fmt.Errorf("%w: empty remote_id", storage.ErrInvalidRow)
		}

		result, err := tx.ExecContext(ctx, query, table, row.RemoteID, userID, stamp, string(row.Body))
		if err != nil {
			return nil, fmt.Errorf("failed to upsert row %s: %w", row.RemoteID, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to get affected rows: %w", err)
		}
		if affected == 0 {
			return nil, fmt.Errorf("%s %s: %w", table, row.RemoteID, storage.ErrForbidden)
		}

		saved = append(saved, &storage.Row{
			RemoteID:  row.RemoteID,
			UserID:    userID,
			Body:      row.Body,
			UpdatedAt: stamp,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return saved, nil
}

// nextStamp returns max(now, last+1) and stores it as the table's last stamp
func (s *Storage) nextStamp(ctx context.Context, tx *sql.Tx, table string) (int64, error) {
	var last int64
	err := tx.QueryRowContext(ctx, `SELECT last_ms FROM sync_clock WHERE table_name = ?`, table).Scan(&last)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to read table clock: %w", err)
	}

	stamp := max(s.now().UnixMilli(), last+1)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sync_clock (table_name, last_ms) VALUES (?, ?)
		ON CONFLICT (table_name) DO UPDATE SET last_ms = excluded.last_ms
	`, table, stamp)
	if err != nil {
		return 0, fmt.Errorf("failed to advance table clock: %w", err)
	}

	return stamp, nil
}

// SelectRows retrieves a page of the user's rows changed at or after q.Since
func (s *Storage) SelectRows(ctx context.Context, q storage.RowQuery) ([]*storage.Row, error) {
	query := `
		SELECT remote_id, user_id, updated_at, body
		FROM sync_rows
		WHERE table_name = ? AND user_id = ? AND updated_at >= ?
		ORDER BY updated_at, remote_id
		LIMIT ? OFFSET ?
	`

	rows, err := s.db.QueryContext(ctx, query, q.Table, q.UserID, q.Since, q.Limit, q.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*storage.Row, 0)
	for rows.Next() {
		var row storage.Row
		var body string
		if err := rows.Scan(&row.RemoteID, &row.UserID, &row.UpdatedAt, &body); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row.Body = []byte(body)
		result = append(result, &row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return result, nil
}

// SelectRemoteIDs retrieves a window of the user's remote ids
func (s *Storage) SelectRemoteIDs(ctx context.Context, table, userID string, offset, limit int) ([]string, error) {
	query := `
		SELECT remote_id
		FROM sync_rows
		WHERE table_name = ? AND user_id = ?
		ORDER BY remote_id
		LIMIT ? OFFSET ?
	`

	rows, err := s.db.QueryContext(ctx, query, table, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query remote ids: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan remote id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate remote ids: %w", err)
	}

	return ids, nil
}

// DeleteRow removes the user's row and reports whether it existed
func (s *Storage) DeleteRow(ctx context.Context, table, userID, remoteID string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM sync_rows WHERE table_name = ? AND remote_id = ? AND user_id = ?`,
		table, remoteID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete row: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected > 0, nil
}
