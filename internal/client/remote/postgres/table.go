package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/iudanet/rentkeeper/pkg/api"
)

// Колонки, которые хранятся вне body
const (
	fieldRemoteID  = "remote_id"
	fieldUserID    = "user_id"
	fieldUpdatedAt = "updated_at"
)

// Table is one remote table backed by sync_rows.
type Table[R api.Row] struct {
	store *Store
	name  string
}

// NewTable returns the table name of store.
func NewTable[R api.Row](store *Store, name string) *Table[R] {
	return &Table[R]{store: store, name: name}
}

// Name returns the table name.
func (t *Table[R]) Name() string {
	return t.name
}

// selectSQL builds the page query for q and returns it with its arguments.
func selectSQL(table string, q api.SelectQuery) (string, []any) {
	var sb strings.Builder
	args := []any{table, q.OwnerID}

	sb.WriteString("SELECT remote_id, user_id, updated_at, body FROM sync_rows WHERE table_name = $1 AND user_id = $2")
	if q.Since != nil {
		args = append(args, q.Since.UnixMilli())
		fmt.Fprintf(&sb, " AND updated_at >= $%d", len(args))
	}
	sb.WriteString(" ORDER BY updated_at, remote_id")
	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if q.Offset > 0 {
		args = append(args, q.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	return sb.String(), args
}

// Select returns the owner's rows ordered by (updated_at, remote_id).
func (t *Table[R]) Select(ctx context.Context, q api.SelectQuery) ([]R, error) {
	query, args := selectSQL(t.name, q)

	rows, err := t.store.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select %s failed: %w", t.name, err)
	}
	defer rows.Close()

	result := make([]R, 0)
	for rows.Next() {
		var (
			remoteID, userID string
			updatedAt        int64
			body             []byte
		)
		if err := rows.Scan(&remoteID, &userID, &updatedAt, &body); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", t.name, err)
		}
		row, err := decodeRow[R](remoteID, userID, updatedAt, body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s row %s: %w", t.name, remoteID, err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select %s failed: %w", t.name, err)
	}

	return result, nil
}

// SelectRemoteIDs returns one window of the owner's remote ids ordered by remote id.
func (t *Table[R]) SelectRemoteIDs(ctx context.Context, ownerID string, offset, limit int) ([]string, error) {
	query := `
		SELECT remote_id FROM sync_rows
		WHERE table_name = $1 AND user_id = $2
		ORDER BY remote_id
		LIMIT $3 OFFSET $4
	`

	rows, err := t.store.pool.Query(ctx, query, t.name, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("select %s remote ids failed: %w", t.name, err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("select %s remote ids failed: %w", t.name, err)
	}
	return ids, nil
}

// Upsert writes rows in one transaction. All rows share a stamp strictly greater
// than the table's previous stamp.
func (t *Table[R]) Upsert(ctx context.Context, ownerID string, rows []R) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := t.store.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// Блокировка строки часов сериализует конкурентные записи в таблицу
	var stamp int64
	err = tx.QueryRow(ctx, `
		INSERT INTO sync_clock (table_name, last_ms) VALUES ($1, $2)
		ON CONFLICT (table_name) DO UPDATE
		SET last_ms = GREATEST(excluded.last_ms, sync_clock.last_ms + 1)
		RETURNING last_ms
	`, t.name, t.store.now().UnixMilli()).Scan(&stamp)
	if err != nil {
		return fmt.Errorf("failed to advance table clock: %w", err)
	}

	upsert := `
		INSERT INTO sync_rows (table_name, remote_id, user_id, updated_at, body)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (table_name, remote_id) DO UPDATE
		SET updated_at = excluded.updated_at, body = excluded.body
		WHERE sync_rows.user_id = excluded.user_id
	`

	batch := &pgx.Batch{}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		remoteID, body, err := encodeRow(row)
		if err != nil {
			return fmt.Errorf("failed to encode %s row: %w", t.name, err)
		}
		batch.Queue(upsert, t.name, remoteID, ownerID, stamp, body)
		ids = append(ids, remoteID)
	}

	results := tx.SendBatch(ctx, batch)
	for _, id := range ids {
		tag, err := results.Exec()
		if err != nil {
			_ = results.Close()
			return fmt.Errorf("upsert %s %s failed: %w", t.name, id, err)
		}
		if tag.RowsAffected() == 0 {
			_ = results.Close()
			return fmt.Errorf("upsert %s %s: %w", t.name, id, ErrForbidden)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("upsert %d %s failed: %w", len(rows), t.name, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Delete removes the owner's row. Deleting a missing row succeeds.
func (t *Table[R]) Delete(ctx context.Context, ownerID, remoteID string) error {
	_, err := t.store.pool.Exec(ctx,
		`DELETE FROM sync_rows WHERE table_name = $1 AND remote_id = $2 AND user_id = $3`,
		t.name, remoteID, ownerID)
	if err != nil {
		return fmt.Errorf("delete %s %s failed: %w", t.name, remoteID, err)
	}
	return nil
}

// encodeRow splits a wire row into its remote id and the jsonb body.
func encodeRow[R api.Row](row R) (string, []byte, error) {
	remoteID := row.GetRemoteID()
	if remoteID == "" {
		return "", nil, fmt.Errorf("empty remote_id")
	}

	raw, err := json.Marshal(row)
	if err != nil {
		return "", nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return "", nil, err
	}
	delete(fields, fieldRemoteID)
	delete(fields, fieldUserID)
	delete(fields, fieldUpdatedAt)

	body, err := json.Marshal(fields)
	if err != nil {
		return "", nil, err
	}
	return remoteID, body, nil
}

// decodeRow rebuilds a wire row from the stored columns.
func decodeRow[R api.Row](remoteID, userID string, updatedAt int64, body []byte) (R, error) {
	var row R

	fields := map[string]json.RawMessage{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &fields); err != nil {
			return row, err
		}
	}

	meta := map[string]string{
		fieldRemoteID:  remoteID,
		fieldUserID:    userID,
		fieldUpdatedAt: api.FormatTimestamp(updatedAt),
	}
	for k, v := range meta {
		b, err := json.Marshal(v)
		if err != nil {
			return row, err
		}
		fields[k] = b
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return row, err
	}
	if err := json.Unmarshal(raw, &row); err != nil {
		return row, err
	}
	return row, nil
}
