// Package postgres implements the remote tables directly on a PostgreSQL database.
//
// All tables share one sync_rows relation keyed by (table_name, remote_id). Row columns
// other than remote_id, user_id and updated_at are kept in a jsonb body, so the wire rows
// of pkg/api round-trip unchanged.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrForbidden is returned when a remote id already belongs to another user.
var ErrForbidden = errors.New("row belongs to another user")

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sync_rows (
	table_name TEXT   NOT NULL,
	remote_id  TEXT   NOT NULL,
	user_id    TEXT   NOT NULL,
	updated_at BIGINT NOT NULL,
	body       JSONB  NOT NULL DEFAULT '{}'::jsonb,
	PRIMARY KEY (table_name, remote_id)
);

CREATE INDEX IF NOT EXISTS idx_sync_rows_pull
	ON sync_rows (table_name, user_id, updated_at, remote_id);

CREATE TABLE IF NOT EXISTS sync_clock (
	table_name TEXT   PRIMARY KEY,
	last_ms    BIGINT NOT NULL
);
`

// Store is a pool shared by the tables of one database.
type Store struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// Open connects to dsn and checks the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool, now: time.Now}, nil
}

// EnsureSchema creates the sync tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the pool.
func (s *Store) Close() {
	s.pool.Close()
}
