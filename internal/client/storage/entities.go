package storage

import (
	"context"

	"github.com/iudanet/rentkeeper/internal/models"
)

// MergeFunc decides a pulled row against the local row with the same remote id.
// It returns false to keep the local row and may adjust incoming before it is written.
type MergeFunc[E models.Entity] func(local, incoming E) bool

// EntityStorage defines the local table of one syncable entity type.
// Rows are addressed by remote id on the sync paths and by local id for
// foreign-key links between entities.
type EntityStorage[E models.Entity] interface {
	// Save stores an entity edited by the application and marks it dirty.
	// A missing remote id is assigned, UpdatedAt is stamped with the local clock.
	Save(ctx context.Context, entity E) error

	// MarkDeleted turns the entity into a dirty tombstone pending remote delete.
	MarkDeleted(ctx context.Context, remoteID string) error

	// GetDirty returns every row that still has to be pushed, tombstones included.
	GetDirty(ctx context.Context) ([]E, error)

	// GetByRemoteID returns ErrEntityNotFound if no row carries remoteID.
	GetByRemoteID(ctx context.Context, remoteID string) (E, error)

	// GetByLocalID returns ErrEntityNotFound if no row carries localID.
	GetByLocalID(ctx context.Context, localID int64) (E, error)

	// GetAllRemoteIDs returns the remote ids of every local row.
	GetAllRemoteIDs(ctx context.Context) ([]string, error)

	// List returns every local row, tombstones included, ordered by local id.
	List(ctx context.Context) ([]E, error)

	// UpsertAll writes pulled rows by remote id, keeping the local id of rows
	// that already exist. Flags are stored exactly as given.
	UpsertAll(ctx context.Context, entities []E) error

	// ApplyPulled writes pulled rows in one transaction and returns how many were written.
	// A row whose remote id exists locally is written only if merge accepts it; merge
	// sees the local row as stored inside that transaction.
	ApplyPulled(ctx context.Context, entities []E, merge MergeFunc[E]) (int, error)

	// HardDeleteByRemoteID removes the row entirely. Missing rows are not an error.
	HardDeleteByRemoteID(ctx context.Context, remoteID string) error

	// HardDeleteIfClean removes the row unless it is dirty and reports whether it did.
	HardDeleteIfClean(ctx context.Context, remoteID string) (bool, error)

	// MarkClean clears the dirty flag and records the server timestamp.
	// The sync engine confirms pushed rows through ApplyPulled instead, where the
	// confirmation and the keep-local check share one transaction.
	MarkClean(ctx context.Context, remoteID string, serverUpdatedAt int64) error

	// GetMaxServerUpdatedAt returns nil when no row has been pulled yet.
	GetMaxServerUpdatedAt(ctx context.Context) (*int64, error)

	// CountDirty returns the number of rows pending push.
	CountDirty(ctx context.Context) (int, error)
}
