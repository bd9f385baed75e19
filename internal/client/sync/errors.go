package sync

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iudanet/rentkeeper/internal/models"
)

var (
	// ErrParentUnresolved means a dirty child references a parent that has no local row.
	// The child is skipped for this push and retried on the next cycle.
	ErrParentUnresolved = errors.New("parent reference unresolved")

	// ErrNoActiveUser is returned when sync is requested before a user is set.
	ErrNoActiveUser = errors.New("no active user")

	// ErrUnsyncedChanges blocks a user switch while local edits are still pending.
	ErrUnsyncedChanges = errors.New("local changes are not synchronized yet")
)

// MissingRef names one parent link that could not be resolved locally.
type MissingRef struct {
	Field    string // поле внешнего ключа, например housing_remote_id
	Parent   models.EntityKind
	RemoteID string
}

// MissingParentError is a dependency gap: a pulled child arrived before its parent.
type MissingParentError struct {
	Entity   models.EntityKind
	RemoteID string
	Missing  []MissingRef
}

func (e *MissingParentError) Error() string {
	refs := make([]string, 0, len(e.Missing))
	for _, m := range e.Missing {
		refs = append(refs, fmt.Sprintf("%s=%s", m.Field, m.RemoteID))
	}
	return fmt.Sprintf("%s %s: missing parents [%s]", e.Entity, e.RemoteID, strings.Join(refs, ", "))
}

// DeleteFailure is a tombstone whose remote delete was rejected.
type DeleteFailure struct {
	EntityType models.EntityKind
	RemoteID   string
	Reason     string
}

// DeleteFailuresError aggregates delete failures. Tombstones stay local until a delete succeeds.
type DeleteFailuresError struct {
	Failures []DeleteFailure
}

func (e *DeleteFailuresError) Error() string {
	if len(e.Failures) == 1 {
		f := e.Failures[0]
		return fmt.Sprintf("failed to delete %s %s: %s", f.EntityType, f.RemoteID, f.Reason)
	}
	kinds := make([]string, 0)
	seen := make(map[models.EntityKind]bool)
	for _, f := range e.Failures {
		if !seen[f.EntityType] {
			seen[f.EntityType] = true
			kinds = append(kinds, string(f.EntityType))
		}
	}
	return fmt.Sprintf("failed to delete %d rows (%s)", len(e.Failures), strings.Join(kinds, ", "))
}

// PanicError wraps a panic recovered from one entity's sync cycle.
type PanicError struct {
	Entity models.EntityKind
	Value  any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic while syncing %s: %v", e.Entity, e.Value)
}
