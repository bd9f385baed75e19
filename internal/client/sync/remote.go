package sync

import (
	"context"
	"sync"

	"github.com/iudanet/rentkeeper/pkg/api"
)

// RemoteTable is the remote side of one entity stream. Every call is scoped to ownerID.
type RemoteTable[R api.Row] interface {
	// Select returns rows ordered by (updated_at, remote_id) with updated_at >= q.Since.
	Select(ctx context.Context, q api.SelectQuery) ([]R, error)

	// SelectRemoteIDs returns one window of the owner's remote ids ordered by remote id.
	SelectRemoteIDs(ctx context.Context, ownerID string, offset, limit int) ([]string, error)

	// Upsert writes rows keyed by remote id. The server stamps updated_at.
	Upsert(ctx context.Context, ownerID string, rows []R) error

	// Delete removes the owner's row. Deleting a missing row succeeds.
	Delete(ctx context.Context, ownerID, remoteID string) error
}

// Identity reports the user the engine currently syncs for.
type Identity interface {
	UserID() string
}

// Session is the mutable Identity shared by the orchestrator and its repositories.
type Session struct {
	userID string
	mu     sync.RWMutex
}

// NewSession creates a session for userID. An empty id means no active user.
func NewSession(userID string) *Session {
	return &Session{userID: userID}
}

// UserID returns the active user id.
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// SetUserID replaces the active user id.
func (s *Session) SetUserID(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = userID
}
