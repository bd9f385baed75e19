package sync

import "github.com/iudanet/rentkeeper/internal/models"

// Position is a point in a stream ordered by (updated_at, remote_id).
type Position struct {
	RemoteID        string
	UpdatedAtMillis int64
}

// After reports whether p sorts strictly after o.
func (p Position) After(o Position) bool {
	return IsAfterCursor(p.UpdatedAtMillis, p.RemoteID, o)
}

// IsAfterCursor reports whether a row sorts strictly after the cursor:
// a later timestamp, or the same timestamp and a greater remote id.
func IsAfterCursor(updatedAtMillis int64, remoteID string, cursor Position) bool {
	if updatedAtMillis != cursor.UpdatedAtMillis {
		return updatedAtMillis > cursor.UpdatedAtMillis
	}
	return remoteID > cursor.RemoteID
}

func positionFromCursor(c *models.SyncCursor) *Position {
	if c == nil {
		return nil
	}
	return &Position{UpdatedAtMillis: c.UpdatedAtMillis, RemoteID: c.RemoteID}
}
