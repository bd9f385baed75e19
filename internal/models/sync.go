package models

// EntityKind identifies one synchronized entity stream.
type EntityKind string

// Синхронизируемые сущности
const (
	KindTenant          EntityKind = "tenant"
	KindHousing         EntityKind = "housing"
	KindLease           EntityKind = "lease"
	KindKey             EntityKind = "key"
	KindIndexationEvent EntityKind = "indexation_event"
)

// AllKinds returns every kind in dependency order (parents first).
func AllKinds() []EntityKind {
	return []EntityKind{KindTenant, KindHousing, KindLease, KindKey, KindIndexationEvent}
}

// ParseEntityKind accepts either a kind ("lease") or its table name ("leases").
func ParseEntityKind(s string) (EntityKind, bool) {
	for _, k := range AllKinds() {
		if string(k) == s || k.Table() == s {
			return k, true
		}
	}
	return "", false
}

// Table returns the remote table name of the kind.
func (k EntityKind) Table() string {
	switch k {
	case KindTenant:
		return "tenants"
	case KindHousing:
		return "housings"
	case KindLease:
		return "leases"
	case KindKey:
		return "keys"
	case KindIndexationEvent:
		return "indexation_events"
	}
	return string(k)
}

// SyncKey is the cursor key of the kind's incremental pull stream.
func (k EntityKind) SyncKey() string {
	return k.Table()
}

// SyncMeta carries the synchronization bookkeeping shared by all entities.
// Timestamps are epoch milliseconds.
type SyncMeta struct {
	ServerUpdatedAt *int64 `json:"server_updated_at,omitempty"` // только из pull
	RemoteID        string `json:"remote_id"`
	LocalID         int64  `json:"local_id"`
	CreatedAt       int64  `json:"created_at"`
	UpdatedAt       int64  `json:"updated_at"`
	Dirty           bool   `json:"dirty"`
	IsDeleted       bool   `json:"is_deleted"`
}

// Meta returns the bookkeeping of the entity embedding m.
func (m *SyncMeta) Meta() *SyncMeta {
	return m
}

// Entity is any locally stored syncable record.
type Entity interface {
	Meta() *SyncMeta
	Kind() EntityKind
}

// SyncCursor is the resume position of one incremental pull stream of one user.
type SyncCursor struct {
	UserID          string `json:"user_id"`
	SyncKey         string `json:"sync_key"`
	RemoteID        string `json:"remote_id"`
	UpdatedAtMillis int64  `json:"updated_at_ms"`
}
