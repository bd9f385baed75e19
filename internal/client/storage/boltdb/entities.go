package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/iudanet/rentkeeper/internal/client/storage"
	"github.com/iudanet/rentkeeper/internal/models"
)

// EntityStore is the local table of one entity kind.
// Records are JSON values keyed by big-endian local id; a second bucket maps
// remote id to local id.
type EntityStore[E models.Entity] struct {
	s      *Storage
	newFn  func() E
	kind   models.EntityKind
	bucket []byte
	index  []byte
}

// NewEntityStore binds the kind's buckets. newFn must return a fresh non-nil entity.
func NewEntityStore[E models.Entity](s *Storage, kind models.EntityKind, newFn func() E) *EntityStore[E] {
	return &EntityStore[E]{
		s:      s,
		newFn:  newFn,
		kind:   kind,
		bucket: recordsBucket(kind),
		index:  indexBucket(kind),
	}
}

// Tenants returns the tenants table.
func (s *Storage) Tenants() *EntityStore[*models.Tenant] {
	return NewEntityStore(s, models.KindTenant, func() *models.Tenant { return &models.Tenant{} })
}

// Housings returns the housings table.
func (s *Storage) Housings() *EntityStore[*models.Housing] {
	return NewEntityStore(s, models.KindHousing, func() *models.Housing { return &models.Housing{} })
}

// Leases returns the leases table.
func (s *Storage) Leases() *EntityStore[*models.Lease] {
	return NewEntityStore(s, models.KindLease, func() *models.Lease { return &models.Lease{} })
}

// Keys returns the keys table.
func (s *Storage) Keys() *EntityStore[*models.Key] {
	return NewEntityStore(s, models.KindKey, func() *models.Key { return &models.Key{} })
}

// IndexationEvents returns the indexation events table.
func (s *Storage) IndexationEvents() *EntityStore[*models.IndexationEvent] {
	return NewEntityStore(s, models.KindIndexationEvent, func() *models.IndexationEvent { return &models.IndexationEvent{} })
}

var (
	_ storage.EntityStorage[*models.Tenant]          = (*EntityStore[*models.Tenant])(nil)
	_ storage.EntityStorage[*models.IndexationEvent] = (*EntityStore[*models.IndexationEvent])(nil)
)

// Kind returns the entity kind stored in the table.
func (es *EntityStore[E]) Kind() models.EntityKind {
	return es.kind
}

// Save stores an application edit and marks it dirty
func (es *EntityStore[E]) Save(ctx context.Context, entity E) error {
	if es.s.db == nil {
		return storage.ErrStorageClosed
	}

	meta := entity.Meta()
	if meta.RemoteID == "" {
		// remote id назначается на клиенте и больше не меняется
		meta.RemoteID = uuid.NewString()
	}
	now := es.s.now().UnixMilli()
	if meta.CreatedAt == 0 {
		meta.CreatedAt = now
	}
	meta.UpdatedAt = es.nextUpdatedAt(meta.UpdatedAt)
	meta.Dirty = true

	err := es.s.db.Update(func(tx *bbolt.Tx) error {
		return es.put(tx, entity)
	})
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", es.kind, err)
	}
	return nil
}

// MarkDeleted turns the row into a dirty tombstone
func (es *EntityStore[E]) MarkDeleted(ctx context.Context, remoteID string) error {
	if es.s.db == nil {
		return storage.ErrStorageClosed
	}

	return es.s.db.Update(func(tx *bbolt.Tx) error {
		entity, err := es.getByRemote(tx, remoteID)
		if err != nil {
			return err
		}

		meta := entity.Meta()
		meta.IsDeleted = true
		meta.Dirty = true
		meta.UpdatedAt = es.nextUpdatedAt(meta.UpdatedAt)
		return es.put(tx, entity)
	})
}

// GetDirty returns rows pending push, tombstones included
func (es *EntityStore[E]) GetDirty(ctx context.Context) ([]E, error) {
	return es.filter(func(e E) bool { return e.Meta().Dirty })
}

// List returns every row ordered by local id
func (es *EntityStore[E]) List(ctx context.Context) ([]E, error) {
	return es.filter(func(E) bool { return true })
}

// CountDirty returns the number of rows pending push
func (es *EntityStore[E]) CountDirty(ctx context.Context) (int, error) {
	dirty, err := es.GetDirty(ctx)
	if err != nil {
		return 0, err
	}
	return len(dirty), nil
}

// GetByRemoteID returns the row carrying remoteID
func (es *EntityStore[E]) GetByRemoteID(ctx context.Context, remoteID string) (E, error) {
	var entity E
	if es.s.db == nil {
		return entity, storage.ErrStorageClosed
	}

	err := es.s.db.View(func(tx *bbolt.Tx) error {
		var err error
		entity, err = es.getByRemote(tx, remoteID)
		return err
	})
	return entity, err
}

// GetByLocalID returns the row carrying localID
func (es *EntityStore[E]) GetByLocalID(ctx context.Context, localID int64) (E, error) {
	var entity E
	if es.s.db == nil {
		return entity, storage.ErrStorageClosed
	}

	err := es.s.db.View(func(tx *bbolt.Tx) error {
		records := tx.Bucket(es.bucket)
		if records == nil {
			return fmt.Errorf("%s bucket not found", es.kind)
		}
		data := records.Get(localKey(localID))
		if data == nil {
			return storage.ErrEntityNotFound
		}

		var err error
		entity, err = es.decode(data)
		return err
	})
	return entity, err
}

// GetAllRemoteIDs returns the remote ids of every local row
func (es *EntityStore[E]) GetAllRemoteIDs(ctx context.Context) ([]string, error) {
	if es.s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var ids []string
	err := es.s.db.View(func(tx *bbolt.Tx) error {
		index := tx.Bucket(es.index)
		if index == nil {
			return fmt.Errorf("%s index bucket not found", es.kind)
		}
		return index.ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s remote ids: %w", es.kind, err)
	}
	return ids, nil
}

// UpsertAll writes pulled rows in one transaction, keeping existing local ids
func (es *EntityStore[E]) UpsertAll(ctx context.Context, entities []E) error {
	if es.s.db == nil {
		return storage.ErrStorageClosed
	}
	if len(entities) == 0 {
		return nil
	}

	err := es.s.db.Update(func(tx *bbolt.Tx) error {
		for _, entity := range entities {
			if entity.Meta().RemoteID == "" {
				return fmt.Errorf("%s without remote id", es.kind)
			}
			if err := es.put(tx, entity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to upsert %s rows: %w", es.kind, err)
	}
	return nil
}

// ApplyPulled writes pulled rows in one transaction, asking merge about rows that exist locally
func (es *EntityStore[E]) ApplyPulled(ctx context.Context, entities []E, merge storage.MergeFunc[E]) (int, error) {
	if es.s.db == nil {
		return 0, storage.ErrStorageClosed
	}
	if len(entities) == 0 {
		return 0, nil
	}

	written := 0
	err := es.s.db.Update(func(tx *bbolt.Tx) error {
		written = 0
		for _, entity := range entities {
			if entity.Meta().RemoteID == "" {
				return fmt.Errorf("%s without remote id", es.kind)
			}

			local, err := es.getByRemote(tx, entity.Meta().RemoteID)
			switch {
			case err == nil:
				if merge != nil && !merge(local, entity) {
					continue
				}
			case errors.Is(err, storage.ErrEntityNotFound):
			default:
				return err
			}

			if err := es.put(tx, entity); err != nil {
				return err
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to apply pulled %s rows: %w", es.kind, err)
	}
	return written, nil
}

// HardDeleteByRemoteID removes the row and its index entry
func (es *EntityStore[E]) HardDeleteByRemoteID(ctx context.Context, remoteID string) error {
	if es.s.db == nil {
		return storage.ErrStorageClosed
	}

	return es.s.db.Update(func(tx *bbolt.Tx) error {
		records, index := tx.Bucket(es.bucket), tx.Bucket(es.index)
		if records == nil || index == nil {
			return fmt.Errorf("%s buckets not found", es.kind)
		}

		key := index.Get([]byte(remoteID))
		if key == nil {
			return nil
		}
		if err := records.Delete(key); err != nil {
			return fmt.Errorf("failed to delete %s: %w", es.kind, err)
		}
		return index.Delete([]byte(remoteID))
	})
}

// HardDeleteIfClean removes the row unless it carries unpushed changes
func (es *EntityStore[E]) HardDeleteIfClean(ctx context.Context, remoteID string) (bool, error) {
	if es.s.db == nil {
		return false, storage.ErrStorageClosed
	}

	deleted := false
	err := es.s.db.Update(func(tx *bbolt.Tx) error {
		deleted = false
		entity, err := es.getByRemote(tx, remoteID)
		if errors.Is(err, storage.ErrEntityNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if entity.Meta().Dirty {
			return nil
		}

		key := localKey(entity.Meta().LocalID)
		if err := tx.Bucket(es.bucket).Delete(key); err != nil {
			return fmt.Errorf("failed to delete %s: %w", es.kind, err)
		}
		if err := tx.Bucket(es.index).Delete([]byte(remoteID)); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	return deleted, err
}

// MarkClean clears the dirty flag and records the server timestamp
func (es *EntityStore[E]) MarkClean(ctx context.Context, remoteID string, serverUpdatedAt int64) error {
	if es.s.db == nil {
		return storage.ErrStorageClosed
	}

	return es.s.db.Update(func(tx *bbolt.Tx) error {
		entity, err := es.getByRemote(tx, remoteID)
		if err != nil {
			return err
		}

		meta := entity.Meta()
		meta.Dirty = false
		meta.ServerUpdatedAt = &serverUpdatedAt
		return es.put(tx, entity)
	})
}

// GetMaxServerUpdatedAt returns the newest server timestamp seen locally
func (es *EntityStore[E]) GetMaxServerUpdatedAt(ctx context.Context) (*int64, error) {
	all, err := es.List(ctx)
	if err != nil {
		return nil, err
	}

	var maxTS *int64
	for _, e := range all {
		ts := e.Meta().ServerUpdatedAt
		if ts != nil && (maxTS == nil || *ts > *maxTS) {
			v := *ts
			maxTS = &v
		}
	}
	return maxTS, nil
}

// nextUpdatedAt keeps local edit stamps strictly increasing per row.
func (es *EntityStore[E]) nextUpdatedAt(prev int64) int64 {
	now := es.s.now().UnixMilli()
	if now <= prev {
		return prev + 1
	}
	return now
}

func (es *EntityStore[E]) filter(keep func(E) bool) ([]E, error) {
	if es.s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var out []E
	err := es.s.db.View(func(tx *bbolt.Tx) error {
		records := tx.Bucket(es.bucket)
		if records == nil {
			return fmt.Errorf("%s bucket not found", es.kind)
		}
		return records.ForEach(func(_, v []byte) error {
			entity, err := es.decode(v)
			if err != nil {
				return err
			}
			if keep(entity) {
				out = append(out, entity)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s rows: %w", es.kind, err)
	}
	return out, nil
}

func (es *EntityStore[E]) getByRemote(tx *bbolt.Tx, remoteID string) (E, error) {
	var zero E
	records, index := tx.Bucket(es.bucket), tx.Bucket(es.index)
	if records == nil || index == nil {
		return zero, fmt.Errorf("%s buckets not found", es.kind)
	}

	key := index.Get([]byte(remoteID))
	if key == nil {
		return zero, storage.ErrEntityNotFound
	}
	data := records.Get(key)
	if data == nil {
		return zero, storage.ErrEntityNotFound
	}
	return es.decode(data)
}

// put writes the record and its index entry. An indexed remote id keeps its local id.
func (es *EntityStore[E]) put(tx *bbolt.Tx, entity E) error {
	records, index := tx.Bucket(es.bucket), tx.Bucket(es.index)
	if records == nil || index == nil {
		return fmt.Errorf("%s buckets not found", es.kind)
	}

	meta := entity.Meta()
	if key := index.Get([]byte(meta.RemoteID)); key != nil {
		meta.LocalID = int64(binary.BigEndian.Uint64(key))
	} else if meta.LocalID == 0 {
		seq, err := records.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to allocate local id: %w", err)
		}
		meta.LocalID = int64(seq)
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", es.kind, err)
	}

	key := localKey(meta.LocalID)
	if err := records.Put(key, data); err != nil {
		return fmt.Errorf("failed to put %s: %w", es.kind, err)
	}
	return index.Put([]byte(meta.RemoteID), key)
}

func (es *EntityStore[E]) decode(data []byte) (E, error) {
	entity := es.newFn()
	if err := json.Unmarshal(data, entity); err != nil {
		var zero E
		return zero, fmt.Errorf("failed to unmarshal %s: %w", es.kind, err)
	}
	return entity, nil
}

func localKey(id int64) []byte {
	return uint64Bytes(uint64(id))
}
