package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/rentkeeper/internal/models"
)

// schemaVersion 2 scoped sync cursors by user id.
const schemaVersion = 2

var (
	// BoltDB bucket names
	bucketMetadata = []byte("metadata")
	bucketCursors  = []byte("sync_cursors")

	// Схема v1: курсоры без user id и глобальный last_sync_timestamp
	legacyBucketCursors = []byte("cursors")
	legacyKeyLastSync   = []byte("last_sync_timestamp")
)

// Storage represents BoltDB storage implementation for client
type Storage struct {
	db  *bbolt.DB
	now func() time.Time
}

// New creates a new BoltDB storage instance
// dbPath is the path to the BoltDB database file
func New(ctx context.Context, dbPath string) (*Storage, error) {
	// Открываем BoltDB
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	storage := &Storage{db: db, now: time.Now}

	// Инициализируем buckets
	if err := storage.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	if err := storage.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate storage: %w", err)
	}

	return storage, nil
}

// SetClock replaces the clock used to stamp local edits.
func (s *Storage) SetClock(now func() time.Time) {
	s.now = now
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// initBuckets создает необходимые buckets если они не существуют
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketMetadata, bucketCursors} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}

		// По два bucket на сущность: записи по local id и индекс remote id -> local id
		for _, kind := range models.AllKinds() {
			if _, err := tx.CreateBucketIfNotExists(recordsBucket(kind)); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", kind, err)
			}
			if _, err := tx.CreateBucketIfNotExists(indexBucket(kind)); err != nil {
				return fmt.Errorf("failed to create %s index bucket: %w", kind, err)
			}
		}

		return nil
	})
}

// migrate upgrades the layout to schemaVersion.
// Unscoped v1 cursors are discarded, so the first pull after an upgrade starts from scratch.
func (s *Storage) migrate() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMetadata)
		if meta == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		if readUint64(meta.Get(keySchemaVersion)) >= schemaVersion {
			return nil
		}

		if tx.Bucket(legacyBucketCursors) != nil {
			if err := tx.DeleteBucket(legacyBucketCursors); err != nil {
				return fmt.Errorf("failed to drop legacy cursors: %w", err)
			}
		}
		if err := meta.Delete(legacyKeyLastSync); err != nil {
			return fmt.Errorf("failed to drop legacy sync timestamp: %w", err)
		}

		return meta.Put(keySchemaVersion, uint64Bytes(schemaVersion))
	})
}

func recordsBucket(kind models.EntityKind) []byte {
	return []byte(kind.Table())
}

func indexBucket(kind models.EntityKind) []byte {
	return []byte(kind.Table() + "_by_remote")
}

func uint64Bytes(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func readUint64(b []byte) uint64 {
	if len(b) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}
