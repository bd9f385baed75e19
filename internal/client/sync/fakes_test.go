package sync

import (
	"cmp"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/rentkeeper/internal/client/storage"
	"github.com/iudanet/rentkeeper/internal/client/storage/boltdb"
	"github.com/iudanet/rentkeeper/internal/metrics"
	"github.com/iudanet/rentkeeper/internal/models"
	"github.com/iudanet/rentkeeper/pkg/api"
)

var errRemoteDown = errors.New("remote unavailable")

// setupTestLogger создает логгер для тестов
func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeRemote is an in-memory remote table that stamps updated_at on write.
type fakeRemote[R api.Row] struct {
	rows      map[string]R
	owners    map[string]string
	stamp     func(row *R, userID, updatedAt string)
	deleteErr map[string]error
	upsertErr error
	selectErr error
	listErr   error

	// batchStamp stamps every row of one Upsert call with the same timestamp, as the servers do.
	batchStamp bool

	selects     []api.SelectQuery
	listCalls   [][2]int
	upsertCalls int
	deleteCalls int
	clock       int64
	mu          sync.Mutex
}

func newFakeRemote[R api.Row](stamp func(row *R, userID, updatedAt string)) *fakeRemote[R] {
	return &fakeRemote[R]{
		rows:      make(map[string]R),
		owners:    make(map[string]string),
		stamp:     stamp,
		deleteErr: make(map[string]error),
		clock:     1_700_000_000_000,
	}
}

// put stores a row as is, with whatever updated_at it carries.
func (f *fakeRemote[R]) put(ownerID string, row R) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[row.GetRemoteID()] = row
	f.owners[row.GetRemoteID()] = ownerID
}

// write stores a row the way the server does, stamping a fresh timestamp.
func (f *fakeRemote[R]) write(ownerID string, row R) R {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clock++
	f.stamp(&row, ownerID, api.FormatTimestamp(f.clock))
	f.rows[row.GetRemoteID()] = row
	f.owners[row.GetRemoteID()] = ownerID
	return row
}

func (f *fakeRemote[R]) get(remoteID string) (R, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[remoteID]
	return row, ok
}

func (f *fakeRemote[R]) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

func (f *fakeRemote[R]) Select(ctx context.Context, q api.SelectQuery) ([]R, error) {
	f.mu.Lock()
	f.selects = append(f.selects, q)
	err := f.selectErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	type keyed struct {
		row R
		ms  int64
	}
	var matched []keyed
	for id, row := range f.rows {
		if f.owners[id] != q.OwnerID {
			continue
		}
		ms, err := api.ParseTimestamp(row.GetUpdatedAt())
		if err != nil {
			ms = 0
		}
		if q.Since != nil && ms < q.Since.UnixMilli() {
			continue
		}
		matched = append(matched, keyed{row: row, ms: ms})
	}
	slices.SortFunc(matched, func(a, b keyed) int {
		return cmp.Or(cmp.Compare(a.ms, b.ms), cmp.Compare(a.row.GetRemoteID(), b.row.GetRemoteID()))
	})

	out := make([]R, 0, q.Limit)
	for i := q.Offset; i < len(matched) && len(out) < q.Limit; i++ {
		out = append(out, matched[i].row)
	}
	return out, nil
}

func (f *fakeRemote[R]) SelectRemoteIDs(ctx context.Context, ownerID string, offset, limit int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = append(f.listCalls, [2]int{offset, limit})
	if f.listErr != nil {
		return nil, f.listErr
	}

	var ids []string
	for id := range f.rows {
		if f.owners[id] == ownerID {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	if offset >= len(ids) {
		return []string{}, nil
	}
	return ids[offset:min(offset+limit, len(ids))], nil
}

func (f *fakeRemote[R]) Upsert(ctx context.Context, ownerID string, rows []R) error {
	f.mu.Lock()
	f.upsertCalls++
	err := f.upsertErr
	f.mu.Unlock()
	if err != nil {
		return err
	}

	if !f.batchStamp {
		for _, row := range rows {
			f.write(ownerID, row)
		}
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.clock++
	for _, row := range rows {
		f.stamp(&row, ownerID, api.FormatTimestamp(f.clock))
		f.rows[row.GetRemoteID()] = row
		f.owners[row.GetRemoteID()] = ownerID
	}
	return nil
}

// interleavingStore runs an application edit right before the store's next
// conditional write, as if the edit had landed between a sync read and that write.
type interleavingStore[E models.Entity] struct {
	storage.EntityStorage[E]
	edit func()
}

func (s *interleavingStore[E]) runEdit() {
	if s.edit != nil {
		edit := s.edit
		s.edit = nil
		edit()
	}
}

func (s *interleavingStore[E]) ApplyPulled(ctx context.Context, entities []E, merge storage.MergeFunc[E]) (int, error) {
	s.runEdit()
	return s.EntityStorage.ApplyPulled(ctx, entities, merge)
}

func (s *interleavingStore[E]) HardDeleteIfClean(ctx context.Context, remoteID string) (bool, error) {
	s.runEdit()
	return s.EntityStorage.HardDeleteIfClean(ctx, remoteID)
}

func (f *fakeRemote[R]) Delete(ctx context.Context, ownerID, remoteID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if err := f.deleteErr[remoteID]; err != nil {
		return err
	}
	if f.owners[remoteID] == ownerID {
		delete(f.rows, remoteID)
		delete(f.owners, remoteID)
	}
	return nil
}

func (f *fakeRemote[R]) selectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.selects)
}

func stampTenant(r *api.TenantRow, userID, ts string)   { r.UserID, r.UpdatedAt = userID, ts }
func stampHousing(r *api.HousingRow, userID, ts string) { r.UserID, r.UpdatedAt = userID, ts }
func stampLease(r *api.LeaseRow, userID, ts string)     { r.UserID, r.UpdatedAt = userID, ts }
func stampKey(r *api.KeyRow, userID, ts string)         { r.UserID, r.UpdatedAt = userID, ts }
func stampEvent(r *api.IndexationEventRow, userID, ts string) {
	r.UserID, r.UpdatedAt = userID, ts
}

// testEngine wires five repositories over one bbolt file and in-memory remotes.
type testEngine struct {
	store    *boltdb.Storage
	session  *Session
	policy   *ReconciliationPolicy
	metrics  *metrics.SyncMetrics
	now      time.Time
	tenants  *fakeRemote[api.TenantRow]
	housings *fakeRemote[api.HousingRow]
	leases   *fakeRemote[api.LeaseRow]
	keys     *fakeRemote[api.KeyRow]
	events   *fakeRemote[api.IndexationEventRow]

	tenantRepo  *Repository[*models.Tenant, api.TenantRow]
	housingRepo *Repository[*models.Housing, api.HousingRow]
	leaseRepo   *Repository[*models.Lease, api.LeaseRow]
	keyRepo     *Repository[*models.Key, api.KeyRow]
	eventRepo   *Repository[*models.IndexationEvent, api.IndexationEventRow]
}

func newTestEngine(t *testing.T, cfg RepositoryConfig) *testEngine {
	t.Helper()

	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "sync.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	e := &testEngine{
		store:    store,
		session:  NewSession("user-a"),
		metrics:  metrics.NewSyncMetrics(prometheus.NewRegistry()),
		now:      time.UnixMilli(1_700_000_000_000),
		tenants:  newFakeRemote(stampTenant),
		housings: newFakeRemote(stampHousing),
		leases:   newFakeRemote(stampLease),
		keys:     newFakeRemote(stampKey),
		events:   newFakeRemote(stampEvent),
	}
	e.policy = NewReconciliationPolicy(time.Hour, func() time.Time { return e.now })
	store.SetClock(func() time.Time { return e.now })

	opts := RepositoryOptions{
		Cursors:  store,
		Identity: e.session,
		Policy:   e.policy,
		Metrics:  e.metrics,
		Logger:   setupTestLogger(),
		Config:   cfg,
	}
	e.tenantRepo = NewRepository(TenantBinding{}, store.Tenants(), e.tenants, opts)
	e.housingRepo = NewRepository(HousingBinding{}, store.Housings(), e.housings, opts)
	e.leaseRepo = NewRepository(LeaseBinding{Housings: store.Housings(), Tenants: store.Tenants()}, store.Leases(), e.leases, opts)
	e.keyRepo = NewRepository(KeyBinding{Housings: store.Housings()}, store.Keys(), e.keys, opts)
	e.eventRepo = NewRepository(IndexationEventBinding{Leases: store.Leases()}, store.IndexationEvents(), e.events, opts)
	return e
}

func (e *testEngine) syncers() []EntitySyncer {
	return []EntitySyncer{e.tenantRepo, e.housingRepo, e.leaseRepo, e.keyRepo, e.eventRepo}
}
