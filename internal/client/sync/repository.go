package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/iudanet/rentkeeper/internal/client/storage"
	"github.com/iudanet/rentkeeper/internal/metrics"
	"github.com/iudanet/rentkeeper/internal/models"
	"github.com/iudanet/rentkeeper/pkg/api"
)

// DefaultPushBatchSize is the number of rows sent per upsert request.
const DefaultPushBatchSize = 500

// RepositoryConfig tunes paging and batching.
type RepositoryConfig struct {
	PullPageSize  int
	ListPageSize  int
	PushBatchSize int
}

func (c RepositoryConfig) withDefaults() RepositoryConfig {
	if c.PullPageSize <= 0 {
		c.PullPageSize = DefaultPageSize
	}
	if c.ListPageSize <= 0 {
		c.ListPageSize = DefaultPageSize
	}
	if c.PushBatchSize <= 0 {
		c.PushBatchSize = DefaultPushBatchSize
	}
	return c
}

// RepositoryOptions are the collaborators shared by every repository of an orchestrator.
type RepositoryOptions struct {
	Cursors  storage.CursorStorage
	Identity Identity
	Policy   *ReconciliationPolicy
	Metrics  *metrics.SyncMetrics
	Logger   *slog.Logger
	Config   RepositoryConfig
}

// SyncResult contains the counters of one entity sync cycle
type SyncResult struct {
	Cursor            *Position // позиция курсора после pull
	Entity            models.EntityKind
	DeletesPushed     int // удалено на сервере
	UpsertsPushed     int // отправлено на сервер
	SkippedOrphans    int // пропущено: родитель не найден локально
	Pulled            int // получено с сервера
	Applied           int // записано локально
	KeptLocal         int // локальная версия новее серверной
	InvalidTimestamps int
	ReconciledDeletes int
	StoppedOnGap      bool
	Reconciled        bool
}

// Repository synchronizes one entity kind: push deletes, push upserts, pull, reconcile.
// It only ever writes its own local table.
type Repository[E models.Entity, R api.Row] struct {
	binding  Binding[E, R]
	local    storage.EntityStorage[E]
	remote   RemoteTable[R]
	cursors  storage.CursorStorage
	identity Identity
	policy   *ReconciliationPolicy
	metrics  *metrics.SyncMetrics
	logger   *slog.Logger
	now      func() time.Time
	cfg      RepositoryConfig
	mu       sync.Mutex
}

// NewRepository creates a repository for the binding's kind.
func NewRepository[E models.Entity, R api.Row](binding Binding[E, R], local storage.EntityStorage[E], remote RemoteTable[R], opts RepositoryOptions) *Repository[E, R] {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewSyncMetrics(prometheus.NewRegistry())
	}
	if opts.Policy == nil {
		opts.Policy = NewReconciliationPolicy(0, nil)
	}

	return &Repository[E, R]{
		binding:  binding,
		local:    local,
		remote:   remote,
		cursors:  opts.Cursors,
		identity: opts.Identity,
		policy:   opts.Policy,
		metrics:  opts.Metrics,
		logger:   opts.Logger.With("entity", string(binding.Kind())),
		now:      time.Now,
		cfg:      opts.Config.withDefaults(),
	}
}

// Kind returns the synchronized entity kind.
func (r *Repository[E, R]) Kind() models.EntityKind {
	return r.binding.Kind()
}

// Tag is the reconciliation policy key of the repository.
func (r *Repository[E, R]) Tag() string {
	return ReconciliationTag(r.binding.Kind())
}

// ReconciliationTag returns the policy key used for kind.
func ReconciliationTag(kind models.EntityKind) string {
	return string(kind)
}

// Pending returns the number of local rows waiting to be pushed.
func (r *Repository[E, R]) Pending(ctx context.Context) (int, error) {
	return r.local.CountDirty(ctx)
}

// SyncOnce runs one full cycle. Concurrent callers are serialized.
//
// Delete failures do not stop the upsert push but skip pull and reconciliation,
// and are returned as *DeleteFailuresError.
func (r *Repository[E, R]) SyncOnce(ctx context.Context) (*SyncResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kind := r.binding.Kind()
	userID := r.identity.UserID()
	if userID == "" {
		return nil, ErrNoActiveUser
	}

	start := time.Now()
	result := &SyncResult{Entity: kind}
	err := r.syncOnce(ctx, userID, result)

	r.metrics.Duration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	r.metrics.Runs.WithLabelValues(string(kind), resultLabel(err)).Inc()

	if err != nil {
		return result, err
	}

	r.logger.Debug("Entity sync finished",
		"pushed", result.UpsertsPushed,
		"deleted", result.DeletesPushed,
		"pulled", result.Pulled,
		"applied", result.Applied,
		"kept_local", result.KeptLocal,
		"reconciled", result.Reconciled,
		"duration", time.Since(start))
	return result, nil
}

func (r *Repository[E, R]) syncOnce(ctx context.Context, userID string, result *SyncResult) error {
	dirty, err := r.local.GetDirty(ctx)
	if err != nil {
		return fmt.Errorf("failed to load dirty rows: %w", err)
	}

	var tombstones, upserts []E
	for _, e := range dirty {
		if e.Meta().IsDeleted {
			tombstones = append(tombstones, e)
		} else {
			upserts = append(upserts, e)
		}
	}

	failures, err := r.pushDeletes(ctx, userID, tombstones, result)
	if err != nil {
		return err
	}

	pushed, pushErr := r.pushUpserts(ctx, userID, upserts, result)

	var deleteErr error
	if len(failures) > 0 {
		deleteErr = &DeleteFailuresError{Failures: failures}
	}
	switch {
	case pushErr != nil && deleteErr != nil:
		return errors.Join(pushErr, deleteErr)
	case pushErr != nil:
		return pushErr
	case deleteErr != nil:
		return deleteErr
	}

	if err := r.pull(ctx, userID, pushed, result); err != nil {
		return err
	}

	tag := r.Tag()
	if r.policy.ShouldRunFullReconciliation(tag) {
		if err := r.reconcile(ctx, userID, result); err != nil {
			// Следующий цикл повторит сверку, не дожидаясь интервала
			r.policy.ForceNextFullReconciliation(tag)
			r.metrics.Reconciliations.WithLabelValues(tag, "error").Inc()
			return err
		}
		r.metrics.Reconciliations.WithLabelValues(tag, "ok").Inc()
	}

	return nil
}

// pushDeletes returns the rejected tombstones. Only a local store error aborts it.
func (r *Repository[E, R]) pushDeletes(ctx context.Context, userID string, tombstones []E, result *SyncResult) ([]DeleteFailure, error) {
	kind := r.binding.Kind()
	var failures []DeleteFailure

	for _, e := range tombstones {
		remoteID := e.Meta().RemoteID
		if err := r.remote.Delete(ctx, userID, remoteID); err != nil {
			r.logger.Warn("Remote delete failed, keeping tombstone", "remote_id", remoteID, "error", err)
			r.metrics.DeleteFailures.WithLabelValues(string(kind)).Inc()
			failures = append(failures, DeleteFailure{EntityType: kind, RemoteID: remoteID, Reason: err.Error()})
			continue
		}

		if err := r.local.HardDeleteByRemoteID(ctx, remoteID); err != nil {
			return failures, fmt.Errorf("failed to purge tombstone %s: %w", remoteID, err)
		}
		result.DeletesPushed++
		r.metrics.RowsPushed.WithLabelValues(string(kind), "delete").Inc()
	}

	return failures, nil
}

// pushUpserts returns the local UpdatedAt of every row the remote accepted, by remote id.
// Dirty flags stay set until the pull confirms the rows.
func (r *Repository[E, R]) pushUpserts(ctx context.Context, userID string, upserts []E, result *SyncResult) (map[string]int64, error) {
	kind := r.binding.Kind()
	pushed := make(map[string]int64, len(upserts))
	stamps := make(map[string]int64, len(upserts))

	rows := make([]R, 0, len(upserts))
	for _, e := range upserts {
		meta := e.Meta()
		row, err := r.binding.ToRow(ctx, userID, e)
		if err != nil {
			if errors.Is(err, ErrParentUnresolved) {
				r.logger.Warn("Skipping row with unresolved parent", "remote_id", meta.RemoteID, "error", err)
				r.metrics.OrphansSkipped.WithLabelValues(string(kind)).Inc()
				result.SkippedOrphans++
				continue
			}
			return pushed, fmt.Errorf("failed to encode %s: %w", meta.RemoteID, err)
		}
		rows = append(rows, row)
		stamps[meta.RemoteID] = meta.UpdatedAt
	}

	for start := 0; start < len(rows); start += r.cfg.PushBatchSize {
		end := min(start+r.cfg.PushBatchSize, len(rows))
		batch := rows[start:end]

		if err := r.remote.Upsert(ctx, userID, batch); err != nil {
			return pushed, fmt.Errorf("failed to push %d rows: %w", len(batch), err)
		}

		for _, row := range batch {
			pushed[row.GetRemoteID()] = stamps[row.GetRemoteID()]
		}
		result.UpsertsPushed += len(batch)
		r.metrics.RowsPushed.WithLabelValues(string(kind), "upsert").Add(float64(len(batch)))
	}

	return pushed, nil
}

func (r *Repository[E, R]) pull(ctx context.Context, userID string, pushed map[string]int64, result *SyncResult) error {
	kind := r.binding.Kind()
	syncKey := kind.SyncKey()

	var start *Position
	cursor, err := r.cursors.GetCursor(ctx, userID, syncKey)
	switch {
	case err == nil:
		start = positionFromCursor(cursor)
	case errors.Is(err, storage.ErrCursorNotFound):
		r.logger.Info("No cursor, pulling from the beginning")
	default:
		return fmt.Errorf("failed to load cursor: %w", err)
	}

	puller := &Puller[R]{
		PageSize: r.cfg.PullPageSize,
		Fetch: func(ctx context.Context, since *time.Time, offset, limit int) ([]R, error) {
			return r.remote.Select(ctx, api.SelectQuery{OwnerID: userID, Since: since, Offset: offset, Limit: limit})
		},
		Commit: func(ctx context.Context, pos Position) error {
			return r.cursors.SaveCursor(ctx, &models.SyncCursor{
				UserID:          userID,
				SyncKey:         syncKey,
				UpdatedAtMillis: pos.UpdatedAtMillis,
				RemoteID:        pos.RemoteID,
			})
		},
		OnInvalidTimestamp: func(row R, err error) {
			r.logger.Warn("Pulled row has invalid updated_at", "remote_id", row.GetRemoteID(), "error", err)
			r.metrics.InvalidTimestamps.WithLabelValues(string(kind)).Inc()
		},
	}

	final, stats, err := puller.Pull(ctx, start, func(ctx context.Context, rows []R) (int, bool, error) {
		return r.applyPage(ctx, rows, pushed, result)
	})
	result.Cursor = final
	result.Pulled = stats.Fetched
	result.InvalidTimestamps = stats.InvalidTimestamps
	result.StoppedOnGap = stats.StoppedOnGap
	if err != nil {
		return fmt.Errorf("failed to pull: %w", err)
	}
	return nil
}

// applyPage writes the resolvable prefix of a page and reports how much of it was consumed.
func (r *Repository[E, R]) applyPage(ctx context.Context, rows []R, pushed map[string]int64, result *SyncResult) (int, bool, error) {
	kind := r.binding.Kind()

	res, err := ResolvePrefix(ctx, rows, r.binding.FromRow)
	if err != nil {
		return 0, false, fmt.Errorf("failed to map pulled row: %w", err)
	}
	if res.StoppedOnGap {
		r.logger.Warn("Dependency gap, deferring rest of page",
			"remote_id", res.Gap.RemoteID,
			"missing", res.Gap.Missing,
			"applied", len(res.Mapped),
			"deferred", len(rows)-len(res.Mapped))
		r.metrics.DependencyGaps.WithLabelValues(string(kind)).Inc()
	}

	nowMs := r.now().UnixMilli()
	for _, incoming := range res.Mapped {
		meta := incoming.Meta()
		meta.Dirty = false
		meta.IsDeleted = false
		meta.CreatedAt = nowMs
		meta.UpdatedAt = nowMs
		if meta.ServerUpdatedAt != nil {
			meta.CreatedAt = *meta.ServerUpdatedAt
			meta.UpdatedAt = *meta.ServerUpdatedAt
		}
	}

	// Решение keep-local принимается внутри транзакции записи
	kept := 0
	written, err := r.local.ApplyPulled(ctx, res.Mapped, func(local, incoming E) bool {
		current := local.Meta()
		if current.Dirty && keepLocal(current, incoming.Meta().ServerUpdatedAt, pushed) {
			kept++
			return false
		}
		incoming.Meta().CreatedAt = current.CreatedAt
		return true
	})
	if err != nil {
		return 0, false, err
	}
	result.KeptLocal += kept
	result.Applied += written
	r.metrics.RowsPulled.WithLabelValues(string(kind)).Add(float64(written))

	return len(res.Mapped), res.StoppedOnGap, nil
}

// keepLocal decides a dirty local row against a pulled one.
// A row pushed this cycle and unchanged since is our own write coming back.
// A pending tombstone always wins. Otherwise the later timestamp wins.
func keepLocal(local *models.SyncMeta, serverUpdatedAt *int64, pushed map[string]int64) bool {
	if local.IsDeleted {
		return true
	}
	if stamp, ok := pushed[local.RemoteID]; ok && stamp == local.UpdatedAt {
		return false
	}
	if serverUpdatedAt == nil {
		return true
	}
	return local.UpdatedAt > *serverUpdatedAt
}

// reconcile hard-deletes clean local rows that no longer exist remotely.
func (r *Repository[E, R]) reconcile(ctx context.Context, userID string, result *SyncResult) error {
	kind := r.binding.Kind()

	remoteIDs, err := ListAll(ctx, r.cfg.ListPageSize, func(ctx context.Context, offset, limit int) ([]string, error) {
		return r.remote.SelectRemoteIDs(ctx, userID, offset, limit)
	})
	if err != nil {
		return fmt.Errorf("failed to list remote ids: %w", err)
	}

	present := make(map[string]struct{}, len(remoteIDs))
	for _, id := range remoteIDs {
		present[id] = struct{}{}
	}

	localIDs, err := r.local.GetAllRemoteIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list local ids: %w", err)
	}

	for _, id := range localIDs {
		if _, ok := present[id]; ok {
			continue
		}

		// Грязные строки ещё не доехали до сервера, проверка в той же транзакции
		deleted, err := r.local.HardDeleteIfClean(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to delete stale row %s: %w", id, err)
		}
		if deleted {
			result.ReconciledDeletes++
		}
	}

	result.Reconciled = true
	r.metrics.ReconciledDeletes.WithLabelValues(string(kind)).Add(float64(result.ReconciledDeletes))
	r.logger.Info("Deletion reconciliation finished",
		"remote_rows", len(remoteIDs),
		"local_rows", len(localIDs),
		"deleted", result.ReconciledDeletes)
	return nil
}

func resultLabel(err error) string {
	var dfe *DeleteFailuresError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &dfe):
		return "delete_failed"
	default:
		return "error"
	}
}
