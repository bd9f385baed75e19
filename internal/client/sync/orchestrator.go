package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/iudanet/rentkeeper/internal/client/storage"
	"github.com/iudanet/rentkeeper/internal/metrics"
	"github.com/iudanet/rentkeeper/internal/models"
)

//go:generate moq -out syncer_mock.go . EntitySyncer

// DefaultDebounce is the delay applied to change-driven sync requests.
const DefaultDebounce = 2 * time.Second

// EntitySyncer is one entity repository as seen by the orchestrator.
type EntitySyncer interface {
	Kind() models.EntityKind
	SyncOnce(ctx context.Context) (*SyncResult, error)
	Pending(ctx context.Context) (int, error)
}

// dependencies lists the direct parents of each kind.
var dependencies = map[models.EntityKind][]models.EntityKind{
	models.KindLease:           {models.KindTenant, models.KindHousing},
	models.KindKey:             {models.KindHousing},
	models.KindIndexationEvent: {models.KindLease},
}

// DependencyClosure returns kind and all its ancestors in sync order.
func DependencyClosure(kind models.EntityKind) []models.EntityKind {
	need := map[models.EntityKind]bool{}
	var visit func(k models.EntityKind)
	visit = func(k models.EntityKind) {
		if need[k] {
			return
		}
		need[k] = true
		for _, parent := range dependencies[k] {
			visit(parent)
		}
	}
	visit(kind)

	closure := make([]models.EntityKind, 0, len(need))
	for _, k := range models.AllKinds() {
		if need[k] {
			closure = append(closure, k)
		}
	}
	return closure
}

// Report describes one orchestrator pass.
type Report struct {
	Started  time.Time
	Finished time.Time
	Results  map[models.EntityKind]*SyncResult
	Errors   map[models.EntityKind]error
	Reason   string
	Kinds    []models.EntityKind
}

// Failed reports whether any entity failed during the pass.
func (r *Report) Failed() bool {
	return len(r.Errors) > 0
}

// OrchestratorOptions are the orchestrator collaborators.
type OrchestratorOptions struct {
	Session  *Session
	Cursors  storage.CursorStorage
	Metadata storage.MetadataStorage
	Policy   *ReconciliationPolicy
	Metrics  *metrics.SyncMetrics
	Logger   *slog.Logger
	Now      func() time.Time
}

// Orchestrator runs entity repositories in dependency order, one pass at a time.
type Orchestrator struct {
	syncers  map[models.EntityKind]EntitySyncer
	session  *Session
	cursors  storage.CursorStorage
	metadata storage.MetadataStorage
	policy   *ReconciliationPolicy
	metrics  *metrics.SyncMetrics
	logger   *slog.Logger
	now      func() time.Time
	notify   chan struct{}

	timer         *time.Timer
	state         State
	pendingReason string
	subscribers   []chan State
	generation    uint64
	hasPending    bool

	runMu     sync.Mutex
	stateMu   sync.RWMutex
	triggerMu sync.Mutex
}

// NewOrchestrator requires exactly one syncer per entity kind.
func NewOrchestrator(syncers []EntitySyncer, opts OrchestratorOptions) (*Orchestrator, error) {
	if opts.Session == nil {
		return nil, fmt.Errorf("session is required")
	}
	if opts.Cursors == nil || opts.Metadata == nil {
		return nil, fmt.Errorf("cursor and metadata storage are required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewSyncMetrics(prometheus.NewRegistry())
	}
	if opts.Policy == nil {
		opts.Policy = NewReconciliationPolicy(0, nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	byKind := make(map[models.EntityKind]EntitySyncer, len(syncers))
	for _, s := range syncers {
		if _, dup := byKind[s.Kind()]; dup {
			return nil, fmt.Errorf("duplicate syncer for %s", s.Kind())
		}
		byKind[s.Kind()] = s
	}
	for _, kind := range models.AllKinds() {
		if _, ok := byKind[kind]; !ok {
			return nil, fmt.Errorf("missing syncer for %s", kind)
		}
	}

	o := &Orchestrator{
		syncers:  byKind,
		session:  opts.Session,
		cursors:  opts.Cursors,
		metadata: opts.Metadata,
		policy:   opts.Policy,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		now:      opts.Now,
		notify:   make(chan struct{}, 1),
	}
	o.setState(State{Status: StatusIdle})
	return o, nil
}

// Policy returns the reconciliation policy shared with the repositories.
func (o *Orchestrator) Policy() *ReconciliationPolicy {
	return o.policy
}

// SyncAll syncs every entity kind in dependency order.
func (o *Orchestrator) SyncAll(ctx context.Context) (*Report, error) {
	return o.runPass(ctx, "manual", models.AllKinds())
}

// SyncEntity syncs kind together with the kinds it depends on.
func (o *Orchestrator) SyncEntity(ctx context.Context, kind models.EntityKind) (*Report, error) {
	if _, ok := o.syncers[kind]; !ok {
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}
	return o.runPass(ctx, "entity:"+string(kind), DependencyClosure(kind))
}

// ForceReconciliation makes the next pass reconcile deletions of the given kinds, or all when empty.
func (o *Orchestrator) ForceReconciliation(kinds ...models.EntityKind) {
	if len(kinds) == 0 {
		kinds = models.AllKinds()
	}
	for _, kind := range kinds {
		o.policy.ForceNextFullReconciliation(ReconciliationTag(kind))
	}
}

// Pending returns the number of rows waiting to be pushed, per kind.
func (o *Orchestrator) Pending(ctx context.Context) (map[models.EntityKind]int, error) {
	pending := make(map[models.EntityKind]int, len(o.syncers))
	for _, kind := range models.AllKinds() {
		n, err := o.syncers[kind].Pending(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count pending %s rows: %w", kind, err)
		}
		pending[kind] = n
	}
	return pending, nil
}

// runPass isolates failures per entity: a failed kind never stops the next one.
// Delete failures and panics put the orchestrator in the error state; other
// errors are reported but leave it idle for the next retry.
func (o *Orchestrator) runPass(ctx context.Context, reason string, kinds []models.EntityKind) (*Report, error) {
	o.runMu.Lock()
	defer o.runMu.Unlock()

	if o.session.UserID() == "" {
		return nil, ErrNoActiveUser
	}

	report := &Report{
		Started: o.now(),
		Results: make(map[models.EntityKind]*SyncResult, len(kinds)),
		Errors:  make(map[models.EntityKind]error),
		Reason:  reason,
		Kinds:   kinds,
	}
	o.setState(State{Status: StatusSyncing})
	o.logger.Info("Sync pass started", "reason", reason, "entities", len(kinds))

	var failures []DeleteFailure
	var panics []error
	for _, kind := range kinds {
		res, err := o.syncOne(ctx, kind)
		if res != nil {
			report.Results[kind] = res
		}
		if err == nil {
			continue
		}

		report.Errors[kind] = err
		o.logger.Error("Entity sync failed", "entity", kind, "error", err)

		var dfe *DeleteFailuresError
		var pe *PanicError
		switch {
		case errors.As(err, &dfe):
			failures = append(failures, dfe.Failures...)
		case errors.As(err, &pe):
			panics = append(panics, pe)
		}
	}
	report.Finished = o.now()

	if len(failures) > 0 || len(panics) > 0 {
		var errs []error
		if len(failures) > 0 {
			errs = append(errs, &DeleteFailuresError{Failures: failures})
		}
		errs = append(errs, panics...)
		err := errors.Join(errs...)

		o.setState(State{Status: StatusError, Message: err.Error(), Failures: failures})
		o.metrics.Passes.WithLabelValues("error").Inc()
		o.logger.Error("Sync pass failed", "reason", reason, "error", err)
		return report, err
	}

	label := "ok"
	if report.Failed() {
		label = "partial"
	}
	o.metrics.Passes.WithLabelValues(label).Inc()
	o.setState(State{Status: StatusIdle})
	o.logger.Info("Sync pass finished",
		"reason", reason,
		"failed", len(report.Errors),
		"duration", report.Finished.Sub(report.Started))
	return report, nil
}

func (o *Orchestrator) syncOne(ctx context.Context, kind models.EntityKind) (res *SyncResult, err error) {
	defer func() {
		if v := recover(); v != nil {
			o.logger.Error("Panic during entity sync",
				"entity", kind,
				"panic", v,
				"stack", string(debug.Stack()))
			res, err = nil, &PanicError{Entity: kind, Value: v}
		}
	}()

	return o.syncers[kind].SyncOnce(ctx)
}

// RequestSync schedules a full pass after debounce. A newer request replaces
// the pending one and restarts the timer; requests arriving during a pass
// collapse into one follow-up pass.
func (o *Orchestrator) RequestSync(reason string, debounce time.Duration) {
	o.triggerMu.Lock()
	defer o.triggerMu.Unlock()

	o.pendingReason = reason
	o.generation++
	gen := o.generation

	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}

	if debounce <= 0 {
		o.fireLocked(gen)
		return
	}
	o.timer = time.AfterFunc(debounce, func() { o.fire(gen) })
}

// CancelPending drops a scheduled request that has not fired yet.
func (o *Orchestrator) CancelPending() {
	o.triggerMu.Lock()
	defer o.triggerMu.Unlock()

	o.generation++
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
}

func (o *Orchestrator) fire(gen uint64) {
	o.triggerMu.Lock()
	defer o.triggerMu.Unlock()
	o.fireLocked(gen)
}

// fireLocked ignores timers superseded by a newer request.
func (o *Orchestrator) fireLocked(gen uint64) {
	if gen != o.generation {
		return
	}
	o.timer = nil
	o.hasPending = true

	select {
	case o.notify <- struct{}{}:
	default:
	}
}

func (o *Orchestrator) takePending() (string, bool) {
	o.triggerMu.Lock()
	defer o.triggerMu.Unlock()

	if !o.hasPending {
		return "", false
	}
	o.hasPending = false
	return o.pendingReason, true
}

// Run consumes sync requests until ctx is done. A pass that has started is not
// interrupted by ctx cancellation.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.Info("Sync loop started")
	defer o.CancelPending()

	for {
		select {
		case <-ctx.Done():
			o.logger.Info("Sync loop stopped")
			return nil
		case <-o.notify:
			reason, ok := o.takePending()
			if !ok {
				continue
			}
			if _, err := o.runPass(context.WithoutCancel(ctx), reason, models.AllKinds()); err != nil {
				o.logger.Warn("Requested sync pass failed", "reason", reason, "error", err)
			}
		}
	}
}

// SwitchUser makes userID the active user. The previous user's cursors are
// dropped and every kind is reconciled on the next pass. The switch is refused
// while the previous user still has unpushed changes.
func (o *Orchestrator) SwitchUser(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	o.runMu.Lock()
	defer o.runMu.Unlock()

	prev, err := o.metadata.GetActiveUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to read active user: %w", err)
	}
	if prev == userID {
		o.session.SetUserID(userID)
		return nil
	}

	if prev != "" {
		pending, err := o.totalPending(ctx)
		if err != nil {
			return err
		}
		if pending > 0 {
			return fmt.Errorf("%w: %d rows of user %s", ErrUnsyncedChanges, pending, prev)
		}

		if err := o.cursors.DeleteUserCursors(ctx, prev); err != nil {
			return fmt.Errorf("failed to drop cursors of %s: %w", prev, err)
		}
	}

	// Курсоры от прошлой сессии этого пользователя тоже недействительны
	if err := o.cursors.DeleteUserCursors(ctx, userID); err != nil {
		return fmt.Errorf("failed to reset cursors of %s: %w", userID, err)
	}
	if err := o.metadata.SaveActiveUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to save active user: %w", err)
	}

	o.session.SetUserID(userID)
	o.policy.ForceAll()
	o.logger.Info("Active user switched", "previous", prev, "user_id", userID)
	return nil
}

func (o *Orchestrator) totalPending(ctx context.Context) (int, error) {
	pending, err := o.Pending(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, n := range pending {
		total += n
	}
	return total, nil
}
