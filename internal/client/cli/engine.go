package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	restclient "github.com/iudanet/rentkeeper/internal/client/api"
	"github.com/iudanet/rentkeeper/internal/client/remote/postgres"
	"github.com/iudanet/rentkeeper/internal/client/storage/boltdb"
	"github.com/iudanet/rentkeeper/internal/client/sync"
	"github.com/iudanet/rentkeeper/internal/config"
	"github.com/iudanet/rentkeeper/internal/metrics"
	"github.com/iudanet/rentkeeper/internal/models"
	"github.com/iudanet/rentkeeper/pkg/api"
)

// Engine is a fully wired sync engine for one local database.
type Engine struct {
	Storage      *boltdb.Storage
	Orchestrator *sync.Orchestrator
	Session      *sync.Session
	Registry     *prometheus.Registry
	closers      []func() error
}

// remoteTables holds the remote side of every entity stream.
type remoteTables struct {
	tenants          sync.RemoteTable[api.TenantRow]
	housings         sync.RemoteTable[api.HousingRow]
	leases           sync.RemoteTable[api.LeaseRow]
	keys             sync.RemoteTable[api.KeyRow]
	indexationEvents sync.RemoteTable[api.IndexationEventRow]
}

func restTables(c *restclient.Client) remoteTables {
	return remoteTables{
		tenants:          restclient.NewTable[api.TenantRow](c, api.TableTenants),
		housings:         restclient.NewTable[api.HousingRow](c, api.TableHousings),
		leases:           restclient.NewTable[api.LeaseRow](c, api.TableLeases),
		keys:             restclient.NewTable[api.KeyRow](c, api.TableKeys),
		indexationEvents: restclient.NewTable[api.IndexationEventRow](c, api.TableIndexationEvents),
	}
}

func postgresTables(s *postgres.Store) remoteTables {
	return remoteTables{
		tenants:          postgres.NewTable[api.TenantRow](s, api.TableTenants),
		housings:         postgres.NewTable[api.HousingRow](s, api.TableHousings),
		leases:           postgres.NewTable[api.LeaseRow](s, api.TableLeases),
		keys:             postgres.NewTable[api.KeyRow](s, api.TableKeys),
		indexationEvents: postgres.NewTable[api.IndexationEventRow](s, api.TableIndexationEvents),
	}
}

// NewEngine opens the local database, connects the configured remote backend and
// activates the configured user, if any.
func NewEngine(ctx context.Context, cfg *config.ClientConfig, logger *slog.Logger) (*Engine, error) {
	store, err := boltdb.New(ctx, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	e := &Engine{Storage: store, closers: []func() error{store.Close}}

	remotes, err := e.connect(ctx, cfg)
	if err != nil {
		_ = e.Close()
		return nil, err
	}

	activeUser, err := store.GetActiveUser(ctx)
	if err != nil {
		_ = e.Close()
		return nil, err
	}

	e.Registry = prometheus.NewRegistry()
	e.Registry.MustRegister(collectors.NewGoCollector())
	m := metrics.NewSyncMetrics(e.Registry)

	e.Session = sync.NewSession(activeUser)
	policy := sync.NewReconciliationPolicy(cfg.Sync.ReconcileInterval, nil)

	e.Orchestrator, err = sync.NewOrchestrator(newSyncers(store, remotes, sync.RepositoryOptions{
		Cursors:  store,
		Identity: e.Session,
		Policy:   policy,
		Metrics:  m,
		Logger:   logger,
		Config: sync.RepositoryConfig{
			PullPageSize:  cfg.Sync.PullPageSize,
			ListPageSize:  cfg.Sync.ListPageSize,
			PushBatchSize: cfg.Sync.PushBatchSize,
		},
	}), sync.OrchestratorOptions{
		Session:  e.Session,
		Cursors:  store,
		Metadata: store,
		Policy:   policy,
		Metrics:  m,
		Logger:   logger,
	})
	if err != nil {
		_ = e.Close()
		return nil, err
	}

	if cfg.User.ID != "" && cfg.User.ID != activeUser {
		if err := e.Orchestrator.SwitchUser(ctx, cfg.User.ID); err != nil {
			_ = e.Close()
			return nil, fmt.Errorf("failed to activate user %s: %w", cfg.User.ID, err)
		}
	}

	return e, nil
}

func (e *Engine) connect(ctx context.Context, cfg *config.ClientConfig) (remoteTables, error) {
	switch cfg.Remote.Backend {
	case config.BackendPostgres:
		pg, err := postgres.Open(ctx, cfg.Remote.PostgresDSN)
		if err != nil {
			return remoteTables{}, err
		}
		e.closers = append(e.closers, func() error {
			pg.Close()
			return nil
		})
		if err := pg.EnsureSchema(ctx); err != nil {
			return remoteTables{}, err
		}
		return postgresTables(pg), nil
	default:
		c := restclient.NewClient(cfg.Server.URL, cfg.Server.Token)
		c.SetTimeout(cfg.Server.Timeout)
		return restTables(c), nil
	}
}

// Close releases the remote connection and the local database.
func (e *Engine) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		errs = append(errs, e.closers[i]())
	}
	e.closers = nil
	return errors.Join(errs...)
}

// newSyncers builds one repository per entity kind over the local store.
func newSyncers(store *boltdb.Storage, remotes remoteTables, opts sync.RepositoryOptions) []sync.EntitySyncer {
	tenants := store.Tenants()
	housings := store.Housings()
	leases := store.Leases()

	return []sync.EntitySyncer{
		sync.NewRepository[*models.Tenant, api.TenantRow](sync.TenantBinding{}, tenants, remotes.tenants, opts),
		sync.NewRepository[*models.Housing, api.HousingRow](sync.HousingBinding{}, housings, remotes.housings, opts),
		sync.NewRepository[*models.Lease, api.LeaseRow](sync.LeaseBinding{Housings: housings, Tenants: tenants}, leases, remotes.leases, opts),
		sync.NewRepository[*models.Key, api.KeyRow](sync.KeyBinding{Housings: housings}, store.Keys(), remotes.keys, opts),
		sync.NewRepository[*models.IndexationEvent, api.IndexationEventRow](sync.IndexationEventBinding{Leases: leases}, store.IndexationEvents(), remotes.indexationEvents, opts),
	}
}
