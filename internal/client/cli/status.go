package cli

import (
	"context"
	"fmt"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/iudanet/rentkeeper/internal/models"
	"github.com/iudanet/rentkeeper/internal/validation"
	"github.com/iudanet/rentkeeper/pkg/api"
)

var statusTmpl = template.Must(template.New("status").Parse(statusTemplate))

type statusRow struct {
	Entity  models.EntityKind
	Cursor  string
	Newest  string
	Local   int
	Pending int
}

func (c *Cli) newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active user, pending changes and pull cursors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStatus(cmd.Context())
		},
	}
}

func (c *Cli) runStatus(ctx context.Context) error {
	store := c.engine.Storage
	userID := c.engine.Session.UserID()

	pending, err := c.engine.Orchestrator.Pending(ctx)
	if err != nil {
		return fmt.Errorf("failed to count pending changes: %w", err)
	}

	cursors := map[string]string{}
	if userID != "" {
		list, err := store.ListCursors(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to list cursors: %w", err)
		}
		for _, cur := range list {
			cursors[cur.SyncKey] = fmt.Sprintf("%s/%s", api.FormatTimestamp(cur.UpdatedAtMillis), cur.RemoteID)
		}
	}

	tables, err := c.localTables(ctx)
	if err != nil {
		return err
	}

	rows := make([]statusRow, 0, len(models.AllKinds()))
	total := 0
	for _, kind := range models.AllKinds() {
		total += pending[kind]
		row := statusRow{
			Entity:  kind,
			Local:   tables[kind].rows,
			Pending: pending[kind],
			Cursor:  cursors[kind.SyncKey()],
		}
		if newest := tables[kind].newest; newest != nil {
			row.Newest = api.FormatTimestamp(*newest)
		}
		rows = append(rows, row)
	}

	return statusTmpl.Execute(c.io, struct {
		UserID       string
		Backend      string
		Database     string
		Rows         []statusRow
		TotalPending int
	}{
		UserID:       userID,
		Backend:      c.cfg.Remote.Backend,
		Database:     c.cfg.Storage.Path,
		Rows:         rows,
		TotalPending: total,
	})
}

type localTable[E any] interface {
	List(ctx context.Context) ([]E, error)
	GetMaxServerUpdatedAt(ctx context.Context) (*int64, error)
}

type tableStats struct {
	newest *int64
	rows   int
}

func stat[E any](ctx context.Context, t localTable[E]) (tableStats, error) {
	rows, err := t.List(ctx)
	if err != nil {
		return tableStats{}, err
	}
	newest, err := t.GetMaxServerUpdatedAt(ctx)
	return tableStats{rows: len(rows), newest: newest}, err
}

// localTables returns the number of stored rows per kind, tombstones included,
// and the newest server timestamp seen locally.
func (c *Cli) localTables(ctx context.Context) (map[models.EntityKind]tableStats, error) {
	store := c.engine.Storage
	stats := map[models.EntityKind]func() (tableStats, error){
		models.KindTenant:          func() (tableStats, error) { return stat[*models.Tenant](ctx, store.Tenants()) },
		models.KindHousing:         func() (tableStats, error) { return stat[*models.Housing](ctx, store.Housings()) },
		models.KindLease:           func() (tableStats, error) { return stat[*models.Lease](ctx, store.Leases()) },
		models.KindKey:             func() (tableStats, error) { return stat[*models.Key](ctx, store.Keys()) },
		models.KindIndexationEvent: func() (tableStats, error) { return stat[*models.IndexationEvent](ctx, store.IndexationEvents()) },
	}

	out := make(map[models.EntityKind]tableStats, len(stats))
	for kind, fn := range stats {
		st, err := fn()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s table: %w", kind, err)
		}
		out[kind] = st
	}
	return out, nil
}

func (c *Cli) newSwitchUserCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "switch-user <user-id>",
		Short: "Make another user the active one and reset its pull cursors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateUserID(args[0]); err != nil {
				return err
			}
			if err := c.engine.Orchestrator.SwitchUser(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to switch user: %w", err)
			}
			c.io.Printf("✓ Active user: %s\n", args[0])
			c.io.Println("Run 'rentkeeper sync' to download its data.")
			return nil
		},
	}
}
