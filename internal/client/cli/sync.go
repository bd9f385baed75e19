package cli

import (
	"context"
	"errors"
	"fmt"
	"text/template"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/rentkeeper/internal/client/sync"
	"github.com/iudanet/rentkeeper/internal/models"
)

var reportTmpl = template.Must(template.New("report").Parse(reportTemplate))

type reportRow struct {
	Result *sync.SyncResult
	Err    error
	Entity models.EntityKind
}

func (c *Cli) newSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync [entity]",
		Short: "Synchronize all entities, or one entity with its parents",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSync(cmd.Context(), args)
		},
	}
}

func (c *Cli) newReconcileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile [entity]",
		Short: "Synchronize and remove local rows deleted on the server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var kinds []models.EntityKind
			if len(args) == 1 {
				kind, err := parseKind(args[0])
				if err != nil {
					return err
				}
				kinds = sync.DependencyClosure(kind)
			}
			c.engine.Orchestrator.ForceReconciliation(kinds...)
			return c.runSync(cmd.Context(), args)
		},
	}
}

func (c *Cli) runSync(ctx context.Context, args []string) error {
	orch := c.engine.Orchestrator

	var (
		report *sync.Report
		err    error
	)
	if len(args) == 1 {
		kind, perr := parseKind(args[0])
		if perr != nil {
			return perr
		}
		report, err = orch.SyncEntity(ctx, kind)
	} else {
		report, err = orch.SyncAll(ctx)
	}

	if errors.Is(err, sync.ErrNoActiveUser) {
		return fmt.Errorf("no active user. Run 'rentkeeper switch-user <id>' or set user.id")
	}
	if report != nil {
		if perr := c.printReport(report); perr != nil {
			return perr
		}
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	if report.Failed() {
		return fmt.Errorf("sync finished with %d failed entit(ies)", len(report.Errors))
	}
	return nil
}

func (c *Cli) printReport(report *sync.Report) error {
	rows := make([]reportRow, 0, len(report.Kinds))
	for _, kind := range report.Kinds {
		rows = append(rows, reportRow{
			Entity: kind,
			Result: report.Results[kind],
			Err:    report.Errors[kind],
		})
	}

	return reportTmpl.Execute(c.io, struct {
		Reason   string
		Rows     []reportRow
		Duration time.Duration
	}{
		Reason:   report.Reason,
		Rows:     rows,
		Duration: report.Finished.Sub(report.Started).Round(time.Millisecond),
	})
}
