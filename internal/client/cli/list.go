package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/iudanet/rentkeeper/internal/client/storage"
	"github.com/iudanet/rentkeeper/internal/client/storage/boltdb"
	"github.com/iudanet/rentkeeper/internal/models"
)

var templateFuncs = template.FuncMap{
	"cents": func(v int64) string {
		sign := ""
		if v < 0 {
			sign, v = "-", -v
		}
		return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
	},
}

func (c *Cli) newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <entity>",
		Short: "List local rows of an entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			return c.runList(cmd.Context(), kind)
		},
	}
}

func (c *Cli) runList(ctx context.Context, kind models.EntityKind) error {
	s := c.engine.Storage
	switch kind {
	case models.KindTenant:
		return listRows[*models.Tenant](ctx, c.io, s.Tenants(), tenantTemplate)
	case models.KindHousing:
		return listRows[*models.Housing](ctx, c.io, s.Housings(), housingTemplate)
	case models.KindLease:
		return listRows[*models.Lease](ctx, c.io, s.Leases(), leaseTemplate)
	case models.KindKey:
		return listRows[*models.Key](ctx, c.io, s.Keys(), keyTemplate)
	default:
		return listRows[*models.IndexationEvent](ctx, c.io, s.IndexationEvents(), indexationEventTemplate)
	}
}

func listRows[E models.Entity](ctx context.Context, out io.Writer, l storage.EntityStorage[E], rowTemplate string) error {
	rows, err := l.List(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(out, "No rows found.")
		return err
	}

	tmpl, err := template.New("row").Funcs(templateFuncs).Parse(flagsTemplate + rowTemplate)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, row := range rows {
		if err := tmpl.Execute(w, row); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return w.Flush()
}

func (c *Cli) newAddCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "add <entity> [json]",
		Short: "Create or update a local row from JSON (argument, --file or stdin)",
		Long: `Create or update a local row. Parent links use local ids, e.g.

  rentkeeper add lease '{"housing_local_id":1,"tenant_local_id":2,"start_date":"2024-03-01","rent_cents":90000}'

A row carrying an existing remote_id is updated in place.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			raw, err := readPayload(cmd.InOrStdin(), args[1:], file)
			if err != nil {
				return err
			}
			remoteID, err := c.saveRow(cmd.Context(), kind, raw)
			if err != nil {
				return err
			}
			c.io.Printf("✓ %s saved: %s\n", kind, remoteID)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "read the row from a JSON file")
	return cmd
}

func readPayload(stdin io.Reader, args []string, file string) ([]byte, error) {
	switch {
	case len(args) == 1:
		return []byte(args[0]), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		return data, nil
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		if strings.TrimSpace(string(data)) == "" {
			return nil, fmt.Errorf("row JSON is required")
		}
		return data, nil
	}
}

func (c *Cli) saveRow(ctx context.Context, kind models.EntityKind, raw []byte) (string, error) {
	s := c.engine.Storage
	switch kind {
	case models.KindTenant:
		return saveRow(ctx, s.Tenants(), raw, func() *models.Tenant { return &models.Tenant{} })
	case models.KindHousing:
		return saveRow(ctx, s.Housings(), raw, func() *models.Housing { return &models.Housing{} })
	case models.KindLease:
		return saveRow(ctx, s.Leases(), raw, func() *models.Lease { return &models.Lease{} })
	case models.KindKey:
		return saveRow(ctx, s.Keys(), raw, func() *models.Key { return &models.Key{} })
	default:
		return saveRow(ctx, s.IndexationEvents(), raw, func() *models.IndexationEvent { return &models.IndexationEvent{} })
	}
}

// saveRow decodes raw into a new entity. Sync bookkeeping from the payload is ignored
// except remote_id, which selects the row to update.
func saveRow[E models.Entity](ctx context.Context, store *boltdb.EntityStore[E], raw []byte, newFn func() E) (string, error) {
	entity := newFn()
	if err := json.Unmarshal(raw, entity); err != nil {
		return "", fmt.Errorf("invalid row JSON: %w", err)
	}

	meta := entity.Meta()
	fresh := models.SyncMeta{RemoteID: meta.RemoteID}
	if meta.RemoteID != "" {
		existing, err := store.GetByRemoteID(ctx, meta.RemoteID)
		switch {
		case err == nil:
			prev := existing.Meta()
			fresh.LocalID = prev.LocalID
			fresh.CreatedAt = prev.CreatedAt
			fresh.UpdatedAt = prev.UpdatedAt
			fresh.ServerUpdatedAt = prev.ServerUpdatedAt
		case !errors.Is(err, storage.ErrEntityNotFound):
			return "", err
		}
	}
	*meta = fresh

	if err := store.Save(ctx, entity); err != nil {
		return "", err
	}
	return meta.RemoteID, nil
}

func (c *Cli) newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <entity> <remote-id>",
		Short: "Delete a local row; the deletion is pushed on the next sync",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			if err := c.markDeleted(cmd.Context(), kind, args[1]); err != nil {
				if errors.Is(err, storage.ErrEntityNotFound) {
					return fmt.Errorf("%s %s not found", kind, args[1])
				}
				return err
			}
			c.io.Printf("✓ %s %s deleted\n", kind, args[1])
			return nil
		},
	}
}

func (c *Cli) markDeleted(ctx context.Context, kind models.EntityKind, remoteID string) error {
	s := c.engine.Storage
	switch kind {
	case models.KindTenant:
		return s.Tenants().MarkDeleted(ctx, remoteID)
	case models.KindHousing:
		return s.Housings().MarkDeleted(ctx, remoteID)
	case models.KindLease:
		return s.Leases().MarkDeleted(ctx, remoteID)
	case models.KindKey:
		return s.Keys().MarkDeleted(ctx, remoteID)
	default:
		return s.IndexationEvents().MarkDeleted(ctx, remoteID)
	}
}
