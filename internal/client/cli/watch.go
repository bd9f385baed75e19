package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/iudanet/rentkeeper/internal/client/sync"
	"github.com/iudanet/rentkeeper/pkg/api"
)

// metricsShutdownTimeout bounds the shutdown of the metrics listener.
const metricsShutdownTimeout = 5 * time.Second

func (c *Cli) newWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep syncing in the background until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context())
		},
	}
}

// runWatch runs the sync loop, the periodic trigger and the metrics endpoint
// until ctx is cancelled.
func (c *Cli) runWatch(ctx context.Context) error {
	orch := c.engine.Orchestrator
	if c.engine.Session.UserID() == "" {
		return fmt.Errorf("no active user. Run 'rentkeeper switch-user <id>' or set user.id")
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return orch.Run(ctx)
	})

	g.Go(func() error {
		c.watchState(ctx, orch.Subscribe())
		return nil
	})

	g.Go(func() error {
		orch.RequestSync("startup", 0)
		if c.cfg.Sync.Interval <= 0 {
			<-ctx.Done()
			return nil
		}

		ticker := time.NewTicker(c.cfg.Sync.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				orch.RequestSync("periodic", c.cfg.Sync.Debounce)
			}
		}
	})

	if c.cfg.Metrics.Addr != "" {
		srv := &http.Server{
			Addr:              c.cfg.Metrics.Addr,
			Handler:           metricsHandler(c.engine),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			c.logger.Info("Metrics endpoint listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server failed: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	c.io.Printf("Watching changes for user %s. Press Ctrl+C to stop.\n", c.engine.Session.UserID())
	return g.Wait()
}

func metricsHandler(e *Engine) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(api.MetricsPath, promhttp.HandlerFor(e.Registry, promhttp.HandlerOpts{}))
	return mux
}

// watchState prints every transition of the orchestrator state.
func (c *Cli) watchState(ctx context.Context, states <-chan sync.State) {
	last := sync.Status("")
	for {
		select {
		case <-ctx.Done():
			return
		case s := <-states:
			if s.Status == last && s.Status != sync.StatusError {
				continue
			}
			last = s.Status
			switch s.Status {
			case sync.StatusError:
				c.io.Printf("[%s] sync error: %s\n", s.Changed.Format(time.TimeOnly), s.Message)
			case sync.StatusSyncing:
				c.io.Printf("[%s] syncing...\n", s.Changed.Format(time.TimeOnly))
			default:
				c.io.Printf("[%s] %s\n", s.Changed.Format(time.TimeOnly), s.Status)
			}
		}
	}
}
