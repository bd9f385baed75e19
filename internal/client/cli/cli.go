// Package cli implements the rentkeeper client commands.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/iudanet/rentkeeper/internal/client/iocli"
	"github.com/iudanet/rentkeeper/internal/config"
	"github.com/iudanet/rentkeeper/internal/logger"
	"github.com/iudanet/rentkeeper/internal/models"
)

// annotationNoEngine marks commands that run without opening the local database.
const annotationNoEngine = "no-engine"

// BuildInfo is printed by the version command.
type BuildInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

// Cli holds the state shared by the commands of one invocation.
type Cli struct {
	io         iocli.IO
	cfg        *config.ClientConfig
	logger     *slog.Logger
	logCloser  io.Closer
	engine     *Engine
	build      BuildInfo
	configPath string
	userID     string
}

// NewRootCommand builds the command tree printing to out.
func NewRootCommand(build BuildInfo, out iocli.IO) *cobra.Command {
	c := &Cli{io: out, build: build}

	root := &cobra.Command{
		Use:           "rentkeeper",
		Short:         "Offline-first sync client for rental property data",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[annotationNoEngine] != "" || cmd.Name() == "help" {
				return nil
			}
			return c.open(cmd)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(out)
	root.SetErr(out)

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to YAML config file")
	root.PersistentFlags().StringVar(&c.userID, "user", "", "user id to sync for (overrides user.id)")

	root.AddCommand(
		c.newSyncCommand(),
		c.newWatchCommand(),
		c.newStatusCommand(),
		c.newReconcileCommand(),
		c.newSwitchUserCommand(),
		c.newListCommand(),
		c.newAddCommand(),
		c.newDeleteCommand(),
		c.newVersionCommand(),
	)

	// PersistentPostRunE не вызывается после ошибки RunE, поэтому закрываем здесь
	for _, sub := range root.Commands() {
		if sub.RunE == nil {
			continue
		}
		run := sub.RunE
		sub.RunE = func(cmd *cobra.Command, args []string) (err error) {
			defer func() {
				err = errors.Join(err, c.close())
			}()
			return run(cmd, args)
		}
	}
	return root
}

// open loads the configuration and wires the engine.
func (c *Cli) open(cmd *cobra.Command) error {
	cfg, err := config.LoadClient(c.configPath)
	if err != nil {
		return err
	}
	if c.userID != "" {
		cfg.User.ID = c.userID
	}
	c.cfg = cfg

	log, closer, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	c.logger, c.logCloser = log, closer

	engine, err := NewEngine(cmd.Context(), cfg, log)
	if err != nil {
		_ = c.close()
		return err
	}
	c.engine = engine
	return nil
}

func (c *Cli) close() error {
	var err error
	if c.engine != nil {
		err = c.engine.Close()
		c.engine = nil
	}
	if c.logCloser != nil {
		_ = c.logCloser.Close()
		c.logCloser = nil
	}
	return err
}

// parseKind accepts "lease" as well as "leases".
func parseKind(s string) (models.EntityKind, error) {
	kind, ok := models.ParseEntityKind(s)
	if !ok {
		return "", fmt.Errorf("unknown entity %q. Use: tenant, housing, lease, key, indexation_event", s)
	}
	return kind, nil
}

func (c *Cli) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoEngine: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			c.io.Println("RentKeeper Client")
			c.io.Printf("Version:    %s\n", c.build.Version)
			c.io.Printf("Build Date: %s\n", c.build.BuildDate)
			c.io.Printf("Git Commit: %s\n", c.build.GitCommit)
		},
	}
}
