package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chazu/conformal/pkg/config"
	"github.com/chazu/conformal/pkg/conform"
	"github.com/chazu/conformal/pkg/engine"
	"github.com/chazu/conformal/pkg/logging"
	"github.com/chazu/conformal/pkg/metrics"
	"github.com/chazu/conformal/pkg/room"
)

// cli holds the state shared by every subcommand: root flags and what the
// persistent pre-run resolves from them.
type cli struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg     config.Config
	log     *slog.Logger
	metrics *metrics.Registry
}

// newRootCmd builds the command tree. Each call returns independent
// state so tests can run commands side by side.
func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "conform",
		Short: "Conform axis-aligned rooms into a shared box complex",
		Long: `conform reads rooms from a YAML/JSON document or a Lisp room program
and splits them into one vertex, line, rectangle and cuboid complex in which
everything shared between neighbouring rooms exists exactly once.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "",
		"Path to a YAML config file (defaults apply when unset or missing)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "",
		"Log level: debug, info, warn or error (overrides config)")
	root.PersistentFlags().StringVar(&c.logFormat, "log-format", "",
		"Log format: text or json (overrides config)")

	root.AddCommand(newRunCmd(c))
	root.AddCommand(newCheckCmd(c))
	root.AddCommand(newMeshCmd(c))
	return root
}

// setup loads the config, applies flag overrides and builds the logger.
func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	if c.logFormat != "" {
		cfg.Log.Format = c.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	lc := cfg.Logging()
	lc.Output = cmd.ErrOrStderr()
	logger, err := logging.New(lc)
	if err != nil {
		return err
	}

	c.cfg = cfg
	c.log = logger
	c.metrics = metrics.NewRegistry()
	return nil
}

// isProgram reports whether path names a Lisp room program rather than a
// room document.
func isProgram(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".lisp", ".zy":
		return true
	}
	return false
}

// loadRooms reads rooms from a document or evaluates a room program.
func (c *cli) loadRooms(path string) ([]room.Room, error) {
	if !isProgram(path) {
		return room.Load(path)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read program: %w", err)
	}
	rooms, evalErrs, err := engine.NewEngine().Evaluate(string(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		msgs := make([]string, len(evalErrs))
		for i, e := range evalErrs {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("%s: %s", path, strings.Join(msgs, "; "))
	}
	c.log.Debug("room program evaluated", "path", path, "rooms", len(rooms))
	return rooms, nil
}

// newModel returns an empty model wired to the CLI's config, logger and
// metrics.
func (c *cli) newModel() *conform.Model {
	return conform.New(
		conform.WithTolerances(c.cfg.Tolerances),
		conform.WithLogger(c.log),
		conform.WithMetrics(c.metrics),
	)
}

// build adds every room to a fresh model and conforms it.
func (c *cli) build(rooms []room.Room) (*conform.Model, error) {
	m := c.newModel()
	for _, r := range rooms {
		if _, err := m.AddSpace(r); err != nil {
			return nil, fmt.Errorf("room %d: %w", r.ID, err)
		}
	}
	if err := m.MakeConformal(); err != nil {
		return nil, err
	}
	return m, nil
}
