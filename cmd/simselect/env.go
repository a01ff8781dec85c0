package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/nvandessel/simselect/internal/config"
	"github.com/nvandessel/simselect/internal/fsutil"
	"github.com/nvandessel/simselect/internal/logging"
	"github.com/nvandessel/simselect/internal/selector"
	"github.com/nvandessel/simselect/internal/ux"
	"github.com/spf13/cobra"
)

// env is the per-invocation wiring shared by every command.
type env struct {
	workDir string
	cfg     *config.Config
	engine  *selector.Engine
	logger  *slog.Logger
	journal *logging.Journal
	out     *ux.Printer
	jsonOut bool
}

// newEnv loads and validates configuration for the --root directory and builds the engine.
// Callers must defer env.Close.
func newEnv(cmd *cobra.Command) (*env, error) {
	root, _ := cmd.Flags().GetString("root")
	jsonOut, _ := cmd.Flags().GetBool("json")
	level, _ := cmd.Flags().GetString("log-level")

	workDir, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}
	if info, err := os.Stat(workDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("working directory %s is not a directory", workDir)
	}

	cfg, err := config.Load(workDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if level != "" {
		cfg.Logging.Level = level
	}
	if err := cfg.Validate(workDir); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	runID := uuid.NewString()
	logger := logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
	journal := logging.NewJournal(config.UserDir(), cfg.Logging.Level, runID)

	engine := selector.New(fsutil.NewOSFS(), workDir, cfg)
	engine.SetLogger(logger, journal)
	engine.SetRunIDFunc(func() string { return runID })

	return &env{
		workDir: workDir,
		cfg:     cfg,
		engine:  engine,
		logger:  logger,
		journal: journal,
		out:     ux.NewPrinter(cmd.OutOrStdout()),
		jsonOut: jsonOut,
	}, nil
}

// Close releases the run journal.
func (e *env) Close() {
	e.journal.Close()
}

// signalContext returns a context cancelled on SIGINT/SIGTERM. The engine only
// honours it until toggling starts.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	notifySignals(sigCh)

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		stopSignals(sigCh)
		cancel()
	}
}

func parseGenerationID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid generation id %q: must be a non-negative integer", arg)
	}
	return id, nil
}
