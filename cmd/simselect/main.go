package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/nvandessel/simselect/internal/selector"
	"github.com/spf13/cobra"
)

// Set via ldflags at build time.
var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

// Exit codes.
const (
	exitOK           = 0
	exitFailure      = 1
	exitPrecondition = 2
	exitBackup       = 3
	exitPartial      = 4
)

func main() {
	rootCmd := newRootCmd()
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, selector.ErrUserCancelled) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(exitCode(err))
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "simselect [target]",
		Short: "Choose the KiCad schematic that takes part in simulation",
		Long: `simselect marks exactly one schematic in a directory as the simulation
target and excludes every other schematic from simulation, by rewriting the
(exclude_from_sim ...) attribute of each document.

Before anything is rewritten the whole working set is copied into a numbered
backup generation under sim_backup/. At most 10 generations are kept.

Running simselect with a target is the same as "simselect select <target>".`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runSelect,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("root", ".", "Working directory containing the schematics")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info, debug or trace (overrides config)")

	addSelectFlags(rootCmd)

	rootCmd.AddCommand(
		newSelectCmd(),
		newStatusCmd(),
		newBackupCmd(),
		newRestoreCmd(),
		newDiffCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	kind, ok := selector.KindOf(err)
	if !ok {
		return exitFailure
	}
	switch kind {
	case selector.KindUserCancelled:
		return exitOK
	case selector.KindNoDocumentsFound, selector.KindTargetNotFound, selector.KindGenerationNotFound:
		return exitPrecondition
	case selector.KindBackupWriteFailed:
		return exitBackup
	case selector.KindDocumentWriteFailed:
		return exitPartial
	default:
		return exitFailure
	}
}
