package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Snapshot every schematic into a new backup generation",
		Long: `Copy every schematic into sim_backup/sim_backup_<n> without changing any
attribute. Retention applies: when the cap is reached the oldest generation
is removed first.

Examples:
  simselect backup                # Create a generation
  simselect backup list           # List generations
  simselect backup verify 12      # Check generation 12 against its manifest`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			report, err := e.engine.Backup(ctx)
			if e.jsonOut {
				if encErr := writeReportJSON(cmd, report, err); encErr != nil {
					return encErr
				}
				return err
			}
			printReport(e.out, report, err)
			return err
		},
	}

	cmd.AddCommand(
		newBackupListCmd(),
		newBackupVerifyCmd(),
	)

	return cmd
}

// writeJSON encodes v to the command's output.
func writeJSON(cmd *cobra.Command, v any) error {
	return json.NewEncoder(cmd.OutOrStdout()).Encode(v)
}
