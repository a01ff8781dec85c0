package main

import (
	"github.com/nvandessel/simselect/internal/ux"
	"github.com/spf13/cobra"
)

func newRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <id>",
		Short: "Copy the schematics of a backup generation back into place",
		Long: `Overwrite the working copies of every schematic stored in a generation.

The current state is backed up into a new generation first, so a restore can
itself be undone. Schematics that are not in the generation are left alone.

Examples:
  simselect restore 14
  simselect restore 14 --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")

			id, err := parseGenerationID(args[0])
			if err != nil {
				return err
			}

			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			if !yes {
				e.engine.SetConfirmer(ux.PromptConfirmer{})
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			report, err := e.engine.Restore(ctx, id)
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

	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
