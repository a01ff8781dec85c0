package main

import (
	"fmt"

	"github.com/nvandessel/simselect/internal/diff"
	"github.com/spf13/cobra"
)

func newDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <id> [document]",
		Short: "Show a unified diff between a backup generation and the working copies",
		Long: `Compare the schematics stored in a generation with the current files.

Examples:
  simselect diff 14                       # All schematics
  simselect diff 14 amplifier.kicad_sch   # One schematic
  simselect diff 14 --stat`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			contextLines, _ := cmd.Flags().GetInt("context")
			statOnly, _ := cmd.Flags().GetBool("stat")

			id, err := parseGenerationID(args[0])
			if err != nil {
				return err
			}
			name := ""
			if len(args) == 2 {
				name = args[1]
			}

			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			patches, err := e.engine.Diff(id, name, diff.Options{Context: contextLines, MaxBytes: 16 << 20})
			if err != nil {
				return err
			}

			if e.jsonOut {
				if statOnly {
					for i := range patches {
						patches[i].Body = ""
					}
				}
				return writeJSON(cmd, map[string]any{"id": id, "patches": patches})
			}

			changed := 0
			for _, p := range patches {
				if !p.Changed() {
					continue
				}
				changed++
				if statOnly {
					e.out.Plain(fmt.Sprintf("%s | +%d -%d\n", p.Name, p.Added, p.Removed))
					continue
				}
				e.out.Plain(p.Body)
			}
			if changed == 0 {
				e.out.Muted(fmt.Sprintf("No differences from generation %d", id))
			}
			return nil
		},
	}

	cmd.Flags().Int("context", diff.DefaultContext, "Number of context lines around each change")
	cmd.Flags().Bool("stat", false, "Only show per-document line counts")
	return cmd
}
