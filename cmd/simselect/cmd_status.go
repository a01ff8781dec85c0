package main

import (
	"encoding/json"
	"fmt"

	"github.com/nvandessel/simselect/internal/constants"
	"github.com/nvandessel/simselect/internal/ux"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which schematic is currently the simulation target",
		Long: `Count enabled and disabled exclude_from_sim occurrences in every schematic
without modifying anything. The working set is reported as inconsistent when
more than one schematic has enabled occurrences or a schematic mixes both.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			status, err := e.engine.Status()
			if err != nil {
				return err
			}

			if e.jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(status)
			}

			e.out.Title(fmt.Sprintf("Schematics in %s", e.workDir))
			for _, d := range status.Documents {
				icon := ux.IconPending
				switch d.State {
				case constants.StateEnabled:
					icon = ux.IconArrow
				case constants.StateDisabled:
					icon = ux.IconBullet
				case constants.StateMixed:
					icon = ux.IconWarning
				}
				note := fmt.Sprintf("%s: %d enabled, %d disabled", d.State, d.Enabled, d.Disabled)
				if d.Unknown > 0 {
					note += fmt.Sprintf(", %d unrecognised", d.Unknown)
				}
				e.out.Item(icon, d.Name, note)
			}

			switch {
			case !status.Consistent:
				e.out.Warning("Inconsistent: run simselect select <target> to fix")
			case len(status.Active) == 1:
				e.out.Success(fmt.Sprintf("Simulation target: %s", status.Active[0]))
			default:
				e.out.Muted("No simulation target selected")
			}
			return nil
		},
	}
}
