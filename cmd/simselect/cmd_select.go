package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nvandessel/simselect/internal/selector"
	"github.com/nvandessel/simselect/internal/ux"
	"github.com/spf13/cobra"
)

func newSelectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select [target]",
		Short: "Make one schematic the simulation target",
		Long: `Enable simulation for the target schematic and disable it for every other
schematic in the working directory.

The working set is backed up into a new generation first. Without a target
argument an interactive picker is shown.

Examples:
  simselect select amplifier.kicad_sch        # Prompt for confirmation
  simselect select amplifier.kicad_sch --yes  # No prompt
  simselect select amplifier.kicad_sch --dry-run
  simselect select                            # Pick interactively`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSelect,
	}
	addSelectFlags(cmd)
	return cmd
}

func addSelectFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().Bool("dry-run", false, "Show what would change without backing up or writing")
}

func runSelect(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	var target string
	if len(args) == 1 {
		target = args[0]
	} else {
		target, err = pickTarget(ctx, e)
		if err != nil {
			return reportCancelled(e, err)
		}
	}

	if !yes && !dryRun {
		e.engine.SetConfirmer(ux.PromptConfirmer{})
	}

	report, err := e.engine.Run(ctx, selector.Request{Target: target, DryRun: dryRun})
	if e.jsonOut {
		if encErr := writeReportJSON(cmd, report, err); encErr != nil {
			return encErr
		}
		return err
	}
	printReport(e.out, report, err)
	return err
}

// pickTarget shows the interactive picker with the currently active document preselected.
func pickTarget(ctx context.Context, e *env) (string, error) {
	status, err := e.engine.Status()
	if err != nil {
		return "", err
	}
	names := make([]string, 0, len(status.Documents))
	for _, d := range status.Documents {
		names = append(names, d.Name)
	}
	active := ""
	if len(status.Active) == 1 {
		active = status.Active[0]
	}
	return ux.PickTarget(ctx, names, active)
}

func reportCancelled(e *env, err error) error {
	if errors.Is(err, selector.ErrUserCancelled) && !e.jsonOut {
		e.out.Muted("Cancelled. Nothing was changed.")
	}
	return err
}

type reportJSON struct {
	*selector.Report
	Error string        `json:"error,omitempty"`
	Kind  selector.Kind `json:"error_kind,omitempty"`
}

func writeReportJSON(cmd *cobra.Command, report *selector.Report, runErr error) error {
	out := reportJSON{Report: report}
	if runErr != nil {
		out.Error = runErr.Error()
		out.Kind, _ = selector.KindOf(runErr)
	}
	return json.NewEncoder(cmd.OutOrStdout()).Encode(out)
}

// printReport renders a run report for humans.
func printReport(p *ux.Printer, r *selector.Report, runErr error) {
	if r == nil {
		return
	}

	switch r.Outcome {
	case selector.OutcomeCancelled:
		p.Muted("Cancelled. Nothing was changed.")
		return
	case selector.OutcomeAborted:
		kind, _ := selector.KindOf(runErr)
		if kind == "" {
			kind = "Aborted"
		}
		p.Error(fmt.Sprintf("%s: %s", kind, abortedSummary(r)))
		return
	}

	switch r.Action {
	case selector.ActionSelect:
		if r.Outcome == selector.OutcomeDryRun {
			p.Title(fmt.Sprintf("Dry run: %s as simulation target", r.Target))
		} else {
			p.Title(fmt.Sprintf("Simulation target: %s", r.Target))
		}
	case selector.ActionRestore:
		p.Title(fmt.Sprintf("Restored generation %d", r.RestoreFrom))
	case selector.ActionBackup:
		p.Title("Backup")
	}

	for _, d := range r.Results {
		switch {
		case d.Err != nil:
			p.Item(ux.IconError, d.Name, d.Err.Error())
		case r.Action == selector.ActionRestore:
			p.Item(ux.IconSuccess, d.Name, "")
		case d.Target:
			p.Item(ux.IconArrow, d.Name, fmt.Sprintf("enabled, %d of %d changed", d.Changed, d.Occurrences))
		default:
			p.Item(ux.IconBullet, d.Name, fmt.Sprintf("disabled, %d of %d changed", d.Changed, d.Occurrences))
		}
	}

	if r.Action != selector.ActionRestore {
		p.Info(fmt.Sprintf("%d document(s), %d attribute occurrence(s), %d line(s) changed", r.Documents, r.Occurrences, r.Changed))
	}
	if r.Generation != 0 {
		p.Info(fmt.Sprintf("backup generation %d", r.Generation))
	}
	if r.Evicted != nil {
		p.Info(fmt.Sprintf("evicted generation %d", *r.Evicted))
	}

	switch r.Outcome {
	case selector.OutcomeFull:
		p.Success("Applied to every document")
	case selector.OutcomePartial:
		msg := fmt.Sprintf("Partially applied: %d document(s) failed", len(r.Failures))
		if r.Generation != 0 {
			msg += fmt.Sprintf("; restore with generation %d", r.Generation)
		}
		p.Warning(msg)
	case selector.OutcomeDryRun:
		p.Muted("Dry run: nothing was written")
	}
}

// abortedSummary says what an aborted run already did. Documents are never
// touched before the backup succeeds, but retention or the new generation may
// have run before the abort.
func abortedSummary(r *selector.Report) string {
	var done []string
	if r.Evicted != nil {
		done = append(done, fmt.Sprintf("evicted generation %d", *r.Evicted))
	}
	if r.Generation != 0 {
		done = append(done, fmt.Sprintf("wrote backup generation %d", r.Generation))
	}
	if len(done) == 0 {
		return "nothing was changed"
	}
	return "documents unchanged, but " + strings.Join(done, " and ")
}
