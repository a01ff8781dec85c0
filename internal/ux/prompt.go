package ux

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/nvandessel/simselect/internal/selector"
)

// ErrNotInteractive is returned when a prompt is needed but stdin or stdout is not a terminal.
var ErrNotInteractive = errors.New("not an interactive terminal")

// Interactive reports whether both stdin and stdout are terminals.
func Interactive() bool {
	return IsTerminal(os.Stdin) && IsTerminal(os.Stdout)
}

// PickTarget asks the user to choose one of names. active, if set, is preselected.
// Aborting the prompt returns an error matching selector.ErrUserCancelled.
func PickTarget(ctx context.Context, names []string, active string) (string, error) {
	if !Interactive() {
		return "", fmt.Errorf("choosing a target: %w (pass the target as an argument)", ErrNotInteractive)
	}

	choice := active
	field := huh.NewSelect[string]().
		Title("Select the simulation target").
		Description("Every other schematic will be excluded from simulation.").
		Options(huh.NewOptions(names...)...).
		Value(&choice)

	if err := huh.NewForm(huh.NewGroup(field)).RunWithContext(ctx); err != nil {
		return "", promptError(err)
	}
	return choice, nil
}

// PromptConfirmer asks for a yes/no answer before every mutation.
type PromptConfirmer struct{}

// Confirm implements selector.Confirmer.
func (PromptConfirmer) Confirm(ctx context.Context, plan selector.Plan) (bool, error) {
	if !Interactive() {
		return false, fmt.Errorf("confirming: %w (pass --yes)", ErrNotInteractive)
	}

	ok := false
	field := huh.NewConfirm().
		Title(PlanTitle(plan)).
		Description(DescribePlan(plan)).
		Affirmative("Yes").
		Negative("No").
		Value(&ok)

	if err := huh.NewForm(huh.NewGroup(field)).RunWithContext(ctx); err != nil {
		return false, promptError(err)
	}
	return ok, nil
}

func promptError(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return &selector.Error{Kind: selector.KindUserCancelled, Err: err}
	}
	return fmt.Errorf("prompt: %w", err)
}

// PlanTitle is the one-line question asked for plan.
func PlanTitle(plan selector.Plan) string {
	switch plan.Action {
	case selector.ActionRestore:
		return fmt.Sprintf("Restore generation %d?", plan.RestoreFrom)
	case selector.ActionBackup:
		return "Create a backup?"
	default:
		return fmt.Sprintf("Make %s the simulation target?", plan.Target)
	}
}

// DescribePlan lists what a confirmed plan will change.
func DescribePlan(plan selector.Plan) string {
	var b strings.Builder
	switch plan.Action {
	case selector.ActionRestore:
		fmt.Fprintf(&b, "%d document(s) will be overwritten from generation %d.\n", len(plan.Documents), plan.RestoreFrom)
	case selector.ActionSelect:
		fmt.Fprintf(&b, "%d document(s) will be rewritten; only %s stays in simulation.\n", len(plan.Documents), plan.Target)
	}
	fmt.Fprintf(&b, "Current state is saved as backup generation %d", plan.NextGeneration)
	if plan.Evict != nil {
		fmt.Fprintf(&b, "; generation %d will be deleted", *plan.Evict)
	}
	b.WriteString(".")
	return b.String()
}
