package ux

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/huh"
	"github.com/nvandessel/simselect/internal/selector"
)

func TestDescribePlan(t *testing.T) {
	evict := 5
	tests := []struct {
		name      string
		plan      selector.Plan
		wantTitle string
		want      []string
	}{
		{
			name:      "select with eviction",
			plan:      selector.Plan{Action: selector.ActionSelect, Target: "A.kicad_sch", Documents: []string{"A.kicad_sch", "B.kicad_sch"}, NextGeneration: 15, Evict: &evict},
			wantTitle: "Make A.kicad_sch the simulation target?",
			want:      []string{"2 document(s) will be rewritten", "only A.kicad_sch", "generation 15", "generation 5 will be deleted"},
		},
		{
			name:      "select without eviction",
			plan:      selector.Plan{Action: selector.ActionSelect, Target: "B.kicad_sch", Documents: []string{"B.kicad_sch"}, NextGeneration: 1},
			wantTitle: "Make B.kicad_sch the simulation target?",
			want:      []string{"generation 1."},
		},
		{
			name:      "restore",
			plan:      selector.Plan{Action: selector.ActionRestore, RestoreFrom: 3, Documents: []string{"A.kicad_sch"}, NextGeneration: 8},
			wantTitle: "Restore generation 3?",
			want:      []string{"1 document(s) will be overwritten from generation 3", "generation 8"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlanTitle(tt.plan); got != tt.wantTitle {
				t.Errorf("PlanTitle() = %q, want %q", got, tt.wantTitle)
			}
			desc := DescribePlan(tt.plan)
			for _, w := range tt.want {
				if !strings.Contains(desc, w) {
					t.Errorf("DescribePlan() = %q, missing %q", desc, w)
				}
			}
			if tt.plan.Evict == nil && strings.Contains(desc, "deleted") {
				t.Errorf("DescribePlan() mentions eviction: %q", desc)
			}
		})
	}
}

func TestPromptError(t *testing.T) {
	if err := promptError(huh.ErrUserAborted); !errors.Is(err, selector.ErrUserCancelled) {
		t.Errorf("aborted prompt = %v, want UserCancelled", err)
	}
	other := errors.New("tty closed")
	err := promptError(other)
	if !errors.Is(err, other) || errors.Is(err, selector.ErrUserCancelled) {
		t.Errorf("promptError(other) = %v", err)
	}
}
