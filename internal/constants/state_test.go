package constants

import "testing"

func TestState_Valid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  bool
	}{
		{
			name:  "enabled is valid",
			state: StateEnabled,
			want:  true,
		},
		{
			name:  "disabled is valid",
			state: StateDisabled,
			want:  true,
		},
		{
			name:  "mixed is valid",
			state: StateMixed,
			want:  true,
		},
		{
			name:  "unknown is valid",
			state: StateUnknown,
			want:  true,
		},
		{
			name:  "empty string is invalid",
			state: State(""),
			want:  false,
		},
		{
			name:  "ENABLED uppercase is invalid",
			state: State("ENABLED"),
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Valid(); got != tt.want {
				t.Errorf("State.Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestState_String(t *testing.T) {
	if got := StateDisabled.String(); got != "disabled" {
		t.Errorf("State.String() = %v, want %v", got, "disabled")
	}
}

func TestAttributeLiteralsShareMarker(t *testing.T) {
	for _, lit := range []string{AttributeEnabled, AttributeDisabled} {
		if len(lit) <= len(AttributeMarker) || lit[:len(AttributeMarker)] != AttributeMarker {
			t.Errorf("literal %q does not start with marker %q", lit, AttributeMarker)
		}
	}
}
