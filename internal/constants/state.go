package constants

// State is the simulation state of one attribute occurrence or of a whole document.
type State string

const (
	// StateEnabled means the instance takes part in simulation.
	StateEnabled State = "enabled"

	// StateDisabled means the instance is excluded from simulation.
	StateDisabled State = "disabled"

	// StateMixed is only used for documents holding both enabled and disabled occurrences.
	StateMixed State = "mixed"

	// StateUnknown covers marker lines that match neither literal, and
	// documents with no occurrences at all.
	StateUnknown State = "unknown"
)

// Valid returns true if the state is a recognized value.
func (s State) Valid() bool {
	switch s {
	case StateEnabled, StateDisabled, StateMixed, StateUnknown:
		return true
	}
	return false
}

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}
