// Package toggle rewrites the simulation-exclusion attribute in schematic text.
//
// Documents are handled as ordered lines and matched by literal substrings.
// The format is never parsed: any content that does not contain one of the
// Attribute literals is passed through byte for byte, line endings included.
package toggle

import (
	"fmt"
	"strings"

	"github.com/nvandessel/simselect/internal/constants"
)

// Attribute is the literal contract for the simulation flag.
type Attribute struct {
	// Marker is present on every attribute line regardless of state.
	Marker string `json:"marker" yaml:"marker"`

	// Enabled is the exact text of an occurrence that takes part in simulation.
	Enabled string `json:"enabled" yaml:"enabled"`

	// Disabled is the exact text of an occurrence excluded from simulation.
	Disabled string `json:"disabled" yaml:"disabled"`
}

// DefaultAttribute returns the KiCad exclude_from_sim literals.
func DefaultAttribute() Attribute {
	return Attribute{
		Marker:   constants.AttributeMarker,
		Enabled:  constants.AttributeEnabled,
		Disabled: constants.AttributeDisabled,
	}
}

// Validate checks that the literals can be swapped without ambiguity.
func (a Attribute) Validate() error {
	if a.Marker == "" || a.Enabled == "" || a.Disabled == "" {
		return fmt.Errorf("attribute literals must not be empty")
	}
	if a.Enabled == a.Disabled {
		return fmt.Errorf("enabled and disabled literals are identical: %q", a.Enabled)
	}
	if !strings.Contains(a.Enabled, a.Marker) || !strings.Contains(a.Disabled, a.Marker) {
		return fmt.Errorf("enabled %q and disabled %q must both contain marker %q", a.Enabled, a.Disabled, a.Marker)
	}
	// One literal inside the other would make a rewrite match its own output.
	if strings.Contains(a.Enabled, a.Disabled) || strings.Contains(a.Disabled, a.Enabled) {
		return fmt.Errorf("enabled %q and disabled %q must not contain each other", a.Enabled, a.Disabled)
	}
	return nil
}

// Classify returns the state of a single line. Lines without the marker, and
// marker lines matching neither literal, are StateUnknown.
func (a Attribute) Classify(line string) constants.State {
	switch {
	case strings.Contains(line, a.Enabled):
		return constants.StateEnabled
	case strings.Contains(line, a.Disabled):
		return constants.StateDisabled
	default:
		return constants.StateUnknown
	}
}

// Stats counts attribute lines seen by a rewrite.
type Stats struct {
	// Occurrences is the number of lines containing the marker before the rewrite.
	Occurrences int `json:"occurrences"`

	// Changed is the number of lines whose text was actually rewritten.
	Changed int `json:"changed"`
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Occurrences += other.Occurrences
	s.Changed += other.Changed
}

// RewriteLines produces the rewritten line sequence for one document.
// For the target every disabled literal becomes enabled; for any other
// document every enabled literal becomes disabled. The input is not modified.
func (a Attribute) RewriteLines(lines []string, target bool) ([]string, Stats) {
	from, to := a.Enabled, a.Disabled
	if target {
		from, to = a.Disabled, a.Enabled
	}

	var stats Stats
	out := make([]string, len(lines))
	for i, line := range lines {
		if strings.Contains(line, a.Marker) {
			stats.Occurrences++
		}
		if strings.Contains(line, from) {
			out[i] = strings.ReplaceAll(line, from, to)
			stats.Changed++
			continue
		}
		out[i] = line
	}
	return out, stats
}

// Rewrite applies RewriteLines to raw document content.
func (a Attribute) Rewrite(content []byte, target bool) ([]byte, Stats) {
	lines, stats := a.RewriteLines(SplitLines(string(content)), target)
	return []byte(strings.Join(lines, "")), stats
}

// SplitLines splits s after every '\n', keeping the terminator on each line,
// so that joining the result reproduces s exactly. A missing final newline is
// preserved as a last line without terminator.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
