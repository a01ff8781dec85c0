package toggle

import (
	"fmt"
	"strings"

	"github.com/nvandessel/simselect/internal/constants"
	"github.com/nvandessel/simselect/internal/document"
)

// Summary describes the attribute state of one document.
type Summary struct {
	Name     string          `json:"name"`
	Enabled  int             `json:"enabled"`
	Disabled int             `json:"disabled"`
	Unknown  int             `json:"unknown"`
	State    constants.State `json:"state"`
}

// Summarize counts attribute lines in content by state.
func (a Attribute) Summarize(name string, content []byte) Summary {
	s := Summary{Name: name}
	for _, line := range SplitLines(string(content)) {
		if !strings.Contains(line, a.Marker) {
			continue
		}
		switch a.Classify(line) {
		case constants.StateEnabled:
			s.Enabled++
		case constants.StateDisabled:
			s.Disabled++
		default:
			s.Unknown++
		}
	}

	switch {
	case s.Enabled > 0 && s.Disabled > 0:
		s.State = constants.StateMixed
	case s.Enabled > 0:
		s.State = constants.StateEnabled
	case s.Disabled > 0:
		s.State = constants.StateDisabled
	default:
		s.State = constants.StateUnknown
	}
	return s
}

// Status is the attribute state of a whole document set.
type Status struct {
	Documents []Summary `json:"documents"`
	// Active lists documents whose occurrences are all enabled.
	Active []string `json:"active"`
	// Consistent is true when at most one document has any enabled occurrence
	// and no document is mixed.
	Consistent bool `json:"consistent"`
}

// Inspect reads every document and reports its state without modifying anything.
func (t *Toggler) Inspect(set document.Set) (Status, error) {
	st := Status{Consistent: true}
	withEnabled := 0
	for _, name := range set.Names() {
		content, err := t.fs.ReadFile(set.Path(name))
		if err != nil {
			return Status{}, fmt.Errorf("reading %s: %w", name, err)
		}
		sum := t.attr.Summarize(name, content)
		st.Documents = append(st.Documents, sum)

		if sum.Enabled > 0 {
			withEnabled++
		}
		switch sum.State {
		case constants.StateEnabled:
			st.Active = append(st.Active, name)
		case constants.StateMixed:
			st.Consistent = false
		}
	}
	if withEnabled > 1 {
		st.Consistent = false
	}
	return st, nil
}
