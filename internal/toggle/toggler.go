package toggle

import (
	"fmt"

	"github.com/nvandessel/simselect/internal/document"
	"github.com/nvandessel/simselect/internal/fsutil"
)

// DocumentResult is the outcome of rewriting one document.
type DocumentResult struct {
	Name   string `json:"name"`
	Target bool   `json:"target"`
	Stats
	// Err is set when the document could not be read or written back.
	Err error `json:"-"`
}

// Result aggregates a pass over the whole document set.
type Result struct {
	Documents []DocumentResult `json:"documents"`
	Total     Stats            `json:"total"`
}

// Failed returns the documents whose rewrite did not complete.
func (r Result) Failed() []DocumentResult {
	var out []DocumentResult
	for _, d := range r.Documents {
		if d.Err != nil {
			out = append(out, d)
		}
	}
	return out
}

// Toggler applies an Attribute rewrite to every document of a set.
type Toggler struct {
	fs   fsutil.FS
	attr Attribute
}

// New creates a Toggler for the given literals.
func New(fsys fsutil.FS, attr Attribute) *Toggler {
	return &Toggler{fs: fsys, attr: attr}
}

// Attribute returns the literals this Toggler rewrites.
func (t *Toggler) Attribute() Attribute {
	return t.attr
}

// Apply rewrites every document in set, enabling target and disabling the rest.
// Every document is attempted even if an earlier one fails; failures are
// reported per document in the result.
func (t *Toggler) Apply(set document.Set, target string) Result {
	return t.run(set, target, true)
}

// Preview computes what Apply would do without writing anything.
func (t *Toggler) Preview(set document.Set, target string) Result {
	return t.run(set, target, false)
}

func (t *Toggler) run(set document.Set, target string, write bool) Result {
	var res Result
	for _, name := range set.Names() {
		dr := DocumentResult{Name: name, Target: name == target}

		content, err := t.fs.ReadFile(set.Path(name))
		if err != nil {
			dr.Err = fmt.Errorf("reading %s: %w", name, err)
			res.Documents = append(res.Documents, dr)
			continue
		}

		rewritten, stats := t.attr.Rewrite(content, dr.Target)
		dr.Stats = stats
		res.Total.Add(stats)

		if write {
			if err := t.fs.WriteFile(set.Path(name), rewritten); err != nil {
				dr.Err = fmt.Errorf("writing %s: %w", name, err)
			}
		}
		res.Documents = append(res.Documents, dr)
	}
	return res
}
