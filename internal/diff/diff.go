// Package diff renders unified diffs between a stored generation copy and
// the current document. It uses github.com/pmezard/go-difflib/difflib for the
// classic ---/+++ headers and @@ hunks.
package diff

import (
	"fmt"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
)

// DefaultContext is the number of context lines around each hunk.
const DefaultContext = 3

// Options controls patch generation behavior.
type Options struct {
	// Context is the number of context lines in unified hunks.
	// If 0, DefaultContext is used.
	Context int

	// MaxBytes is a guardrail on input size (old+new). When exceeded,
	// a placeholder patch is returned. 0 means no limit.
	MaxBytes int
}

// Patch is the diff of one document.
type Patch struct {
	Name    string `json:"name"`
	Body    string `json:"patch,omitempty"`
	Added   int    `json:"added"`
	Removed int    `json:"removed"`
	// Oversize is set when Body is a placeholder because of Options.MaxBytes.
	Oversize bool `json:"oversize,omitempty"`
}

// Changed reports whether the two sides differ.
func (p Patch) Changed() bool {
	return p.Added > 0 || p.Removed > 0 || p.Oversize
}

// Unified produces a unified patch from a to b. An empty Body means the
// contents are identical.
func Unified(name, aName, bName string, a, b []byte, opt Options) Patch {
	p := Patch{Name: name}
	if opt.MaxBytes > 0 && len(a)+len(b) > opt.MaxBytes {
		p.Body = omitted(aName, bName)
		p.Oversize = true
		return p
	}
	if string(a) == string(b) {
		return p
	}

	ctx := opt.Context
	if ctx <= 0 {
		ctx = DefaultContext
	}

	u := difflib.UnifiedDiff{
		A:        splitLinesKeepNL(string(a)),
		B:        splitLinesKeepNL(string(b)),
		FromFile: aName,
		ToFile:   bName,
		Context:  ctx,
	}
	body, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		p.Body = omitted(aName, bName)
		return p
	}

	p.Body = body
	p.Added, p.Removed = count(body)
	return p
}

// splitLinesKeepNL splits s into lines that keep their "\n".
// A final line without a newline is kept as is.
func splitLinesKeepNL(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func count(body string) (added, removed int) {
	for _, line := range strings.Split(body, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}
	return added, removed
}

func omitted(aName, bName string) string {
	return fmt.Sprintf("--- %s\n+++ %s\n@@\n# diff omitted (oversize)\n", aName, bName)
}
