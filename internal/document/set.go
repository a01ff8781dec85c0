// Package document discovers the schematic working set and validates target selections.
package document

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nvandessel/simselect/internal/fsutil"
	"github.com/nvandessel/simselect/internal/pathutil"
)

var (
	// ErrNoDocuments is returned by Discover when the working directory holds no schematic.
	ErrNoDocuments = errors.New("no documents found")

	// ErrTargetNotFound is returned by Set.Select for a name outside the set.
	ErrTargetNotFound = errors.New("target not found")
)

// Set is an immutable snapshot of the documents in a working directory,
// sorted by file name.
type Set struct {
	dir   string
	names []string
}

// NewSet builds a Set from explicit names. Names are sorted and de-duplicated.
func NewSet(dir string, names []string) Set {
	seen := make(map[string]bool, len(names))
	sorted := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			sorted = append(sorted, n)
		}
	}
	sort.Strings(sorted)
	return Set{dir: dir, names: sorted}
}

// Discover lists every regular file in dir whose name ends with ext.
// It fails with ErrNoDocuments when nothing matches.
func Discover(fsys fsutil.FS, dir, ext string) (Set, error) {
	entries, err := fsys.ListDir(dir)
	if err != nil {
		return Set{}, fmt.Errorf("reading working directory %s: %w", pathutil.RedactPath(dir), err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir || !strings.HasSuffix(e.Name, ext) {
			continue
		}
		names = append(names, e.Name)
	}
	if len(names) == 0 {
		return Set{}, fmt.Errorf("%w: no *%s files in %s", ErrNoDocuments, ext, pathutil.RedactPath(dir))
	}
	return NewSet(dir, names), nil
}

// Dir returns the working directory the set was discovered in.
func (s Set) Dir() string {
	return s.dir
}

// Names returns a copy of the document names in lexicographic order.
func (s Set) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of documents.
func (s Set) Len() int {
	return len(s.names)
}

// Path returns the on-disk path of a document in the set.
func (s Set) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Contains reports whether name is an exact member of the set.
func (s Set) Contains(name string) bool {
	i := sort.SearchStrings(s.names, name)
	return i < len(s.names) && s.names[i] == name
}

// Select validates a target name against the set. Matching is exact:
// no case folding, no trimming, no path components.
func (s Set) Select(target string) (string, error) {
	if err := pathutil.ValidateName(target); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTargetNotFound, err)
	}
	if !s.Contains(target) {
		return "", fmt.Errorf("%w: %s is not in %s", ErrTargetNotFound, target, pathutil.RedactPath(s.dir))
	}
	return target, nil
}
