package selector

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/nvandessel/simselect/internal/backup"
	"github.com/nvandessel/simselect/internal/diff"
	"github.com/nvandessel/simselect/internal/fsutil"
	"github.com/nvandessel/simselect/internal/pathutil"
)

// Diff compares the documents stored in generation id with the working
// directory. With name set only that document is compared. Documents missing on
// either side are diffed against /dev/null.
func (e *Engine) Diff(id int, name string, opt diff.Options) ([]diff.Patch, error) {
	gen, err := e.backups.Get(id)
	if err != nil {
		if errors.Is(err, backup.ErrGenerationNotFound) {
			return nil, &Error{Kind: KindGenerationNotFound, Err: err}
		}
		return nil, err
	}

	stored, err := e.backups.LoadDocuments(gen, e.cfg.Documents.Extension)
	if err != nil {
		return nil, err
	}

	names := map[string]bool{}
	for n := range stored {
		names[n] = true
	}
	if set, err := e.Discover(); err == nil {
		for _, n := range set.Names() {
			names[n] = true
		}
	} else if !errors.Is(err, ErrNoDocumentsFound) {
		return nil, err
	}

	if name != "" {
		if err := pathutil.ValidateName(name); err != nil {
			return nil, &Error{Kind: KindTargetNotFound, Document: name, Err: err}
		}
		if !names[name] {
			return nil, &Error{Kind: KindTargetNotFound, Document: name, Err: fmt.Errorf("not in generation %d or working directory", id)}
		}
		names = map[string]bool{name: true}
	}

	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	genDir := filepath.Base(gen.Path)
	var patches []diff.Patch
	for _, n := range sorted {
		old, inGen := stored[n]
		cur, err := e.fs.ReadFile(filepath.Join(e.workDir, n))
		inWork := err == nil
		if err != nil && !errors.Is(err, fsutil.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", n, err)
		}

		from, to := filepath.ToSlash(filepath.Join(genDir, n)), n
		if !inGen {
			from = "/dev/null"
		}
		if !inWork {
			to = "/dev/null"
		}
		patches = append(patches, diff.Unified(n, from, to, old, cur, opt))
	}
	return patches, nil
}
