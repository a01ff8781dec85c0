// Package backup keeps numbered snapshot generations of the schematic working set.
//
// Layout under the backup root:
//
//	<root>/<prefix><id>/<document>   byte-identical copy of each document
//	<root>/<prefix><id>/manifest.json
//
// Generation ids are never reused: a new id is always one more than the
// highest id present before retention ran.
package backup

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nvandessel/simselect/internal/constants"
	"github.com/nvandessel/simselect/internal/document"
	"github.com/nvandessel/simselect/internal/fsutil"
)

// ErrGenerationNotFound is returned when a requested generation id does not exist.
var ErrGenerationNotFound = errors.New("generation not found")

// Generation identifies one backup directory.
type Generation struct {
	ID   int    `json:"id"`
	Path string `json:"path"`
}

// Manager creates, lists and evicts generations under a backup root.
type Manager struct {
	fs     fsutil.FS
	root   string
	prefix string
	now    func() time.Time
}

// NewManager creates a Manager rooted at root. An empty prefix selects the default.
func NewManager(fsys fsutil.FS, root, prefix string) *Manager {
	if prefix == "" {
		prefix = constants.DefaultGenerationPrefix
	}
	return &Manager{
		fs:     fsys,
		root:   root,
		prefix: prefix,
		now:    time.Now,
	}
}

// Root returns the backup root directory.
func (m *Manager) Root() string {
	return m.root
}

// GenerationPath returns the directory of generation id.
func (m *Manager) GenerationPath(id int) string {
	return filepath.Join(m.root, m.prefix+strconv.Itoa(id))
}

// ParseID extracts the generation id from a directory name. The suffix after
// the prefix must be all decimal digits; leading zeros are allowed, so
// "sim_backup_07" is generation 7.
func (m *Manager) ParseID(name string) (int, bool) {
	suffix, ok := strings.CutPrefix(name, m.prefix)
	if !ok || suffix == "" {
		return 0, false
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, false
	}
	return id, true
}

// ListGenerations returns existing generations sorted by ascending id.
// A missing backup root yields no generations. Foreign entries are ignored.
func (m *Manager) ListGenerations() ([]Generation, error) {
	entries, err := m.fs.ListDir(m.root)
	if err != nil {
		if errors.Is(err, fsutil.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading backup directory: %w", err)
	}

	var gens []Generation
	for _, e := range entries {
		if !e.IsDir {
			continue
		}
		id, ok := m.ParseID(e.Name)
		if !ok {
			continue
		}
		gens = append(gens, Generation{ID: id, Path: filepath.Join(m.root, e.Name)})
	}

	sort.Slice(gens, func(i, j int) bool {
		if gens[i].ID != gens[j].ID {
			return gens[i].ID < gens[j].ID
		}
		return gens[i].Path < gens[j].Path
	})
	return gens, nil
}

// Get returns generation id, or ErrGenerationNotFound.
func (m *Manager) Get(id int) (Generation, error) {
	gens, err := m.ListGenerations()
	if err != nil {
		return Generation{}, err
	}
	for _, g := range gens {
		if g.ID == id {
			return g, nil
		}
	}
	return Generation{}, fmt.Errorf("%w: %d", ErrGenerationNotFound, id)
}

// NextID returns one more than the highest id in gens, or 1 when gens is empty.
func NextID(gens []Generation) int {
	highest := 0
	for _, g := range gens {
		if g.ID > highest {
			highest = g.ID
		}
	}
	return highest + 1
}

// CreateOptions annotates a new generation's manifest.
type CreateOptions struct {
	RunID  string
	Reason string
	Target string
}

// CreateGeneration copies every document of set into a new generation whose id
// is NextID(existing). existing must be the listing taken before retention ran.
// On failure the partially written generation is removed.
func (m *Manager) CreateGeneration(set document.Set, existing []Generation, opts CreateOptions) (Generation, error) {
	id := NextID(existing)
	gen := Generation{ID: id, Path: m.GenerationPath(id)}

	if err := m.fs.MkdirAll(gen.Path); err != nil {
		return Generation{}, fmt.Errorf("creating generation %d: %w", id, err)
	}

	manifest := Manifest{
		Version:   ManifestVersion,
		ID:        id,
		CreatedAt: m.now().UTC(),
		RunID:     opts.RunID,
		Reason:    opts.Reason,
		Target:    opts.Target,
	}

	for _, name := range set.Names() {
		dst := filepath.Join(gen.Path, name)
		if err := m.fs.CopyTree(set.Path(name), dst); err != nil {
			_ = m.fs.RemoveTree(gen.Path)
			return Generation{}, fmt.Errorf("copying %s into generation %d: %w", name, id, err)
		}
		// Checksum the copy, not the source, so the manifest describes what was stored.
		data, err := m.fs.ReadFile(dst)
		if err != nil {
			_ = m.fs.RemoveTree(gen.Path)
			return Generation{}, fmt.Errorf("reading back %s in generation %d: %w", name, id, err)
		}
		manifest.Documents = append(manifest.Documents, newManifestEntry(name, data))
	}

	if err := m.writeManifest(gen, &manifest); err != nil {
		_ = m.fs.RemoveTree(gen.Path)
		return Generation{}, fmt.Errorf("writing manifest for generation %d: %w", id, err)
	}

	return gen, nil
}

// LoadDocuments reads every document stored in gen whose name ends with ext.
func (m *Manager) LoadDocuments(gen Generation, ext string) (map[string][]byte, error) {
	entries, err := m.fs.ListDir(gen.Path)
	if err != nil {
		return nil, fmt.Errorf("reading generation %d: %w", gen.ID, err)
	}

	docs := make(map[string][]byte)
	for _, e := range entries {
		if e.IsDir || e.Name == constants.ManifestFileName || !strings.HasSuffix(e.Name, ext) {
			continue
		}
		data, err := m.fs.ReadFile(filepath.Join(gen.Path, e.Name))
		if err != nil {
			return nil, fmt.Errorf("reading %s from generation %d: %w", e.Name, gen.ID, err)
		}
		docs[e.Name] = data
	}
	return docs, nil
}
