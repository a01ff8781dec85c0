package backup

import (
	"errors"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/nvandessel/simselect/internal/document"
	"github.com/nvandessel/simselect/internal/fsutil"
)

func newTestManager(t *testing.T) (*fsutil.MemFS, *Manager, document.Set) {
	t.Helper()
	m := fsutil.NewMemFS()
	m.AddFile("/work/a.kicad_sch", "(exclude_from_sim no)\n")
	m.AddFile("/work/b.kicad_sch", "(exclude_from_sim yes)\r\n")
	set, err := document.Discover(m, "/work", ".kicad_sch")
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	mgr := NewManager(m, "/work/sim_backup", "")
	mgr.now = func() time.Time { return time.Date(2026, 2, 6, 12, 0, 0, 0, time.UTC) }
	return m, mgr, set
}

// seedGenerations creates empty generation directories with the given ids.
func seedGenerations(m *fsutil.MemFS, ids ...int) {
	for _, id := range ids {
		m.MkdirAll("/work/sim_backup/sim_backup_" + strconv.Itoa(id))
	}
}

func ids(gens []Generation) []int {
	out := make([]int, len(gens))
	for i, g := range gens {
		out[i] = g.ID
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestListGenerations_MissingRoot(t *testing.T) {
	_, mgr, _ := newTestManager(t)

	gens, err := mgr.ListGenerations()
	if err != nil {
		t.Fatalf("ListGenerations() error = %v", err)
	}
	if len(gens) != 0 {
		t.Errorf("ListGenerations() = %v, want none", gens)
	}
}

func TestListGenerations_SortsNumericallyAndIgnoresForeign(t *testing.T) {
	m, mgr, _ := newTestManager(t)
	seedGenerations(m, 10, 2, 9)
	m.MkdirAll("/work/sim_backup/sim_backup_x")
	m.MkdirAll("/work/sim_backup/sim_backup_")
	m.MkdirAll("/work/sim_backup/sim_backup_07")
	m.MkdirAll("/work/sim_backup/other_3")
	m.MkdirAll("/work/sim_backup/sim_backup_1_old")
	m.AddFile("/work/sim_backup/sim_backup_4", "a file, not a generation")
	m.AddFile("/work/sim_backup/journal.jsonl", "{}\n")

	gens, err := mgr.ListGenerations()
	if err != nil {
		t.Fatalf("ListGenerations() error = %v", err)
	}
	if got := ids(gens); !equalInts(got, []int{2, 7, 9, 10}) {
		t.Errorf("ids = %v, want [2 7 9 10]", got)
	}
	if gens[0].Path != filepath.Join("/work/sim_backup", "sim_backup_2") {
		t.Errorf("Path = %q", gens[0].Path)
	}
}

func TestParseID(t *testing.T) {
	mgr := NewManager(fsutil.NewMemFS(), "/b", "sim_backup_")
	tests := []struct {
		name   string
		want   int
		wantOK bool
	}{
		{"sim_backup_1", 1, true},
		{"sim_backup_42", 42, true},
		{"sim_backup_0", 0, true},
		{"sim_backup_", 0, false},
		{"sim_backup_-1", 0, false},
		{"sim_backup_01", 1, true},
		{"sim_backup_007", 7, true},
		{"sim_backup_+1", 0, false},
		{"sim_backup_ 1", 0, false},
		{"sim_backup_99999999999999999999999", 0, false},
		{"sim_backup_1a", 0, false},
		{"backup_1", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := mgr.ParseID(tt.name)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseID(%q) = %d, %v; want %d, %v", tt.name, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNextID(t *testing.T) {
	tests := []struct {
		name string
		gens []Generation
		want int
	}{
		{"empty", nil, 1},
		{"one", []Generation{{ID: 1}}, 2},
		{"gap", []Generation{{ID: 3}, {ID: 7}}, 8},
		{"unsorted", []Generation{{ID: 14}, {ID: 5}}, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextID(tt.gens); got != tt.want {
				t.Errorf("NextID() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCreateGeneration_CopiesVerbatim(t *testing.T) {
	m, mgr, set := newTestManager(t)

	gen, err := mgr.CreateGeneration(set, nil, CreateOptions{RunID: "run-1", Reason: "select", Target: "a.kicad_sch"})
	if err != nil {
		t.Fatalf("CreateGeneration() error = %v", err)
	}
	if gen.ID != 1 {
		t.Errorf("ID = %d, want 1", gen.ID)
	}

	files := m.Files()
	for _, name := range set.Names() {
		src := files[set.Path(name)]
		dst := files[filepath.Join(gen.Path, name)]
		if src != dst {
			t.Errorf("%s copy = %q, want %q", name, dst, src)
		}
	}

	manifest, err := mgr.ReadManifest(gen)
	if err != nil {
		t.Fatalf("ReadManifest() error = %v", err)
	}
	if manifest.ID != 1 || manifest.RunID != "run-1" || manifest.Target != "a.kicad_sch" {
		t.Errorf("manifest = %+v", manifest)
	}
	if len(manifest.Documents) != 2 {
		t.Errorf("manifest documents = %d, want 2", len(manifest.Documents))
	}
	if !manifest.CreatedAt.Equal(time.Date(2026, 2, 6, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("CreatedAt = %v", manifest.CreatedAt)
	}
}

func TestCreateGeneration_UsesPreEvictionMax(t *testing.T) {
	m, mgr, set := newTestManager(t)
	seedGenerations(m, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14)

	existing, _ := mgr.ListGenerations()
	evicted, err := mgr.EnforceRetention(existing, CountPolicy{MaxCount: 10})
	if err != nil {
		t.Fatalf("EnforceRetention() error = %v", err)
	}
	if evicted == nil || evicted.ID != 5 {
		t.Fatalf("evicted = %v, want generation 5", evicted)
	}

	gen, err := mgr.CreateGeneration(set, existing, CreateOptions{})
	if err != nil {
		t.Fatalf("CreateGeneration() error = %v", err)
	}
	if gen.ID != 15 {
		t.Errorf("ID = %d, want 15", gen.ID)
	}

	after, _ := mgr.ListGenerations()
	want := []int{6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	if got := ids(after); !equalInts(got, want) {
		t.Errorf("surviving ids = %v, want %v", got, want)
	}
}

func TestLeadingZeroGenerations(t *testing.T) {
	m, mgr, set := newTestManager(t)
	m.MkdirAll("/work/sim_backup/sim_backup_03")
	m.AddFile("/work/sim_backup/sim_backup_03/a.kicad_sch", "old")
	m.MkdirAll("/work/sim_backup/sim_backup_012")

	existing, err := mgr.ListGenerations()
	if err != nil {
		t.Fatalf("ListGenerations() error = %v", err)
	}
	if got := ids(existing); !equalInts(got, []int{3, 12}) {
		t.Fatalf("ids = %v, want [3 12]", got)
	}

	evicted, err := mgr.EnforceRetention(existing, CountPolicy{MaxCount: 2})
	if err != nil {
		t.Fatalf("EnforceRetention() error = %v", err)
	}
	if evicted == nil || evicted.ID != 3 {
		t.Fatalf("evicted = %v, want generation 3", evicted)
	}
	if m.Exists("/work/sim_backup/sim_backup_03/a.kicad_sch") {
		t.Error("sim_backup_03 not removed")
	}

	gen, err := mgr.CreateGeneration(set, existing, CreateOptions{})
	if err != nil {
		t.Fatalf("CreateGeneration() error = %v", err)
	}
	if gen.ID != 13 || filepath.Base(gen.Path) != "sim_backup_13" {
		t.Errorf("created %d at %q, want 13 at sim_backup_13", gen.ID, gen.Path)
	}
}

func TestCreateGeneration_FailureCleansUp(t *testing.T) {
	m, mgr, set := newTestManager(t)
	boom := errors.New("no space left on device")
	m.FailWrite("/work/sim_backup/sim_backup_1/b.kicad_sch", boom)

	_, err := mgr.CreateGeneration(set, nil, CreateOptions{})
	if !errors.Is(err, boom) {
		t.Fatalf("CreateGeneration() error = %v, want %v", err, boom)
	}
	if m.Exists("/work/sim_backup/sim_backup_1") {
		t.Error("partial generation left behind")
	}
	gens, _ := mgr.ListGenerations()
	if len(gens) != 0 {
		t.Errorf("ListGenerations() = %v, want none", gens)
	}
}

func TestGet(t *testing.T) {
	m, mgr, _ := newTestManager(t)
	seedGenerations(m, 3)

	if _, err := mgr.Get(3); err != nil {
		t.Errorf("Get(3) error = %v", err)
	}
	if _, err := mgr.Get(4); !errors.Is(err, ErrGenerationNotFound) {
		t.Errorf("Get(4) error = %v, want ErrGenerationNotFound", err)
	}
}

func TestLoadDocuments(t *testing.T) {
	m, mgr, set := newTestManager(t)
	gen, err := mgr.CreateGeneration(set, nil, CreateOptions{})
	if err != nil {
		t.Fatalf("CreateGeneration() error = %v", err)
	}
	m.AddFile(filepath.Join(gen.Path, "notes.txt"), "not a schematic")

	docs, err := mgr.LoadDocuments(gen, ".kicad_sch")
	if err != nil {
		t.Fatalf("LoadDocuments() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("LoadDocuments() returned %d docs, want 2", len(docs))
	}
	if string(docs["b.kicad_sch"]) != "(exclude_from_sim yes)\r\n" {
		t.Errorf("b content = %q", docs["b.kicad_sch"])
	}
}
