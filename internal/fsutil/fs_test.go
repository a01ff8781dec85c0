package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

var (
	_ FS = (*OSFS)(nil)
	_ FS = (*MemFS)(nil)
)

// implementations runs the same behavioural checks against both collaborators.
func implementations(t *testing.T) map[string]struct {
	fsys FS
	root string
} {
	t.Helper()
	return map[string]struct {
		fsys FS
		root string
	}{
		"os":     {fsys: NewOSFS(), root: t.TempDir()},
		"memory": {fsys: NewMemFS(), root: "/work"},
	}
}

func TestFS_WriteReadList(t *testing.T) {
	for name, impl := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			if err := impl.fsys.MkdirAll(impl.root); err != nil {
				t.Fatalf("MkdirAll() error = %v", err)
			}
			if err := impl.fsys.WriteFile(filepath.Join(impl.root, "b.txt"), []byte("bb")); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			if err := impl.fsys.WriteFile(filepath.Join(impl.root, "a.txt"), []byte("a")); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			if err := impl.fsys.MkdirAll(filepath.Join(impl.root, "sub")); err != nil {
				t.Fatalf("MkdirAll() error = %v", err)
			}

			entries, err := impl.fsys.ListDir(impl.root)
			if err != nil {
				t.Fatalf("ListDir() error = %v", err)
			}
			if len(entries) != 3 {
				t.Fatalf("ListDir() returned %d entries, want 3", len(entries))
			}
			wantNames := []string{"a.txt", "b.txt", "sub"}
			for i, e := range entries {
				if e.Name != wantNames[i] {
					t.Errorf("entries[%d].Name = %q, want %q", i, e.Name, wantNames[i])
				}
			}
			if !entries[2].IsDir {
				t.Error("sub should be reported as a directory")
			}
			if entries[1].Size != 2 {
				t.Errorf("b.txt size = %d, want 2", entries[1].Size)
			}

			data, err := impl.fsys.ReadFile(filepath.Join(impl.root, "b.txt"))
			if err != nil {
				t.Fatalf("ReadFile() error = %v", err)
			}
			if string(data) != "bb" {
				t.Errorf("ReadFile() = %q, want %q", data, "bb")
			}
		})
	}
}

func TestFS_ListDirMissing(t *testing.T) {
	for name, impl := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			_, err := impl.fsys.ListDir(filepath.Join(impl.root, "nope"))
			if !errors.Is(err, fs.ErrNotExist) {
				t.Errorf("ListDir() error = %v, want fs.ErrNotExist", err)
			}
		})
	}
}

func TestFS_CopyTreeAndRemoveTree(t *testing.T) {
	for name, impl := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			src := filepath.Join(impl.root, "src")
			dst := filepath.Join(impl.root, "dst")
			if err := impl.fsys.MkdirAll(filepath.Join(src, "nested")); err != nil {
				t.Fatalf("MkdirAll() error = %v", err)
			}
			impl.fsys.WriteFile(filepath.Join(src, "one.kicad_sch"), []byte("(exclude_from_sim no)\r\n"))
			impl.fsys.WriteFile(filepath.Join(src, "nested", "two.kicad_sch"), []byte("two"))

			if err := impl.fsys.CopyTree(src, dst); err != nil {
				t.Fatalf("CopyTree() error = %v", err)
			}

			got, err := impl.fsys.ReadFile(filepath.Join(dst, "one.kicad_sch"))
			if err != nil {
				t.Fatalf("ReadFile() error = %v", err)
			}
			if string(got) != "(exclude_from_sim no)\r\n" {
				t.Errorf("copied content = %q, want byte-identical copy", got)
			}
			if _, err := impl.fsys.ReadFile(filepath.Join(dst, "nested", "two.kicad_sch")); err != nil {
				t.Errorf("nested file not copied: %v", err)
			}

			if err := impl.fsys.RemoveTree(dst); err != nil {
				t.Fatalf("RemoveTree() error = %v", err)
			}
			if _, err := impl.fsys.ListDir(dst); !errors.Is(err, fs.ErrNotExist) {
				t.Errorf("dst still listed after RemoveTree, err = %v", err)
			}
			if _, err := impl.fsys.ReadFile(filepath.Join(src, "one.kicad_sch")); err != nil {
				t.Errorf("RemoveTree(dst) touched src: %v", err)
			}
			if err := impl.fsys.RemoveTree(dst); err != nil {
				t.Errorf("RemoveTree() on missing path error = %v, want nil", err)
			}
		})
	}
}

func TestFS_CopySingleFile(t *testing.T) {
	for name, impl := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			impl.fsys.MkdirAll(impl.root)
			src := filepath.Join(impl.root, "a.kicad_sch")
			impl.fsys.WriteFile(src, []byte("abc"))

			dst := filepath.Join(impl.root, "copy.kicad_sch")
			if err := impl.fsys.CopyTree(src, dst); err != nil {
				t.Fatalf("CopyTree() error = %v", err)
			}
			got, _ := impl.fsys.ReadFile(dst)
			if string(got) != "abc" {
				t.Errorf("copy = %q, want %q", got, "abc")
			}
		})
	}
}

func TestMemFS_WriteRequiresParent(t *testing.T) {
	m := NewMemFS()
	err := m.WriteFile("/missing/dir/file.txt", []byte("x"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("WriteFile() error = %v, want fs.ErrNotExist", err)
	}
}

func TestMemFS_FailWrite(t *testing.T) {
	m := NewMemFS()
	m.AddFile("/work/a.kicad_sch", "original")
	boom := errors.New("disk full")
	m.FailWrite("/work/a.kicad_sch", boom)

	err := m.WriteFile("/work/a.kicad_sch", []byte("changed"))
	if !errors.Is(err, boom) {
		t.Fatalf("WriteFile() error = %v, want %v", err, boom)
	}
	if got := m.Files()["/work/a.kicad_sch"]; got != "original" {
		t.Errorf("content = %q, want original content kept", got)
	}

	m.FailWrite("/work/a.kicad_sch", nil)
	if err := m.WriteFile("/work/a.kicad_sch", []byte("changed")); err != nil {
		t.Errorf("WriteFile() after clearing failure error = %v", err)
	}
}

func TestOSFS_CopyKeepsPermissions(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.kicad_sch")
	if err := os.WriteFile(src, []byte("x"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	dst := filepath.Join(dir, "b.kicad_sch")
	if err := NewOSFS().CopyTree(src, dst); err != nil {
		t.Fatalf("CopyTree() error = %v", err)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("copy permissions = %o, want 0600", info.Mode().Perm())
	}
}
