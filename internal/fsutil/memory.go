package fsutil

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// MemFS implements FS in memory for testing and dry runs.
type MemFS struct {
	mu         sync.RWMutex
	files      map[string][]byte
	dirs       map[string]bool
	writeFails map[string]error
}

// NewMemFS creates an empty in-memory filesystem containing only the root directories.
func NewMemFS() *MemFS {
	return &MemFS{
		files:      make(map[string][]byte),
		dirs:       map[string]bool{".": true, string(filepath.Separator): true},
		writeFails: make(map[string]error),
	}
}

// AddFile creates path with content, creating parent directories as needed.
func (m *MemFS) AddFile(path, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	path = filepath.Clean(path)
	m.mkdirAllLocked(filepath.Dir(path))
	m.files[path] = []byte(content)
}

// FailWrite makes every later write to path fail with err. A nil err clears it.
func (m *MemFS) FailWrite(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	path = filepath.Clean(path)
	if err == nil {
		delete(m.writeFails, path)
		return
	}
	m.writeFails[path] = err
}

// Files returns a copy of all file contents keyed by path.
func (m *MemFS) Files() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string, len(m.files))
	for p, data := range m.files {
		out[p] = string(data)
	}
	return out
}

// Exists reports whether path is a file or directory.
func (m *MemFS) Exists(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	path = filepath.Clean(path)
	_, isFile := m.files[path]
	return isFile || m.dirs[path]
}

// ListDir returns the immediate children of dir sorted by name.
func (m *MemFS) ListDir(dir string) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dir = filepath.Clean(dir)
	if !m.dirs[dir] {
		return nil, &fs.PathError{Op: "readdir", Path: dir, Err: fs.ErrNotExist}
	}

	var out []Entry
	for p, data := range m.files {
		if filepath.Dir(p) == dir {
			out = append(out, Entry{Name: filepath.Base(p), Size: int64(len(data))})
		}
	}
	for p := range m.dirs {
		if p != dir && filepath.Dir(p) == dir {
			out = append(out, Entry{Name: filepath.Base(p), IsDir: true})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// ReadFile returns a copy of the content stored at path.
func (m *MemFS) ReadFile(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	path = filepath.Clean(path)
	data, ok := m.files[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// WriteFile stores data at path. The parent directory must exist.
func (m *MemFS) WriteFile(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.writeLocked(filepath.Clean(path), data)
}

// MkdirAll registers dir and its parents.
func (m *MemFS) MkdirAll(dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	dir = filepath.Clean(dir)
	if _, isFile := m.files[dir]; isFile {
		return &fs.PathError{Op: "mkdir", Path: dir, Err: fs.ErrExist}
	}
	m.mkdirAllLocked(dir)
	return nil
}

// CopyTree copies a file or directory tree from src to dst.
func (m *MemFS) CopyTree(src, dst string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	src = filepath.Clean(src)
	dst = filepath.Clean(dst)

	if data, ok := m.files[src]; ok {
		return m.writeLocked(dst, append([]byte(nil), data...))
	}
	if !m.dirs[src] {
		return &fs.PathError{Op: "copy", Path: src, Err: fs.ErrNotExist}
	}

	m.mkdirAllLocked(dst)
	prefix := src + string(filepath.Separator)

	var subdirs, files []string
	for p := range m.dirs {
		if strings.HasPrefix(p, prefix) {
			subdirs = append(subdirs, p)
		}
	}
	for p := range m.files {
		if strings.HasPrefix(p, prefix) {
			files = append(files, p)
		}
	}
	sort.Strings(subdirs)
	sort.Strings(files)

	for _, p := range subdirs {
		m.mkdirAllLocked(filepath.Join(dst, strings.TrimPrefix(p, prefix)))
	}
	for _, p := range files {
		target := filepath.Join(dst, strings.TrimPrefix(p, prefix))
		if err := m.writeLocked(target, append([]byte(nil), m.files[p]...)); err != nil {
			return err
		}
	}
	return nil
}

// RemoveTree deletes path and all descendants.
func (m *MemFS) RemoveTree(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path = filepath.Clean(path)
	prefix := path + string(filepath.Separator)

	delete(m.files, path)
	delete(m.dirs, path)
	for p := range m.files {
		if strings.HasPrefix(p, prefix) {
			delete(m.files, p)
		}
	}
	for p := range m.dirs {
		if strings.HasPrefix(p, prefix) {
			delete(m.dirs, p)
		}
	}
	return nil
}

func (m *MemFS) writeLocked(path string, data []byte) error {
	if err := m.writeFails[path]; err != nil {
		return &fs.PathError{Op: "write", Path: path, Err: err}
	}
	if m.dirs[path] {
		return &fs.PathError{Op: "write", Path: path, Err: fmt.Errorf("is a directory")}
	}
	if !m.dirs[filepath.Dir(path)] {
		return &fs.PathError{Op: "write", Path: path, Err: fs.ErrNotExist}
	}
	m.files[path] = data
	return nil
}

func (m *MemFS) mkdirAllLocked(dir string) {
	for {
		m.dirs[dir] = true
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}
