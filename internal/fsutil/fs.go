// Package fsutil provides the filesystem collaborator used by discovery,
// backups and the attribute toggler. All disk access in simselect goes through
// the FS interface so tests can substitute the in-memory implementation.
package fsutil

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrNotExist is wrapped by every implementation when a path is missing.
var ErrNotExist = fs.ErrNotExist

// Entry describes one child of a directory.
type Entry struct {
	Name  string
	IsDir bool
	Size  int64
}

// FS is the set of filesystem operations simselect needs.
type FS interface {
	// ListDir returns the immediate children of dir sorted by name.
	// A missing dir yields an error wrapping fs.ErrNotExist.
	ListDir(dir string) ([]Entry, error)

	// ReadFile returns the full content of a file.
	ReadFile(path string) ([]byte, error)

	// WriteFile replaces the content of path, creating it if needed.
	// The parent directory must exist.
	WriteFile(path string, data []byte) error

	// MkdirAll creates dir and any missing parents.
	MkdirAll(dir string) error

	// CopyTree copies a file or a directory tree from src to dst byte for byte.
	CopyTree(src, dst string) error

	// RemoveTree removes path and everything below it. Missing paths are not an error.
	RemoveTree(path string) error
}

// OSFS implements FS on the real filesystem.
type OSFS struct{}

// NewOSFS returns the real filesystem collaborator.
func NewOSFS() *OSFS {
	return &OSFS{}
}

// ListDir reads dir with os.ReadDir, which already sorts by name.
func (OSFS) ListDir(dir string) ([]Entry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		entry := Entry{Name: e.Name(), IsDir: e.IsDir()}
		if !e.IsDir() {
			if info, err := e.Info(); err == nil {
				entry.Size = info.Size()
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

// ReadFile reads path from disk.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile truncates and rewrites path. Existing permissions are kept;
// new files are created 0644.
func (OSFS) WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}

// MkdirAll creates dir with 0755 permissions.
func (OSFS) MkdirAll(dir string) error {
	return os.MkdirAll(dir, 0755)
}

// CopyTree copies src to dst. Regular files keep their permission bits.
func (o OSFS) CopyTree(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return copyFile(src, dst, info.Mode().Perm())
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if !d.Type().IsRegular() {
			return fmt.Errorf("cannot copy %s: not a regular file", path)
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		return copyFile(path, target, fi.Mode().Perm())
	})
}

// RemoveTree removes path recursively.
func (OSFS) RemoveTree(path string) error {
	return os.RemoveAll(path)
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	// Backups must be durable before any document is rewritten.
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
