// Package pathutil provides path validation for the working directory and its backup root.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RedactPath reduces a full path to .../<parent>/<basename> for short log and error messages.
// For example, "/home/user/project/sim_backup" becomes ".../project/sim_backup".
func RedactPath(path string) string {
	if path == "" {
		return ""
	}
	cleaned := filepath.Clean(path)
	dir := filepath.Dir(cleaned)
	base := filepath.Base(cleaned)
	parent := filepath.Base(dir)
	if parent == "." || parent == string(filepath.Separator) {
		return base
	}
	return ".../" + parent + "/" + base
}

// ValidateName checks that name is a plain file name with no directory part.
// Target selections and document names must refer to entries directly inside
// the working directory.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("name validation failed: name is empty")
	}
	if strings.ContainsRune(name, '\x00') {
		return fmt.Errorf("name validation failed: name contains null byte")
	}
	if name == "." || name == ".." {
		return fmt.Errorf("name validation failed: %q is not a file name", name)
	}
	if strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return fmt.Errorf("name validation failed: %q contains a path separator", name)
	}
	return nil
}

// ValidateWithin checks that path lies strictly below root.
// It resolves symlinks, cleans the path, and rejects traversal attempts.
// The path itself may not exist yet.
func ValidateWithin(path, root string) error {
	if path == "" {
		return fmt.Errorf("path validation failed: path is empty")
	}
	if root == "" {
		return fmt.Errorf("path validation failed: no root directory configured")
	}

	// Check for null bytes (common injection vector)
	if strings.ContainsRune(path, '\x00') {
		return fmt.Errorf("path validation failed: path contains null byte")
	}

	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("path validation failed: cannot resolve absolute path: %w", err)
	}
	resolvedPath, err := resolveExistingParent(absPath)
	if err != nil {
		return fmt.Errorf("path validation failed: cannot resolve path: %w", err)
	}

	rootAbs, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return fmt.Errorf("path validation failed: cannot resolve root: %w", err)
	}
	rootResolved, err := resolveExistingParent(rootAbs)
	if err != nil {
		return fmt.Errorf("path validation failed: cannot resolve root: %w", err)
	}

	if resolvedPath == rootResolved {
		return fmt.Errorf("path validation failed: %q is the root directory itself", RedactPath(absPath))
	}
	if !isSubpath(resolvedPath, rootResolved) {
		return fmt.Errorf("path validation failed: %q is outside %q", RedactPath(absPath), RedactPath(rootAbs))
	}
	return nil
}

// resolveExistingParent walks up the directory tree to find the deepest existing
// ancestor, resolves symlinks on it, then re-appends the non-existent tail.
func resolveExistingParent(dir string) (string, error) {
	resolved, err := filepath.EvalSymlinks(dir)
	if err == nil {
		return resolved, nil
	}

	parent := filepath.Dir(dir)
	if parent == dir {
		return "", fmt.Errorf("cannot resolve path: %s", RedactPath(dir))
	}

	resolvedParent, err := resolveExistingParent(parent)
	if err != nil {
		return "", err
	}

	return filepath.Join(resolvedParent, filepath.Base(dir)), nil
}

// isSubpath checks whether path is equal to or a subdirectory of base.
func isSubpath(path, base string) bool {
	if path == base {
		return true
	}
	// Ensure base ends with separator so "/tmp/foo" doesn't match "/tmp/foobar"
	prefix := base
	if !strings.HasSuffix(prefix, string(os.PathSeparator)) {
		prefix += string(os.PathSeparator)
	}
	return strings.HasPrefix(path, prefix)
}
