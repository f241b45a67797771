// Package fileutil provides small filesystem helpers shared by the transfer
// worker and the HTTP file server.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsafeName is returned by SafeJoin for names that would escape the base
// directory.
var ErrUnsafeName = errors.New("unsafe file name")

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New("empty directory path")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}

// SafeJoin joins a stored file name onto the base directory, rejecting names
// that contain path separators or parent references. Served file names are
// single path segments; anything else is a traversal attempt.
func SafeJoin(baseDir, name string) (string, error) {
	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrUnsafeName, name)
	}
	if strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeName, name)
	}
	return filepath.Join(baseDir, name), nil
}

// FileExists reports whether path names an existing regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
