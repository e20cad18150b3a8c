// Package fs provides file-based storage: JSON Lines page output, id lists
// and the API key profile file.
package fs

import (
	"fmt"
	"os"
	"path/filepath"
)

// AtomicFile is written to a temporary file in the target directory and
// renamed over the target on Commit, so readers never see a partial file.
type AtomicFile struct {
	path    string
	tmpPath string
	file    *os.File
}

// CreateAtomic starts an atomic write of path.
func CreateAtomic(path string) (*AtomicFile, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	return &AtomicFile{path: path, tmpPath: tmp.Name(), file: tmp}, nil
}

// Write writes to the temporary file.
func (f *AtomicFile) Write(p []byte) (int, error) {
	return f.file.Write(p)
}

// Commit syncs the temporary file and renames it over the target.
func (f *AtomicFile) Commit() error {
	if err := f.file.Sync(); err != nil {
		_ = f.Abort()
		return fmt.Errorf("sync: %w", err)
	}
	if err := f.file.Close(); err != nil {
		_ = os.Remove(f.tmpPath)
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(f.tmpPath, f.path); err != nil {
		_ = os.Remove(f.tmpPath)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// Abort discards the temporary file.
func (f *AtomicFile) Abort() error {
	_ = f.file.Close()
	return os.Remove(f.tmpPath)
}
