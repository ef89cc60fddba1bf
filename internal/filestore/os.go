package filestore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arnvid/mdlink/internal/apperr"
)

// OS implements Store over the local file system. Link targets are
// arbitrary host paths, so unlike a vault there is no root to confine to.
type OS struct{}

// NewOS creates a new OS-backed store.
func NewOS() *OS {
	return &OS{}
}

// ReadText loads the file content as-is: no BOM handling, no line-ending
// transformation. Bytes round-trip through WriteText unchanged.
func (o *OS) ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("filestore: read %s: %w", path, apperr.ErrNotFound)
		}
		return "", fmt.Errorf("filestore: read %s: %w", path, err)
	}
	return string(data), nil
}

// writeErr classifies a write failure so callers can distinguish a
// permission problem (apperr.ErrReadOnly) from any other disk error
// (apperr.ErrWriteFailed).
func writeErr(stage, path string, err error) error {
	sentinel := apperr.ErrWriteFailed
	if errors.Is(err, fs.ErrPermission) {
		sentinel = apperr.ErrReadOnly
	}
	return fmt.Errorf("filestore: %s %s: %v: %w", stage, path, err, sentinel)
}

// WriteText atomically writes content: tmp file → fsync → rename.
func (o *OS) WriteText(path string, content string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return writeErr("resolve", path, err)
	}
	dir := filepath.Dir(abs)

	tmp, err := os.CreateTemp(dir, ".mdlink-tmp-*")
	if err != nil {
		return writeErr("create temp in", dir, err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.WriteString(content); err != nil {
		return writeErr("write temp for", abs, err)
	}
	if err := tmp.Sync(); err != nil {
		return writeErr("fsync temp for", abs, err)
	}
	if err := tmp.Close(); err != nil {
		return writeErr("close temp for", abs, err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return writeErr("rename to", abs, err)
	}
	success = true
	return nil
}

// IsWritable reports whether the target can be written. An existing file
// must be openable for writing; a not-yet-existing file is writable when
// its containing directory exists and accepts new files. The read-only
// check runs before any write attempt so the user gets a specific
// message instead of a generic write error.
func (o *OS) IsWritable(path string) bool {
	if path == "" {
		return false
	}

	info, err := os.Stat(path)
	switch {
	case err == nil:
		if info.IsDir() {
			return false
		}
		f, openErr := os.OpenFile(path, os.O_WRONLY, 0)
		if openErr != nil {
			return false
		}
		_ = f.Close()
		return true

	case errors.Is(err, fs.ErrNotExist):
		dir := filepath.Dir(path)
		dirInfo, dirErr := os.Stat(dir)
		if dirErr != nil || !dirInfo.IsDir() {
			return false
		}
		// Probe with a throwaway file; permission bits alone do not
		// account for ownership or read-only mounts.
		probe, probeErr := os.CreateTemp(dir, ".mdlink-probe-*")
		if probeErr != nil {
			return false
		}
		name := probe.Name()
		_ = probe.Close()
		_ = os.Remove(name)
		return true

	default:
		return false
	}
}
