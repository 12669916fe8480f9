package artifact

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteOutput writes data to path atomically. The parent directory must
// already exist; nothing is created or written otherwise.
func WriteOutput(path string, data []byte) error {
	abs, err := CheckOutput(path)
	if err != nil {
		return err
	}
	return atomicWrite(abs, data)
}

// CheckOutput resolves path and verifies its parent directory exists, so
// commands can fail before doing any work.
func CheckOutput(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	parent := filepath.Dir(abs)
	if parent == string(filepath.Separator) {
		return "", fmt.Errorf("%w: %s", ErrRootPath, path)
	}
	info, err := os.Stat(parent)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrParentMissing, parent)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotDirectory, parent)
	}
	return abs, nil
}

// Emit writes data to path when set, otherwise to w.
func Emit(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	return WriteOutput(path, data)
}

// atomicWrite writes to a temp file in the target directory and renames it.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath) //nolint:errcheck // cleanup in error path
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close() //nolint:errcheck // cleanup in error path
		return fmt.Errorf("write content: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close() //nolint:errcheck // cleanup in error path
		return fmt.Errorf("sync file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename to final: %w", err)
	}

	success = true
	return nil
}
