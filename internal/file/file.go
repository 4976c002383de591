package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const appDirPerm os.FileMode = 0o750

// EnsureDir creates the directory if it does not exist.
func EnsureDir(dirPath string) error {
	if dirPath == "" {
		return errors.New("empty dir path")
	}
	if err := os.MkdirAll(dirPath, appDirPerm); err != nil { //nolint:gosec // app-owned cache dir
		return fmt.Errorf("ensure dir: %w", err)
	}
	return nil
}

// CreateTemp opens a new temporary file in dir. Pair it with Replace so
// readers of the final name never observe a partial write.
func CreateTemp(dir string) (*os.File, error) {
	tempFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("create temp: %w", err)
	}
	return tempFile, nil
}

// Replace moves tmpName over filename.
func Replace(tmpName, filename string) error {
	if err := os.Rename(tmpName, filename); err == nil {
		return nil
	}
	// remove existing file to avoid permission issues on Windows
	if info, err := os.Stat(filename); err == nil && info.Mode().IsRegular() {
		_ = os.Remove(filename)
	}
	if err := os.Rename(tmpName, filename); err != nil {
		return fmt.Errorf("rename temp: %w", err)
	}
	return nil
}

// WriteJSONAtomic marshals the value and atomically writes it to filename.
// The write is performed via a temporary file in the same directory
// followed by a rename to ensure atomicity on most filesystems.
func WriteJSONAtomic(filename string, v any) error {
	if filename == "" {
		return errors.New("empty filename")
	}

	dir := filepath.Dir(filename)
	if err := EnsureDir(dir); err != nil {
		return err
	}

	tempFile, err := CreateTemp(dir)
	if err != nil {
		return err
	}
	tmpName := tempFile.Name()

	enc := json.NewEncoder(tempFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("encode json: %w", err)
	}

	// ensure data hits disk
	if err := tempFile.Sync(); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp: %w", err)
	}

	if err := Replace(tmpName, filename); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
