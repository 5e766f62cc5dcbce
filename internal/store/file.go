package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// File permissions for persisted documents.
const (
	dirPermissions  = 0750
	filePermissions = 0600
)

// FileBackend stores each collection as <dir>/<collection>.json.
//
// Saves go through a temporary file in the same directory followed by a
// rename, so readers see either the previous or the new document.
type FileBackend struct {
	dir string
}

// NewFileBackend creates dir if needed and returns a backend rooted there.
func NewFileBackend(dir string) (*FileBackend, error) {
	if dir == "" {
		return nil, errors.New("file backend: directory is required")
	}
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

// Path returns the file that holds collection.
func (b *FileBackend) Path(collection string) string {
	return filepath.Join(b.dir, collection+".json")
}

// Load implements Backend.
func (b *FileBackend) Load(ctx context.Context, collection string) ([]byte, error) {
	if err := ValidateCollection(collection); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(b.Path(collection))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", collection, err)
	}
	return data, nil
}

// Save implements Backend.
func (b *FileBackend) Save(ctx context.Context, collection string, data []byte) error {
	if err := ValidateCollection(collection); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(b.dir, "."+collection+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", collection, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", collection, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing %s: %w", collection, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", collection, err)
	}
	if err := os.Chmod(tmpPath, filePermissions); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", collection, err)
	}
	if err := os.Rename(tmpPath, b.Path(collection)); err != nil {
		return fmt.Errorf("replacing %s: %w", collection, err)
	}
	return nil
}

// HealthCheck verifies the data directory still exists and is a directory.
func (b *FileBackend) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(b.dir)
	if err != nil {
		return fmt.Errorf("file backend: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("file backend: %s is not a directory", b.dir)
	}
	return nil
}
