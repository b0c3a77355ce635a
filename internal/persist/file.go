package persist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileCache stores the snapshot in a single JSON file. Writes go to a
// temporary file in the same directory and are renamed into place, so a
// reader never sees a half-written snapshot.
type FileCache struct {
	path string
}

// NewFileCache returns a cache backed by the file at path. The parent
// directory is created on first write.
func NewFileCache(path string) (*FileCache, error) {
	if path == "" {
		return nil, fmt.Errorf("cache path cannot be empty")
	}
	return &FileCache{path: path}, nil
}

// Path returns the snapshot file location.
func (c *FileCache) Path() string {
	return c.path
}

// Get reads the snapshot file. A missing file is ErrNotFound.
func (c *FileCache) Get(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", c.path, err)
	}
	return data, nil
}

// Put atomically replaces the snapshot file.
func (c *FileCache) Put(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(c.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", c.path, err)
	}
	return nil
}

// Close is a no-op.
func (c *FileCache) Close() error {
	return nil
}
