// Package persist stores and restores board snapshots: the local cache
// backends, the busy-guarded Save, the autosave timer and file export/import.
package persist

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Cache.Get when nothing has been saved yet.
var ErrNotFound = errors.New("no saved board")

// Cache is the local storage backend for encoded snapshots.
type Cache interface {
	// Get returns the stored snapshot or ErrNotFound.
	Get(ctx context.Context) ([]byte, error)

	// Put replaces the stored snapshot.
	Put(ctx context.Context, data []byte) error

	io.Closer
}

// IsNotFound reports whether err means the cache holds no snapshot.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
