package persist

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// maxImportSize bounds how much of an import source is read.
const maxImportSize = 32 << 20

// ExportFilename returns the default export file name for the given day,
// e.g. management-board-2024-03-09.json. The date is taken in UTC.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("management-board-%s.json", now.UTC().Format("2006-01-02"))
}

// Export writes the current board as snapshot JSON.
func (a *Adapter) Export(w io.Writer) error {
	data, err := Encode(a.store.Current())
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// ExportToDir writes the current board to dir under ExportFilename(now) and
// returns the full path of the written file.
func (a *Adapter) ExportToDir(dir string, now time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	var buf bytes.Buffer
	if err := a.Export(&buf); err != nil {
		return "", err
	}

	path := filepath.Join(dir, ExportFilename(now))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// Import replaces the whole board with the snapshot read from r. When the
// snapshot fails to decode the store is left untouched and the returned error
// wraps ErrInvalidSnapshot. Import does not save; the caller decides when the
// imported board is persisted.
func (a *Adapter) Import(r io.Reader) error {
	data, err := io.ReadAll(io.LimitReader(r, maxImportSize+1))
	if err != nil {
		return fmt.Errorf("failed to read import: %w", err)
	}
	if len(data) > maxImportSize {
		return fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidSnapshot, maxImportSize)
	}

	b, err := Decode(data)
	if err != nil {
		return err
	}

	a.store.Replace(b)
	a.log.WithField("columns", len(b.Columns)).Info("Board imported")
	return nil
}

// ImportFile imports the snapshot stored at path.
func (a *Adapter) ImportFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return a.Import(f)
}
