package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dyluth/tack/internal/config"
)

// CheckExisting returns an error when dir already holds a tack config
// file, listing every one found.
func CheckExisting(dir string) error {
	var existingFiles []string
	for _, name := range config.DefaultFileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			existingFiles = append(existingFiles, name)
		}
	}

	if len(existingFiles) == 0 {
		return nil
	}
	return &ExistingError{Files: existingFiles}
}

// ExistingError reports config files that would be overwritten.
type ExistingError struct {
	Files []string
}

func (e *ExistingError) Error() string {
	return fmt.Sprintf("already initialized: found %s", strings.Join(e.Files, ", "))
}
