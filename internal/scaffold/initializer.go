// Package scaffold writes a starter tack configuration file.
package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/tack/internal/config"
)

//go:embed templates/*
var templatesFS embed.FS

// Supported config formats
const (
	FormatYAML = "yml"
	FormatTOML = "toml"
)

// FileName returns the config file name for a format.
func FileName(format string) (string, error) {
	switch format {
	case FormatYAML, "yaml", "":
		return "tack.yml", nil
	case FormatTOML:
		return "tack.toml", nil
	default:
		return "", fmt.Errorf("unsupported format: %s (must be '%s' or '%s')", format, FormatYAML, FormatTOML)
	}
}

// Initialize writes the starter config for format into dir and returns its
// path. If force is true an existing config is replaced.
func Initialize(dir, format string, force bool) (string, error) {
	name, err := FileName(format)
	if err != nil {
		return "", err
	}

	if !force {
		if err := CheckExisting(dir); err != nil {
			return "", err
		}
	}

	content, err := templatesFS.ReadFile("templates/" + name + ".tmpl")
	if err != nil {
		return "", fmt.Errorf("failed to read %s template: %w", name, err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	// The template must load like any user file.
	if _, err := config.Load(path); err != nil {
		return "", fmt.Errorf("created %s is invalid: %w", name, err)
	}
	return path, nil
}
