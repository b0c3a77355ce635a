package instance

import (
	"fmt"
	"regexp"
)

const (
	// DefaultName is used when no instance name is configured.
	DefaultName = "default"

	// MaxNameLength is the maximum length for an instance name.
	MaxNameLength = 63
)

var (
	// NamePattern is the regex pattern for valid instance names.
	// Lowercase alphanumeric, hyphens allowed (but not at start/end), so the
	// name is safe inside Redis keys and file names.
	NamePattern = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)
)

// ValidateName checks if an instance name is valid.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("instance name cannot be empty")
	}

	if len(name) > MaxNameLength {
		return fmt.Errorf("instance name too long: %d characters (max: %d)", len(name), MaxNameLength)
	}

	if !NamePattern.MatchString(name) {
		return fmt.Errorf("invalid instance name '%s': must be lowercase alphanumeric with hyphens (not at start/end)", name)
	}

	return nil
}
