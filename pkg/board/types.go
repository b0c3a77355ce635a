package board

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ID identifies a project, column or card. Ids are unique within their kind;
// card ids are unique across the whole board.
type ID string

// NewID returns a fresh random identifier.
func NewID() ID {
	return ID(uuid.New().String())
}

// UnmarshalJSON accepts both JSON strings and JSON numbers so that snapshots
// with numeric ids keep loading.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty id")
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid id: %w", err)
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: must be a string or a number", string(data))
	}
	*id = ID(n.String())
	return nil
}

// String returns the id as a plain string.
func (id ID) String() string {
	return string(id)
}

// Project groups columns. Projects are never deleted, only renamed.
type Project struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Column is an ordered container of cards. Its position in Board.Columns is
// its display position. ProjectID is nil for unassigned columns.
type Column struct {
	ID        ID     `json:"id"`
	Title     string `json:"title"`
	ProjectID *ID    `json:"projectId,omitempty"`
	Cards     []Card `json:"cards"`
}

// Card is a single task. The stored order of cards inside a column carries no
// meaning; SortCards decides what is shown first.
type Card struct {
	ID       ID         `json:"id"`
	Title    string     `json:"title"`
	Color    string     `json:"color"`
	DueDate  *time.Time `json:"dueDate"`
	Notes    string     `json:"notes"`
	Archived bool       `json:"archived"`
	Progress int        `json:"progress"`
}

// HasProject reports whether the column is assigned to the given project.
func (c Column) HasProject(projectID ID) bool {
	return c.ProjectID != nil && *c.ProjectID == projectID
}

// Palette is an ordered list of colour values, highest priority first.
type Palette []string

// DefaultPalette is the built-in colour order, red first, amber last.
var DefaultPalette = Palette{
	"#FF5252",
	"#FF4081",
	"#7C4DFF",
	"#448AFF",
	"#64FFDA",
	"#FFD740",
}

var colorNames = map[string]string{
	"#FF5252": "red",
	"#FF4081": "pink",
	"#7C4DFF": "purple",
	"#448AFF": "blue",
	"#64FFDA": "teal",
	"#FFD740": "amber",
}

// Priority returns the index of color in the palette. Colours that are not
// part of the palette rank after all palette colours.
func (p Palette) Priority(color string) int {
	for i, c := range p {
		if c == color {
			return i
		}
	}
	return len(p)
}

// Contains reports whether color is one of the palette entries.
func (p Palette) Contains(color string) bool {
	return p.Priority(color) < len(p)
}

// ColorName returns a human name for the default palette colours and the raw
// value for anything else.
func ColorName(color string) string {
	if name, ok := colorNames[strings.ToUpper(color)]; ok {
		return name
	}
	return color
}

// ColorByName maps a human colour name ("red", "teal") to its hex value.
// Values that are not known names are returned unchanged.
func ColorByName(name string) string {
	for hex, n := range colorNames {
		if strings.EqualFold(n, name) {
			return hex
		}
	}
	return name
}
