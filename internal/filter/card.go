package filter

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/dyluth/tack/pkg/board"
)

// Criteria defines filtering criteria for cards.
// All filters are ANDed together - a card must match ALL criteria to pass.
type Criteria struct {
	TitleGlob       string     // Case-insensitive glob on the title, empty = no filter
	Text            string     // Case-insensitive substring of title or notes, empty = no filter
	Color           string     // Exact card color, empty = no filter
	DueAfter        *time.Time // Due strictly after, nil = no filter
	DueBefore       *time.Time // Due strictly before, nil = no filter
	ProjectID       *board.ID  // Column project, nil = no filter
	IncludeArchived bool       // Archived cards are skipped unless set
}

// Matches returns true if the card matches all filter criteria.
// Empty/zero criteria values are treated as "match all" for that criterion.
// A card without a due date never matches a due bound.
func (c *Criteria) Matches(rc board.RankedCard) bool {
	if rc.Archived && !c.IncludeArchived {
		return false
	}

	if c.ProjectID != nil && (rc.ProjectID == nil || *rc.ProjectID != *c.ProjectID) {
		return false
	}

	// Title filtering - glob pattern matching
	if c.TitleGlob != "" {
		matched, err := filepath.Match(strings.ToLower(c.TitleGlob), strings.ToLower(rc.Title))
		if err != nil || !matched {
			return false
		}
	}

	if c.Text != "" {
		needle := strings.ToLower(c.Text)
		if !strings.Contains(strings.ToLower(rc.Title), needle) &&
			!strings.Contains(strings.ToLower(rc.Notes), needle) {
			return false
		}
	}

	if c.Color != "" && !strings.EqualFold(rc.Color, c.Color) {
		return false
	}

	if c.DueAfter != nil || c.DueBefore != nil {
		if rc.DueDate == nil {
			return false
		}
		if c.DueAfter != nil && !rc.DueDate.After(*c.DueAfter) {
			return false
		}
		if c.DueBefore != nil && !rc.DueDate.Before(*c.DueBefore) {
			return false
		}
	}

	return true
}

// HasFilters returns true if any filters are active.
func (c *Criteria) HasFilters() bool {
	return c.TitleGlob != "" ||
		c.Text != "" ||
		c.Color != "" ||
		c.DueAfter != nil ||
		c.DueBefore != nil ||
		c.ProjectID != nil ||
		c.IncludeArchived
}

// Apply keeps the cards that match, preserving order.
func (c *Criteria) Apply(cards []board.RankedCard) []board.RankedCard {
	out := make([]board.RankedCard, 0, len(cards))
	for _, rc := range cards {
		if c.Matches(rc) {
			out = append(out, rc)
		}
	}
	return out
}
