package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dyluth/tack/pkg/board"
)

// ErrInvalidSnapshot wraps every decode failure: bad JSON, schema violations
// and broken board invariants.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Snapshot is the persisted and exchanged shape of a board. The same shape is
// used for the local cache, exported files and imported files.
type Snapshot struct {
	Projects          []board.Project   `json:"projects"`
	Columns           []snapshotColumn  `json:"columns"`
	ExpandedCards     map[board.ID]bool `json:"expandedCards"`
	ShowArchived      *bool             `json:"showArchived"`
	ShowTop10         *bool             `json:"showTop10"`
	SelectedProjectID *board.ID         `json:"selectedProjectId"`
}

type snapshotColumn struct {
	ID        board.ID       `json:"id"`
	Title     string         `json:"title"`
	ProjectID *board.ID      `json:"projectId,omitempty"`
	Cards     []snapshotCard `json:"cards"`
}

type snapshotCard struct {
	ID       board.ID `json:"id"`
	Title    string   `json:"title"`
	Color    string   `json:"color"`
	DueDate  *string  `json:"dueDate"`
	Notes    string   `json:"notes"`
	Archived bool     `json:"archived"`
	Progress float64  `json:"progress"`
}

// dueDateLayouts are tried in order when decoding a due date. Layouts without
// a zone are read in local time, which is what a browser datetime-local input
// produces.
var dueDateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Encode serialises the board as indented snapshot JSON.
func Encode(b board.Board) ([]byte, error) {
	snap := toSnapshot(b)
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

// Decode parses snapshot JSON into a board. The document is validated against
// the snapshot schema and the board invariants before anything is returned, so
// a failed decode never yields a partial board.
func Decode(data []byte) (board.Board, error) {
	if err := validateSchema(data); err != nil {
		return board.Board{}, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return board.Board{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	b, err := fromSnapshot(snap)
	if err != nil {
		return board.Board{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	if err := b.Validate(); err != nil {
		return board.Board{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	return b, nil
}

func toSnapshot(b board.Board) Snapshot {
	expanded := b.ExpandedCards
	if expanded == nil {
		expanded = map[board.ID]bool{}
	}
	projects := b.Projects
	if projects == nil {
		projects = []board.Project{}
	}

	showArchived := b.ShowArchived
	showTop10 := b.ShowTop10
	snap := Snapshot{
		Projects:          projects,
		Columns:           make([]snapshotColumn, 0, len(b.Columns)),
		ExpandedCards:     expanded,
		ShowArchived:      &showArchived,
		ShowTop10:         &showTop10,
		SelectedProjectID: b.SelectedProjectID,
	}

	for _, col := range b.Columns {
		sc := snapshotColumn{
			ID:        col.ID,
			Title:     col.Title,
			ProjectID: col.ProjectID,
			Cards:     make([]snapshotCard, 0, len(col.Cards)),
		}
		for _, card := range col.Cards {
			var due *string
			if card.DueDate != nil {
				s := card.DueDate.UTC().Format(time.RFC3339Nano)
				due = &s
			}
			sc.Cards = append(sc.Cards, snapshotCard{
				ID:       card.ID,
				Title:    card.Title,
				Color:    card.Color,
				DueDate:  due,
				Notes:    card.Notes,
				Archived: card.Archived,
				Progress: float64(card.Progress),
			})
		}
		snap.Columns = append(snap.Columns, sc)
	}

	return snap
}

func fromSnapshot(snap Snapshot) (board.Board, error) {
	b := board.New()
	if snap.Projects != nil {
		b.Projects = snap.Projects
	}
	if snap.ExpandedCards != nil {
		b.ExpandedCards = snap.ExpandedCards
	}
	if snap.ShowArchived != nil {
		b.ShowArchived = *snap.ShowArchived
	}
	if snap.ShowTop10 != nil {
		b.ShowTop10 = *snap.ShowTop10
	}
	b.SelectedProjectID = snap.SelectedProjectID

	b.Columns = make([]board.Column, 0, len(snap.Columns))
	for _, sc := range snap.Columns {
		col := board.Column{
			ID:        sc.ID,
			Title:     sc.Title,
			ProjectID: sc.ProjectID,
			Cards:     make([]board.Card, 0, len(sc.Cards)),
		}
		for _, c := range sc.Cards {
			due, err := ParseDueDate(c.DueDate)
			if err != nil {
				return board.Board{}, fmt.Errorf("card %s: %w", c.ID, err)
			}
			col.Cards = append(col.Cards, board.Card{
				ID:       c.ID,
				Title:    c.Title,
				Color:    c.Color,
				DueDate:  due,
				Notes:    c.Notes,
				Archived: c.Archived,
				Progress: board.ClampProgress(c.Progress),
			})
		}
		b.Columns = append(b.Columns, col)
	}

	return b, nil
}

// ParseDueDate reads a stored due date. Nil and empty values mean "no due
// date".
func ParseDueDate(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return &t, nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid due date %q", s)
}
