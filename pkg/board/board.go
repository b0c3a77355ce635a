package board

import (
	"fmt"
)

// NoProjectName is shown for columns without a (known) project.
const NoProjectName = "No Project"

// Board is one immutable snapshot of the whole task board.
type Board struct {
	Projects          []Project
	Columns           []Column
	ExpandedCards     map[ID]bool
	ShowArchived      bool
	ShowTop10         bool
	SelectedProjectID *ID
}

// New returns an empty board with the top-10 view enabled.
func New() Board {
	return Board{
		Projects:      []Project{},
		Columns:       []Column{},
		ExpandedCards: map[ID]bool{},
		ShowTop10:     true,
	}
}

// Default returns the first-run board: one project, one column assigned to
// it, one starter card coloured with the palette's highest priority.
func Default(palette Palette) Board {
	color := DefaultPalette[0]
	if len(palette) > 0 {
		color = palette[0]
	}

	project := Project{ID: NewID(), Name: "Default Project"}
	projectID := project.ID

	b := New()
	b.Projects = []Project{project}
	b.Columns = []Column{{
		ID:        NewID(),
		Title:     "To Do",
		ProjectID: &projectID,
		Cards:     []Card{newCard("Task 1", color)},
	}}
	return b
}

// Validate checks the structural invariants of the board: non-empty ids,
// unique ids per kind (card ids across the whole board) and progress bounds.
func (b Board) Validate() error {
	projects := make(map[ID]bool, len(b.Projects))
	for i, p := range b.Projects {
		if p.ID == "" {
			return fmt.Errorf("project %d: id is required", i)
		}
		if projects[p.ID] {
			return fmt.Errorf("duplicate project id: %s", p.ID)
		}
		projects[p.ID] = true
	}

	columns := make(map[ID]bool, len(b.Columns))
	cards := make(map[ID]ID)
	for i, col := range b.Columns {
		if col.ID == "" {
			return fmt.Errorf("column %d: id is required", i)
		}
		if columns[col.ID] {
			return fmt.Errorf("duplicate column id: %s", col.ID)
		}
		columns[col.ID] = true

		for j, card := range col.Cards {
			if card.ID == "" {
				return fmt.Errorf("column %s card %d: id is required", col.ID, j)
			}
			if owner, exists := cards[card.ID]; exists {
				return fmt.Errorf("duplicate card id %s (columns %s and %s)", card.ID, owner, col.ID)
			}
			cards[card.ID] = col.ID

			if card.Progress < 0 || card.Progress > 100 {
				return fmt.Errorf("card %s: progress %d out of range [0,100]", card.ID, card.Progress)
			}
		}
	}

	return nil
}

// Project returns the project with the given id.
func (b Board) Project(id ID) (Project, bool) {
	for _, p := range b.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

// ProjectName returns the name of the referenced project, or NoProjectName
// when the reference is nil or dangling.
func (b Board) ProjectName(id *ID) string {
	if id == nil {
		return NoProjectName
	}
	if p, ok := b.Project(*id); ok {
		return p.Name
	}
	return NoProjectName
}

// Column returns the column with the given id.
func (b Board) Column(id ID) (Column, bool) {
	if i := b.ColumnIndex(id); i >= 0 {
		return b.Columns[i], true
	}
	return Column{}, false
}

// ColumnIndex returns the position of the column, or -1.
func (b Board) ColumnIndex(id ID) int {
	for i, col := range b.Columns {
		if col.ID == id {
			return i
		}
	}
	return -1
}

// FindCard looks a card up by id anywhere on the board and returns it with
// the id of the column that owns it.
func (b Board) FindCard(id ID) (Card, ID, bool) {
	for _, col := range b.Columns {
		for _, card := range col.Cards {
			if card.ID == id {
				return card, col.ID, true
			}
		}
	}
	return Card{}, "", false
}

// CardCount returns the number of cards on the board, archived included.
func (b Board) CardCount() int {
	n := 0
	for _, col := range b.Columns {
		n += len(col.Cards)
	}
	return n
}

// IsExpanded reports whether the card's details are expanded.
func (b Board) IsExpanded(cardID ID) bool {
	return b.ExpandedCards[cardID]
}
