package board

import (
	"math"
	"strings"
	"time"
)

// Default titles for newly created entities.
const (
	DefaultColumnTitle = "New Column"
	DefaultCardTitle   = "New Card"
)

// Confirmation carries the caller's intent for destructive commands. The
// prompt that produces it lives with the caller; the board only checks it.
type Confirmation bool

const (
	// Confirmed authorises a destructive command.
	Confirmed Confirmation = true

	// NotConfirmed turns a destructive command into a no-op.
	NotConfirmed Confirmation = false
)

// Commands below never modify their receiver. Each one copies only the
// collection that encloses the entity it changes; unknown ids return the
// board unchanged.

// AddProject appends a project and returns its id. Blank names are ignored
// and yield an empty id.
func (b Board) AddProject(name string) (Board, ID) {
	if strings.TrimSpace(name) == "" {
		return b, ""
	}
	p := Project{ID: NewID(), Name: name}
	b.Projects = append(cloneProjects(b.Projects), p)
	return b, p.ID
}

// RenameProject renames a project in place. Blank names are ignored.
func (b Board) RenameProject(id ID, name string) Board {
	if strings.TrimSpace(name) == "" {
		return b
	}
	for i, p := range b.Projects {
		if p.ID == id {
			projects := cloneProjects(b.Projects)
			projects[i].Name = name
			b.Projects = projects
			return b
		}
	}
	return b
}

// AddColumn appends an unassigned, empty column and returns its id.
func (b Board) AddColumn(title string) (Board, ID) {
	if title == "" {
		title = DefaultColumnTitle
	}
	col := Column{ID: NewID(), Title: title, Cards: []Card{}}
	b.Columns = append(cloneColumns(b.Columns), col)
	return b, col.ID
}

// RenameColumn sets a column's title.
func (b Board) RenameColumn(id ID, title string) Board {
	return b.updateColumn(id, func(col Column) Column {
		col.Title = title
		return col
	})
}

// AssignColumnProject points a column at a project. A nil projectID makes the
// column unassigned.
func (b Board) AssignColumnProject(id ID, projectID *ID) Board {
	return b.updateColumn(id, func(col Column) Column {
		if projectID == nil {
			col.ProjectID = nil
			return col
		}
		pid := *projectID
		col.ProjectID = &pid
		return col
	})
}

// DeleteColumn removes a column together with all of its cards in one step.
// Expanded-state entries of the removed cards are dropped as well.
func (b Board) DeleteColumn(id ID, confirm Confirmation) Board {
	if !confirm {
		return b
	}
	i := b.ColumnIndex(id)
	if i < 0 {
		return b
	}

	removed := b.Columns[i]
	columns := make([]Column, 0, len(b.Columns)-1)
	columns = append(columns, b.Columns[:i]...)
	columns = append(columns, b.Columns[i+1:]...)
	b.Columns = columns

	for _, card := range removed.Cards {
		if _, ok := b.ExpandedCards[card.ID]; ok {
			b.ExpandedCards = withoutKeys(b.ExpandedCards, removed.Cards)
			break
		}
	}
	return b
}

// AddCard appends a card with default fields to a column and returns its id.
// An empty title or colour falls back to the defaults.
func (b Board) AddCard(columnID ID, title, color string) (Board, ID) {
	if b.ColumnIndex(columnID) < 0 {
		return b, ""
	}
	if title == "" {
		title = DefaultCardTitle
	}
	if color == "" {
		color = DefaultPalette[0]
	}
	card := newCard(title, color)
	b = b.updateColumn(columnID, func(col Column) Column {
		col.Cards = append(cloneCards(col.Cards), card)
		return col
	})
	return b, card.ID
}

// UpdateCardTitle sets a card's title.
func (b Board) UpdateCardTitle(columnID, cardID ID, title string) Board {
	return b.updateCard(columnID, cardID, func(c Card) Card {
		c.Title = title
		return c
	})
}

// UpdateCardColor sets a card's colour. Any value is accepted; colours that
// are not in the palette simply rank last.
func (b Board) UpdateCardColor(columnID, cardID ID, color string) Board {
	return b.updateCard(columnID, cardID, func(c Card) Card {
		c.Color = color
		return c
	})
}

// UpdateCardDueDate sets or, with nil, clears a card's due date.
func (b Board) UpdateCardDueDate(columnID, cardID ID, due *time.Time) Board {
	return b.updateCard(columnID, cardID, func(c Card) Card {
		if due == nil {
			c.DueDate = nil
			return c
		}
		d := *due
		c.DueDate = &d
		return c
	})
}

// UpdateCardNotes sets a card's notes.
func (b Board) UpdateCardNotes(columnID, cardID ID, notes string) Board {
	return b.updateCard(columnID, cardID, func(c Card) Card {
		c.Notes = notes
		return c
	})
}

// UpdateCardProgress stores ClampProgress(progress).
func (b Board) UpdateCardProgress(columnID, cardID ID, progress float64) Board {
	p := ClampProgress(progress)
	return b.updateCard(columnID, cardID, func(c Card) Card {
		c.Progress = p
		return c
	})
}

// ToggleCardArchive flips a card's archived flag.
func (b Board) ToggleCardArchive(columnID, cardID ID) Board {
	return b.updateCard(columnID, cardID, func(c Card) Card {
		c.Archived = !c.Archived
		return c
	})
}

// ArchiveCard marks a card archived. Archiving an archived card is a no-op.
func (b Board) ArchiveCard(columnID, cardID ID) Board {
	return b.updateCard(columnID, cardID, func(c Card) Card {
		c.Archived = true
		return c
	})
}

// DeleteCard permanently removes a card from its column.
func (b Board) DeleteCard(columnID, cardID ID, confirm Confirmation) Board {
	if !confirm {
		return b
	}
	ci := b.ColumnIndex(columnID)
	if ci < 0 {
		return b
	}
	col := b.Columns[ci]
	for i, card := range col.Cards {
		if card.ID != cardID {
			continue
		}
		cards := make([]Card, 0, len(col.Cards)-1)
		cards = append(cards, col.Cards[:i]...)
		cards = append(cards, col.Cards[i+1:]...)
		col.Cards = cards

		columns := cloneColumns(b.Columns)
		columns[ci] = col
		b.Columns = columns

		if _, ok := b.ExpandedCards[cardID]; ok {
			b.ExpandedCards = withoutKeys(b.ExpandedCards, []Card{card})
		}
		return b
	}
	return b
}

// ToggleExpanded flips the expanded state of one card.
func (b Board) ToggleExpanded(cardID ID) Board {
	expanded := cloneExpanded(b.ExpandedCards)
	expanded[cardID] = !expanded[cardID]
	b.ExpandedCards = expanded
	return b
}

// ExpandAll marks every card on the board expanded.
func (b Board) ExpandAll() Board {
	expanded := make(map[ID]bool, b.CardCount())
	for _, col := range b.Columns {
		for _, card := range col.Cards {
			expanded[card.ID] = true
		}
	}
	b.ExpandedCards = expanded
	return b
}

// CollapseAll clears every expanded state.
func (b Board) CollapseAll() Board {
	b.ExpandedCards = map[ID]bool{}
	return b
}

// LocateCard collapses everything except the target card, which is expanded.
func (b Board) LocateCard(cardID ID) Board {
	b.ExpandedCards = map[ID]bool{cardID: true}
	return b
}

// SetShowArchived toggles archived cards in per-column views.
func (b Board) SetShowArchived(show bool) Board {
	b.ShowArchived = show
	return b
}

// SetShowTop10 toggles the top-ranked panel.
func (b Board) SetShowTop10(show bool) Board {
	b.ShowTop10 = show
	return b
}

// SelectProject sets the project filter; nil shows all projects.
func (b Board) SelectProject(projectID *ID) Board {
	if projectID == nil {
		b.SelectedProjectID = nil
		return b
	}
	pid := *projectID
	b.SelectedProjectID = &pid
	return b
}

// ClampProgress truncates v toward zero and clamps it to [0,100]. NaN maps
// to 0.
func ClampProgress(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	v = math.Trunc(v)
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}

func newCard(title, color string) Card {
	return Card{
		ID:    NewID(),
		Title: title,
		Color: color,
	}
}

func (b Board) updateColumn(id ID, fn func(Column) Column) Board {
	i := b.ColumnIndex(id)
	if i < 0 {
		return b
	}
	columns := cloneColumns(b.Columns)
	columns[i] = fn(columns[i])
	b.Columns = columns
	return b
}

func (b Board) updateCard(columnID, cardID ID, fn func(Card) Card) Board {
	ci := b.ColumnIndex(columnID)
	if ci < 0 {
		return b
	}
	col := b.Columns[ci]
	for i, card := range col.Cards {
		if card.ID != cardID {
			continue
		}
		cards := cloneCards(col.Cards)
		cards[i] = fn(card)
		col.Cards = cards

		columns := cloneColumns(b.Columns)
		columns[ci] = col
		b.Columns = columns
		return b
	}
	return b
}

func cloneProjects(in []Project) []Project {
	out := make([]Project, len(in), len(in)+1)
	copy(out, in)
	return out
}

func cloneColumns(in []Column) []Column {
	out := make([]Column, len(in), len(in)+1)
	copy(out, in)
	return out
}

func cloneCards(in []Card) []Card {
	out := make([]Card, len(in), len(in)+1)
	copy(out, in)
	return out
}

func cloneExpanded(in map[ID]bool) map[ID]bool {
	out := make(map[ID]bool, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}

func withoutKeys(in map[ID]bool, cards []Card) map[ID]bool {
	out := cloneExpanded(in)
	for _, card := range cards {
		delete(out, card.ID)
	}
	return out
}
