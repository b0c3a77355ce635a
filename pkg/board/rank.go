package board

// TopRankLimit is the maximum number of cards in the top-ranked view.
const TopRankLimit = 10

// RankedCard is a card tagged with where it lives, so a ranked view can point
// back at the originating column.
type RankedCard struct {
	Card
	ColumnID    ID     `json:"columnId"`
	ColumnTitle string `json:"columnTitle"`
	ProjectID   *ID    `json:"projectId,omitempty"`
}

// FilterColumns keeps the columns assigned to projectID. A nil filter keeps
// every column; unassigned columns never match a non-nil filter.
func FilterColumns(columns []Column, projectID *ID) []Column {
	if projectID == nil {
		return columns
	}
	filtered := make([]Column, 0, len(columns))
	for _, col := range columns {
		if col.HasProject(*projectID) {
			filtered = append(filtered, col)
		}
	}
	return filtered
}

// Flatten lists every card of the given columns tagged with its column.
func Flatten(columns []Column) []RankedCard {
	var all []RankedCard
	for _, col := range columns {
		for _, card := range col.Cards {
			all = append(all, RankedCard{
				Card:        card,
				ColumnID:    col.ID,
				ColumnTitle: col.Title,
				ProjectID:   col.ProjectID,
			})
		}
	}
	return all
}

// TopRanked derives the cross-column ranking: cards of the columns matching
// projectID, in display order, archived cards removed regardless of any
// display toggle, truncated to TopRankLimit. Nothing is cached; every call
// recomputes from the columns it is given.
func TopRanked(columns []Column, projectID *ID, palette Palette) []RankedCard {
	sorted := sortRanked(Flatten(FilterColumns(columns, projectID)), palette)

	top := make([]RankedCard, 0, TopRankLimit)
	for _, rc := range sorted {
		if rc.Archived {
			continue
		}
		top = append(top, rc)
		if len(top) == TopRankLimit {
			break
		}
	}
	return top
}

// Top is TopRanked over the board using its selected project filter.
func (b Board) Top(palette Palette) []RankedCard {
	return TopRanked(b.Columns, b.SelectedProjectID, palette)
}
