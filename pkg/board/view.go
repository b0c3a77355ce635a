package board

// ColumnView returns the cards of one column in display order. Archived cards
// are dropped unless showArchived is set.
func ColumnView(col Column, palette Palette, showArchived bool) []Card {
	sorted := SortCards(col.Cards, palette)
	if showArchived {
		return sorted
	}

	visible := make([]Card, 0, len(sorted))
	for _, card := range sorted {
		if !card.Archived {
			visible = append(visible, card)
		}
	}
	return visible
}

// VisibleColumns returns the columns shown under the board's project filter.
func (b Board) VisibleColumns() []Column {
	return FilterColumns(b.Columns, b.SelectedProjectID)
}

// CardsInView is ColumnView using the board's own show-archived toggle.
func (b Board) CardsInView(col Column, palette Palette) []Card {
	return ColumnView(col, palette, b.ShowArchived)
}
