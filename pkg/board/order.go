package board

import (
	"sort"
	"time"
)

// Compare orders two cards. It returns a negative number when a ranks before
// b, a positive number when b ranks before a and zero when neither key
// separates them. Keys, in order:
//
//  1. non-archived before archived
//  2. palette index of the colour (unknown colours last)
//  3. due date ascending, cards without a due date last
func Compare(a, b Card, palette Palette) int {
	if a.Archived != b.Archived {
		if a.Archived {
			return 1
		}
		return -1
	}

	if diff := palette.Priority(a.Color) - palette.Priority(b.Color); diff != 0 {
		return diff
	}

	return compareDue(a.DueDate, b.DueDate)
}

func compareDue(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case a.Before(*b):
		return -1
	case a.After(*b):
		return 1
	default:
		return 0
	}
}

// SortCards returns a new slice with the cards in display order. Equal cards
// keep their input order. The input slice is not modified.
func SortCards(cards []Card, palette Palette) []Card {
	sorted := make([]Card, len(cards))
	copy(sorted, cards)
	sort.SliceStable(sorted, func(i, j int) bool {
		return Compare(sorted[i], sorted[j], palette) < 0
	})
	return sorted
}

func sortRanked(cards []RankedCard, palette Palette) []RankedCard {
	sorted := make([]RankedCard, len(cards))
	copy(sorted, cards)
	sort.SliceStable(sorted, func(i, j int) bool {
		return Compare(sorted[i].Card, sorted[j].Card, palette) < 0
	})
	return sorted
}
