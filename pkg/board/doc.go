// Package board provides the task-board state model and the pure operations
// over it.
//
// # Overview
//
// A Board holds projects, columns and cards together with a little UI state
// (which cards are expanded, whether archived cards are shown, the selected
// project filter). Boards are values: every command returns a new Board and
// leaves its receiver untouched. Untouched columns and cards share memory with
// the previous snapshot, so commands are cheap and earlier snapshots stay
// valid for readers such as an in-flight save.
//
// # Ordering
//
// Display order is never stored. SortCards ranks cards by archived status,
// then by the index of their colour in a Palette, then by due date. The same
// comparator backs the per-column view (ColumnView) and the cross-column
// ranking (TopRanked), which returns at most TopRankLimit cards.
//
// # Usage Example
//
//	store := board.NewStore(board.Default(board.DefaultPalette))
//
//	var cardID board.ID
//	store.Apply(func(b board.Board) board.Board {
//		next, id := b.AddCard(b.Columns[0].ID, "Write release notes", board.DefaultPalette[1])
//		cardID = id
//		return next
//	})
//
//	store.Apply(func(b board.Board) board.Board {
//		return b.UpdateCardProgress(b.Columns[0].ID, cardID, 150) // clamped to 100
//	})
//
//	for _, rc := range store.Current().Top(board.DefaultPalette) {
//		fmt.Println(rc.ColumnTitle, rc.Title)
//	}
//
// # Identifiers
//
// Ids are opaque strings generated from random UUIDs. Snapshots written by
// older tools used numeric ids; those decode into their decimal string form.
package board
