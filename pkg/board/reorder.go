package board

import "fmt"

// MoveColumn returns a new column sequence with the column at from removed and
// reinserted at to. Both indices must be valid positions; anything else is a
// programming error and panics, like an out of range slice index.
func MoveColumn(columns []Column, from, to int) []Column {
	if from < 0 || from >= len(columns) || to < 0 || to >= len(columns) {
		panic(fmt.Sprintf("board.MoveColumn: index out of range [from=%d to=%d len=%d]", from, to, len(columns)))
	}

	moved := make([]Column, 0, len(columns))
	moved = append(moved, columns[:from]...)
	moved = append(moved, columns[from+1:]...)

	moved = append(moved, Column{})
	copy(moved[to+1:], moved[to:])
	moved[to] = columns[from]
	return moved
}

// DragResult is the completion signal of a column drag. A nil Destination
// means the drag was cancelled.
type DragResult struct {
	Source      int
	Destination *int
}

// ApplyDrag moves a column according to a drag completion. Cancelled drags
// leave the board unchanged.
func (b Board) ApplyDrag(r DragResult) Board {
	if r.Destination == nil {
		return b
	}
	b.Columns = MoveColumn(b.Columns, r.Source, *r.Destination)
	return b
}

// ValidColumnIndex reports whether i addresses a column of the board.
func (b Board) ValidColumnIndex(i int) bool {
	return i >= 0 && i < len(b.Columns)
}
