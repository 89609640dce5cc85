package game

import (
	"fmt"
	"strings"
)

// Board dimensions are fixed for the standard playfield.
const (
	BoardWidth  = 10
	BoardHeight = 20
)

// Board is the 10x20 playfield. Row 0 is the bottom row, column 0 the left
// column. A Board is a value type: copying it snapshots the grid, which is
// what the placement search relies on for lock-free parallel evaluation.
type Board struct {
	cells [BoardHeight][BoardWidth]bool
}

// NewBoard returns an empty board.
func NewBoard() Board {
	return Board{}
}

// BoardFromRows builds a board from textual rows, top row first. '#' marks an
// occupied cell, anything else is empty. Rows shorter than the board width are
// padded with empty cells; missing rows stay empty.
func BoardFromRows(rows []string) (Board, error) {
	if len(rows) > BoardHeight {
		return Board{}, fmt.Errorf("board rows: got %d, max %d", len(rows), BoardHeight)
	}
	var b Board
	for i, row := range rows {
		if len(row) > BoardWidth {
			return Board{}, fmt.Errorf("board row %d: got %d cells, max %d", i, len(row), BoardWidth)
		}
		r := len(rows) - 1 - i
		for c := 0; c < len(row); c++ {
			b.cells[r][c] = row[c] == '#'
		}
	}
	return b, nil
}

// Cell reports whether the cell at (col, row) is occupied. Out-of-bounds
// positions count as occupied, so collision checks need no separate bounds
// test.
func (b *Board) Cell(col, row int) bool {
	if col < 0 || col >= BoardWidth || row < 0 || row >= BoardHeight {
		return true
	}
	return b.cells[row][col]
}

// InBounds reports whether (col, row) lies inside the playfield.
func InBounds(col, row int) bool {
	return col >= 0 && col < BoardWidth && row >= 0 && row < BoardHeight
}

// Set marks or clears a single cell. Out-of-bounds positions are ignored.
// Intended for tests and board construction, not the game loop.
func (b *Board) Set(col, row int, occupied bool) {
	if !InBounds(col, row) {
		return
	}
	b.cells[row][col] = occupied
}

// ColumnHeight returns the number of rows from the bottom up to and including
// the highest occupied cell of the column, or 0 for an empty column.
func (b *Board) ColumnHeight(col int) int {
	for row := BoardHeight - 1; row >= 0; row-- {
		if b.cells[row][col] {
			return row + 1
		}
	}
	return 0
}

// CanPlace reports whether every cell of the piece is in bounds and empty.
func (b *Board) CanPlace(p Piece) bool {
	for _, c := range p.Cells() {
		if b.Cell(c.Col, c.Row) {
			return false
		}
	}
	return true
}

// Lock marks the piece's cells occupied. Locking over an occupied or
// out-of-bounds cell is a contract violation: callers must have verified the
// placement with CanPlace, so Lock panics instead of returning an error.
func (b *Board) Lock(p Piece) {
	for _, c := range p.Cells() {
		if !InBounds(c.Col, c.Row) || b.cells[c.Row][c.Col] {
			panic(fmt.Sprintf("game: lock over occupied cell (%d,%d) for %v", c.Col, c.Row, p.Kind))
		}
		b.cells[c.Row][c.Col] = true
	}
}

// WithPiece returns a copy of the board with the piece locked.
func (b *Board) WithPiece(p Piece) Board {
	next := *b
	next.Lock(p)
	return next
}

// RowFull reports whether every cell of the row is occupied.
func (b *Board) RowFull(row int) bool {
	for col := 0; col < BoardWidth; col++ {
		if !b.cells[row][col] {
			return false
		}
	}
	return true
}

// ClearFullRows removes all full rows, shifts the rows above them down, and
// returns the number of rows cleared. New empty rows appear at the top.
func (b *Board) ClearFullRows() int {
	cleared := 0
	for row := BoardHeight - 1; row >= 0; row-- {
		if !b.RowFull(row) {
			continue
		}
		for r := row; r < BoardHeight-1; r++ {
			b.cells[r] = b.cells[r+1]
		}
		b.cells[BoardHeight-1] = [BoardWidth]bool{}
		cleared++
	}
	return cleared
}

// HardDrop moves the piece straight down to its resting position and returns
// it, or false if the piece does not fit at its current position at all.
func (b *Board) HardDrop(p Piece) (Piece, bool) {
	if !b.CanPlace(p) {
		return Piece{}, false
	}
	for b.CanPlace(p.Moved(0, -1)) {
		p = p.Moved(0, -1)
	}
	return p, true
}

// FilledAbove reports whether the column has at least one occupied cell
// strictly above the given row.
func (b *Board) FilledAbove(col, row int) bool {
	for r := row + 1; r < BoardHeight; r++ {
		if b.cells[r][col] {
			return true
		}
	}
	return false
}

// HighestHoleRow returns the row index of the topmost hole (an empty cell
// with at least one occupied cell above it in the same column), and false if
// the board has no holes.
func (b *Board) HighestHoleRow() (int, bool) {
	for row := BoardHeight - 2; row >= 0; row-- {
		for col := 0; col < BoardWidth; col++ {
			if !b.cells[row][col] && b.FilledAbove(col, row) {
				return row, true
			}
		}
	}
	return 0, false
}

// CellCount returns the number of occupied cells.
func (b *Board) CellCount() int {
	n := 0
	for row := 0; row < BoardHeight; row++ {
		for col := 0; col < BoardWidth; col++ {
			if b.cells[row][col] {
				n++
			}
		}
	}
	return n
}

// Empty reports whether no cell is occupied.
func (b *Board) Empty() bool {
	return b.CellCount() == 0
}

// String renders the board top row first, '#' for occupied and '.' for empty.
func (b *Board) String() string {
	var sb strings.Builder
	for row := BoardHeight - 1; row >= 0; row-- {
		for col := 0; col < BoardWidth; col++ {
			if b.cells[row][col] {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		if row > 0 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
