// Package feature holds the sixteen board heuristics used by the placement
// policy. The index order is a contract shared with the weight vector and the
// persisted weights file: changing it silently invalidates every trained
// vector.
package feature

import "tetrion/internal/game"

// Count is the number of board heuristics.
const Count = 16

// Func maps a board to a scalar heuristic value.
type Func func(*game.Board) float64

// Feature indices, in contract order.
const (
	PileHeight = iota
	Holes
	ConnectedHoles
	AltitudeDifference
	MaxWellDepth
	SumOfWellDepths
	TotalBlocks
	WeightedBlocks
	RowTransitions
	ColumnTransitions
	HighestHole
	BlocksAboveHighestHole
	PotentialRows
	Smoothness
	RowHoles
	HoleDepth
)

// Names maps feature index to a stable display name.
var Names = [Count]string{
	"pile_height",
	"holes",
	"connected_holes",
	"altitude_difference",
	"max_well_depth",
	"sum_of_well_depths",
	"total_blocks",
	"weighted_blocks",
	"row_transitions",
	"column_transitions",
	"highest_hole",
	"blocks_above_highest_hole",
	"potential_rows",
	"smoothness",
	"row_holes",
	"hole_depth",
}

// Table is the fixed evaluator table, indexed by the constants above. A flat
// function table keeps the index-to-weight mapping an array lookup and the
// evaluation loop branch-free.
var Table = [Count]Func{
	PileHeight:             pileHeight,
	Holes:                  holes,
	ConnectedHoles:         connectedHoles,
	AltitudeDifference:     altitudeDifference,
	MaxWellDepth:           maxWellDepth,
	SumOfWellDepths:        sumOfWellDepths,
	TotalBlocks:            totalBlocks,
	WeightedBlocks:         weightedBlocks,
	RowTransitions:         rowTransitions,
	ColumnTransitions:      columnTransitions,
	HighestHole:            highestHole,
	BlocksAboveHighestHole: blocksAboveHighestHole,
	PotentialRows:          potentialRows,
	Smoothness:             smoothness,
	RowHoles:               rowHoles,
	HoleDepth:              holeDepth,
}

// Evaluate returns all sixteen heuristic values for the board.
func Evaluate(b *game.Board) [Count]float64 {
	var out [Count]float64
	for i, fn := range Table {
		out[i] = fn(b)
	}
	return out
}

// pileHeight is the height of the tallest occupied column.
func pileHeight(b *game.Board) float64 {
	max := 0
	for col := 0; col < game.BoardWidth; col++ {
		if h := b.ColumnHeight(col); h > max {
			max = h
		}
	}
	return float64(max)
}

// holes counts empty cells with at least one occupied cell above them in the
// same column.
func holes(b *game.Board) float64 {
	n := 0
	for col := 0; col < game.BoardWidth; col++ {
		filledAbove := 0
		for row := game.BoardHeight - 1; row >= 0; row-- {
			if b.Cell(col, row) {
				filledAbove++
			} else if filledAbove > 0 {
				n++
			}
		}
	}
	return float64(n)
}

// connectedHoles counts maximal vertical runs of holes: adjacent hole cells
// in a column count once.
func connectedHoles(b *game.Board) float64 {
	n := 0
	for col := 0; col < game.BoardWidth; col++ {
		top := b.ColumnHeight(col) - 1
		inHole := false
		for row := top - 1; row >= 0; row-- {
			if b.Cell(col, row) {
				inHole = false
			} else if !inHole {
				n++
				inHole = true
			}
		}
	}
	return float64(n)
}

// altitudeDifference is the tallest column height minus the shortest.
func altitudeDifference(b *game.Board) float64 {
	min, max := game.BoardHeight, 0
	for col := 0; col < game.BoardWidth; col++ {
		h := b.ColumnHeight(col)
		if h < min {
			min = h
		}
		if h > max {
			max = h
		}
	}
	return float64(max - min)
}

// wellDepth counts the open cells of a column that sit below both neighboring
// columns' surfaces: empty, nothing occupied above in the same column, and
// both horizontal neighbors occupied at that row. Board edges count as
// occupied neighbors.
func wellDepth(b *game.Board, col int) int {
	depth := 0
	for row := 0; row < game.BoardHeight; row++ {
		if b.Cell(col, row) || b.FilledAbove(col, row) {
			continue
		}
		left := col == 0 || b.Cell(col-1, row)
		right := col == game.BoardWidth-1 || b.Cell(col+1, row)
		if left && right {
			depth++
		}
	}
	return depth
}

func maxWellDepth(b *game.Board) float64 {
	max := 0
	for col := 0; col < game.BoardWidth; col++ {
		if d := wellDepth(b, col); d > max {
			max = d
		}
	}
	return float64(max)
}

func sumOfWellDepths(b *game.Board) float64 {
	sum := 0
	for col := 0; col < game.BoardWidth; col++ {
		sum += wellDepth(b, col)
	}
	return float64(sum)
}

func totalBlocks(b *game.Board) float64 {
	return float64(b.CellCount())
}

// weightedBlocks sums occupied cells weighted by 1-indexed row from the
// bottom, so high stacks cost more than flat ones.
func weightedBlocks(b *game.Board) float64 {
	sum := 0
	for row := 0; row < game.BoardHeight; row++ {
		for col := 0; col < game.BoardWidth; col++ {
			if b.Cell(col, row) {
				sum += row + 1
			}
		}
	}
	return float64(sum)
}

// rowTransitions counts occupied/empty changes scanning each row from the
// left wall to the right wall, both walls occupied. An empty board scores
// 2 per row.
func rowTransitions(b *game.Board) float64 {
	n := 0
	for row := 0; row < game.BoardHeight; row++ {
		if !b.Cell(0, row) {
			n++
		}
		for col := 0; col < game.BoardWidth-1; col++ {
			if b.Cell(col, row) != b.Cell(col+1, row) {
				n++
			}
		}
		if !b.Cell(game.BoardWidth-1, row) {
			n++
		}
	}
	return float64(n)
}

// columnTransitions counts occupied/empty changes scanning each column from
// the floor up. The floor counts as occupied and the ceiling as empty, so an
// occupied top cell contributes one extra transition.
func columnTransitions(b *game.Board) float64 {
	n := 0
	for col := 0; col < game.BoardWidth; col++ {
		if !b.Cell(col, 0) {
			n++
		}
		for row := 0; row < game.BoardHeight-1; row++ {
			if b.Cell(col, row) != b.Cell(col, row+1) {
				n++
			}
		}
		if b.Cell(col, game.BoardHeight-1) {
			n++
		}
	}
	return float64(n)
}

// highestHole is the 1-indexed row of the topmost hole, 0 when the board has
// none.
func highestHole(b *game.Board) float64 {
	row, ok := b.HighestHoleRow()
	if !ok {
		return 0
	}
	return float64(row + 1)
}

// blocksAboveHighestHole counts occupied cells strictly above the topmost
// hole's row, across all columns.
func blocksAboveHighestHole(b *game.Board) float64 {
	holeRow, ok := b.HighestHoleRow()
	if !ok {
		return 0
	}
	n := 0
	for row := holeRow + 1; row < game.BoardHeight; row++ {
		for col := 0; col < game.BoardWidth; col++ {
			if b.Cell(col, row) {
				n++
			}
		}
	}
	return float64(n)
}

// potentialRows counts rows missing exactly one cell to be full.
func potentialRows(b *game.Board) float64 {
	n := 0
	for row := 0; row < game.BoardHeight; row++ {
		filled := 0
		for col := 0; col < game.BoardWidth; col++ {
			if b.Cell(col, row) {
				filled++
			}
		}
		if filled == game.BoardWidth-1 {
			n++
		}
	}
	return float64(n)
}

// smoothness sums the absolute height differences of adjacent columns.
func smoothness(b *game.Board) float64 {
	sum := 0
	prev := b.ColumnHeight(0)
	for col := 1; col < game.BoardWidth; col++ {
		h := b.ColumnHeight(col)
		d := h - prev
		if d < 0 {
			d = -d
		}
		sum += d
		prev = h
	}
	return float64(sum)
}

// rowHoles counts rows containing at least one hole.
func rowHoles(b *game.Board) float64 {
	n := 0
	for row := 0; row < game.BoardHeight-1; row++ {
		for col := 0; col < game.BoardWidth; col++ {
			if !b.Cell(col, row) && b.FilledAbove(col, row) {
				n++
				break
			}
		}
	}
	return float64(n)
}

// holeDepth sums, over all holes, the occupied cells covering each hole in
// its column.
func holeDepth(b *game.Board) float64 {
	sum := 0
	for col := 0; col < game.BoardWidth; col++ {
		filledAbove := 0
		for row := game.BoardHeight - 1; row >= 0; row-- {
			if b.Cell(col, row) {
				filledAbove++
			} else if filledAbove > 0 {
				sum += filledAbove
			}
		}
	}
	return float64(sum)
}
