// Package policy turns a board, an incoming piece, and a weight vector into
// a placement decision: enumerate every legal resting position, score the
// board each one produces, and pick the maximum.
package policy

import (
	"tetrion/internal/feature"
	"tetrion/internal/game"
	"tetrion/internal/weights"
)

// Enumerate returns every legal resting placement for the piece kind on the
// board, ordered by rotation index then origin column. For each (rotation,
// column) pair the piece starts at the highest in-bounds row and hard-drops;
// a pair whose start position already overlaps is excluded. Enumerate never
// mutates the board and is safe to call concurrently on board snapshots.
func Enumerate(b *game.Board, kind game.Kind) []game.Piece {
	placements := make([]game.Piece, 0, 4*game.BoardWidth)
	for rot := 0; rot < game.DistinctRotations(kind); rot++ {
		offsets := game.RotationCells(kind, rot)
		minCol, maxCol := offsets[0].Col, offsets[0].Col
		maxRow := offsets[0].Row
		for _, o := range offsets[1:] {
			if o.Col < minCol {
				minCol = o.Col
			}
			if o.Col > maxCol {
				maxCol = o.Col
			}
			if o.Row > maxRow {
				maxRow = o.Row
			}
		}
		spawnRow := game.BoardHeight - 1 - maxRow
		for col := -minCol; col <= game.BoardWidth-1-maxCol; col++ {
			p := game.Piece{Kind: kind, Rot: rot, Col: col, Row: spawnRow}
			rested, ok := b.HardDrop(p)
			if !ok {
				continue
			}
			placements = append(placements, rested)
		}
	}
	return placements
}

// Score is the linear board value V(b) = sum of weight[i] * feature[i](b).
func Score(b *game.Board, w weights.Vector) float64 {
	score := 0.0
	for i, fn := range feature.Table {
		score += w[i] * fn(b)
	}
	return score
}

// Best returns the placement whose resulting board (piece locked, rows not
// yet cleared) maximizes Score, or false when the piece has no legal
// placement. Ties are broken deterministically by enumeration order: lowest
// rotation index, then lowest column.
func Best(b *game.Board, kind game.Kind, w weights.Vector) (game.Piece, bool) {
	var best game.Piece
	bestScore := 0.0
	found := false
	for _, p := range Enumerate(b, kind) {
		after := b.WithPiece(p)
		score := Score(&after, w)
		if !found || score > bestScore {
			best = p
			bestScore = score
			found = true
		}
	}
	return best, found
}
