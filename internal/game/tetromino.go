package game

import "math/rand"

// Kind identifies one of the seven tetrominoes.
type Kind int

const (
	KindI Kind = iota
	KindO
	KindT
	KindS
	KindZ
	KindJ
	KindL

	// NumKinds is the number of tetromino kinds.
	NumKinds = 7
)

var kindNames = [NumKinds]string{"I", "O", "T", "S", "Z", "J", "L"}

func (k Kind) String() string {
	if k < 0 || int(k) >= NumKinds {
		return "?"
	}
	return kindNames[k]
}

// RandomKind draws a kind uniformly from the given generator. Independent
// draws, no bag fairness scheme: uniform randomness keeps games analytically
// tractable and reproducible per seed.
func RandomKind(rng *rand.Rand) Kind {
	return Kind(rng.Intn(NumKinds))
}

// Cell is a (column, row) grid position. As a piece-relative offset, row 0 is
// the bottom of the piece's bounding box.
type Cell struct {
	Col, Row int
}

// Piece is a tetromino with a rotation state and an origin position.
// The origin may briefly leave the playfield while maneuvering; only the
// occupied cells reported by Cells matter for legality.
type Piece struct {
	Kind Kind
	Rot  int
	Col  int
	Row  int
}

// Spawn returns the piece at its spawn position: horizontally centered, with
// all cells inside the top of the playfield.
func Spawn(kind Kind) Piece {
	col, row := spawnPosition(kind)
	return Piece{Kind: kind, Col: col, Row: row}
}

func spawnPosition(kind Kind) (col, row int) {
	switch kind {
	case KindI:
		return 3, BoardHeight - 2
	case KindO:
		return 4, BoardHeight - 2
	default:
		return 3, BoardHeight - 3
	}
}

// Cells returns the four absolute cell positions of the piece.
func (p Piece) Cells() [4]Cell {
	offsets := RotationCells(p.Kind, p.Rot)
	var out [4]Cell
	for i, o := range offsets {
		out[i] = Cell{Col: p.Col + o.Col, Row: p.Row + o.Row}
	}
	return out
}

// Moved returns a copy of the piece shifted by the given column and row
// deltas.
func (p Piece) Moved(dcol, drow int) Piece {
	p.Col += dcol
	p.Row += drow
	return p
}

// RotatedCW returns a copy rotated one state clockwise.
func (p Piece) RotatedCW() Piece {
	p.Rot = (p.Rot + 1) % 4
	return p
}

// RotatedCCW returns a copy rotated one state counter-clockwise.
func (p Piece) RotatedCCW() Piece {
	p.Rot = (p.Rot + 3) % 4
	return p
}
