package game

import "testing"

func TestRotationCellsShape(t *testing.T) {
	for kind := Kind(0); kind < NumKinds; kind++ {
		for rot := 0; rot < 4; rot++ {
			cells := RotationCells(kind, rot)
			seen := map[Cell]bool{}
			for _, c := range cells {
				if c.Col < 0 || c.Row < 0 || c.Col > 3 || c.Row > 3 {
					t.Fatalf("%v rot %d: offset %+v outside bounding box", kind, rot, c)
				}
				if seen[c] {
					t.Fatalf("%v rot %d: duplicate offset %+v", kind, rot, c)
				}
				seen[c] = true
			}
		}
	}
}

func TestRotationCellsNormalizesState(t *testing.T) {
	for kind := Kind(0); kind < NumKinds; kind++ {
		if RotationCells(kind, 4) != RotationCells(kind, 0) {
			t.Fatalf("%v: rotation 4 must wrap to 0", kind)
		}
		if RotationCells(kind, -1) != RotationCells(kind, 3) {
			t.Fatalf("%v: rotation -1 must wrap to 3", kind)
		}
	}
}

func TestDistinctRotations(t *testing.T) {
	want := map[Kind]int{
		KindI: 2,
		KindO: 1,
		KindT: 4,
		KindS: 2,
		KindZ: 2,
		KindJ: 4,
		KindL: 4,
	}
	for kind, n := range want {
		if got := DistinctRotations(kind); got != n {
			t.Fatalf("%v: expected %d distinct rotations, got %d", kind, n, got)
		}
	}
}

func TestDistinctRotationStatesDiffer(t *testing.T) {
	// Every state below the distinct count must produce a different cell set.
	for kind := Kind(0); kind < NumKinds; kind++ {
		n := DistinctRotations(kind)
		for a := 0; a < n; a++ {
			for b := a + 1; b < n; b++ {
				if normalizeOffsets(RotationCells(kind, a)) == normalizeOffsets(RotationCells(kind, b)) {
					t.Fatalf("%v: rotations %d and %d produce the same shape", kind, a, b)
				}
			}
		}
	}
}

// normalizeOffsets translates offsets so the minimum column and row are zero,
// making shapes comparable independent of origin placement.
func normalizeOffsets(cells [4]Cell) [4]Cell {
	minCol, minRow := cells[0].Col, cells[0].Row
	for _, c := range cells[1:] {
		if c.Col < minCol {
			minCol = c.Col
		}
		if c.Row < minRow {
			minRow = c.Row
		}
	}
	var out [4]Cell
	for i, c := range cells {
		out[i] = Cell{Col: c.Col - minCol, Row: c.Row - minRow}
	}
	sortCells(&out)
	return out
}

func sortCells(cells *[4]Cell) {
	for i := 1; i < len(cells); i++ {
		for j := i; j > 0; j-- {
			a, b := cells[j-1], cells[j]
			if b.Row < a.Row || (b.Row == a.Row && b.Col < a.Col) {
				cells[j-1], cells[j] = b, a
			}
		}
	}
}

func TestSpawnFitsOnEmptyBoard(t *testing.T) {
	b := NewBoard()
	for kind := Kind(0); kind < NumKinds; kind++ {
		p := Spawn(kind)
		if !b.CanPlace(p) {
			t.Fatalf("%v: spawn position does not fit on an empty board", kind)
		}
		for _, c := range p.Cells() {
			if !InBounds(c.Col, c.Row) {
				t.Fatalf("%v: spawn cell %+v out of bounds", kind, c)
			}
		}
	}
}
