package game

// Rotation offset tables, one entry per rotation state (0 = spawn, then
// clockwise). Offsets are (col, row) from the piece origin with row 0 at the
// bottom of the bounding box. The I piece lives in a 4x4 box, the three-wide
// pieces in a 3x3 box, and O never changes shape. S and Z repeat their two
// distinct shapes at states 2 and 3.
var rotationTable = [NumKinds][4][4]Cell{
	KindI: {
		{{0, 1}, {1, 1}, {2, 1}, {3, 1}},
		{{2, 0}, {2, 1}, {2, 2}, {2, 3}},
		{{0, 2}, {1, 2}, {2, 2}, {3, 2}},
		{{1, 0}, {1, 1}, {1, 2}, {1, 3}},
	},
	KindO: {
		{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
	},
	KindT: {
		{{0, 1}, {1, 1}, {2, 1}, {1, 2}},
		{{0, 0}, {0, 1}, {0, 2}, {1, 1}},
		{{0, 1}, {1, 1}, {2, 1}, {1, 0}},
		{{1, 0}, {1, 1}, {1, 2}, {0, 1}},
	},
	KindS: {
		{{0, 1}, {1, 1}, {1, 2}, {2, 2}},
		{{0, 1}, {0, 2}, {1, 0}, {1, 1}},
		{{0, 1}, {1, 1}, {1, 2}, {2, 2}},
		{{0, 1}, {0, 2}, {1, 0}, {1, 1}},
	},
	KindZ: {
		{{0, 2}, {1, 2}, {1, 1}, {2, 1}},
		{{0, 0}, {0, 1}, {1, 1}, {1, 2}},
		{{0, 2}, {1, 2}, {1, 1}, {2, 1}},
		{{0, 0}, {0, 1}, {1, 1}, {1, 2}},
	},
	KindJ: {
		{{0, 1}, {1, 1}, {2, 1}, {0, 2}},
		{{0, 0}, {0, 1}, {0, 2}, {1, 2}},
		{{0, 1}, {1, 1}, {2, 1}, {2, 0}},
		{{0, 0}, {1, 0}, {1, 1}, {1, 2}},
	},
	KindL: {
		{{0, 1}, {1, 1}, {2, 1}, {2, 2}},
		{{0, 0}, {0, 1}, {0, 2}, {1, 0}},
		{{0, 1}, {1, 1}, {2, 1}, {0, 0}},
		{{1, 0}, {1, 1}, {1, 2}, {0, 2}},
	},
}

// distinctRotations is the number of rotation states that produce distinct
// resting placements after a hard drop. The placement enumerator only visits
// these, so duplicate shapes never compete for tie-breaks.
var distinctRotations = [NumKinds]int{
	KindI: 2,
	KindO: 1,
	KindT: 4,
	KindS: 2,
	KindZ: 2,
	KindJ: 4,
	KindL: 4,
}

// RotationCells returns the relative cell offsets of a kind at the given
// rotation state. The tables are immutable and shared.
func RotationCells(kind Kind, rot int) [4]Cell {
	return rotationTable[kind][((rot%4)+4)%4]
}

// DistinctRotations returns the number of rotation states of a kind that
// yield distinct placements.
func DistinctRotations(kind Kind) int {
	return distinctRotations[kind]
}
