package game

import "math/rand"

// MoveResult reports the outcome of a state transition.
type MoveResult int

const (
	// Moved means the piece shifted and is still falling.
	Moved MoveResult = iota
	// Blocked means the move was rejected and nothing changed.
	Blocked
	// Locked means the piece came to rest and the next piece spawned.
	Locked
	// Over means the game has ended.
	Over
)

// Phase is the coarse state of a game.
type Phase int

const (
	PhaseFalling Phase = iota
	PhaseGameOver
)

// State is a full game: board, falling piece, next piece, and score. All
// randomness comes from the owned generator so two states built from the same
// seed replay identically.
type State struct {
	Board       Board
	Current     Piece
	Next        Kind
	RowsCleared int
	Phase       Phase

	rng *rand.Rand
}

// NewState creates a game on an empty board, drawing the first two pieces
// from the generator.
func NewState(rng *rand.Rand) *State {
	return &State{
		Current: Spawn(RandomKind(rng)),
		Next:    RandomKind(rng),
		rng:     rng,
	}
}

// NewStateWithPieces creates a game with fixed starting pieces; useful for
// tests. Subsequent pieces come from the generator.
func NewStateWithPieces(current, next Kind, rng *rand.Rand) *State {
	return &State{
		Current: Spawn(current),
		Next:    next,
		rng:     rng,
	}
}

// Active reports whether the game is still running.
func (s *State) Active() bool {
	return s.Phase == PhaseFalling
}

// MoveLeft shifts the falling piece one column left.
func (s *State) MoveLeft() MoveResult { return s.tryMove(-1, 0) }

// MoveRight shifts the falling piece one column right.
func (s *State) MoveRight() MoveResult { return s.tryMove(1, 0) }

// MoveDown drops the falling piece one row; a blocked downward move locks it.
func (s *State) MoveDown() MoveResult { return s.tryMove(0, -1) }

func (s *State) tryMove(dcol, drow int) MoveResult {
	if s.Phase != PhaseFalling {
		return Over
	}
	next := s.Current.Moved(dcol, drow)
	if s.Board.CanPlace(next) {
		s.Current = next
		return Moved
	}
	if drow < 0 {
		return s.lock()
	}
	return Blocked
}

// rotationKicks are the offsets tried in order when the rotated piece does
// not fit in place.
var rotationKicks = [6]Cell{{0, 0}, {-1, 0}, {1, 0}, {0, 1}, {-1, 1}, {1, 1}}

// RotateCW rotates the falling piece clockwise, trying simple wall kicks.
func (s *State) RotateCW() MoveResult { return s.tryRotate(true) }

// RotateCCW rotates the falling piece counter-clockwise, trying simple wall
// kicks.
func (s *State) RotateCCW() MoveResult { return s.tryRotate(false) }

func (s *State) tryRotate(clockwise bool) MoveResult {
	if s.Phase != PhaseFalling {
		return Over
	}
	rotated := s.Current.RotatedCCW()
	if clockwise {
		rotated = s.Current.RotatedCW()
	}
	for _, kick := range rotationKicks {
		kicked := rotated.Moved(kick.Col, kick.Row)
		if s.Board.CanPlace(kicked) {
			s.Current = kicked
			return Moved
		}
	}
	return Blocked
}

// HardDrop drops the falling piece to its resting position and locks it.
func (s *State) HardDrop() MoveResult {
	if s.Phase != PhaseFalling {
		return Over
	}
	dropped, ok := s.Board.HardDrop(s.Current)
	if !ok {
		s.Phase = PhaseGameOver
		return Over
	}
	s.Current = dropped
	return s.lock()
}

// lock commits the falling piece, clears full rows, and spawns the next
// piece. The game ends when the next piece has no room to spawn.
func (s *State) lock() MoveResult {
	s.Board.Lock(s.Current)
	s.RowsCleared += s.Board.ClearFullRows()

	next := Spawn(s.Next)
	s.Next = RandomKind(s.rng)
	if !s.Board.CanPlace(next) {
		s.Phase = PhaseGameOver
		return Over
	}
	s.Current = next
	return Locked
}
