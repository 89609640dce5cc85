// Package sim runs complete scripted Tetris games for a fixed weight vector
// and turns them into fitness scores. All randomness is owned: a game draws
// its piece sequence from the generator it is given, so a (weights, seed)
// pair replays identically every time.
package sim

import (
	"math/rand"

	"tetrion/internal/game"
	"tetrion/internal/policy"
	"tetrion/internal/weights"
)

// Termination says why a game ended.
type Termination int

const (
	// TerminationBoardFull means the spawned piece had no legal placement.
	TerminationBoardFull Termination = iota
	// TerminationMoveLimit means the configured move budget ran out.
	TerminationMoveLimit
)

func (t Termination) String() string {
	switch t {
	case TerminationBoardFull:
		return "board_full"
	case TerminationMoveLimit:
		return "move_limit"
	default:
		return "unknown"
	}
}

// Result is the outcome of one simulated game.
type Result struct {
	RowsCleared int
	Moves       int
	Termination Termination
}

// Play runs one game: spawn a uniformly drawn piece, place it where the
// policy scores highest, lock, clear, repeat. The game ends when a piece has
// no legal placement or after maxMoves placements.
func Play(w weights.Vector, maxMoves int, rng *rand.Rand) Result {
	return play(w, maxMoves, rng, nil)
}

// PlaySeed runs one game from a fresh generator seeded with seed.
func PlaySeed(w weights.Vector, maxMoves int, seed int64) Result {
	return Play(w, maxMoves, rand.New(rand.NewSource(seed)))
}

// PlayTrace runs one game and additionally records every locked placement in
// order. Intended for determinism and regression tests.
func PlayTrace(w weights.Vector, maxMoves int, rng *rand.Rand) (Result, []game.Piece, game.Board) {
	var trace []game.Piece
	board := game.NewBoard()
	res := playOn(&board, w, maxMoves, rng, &trace)
	return res, trace, board
}

func play(w weights.Vector, maxMoves int, rng *rand.Rand, trace *[]game.Piece) Result {
	board := game.NewBoard()
	return playOn(&board, w, maxMoves, rng, trace)
}

func playOn(board *game.Board, w weights.Vector, maxMoves int, rng *rand.Rand, trace *[]game.Piece) Result {
	res := Result{Termination: TerminationMoveLimit}
	for res.Moves < maxMoves {
		kind := game.RandomKind(rng)
		placement, ok := policy.Best(board, kind, w)
		if !ok {
			res.Termination = TerminationBoardFull
			return res
		}
		board.Lock(placement)
		res.RowsCleared += board.ClearFullRows()
		res.Moves++
		if trace != nil {
			*trace = append(*trace, placement)
		}
	}
	return res
}
