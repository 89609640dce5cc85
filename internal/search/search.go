// Package search contains the two weight-vector optimizers: the
// population-memory Harmony Search and the distribution-based Cross-Entropy
// Search. Both refine candidates against a caller-supplied fitness function
// and report the best pair ever seen plus a per-iteration history.
package search

import (
	"context"

	"tetrion/internal/weights"
)

// FitnessFunc scores a candidate weight vector. Implementations must be
// deterministic for a fixed configuration; the simulator's seeded evaluator
// satisfies this.
type FitnessFunc func(ctx context.Context, w weights.Vector) (float64, error)

// IterationStats is one optimizer iteration as recorded in run history.
type IterationStats struct {
	Iteration int `json:"iteration"`
	// Candidate is the fitness of the single HSA candidate, or the best
	// candidate of the CES generation.
	Candidate float64 `json:"candidate"`
	// Best is the best fitness ever seen up to and including this iteration.
	Best float64 `json:"best"`
	// Worst is the worst fitness currently retained (HSA memory floor, or
	// the weakest elite in CES).
	Worst float64 `json:"worst"`
	// Mean is the mean retained fitness (HSA memory, CES elite set).
	Mean float64 `json:"mean"`
}

// Result is an optimizer's final outcome.
type Result struct {
	BestWeights weights.Vector
	BestFitness float64
	History     []IterationStats
	// Evaluations counts fitness-function invocations, initialization
	// included.
	Evaluations int
	// EarlyStopped is set when CES reached its target fitness before the
	// iteration budget ran out. HSA never stops early.
	EarlyStopped bool
}
