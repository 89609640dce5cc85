package sim

import (
	"context"
	"errors"
	"sync"

	"tetrion/internal/weights"
)

// Evaluator scores weight vectors by playing one seeded game per configured
// seed and averaging the rows cleared. It is the single place where
// randomness enters fitness evaluation: seeds are explicit, never ambient.
type Evaluator struct {
	// MaxMoves bounds each game so very good vectors still terminate.
	MaxMoves int
	// Seeds lists the game seeds. One entry runs a single game; more run
	// independent games whose cleared-row counts are averaged to dampen
	// piece-sequence variance.
	Seeds []int64
	// Workers bounds the seed fan-out; 0 or 1 evaluates sequentially.
	Workers int
}

// SeedsFrom derives n consecutive seeds starting at base, the derivation
// used for averaged fitness runs.
func SeedsFrom(base int64, n int) []int64 {
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = base + int64(i)
	}
	return seeds
}

// Validate rejects unusable configurations before any game runs.
func (e *Evaluator) Validate() error {
	if e.MaxMoves <= 0 {
		return errors.New("sim: max moves must be > 0")
	}
	if len(e.Seeds) == 0 {
		return errors.New("sim: at least one seed is required")
	}
	if e.Workers < 0 {
		return errors.New("sim: workers must be >= 0")
	}
	return nil
}

// Evaluate plays one game per seed and returns the mean rows cleared.
// Deterministic: the same weights and seeds always produce the same score,
// regardless of worker count.
func (e *Evaluator) Evaluate(ctx context.Context, w weights.Vector) (float64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	results := make([]Result, len(e.Seeds))
	if e.Workers <= 1 || len(e.Seeds) == 1 {
		for i, seed := range e.Seeds {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
			results[i] = PlaySeed(w, e.MaxMoves, seed)
		}
	} else if err := e.evaluateParallel(ctx, w, results); err != nil {
		return 0, err
	}

	total := 0
	for _, r := range results {
		total += r.RowsCleared
	}
	return float64(total) / float64(len(e.Seeds)), nil
}

func (e *Evaluator) evaluateParallel(ctx context.Context, w weights.Vector, results []Result) error {
	type job struct {
		idx  int
		seed int64
	}

	jobs := make(chan job)
	errs := make(chan error, len(e.Seeds))

	workerCount := e.Workers
	if workerCount > len(e.Seeds) {
		workerCount = len(e.Seeds)
	}

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for n := 0; n < workerCount; n++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					errs <- err
					continue
				}
				results[j.idx] = PlaySeed(w, e.MaxMoves, j.seed)
			}
		}()
	}

	for i, seed := range e.Seeds {
		jobs <- job{idx: i, seed: seed}
	}
	close(jobs)

	wg.Wait()
	close(errs)
	return <-errs
}
