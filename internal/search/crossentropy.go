package search

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"tetrion/internal/weights"
)

// CrossEntropyConfig parameterizes Cross-Entropy Search.
type CrossEntropyConfig struct {
	// Samples is the number of candidates drawn per generation.
	Samples int
	// Elite is the number of top candidates used to refit the distribution.
	Elite int
	// Iterations is the generation budget.
	Iterations int
	// InitMean seeds every dimension's mean; typically 0.
	InitMean float64
	// InitStdDev seeds every dimension's standard deviation.
	InitStdDev float64
	// StdDevFloor is the minimum per-dimension standard deviation, applied
	// at initialization and after every update to prevent premature
	// convergence.
	StdDevFloor float64
	// ExtraNoise is added to every refitted standard deviation before the
	// floor clamp; 0 disables noise injection.
	ExtraNoise float64
	// Target enables early stopping: the run ends as soon as the best
	// fitness ever seen reaches it. 0 disables early stopping.
	Target float64
	// Seed drives candidate sampling.
	Seed int64
	// Workers bounds the per-generation evaluation fan-out.
	Workers int
	// Logger receives one event per generation; nil disables logging.
	Logger *zerolog.Logger
}

// Validate rejects unusable configurations before any simulation runs.
func (c CrossEntropyConfig) Validate() error {
	if c.Samples <= 0 {
		return errors.New("cross-entropy: sample count must be > 0")
	}
	if c.Elite <= 0 || c.Elite > c.Samples {
		return errors.New("cross-entropy: elite count must be in [1, sample count]")
	}
	if c.Iterations <= 0 {
		return errors.New("cross-entropy: iterations must be > 0")
	}
	if c.StdDevFloor <= 0 {
		return errors.New("cross-entropy: stddev floor must be > 0")
	}
	if c.InitStdDev < c.StdDevFloor {
		return errors.New("cross-entropy: initial stddev must be >= stddev floor")
	}
	if c.ExtraNoise < 0 {
		return errors.New("cross-entropy: extra noise must be >= 0")
	}
	if c.Workers < 0 {
		return errors.New("cross-entropy: workers must be >= 0")
	}
	return nil
}

// CrossEntropySearch maintains an independent Gaussian per weight dimension
// (diagonal covariance) and refits it each generation to the elite slice of
// the sampled candidates.
type CrossEntropySearch struct {
	cfg    CrossEntropyConfig
	rng    *rand.Rand
	logger zerolog.Logger

	mean   [weights.Count]float64
	stddev [weights.Count]float64
}

// NewCrossEntropySearch validates the configuration and builds an optimizer.
func NewCrossEntropySearch(cfg CrossEntropyConfig) (*CrossEntropySearch, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	s := &CrossEntropySearch{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		logger: logger,
	}
	for i := range s.mean {
		s.mean[i] = cfg.InitMean
		s.stddev[i] = cfg.InitStdDev
	}
	return s, nil
}

// Mean returns the current per-dimension distribution mean.
func (s *CrossEntropySearch) Mean() [weights.Count]float64 { return s.mean }

// StdDev returns the current per-dimension standard deviation.
func (s *CrossEntropySearch) StdDev() [weights.Count]float64 { return s.stddev }

type cesCandidate struct {
	idx     int
	weights weights.Vector
	fitness float64
}

// Run samples, evaluates, and refits for the generation budget, stopping
// early only when the best fitness ever seen reaches the configured target.
// Candidates are drawn sequentially from the owned generator, so a run is
// reproducible for a fixed seed regardless of worker count.
func (s *CrossEntropySearch) Run(ctx context.Context, fitness FitnessFunc) (Result, error) {
	var res Result
	res.History = make([]IterationStats, 0, s.cfg.Iterations)
	bestSet := false

	for iter := 0; iter < s.cfg.Iterations; iter++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		candidates := make([]cesCandidate, s.cfg.Samples)
		for i := range candidates {
			candidates[i] = cesCandidate{idx: i, weights: s.sample()}
		}
		if err := s.evaluateAll(ctx, candidates, fitness); err != nil {
			return Result{}, err
		}
		res.Evaluations += len(candidates)

		// Fitness descending, sampling order as the deterministic tiebreak.
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].fitness > candidates[j].fitness
		})

		if !bestSet || candidates[0].fitness > res.BestFitness {
			res.BestWeights = candidates[0].weights
			res.BestFitness = candidates[0].fitness
			bestSet = true
		}

		elite := candidates[:s.cfg.Elite]
		s.refit(elite)

		entry := IterationStats{
			Iteration: iter,
			Candidate: candidates[0].fitness,
			Best:      res.BestFitness,
			Worst:     elite[len(elite)-1].fitness,
			Mean:      eliteMeanFitness(elite),
		}
		res.History = append(res.History, entry)
		s.logger.Info().
			Int("iteration", iter).
			Float64("candidate", entry.Candidate).
			Float64("best", entry.Best).
			Float64("elite_mean", entry.Mean).
			Msg("cross-entropy generation")

		if s.cfg.Target > 0 && res.BestFitness >= s.cfg.Target {
			res.EarlyStopped = true
			break
		}
	}

	return res, nil
}

// sample draws one candidate dimension-wise from Normal(mean[i], stddev[i]).
func (s *CrossEntropySearch) sample() weights.Vector {
	var v weights.Vector
	for i := range v {
		v[i] = s.rng.NormFloat64()*s.stddev[i] + s.mean[i]
	}
	return v
}

// refit recomputes the distribution from the elite set: per-dimension mean
// and population standard deviation, plus injected noise, clamped to the
// floor.
func (s *CrossEntropySearch) refit(elite []cesCandidate) {
	values := make([]float64, len(elite))
	for i := range s.mean {
		for j, c := range elite {
			values[j] = c.weights[i]
		}
		s.mean[i] = stat.Mean(values, nil)
		sd := stat.PopStdDev(values, nil) + s.cfg.ExtraNoise
		if sd < s.cfg.StdDevFloor {
			sd = s.cfg.StdDevFloor
		}
		s.stddev[i] = sd
	}
}

// evaluateAll scores every candidate, fanning out on a bounded worker pool
// and merging results back by index.
func (s *CrossEntropySearch) evaluateAll(ctx context.Context, candidates []cesCandidate, fitness FitnessFunc) error {
	workerCount := s.cfg.Workers
	if workerCount <= 1 || len(candidates) == 1 {
		for i := range candidates {
			f, err := fitness(ctx, candidates[i].weights)
			if err != nil {
				return err
			}
			candidates[i].fitness = f
		}
		return nil
	}
	if workerCount > len(candidates) {
		workerCount = len(candidates)
	}

	jobs := make(chan int)
	errs := make(chan error, len(candidates))

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for n := 0; n < workerCount; n++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				f, err := fitness(ctx, candidates[i].weights)
				if err != nil {
					errs <- err
					continue
				}
				candidates[i].fitness = f
			}
		}()
	}

	for i := range candidates {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	close(errs)
	return <-errs
}

func eliteMeanFitness(elite []cesCandidate) float64 {
	values := make([]float64, len(elite))
	for i, c := range elite {
		values[i] = c.fitness
	}
	return stat.Mean(values, nil)
}
