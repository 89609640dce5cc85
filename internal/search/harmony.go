package search

import (
	"context"
	"errors"
	"math/rand"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"tetrion/internal/weights"
)

// HarmonyConfig parameterizes Harmony Search.
type HarmonyConfig struct {
	// MemorySize is the fixed harmony memory size M.
	MemorySize int
	// Iterations is the improvisation budget; HSA has no early stop.
	Iterations int
	// AcceptRate is the probability of copying a dimension from memory
	// instead of drawing fresh.
	AcceptRate float64
	// PitchAdjustRate is the probability of perturbing a copied dimension.
	PitchAdjustRate float64
	// Bandwidth bounds the pitch-adjustment delta: U(-1,1) * Bandwidth.
	Bandwidth float64
	// MinWeight and MaxWeight bound fresh uniform draws and initialization.
	MinWeight float64
	MaxWeight float64
	// Seed drives the optimizer's own generator.
	Seed int64
	// Logger receives one event per iteration; nil disables logging.
	Logger *zerolog.Logger
}

// Validate rejects unusable configurations before any simulation runs.
func (c HarmonyConfig) Validate() error {
	if c.MemorySize <= 0 {
		return errors.New("harmony: memory size must be > 0")
	}
	if c.Iterations <= 0 {
		return errors.New("harmony: iterations must be > 0")
	}
	if c.AcceptRate < 0 || c.AcceptRate > 1 {
		return errors.New("harmony: accept rate must be in [0, 1]")
	}
	if c.PitchAdjustRate < 0 || c.PitchAdjustRate > 1 {
		return errors.New("harmony: pitch adjustment rate must be in [0, 1]")
	}
	if c.Bandwidth < 0 {
		return errors.New("harmony: bandwidth must be >= 0")
	}
	if c.MinWeight >= c.MaxWeight {
		return errors.New("harmony: weight bounds must satisfy min < max")
	}
	return nil
}

type harmonyEntry struct {
	weights weights.Vector
	fitness float64
}

// HarmonySearch keeps a fixed-size memory of (vector, fitness) entries and
// improvises one candidate per iteration, replacing the worst entry whenever
// the candidate beats it.
type HarmonySearch struct {
	cfg    HarmonyConfig
	rng    *rand.Rand
	logger zerolog.Logger
	memory []harmonyEntry
}

// NewHarmonySearch validates the configuration and builds an optimizer.
func NewHarmonySearch(cfg HarmonyConfig) (*HarmonySearch, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	return &HarmonySearch{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		logger: logger,
	}, nil
}

// Run initializes the memory with uniform draws, improvises for the full
// iteration budget, and returns the best entry ever seen. Memory size stays
// exactly M throughout; the worst retained fitness never decreases.
func (h *HarmonySearch) Run(ctx context.Context, fitness FitnessFunc) (Result, error) {
	var res Result

	h.memory = make([]harmonyEntry, 0, h.cfg.MemorySize)
	for i := 0; i < h.cfg.MemorySize; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		v := weights.Uniform(h.rng, h.cfg.MinWeight, h.cfg.MaxWeight)
		f, err := fitness(ctx, v)
		if err != nil {
			return Result{}, err
		}
		res.Evaluations++
		h.memory = append(h.memory, harmonyEntry{weights: v, fitness: f})
	}

	best := h.bestEntry()
	res.BestWeights = best.weights
	res.BestFitness = best.fitness
	res.History = make([]IterationStats, 0, h.cfg.Iterations)

	for iter := 0; iter < h.cfg.Iterations; iter++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		candidate := h.improvise()
		f, err := fitness(ctx, candidate)
		if err != nil {
			return Result{}, err
		}
		res.Evaluations++

		worstIdx := h.worstIndex()
		if f > h.memory[worstIdx].fitness {
			h.memory[worstIdx] = harmonyEntry{weights: candidate, fitness: f}
		}
		if f > res.BestFitness {
			res.BestWeights = candidate
			res.BestFitness = f
		}

		entry := IterationStats{
			Iteration: iter,
			Candidate: f,
			Best:      res.BestFitness,
			Worst:     h.memory[h.worstIndex()].fitness,
			Mean:      h.meanFitness(),
		}
		res.History = append(res.History, entry)
		h.logger.Info().
			Int("iteration", iter).
			Float64("candidate", entry.Candidate).
			Float64("best", entry.Best).
			Float64("worst", entry.Worst).
			Msg("harmony iteration")
	}

	return res, nil
}

// improvise builds one candidate, deciding per dimension between memory
// consideration (with optional pitch adjustment) and a fresh uniform draw.
func (h *HarmonySearch) improvise() weights.Vector {
	var v weights.Vector
	for i := range v {
		if h.rng.Float64() < h.cfg.AcceptRate {
			value := h.memory[h.rng.Intn(len(h.memory))].weights[i]
			if h.rng.Float64() < h.cfg.PitchAdjustRate {
				value += (h.rng.Float64()*2 - 1) * h.cfg.Bandwidth
			}
			v[i] = value
		} else {
			v[i] = h.cfg.MinWeight + h.rng.Float64()*(h.cfg.MaxWeight-h.cfg.MinWeight)
		}
	}
	return v
}

func (h *HarmonySearch) worstIndex() int {
	worst := 0
	for i := 1; i < len(h.memory); i++ {
		if h.memory[i].fitness < h.memory[worst].fitness {
			worst = i
		}
	}
	return worst
}

func (h *HarmonySearch) bestEntry() harmonyEntry {
	best := h.memory[0]
	for _, e := range h.memory[1:] {
		if e.fitness > best.fitness {
			best = e
		}
	}
	return best
}

func (h *HarmonySearch) meanFitness() float64 {
	values := make([]float64, len(h.memory))
	for i, e := range h.memory {
		values[i] = e.fitness
	}
	return stat.Mean(values, nil)
}
