package search

import (
	"context"
	"errors"
	"testing"

	"tetrion/internal/weights"
)

// sumFitness is a cheap deterministic stand-in for game simulation: the
// fitness of a vector is the sum of its components.
func sumFitness(_ context.Context, v weights.Vector) (float64, error) {
	total := 0.0
	for _, w := range v {
		total += w
	}
	return total, nil
}

func validHarmonyConfig() HarmonyConfig {
	return HarmonyConfig{
		MemorySize:      5,
		Iterations:      20,
		AcceptRate:      0.95,
		PitchAdjustRate: 0.99,
		Bandwidth:       0.1,
		MinWeight:       -1,
		MaxWeight:       1,
		Seed:            1,
	}
}

func TestHarmonyConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*HarmonyConfig)
	}{
		{"zero memory", func(c *HarmonyConfig) { c.MemorySize = 0 }},
		{"zero iterations", func(c *HarmonyConfig) { c.Iterations = 0 }},
		{"accept rate above one", func(c *HarmonyConfig) { c.AcceptRate = 1.1 }},
		{"negative accept rate", func(c *HarmonyConfig) { c.AcceptRate = -0.1 }},
		{"pitch rate above one", func(c *HarmonyConfig) { c.PitchAdjustRate = 1.5 }},
		{"negative bandwidth", func(c *HarmonyConfig) { c.Bandwidth = -0.1 }},
		{"inverted bounds", func(c *HarmonyConfig) { c.MinWeight, c.MaxWeight = 1, -1 }},
		{"equal bounds", func(c *HarmonyConfig) { c.MinWeight, c.MaxWeight = 0.5, 0.5 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validHarmonyConfig()
			tc.mutate(&cfg)
			if _, err := NewHarmonySearch(cfg); err == nil {
				t.Fatalf("expected config error for %s", tc.name)
			}
		})
	}

	if _, err := NewHarmonySearch(validHarmonyConfig()); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestHarmonySearchDeterministicPerSeed(t *testing.T) {
	runOnce := func() Result {
		t.Helper()
		solver, err := NewHarmonySearch(validHarmonyConfig())
		if err != nil {
			t.Fatalf("new solver: %v", err)
		}
		res, err := solver.Run(context.Background(), sumFitness)
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		return res
	}

	first := runOnce()
	second := runOnce()
	if first.BestFitness != second.BestFitness {
		t.Fatalf("best fitness differs across identical runs: %f vs %f", first.BestFitness, second.BestFitness)
	}
	if first.BestWeights != second.BestWeights {
		t.Fatalf("best weights differ across identical runs")
	}
	if len(first.History) != len(second.History) {
		t.Fatalf("history length differs: %d vs %d", len(first.History), len(second.History))
	}
	for i := range first.History {
		if first.History[i] != second.History[i] {
			t.Fatalf("history entry %d differs: %+v vs %+v", i, first.History[i], second.History[i])
		}
	}
}

func TestHarmonySearchAccounting(t *testing.T) {
	cfg := validHarmonyConfig()
	solver, err := NewHarmonySearch(cfg)
	if err != nil {
		t.Fatalf("new solver: %v", err)
	}
	res, err := solver.Run(context.Background(), sumFitness)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if res.Evaluations != cfg.MemorySize+cfg.Iterations {
		t.Fatalf("expected %d evaluations, got %d", cfg.MemorySize+cfg.Iterations, res.Evaluations)
	}
	if len(res.History) != cfg.Iterations {
		t.Fatalf("expected %d history entries, got %d", cfg.Iterations, len(res.History))
	}
	if res.EarlyStopped {
		t.Fatal("harmony search has no early stop")
	}
	if len(solver.memory) != cfg.MemorySize {
		t.Fatalf("memory size drifted: %d", len(solver.memory))
	}
}

func TestHarmonySearchFloorsNeverDecrease(t *testing.T) {
	solver, err := NewHarmonySearch(validHarmonyConfig())
	if err != nil {
		t.Fatalf("new solver: %v", err)
	}
	res, err := solver.Run(context.Background(), sumFitness)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	for i := 1; i < len(res.History); i++ {
		if res.History[i].Worst < res.History[i-1].Worst {
			t.Fatalf("worst retained fitness decreased at iteration %d: %f -> %f",
				i, res.History[i-1].Worst, res.History[i].Worst)
		}
		if res.History[i].Best < res.History[i-1].Best {
			t.Fatalf("best fitness decreased at iteration %d: %f -> %f",
				i, res.History[i-1].Best, res.History[i].Best)
		}
	}
	last := res.History[len(res.History)-1]
	if last.Best != res.BestFitness {
		t.Fatalf("final history best %f does not match result best %f", last.Best, res.BestFitness)
	}
	if res.BestFitness < last.Worst {
		t.Fatalf("best %f below worst retained %f", res.BestFitness, last.Worst)
	}
}

func TestHarmonySearchPropagatesFitnessError(t *testing.T) {
	solver, err := NewHarmonySearch(validHarmonyConfig())
	if err != nil {
		t.Fatalf("new solver: %v", err)
	}
	boom := errors.New("boom")
	_, err = solver.Run(context.Background(), func(context.Context, weights.Vector) (float64, error) {
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fitness error, got %v", err)
	}
}

func TestHarmonySearchHonorsCancellation(t *testing.T) {
	solver, err := NewHarmonySearch(validHarmonyConfig())
	if err != nil {
		t.Fatalf("new solver: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := solver.Run(ctx, sumFitness); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
