package storage

import (
	"context"
	"testing"
	"time"

	"tetrion/internal/model"
)

func versioned() model.VersionedRecord {
	return model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

func TestMemoryStoreRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	run := model.Run{
		VersionedRecord: versioned(),
		ID:              "run-1",
		Algorithm:       "harmony",
		CreatedAt:       time.Unix(1700000000, 0).UTC(),
		Weights:         []float64{-1, 2, -3},
		BestFitness:     42.5,
		Evaluations:     500,
		Iterations:      100,
		Seeds:           []int64{1, 2, 3},
		MaxMoves:        200,
	}
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("save run: %v", err)
	}

	got, ok, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted run")
	}
	if got.Algorithm != "harmony" || got.BestFitness != 42.5 || len(got.Weights) != 3 {
		t.Fatalf("unexpected run: %+v", got)
	}
}

func TestMemoryStoreGetRunMissing(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	_, ok, err := store.GetRun(ctx, "missing")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if ok {
		t.Fatal("expected missing run")
	}
}

func TestMemoryStoreListRunsOrdered(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	base := time.Unix(1700000000, 0).UTC()
	for i, id := range []string{"run-c", "run-a", "run-b"} {
		run := model.Run{
			VersionedRecord: versioned(),
			ID:              id,
			Algorithm:       "cross-entropy",
			CreatedAt:       base.Add(time.Duration(len("cba")-i) * time.Minute),
		}
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("save run %s: %v", id, err)
		}
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	if runs[0].ID != "run-b" || runs[1].ID != "run-a" || runs[2].ID != "run-c" {
		t.Fatalf("unexpected order: %s %s %s", runs[0].ID, runs[1].ID, runs[2].ID)
	}
}

func TestMemoryStoreHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := []model.IterationPoint{
		{Iteration: 0, Candidate: 1.5, Best: 1.5, Worst: 0.2, Mean: 0.8},
		{Iteration: 1, Candidate: 0.9, Best: 1.5, Worst: 0.4, Mean: 0.9},
	}
	if err := store.SaveHistory(ctx, "run-1", input); err != nil {
		t.Fatalf("save history: %v", err)
	}

	output, ok, err := store.GetHistory(ctx, "run-1")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted history")
	}
	if len(output) != 2 || output[1].Best != 1.5 {
		t.Fatalf("unexpected history: %+v", output)
	}

	// Mutating the returned slice must not leak back into the store.
	output[0].Best = -100
	fresh, _, err := store.GetHistory(ctx, "run-1")
	if err != nil {
		t.Fatalf("get history again: %v", err)
	}
	if fresh[0].Best != 1.5 {
		t.Fatal("history copy was shared with caller")
	}
}

func TestMemoryStoreEvaluations(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	for i := 0; i < 2; i++ {
		eval := model.Evaluation{
			VersionedRecord: versioned(),
			ID:              "eval-" + string(rune('a'+i)),
			RunID:           "run-1",
			Weights:         []float64{1, 2},
			Seeds:           []int64{7},
			MaxMoves:        50,
			MeanRows:        float64(i),
		}
		if err := store.SaveEvaluation(ctx, eval); err != nil {
			t.Fatalf("save evaluation: %v", err)
		}
	}

	evals, err := store.ListEvaluations(ctx, "run-1")
	if err != nil {
		t.Fatalf("list evaluations: %v", err)
	}
	if len(evals) != 2 {
		t.Fatalf("expected 2 evaluations, got %d", len(evals))
	}
	if evals[1].MeanRows != 1 {
		t.Fatalf("unexpected evaluation: %+v", evals[1])
	}
}
