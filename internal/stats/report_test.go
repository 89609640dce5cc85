package stats

import (
	"testing"

	"tetrion/internal/model"
)

func writeTestRun(t *testing.T, baseDir, runID, algorithm string, best []float64) {
	t.Helper()
	history := make([]model.IterationPoint, len(best))
	for i, value := range best {
		history[i] = model.IterationPoint{Iteration: i, Candidate: value, Best: value, Mean: value}
	}
	artifacts := RunArtifacts{
		Config: RunConfig{
			RunID:      runID,
			Algorithm:  algorithm,
			Iterations: len(best),
		},
		History:     history,
		BestWeights: []float64{1, 2, 3},
		BestFitness: best[len(best)-1],
		Evaluations: len(best),
	}
	if _, err := WriteRunArtifacts(baseDir, artifacts); err != nil {
		t.Fatalf("write artifacts %s: %v", runID, err)
	}
	if err := AppendRunIndex(baseDir, RunIndexEntry{
		RunID:        runID,
		Algorithm:    algorithm,
		Evaluations:  len(best),
		BestFitness:  best[len(best)-1],
		CreatedAtUTC: "2026-01-01T00:00:00Z",
	}); err != nil {
		t.Fatalf("append index %s: %v", runID, err)
	}
}

func TestBuildReportSuccessRate(t *testing.T) {
	baseDir := t.TempDir()
	writeTestRun(t, baseDir, "run-1", "harmony", []float64{1, 2, 4})
	writeTestRun(t, baseDir, "run-2", "cross-entropy", []float64{1, 2, 8})

	report, err := BuildReport(baseDir, 5)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if report.TotalRuns != 2 || report.SuccessRuns != 1 {
		t.Fatalf("unexpected counts: %+v", report)
	}
	if report.SuccessRate != 0.5 {
		t.Fatalf("unexpected success rate: %v", report.SuccessRate)
	}
	if report.BestMean != 6 || report.BestMax != 8 || report.BestMin != 4 {
		t.Fatalf("unexpected aggregates: %+v", report)
	}
}

func TestBuildReportWithoutGoal(t *testing.T) {
	baseDir := t.TempDir()
	writeTestRun(t, baseDir, "run-1", "harmony", []float64{1, 3})

	report, err := BuildReport(baseDir, 0)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if report.SuccessRuns != 0 {
		t.Fatalf("expected no success criterion, got %+v", report)
	}
	if len(report.Runs) != 1 || report.Runs[0].FinalBest != 3 {
		t.Fatalf("unexpected runs: %+v", report.Runs)
	}
}

func TestBuildReportEmptyIndex(t *testing.T) {
	report, err := BuildReport(t.TempDir(), 5)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if report.TotalRuns != 0 || len(report.Runs) != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
}
