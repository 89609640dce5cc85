package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	tetrionapi "tetrion/pkg/tetrion"
)

func TestLoadOptimizeRequestFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run_config.json")
	payload := map[string]any{
		"algorithm":         "cross-entropy",
		"run_id":            "run-cfg",
		"seed":              77,
		"workers":           3,
		"games":             4,
		"seed_base":         100,
		"max_moves":         250,
		"iterations":        12,
		"samples":           8,
		"elite":             3,
		"init_stddev":       5.5,
		"stddev_floor":      0.02,
		"extra_noise":       0.03,
		"target":            40.0,
		"memory_size":       7,
		"accept_rate":       0.9,
		"pitch_adjust_rate": 0.8,
		"bandwidth":         0.2,
		"min_weight":        -2.0,
		"max_weight":        2.0,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	req, err := loadOptimizeRequestFromConfig(path)
	if err != nil {
		t.Fatalf("load optimize request: %v", err)
	}
	if req.Algorithm != "cross-entropy" || req.RunID != "run-cfg" {
		t.Fatalf("unexpected identity fields: %+v", req)
	}
	if req.Seed != 77 || req.Workers != 3 || req.Games != 4 || req.SeedBase != 100 || req.MaxMoves != 250 {
		t.Fatalf("unexpected evaluation fields: %+v", req)
	}
	if req.Iterations != 12 || req.Samples != 8 || req.Elite != 3 {
		t.Fatalf("unexpected cross-entropy counts: %+v", req)
	}
	if req.InitStdDev != 5.5 || req.StdDevFloor != 0.02 || req.ExtraNoise != 0.03 || req.Target != 40.0 {
		t.Fatalf("unexpected cross-entropy parameters: %+v", req)
	}
	if req.MemorySize != 7 || req.AcceptRate != 0.9 || req.PitchAdjustRate != 0.8 || req.Bandwidth != 0.2 {
		t.Fatalf("unexpected harmony parameters: %+v", req)
	}
	if req.MinWeight != -2.0 || req.MaxWeight != 2.0 {
		t.Fatalf("unexpected weight bounds: %+v", req)
	}
}

func TestLoadOptimizeRequestFromConfigIgnoresUnknownAndMistypedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run_config.json")
	data := []byte(`{"algorithm": 3, "seed": "nope", "unrelated": true, "games": 6}`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	req, err := loadOptimizeRequestFromConfig(path)
	if err != nil {
		t.Fatalf("load optimize request: %v", err)
	}
	if req.Algorithm != "" || req.Seed != 0 {
		t.Fatalf("expected mistyped keys to be skipped, got %+v", req)
	}
	if req.Games != 6 {
		t.Fatalf("expected games 6, got %d", req.Games)
	}
}

func TestOverrideFromFlagsOnlyAppliesSetFlags(t *testing.T) {
	req := tetrionapi.OptimizeRequest{
		Algorithm: "harmony",
		Seed:      5,
		Games:     4,
		Samples:   9,
	}
	set := map[string]bool{"seed": true, "samples": true, "target": true}
	overrideFromFlags(&req, set, map[string]any{
		"seed":    int64(42),
		"games":   10,
		"samples": 6,
		"target":  25.0,
	})

	if req.Seed != 42 || req.Samples != 6 || req.Target != 25.0 {
		t.Fatalf("expected set flags applied, got %+v", req)
	}
	if req.Games != 4 {
		t.Fatalf("expected unset games flag ignored, got %d", req.Games)
	}
	if req.Algorithm != "harmony" {
		t.Fatalf("expected algorithm untouched, got %s", req.Algorithm)
	}
}

func TestLoadOrDefaultOptimizeRequest(t *testing.T) {
	req, err := loadOrDefaultOptimizeRequest("")
	if err != nil {
		t.Fatalf("empty path: %v", err)
	}
	if req != (tetrionapi.OptimizeRequest{}) {
		t.Fatalf("expected zero request for empty path, got %+v", req)
	}

	if _, err := loadOrDefaultOptimizeRequest(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
