package main

import (
	"encoding/json"
	"fmt"
	"os"

	tetrionapi "tetrion/pkg/tetrion"
)

func loadOptimizeRequestFromConfig(path string) (tetrionapi.OptimizeRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tetrionapi.OptimizeRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return tetrionapi.OptimizeRequest{}, err
	}

	var req tetrionapi.OptimizeRequest
	if v, ok := asString(raw["algorithm"]); ok {
		req.Algorithm = v
	}
	if v, ok := asString(raw["run_id"]); ok {
		req.RunID = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asInt(raw["workers"]); ok {
		req.Workers = v
	}
	if v, ok := asInt(raw["games"]); ok {
		req.Games = v
	}
	if v, ok := asInt64(raw["seed_base"]); ok {
		req.SeedBase = v
	}
	if v, ok := asInt(raw["max_moves"]); ok {
		req.MaxMoves = v
	}
	if v, ok := asInt(raw["iterations"]); ok {
		req.Iterations = v
	}
	if v, ok := asInt(raw["memory_size"]); ok {
		req.MemorySize = v
	}
	if v, ok := asFloat64(raw["accept_rate"]); ok {
		req.AcceptRate = v
	}
	if v, ok := asFloat64(raw["pitch_adjust_rate"]); ok {
		req.PitchAdjustRate = v
	}
	if v, ok := asFloat64(raw["bandwidth"]); ok {
		req.Bandwidth = v
	}
	if v, ok := asFloat64(raw["min_weight"]); ok {
		req.MinWeight = v
	}
	if v, ok := asFloat64(raw["max_weight"]); ok {
		req.MaxWeight = v
	}
	if v, ok := asInt(raw["samples"]); ok {
		req.Samples = v
	}
	if v, ok := asInt(raw["elite"]); ok {
		req.Elite = v
	}
	if v, ok := asFloat64(raw["init_stddev"]); ok {
		req.InitStdDev = v
	}
	if v, ok := asFloat64(raw["stddev_floor"]); ok {
		req.StdDevFloor = v
	}
	if v, ok := asFloat64(raw["extra_noise"]); ok {
		req.ExtraNoise = v
	}
	if v, ok := asFloat64(raw["target"]); ok {
		req.Target = v
	}
	return req, nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}

func overrideFromFlags(req *tetrionapi.OptimizeRequest, set map[string]bool, flagValue map[string]any) {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "algorithm":
			req.Algorithm = v.(string)
		case "run-id":
			req.RunID = v.(string)
		case "seed":
			req.Seed = v.(int64)
		case "workers":
			req.Workers = v.(int)
		case "games":
			req.Games = v.(int)
		case "seed-base":
			req.SeedBase = v.(int64)
		case "max-moves":
			req.MaxMoves = v.(int)
		case "iterations":
			req.Iterations = v.(int)
		case "memory-size":
			req.MemorySize = v.(int)
		case "accept-rate":
			req.AcceptRate = v.(float64)
		case "pitch-adjust-rate":
			req.PitchAdjustRate = v.(float64)
		case "bandwidth":
			req.Bandwidth = v.(float64)
		case "min-weight":
			req.MinWeight = v.(float64)
		case "max-weight":
			req.MaxWeight = v.(float64)
		case "samples":
			req.Samples = v.(int)
		case "elite":
			req.Elite = v.(int)
		case "init-stddev":
			req.InitStdDev = v.(float64)
		case "stddev-floor":
			req.StdDevFloor = v.(float64)
		case "extra-noise":
			req.ExtraNoise = v.(float64)
		case "target":
			req.Target = v.(float64)
		}
	}
}

func loadOrDefaultOptimizeRequest(configPath string) (tetrionapi.OptimizeRequest, error) {
	if configPath == "" {
		return tetrionapi.OptimizeRequest{}, nil
	}
	req, err := loadOptimizeRequestFromConfig(configPath)
	if err != nil {
		return tetrionapi.OptimizeRequest{}, fmt.Errorf("load config: %w", err)
	}
	return req, nil
}
