//go:build sqlite

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"tetrion/internal/stats"
)

func TestOptimizeCommandSQLitePersistsRun(t *testing.T) {
	workdir := chdirTemp(t)

	dbPath := filepath.Join(workdir, "tetrion.db")
	args := []string{
		"optimize",
		"--store", "sqlite",
		"--db-path", dbPath,
		"--seed", "11",
		"--workers", "2",
		"--games", "2",
		"--max-moves", "15",
		"--iterations", "2",
		"--memory-size", "3",
	}
	if err := run(context.Background(), args); err != nil {
		t.Fatalf("optimize command: %v", err)
	}

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected sqlite db at %s: %v", dbPath, err)
	}

	entries, err := stats.ListRunIndex(runsDir)
	if err != nil {
		t.Fatalf("list run index: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected at least one indexed run")
	}

	fitnessArgs := []string{
		"fitness",
		"--latest",
		"--store", "sqlite",
		"--db-path", dbPath,
	}
	if err := run(context.Background(), fitnessArgs); err != nil {
		t.Fatalf("fitness command: %v", err)
	}
}
