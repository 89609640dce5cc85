package storage

import (
	"context"
	"sort"
	"sync"

	"tetrion/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]model.Run
	history     map[string][]model.IterationPoint
	evaluations map[string][]model.Evaluation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]model.Run)
	s.history = make(map[string][]model.IterationPoint)
	s.evaluations = make(map[string][]model.Evaluation)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run.Weights = append([]float64(nil), run.Weights...)
	run.Seeds = append([]int64(nil), run.Seeds...)
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return model.Run{}, false, nil
	}
	run.Weights = append([]float64(nil), run.Weights...)
	run.Seeds = append([]int64(nil), run.Seeds...)
	return run, true, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]model.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]model.Run, 0, len(s.runs))
	for _, run := range s.runs {
		run.Weights = append([]float64(nil), run.Weights...)
		run.Seeds = append([]int64(nil), run.Seeds...)
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].CreatedAt.Before(runs[j].CreatedAt)
	})
	return runs, nil
}

func (s *MemoryStore) SaveHistory(_ context.Context, runID string, history []model.IterationPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.IterationPoint, len(history))
	copy(copied, history)
	s.history[runID] = copied
	return nil
}

func (s *MemoryStore) GetHistory(_ context.Context, runID string) ([]model.IterationPoint, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.history[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.IterationPoint, len(history))
	copy(copied, history)
	return copied, true, nil
}

func (s *MemoryStore) SaveEvaluation(_ context.Context, eval model.Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	eval.Weights = append([]float64(nil), eval.Weights...)
	eval.Seeds = append([]int64(nil), eval.Seeds...)
	s.evaluations[eval.RunID] = append(s.evaluations[eval.RunID], eval)
	return nil
}

func (s *MemoryStore) ListEvaluations(_ context.Context, runID string) ([]model.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	evals := s.evaluations[runID]
	copied := make([]model.Evaluation, len(evals))
	copy(copied, evals)
	return copied, nil
}
