package storage

import (
	"context"

	"tetrion/internal/model"
)

// Store defines persistence operations for optimizer runs and their
// convergence histories.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.Run) error
	GetRun(ctx context.Context, id string) (model.Run, bool, error)
	ListRuns(ctx context.Context) ([]model.Run, error)
	SaveHistory(ctx context.Context, runID string, history []model.IterationPoint) error
	GetHistory(ctx context.Context, runID string) ([]model.IterationPoint, bool, error)
	SaveEvaluation(ctx context.Context, eval model.Evaluation) error
	ListEvaluations(ctx context.Context, runID string) ([]model.Evaluation, error)
}
