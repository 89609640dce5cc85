package tetrion

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tetrion/internal/model"
	"tetrion/internal/search"
	"tetrion/internal/sim"
	"tetrion/internal/stats"
	"tetrion/internal/storage"
	"tetrion/internal/weights"
)

const (
	defaultRunsDir    = "runs"
	defaultExportsDir = "exports"
	defaultDBPath     = "tetrion.db"

	// AlgorithmHarmony selects harmony search.
	AlgorithmHarmony = "harmony"
	// AlgorithmCrossEntropy selects cross-entropy search.
	AlgorithmCrossEntropy = "cross-entropy"
)

type Options struct {
	StoreKind  string
	DBPath     string
	RunsDir    string
	ExportsDir string
	Logger     *zerolog.Logger
}

type Client struct {
	store  storage.Store
	logger zerolog.Logger

	runsDir    string
	exportsDir string
}

// OptimizeRequest configures one optimizer run. Zero values take the
// reference defaults for the selected algorithm.
type OptimizeRequest struct {
	Algorithm string
	RunID     string
	Seed      int64
	Workers   int

	// Fitness evaluation.
	Games    int
	SeedBase int64
	MaxMoves int

	// Harmony search.
	Iterations      int
	MemorySize      int
	AcceptRate      float64
	PitchAdjustRate float64
	Bandwidth       float64
	MinWeight       float64
	MaxWeight       float64

	// Cross-entropy search.
	Samples     int
	Elite       int
	InitStdDev  float64
	StdDevFloor float64
	ExtraNoise  float64
	Target      float64
}

type OptimizeSummary struct {
	RunID        string
	Algorithm    string
	ArtifactsDir string
	BestWeights  weights.Vector
	BestFitness  float64
	Evaluations  int
	EarlyStopped bool
	History      []model.IterationPoint
}

type EvaluateRequest struct {
	Weights  weights.Vector
	RunID    string
	Games    int
	SeedBase int64
	MaxMoves int
	Workers  int
}

type EvaluateSummary struct {
	EvaluationID string
	MeanRows     float64
	Games        int
	Seeds        []int64
	MaxMoves     int
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID        string
	CreatedAtUTC string
	Algorithm    string
	Seed         int64
	Games        int
	MaxMoves     int
	Iterations   int
	Evaluations  int
	BestFitness  float64
	EarlyStopped bool
}

type FitnessHistoryRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

type BestWeightsRequest struct {
	RunID  string
	Latest bool
}

func New(opts Options) (*Client, error) {
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	runsDir := opts.RunsDir
	if runsDir == "" {
		runsDir = defaultRunsDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	store, err := storage.NewStore(opts.StoreKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:      store,
		logger:     logger,
		runsDir:    runsDir,
		exportsDir: exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

func (c *Client) Optimize(ctx context.Context, req OptimizeRequest) (OptimizeSummary, error) {
	if req.Algorithm == "" {
		req.Algorithm = AlgorithmHarmony
	}
	if req.Algorithm != AlgorithmHarmony && req.Algorithm != AlgorithmCrossEntropy {
		return OptimizeSummary{}, fmt.Errorf("unsupported algorithm: %s", req.Algorithm)
	}
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}
	if req.Workers <= 0 {
		req.Workers = 4
	}
	if req.Games <= 0 {
		req.Games = 5
	}
	if req.SeedBase == 0 {
		req.SeedBase = req.Seed
	}
	if req.MaxMoves <= 0 {
		req.MaxMoves = 1000
	}
	if req.Iterations <= 0 {
		if req.Algorithm == AlgorithmHarmony {
			req.Iterations = 500
		} else {
			req.Iterations = 100
		}
	}
	if req.MemorySize <= 0 {
		req.MemorySize = 5
	}
	if req.AcceptRate == 0 {
		req.AcceptRate = 0.95
	}
	if req.PitchAdjustRate == 0 {
		req.PitchAdjustRate = 0.99
	}
	if req.Bandwidth == 0 {
		req.Bandwidth = 0.1
	}
	if req.MinWeight == 0 && req.MaxWeight == 0 {
		req.MinWeight, req.MaxWeight = -1, 1
	}
	if req.Samples <= 0 {
		req.Samples = 10
	}
	if req.Elite <= 0 {
		req.Elite = 2
	}
	if req.InitStdDev == 0 {
		req.InitStdDev = 10
	}
	if req.StdDevFloor == 0 {
		req.StdDevFloor = 0.01
	}
	if req.ExtraNoise == 0 {
		req.ExtraNoise = 0.01
	}

	evaluator := sim.Evaluator{
		MaxMoves: req.MaxMoves,
		Seeds:    sim.SeedsFrom(req.SeedBase, req.Games),
		Workers:  req.Workers,
	}
	if err := evaluator.Validate(); err != nil {
		return OptimizeSummary{}, err
	}

	if err := c.store.Init(ctx); err != nil {
		return OptimizeSummary{}, err
	}

	now := time.Now().UTC()
	var result search.Result
	switch req.Algorithm {
	case AlgorithmHarmony:
		solver, err := search.NewHarmonySearch(search.HarmonyConfig{
			MemorySize:      req.MemorySize,
			Iterations:      req.Iterations,
			AcceptRate:      req.AcceptRate,
			PitchAdjustRate: req.PitchAdjustRate,
			Bandwidth:       req.Bandwidth,
			MinWeight:       req.MinWeight,
			MaxWeight:       req.MaxWeight,
			Seed:            req.Seed,
			Logger:          &c.logger,
		})
		if err != nil {
			return OptimizeSummary{}, err
		}
		result, err = solver.Run(ctx, evaluator.Evaluate)
		if err != nil {
			return OptimizeSummary{}, err
		}
	case AlgorithmCrossEntropy:
		solver, err := search.NewCrossEntropySearch(search.CrossEntropyConfig{
			Samples:     req.Samples,
			Elite:       req.Elite,
			Iterations:  req.Iterations,
			InitStdDev:  req.InitStdDev,
			StdDevFloor: req.StdDevFloor,
			ExtraNoise:  req.ExtraNoise,
			Target:      req.Target,
			Seed:        req.Seed,
			Workers:     req.Workers,
			Logger:      &c.logger,
		})
		if err != nil {
			return OptimizeSummary{}, err
		}
		result, err = solver.Run(ctx, evaluator.Evaluate)
		if err != nil {
			return OptimizeSummary{}, err
		}
	}

	history := make([]model.IterationPoint, len(result.History))
	for i, entry := range result.History {
		history[i] = model.IterationPoint{
			Iteration: entry.Iteration,
			Candidate: entry.Candidate,
			Best:      entry.Best,
			Worst:     entry.Worst,
			Mean:      entry.Mean,
		}
	}

	run := model.Run{
		VersionedRecord: currentVersion(),
		ID:              req.RunID,
		Algorithm:       req.Algorithm,
		CreatedAt:       now,
		Weights:         result.BestWeights.Slice(),
		BestFitness:     result.BestFitness,
		Evaluations:     result.Evaluations,
		Iterations:      len(result.History),
		EarlyStopped:    result.EarlyStopped,
		Seeds:           evaluator.Seeds,
		MaxMoves:        req.MaxMoves,
	}
	if err := c.store.SaveRun(ctx, run); err != nil {
		return OptimizeSummary{}, err
	}
	if err := c.store.SaveHistory(ctx, req.RunID, history); err != nil {
		return OptimizeSummary{}, err
	}

	cfg := stats.RunConfig{
		RunID:      req.RunID,
		Algorithm:  req.Algorithm,
		Seed:       req.Seed,
		Workers:    req.Workers,
		Games:      req.Games,
		SeedBase:   req.SeedBase,
		MaxMoves:   req.MaxMoves,
		Iterations: req.Iterations,
	}
	switch req.Algorithm {
	case AlgorithmHarmony:
		cfg.MemorySize = req.MemorySize
		cfg.AcceptRate = req.AcceptRate
		cfg.PitchAdjustRate = req.PitchAdjustRate
		cfg.Bandwidth = req.Bandwidth
		cfg.MinWeight = req.MinWeight
		cfg.MaxWeight = req.MaxWeight
	case AlgorithmCrossEntropy:
		cfg.Samples = req.Samples
		cfg.Elite = req.Elite
		cfg.InitStdDev = req.InitStdDev
		cfg.StdDevFloor = req.StdDevFloor
		cfg.ExtraNoise = req.ExtraNoise
		cfg.Target = req.Target
	}

	runDir, err := stats.WriteRunArtifacts(c.runsDir, stats.RunArtifacts{
		Config:       cfg,
		History:      history,
		BestWeights:  result.BestWeights.Slice(),
		BestFitness:  result.BestFitness,
		Evaluations:  result.Evaluations,
		EarlyStopped: result.EarlyStopped,
	})
	if err != nil {
		return OptimizeSummary{}, err
	}

	if err := stats.AppendRunIndex(c.runsDir, stats.RunIndexEntry{
		RunID:        req.RunID,
		Algorithm:    req.Algorithm,
		Seed:         req.Seed,
		Games:        req.Games,
		MaxMoves:     req.MaxMoves,
		Iterations:   len(history),
		Evaluations:  result.Evaluations,
		BestFitness:  result.BestFitness,
		EarlyStopped: result.EarlyStopped,
		CreatedAtUTC: now.Format(time.RFC3339Nano),
	}); err != nil {
		return OptimizeSummary{}, err
	}

	return OptimizeSummary{
		RunID:        req.RunID,
		Algorithm:    req.Algorithm,
		ArtifactsDir: filepath.Clean(runDir),
		BestWeights:  result.BestWeights,
		BestFitness:  result.BestFitness,
		Evaluations:  result.Evaluations,
		EarlyStopped: result.EarlyStopped,
		History:      history,
	}, nil
}

func (c *Client) Evaluate(ctx context.Context, req EvaluateRequest) (EvaluateSummary, error) {
	if req.Games <= 0 {
		req.Games = 5
	}
	if req.MaxMoves <= 0 {
		req.MaxMoves = 1000
	}
	if req.Workers <= 0 {
		req.Workers = 4
	}

	evaluator := sim.Evaluator{
		MaxMoves: req.MaxMoves,
		Seeds:    sim.SeedsFrom(req.SeedBase, req.Games),
		Workers:  req.Workers,
	}
	if err := evaluator.Validate(); err != nil {
		return EvaluateSummary{}, err
	}

	mean, err := evaluator.Evaluate(ctx, req.Weights)
	if err != nil {
		return EvaluateSummary{}, err
	}

	if err := c.store.Init(ctx); err != nil {
		return EvaluateSummary{}, err
	}
	eval := model.Evaluation{
		VersionedRecord: currentVersion(),
		ID:              uuid.NewString(),
		RunID:           req.RunID,
		CreatedAt:       time.Now().UTC(),
		Weights:         req.Weights.Slice(),
		Seeds:           evaluator.Seeds,
		MaxMoves:        req.MaxMoves,
		MeanRows:        mean,
	}
	if err := c.store.SaveEvaluation(ctx, eval); err != nil {
		return EvaluateSummary{}, err
	}

	return EvaluateSummary{
		EvaluationID: eval.ID,
		MeanRows:     mean,
		Games:        req.Games,
		Seeds:        evaluator.Seeds,
		MaxMoves:     req.MaxMoves,
	}, nil
}

func (c *Client) Runs(_ context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	entries, err := stats.ListRunIndex(c.runsDir)
	if err != nil {
		return nil, err
	}
	if len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}

	out := make([]RunItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, RunItem{
			RunID:        e.RunID,
			CreatedAtUTC: e.CreatedAtUTC,
			Algorithm:    e.Algorithm,
			Seed:         e.Seed,
			Games:        e.Games,
			MaxMoves:     e.MaxMoves,
			Iterations:   e.Iterations,
			Evaluations:  e.Evaluations,
			BestFitness:  e.BestFitness,
			EarlyStopped: e.EarlyStopped,
		})
	}
	return out, nil
}

// FitnessHistory returns a run's convergence history, preferring the store
// and falling back to the run's artifact directory so histories survive the
// in-memory backend across processes.
func (c *Client) FitnessHistory(ctx context.Context, req FitnessHistoryRequest) ([]model.IterationPoint, error) {
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	runID, err := c.resolveRunID(req.RunID, req.Latest)
	if err != nil {
		return nil, err
	}

	if err := c.store.Init(ctx); err != nil {
		return nil, err
	}
	history, ok, err := c.store.GetHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		best, found, err := stats.ReadConvergenceCSV(c.runsDir, runID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("fitness history not found for run id: %s", runID)
		}
		history = make([]model.IterationPoint, len(best))
		for i, value := range best {
			history[i] = model.IterationPoint{Iteration: i, Best: value}
		}
	}
	if req.Limit > 0 && len(history) > req.Limit {
		history = history[:req.Limit]
	}
	return history, nil
}

func (c *Client) BestWeights(_ context.Context, req BestWeightsRequest) (weights.Vector, error) {
	runID, err := c.resolveRunID(req.RunID, req.Latest)
	if err != nil {
		return weights.Vector{}, err
	}

	values, ok, err := stats.ReadBestWeights(c.runsDir, runID)
	if err != nil {
		return weights.Vector{}, err
	}
	if !ok {
		return weights.Vector{}, fmt.Errorf("best weights not found for run id: %s", runID)
	}
	if len(values) != weights.Count {
		return weights.Vector{}, fmt.Errorf("best weights for run %s: expected %d values, got %d", runID, weights.Count, len(values))
	}
	var v weights.Vector
	copy(v[:], values)
	return v, nil
}

func (c *Client) Export(_ context.Context, req ExportRequest) (ExportSummary, error) {
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}
	runID, err := c.resolveRunID(req.RunID, req.Latest)
	if err != nil {
		return ExportSummary{}, err
	}

	exportedDir, err := stats.ExportRunArtifacts(c.runsDir, runID, req.OutDir)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: filepath.Clean(exportedDir)}, nil
}

// Report aggregates all indexed runs against an optional fitness goal and
// writes report.json next to the run directories.
func (c *Client) Report(_ context.Context, goal float64) (stats.Report, error) {
	report, err := stats.BuildReport(c.runsDir, goal)
	if err != nil {
		return stats.Report{}, err
	}
	if _, err := stats.WriteReport(c.runsDir, report); err != nil {
		return stats.Report{}, err
	}
	return report, nil
}

func (c *Client) resolveRunID(runID string, latest bool) (string, error) {
	if runID != "" && latest {
		return "", errors.New("use either run id or latest")
	}
	if runID != "" {
		return runID, nil
	}
	if !latest {
		return "", errors.New("run id or latest is required")
	}
	entries, err := stats.ListRunIndex(c.runsDir)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", errors.New("no runs available")
	}
	return entries[0].RunID, nil
}

func currentVersion() model.VersionedRecord {
	return model.VersionedRecord{
		SchemaVersion: storage.CurrentSchemaVersion,
		CodecVersion:  storage.CurrentCodecVersion,
	}
}
