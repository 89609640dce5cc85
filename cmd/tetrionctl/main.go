package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"tetrion/internal/feature"
	"tetrion/internal/game"
	"tetrion/internal/storage"
	"tetrion/internal/weights"
	tetrionapi "tetrion/pkg/tetrion"
)

const (
	runsDir    = "runs"
	exportsDir = "exports"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "optimize":
		return runOptimize(ctx, args[1:])
	case "evaluate":
		return runEvaluate(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "fitness":
		return runFitness(ctx, args[1:])
	case "weights":
		return runWeights(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	case "report":
		return runReport(ctx, args[1:])
	case "features":
		return runFeatures(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "tetrion.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	if err := store.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runOptimize(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("optimize", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config JSON path")
	algorithm := fs.String("algorithm", tetrionapi.AlgorithmHarmony, "optimizer: harmony|cross-entropy")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	seed := fs.Int64("seed", 1, "rng seed")
	workers := fs.Int("workers", 4, "worker count")
	games := fs.Int("games", 5, "games per fitness evaluation")
	seedBase := fs.Int64("seed-base", 0, "first game seed (defaults to seed)")
	maxMoves := fs.Int("max-moves", 1000, "piece limit per game")
	iterations := fs.Int("iterations", 0, "iteration count (0 uses the algorithm default)")
	memorySize := fs.Int("memory-size", 5, "harmony memory size")
	acceptRate := fs.Float64("accept-rate", 0.95, "harmony memory considering rate")
	pitchAdjustRate := fs.Float64("pitch-adjust-rate", 0.99, "harmony pitch adjusting rate")
	bandwidth := fs.Float64("bandwidth", 0.1, "harmony pitch adjustment bandwidth")
	minWeight := fs.Float64("min-weight", -1, "harmony lower weight bound")
	maxWeight := fs.Float64("max-weight", 1, "harmony upper weight bound")
	samples := fs.Int("samples", 10, "cross-entropy samples per generation")
	elite := fs.Int("elite", 2, "cross-entropy elite count")
	initStdDev := fs.Float64("init-stddev", 10, "cross-entropy initial standard deviation")
	stdDevFloor := fs.Float64("stddev-floor", 0.01, "cross-entropy standard deviation floor")
	extraNoise := fs.Float64("extra-noise", 0.01, "cross-entropy refit noise")
	target := fs.Float64("target", 0, "early-stop fitness target (0 disables)")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "tetrion.db", "sqlite database path")
	verbose := fs.Bool("verbose", false, "log per-iteration progress")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	req, err := loadOrDefaultOptimizeRequest(*configPath)
	if err != nil {
		return err
	}
	if *configPath == "" {
		req = tetrionapi.OptimizeRequest{
			Algorithm:       *algorithm,
			RunID:           *runID,
			Seed:            *seed,
			Workers:         *workers,
			Games:           *games,
			SeedBase:        *seedBase,
			MaxMoves:        *maxMoves,
			Iterations:      *iterations,
			MemorySize:      *memorySize,
			AcceptRate:      *acceptRate,
			PitchAdjustRate: *pitchAdjustRate,
			Bandwidth:       *bandwidth,
			MinWeight:       *minWeight,
			MaxWeight:       *maxWeight,
			Samples:         *samples,
			Elite:           *elite,
			InitStdDev:      *initStdDev,
			StdDevFloor:     *stdDevFloor,
			ExtraNoise:      *extraNoise,
			Target:          *target,
		}
	} else {
		overrideFromFlags(&req, setFlags, map[string]any{
			"algorithm":         *algorithm,
			"run-id":            *runID,
			"seed":              *seed,
			"workers":           *workers,
			"games":             *games,
			"seed-base":         *seedBase,
			"max-moves":         *maxMoves,
			"iterations":        *iterations,
			"memory-size":       *memorySize,
			"accept-rate":       *acceptRate,
			"pitch-adjust-rate": *pitchAdjustRate,
			"bandwidth":         *bandwidth,
			"min-weight":        *minWeight,
			"max-weight":        *maxWeight,
			"samples":           *samples,
			"elite":             *elite,
			"init-stddev":       *initStdDev,
			"stddev-floor":      *stdDevFloor,
			"extra-noise":       *extraNoise,
			"target":            *target,
		})
	}

	logger := newLogger(*verbose)
	client, err := tetrionapi.New(tetrionapi.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		RunsDir:    runsDir,
		ExportsDir: exportsDir,
		Logger:     &logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Optimize(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("optimize completed run_id=%s algorithm=%s evaluations=%s early_stopped=%t\n",
		summary.RunID,
		summary.Algorithm,
		humanize.Comma(int64(summary.Evaluations)),
		summary.EarlyStopped,
	)
	fmt.Printf("best_fitness=%.6f\n", summary.BestFitness)
	for i, name := range feature.Names {
		fmt.Printf("weight %-26s %+.6f\n", name, summary.BestWeights[i])
	}
	fmt.Printf("artifacts_dir=%s\n", filepath.Clean(summary.ArtifactsDir))
	return nil
}

func runEvaluate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("evaluate", flag.ContinueOnError)
	weightsPath := fs.String("weights-file", "", "weight vector file, one value per line")
	runID := fs.String("run-id", "", "evaluate the best weights of this run")
	latest := fs.Bool("latest", false, "evaluate the best weights of the most recent run")
	games := fs.Int("games", 5, "games to play")
	seedBase := fs.Int64("seed-base", 1, "first game seed")
	maxMoves := fs.Int("max-moves", 1000, "piece limit per game")
	workers := fs.Int("workers", 4, "worker count")
	jsonOut := fs.Bool("json", false, "emit the evaluation summary as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "tetrion.db", "sqlite database path")
	verbose := fs.Bool("verbose", false, "log per-game progress")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *weightsPath == "" && *runID == "" && !*latest {
		return errors.New("evaluate requires --weights-file, --run-id, or --latest")
	}
	if *weightsPath != "" && (*runID != "" || *latest) {
		return errors.New("use either --weights-file or a run reference, not both")
	}

	logger := newLogger(*verbose)
	client, err := tetrionapi.New(tetrionapi.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		RunsDir:    runsDir,
		ExportsDir: exportsDir,
		Logger:     &logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	var vector weights.Vector
	if *weightsPath != "" {
		vector, err = weights.Load(*weightsPath)
	} else {
		vector, err = client.BestWeights(ctx, tetrionapi.BestWeightsRequest{RunID: *runID, Latest: *latest})
	}
	if err != nil {
		return err
	}

	summary, err := client.Evaluate(ctx, tetrionapi.EvaluateRequest{
		Weights:  vector,
		RunID:    *runID,
		Games:    *games,
		SeedBase: *seedBase,
		MaxMoves: *maxMoves,
		Workers:  *workers,
	})
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	fmt.Printf("evaluation_id=%s games=%d max_moves=%d mean_rows=%.6f\n",
		summary.EvaluationID,
		summary.Games,
		summary.MaxMoves,
		summary.MeanRows,
	)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := tetrionapi.New(tetrionapi.Options{RunsDir: runsDir, ExportsDir: exportsDir})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	entries, err := client.Runs(ctx, tetrionapi.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	for _, e := range entries {
		fmt.Printf("run_id=%s created_at=%s algorithm=%s seed=%d games=%d max_moves=%d iterations=%d evaluations=%s best_fitness=%.6f early_stopped=%t\n",
			e.RunID,
			e.CreatedAtUTC,
			e.Algorithm,
			e.Seed,
			e.Games,
			e.MaxMoves,
			e.Iterations,
			humanize.Comma(int64(e.Evaluations)),
			e.BestFitness,
			e.EarlyStopped,
		)
	}
	return nil
}

func runFitness(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show fitness history for the most recent run from run index")
	limit := fs.Int("limit", 50, "max iterations to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit fitness history as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "tetrion.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("fitness requires --run-id or --latest")
	}
	if *limit < 0 {
		*limit = 0
	}

	client, err := tetrionapi.New(tetrionapi.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		RunsDir:    runsDir,
		ExportsDir: exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, err := client.FitnessHistory(ctx, tetrionapi.FitnessHistoryRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Println("no fitness history")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(history)
	}

	for _, p := range history {
		fmt.Printf("iteration=%d candidate=%.6f best=%.6f worst=%.6f mean=%.6f\n",
			p.Iteration,
			p.Candidate,
			p.Best,
			p.Worst,
			p.Mean,
		)
	}
	return nil
}

func runWeights(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("weights", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show best weights for the most recent run from run index")
	outPath := fs.String("out", "", "optional output file for the weight vector")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("weights requires --run-id or --latest")
	}

	client, err := tetrionapi.New(tetrionapi.Options{RunsDir: runsDir, ExportsDir: exportsDir})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	vector, err := client.BestWeights(ctx, tetrionapi.BestWeightsRequest{RunID: *runID, Latest: *latest})
	if err != nil {
		return err
	}
	if *outPath != "" {
		if err := vector.Save(*outPath); err != nil {
			return err
		}
		fmt.Printf("weights written to=%s\n", filepath.Clean(*outPath))
		return nil
	}
	for i, name := range feature.Names {
		fmt.Printf("weight %-26s %+.6f\n", name, vector[i])
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "export the most recent run from run index")
	outDir := fs.String("out", exportsDir, "export output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("export requires --run-id or --latest")
	}

	client, err := tetrionapi.New(tetrionapi.Options{RunsDir: runsDir, ExportsDir: exportsDir})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Export(ctx, tetrionapi.ExportRequest{
		RunID:  *runID,
		Latest: *latest,
		OutDir: *outDir,
	})
	if err != nil {
		return err
	}
	fmt.Printf("exported run_id=%s to=%s\n", summary.RunID, summary.Directory)
	return nil
}

func runReport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	goal := fs.Float64("goal", 0, "fitness goal for success counting (0 disables)")
	jsonOut := fs.Bool("json", false, "emit the report as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := tetrionapi.New(tetrionapi.Options{RunsDir: runsDir, ExportsDir: exportsDir})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	report, err := client.Report(ctx, *goal)
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	fmt.Printf("runs=%d success=%d success_rate=%.4f best_mean=%.6f best_std=%.6f best_max=%.6f best_min=%.6f\n",
		report.TotalRuns,
		report.SuccessRuns,
		report.SuccessRate,
		report.BestMean,
		report.BestStd,
		report.BestMax,
		report.BestMin,
	)
	for _, r := range report.Runs {
		fmt.Printf("run_id=%s algorithm=%s evaluations=%s final_best=%.6f success=%t\n",
			r.RunID,
			r.Algorithm,
			humanize.Comma(int64(r.Evaluations)),
			r.FinalBest,
			r.Success,
		)
	}
	return nil
}

func runFeatures(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("features", flag.ContinueOnError)
	boardPath := fs.String("board", "", "board file: '#' occupied, top row first ('-' reads stdin)")
	jsonOut := fs.Bool("json", false, "emit feature values as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *boardPath == "" {
		return errors.New("features requires --board")
	}

	rows, err := readBoardRows(*boardPath)
	if err != nil {
		return err
	}
	board, err := game.BoardFromRows(rows)
	if err != nil {
		return err
	}

	values := feature.Evaluate(&board)
	if *jsonOut {
		out := make(map[string]float64, feature.Count)
		for i, name := range feature.Names {
			out[name] = values[i]
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	for i, name := range feature.Names {
		fmt.Printf("%-26s %g\n", name, values[i])
	}
	return nil
}

func readBoardRows(path string) ([]string, error) {
	var reader io.Reader
	if path == "-" {
		reader = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = f.Close()
		}()
		reader = f
	}

	var rows []string
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		rows = append(rows, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

func newLogger(verbose bool) zerolog.Logger {
	if !verbose {
		return zerolog.Nop()
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(writer).With().Timestamp().Logger()
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: tetrionctl <init|optimize|evaluate|runs|fitness|weights|export|report|features> [flags]", msg)
}
