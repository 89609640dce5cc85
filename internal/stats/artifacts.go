package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"tetrion/internal/model"
)

const runIndexFile = "run_index.json"

// RunConfig is the persisted configuration of one optimizer run. Algorithm
// selects which optional parameter block applies.
type RunConfig struct {
	RunID     string `json:"run_id"`
	Algorithm string `json:"algorithm"`
	Seed      int64  `json:"seed"`
	Workers   int    `json:"workers"`

	// Fitness evaluation parameters.
	Games    int   `json:"games"`
	SeedBase int64 `json:"seed_base"`
	MaxMoves int   `json:"max_moves"`

	// Harmony search parameters.
	MemorySize      int     `json:"memory_size,omitempty"`
	AcceptRate      float64 `json:"accept_rate,omitempty"`
	PitchAdjustRate float64 `json:"pitch_adjust_rate,omitempty"`
	Bandwidth       float64 `json:"bandwidth,omitempty"`
	MinWeight       float64 `json:"min_weight,omitempty"`
	MaxWeight       float64 `json:"max_weight,omitempty"`

	// Cross-entropy parameters.
	Samples     int     `json:"samples,omitempty"`
	Elite       int     `json:"elite,omitempty"`
	InitStdDev  float64 `json:"init_stddev,omitempty"`
	StdDevFloor float64 `json:"stddev_floor,omitempty"`
	ExtraNoise  float64 `json:"extra_noise,omitempty"`
	Target      float64 `json:"target,omitempty"`

	Iterations int `json:"iterations"`
}

// RunArtifacts is everything written into a run's artifact directory.
type RunArtifacts struct {
	Config       RunConfig              `json:"config"`
	History      []model.IterationPoint `json:"history"`
	BestWeights  []float64              `json:"best_weights"`
	BestFitness  float64                `json:"best_fitness"`
	Evaluations  int                    `json:"evaluations"`
	EarlyStopped bool                   `json:"early_stopped"`
}

// RunIndexEntry summarizes one run in the shared run_index.json.
type RunIndexEntry struct {
	RunID        string  `json:"run_id"`
	Algorithm    string  `json:"algorithm"`
	Seed         int64   `json:"seed"`
	Games        int     `json:"games"`
	MaxMoves     int     `json:"max_moves"`
	Iterations   int     `json:"iterations"`
	Evaluations  int     `json:"evaluations"`
	BestFitness  float64 `json:"best_fitness"`
	EarlyStopped bool    `json:"early_stopped"`
	CreatedAtUTC string  `json:"created_at_utc"`
}

// FitnessSummary aggregates a convergence history.
type FitnessSummary struct {
	InitialBest float64 `json:"initial_best"`
	FinalBest   float64 `json:"final_best"`
	BestMean    float64 `json:"best_mean"`
	BestStd     float64 `json:"best_std"`
	Improvement float64 `json:"improvement"`
}

// WriteRunArtifacts materializes a run directory under baseDir and returns
// its path. The directory holds config.json, fitness_history.json,
// convergence.csv, and best_weights.txt.
func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Config.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Config.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "config.json"), artifacts.Config); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "fitness_history.json"), map[string]any{
		"history":       artifacts.History,
		"best_fitness":  artifacts.BestFitness,
		"evaluations":   artifacts.Evaluations,
		"early_stopped": artifacts.EarlyStopped,
	}); err != nil {
		return "", err
	}
	if err := WriteConvergenceCSV(runDir, artifacts.History); err != nil {
		return "", err
	}
	if err := writeWeights(filepath.Join(runDir, "best_weights.txt"), artifacts.BestWeights); err != nil {
		return "", err
	}

	return runDir, nil
}

// WriteConvergenceCSV writes the per-iteration fitness series in a form
// plotting tools can consume directly.
func WriteConvergenceCSV(runDir string, history []model.IterationPoint) error {
	path := filepath.Join(runDir, "convergence.csv")
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"iteration", "candidate", "best", "worst", "mean"}); err != nil {
		return err
	}
	for _, point := range history {
		if err := writer.Write([]string{
			strconv.Itoa(point.Iteration),
			strconv.FormatFloat(point.Candidate, 'f', -1, 64),
			strconv.FormatFloat(point.Best, 'f', -1, 64),
			strconv.FormatFloat(point.Worst, 'f', -1, 64),
			strconv.FormatFloat(point.Mean, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadConvergenceCSV reads back the best-fitness column of convergence.csv.
func ReadConvergenceCSV(baseDir, runID string) ([]float64, bool, error) {
	path := filepath.Join(baseDir, runID, "convergence.csv")
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []float64{}, true, nil
		}
		return nil, false, err
	}
	if len(header) < 3 {
		return nil, false, fmt.Errorf("convergence header must have at least 3 columns")
	}

	series := make([]float64, 0, 128)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, err
		}
		if len(record) < 3 {
			return nil, false, fmt.Errorf("convergence row must have at least 3 columns")
		}
		value, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, false, err
		}
		series = append(series, value)
	}
	return series, true, nil
}

// AppendRunIndex records a completed run in the shared index, replacing any
// existing entry with the same run id.
func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

// ListRunIndex loads the index sorted newest first.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	path := filepath.Join(baseDir, runIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Prefer later appended entries for equal timestamps.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

// ExportRunArtifacts copies a run directory's files into outDir/runID.
func ExportRunArtifacts(baseDir, runID, outDir string) (string, error) {
	if runID == "" {
		return "", fmt.Errorf("run id is required")
	}

	src := filepath.Join(baseDir, runID)
	if _, err := os.Stat(src); err != nil {
		return "", err
	}

	dst := filepath.Join(outDir, runID)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return "", err
	}

	files := []string{"config.json", "fitness_history.json", "convergence.csv", "best_weights.txt"}
	for _, file := range files {
		srcPath := filepath.Join(src, file)
		if _, err := os.Stat(srcPath); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", err
		}
		if err := copyFile(srcPath, filepath.Join(dst, file)); err != nil {
			return "", err
		}
	}

	return dst, nil
}

// ReadRunConfig loads a run's config.json, reporting absence without error.
func ReadRunConfig(baseDir, runID string) (RunConfig, bool, error) {
	path := filepath.Join(baseDir, runID, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return RunConfig{}, false, nil
		}
		return RunConfig{}, false, err
	}

	var cfg RunConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return RunConfig{}, false, err
	}
	return cfg, true, nil
}

// ReadBestWeights loads a run's best_weights.txt.
func ReadBestWeights(baseDir, runID string) ([]float64, bool, error) {
	path := filepath.Join(baseDir, runID, "best_weights.txt")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var values []float64
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		value, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, false, fmt.Errorf("best weights line %d: %w", i+1, err)
		}
		values = append(values, value)
	}
	return values, true, nil
}

// Summarize aggregates the best-fitness column of a history.
func Summarize(history []model.IterationPoint) FitnessSummary {
	if len(history) == 0 {
		return FitnessSummary{}
	}
	best := make([]float64, len(history))
	for i, point := range history {
		best[i] = point.Best
	}
	return FitnessSummary{
		InitialBest: best[0],
		FinalBest:   best[len(best)-1],
		BestMean:    stat.Mean(best, nil),
		BestStd:     stat.PopStdDev(best, nil),
		Improvement: best[len(best)-1] - best[0],
	}
}

func writeWeights(path string, values []float64) error {
	lines := make([]string, 0, len(values)+1)
	for _, value := range values {
		lines = append(lines, strconv.FormatFloat(value, 'g', -1, 64))
	}
	lines = append(lines, "")
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644)
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
