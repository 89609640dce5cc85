package stats

import (
	"fmt"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/stat"
)

// ReportRun is the per-run slice of an aggregate report.
type ReportRun struct {
	RunID       string  `json:"run_id"`
	Algorithm   string  `json:"algorithm"`
	Evaluations int     `json:"evaluations"`
	FinalBest   float64 `json:"final_best"`
	Success     bool    `json:"success"`
	Goal        float64 `json:"goal,omitempty"`
}

// Report aggregates a set of runs against an optional fitness goal.
type Report struct {
	GeneratedAt   string      `json:"generated_at_utc"`
	Goal          float64     `json:"goal,omitempty"`
	TotalRuns     int         `json:"total_runs"`
	SuccessRuns   int         `json:"success_runs"`
	SuccessRate   float64     `json:"success_rate"`
	BestMean      float64     `json:"best_mean"`
	BestStd       float64     `json:"best_std"`
	BestMax       float64     `json:"best_max"`
	BestMin       float64     `json:"best_min"`
	Runs          []ReportRun `json:"runs"`
}

// BuildReport reads every indexed run's convergence series from baseDir and
// aggregates final fitness. A goal of 0 disables the success criterion; with
// a positive goal a run succeeds when its best fitness reached the goal.
func BuildReport(baseDir string, goal float64) (Report, error) {
	index, err := ListRunIndex(baseDir)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339Nano),
		Goal:        goal,
		TotalRuns:   len(index),
		Runs:        make([]ReportRun, 0, len(index)),
	}
	finals := make([]float64, 0, len(index))
	for _, entry := range index {
		series, ok, err := ReadConvergenceCSV(baseDir, entry.RunID)
		if err != nil {
			return Report{}, err
		}
		if !ok {
			return Report{}, fmt.Errorf("convergence series not found for run id: %s", entry.RunID)
		}

		run := ReportRun{
			RunID:       entry.RunID,
			Algorithm:   entry.Algorithm,
			Evaluations: entry.Evaluations,
			Goal:        goal,
		}
		if len(series) > 0 {
			run.FinalBest = series[len(series)-1]
		}
		run.Success = goal > 0 && run.FinalBest >= goal
		if run.Success {
			report.SuccessRuns++
		}
		finals = append(finals, run.FinalBest)
		report.Runs = append(report.Runs, run)
	}

	if report.TotalRuns > 0 {
		report.SuccessRate = float64(report.SuccessRuns) / float64(report.TotalRuns)
		report.BestMean = stat.Mean(finals, nil)
		report.BestStd = stat.PopStdDev(finals, nil)
		report.BestMax = finals[0]
		report.BestMin = finals[0]
		for _, value := range finals[1:] {
			if value > report.BestMax {
				report.BestMax = value
			}
			if value < report.BestMin {
				report.BestMin = value
			}
		}
	}
	return report, nil
}

// WriteReport writes the aggregate report next to the run directories.
func WriteReport(baseDir string, report Report) (string, error) {
	path := filepath.Join(baseDir, "report.json")
	if err := writeJSON(path, report); err != nil {
		return "", err
	}
	return path, nil
}
