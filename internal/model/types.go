package model

import "time"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Run is the persistent record of one optimizer run.
type Run struct {
	VersionedRecord
	ID           string    `json:"id"`
	Algorithm    string    `json:"algorithm"`
	CreatedAt    time.Time `json:"created_at"`
	Weights      []float64 `json:"weights"`
	BestFitness  float64   `json:"best_fitness"`
	Evaluations  int       `json:"evaluations"`
	Iterations   int       `json:"iterations"`
	EarlyStopped bool      `json:"early_stopped"`
	Seeds        []int64   `json:"seeds"`
	MaxMoves     int       `json:"max_moves"`
}

// Evaluation records one standalone fitness measurement of a weight vector.
type Evaluation struct {
	VersionedRecord
	ID        string    `json:"id"`
	RunID     string    `json:"run_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Weights   []float64 `json:"weights"`
	Seeds     []int64   `json:"seeds"`
	MaxMoves  int       `json:"max_moves"`
	MeanRows  float64   `json:"mean_rows"`
}

// IterationPoint is one entry of a run's convergence history.
type IterationPoint struct {
	Iteration int     `json:"iteration"`
	Candidate float64 `json:"candidate"`
	Best      float64 `json:"best"`
	Worst     float64 `json:"worst"`
	Mean      float64 `json:"mean"`
}
