// Package weights defines the trained weight vector and its on-disk format:
// plain text, one decimal per line, in the fixed feature index order.
package weights

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"tetrion/internal/feature"
)

// Count is the number of weights, one per heuristic.
const Count = feature.Count

// Vector is an ordered weight vector; index i weighs feature i.
type Vector [Count]float64

// Uniform returns a vector with every weight drawn uniformly from
// [min, max] using the given generator.
func Uniform(rng *rand.Rand, min, max float64) Vector {
	var v Vector
	for i := range v {
		v[i] = min + rng.Float64()*(max-min)
	}
	return v
}

// Parse reads a vector from text, one value per line. Blank lines are
// skipped; exactly Count values are required.
func Parse(text string) (Vector, error) {
	var v Vector
	n := 0
	for lineNo, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		w, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return Vector{}, fmt.Errorf("weights line %d: %w", lineNo+1, err)
		}
		if n >= Count {
			n++
			continue
		}
		v[n] = w
		n++
	}
	if n != Count {
		return Vector{}, fmt.Errorf("weights: expected %d values, found %d", Count, n)
	}
	return v, nil
}

// Slice copies the vector into a fresh slice.
func (v Vector) Slice() []float64 {
	out := make([]float64, Count)
	copy(out, v[:])
	return out
}

// Format renders the vector in the on-disk format.
func (v Vector) Format() string {
	var sb strings.Builder
	for _, w := range v {
		sb.WriteString(strconv.FormatFloat(w, 'g', -1, 64))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Load reads a vector from a file.
func Load(path string) (Vector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Vector{}, err
	}
	v, err := Parse(string(data))
	if err != nil {
		return Vector{}, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// Save writes the vector to a file.
func (v Vector) Save(path string) error {
	return os.WriteFile(path, []byte(v.Format()), 0o644)
}
