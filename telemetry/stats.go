// Package telemetry provides training progress tracking, bookmarking, and output.
package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// GenerationStats holds aggregated statistics for one generation's episode.
type GenerationStats struct {
	Generation int `csv:"generation"`
	Population int `csv:"population"`
	Ticks      int `csv:"ticks"`
	Score      int `csv:"score"`

	// Fitness distribution at episode end
	BestFitness   float64 `csv:"best_fitness"`
	MeanFitness   float64 `csv:"mean_fitness"`
	StdFitness    float64 `csv:"std_fitness"`
	MedianFitness float64 `csv:"median_fitness"`
	P10Fitness    float64 `csv:"p10_fitness"`
	P90Fitness    float64 `csv:"p90_fitness"`

	// Breeding
	AvgMutation float64 `csv:"avg_mutation"` // mean |delta| of mutations that produced this generation

	// Episode events
	Counts
}

// FitnessStats summarizes a fitness slice.
type FitnessStats struct {
	Mean, Std     float64
	P10, P50, P90 float64
	Min, Max      float64
}

// ComputeFitnessStats calculates mean, sample standard deviation, empirical
// percentiles and range. An empty slice yields all zeros.
func ComputeFitnessStats(values []float64) FitnessStats {
	n := len(values)
	if n == 0 {
		return FitnessStats{}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	var fs FitnessStats
	if n == 1 {
		fs.Mean = sorted[0]
	} else {
		fs.Mean, fs.Std = stat.MeanStdDev(sorted, nil)
	}
	fs.P10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	fs.P50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	fs.P90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	fs.Min = sorted[0]
	fs.Max = sorted[n-1]

	if math.IsNaN(fs.Std) {
		fs.Std = 0
	}
	return fs
}

// LogValue implements slog.LogValuer for structured logging.
func (s GenerationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", s.Generation),
		slog.Int("population", s.Population),
		slog.Int("ticks", s.Ticks),
		slog.Int("score", s.Score),
		slog.Float64("best_fitness", s.BestFitness),
		slog.Float64("mean_fitness", s.MeanFitness),
		slog.Float64("std_fitness", s.StdFitness),
		slog.Float64("median_fitness", s.MedianFitness),
		slog.Float64("avg_mutation", s.AvgMutation),
		slog.Int("impulses", s.Impulses),
		slog.Int("collisions", s.Collisions),
		slog.Int("out_of_bounds", s.OutOfBounds),
		slog.Int("faults", s.Faults),
		slog.Int("passes", s.Passes),
	)
}

// LogStats logs the generation stats using slog.
func (s GenerationStats) LogStats() {
	slog.Info("generation",
		"generation", s.Generation,
		"ticks", s.Ticks,
		"score", s.Score,
		"best_fitness", s.BestFitness,
		"mean_fitness", s.MeanFitness,
		"std_fitness", s.StdFitness,
		"p90_fitness", s.P90Fitness,
		"collisions", s.Collisions,
		"out_of_bounds", s.OutOfBounds,
		"faults", s.Faults,
	)
}
