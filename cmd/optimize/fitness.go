package main

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/evolve"
	"github.com/pthm-cable/flock/telemetry"
)

// FitnessEvaluator trains a population per seed and scores the parameters.
type FitnessEvaluator struct {
	params      *ParamVector
	generations int
	maxTicks    int
	seeds       []int64
	baseConfig  *config.Config

	// Best run tracking
	mu             sync.Mutex
	bestFitness    float64
	bestHallOfFame *telemetry.HallOfFame
	lastQuality    float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator. Every evaluation trains for
// generations generations with episodes capped at maxTicks.
func NewFitnessEvaluator(params *ParamVector, generations, maxTicks int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		generations: generations,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// BestHallOfFame returns the hall of fame from the best evaluation.
func (fe *FitnessEvaluator) BestHallOfFame() *telemetry.HallOfFame {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestHallOfFame
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness    float64
	quality    float64
	hallOfFame *telemetry.HallOfFame
	err        error
}

// Evaluate computes fitness for a parameter vector (lower = better). A
// cancelled ctx scores +Inf so the optimizer never prefers it.
func (fe *FitnessEvaluator) Evaluate(ctx context.Context, x []float64) float64 {
	cfg := fe.configFor(x)

	// Run all seeds in parallel
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runTraining(ctx, cfg, s)
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	bestSeedFitness := math.Inf(1)
	var bestSeedHallOfFame *telemetry.HallOfFame
	for _, r := range results {
		if r.err != nil {
			return math.Inf(1)
		}
		totalFitness += r.fitness
		totalQuality += r.quality
		if r.fitness < bestSeedFitness {
			bestSeedFitness = r.fitness
			bestSeedHallOfFame = r.hallOfFame
		}
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestHallOfFame = bestSeedHallOfFame
	}
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return avgFitness
}

// configFor returns a copy of the base config with x applied.
func (fe *FitnessEvaluator) configFor(x []float64) *config.Config {
	cfg := fe.baseConfig.Clone()
	cfg.Evolution.Generations = fe.generations
	cfg.Evolution.FitnessThreshold = 0
	cfg.Episode.MaxTicks = fe.maxTicks
	fe.params.ApplyToConfig(cfg, x)
	cfg.ComputeDerived()
	return cfg
}

// runTraining trains one population from seed.
func (fe *FitnessEvaluator) runTraining(ctx context.Context, cfg *config.Config, seed int64) seedResult {
	trainer, err := evolve.NewTrainer(cfg, nil, seed, evolve.Options{
		Logger: slog.New(slog.DiscardHandler),
	})
	if err != nil {
		return seedResult{err: err}
	}
	sum, err := trainer.Run(ctx)
	if err != nil {
		return seedResult{err: err}
	}

	quality := computeQuality(sum.History)
	return seedResult{
		fitness:    -(sum.Champion.Fitness * (1.0 + 0.2*quality)),
		quality:    quality,
		hallOfFame: trainer.HallOfFame(),
	}
}

// computeQuality rewards learning early: the mean of the running best
// fitness over generations relative to the final best, in [0, 1].
func computeQuality(history []telemetry.GenerationStats) float64 {
	if len(history) == 0 {
		return 0
	}

	runningBest := history[0].BestFitness
	var sum float64
	for _, g := range history {
		runningBest = max(runningBest, g.BestFitness)
		sum += runningBest
	}
	if runningBest <= 0 {
		return 0
	}
	return clamp01(sum / float64(len(history)) / runningBest)
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}
