// Package main provides CMA-ES optimization of the trainer's
// hyper-parameters.
package main

import (
	"math"

	"github.com/pthm-cable/flock/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Integer bool    // Rounded before use

	get func(*config.Config) float64
	set func(*config.Config, float64)
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Mutation
			{
				Name: "mutation_rate", Path: "evolution.mutation_rate", Min: 0.02, Max: 0.6,
				get: func(c *config.Config) float64 { return c.Evolution.MutationRate },
				set: func(c *config.Config, v float64) { c.Evolution.MutationRate = v },
			},
			{
				Name: "mutation_sigma", Path: "evolution.mutation_sigma", Min: 0.05, Max: 1.0,
				get: func(c *config.Config) float64 { return c.Evolution.MutationSigma },
				set: func(c *config.Config, v float64) { c.Evolution.MutationSigma = v },
			},
			{
				Name: "mutation_big_rate", Path: "evolution.mutation_big_rate", Min: 0, Max: 0.3,
				get: func(c *config.Config) float64 { return c.Evolution.MutationBigRate },
				set: func(c *config.Config, v float64) { c.Evolution.MutationBigRate = v },
			},
			{
				Name: "mutation_big_sigma", Path: "evolution.mutation_big_sigma", Min: 0.3, Max: 3.0,
				get: func(c *config.Config) float64 { return c.Evolution.MutationBigSigma },
				set: func(c *config.Config, v float64) { c.Evolution.MutationBigSigma = v },
			},
			// Selection
			{
				Name: "crossover_rate", Path: "evolution.crossover_rate", Min: 0, Max: 1,
				get: func(c *config.Config) float64 { return c.Evolution.CrossoverRate },
				set: func(c *config.Config, v float64) { c.Evolution.CrossoverRate = v },
			},
			{
				Name: "tournament", Path: "evolution.tournament", Min: 1, Max: 8, Integer: true,
				get: func(c *config.Config) float64 { return float64(c.Evolution.Tournament) },
				set: func(c *config.Config, v float64) { c.Evolution.Tournament = int(v) },
			},
			{
				Name: "elite", Path: "evolution.elite", Min: 0, Max: 10, Integer: true,
				get: func(c *config.Config) float64 { return float64(c.Evolution.Elite) },
				set: func(c *config.Config, v float64) { c.Evolution.Elite = int(v) },
			},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds and integers are whole.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := min(max(v[i], spec.Min), spec.Max)
		if spec.Integer {
			val = math.Round(val)
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg. Elitism never
// exceeds the population.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].set(cfg, v)
	}
	cfg.Evolution.Elite = min(cfg.Evolution.Elite, cfg.Evolution.Population)
}

// ExtractFromConfig reads the current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	values := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		values[i] = spec.get(cfg)
	}
	return values
}
