package telemetry

import "github.com/pthm-cable/flock/components"

// Counts holds event totals for one episode.
type Counts struct {
	Impulses     int `csv:"impulses" json:"impulses"`
	Collisions   int `csv:"collisions" json:"collisions"`
	OutOfBounds  int `csv:"out_of_bounds" json:"out_of_bounds"`
	Faults       int `csv:"faults" json:"faults"`
	Passes       int `csv:"passes" json:"passes"`
	PipesSpawned int `csv:"pipes_spawned" json:"pipes_spawned"`
	PipesRetired int `csv:"pipes_retired" json:"pipes_retired"`
}

// Collector accumulates episode events and produces GenerationStats.
// It is driven by the single goroutine running the episode.
type Collector struct {
	counts Counts
}

// NewCollector creates a new stats collector.
func NewCollector() *Collector {
	return &Collector{}
}

// RecordImpulse records a flap.
func (c *Collector) RecordImpulse() {
	c.counts.Impulses++
}

// RecordElimination records a bird leaving the active set.
func (c *Collector) RecordElimination(cause components.Cause) {
	switch cause {
	case components.CauseCollision:
		c.counts.Collisions++
	case components.CauseBounds:
		c.counts.OutOfBounds++
	case components.CauseFault:
		c.counts.Faults++
	}
}

// RecordPass records a pipe cleared by the cohort.
func (c *Collector) RecordPass() {
	c.counts.Passes++
}

// RecordPipeSpawn records a pipe entering the queue.
func (c *Collector) RecordPipeSpawn() {
	c.counts.PipesSpawned++
}

// RecordPipeRetire records a pipe scrolling off screen.
func (c *Collector) RecordPipeRetire() {
	c.counts.PipesRetired++
}

// Counts returns the totals so far.
func (c *Collector) Counts() Counts {
	return c.counts
}

// Flush produces GenerationStats from the episode's final fitness and
// resets the counters for the next episode.
func (c *Collector) Flush(generation, ticks, score int, fitness []float64) GenerationStats {
	fs := ComputeFitnessStats(fitness)

	stats := GenerationStats{
		Generation:    generation,
		Population:    len(fitness),
		Ticks:         ticks,
		Score:         score,
		BestFitness:   fs.Max,
		MeanFitness:   fs.Mean,
		StdFitness:    fs.Std,
		MedianFitness: fs.P50,
		P10Fitness:    fs.P10,
		P90Fitness:    fs.P90,
		Counts:        c.counts,
	}

	c.counts = Counts{}
	return stats
}
