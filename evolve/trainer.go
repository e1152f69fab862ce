// Package evolve trains populations of networks against flappy episodes:
// one episode per generation, then elitism, tournament selection, crossover
// and sparse mutation to breed the next.
package evolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/game"
	"github.com/pthm-cable/flock/neural"
	"github.com/pthm-cable/flock/sprites"
	"github.com/pthm-cable/flock/telemetry"
)

// ErrSeedSize is returned when more seed networks are offered than the
// population holds.
var ErrSeedSize = errors.New("more seed networks than population")

// Store persists training progress. storage.SQLiteStore implements it.
type Store interface {
	SaveGeneration(ctx context.Context, runID string, stats telemetry.GenerationStats) error
	SaveChampion(ctx context.Context, runID string, entry telemetry.HallEntry) error
}

// Options holds optional trainer collaborators. The zero value is valid.
type Options struct {
	RunID    string
	Output   *telemetry.OutputManager
	Store    Store
	Perf     *telemetry.PerfCollector
	Observer game.Observer // receives every tick of every generation
	Logger   *slog.Logger
	LogStats bool // log generation stats and bookmarks at info level

	// GenerationStart receives copies of the networks about to fly, indexed
	// by slot. GenerationEnd receives each generation's stats once reported.
	// Both run on the trainer's goroutine.
	GenerationStart func(generation int, nets []*neural.FFNN)
	GenerationEnd   func(stats telemetry.GenerationStats)
}

// StopReason says why Run returned.
type StopReason string

const (
	StopGenerations StopReason = "generations"
	StopThreshold   StopReason = "fitness_threshold"
)

// Summary is the outcome of a training run.
type Summary struct {
	Generations int
	Reason      StopReason
	Champion    telemetry.HallEntry
	History     []telemetry.GenerationStats
}

// Trainer owns a population and breeds it one generation at a time.
type Trainer struct {
	cfg   *config.Config
	sheet *sprites.Sheet
	rng   *rand.Rand
	seed  int64

	population []*neural.FFNN
	fitness    []float64
	generation int

	// mean |delta| of the mutations that bred the current population
	avgMutation float64

	collector *telemetry.Collector
	hall      *telemetry.HallOfFame
	bookmarks *telemetry.BookmarkDetector

	opts Options
	log  *slog.Logger
}

// NewTrainer creates a trainer with a random population. seed drives both
// breeding and the pipe stream of every generation.
func NewTrainer(cfg *config.Config, sheet *sprites.Sheet, seed int64, opts Options) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sheet == nil {
		sheet = sprites.DefaultSheet()
	}

	rng := rand.New(rand.NewSource(seed))
	n := cfg.Evolution.Population

	t := &Trainer{
		cfg:        cfg,
		sheet:      sheet,
		rng:        rng,
		seed:       seed,
		population: make([]*neural.FFNN, n),
		fitness:    make([]float64, n),
		collector:  telemetry.NewCollector(),
		hall:       telemetry.NewHallOfFame(cfg.Telemetry.HallOfFameSize, rng),
		bookmarks:  telemetry.NewBookmarkDetector(10, cfg.Telemetry.StagnationGenerations),
		opts:       opts,
		log:        opts.Logger,
	}
	if t.log == nil {
		t.log = slog.Default()
	}
	for i := range t.population {
		t.population[i] = neural.NewFFNN(rng)
	}
	return t, nil
}

// Seed replaces the first len(weights) networks, typically with champions
// from an earlier run.
func (t *Trainer) Seed(weights []neural.BrainWeights) error {
	if len(weights) > len(t.population) {
		return fmt.Errorf("%w: %d > %d", ErrSeedSize, len(weights), len(t.population))
	}
	for i, bw := range weights {
		nn := neural.NewFFNN(t.rng)
		if err := nn.UnmarshalWeights(bw); err != nil {
			return fmt.Errorf("seed network %d: %w", i, err)
		}
		t.population[i] = nn
	}
	return nil
}

// Run trains until the configured generation count or fitness threshold is
// reached, or ctx is cancelled.
func (t *Trainer) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	threshold := t.cfg.Evolution.FitnessThreshold

	for t.generation < t.cfg.Evolution.Generations {
		stats, err := t.RunGeneration(ctx)
		if err != nil {
			return t.summarize(sum), err
		}
		sum.History = append(sum.History, stats)

		if threshold > 0 && stats.BestFitness >= threshold {
			sum.Reason = StopThreshold
			t.log.Info("fitness threshold reached", "generation", stats.Generation, "best_fitness", stats.BestFitness)
			break
		}
	}
	if sum.Reason == "" {
		sum.Reason = StopGenerations
	}

	if err := t.opts.Output.WriteHallOfFame(t.hall); err != nil {
		t.log.Error("failed to write hall of fame", "error", err)
	}
	return t.summarize(sum), nil
}

func (t *Trainer) summarize(sum Summary) Summary {
	sum.Generations = t.generation
	if best, err := t.hall.Best(); err == nil {
		sum.Champion = best
	}
	return sum
}

// RunGeneration evaluates the current population in one episode, reports
// it and breeds the next population.
func (t *Trainer) RunGeneration(ctx context.Context) (telemetry.GenerationStats, error) {
	deciders := make([]game.Decider, len(t.population))
	for i, nn := range t.population {
		deciders[i] = neural.NewBrain(nn, t.cfg.World.GroundY)
	}
	clear(t.fitness)

	if t.opts.GenerationStart != nil {
		nets := make([]*neural.FFNN, len(t.population))
		for i, nn := range t.population {
			nets[i] = nn.Clone()
		}
		t.opts.GenerationStart(t.generation, nets)
	}

	episodeRNG := rand.New(rand.NewSource(t.episodeSeed()))
	ep, err := game.New(t.cfg, t.sheet, deciders, t.fitness, episodeRNG, game.Options{
		Observer:  t.opts.Observer,
		Collector: t.collector,
		Perf:      t.opts.Perf,
		Logger:    t.log,
	})
	if err != nil {
		return telemetry.GenerationStats{}, err
	}
	if err := ep.Run(ctx); err != nil {
		return telemetry.GenerationStats{}, fmt.Errorf("generation %d: %w", t.generation, err)
	}
	res := ep.Result()

	stats := t.collector.Flush(t.generation, res.Ticks, res.Score, t.fitness)
	stats.AvgMutation = t.avgMutation
	t.report(ctx, stats, res)
	if t.opts.GenerationEnd != nil {
		t.opts.GenerationEnd(stats)
	}

	t.breed()
	t.generation++
	return stats, nil
}

// episodeSeed gives every generation its own pipe stream.
func (t *Trainer) episodeSeed() int64 {
	return t.seed*1_000_003 + int64(t.generation)
}

// report offers the generation's champion to the hall of fame and fans the
// stats out to logs, CSV, bookmarks and the store.
func (t *Trainer) report(ctx context.Context, stats telemetry.GenerationStats, res game.Result) {
	best := bestSlot(t.fitness)
	entry := telemetry.HallEntry{
		Weights:    t.population[best].MarshalWeights(),
		Fitness:    t.fitness[best],
		Generation: t.generation,
		Slot:       best,
		Score:      res.Score,
		Ticks:      res.Records[best].Tick,
	}
	if entry.Ticks == 0 {
		entry.Ticks = res.Ticks
	}
	admitted := t.hall.Consider(entry)

	if t.opts.LogStats {
		stats.LogStats()
	} else {
		t.log.Debug("generation", "stats", stats)
	}

	if err := t.opts.Output.WriteGeneration(stats); err != nil {
		t.log.Error("failed to write generation", "error", err)
	}
	if t.opts.Perf != nil {
		if err := t.opts.Output.WritePerf(t.opts.Perf.Stats(), t.generation); err != nil {
			t.log.Error("failed to write perf", "error", err)
		}
	}

	for _, bm := range t.bookmarks.Check(stats) {
		if t.opts.LogStats {
			bm.LogBookmark()
		}
		if err := t.opts.Output.WriteBookmark(bm); err != nil {
			t.log.Error("failed to write bookmark", "error", err)
		}
	}

	if t.opts.Store == nil {
		return
	}
	if err := t.opts.Store.SaveGeneration(ctx, t.opts.RunID, stats); err != nil {
		t.log.Error("failed to store generation", "error", err)
	}
	if admitted {
		if err := t.opts.Store.SaveChampion(ctx, t.opts.RunID, entry); err != nil {
			t.log.Error("failed to store champion", "error", err)
		}
	}
}

// breed replaces the population with the next generation.
func (t *Trainer) breed() {
	evo := t.cfg.Evolution
	n := len(t.population)

	ranked := make([]int, n)
	for i := range ranked {
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return t.fitness[ranked[a]] > t.fitness[ranked[b]]
	})

	next := make([]*neural.FFNN, 0, n)
	for _, idx := range ranked[:evo.Elite] {
		next = append(next, t.population[idx].Clone())
	}

	var mutationSum float64
	children := 0
	for len(next) < n {
		parent := t.population[t.tournament()]

		var child *neural.FFNN
		if t.rng.Float64() < evo.CrossoverRate {
			other := t.population[t.tournament()]
			child = neural.Crossover(t.rng, parent, other)
		} else {
			child = parent.Clone()
		}

		delta := child.MutateSparse(t.rng,
			float32(evo.MutationRate), float32(evo.MutationSigma),
			float32(evo.MutationBigRate), float32(evo.MutationBigSigma))
		mutationSum += float64(delta)
		children++

		next = append(next, child)
	}

	t.avgMutation = 0
	if children > 0 {
		t.avgMutation = mutationSum / float64(children)
	}
	t.population = next
}

// tournament returns the fittest of Tournament random picks.
func (t *Trainer) tournament() int {
	best := t.rng.Intn(len(t.population))
	for i := 1; i < t.cfg.Evolution.Tournament; i++ {
		c := t.rng.Intn(len(t.population))
		if t.fitness[c] > t.fitness[best] {
			best = c
		}
	}
	return best
}

func bestSlot(fitness []float64) int {
	best := 0
	for i, f := range fitness {
		if f > fitness[best] {
			best = i
		}
	}
	return best
}

// Generation returns the number of generations evaluated.
func (t *Trainer) Generation() int { return t.generation }

// Population returns the networks that the next generation will fly.
func (t *Trainer) Population() []*neural.FFNN { return t.population }

// HallOfFame returns the champions seen so far.
func (t *Trainer) HallOfFame() *telemetry.HallOfFame { return t.hall }
