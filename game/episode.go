// Package game runs flappy episodes: a cohort of birds, each flown by an
// external decision function, against a shared stream of pipes.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/sprites"
	"github.com/pthm-cable/flock/systems"
	"github.com/pthm-cable/flock/telemetry"
)

var (
	// ErrTerminal is returned by Step once the episode has ended.
	ErrTerminal = errors.New("episode has ended")
	// ErrPopulation is returned when deciders and fitness slots disagree.
	ErrPopulation = errors.New("invalid population")
)

// State is the episode lifecycle state.
type State uint8

const (
	Running State = iota
	Extinct       // every bird eliminated
	Capped        // tick limit reached
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Extinct:
		return "extinct"
	case Capped:
		return "capped"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "running":
		*s = Running
	case "extinct":
		*s = Extinct
	case "capped":
		*s = Capped
	default:
		return fmt.Errorf("unknown episode state %q", text)
	}
	return nil
}

// Decider maps an observation to an action. The bird flaps when the action
// exceeds the decision threshold. Implementations used with parallel
// decisions must not share mutable state.
type Decider interface {
	Decide(obs components.Observation) (float64, error)
}

// DeciderFunc adapts a function to the Decider interface.
type DeciderFunc func(obs components.Observation) (float64, error)

// Decide calls f(obs).
func (f DeciderFunc) Decide(obs components.Observation) (float64, error) {
	return f(obs)
}

// Observer receives a snapshot after every tick. It must not block for long.
type Observer func(Frame)

// Observers fans a frame out to every non-nil observer, in order. It returns
// nil when there is nothing to call.
func Observers(obs ...Observer) Observer {
	var live []Observer
	for _, o := range obs {
		if o != nil {
			live = append(live, o)
		}
	}
	switch len(live) {
	case 0:
		return nil
	case 1:
		return live[0]
	}
	return func(f Frame) {
		for _, o := range live {
			o(f)
		}
	}
}

// Options holds optional episode collaborators. The zero value is valid.
type Options struct {
	Observer  Observer
	Collector *telemetry.Collector
	Perf      *telemetry.PerfCollector
	Logger    *slog.Logger
}

// AgentRecord describes how one bird's episode ended.
type AgentRecord struct {
	Slot    int              `json:"slot"`
	Cause   components.Cause `json:"cause"`
	Tick    int              `json:"tick"` // tick of elimination, 0 while flying
	Flaps   int              `json:"flaps"`
	Fault   string           `json:"fault,omitempty"`
	Fitness float64          `json:"fitness"`
}

// Result is the outcome of a finished (or cancelled) episode.
type Result struct {
	State   State
	Ticks   int
	Score   int
	Fitness []float64
	Records []AgentRecord
	Events  telemetry.Counts
}

// decision is one bird's output for the current tick.
type decision struct {
	action float64
	flap   bool
	fault  error
}

// Episode owns the world for one run of a cohort.
type Episode struct {
	cfg      *config.Config
	sheet    *sprites.Sheet
	rng      *rand.Rand
	deciders []Decider
	fitness  []float64 // trainer-owned, only ever added to
	deltas   []float64 // this tick's fitness changes, applied at tick end

	world *ecs.World

	birdMapper *ecs.Map4[
		components.Position,
		components.Flight,
		components.Animation,
		components.Agent,
	]
	pipeMapper *ecs.Map2[components.Position, components.Pipe]

	posMap    *ecs.Map1[components.Position]
	flightMap *ecs.Map1[components.Flight]
	animMap   *ecs.Map1[components.Animation]
	agentMap  *ecs.Map1[components.Agent]
	pipeMap   *ecs.Map1[components.Pipe]

	physics *systems.PhysicsSystem
	pipeSys *systems.PipeSystem
	ground  *systems.Ground

	birds []ecs.Entity // living birds in slot order
	pipes []ecs.Entity // active pipes, left to right

	// Per-tick scratch indexed like birds
	slots     []int
	obs       []components.Observation
	decisions []decision
	causes    []components.Cause

	records  []AgentRecord
	tick     int
	score    int
	state    State
	parallel *parallelState

	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	observer  Observer
	log       *slog.Logger
}

// New creates an episode for len(deciders) birds. fitness must have the same
// length; the episode only ever adds to it.
func New(cfg *config.Config, sheet *sprites.Sheet, deciders []Decider, fitness []float64, rng *rand.Rand, opts Options) (*Episode, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(deciders) == 0 {
		return nil, fmt.Errorf("%w: no deciders", ErrPopulation)
	}
	if len(deciders) != len(fitness) {
		return nil, fmt.Errorf("%w: %d deciders but %d fitness slots", ErrPopulation, len(deciders), len(fitness))
	}
	for i, d := range deciders {
		if d == nil {
			return nil, fmt.Errorf("%w: decider %d is nil", ErrPopulation, i)
		}
	}
	if sheet == nil {
		sheet = sprites.DefaultSheet()
	}

	world := ecs.NewWorld()
	n := len(deciders)

	e := &Episode{
		cfg:      cfg,
		sheet:    sheet,
		rng:      rng,
		deciders: deciders,
		fitness:  fitness,
		deltas:   make([]float64, n),
		world:    world,
		birdMapper: ecs.NewMap4[
			components.Position,
			components.Flight,
			components.Animation,
			components.Agent,
		](world),
		pipeMapper: ecs.NewMap2[components.Position, components.Pipe](world),
		posMap:     ecs.NewMap1[components.Position](world),
		flightMap:  ecs.NewMap1[components.Flight](world),
		animMap:    ecs.NewMap1[components.Animation](world),
		agentMap:   ecs.NewMap1[components.Agent](world),
		pipeMap:    ecs.NewMap1[components.Pipe](world),
		physics:    systems.NewPhysicsSystem(world),
		pipeSys:    systems.NewPipeSystem(world),
		ground:     systems.NewGround(cfg.World.GroundY, sheet.GroundW, cfg.Ground.Velocity),
		birds:      make([]ecs.Entity, 0, n),
		slots:      make([]int, 0, n),
		obs:        make([]components.Observation, n),
		decisions:  make([]decision, n),
		causes:     make([]components.Cause, n),
		records:    make([]AgentRecord, n),
		collector:  opts.Collector,
		perf:       opts.Perf,
		observer:   opts.Observer,
		log:        opts.Logger,
	}
	if e.collector == nil {
		e.collector = telemetry.NewCollector()
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	if cfg.Episode.ParallelDecisions {
		e.parallel = newParallelState()
	}

	e.spawnCohort()
	e.spawnPipe(cfg.Pipe.InitialX)

	return e, nil
}

// Step advances the episode by one tick. It returns ErrTerminal once the
// episode has ended and never touches fitness again after that.
func (e *Episode) Step() error {
	if e.state != Running {
		return ErrTerminal
	}
	cfg := e.cfg
	e.tick++
	clear(e.deltas)
	e.startTick()

	// 1. Observation, against one lookahead pipe for the whole cohort
	e.phase(telemetry.PhaseObserve)
	e.observe()

	// 2. Decision, collected for every bird before any flap is applied
	e.phase(telemetry.PhaseDecide)
	e.decideAll()
	e.applyDecisions()

	// 3. Physics
	e.phase(telemetry.PhasePhysics)
	e.physics.Update(cfg.Physics, cfg.Animation)
	for _, b := range e.birds {
		e.deltas[e.agentMap.Get(b).Slot] += cfg.Fitness.SurvivalReward
	}

	// 4. Collision and bounds
	e.phase(telemetry.PhaseCollision)
	e.checkCollisions()

	// 5. Pass detection
	e.phase(telemetry.PhasePasses)
	passed := e.detectPasses()

	// 6. Pipe lifecycle
	e.phase(telemetry.PhasePipes)
	e.pipeSys.Update(cfg.Pipe)
	for i := 0; i < passed; i++ {
		e.spawnPipe(cfg.Derived.SpawnX)
	}
	e.retirePipes()
	e.ground.Move()

	e.phase(telemetry.PhaseFitness)
	for i, d := range e.deltas {
		e.fitness[i] += d
	}

	// 7. Termination
	switch {
	case len(e.birds) == 0:
		e.state = Extinct
	case e.tick >= cfg.Episode.MaxTicks:
		e.state = Capped
	}
	e.endTick()

	if e.state != Running {
		e.finish()
	}
	if e.observer != nil {
		e.observer(e.Frame())
	}
	return nil
}

// Run steps until the episode ends or ctx is cancelled. Cancellation is
// checked between ticks and leaves the episode Running and consistent.
func (e *Episode) Run(ctx context.Context) error {
	defer e.Close()
	for e.state == Running {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Close stops any decision workers. The episode can still be stepped.
func (e *Episode) Close() {
	if e.parallel != nil {
		e.parallel.stopWorkers()
	}
}

// Result returns the episode's current outcome. Fitness aliases the slice
// passed to New.
func (e *Episode) Result() Result {
	records := make([]AgentRecord, len(e.records))
	copy(records, e.records)
	for i := range records {
		records[i].Fitness = e.fitness[i]
	}
	return Result{
		State:   e.state,
		Ticks:   e.tick,
		Score:   e.score,
		Fitness: e.fitness,
		Records: records,
		Events:  e.collector.Counts(),
	}
}

// State returns the lifecycle state.
func (e *Episode) State() State { return e.state }

// Tick returns the number of ticks simulated.
func (e *Episode) Tick() int { return e.tick }

// Score returns the number of pipes cleared.
func (e *Episode) Score() int { return e.score }

// Alive returns the number of birds still flying.
func (e *Episode) Alive() int { return len(e.birds) }

// Population returns the cohort size.
func (e *Episode) Population() int { return len(e.deciders) }

// RunEpisode builds an episode for deciders with a fresh fitness slice and a
// seeded RNG, runs it to completion and returns the result.
func RunEpisode(ctx context.Context, cfg *config.Config, sheet *sprites.Sheet, deciders []Decider, seed int64, opts Options) (Result, error) {
	fitness := make([]float64, len(deciders))
	ep, err := New(cfg, sheet, deciders, fitness, rand.New(rand.NewSource(seed)), opts)
	if err != nil {
		return Result{}, err
	}
	if err := ep.Run(ctx); err != nil {
		return ep.Result(), err
	}
	return ep.Result(), nil
}

func (e *Episode) finish() {
	e.log.Debug("episode_end",
		"state", e.state.String(),
		"ticks", e.tick,
		"score", e.score,
	)
}

func (e *Episode) startTick() {
	if e.perf != nil {
		e.perf.StartTick()
	}
}

func (e *Episode) phase(name string) {
	if e.perf != nil {
		e.perf.StartPhase(name)
	}
}

func (e *Episode) endTick() {
	if e.perf != nil {
		e.perf.EndTick()
	}
}
