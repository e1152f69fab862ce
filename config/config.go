// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	World     WorldConfig     `yaml:"world"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Animation AnimationConfig `yaml:"animation"`
	Pipe      PipeConfig      `yaml:"pipe"`
	Ground    GroundConfig    `yaml:"ground"`
	Fitness   FitnessConfig   `yaml:"fitness"`
	Decision  DecisionConfig  `yaml:"decision"`
	Episode   EpisodeConfig   `yaml:"episode"`
	Evolution EvolutionConfig `yaml:"evolution"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Spectate  SpectateConfig  `yaml:"spectate"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings. The playfield is the screen.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds playfield geometry.
type WorldConfig struct {
	GroundY float64 `yaml:"ground_y"` // Top of the ground strip; birds touching it are out
	BirdX   float64 `yaml:"bird_x"`   // Fixed horizontal position of every bird
	BirdY   float64 `yaml:"bird_y"`   // Starting height of every bird
}

// PhysicsConfig holds the bird integrator constants.
type PhysicsConfig struct {
	Gravity         float64 `yaml:"gravity"`          // Quadratic term: d = v*t + gravity*t^2
	ImpulseVelocity float64 `yaml:"impulse_velocity"` // Velocity set by a flap (negative = up)
	MaxFall         float64 `yaml:"max_fall"`         // Terminal downward displacement per tick
	RiseBoost       float64 `yaml:"rise_boost"`       // Added to negative displacement
	TiltWindow      float64 `yaml:"tilt_window"`      // Stay nose-up while within this many units below launch height
}

// AnimationConfig holds presentation-only bird orientation parameters.
type AnimationConfig struct {
	MaxRotation      float64 `yaml:"max_rotation"`      // Nose-up tilt in degrees
	RotationVelocity float64 `yaml:"rotation_velocity"` // Degrees per tick while diving
	FrameTicks       int     `yaml:"frame_ticks"`       // Ticks per wing frame
}

// PipeConfig holds obstacle parameters.
type PipeConfig struct {
	Gap      float64 `yaml:"gap"`       // Vertical opening between top and bottom pipe
	Velocity float64 `yaml:"velocity"`  // Leftward units per tick
	GapMin   int     `yaml:"gap_min"`   // Inclusive lower bound for the gap's top edge
	GapMax   int     `yaml:"gap_max"`   // Exclusive upper bound for the gap's top edge
	InitialX float64 `yaml:"initial_x"` // X of the first pipe of every episode
	SpawnX   float64 `yaml:"spawn_x"`   // X of later pipes (0 = screen width)
}

// GroundConfig holds the scrolling base parameters.
type GroundConfig struct {
	Velocity float64 `yaml:"velocity"`
}

// FitnessConfig holds per-agent fitness deltas.
type FitnessConfig struct {
	SurvivalReward   float64 `yaml:"survival_reward"`   // Per surviving agent per tick
	CollisionPenalty float64 `yaml:"collision_penalty"` // Applied once when a bird hits a pipe
	PassBonus        float64 `yaml:"pass_bonus"`        // Granted to every living bird per pipe cleared
}

// DecisionConfig holds the action threshold.
type DecisionConfig struct {
	Threshold float64 `yaml:"threshold"` // Flap when action > threshold
}

// EpisodeConfig holds episode control parameters.
type EpisodeConfig struct {
	MaxTicks          int  `yaml:"max_ticks"`          // Tick cap; the episode ends Capped
	ParallelDecisions bool `yaml:"parallel_decisions"` // Fan decisions out to workers (pure deciders only)
}

// EvolutionConfig holds trainer parameters.
type EvolutionConfig struct {
	Population       int     `yaml:"population"`
	Generations      int     `yaml:"generations"`
	Elite            int     `yaml:"elite"`             // Champions copied unchanged
	Tournament       int     `yaml:"tournament"`        // Tournament size for parent selection
	CrossoverRate    float64 `yaml:"crossover_rate"`    // Probability a child has two parents
	MutationRate     float64 `yaml:"mutation_rate"`     // Per-weight mutation probability
	MutationSigma    float64 `yaml:"mutation_sigma"`    // Normal perturbation sigma
	MutationBigRate  float64 `yaml:"mutation_big_rate"` // Probability a mutation is large
	MutationBigSigma float64 `yaml:"mutation_big_sigma"`
	FitnessThreshold float64 `yaml:"fitness_threshold"` // Stop once best fitness reaches this (0 = never)
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	HallOfFameSize        int `yaml:"hall_of_fame_size"`
	StagnationGenerations int `yaml:"stagnation_generations"` // Generations without improvement before a bookmark
}

// SpectateConfig holds websocket spectator parameters.
type SpectateConfig struct {
	EveryTicks int `yaml:"every_ticks"` // Publish one frame every N ticks
	Buffer     int `yaml:"buffer"`      // Frames queued before dropping
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenW32 float32 // Screen.Width as float32
	ScreenH32 float32 // Screen.Height as float32
	SpawnX    float64 // Effective pipe spawn X
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are broken: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. The result is validated.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.ComputeDerived()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ComputeDerived calculates values derived from loaded config.
// Call it again after mutating fields programmatically.
func (c *Config) ComputeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	// New pipes enter at the right edge unless told otherwise
	c.Derived.SpawnX = c.Pipe.SpawnX
	if c.Derived.SpawnX == 0 {
		c.Derived.SpawnX = float64(c.Screen.Width)
	}
}

// Validate reports every invalid setting, joined into one error.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		bad("screen must have positive size, got %dx%d", c.Screen.Width, c.Screen.Height)
	}
	if c.World.GroundY <= 0 {
		bad("world.ground_y must be positive, got %v", c.World.GroundY)
	}
	if c.World.BirdY < 0 || c.World.BirdY >= c.World.GroundY {
		bad("world.bird_y must lie in [0, ground_y), got %v", c.World.BirdY)
	}
	if c.Physics.MaxFall <= 0 {
		bad("physics.max_fall must be positive, got %v", c.Physics.MaxFall)
	}
	if c.Physics.ImpulseVelocity >= 0 {
		bad("physics.impulse_velocity must be negative (upward), got %v", c.Physics.ImpulseVelocity)
	}
	if c.Pipe.Gap <= 0 {
		bad("pipe.gap must be positive, got %v", c.Pipe.Gap)
	}
	if c.Pipe.Velocity <= 0 {
		bad("pipe.velocity must be positive, got %v", c.Pipe.Velocity)
	}
	if c.Pipe.GapMin >= c.Pipe.GapMax {
		bad("pipe.gap_min (%d) must be below pipe.gap_max (%d)", c.Pipe.GapMin, c.Pipe.GapMax)
	}
	if c.Ground.Velocity < 0 {
		bad("ground.velocity must not be negative, got %v", c.Ground.Velocity)
	}
	if c.Episode.MaxTicks <= 0 {
		bad("episode.max_ticks must be positive, got %d", c.Episode.MaxTicks)
	}
	if c.Animation.FrameTicks <= 0 {
		bad("animation.frame_ticks must be positive, got %d", c.Animation.FrameTicks)
	}
	if c.Evolution.Population <= 0 {
		bad("evolution.population must be positive, got %d", c.Evolution.Population)
	}
	if c.Evolution.Elite < 0 || c.Evolution.Elite > c.Evolution.Population {
		bad("evolution.elite must lie in [0, population], got %d", c.Evolution.Elite)
	}
	if c.Evolution.Tournament <= 0 {
		bad("evolution.tournament must be positive, got %d", c.Evolution.Tournament)
	}
	if c.Derived.SpawnX <= 0 {
		bad("derived pipe spawn x must be positive, got %v (ComputeDerived not called?)", c.Derived.SpawnX)
	}
	if c.Spectate.EveryTicks <= 0 {
		bad("spectate.every_ticks must be positive, got %d", c.Spectate.EveryTicks)
	}

	return errors.Join(errs...)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// YAML returns the configuration encoded as YAML.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
