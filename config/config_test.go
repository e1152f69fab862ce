package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	if cfg.Pipe.Gap != 200 {
		t.Errorf("pipe.gap = %v, want 200", cfg.Pipe.Gap)
	}
	if cfg.Physics.MaxFall != 16 {
		t.Errorf("physics.max_fall = %v, want 16", cfg.Physics.MaxFall)
	}
	if cfg.Derived.SpawnX != float64(cfg.Screen.Width) {
		t.Errorf("derived spawn x = %v, want screen width %d", cfg.Derived.SpawnX, cfg.Screen.Width)
	}
}

func TestLoadOverridesOnlyPresentFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("pipe:\n  velocity: 7\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Pipe.Velocity != 7 {
		t.Errorf("pipe.velocity = %v, want 7", cfg.Pipe.Velocity)
	}
	if cfg.Pipe.Gap != 200 {
		t.Errorf("pipe.gap = %v, want default 200", cfg.Pipe.Gap)
	}
}

func TestValidateRejectsMalformed(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative gap", func(c *Config) { c.Pipe.Gap = -10 }},
		{"zero pipe velocity", func(c *Config) { c.Pipe.Velocity = 0 }},
		{"inverted gap range", func(c *Config) { c.Pipe.GapMin = 450; c.Pipe.GapMax = 50 }},
		{"upward gravity impulse", func(c *Config) { c.Physics.ImpulseVelocity = 3 }},
		{"no tick cap", func(c *Config) { c.Episode.MaxTicks = 0 }},
		{"empty population", func(c *Config) { c.Evolution.Population = 0 }},
		{"derived values missing", func(c *Config) { c.Derived = DerivedConfig{} }},
		{"negative spawn x", func(c *Config) { c.Pipe.SpawnX = -5; c.ComputeDerived() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("error %v does not wrap ErrInvalid", err)
			}
		})
	}
}

func TestValidateJoinsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Pipe.Gap = 0
	cfg.Pipe.Velocity = 0

	err := cfg.Validate()
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		t.Fatalf("expected joined error, got %T", err)
	}
	if n := len(joined.Unwrap()); n != 2 {
		t.Errorf("got %d problems, want 2", n)
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Evolution.Population = 17

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Evolution.Population != 17 {
		t.Errorf("population = %d, want 17", loaded.Evolution.Population)
	}
}
