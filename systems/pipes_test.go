package systems

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/sprites"
)

func testPipeConfig() config.PipeConfig {
	return config.PipeConfig{Gap: 200, Velocity: 5, GapMin: 50, GapMax: 450, InitialX: 700}
}

func TestSpawnPipeGeometry(t *testing.T) {
	cfg := testPipeConfig()
	sheet := sprites.DefaultSheet()
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		pos, pipe := SpawnPipe(rng, 700, cfg, sheet)
		if pos.X != 700 {
			t.Fatalf("x = %v, want 700", pos.X)
		}
		if pipe.GapY < 50 || pipe.GapY >= 450 {
			t.Fatalf("gap %v outside [50, 450)", pipe.GapY)
		}
		if pipe.Top != pipe.GapY-float64(sheet.PipeH()) {
			t.Fatalf("top = %v for gap %v", pipe.Top, pipe.GapY)
		}
		if pipe.Bottom-pipe.GapY != cfg.Gap {
			t.Fatalf("bottom - gap = %v, want %v", pipe.Bottom-pipe.GapY, cfg.Gap)
		}
		if pipe.Passed {
			t.Fatal("new pipe already passed")
		}
	}
}

func TestSpawnPipeIsSeeded(t *testing.T) {
	cfg := testPipeConfig()
	sheet := sprites.DefaultSheet()
	a := rand.New(rand.NewSource(42))
	b := rand.New(rand.NewSource(42))

	for i := 0; i < 20; i++ {
		_, pa := SpawnPipe(a, 500, cfg, sheet)
		_, pb := SpawnPipe(b, 500, cfg, sheet)
		if pa != pb {
			t.Fatalf("draw %d differs: %+v vs %+v", i, pa, pb)
		}
	}
}

func TestPipeScrollAndRetire(t *testing.T) {
	cfg := testPipeConfig()
	sheet := sprites.DefaultSheet()
	pos := components.Position{X: 700}

	for i := 0; i < 40; i++ {
		AdvancePipe(&pos, cfg)
	}
	if pos.X != 500 {
		t.Fatalf("x after 40 ticks = %v, want 500", pos.X)
	}

	for i := 40; i < 160; i++ {
		if PipeExpired(pos.X, sheet) {
			t.Fatalf("expired early at tick %d, x=%v", i, pos.X)
		}
		AdvancePipe(&pos, cfg)
	}
	if pos.X != -100 {
		t.Fatalf("x after 160 ticks = %v, want -100", pos.X)
	}

	// The 104-wide pipe still shows 4 units at x=-100; one more tick retires it
	if right := pos.X + float64(sheet.PipeW()); right != 4 || PipeExpired(pos.X, sheet) {
		t.Fatalf("at tick 160 right edge = %v expired = %v, want 4 and false", right, PipeExpired(pos.X, sheet))
	}
	AdvancePipe(&pos, cfg)
	if !PipeExpired(pos.X, sheet) {
		t.Errorf("not expired at tick 161, right edge %v", pos.X+float64(sheet.PipeW()))
	}
}

func TestPipeCleared(t *testing.T) {
	sheet := sprites.DefaultSheet()
	w := float64(sheet.PipeW())

	tests := []struct {
		name   string
		pipeX  float64
		birdX  float64
		passed bool
	}{
		{"ahead", 500, 230, false},
		{"overlapping", 200, 230, false},
		{"right edge level", 230 - w, 230, false},
		{"just past", 229 - w, 230, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PipeCleared(tt.pipeX, tt.birdX, sheet); got != tt.passed {
				t.Errorf("PipeCleared(%v, %v) = %v, want %v", tt.pipeX, tt.birdX, got, tt.passed)
			}
		})
	}
}
