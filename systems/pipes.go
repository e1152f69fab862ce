package systems

import (
	"fmt"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/sprites"
)

// SpawnPipe creates a pipe pair at x with a gap top drawn uniformly from
// [gap_min, gap_max).
func SpawnPipe(rng *rand.Rand, x float64, cfg config.PipeConfig, sheet *sprites.Sheet) (components.Position, components.Pipe) {
	gapY := cfg.GapMin + rng.Intn(cfg.GapMax-cfg.GapMin)
	if gapY < cfg.GapMin || gapY >= cfg.GapMax {
		panic(fmt.Sprintf("systems: pipe gap %d outside [%d, %d)", gapY, cfg.GapMin, cfg.GapMax))
	}

	pipe := components.Pipe{
		GapY:   float64(gapY),
		Top:    float64(gapY) - float64(sheet.PipeH()),
		Bottom: float64(gapY) + cfg.Gap,
	}
	return components.Position{X: x}, pipe
}

// AdvancePipe scrolls a pipe left by the fixed pipe velocity.
func AdvancePipe(pos *components.Position, cfg config.PipeConfig) {
	pos.X -= cfg.Velocity
}

// PipeExpired reports whether the pipe's right edge has left the playfield.
func PipeExpired(pipeX float64, sheet *sprites.Sheet) bool {
	return pipeX+float64(sheet.PipeW()) < 0
}

// PipeCleared reports whether a bird at birdX is past the pipe's right edge.
func PipeCleared(pipeX, birdX float64, sheet *sprites.Sheet) bool {
	return birdX > pipeX+float64(sheet.PipeW())
}

// PipeSystem scrolls every pipe in the world. All pipes share one velocity,
// so their relative order never changes.
type PipeSystem struct {
	filter *ecs.Filter2[components.Position, components.Pipe]
}

// NewPipeSystem creates a new pipe system.
func NewPipeSystem(w *ecs.World) *PipeSystem {
	return &PipeSystem{
		filter: ecs.NewFilter2[components.Position, components.Pipe](w),
	}
}

// Update runs the pipe system.
func (s *PipeSystem) Update(cfg config.PipeConfig) {
	query := s.filter.Query()
	for query.Next() {
		pos, _ := query.Get()
		AdvancePipe(pos, cfg)
	}
}
