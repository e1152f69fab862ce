package game

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/systems"
)

// lookahead returns the pipe the cohort is heading for: the front pipe, or
// the second one once the lead bird has cleared the front pipe.
func (e *Episode) lookahead() (ecs.Entity, bool) {
	if len(e.pipes) == 0 {
		return ecs.Entity{}, false
	}
	if len(e.pipes) > 1 && len(e.birds) > 0 {
		leadX := e.posMap.Get(e.birds[0]).X
		if systems.PipeCleared(e.posMap.Get(e.pipes[0]).X, leadX, e.sheet) {
			return e.pipes[1], true
		}
	}
	return e.pipes[0], true
}

// observeAt builds the observation for a bird at height y.
func observeAt(y float64, pipe *components.Pipe) components.Observation {
	if pipe == nil {
		return components.Observation{Y: y}
	}
	return components.Observation{
		Y:         y,
		GapTop:    math.Abs(y - pipe.GapY),
		GapBottom: math.Abs(y - pipe.Bottom),
	}
}

// observe fills the per-bird observation and slot scratch for this tick.
func (e *Episode) observe() {
	var target *components.Pipe
	if p, ok := e.lookahead(); ok {
		target = e.pipeMap.Get(p)
	}

	e.slots = e.slots[:0]
	for i, b := range e.birds {
		e.obs[i] = observeAt(e.posMap.Get(b).Y, target)
		e.slots = append(e.slots, e.agentMap.Get(b).Slot)
	}
}
