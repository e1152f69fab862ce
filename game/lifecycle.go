package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/systems"
)

// spawnCohort creates one bird per decider, all at the start position.
func (e *Episode) spawnCohort() {
	w := e.cfg.World
	for slot := range e.deciders {
		pos := components.Position{X: w.BirdX, Y: w.BirdY}
		fl := components.Flight{LaunchY: w.BirdY}
		anim := components.Animation{}
		agent := components.Agent{Slot: slot}

		e.birds = append(e.birds, e.birdMapper.NewEntity(&pos, &fl, &anim, &agent))
		e.records[slot] = AgentRecord{Slot: slot}
	}
}

// spawnPipe appends a pipe at x to the right end of the queue.
func (e *Episode) spawnPipe(x float64) {
	pos, pipe := systems.SpawnPipe(e.rng, x, e.cfg.Pipe, e.sheet)
	e.pipes = append(e.pipes, e.pipeMapper.NewEntity(&pos, &pipe))
	e.collector.RecordPipeSpawn()
}

// checkCollisions marks birds hitting a pipe (penalized) or leaving the
// playfield (not penalized), then removes them.
func (e *Episode) checkCollisions() {
	cfg := e.cfg
	birdH := e.sheet.BirdH()

	for i, b := range e.birds {
		pos := e.posMap.Get(b)
		mask := e.sheet.Bird[e.animMap.Get(b).Frame]

		for _, p := range e.pipes {
			if systems.Collides(mask, *pos, e.posMap.Get(p).X, *e.pipeMap.Get(p), e.sheet) {
				e.causes[i] = components.CauseCollision
				e.deltas[e.agentMap.Get(b).Slot] += cfg.Fitness.CollisionPenalty
				break
			}
		}

		if e.causes[i] == components.CauseNone && systems.OutOfBounds(*pos, birdH, cfg.World.GroundY) {
			e.causes[i] = components.CauseBounds
		}
	}

	e.compactBirds()
}

// compactBirds removes every bird with a recorded cause. Marking and removal
// are separate passes so no entity is removed while others are inspected.
func (e *Episode) compactBirds() {
	n := len(e.birds)
	kept := e.birds[:0]

	for i := 0; i < n; i++ {
		b := e.birds[i]
		cause := e.causes[i]
		if cause == components.CauseNone {
			kept = append(kept, b)
			continue
		}

		rec := &e.records[e.agentMap.Get(b).Slot]
		rec.Cause = cause
		rec.Tick = e.tick
		e.collector.RecordElimination(cause)
		e.world.RemoveEntity(b)
	}

	clear(e.causes[:n])
	e.birds = kept
}

// detectPasses marks every unpassed pipe the cohort has flown beyond, scores
// it and rewards every living bird once per pipe. Returns the number passed.
func (e *Episode) detectPasses() int {
	if len(e.birds) == 0 {
		return 0
	}

	frontX := e.posMap.Get(e.birds[0]).X
	for _, b := range e.birds[1:] {
		frontX = max(frontX, e.posMap.Get(b).X)
	}

	passed := 0
	for _, p := range e.pipes {
		pipe := e.pipeMap.Get(p)
		if pipe.Passed || !systems.PipeCleared(e.posMap.Get(p).X, frontX, e.sheet) {
			continue
		}

		pipe.Passed = true
		e.score++
		passed++
		e.collector.RecordPass()

		for _, b := range e.birds {
			e.deltas[e.agentMap.Get(b).Slot] += e.cfg.Fitness.PassBonus
		}
	}
	return passed
}

// retirePipes removes pipes whose right edge has scrolled off screen.
func (e *Episode) retirePipes() {
	var expired []ecs.Entity
	kept := e.pipes[:0]

	for _, p := range e.pipes {
		if systems.PipeExpired(e.posMap.Get(p).X, e.sheet) {
			expired = append(expired, p)
			continue
		}
		kept = append(kept, p)
	}
	e.pipes = kept

	for _, p := range expired {
		e.world.RemoveEntity(p)
		e.collector.RecordPipeRetire()
	}
}
