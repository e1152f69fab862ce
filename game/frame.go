package game

import "github.com/pthm-cable/flock/components"

// BirdFrame is a drawable bird.
type BirdFrame struct {
	Slot  int     `json:"slot"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Tilt  float64 `json:"tilt"`
	Frame int     `json:"frame"`
}

// PipeFrame is a drawable pipe pair.
type PipeFrame struct {
	X      float64 `json:"x"`
	GapY   float64 `json:"gap_y"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Passed bool    `json:"passed"`
}

// Frame is an immutable snapshot of the episode after a tick. Renderers and
// spectators only ever see frames, never the world.
type Frame struct {
	Tick       int   `json:"tick"`
	Score      int   `json:"score"`
	Alive      int   `json:"alive"`
	Population int   `json:"population"`
	State      State `json:"state"`

	Birds []BirdFrame `json:"birds"`
	Pipes []PipeFrame `json:"pipes"`

	GroundX1 float64 `json:"ground_x1"`
	GroundX2 float64 `json:"ground_x2"`
	GroundY  float64 `json:"ground_y"`

	// Lead bird and what it currently sees; LeadSlot is -1 once extinct
	LeadSlot    int                    `json:"lead_slot"`
	LeadPipe    int                    `json:"lead_pipe"` // index into Pipes of the observed pair
	Lead        components.Observation `json:"lead"`
	LeadFlight  components.Flight      `json:"-"`
	BestFitness float64                `json:"best_fitness"`
}

// Frame builds a snapshot of the current state.
func (e *Episode) Frame() Frame {
	f := Frame{
		Tick:       e.tick,
		Score:      e.score,
		Alive:      len(e.birds),
		Population: len(e.deciders),
		State:      e.state,
		Birds:      make([]BirdFrame, 0, len(e.birds)),
		Pipes:      make([]PipeFrame, 0, len(e.pipes)),
		GroundX1:   e.ground.X1,
		GroundX2:   e.ground.X2,
		GroundY:    e.ground.Y,
		LeadSlot:   -1,
		LeadPipe:   -1,
	}

	for _, b := range e.birds {
		pos := e.posMap.Get(b)
		f.Birds = append(f.Birds, BirdFrame{
			Slot:  e.agentMap.Get(b).Slot,
			X:     pos.X,
			Y:     pos.Y,
			Tilt:  e.flightMap.Get(b).Tilt,
			Frame: e.animMap.Get(b).Frame,
		})
	}

	for _, p := range e.pipes {
		pipe := e.pipeMap.Get(p)
		f.Pipes = append(f.Pipes, PipeFrame{
			X:      e.posMap.Get(p).X,
			GapY:   pipe.GapY,
			Top:    pipe.Top,
			Bottom: pipe.Bottom,
			Passed: pipe.Passed,
		})
	}

	if len(e.birds) > 0 {
		lead := e.birds[0]
		var target *components.Pipe
		if p, ok := e.lookahead(); ok {
			target = e.pipeMap.Get(p)
			for i, q := range e.pipes {
				if q == p {
					f.LeadPipe = i
				}
			}
		}
		f.LeadSlot = e.agentMap.Get(lead).Slot
		f.Lead = observeAt(e.posMap.Get(lead).Y, target)
		f.LeadFlight = *e.flightMap.Get(lead)
	}

	for i, v := range e.fitness {
		if i == 0 || v > f.BestFitness {
			f.BestFitness = v
		}
	}

	return f
}
