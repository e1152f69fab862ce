package ui

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pthm-cable/flock/game"
)

// Pacer couples a simulation goroutine to the render loop. Throttled, the
// simulation blocks after every tick until the window takes the frame, so
// the speed slider sets ticks per rendered frame. Unthrottled, frames the
// window has not taken yet are dropped and training runs at full speed.
type Pacer struct {
	ctx         context.Context
	frames      chan game.Frame
	unthrottled atomic.Bool
	dropped     atomic.Uint64
}

// NewPacer creates a pacer. Cancelling ctx releases a blocked simulation.
func NewPacer(ctx context.Context) *Pacer {
	return &Pacer{ctx: ctx, frames: make(chan game.Frame, 1)}
}

// Observer returns the episode observer that feeds the pacer.
func (p *Pacer) Observer() game.Observer {
	return func(f game.Frame) {
		if p.unthrottled.Load() {
			select {
			case p.frames <- f:
			default:
				p.dropped.Add(1)
			}
			return
		}
		select {
		case p.frames <- f:
		case <-p.ctx.Done():
		}
	}
}

// SetThrottled switches between paced and full-speed simulation.
func (p *Pacer) SetThrottled(on bool) {
	p.unthrottled.Store(!on)
}

// Throttled reports whether the simulation is paced by the window.
func (p *Pacer) Throttled() bool {
	return !p.unthrottled.Load()
}

// Dropped returns how many frames were skipped while unthrottled.
func (p *Pacer) Dropped() uint64 {
	return p.dropped.Load()
}

// Take receives up to n frames and returns the newest. Only the first frame
// is taken without waiting; later ones are waited for until budget elapses.
func (p *Pacer) Take(n int, budget time.Duration) (game.Frame, int) {
	var last game.Frame
	if n <= 0 {
		return last, 0
	}

	select {
	case last = <-p.frames:
	default:
		return last, 0
	}

	timer := time.NewTimer(budget)
	defer timer.Stop()

	got := 1
	for got < n {
		select {
		case f := <-p.frames:
			last = f
			got++
		case <-timer.C:
			return last, got
		case <-p.ctx.Done():
			return last, got
		}
	}
	return last, got
}
