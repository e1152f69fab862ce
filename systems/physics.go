// Package systems contains ECS systems for the simulation.
package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/config"
)

// Displacement returns the vertical displacement for the t-th tick after an
// impulse of velocity v: d = v*t + gravity*t^2, clamped to max_fall downward,
// with rise_boost added to any upward motion.
func Displacement(v float64, t int, p config.PhysicsConfig) float64 {
	tf := float64(t)
	d := v*tf + p.Gravity*tf*tf

	// Terminal fall speed
	if d >= p.MaxFall {
		d = p.MaxFall
	}
	// Sharper rise than the raw parabola
	if d < 0 {
		d += p.RiseBoost
	}
	return d
}

// Advance integrates one tick of bird motion and updates the tilt.
// Returns the displacement applied.
func Advance(pos *components.Position, fl *components.Flight, p config.PhysicsConfig, a config.AnimationConfig) float64 {
	fl.Ticks++
	d := Displacement(fl.Velocity, fl.Ticks, p)
	pos.Y += d

	// Nose up while rising or still near the launch height, otherwise dive
	if d < 0 || pos.Y < fl.LaunchY+p.TiltWindow {
		if fl.Tilt < a.MaxRotation {
			fl.Tilt = a.MaxRotation
		}
	} else if fl.Tilt > -90 {
		fl.Tilt -= a.RotationVelocity
	}
	return d
}

// Impulse starts a new flap: upward velocity, counter reset, launch height
// recorded. Calling it twice in a tick has the same effect as once.
func Impulse(pos *components.Position, fl *components.Flight, p config.PhysicsConfig) {
	fl.Velocity = p.ImpulseVelocity
	fl.Ticks = 0
	fl.LaunchY = pos.Y
}

// Animate advances the wing cycle: up, level, down, level, repeat, each held
// for frame_ticks. A steep dive holds the level frame.
func Animate(anim *components.Animation, fl *components.Flight, a config.AnimationConfig) {
	n := a.FrameTicks
	anim.Count++

	switch {
	case anim.Count < n:
		anim.Frame = 0
	case anim.Count < n*2:
		anim.Frame = 1
	case anim.Count < n*3:
		anim.Frame = 2
	case anim.Count < n*4:
		anim.Frame = 1
	case anim.Count == n*4+1:
		anim.Frame = 0
		anim.Count = 0
	}

	if fl.Tilt <= -80 {
		anim.Frame = 1
		anim.Count = n * 2
	}
}

// PhysicsSystem advances every bird in the world.
type PhysicsSystem struct {
	filter *ecs.Filter3[components.Position, components.Flight, components.Animation]
}

// NewPhysicsSystem creates a new physics system.
func NewPhysicsSystem(w *ecs.World) *PhysicsSystem {
	return &PhysicsSystem{
		filter: ecs.NewFilter3[components.Position, components.Flight, components.Animation](w),
	}
}

// Update runs the physics system.
func (s *PhysicsSystem) Update(p config.PhysicsConfig, a config.AnimationConfig) {
	query := s.filter.Query()
	for query.Next() {
		pos, fl, anim := query.Get()
		Advance(pos, fl, p, a)
		Animate(anim, fl, a)
	}
}
