package components

// Flight is the bird's kinematic integrator state.
// Displacement is a parabola in Ticks, restarted by every impulse.
type Flight struct {
	Velocity float64 `inspect:"label,fmt:%.1f"` // captured at the last impulse
	Ticks    int     `inspect:"label"`          // ticks since the last impulse
	LaunchY  float64 `inspect:"label,fmt:%.0f"` // height at the last impulse
	Tilt     float64 `inspect:"angle"`          // degrees, presentation only
}

// Animation tracks the wing flap cycle. Frame selects both the drawn sprite
// and the collision mask.
type Animation struct {
	Count int `inspect:"skip"`
	Frame int `inspect:"label"`
}

// Agent links a bird to its decision function and the trainer-owned fitness
// slot. The slot is an index, never a pointer back into the trainer.
type Agent struct {
	Slot int `inspect:"label"`
}
