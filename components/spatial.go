// Package components defines ECS components for the simulation.
package components

// Position represents an entity's playfield position (y grows downward).
type Position struct {
	X float64 `inspect:"label,fmt:%.0f"`
	Y float64 `inspect:"bar,max:730"`
}
