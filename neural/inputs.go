package neural

import (
	"errors"

	"github.com/pthm-cable/flock/components"
)

// ErrShape is returned when serialized weights do not fit the network.
var ErrShape = errors.New("neural: weight shape mismatch")

// Encode converts an observation into network inputs. scale maps playfield
// units into roughly [0, 1] so the hidden layer does not saturate.
func Encode(obs components.Observation, scale float32) [NumInputs]float32 {
	return [NumInputs]float32{
		float32(obs.Y) * scale,
		float32(obs.GapTop) * scale,
		float32(obs.GapBottom) * scale,
	}
}

// Brain adapts a network to the episode's decision interface.
type Brain struct {
	Net   *FFNN
	Scale float32
}

// NewBrain wraps nn. Inputs are divided by height (usually the ground line).
func NewBrain(nn *FFNN, height float64) *Brain {
	return &Brain{Net: nn, Scale: float32(1 / height)}
}

// Decide implements game.Decider. A network forward pass cannot fail.
func (b *Brain) Decide(obs components.Observation) (float64, error) {
	return float64(b.Net.Forward(Encode(obs, b.Scale))), nil
}

// Capture runs the network on obs and returns every layer for display.
func (b *Brain) Capture(obs components.Observation) *Activations {
	_, act := b.Net.ForwardWithCapture(Encode(obs, b.Scale))
	return act
}
