// Package neural provides the feedforward networks that fly the birds.
package neural

import (
	"math"
	"math/rand"
)

// Network dimensions (compile-time constants for array sizing).
const (
	NumInputs  = 3 // height, distance to gap top, distance to gap bottom
	NumHidden  = 6
	NumOutputs = 1 // flap
)

// FFNN is a simple two-layer feedforward neural network.
type FFNN struct {
	W1 [NumHidden][NumInputs]float32  // input -> hidden weights
	B1 [NumHidden]float32             // hidden biases
	W2 [NumOutputs][NumHidden]float32 // hidden -> output weights
	B2 [NumOutputs]float32            // output biases
}

// NewFFNN creates a randomly initialized network.
func NewFFNN(rng *rand.Rand) *FFNN {
	nn := &FFNN{}
	// Xavier initialization
	scale1 := float32(math.Sqrt(2.0 / float64(NumInputs)))
	scale2 := float32(math.Sqrt(2.0 / float64(NumHidden)))

	for i := range nn.W1 {
		for j := range nn.W1[i] {
			nn.W1[i][j] = float32(rng.NormFloat64()) * scale1
		}
		nn.B1[i] = float32(rng.NormFloat64()) * 0.1
	}

	for i := range nn.W2 {
		for j := range nn.W2[i] {
			nn.W2[i][j] = float32(rng.NormFloat64()) * scale2
		}
		nn.B2[i] = 0
	}

	return nn
}

// Forward computes the flap activation in [-1, 1].
func (nn *FFNN) Forward(inputs [NumInputs]float32) float32 {
	var hidden [NumHidden]float32
	for i := 0; i < NumHidden; i++ {
		sum := nn.B1[i]
		for j := 0; j < NumInputs; j++ {
			sum += nn.W1[i][j] * inputs[j]
		}
		hidden[i] = tanh(sum)
	}

	sum := nn.B2[0]
	for j := 0; j < NumHidden; j++ {
		sum += nn.W2[0][j] * hidden[j]
	}
	return tanh(sum)
}

// Activations holds captured intermediate layer values.
type Activations struct {
	Inputs  []float32
	Hidden  []float32
	Outputs []float32
}

// ForwardWithCapture computes the network output and captures all layer activations.
func (nn *FFNN) ForwardWithCapture(inputs [NumInputs]float32) (float32, *Activations) {
	act := &Activations{
		Inputs:  make([]float32, NumInputs),
		Hidden:  make([]float32, NumHidden),
		Outputs: make([]float32, NumOutputs),
	}
	copy(act.Inputs, inputs[:])

	for i := 0; i < NumHidden; i++ {
		sum := nn.B1[i]
		for j := 0; j < NumInputs; j++ {
			sum += nn.W1[i][j] * inputs[j]
		}
		act.Hidden[i] = tanh(sum)
	}

	sum := nn.B2[0]
	for j := 0; j < NumHidden; j++ {
		sum += nn.W2[0][j] * act.Hidden[j]
	}
	act.Outputs[0] = tanh(sum)

	return act.Outputs[0], act
}

// Mutate perturbs weights and biases with Gaussian noise.
func (nn *FFNN) Mutate(rng *rand.Rand, strength float32) {
	for i := range nn.W1 {
		for j := range nn.W1[i] {
			nn.W1[i][j] += float32(rng.NormFloat64()) * strength
		}
		nn.B1[i] += float32(rng.NormFloat64()) * strength
	}

	for i := range nn.W2 {
		for j := range nn.W2[i] {
			nn.W2[i][j] += float32(rng.NormFloat64()) * strength
		}
		nn.B2[i] += float32(rng.NormFloat64()) * strength
	}
}

// MutateSparse applies sparse per-weight mutation.
// rate: probability each weight mutates (biases mutate at half the rate)
// sigma: standard deviation of normal perturbation
// bigRate: probability a mutation uses bigSigma instead
// Returns the average absolute delta of all applied mutations.
func (nn *FFNN) MutateSparse(rng *rand.Rand, rate, sigma, bigRate, bigSigma float32) float32 {
	biasRate := rate * 0.5

	var totalDelta float32
	var count int

	perturb := func(w *float32, p float32) {
		if rng.Float32() >= p {
			return
		}
		var delta float32
		if rng.Float32() < bigRate {
			delta = float32(rng.NormFloat64()) * bigSigma
		} else {
			delta = float32(rng.NormFloat64()) * sigma
		}
		*w += delta
		totalDelta += abs32(delta)
		count++
	}

	for i := range nn.W1 {
		for j := range nn.W1[i] {
			perturb(&nn.W1[i][j], rate)
		}
		perturb(&nn.B1[i], biasRate)
	}
	for i := range nn.W2 {
		for j := range nn.W2[i] {
			perturb(&nn.W2[i][j], rate)
		}
		perturb(&nn.B2[i], biasRate)
	}

	if count == 0 {
		return 0
	}
	return totalDelta / float32(count)
}

// Crossover builds a child taking each hidden neuron (its incoming weights,
// bias and outgoing weight) whole from one parent or the other.
func Crossover(rng *rand.Rand, a, b *FFNN) *FFNN {
	child := a.Clone()
	for i := 0; i < NumHidden; i++ {
		if rng.Intn(2) == 0 {
			continue
		}
		child.W1[i] = b.W1[i]
		child.B1[i] = b.B1[i]
		for o := 0; o < NumOutputs; o++ {
			child.W2[o][i] = b.W2[o][i]
		}
	}
	for o := 0; o < NumOutputs; o++ {
		if rng.Intn(2) == 1 {
			child.B2[o] = b.B2[o]
		}
	}
	return child
}

// abs32 returns the absolute value of x.
func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// Clone creates a deep copy of the network.
func (nn *FFNN) Clone() *FFNN {
	clone := *nn
	return &clone
}

// tanh uses a fast rational approximation avoiding float64 conversion.
// The rational form reaches exactly 1 at |x| = 3 and overshoots past it.
func tanh(x float32) float32 {
	if x >= 3 {
		return 1
	}
	if x <= -3 {
		return -1
	}
	x2 := x * x
	return x * (27 + x2) / (27 + 9*x2)
}

// BrainWeights holds flattened network weights for serialization.
type BrainWeights struct {
	W1 []float32 `json:"w1"` // [NumHidden * NumInputs]
	B1 []float32 `json:"b1"` // [NumHidden]
	W2 []float32 `json:"w2"` // [NumOutputs * NumHidden]
	B2 []float32 `json:"b2"` // [NumOutputs]
}

// MarshalWeights flattens the network weights for JSON serialization.
func (nn *FFNN) MarshalWeights() BrainWeights {
	bw := BrainWeights{
		W1: make([]float32, 0, NumHidden*NumInputs),
		B1: make([]float32, NumHidden),
		W2: make([]float32, 0, NumOutputs*NumHidden),
		B2: make([]float32, NumOutputs),
	}
	for i := range nn.W1 {
		bw.W1 = append(bw.W1, nn.W1[i][:]...)
	}
	copy(bw.B1, nn.B1[:])
	for i := range nn.W2 {
		bw.W2 = append(bw.W2, nn.W2[i][:]...)
	}
	copy(bw.B2, nn.B2[:])
	return bw
}

// UnmarshalWeights restores network weights from flattened form.
// Returns ErrShape if any slice has the wrong length.
func (nn *FFNN) UnmarshalWeights(bw BrainWeights) error {
	if len(bw.W1) != NumHidden*NumInputs || len(bw.B1) != NumHidden ||
		len(bw.W2) != NumOutputs*NumHidden || len(bw.B2) != NumOutputs {
		return ErrShape
	}
	for i := 0; i < NumHidden; i++ {
		copy(nn.W1[i][:], bw.W1[i*NumInputs:(i+1)*NumInputs])
	}
	copy(nn.B1[:], bw.B1)
	for i := 0; i < NumOutputs; i++ {
		copy(nn.W2[i][:], bw.W2[i*NumHidden:(i+1)*NumHidden])
	}
	copy(nn.B2[:], bw.B2)
	return nil
}
