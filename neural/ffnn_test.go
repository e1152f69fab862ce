package neural

import (
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/flock/components"
)

func TestForwardRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	nn := NewFFNN(rng)

	tests := []struct {
		name   string
		inputs [NumInputs]float32
	}{
		{"zero", [NumInputs]float32{}},
		{"typical", [NumInputs]float32{0.48, 0.07, 0.2}},
		{"huge", [NumInputs]float32{1000, -1000, 1000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := nn.Forward(tt.inputs)
			if out < -1 || out > 1 {
				t.Errorf("output out of range [-1,1]: %f", out)
			}
		})
	}
}

func TestForwardMatchesCapture(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	nn := NewFFNN(rng)
	in := [NumInputs]float32{0.3, 0.1, 0.5}

	out := nn.Forward(in)
	captured, act := nn.ForwardWithCapture(in)
	if out != captured {
		t.Errorf("Forward = %v, ForwardWithCapture = %v", out, captured)
	}
	if len(act.Inputs) != NumInputs || len(act.Hidden) != NumHidden || len(act.Outputs) != NumOutputs {
		t.Errorf("activation shapes %d/%d/%d", len(act.Inputs), len(act.Hidden), len(act.Outputs))
	}
	if act.Outputs[0] != out {
		t.Errorf("captured output %v, want %v", act.Outputs[0], out)
	}
}

func TestTanhApproximation(t *testing.T) {
	for x := float32(-5); x <= 5; x += 0.25 {
		got := float64(tanh(x))
		want := math.Tanh(float64(x))
		if math.Abs(got-want) > 0.03 {
			t.Errorf("tanh(%v) = %v, want ~%v", x, got, want)
		}
	}
}

func TestMutate(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	nn := NewFFNN(rng)
	original := nn.W1[0][0]

	nn.Mutate(rng, 0.1)

	if nn.W1[0][0] == original {
		t.Error("Mutate did not change weights")
	}
}

func TestMutateSparse(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	nn := NewFFNN(rng)
	before := *nn

	if d := nn.MutateSparse(rng, 0, 0.3, 0, 1); d != 0 {
		t.Errorf("zero rate mutated with avg delta %v", d)
	}
	if *nn != before {
		t.Error("zero rate changed weights")
	}

	d := nn.MutateSparse(rng, 1, 0.3, 0, 1)
	if d <= 0 {
		t.Errorf("full rate avg delta = %v, want > 0", d)
	}
	if *nn == before {
		t.Error("full rate left weights unchanged")
	}
}

func TestClone(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	nn := NewFFNN(rng)

	clone := nn.Clone()
	if *clone != *nn {
		t.Error("Clone has different weights")
	}

	clone.W1[0][0] = 999
	if nn.W1[0][0] == 999 {
		t.Error("Clone is not independent")
	}
}

func TestCrossoverTakesWholeNeurons(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	a := NewFFNN(rng)
	b := NewFFNN(rng)

	child := Crossover(rng, a, b)
	fromB := 0
	for i := 0; i < NumHidden; i++ {
		switch {
		case child.W1[i] == a.W1[i] && child.B1[i] == a.B1[i] && child.W2[0][i] == a.W2[0][i]:
		case child.W1[i] == b.W1[i] && child.B1[i] == b.B1[i] && child.W2[0][i] == b.W2[0][i]:
			fromB++
		default:
			t.Fatalf("neuron %d mixes parents", i)
		}
	}
	t.Logf("%d of %d neurons from second parent", fromB, NumHidden)
}

func TestWeightsRoundTripThroughJSON(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	nn := NewFFNN(rng)

	data, err := json.Marshal(nn.MarshalWeights())
	if err != nil {
		t.Fatal(err)
	}
	var bw BrainWeights
	if err := json.Unmarshal(data, &bw); err != nil {
		t.Fatal(err)
	}

	restored := &FFNN{}
	if err := restored.UnmarshalWeights(bw); err != nil {
		t.Fatalf("UnmarshalWeights: %v", err)
	}
	if *restored != *nn {
		t.Error("restored network differs")
	}
}

func TestUnmarshalWeightsRejectsShape(t *testing.T) {
	nn := &FFNN{}
	bw := BrainWeights{W1: make([]float32, 2)}
	if err := nn.UnmarshalWeights(bw); !errors.Is(err, ErrShape) {
		t.Errorf("err = %v, want ErrShape", err)
	}
}

func TestBrainDecide(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	nn := NewFFNN(rng)
	brain := NewBrain(nn, 730)

	obs := components.Observation{Y: 350, GapTop: 50, GapBottom: 150}
	action, err := brain.Decide(obs)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	want := float64(nn.Forward(Encode(obs, float32(1.0/730))))
	if action != want {
		t.Errorf("Decide = %v, want %v", action, want)
	}

	act := brain.Capture(obs)
	if math.Abs(float64(act.Inputs[0])-350.0/730) > 1e-6 {
		t.Errorf("encoded height = %v", act.Inputs[0])
	}
}

func TestDescriptorsMatchDimensions(t *testing.T) {
	if n := len(InputLabels()); n != NumInputs {
		t.Errorf("%d input labels, want %d", n, NumInputs)
	}
	if n := len(OutputLabels()); n != NumOutputs {
		t.Errorf("%d output labels, want %d", n, NumOutputs)
	}
	if _, ok := InputByID("gap_top"); !ok {
		t.Error("gap_top descriptor missing")
	}
}

func BenchmarkForward(b *testing.B) {
	rng := rand.New(rand.NewSource(42))
	nn := NewFFNN(rng)
	inputs := [NumInputs]float32{0.5, 0.5, 0.5}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		nn.Forward(inputs)
	}
}
