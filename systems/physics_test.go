package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/config"
)

func testPhysics() config.PhysicsConfig {
	return config.PhysicsConfig{
		Gravity:         1.5,
		ImpulseVelocity: -10.5,
		MaxFall:         16,
		RiseBoost:       -2,
		TiltWindow:      50,
	}
}

func testAnimation() config.AnimationConfig {
	return config.AnimationConfig{MaxRotation: 25, RotationVelocity: 20, FrameTicks: 5}
}

func TestDisplacement(t *testing.T) {
	p := testPhysics()
	tests := []struct {
		name string
		v    float64
		t    int
		want float64
	}{
		{"first tick of free fall", 0, 1, 1.5},
		{"second tick of free fall", 0, 2, 6},
		{"clamped exactly", 0, 4, 16},
		{"far past clamp", 0, 100, 16},
		{"first tick after flap", -10.5, 1, -11},
		{"rising after flap", -10.5, 3, -20},
		{"flap apex", -10.5, 7, 0},
		{"falling after apex", -10.5, 8, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Displacement(tt.v, tt.t, p)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Displacement(%v, %d) = %v, want %v", tt.v, tt.t, got, tt.want)
			}
		})
	}
}

func TestDisplacementNeverExceedsMaxFall(t *testing.T) {
	p := testPhysics()
	for _, v := range []float64{-10.5, 0, 3, 20} {
		for tick := 0; tick < 200; tick++ {
			if d := Displacement(v, tick, p); d > p.MaxFall {
				t.Fatalf("Displacement(%v, %d) = %v exceeds %v", v, tick, d, p.MaxFall)
			}
		}
	}
}

func TestFreeFallIsMonotone(t *testing.T) {
	p := testPhysics()
	prev := Displacement(0, 0, p)
	for tick := 1; tick < 50; tick++ {
		d := Displacement(0, tick, p)
		if d < prev {
			t.Fatalf("tick %d: displacement %v < previous %v", tick, d, prev)
		}
		prev = d
	}
}

func TestImpulseResetsIntegrator(t *testing.T) {
	p := testPhysics()
	a := testAnimation()
	pos := components.Position{X: 230, Y: 350}
	fl := components.Flight{}

	for i := 0; i < 10; i++ {
		Advance(&pos, &fl, p, a)
	}
	if fl.Ticks != 10 {
		t.Fatalf("ticks = %d, want 10", fl.Ticks)
	}

	Impulse(&pos, &fl, p)
	if fl.Ticks != 0 || fl.Velocity != p.ImpulseVelocity || fl.LaunchY != pos.Y {
		t.Errorf("after impulse: %+v at y=%v", fl, pos.Y)
	}

	// A second impulse in the same tick is indistinguishable from one
	once := fl
	Impulse(&pos, &fl, p)
	if fl != once {
		t.Errorf("double impulse = %+v, want %+v", fl, once)
	}

	before := pos.Y
	d := Advance(&pos, &fl, p, a)
	if d != -11 || pos.Y != before-11 {
		t.Errorf("first tick after impulse moved %v to %v", d, pos.Y)
	}
	if fl.Tilt != a.MaxRotation {
		t.Errorf("tilt while rising = %v, want %v", fl.Tilt, a.MaxRotation)
	}
}

func TestTiltDivesAfterWindow(t *testing.T) {
	p := testPhysics()
	a := testAnimation()
	pos := components.Position{Y: 100}
	fl := components.Flight{LaunchY: 100, Tilt: 25}

	for i := 0; i < 40; i++ {
		Advance(&pos, &fl, p, a)
	}
	if fl.Tilt > -80 {
		t.Errorf("tilt after long fall = %v, want <= -80", fl.Tilt)
	}
	if fl.Tilt < -90-a.RotationVelocity {
		t.Errorf("tilt %v overshot the floor", fl.Tilt)
	}
}

func TestAnimateCycle(t *testing.T) {
	a := testAnimation()
	anim := components.Animation{}
	fl := components.Flight{Tilt: 25}

	want := []int{
		0, 0, 0, 0, // counts 1-4
		1, 1, 1, 1, 1, // 5-9
		2, 2, 2, 2, 2, // 10-14
		1, 1, 1, 1, 1, // 15-19
		1, // 20 holds
		0, // 21 wraps
	}
	for i, w := range want {
		Animate(&anim, &fl, a)
		if anim.Frame != w {
			t.Fatalf("step %d: frame = %d, want %d", i+1, anim.Frame, w)
		}
	}
	if anim.Count != 0 {
		t.Errorf("count after wrap = %d, want 0", anim.Count)
	}
}

func TestAnimateHoldsLevelWhileDiving(t *testing.T) {
	a := testAnimation()
	anim := components.Animation{}
	fl := components.Flight{Tilt: -85}

	for i := 0; i < 30; i++ {
		Animate(&anim, &fl, a)
		if anim.Frame != 1 {
			t.Fatalf("step %d: frame = %d while diving", i, anim.Frame)
		}
	}
}
