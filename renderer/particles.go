package renderer

import (
	"math"
	"math/rand"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/game"
)

// Feather is a short-lived particle thrown off an eliminated bird.
type Feather struct {
	X, Y       float32
	VelX, VelY float32
	Life       int32
	MaxLife    int32
	Size       float32
}

// FeatherSystem turns eliminations into feather bursts by comparing
// consecutive frames.
type FeatherSystem struct {
	Particles    []Feather
	maxParticles int
	perBurst     int
	rng          *rand.Rand

	lastTick int
	prev     map[int]game.BirdFrame
}

// NewFeatherSystem creates a new feather system.
func NewFeatherSystem(seed int64) *FeatherSystem {
	return &FeatherSystem{
		Particles:    make([]Feather, 0, 500),
		maxParticles: 500,
		perBurst:     8,
		rng:          rand.New(rand.NewSource(seed)),
		prev:         make(map[int]game.BirdFrame),
	}
}

// Observe emits a burst for every bird present in the previous frame but
// missing from f. A frame with a lower tick starts a new episode.
func (s *FeatherSystem) Observe(f game.Frame, birdW, birdH float32) {
	if f.Tick > s.lastTick {
		for _, b := range f.Birds {
			delete(s.prev, b.Slot)
		}
		for _, gone := range s.prev {
			s.emit(float32(gone.X)+birdW/2, float32(gone.Y)+birdH/2)
		}
	}

	clear(s.prev)
	for _, b := range f.Birds {
		s.prev[b.Slot] = b
	}
	s.lastTick = f.Tick
}

func (s *FeatherSystem) emit(x, y float32) {
	for i := 0; i < s.perBurst && len(s.Particles) < s.maxParticles; i++ {
		angle := s.rng.Float64() * 2 * math.Pi
		speed := 1 + s.rng.Float32()*2
		life := int32(20 + s.rng.Intn(20))
		s.Particles = append(s.Particles, Feather{
			X:       x,
			Y:       y,
			VelX:    float32(math.Cos(angle)) * speed,
			VelY:    float32(math.Sin(angle)) * speed,
			Life:    life,
			MaxLife: life,
			Size:    2 + s.rng.Float32()*2,
		})
	}
}

// Update ages, moves and culls feathers.
func (s *FeatherSystem) Update() {
	alive := 0
	for i := range s.Particles {
		p := &s.Particles[i]

		p.Life--
		if p.Life <= 0 {
			continue
		}

		// Drift down with drag
		p.VelY += 0.05
		p.VelX *= 0.95
		p.VelY *= 0.95

		p.X += p.VelX
		p.Y += p.VelY

		s.Particles[alive] = s.Particles[i]
		alive++
	}
	s.Particles = s.Particles[:alive]
}

// Draw renders all feathers.
func (s *FeatherSystem) Draw(v View) {
	for i := range s.Particles {
		p := &s.Particles[i]

		lifeRatio := float32(p.Life) / float32(p.MaxLife)
		color := rl.Color{R: 250, G: 220, B: 120, A: uint8(lifeRatio * 220)}

		size := max(p.Size*lifeRatio, 0.5)
		x, y := v.Cam.WorldToScreen(p.X, p.Y)
		rl.DrawCircleV(rl.Vector2{X: x, Y: y}, v.Cam.Scale(size), color)
	}
}
