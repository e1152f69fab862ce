package sprites

import "fmt"

// Default sprite dimensions (2x scaled classic sprites).
const (
	BirdWidth    = 68
	BirdHeight   = 48
	PipeWidth    = 104
	PipeHeight   = 640
	GroundWidth  = 672
	GroundHeight = 224

	pipeCapHeight = 48
	pipeInset     = 4
)

// NumBirdFrames is the number of wing frames in the flap cycle.
const NumBirdFrames = 3

// Sheet is the explicit sprite bundle handed to the episode (for masks) and
// to renderers (for textures). Nothing in the simulation reads sprite state
// from anywhere else.
type Sheet struct {
	Bird       [NumBirdFrames]*Mask // wing up, level, down
	PipeTop    *Mask                // opening faces down
	PipeBottom *Mask                // opening faces up

	GroundW, GroundH int
}

// NewSheet assembles a sheet from a bottom-pipe mask; the top pipe is its
// vertical mirror. All bird frames must share one size.
func NewSheet(bird [NumBirdFrames]*Mask, pipe *Mask, groundW, groundH int) (*Sheet, error) {
	for i, f := range bird {
		if f == nil {
			return nil, fmt.Errorf("bird frame %d is missing", i)
		}
		if f.W != bird[0].W || f.H != bird[0].H {
			return nil, fmt.Errorf("bird frame %d is %dx%d, want %dx%d", i, f.W, f.H, bird[0].W, bird[0].H)
		}
	}
	if pipe == nil || pipe.W == 0 || pipe.H == 0 {
		return nil, fmt.Errorf("pipe mask is empty")
	}
	return &Sheet{
		Bird:       bird,
		PipeTop:    pipe.FlipVertical(),
		PipeBottom: pipe,
		GroundW:    groundW,
		GroundH:    groundH,
	}, nil
}

// BirdW returns the bird frame width.
func (s *Sheet) BirdW() int { return s.Bird[0].W }

// BirdH returns the bird frame height.
func (s *Sheet) BirdH() int { return s.Bird[0].H }

// PipeW returns the pipe width.
func (s *Sheet) PipeW() int { return s.PipeBottom.W }

// PipeH returns the pipe height.
func (s *Sheet) PipeH() int { return s.PipeBottom.H }

// DefaultSheet builds procedural silhouettes with the classic dimensions.
func DefaultSheet() *Sheet {
	var bird [NumBirdFrames]*Mask
	wingY := [NumBirdFrames]int{14, 24, 33}
	for i := range bird {
		bird[i] = birdMask(wingY[i])
	}
	s, err := NewSheet(bird, pipeMask(), GroundWidth, GroundHeight)
	if err != nil {
		panic(fmt.Sprintf("sprites: default sheet: %v", err))
	}
	return s
}

// birdMask draws an elliptical body, a beak and a wing centred at wingY.
func birdMask(wingY int) *Mask {
	m := NewMask(BirdWidth, BirdHeight)
	fillEllipse(m, 30, 24, 28, 19)
	// Beak
	for y := 22; y < 31; y++ {
		for x := 56; x < BirdWidth; x++ {
			m.Set(x, y, true)
		}
	}
	// Wing
	fillEllipse(m, 18, wingY, 13, 7)
	return m
}

// pipeMask draws a bottom pipe: a full-width cap over an inset shaft.
func pipeMask() *Mask {
	m := NewMask(PipeWidth, PipeHeight)
	for y := 0; y < PipeHeight; y++ {
		x0, x1 := pipeInset, PipeWidth-pipeInset
		if y < pipeCapHeight {
			x0, x1 = 0, PipeWidth
		}
		for x := x0; x < x1; x++ {
			m.Set(x, y, true)
		}
	}
	return m
}

func fillEllipse(m *Mask, cx, cy, rx, ry int) {
	for y := cy - ry; y <= cy+ry; y++ {
		for x := cx - rx; x <= cx+rx; x++ {
			dx := float64(x-cx) / float64(rx)
			dy := float64(y-cy) / float64(ry)
			if dx*dx+dy*dy <= 1 {
				m.Set(x, y, true)
			}
		}
	}
}
