package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/sprites"
)

// pixelCollides checks every bird pixel against both pipe sprites directly.
func pixelCollides(bird *sprites.Mask, birdPos components.Position, pipeX float64, pipe components.Pipe, sheet *sprites.Sheet) bool {
	bx := int(math.Round(birdPos.X))
	by := int(math.Round(birdPos.Y))
	px := int(math.Round(pipeX))
	for y := 0; y < bird.H; y++ {
		for x := 0; x < bird.W; x++ {
			if !bird.Get(x, y) {
				continue
			}
			wx, wy := bx+x, by+y
			if sheet.PipeTop.Get(wx-px, wy-int(math.Round(pipe.Top))) {
				return true
			}
			if sheet.PipeBottom.Get(wx-px, wy-int(math.Round(pipe.Bottom))) {
				return true
			}
		}
	}
	return false
}

func gapPipe(gapY float64, sheet *sprites.Sheet) components.Pipe {
	return components.Pipe{
		GapY:   gapY,
		Top:    gapY - float64(sheet.PipeH()),
		Bottom: gapY + 200,
	}
}

func TestCollidesScenarios(t *testing.T) {
	sheet := sprites.DefaultSheet()
	bird := sheet.Bird[0]
	at := components.Position{X: 230, Y: 350}

	tests := []struct {
		name  string
		pipeX float64
		gapY  float64
		want  bool
	}{
		{"inside gap", 230, 300, false},
		{"gap too low", 230, 380, true},
		{"gap too high", 230, 100, true},
		{"pipe far ahead", 500, 380, false},
		{"pipe behind", 100, 380, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Collides(bird, at, tt.pipeX, gapPipe(tt.gapY, sheet), sheet)
			if got != tt.want {
				t.Errorf("Collides = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCollidesMatchesPixelReference(t *testing.T) {
	sheet := sprites.DefaultSheet()
	for frame, bird := range sheet.Bird {
		for _, gapY := range []float64{250, 300, 320} {
			pipe := gapPipe(gapY, sheet)
			for y := 230.0; y < 480; y += 7.3 {
				for x := 100.0; x < 320; x += 11 {
					pos := components.Position{X: 230, Y: y}
					got := Collides(bird, pos, x, pipe, sheet)
					want := pixelCollides(bird, pos, x, pipe, sheet)
					if got != want {
						t.Fatalf("frame %d gap %v bird y %v pipe x %v: got %v, want %v", frame, gapY, y, x, got, want)
					}
				}
			}
		}
	}
}

func TestOutOfBounds(t *testing.T) {
	const birdH = 48
	tests := []struct {
		name string
		y    float64
		want bool
	}{
		{"above top", -0.5, true},
		{"at top", 0, false},
		{"mid air", 350, false},
		{"just above ground", 681.9, false},
		{"touching ground", 682, true},
		{"below ground", 800, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OutOfBounds(components.Position{Y: tt.y}, birdH, 730); got != tt.want {
				t.Errorf("OutOfBounds(y=%v) = %v, want %v", tt.y, got, tt.want)
			}
		})
	}
}
