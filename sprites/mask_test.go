package sprites

import (
	"image"
	"image/color"
	"testing"
)

// overlapReference is the naive per-pixel overlap used to check the packed version.
func overlapReference(a, b *Mask, dx, dy int) bool {
	for y := 0; y < a.H; y++ {
		for x := 0; x < a.W; x++ {
			if a.Get(x, y) && b.Get(x-dx, y-dy) {
				return true
			}
		}
	}
	return false
}

func TestOverlapRectangles(t *testing.T) {
	a := RectMask(10, 10)
	b := RectMask(10, 10)

	tests := []struct {
		name   string
		dx, dy int
		want   bool
	}{
		{"same place", 0, 0, true},
		{"offset 5,5", 5, 5, true},
		{"offset 20,20", 20, 20, false},
		{"touching edge", 10, 0, false},
		{"one pixel in", 9, 9, true},
		{"negative offset", -9, -9, true},
		{"negative clear", -10, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Overlaps(b, tt.dx, tt.dy); got != tt.want {
				t.Errorf("Overlaps(%d,%d) = %v, want %v", tt.dx, tt.dy, got, tt.want)
			}
			if ref := overlapReference(a, b, tt.dx, tt.dy); ref != tt.want {
				t.Errorf("reference(%d,%d) = %v, want %v", tt.dx, tt.dy, ref, tt.want)
			}
		})
	}
}

func TestOverlapReturnsCoincidentPixel(t *testing.T) {
	a := NewMask(10, 10)
	a.Set(7, 8, true)
	b := NewMask(4, 4)
	b.Set(2, 3, true)

	x, y, ok := a.Overlap(b, 5, 5)
	if !ok {
		t.Fatal("expected overlap")
	}
	if x != 7 || y != 8 {
		t.Errorf("overlap at (%d,%d), want (7,8)", x, y)
	}
}

func TestOverlapIrregularShapesMatchReference(t *testing.T) {
	sheet := DefaultSheet()
	bird := sheet.Bird[1]

	// Sweep a wide band of offsets across both pipe masks, crossing word boundaries.
	for _, pipe := range []*Mask{sheet.PipeTop, sheet.PipeBottom} {
		for dx := -120; dx <= 80; dx += 7 {
			for dy := -660; dy <= 60; dy += 11 {
				got := bird.Overlaps(pipe, dx, dy)
				want := overlapReference(bird, pipe, dx, dy)
				if got != want {
					t.Fatalf("offset (%d,%d): packed=%v reference=%v", dx, dy, got, want)
				}
			}
		}
	}
}

func TestCornerDoesNotCollide(t *testing.T) {
	// Bounding boxes overlap in the corner but the ellipse does not reach it.
	bird := DefaultSheet().Bird[1]
	block := RectMask(4, 4)
	if bird.Overlaps(block, 0, 0) {
		t.Error("top-left corner should be empty on an elliptical bird")
	}
	if !bird.Overlaps(block, 28, 22) {
		t.Error("centre of the bird should collide")
	}
}

func TestFlipVertical(t *testing.T) {
	m := NewMask(3, 4)
	m.Set(1, 0, true)
	f := m.FlipVertical()
	if !f.Get(1, 3) || f.Get(1, 0) {
		t.Error("flip did not mirror the row")
	}
	if f.Count() != 1 {
		t.Errorf("count = %d, want 1", f.Count())
	}
}

func TestFromImageThreshold(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{A: 255})
	img.Set(1, 0, color.NRGBA{A: 100})

	m := FromImage(img, 127)
	if !m.Get(0, 0) {
		t.Error("opaque pixel should be occupied")
	}
	if m.Get(1, 0) {
		t.Error("translucent pixel should be empty")
	}

	round := FromImage(m.Image(color.White), 127)
	if round.Count() != 1 || !round.Get(0, 0) {
		t.Error("Image/FromImage round trip lost pixels")
	}
}

func TestNewSheetRejectsMismatchedFrames(t *testing.T) {
	frames := [NumBirdFrames]*Mask{RectMask(4, 4), RectMask(4, 4), RectMask(5, 4)}
	if _, err := NewSheet(frames, RectMask(2, 2), 10, 10); err == nil {
		t.Error("expected error for mismatched bird frames")
	}
}

func TestDefaultSheetDimensions(t *testing.T) {
	s := DefaultSheet()
	if s.BirdW() != BirdWidth || s.BirdH() != BirdHeight {
		t.Errorf("bird = %dx%d", s.BirdW(), s.BirdH())
	}
	if s.PipeW() != PipeWidth || s.PipeH() != PipeHeight {
		t.Errorf("pipe = %dx%d", s.PipeW(), s.PipeH())
	}
	// Cap sits at the gap side of each pipe.
	if !s.PipeBottom.Get(0, 0) || s.PipeBottom.Get(0, PipeHeight-1) {
		t.Error("bottom pipe cap should be at the top")
	}
	if !s.PipeTop.Get(0, PipeHeight-1) || s.PipeTop.Get(0, 0) {
		t.Error("top pipe cap should be at the bottom")
	}
}
