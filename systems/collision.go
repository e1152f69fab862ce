package systems

import (
	"math"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/sprites"
)

// Collides tests a bird mask against both halves of a pipe using per-pixel
// overlap. Offsets are the pipe sprite positions relative to the bird,
// rounded to whole pixels.
func Collides(bird *sprites.Mask, birdPos components.Position, pipeX float64, pipe components.Pipe, sheet *sprites.Sheet) bool {
	dx := int(math.Round(pipeX - birdPos.X))

	// Horizontal ranges apart: no pixel can coincide
	if dx >= bird.W || dx+sheet.PipeW() <= 0 {
		return false
	}

	by := math.Round(birdPos.Y)
	topDY := int(math.Round(pipe.Top) - by)
	bottomDY := int(math.Round(pipe.Bottom) - by)

	return bird.Overlaps(sheet.PipeTop, dx, topDY) || bird.Overlaps(sheet.PipeBottom, dx, bottomDY)
}

// OutOfBounds reports whether a bird has touched the ground line or flown
// above the top of the playfield.
func OutOfBounds(pos components.Position, birdHeight int, groundY float64) bool {
	return pos.Y+float64(birdHeight) >= groundY || pos.Y < 0
}
