package renderer

import (
	"image"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/sprites"
)

// Sprite colours for the procedural sheet.
var (
	ColorBird   = color.NRGBA{R: 250, G: 200, B: 40, A: 255}
	ColorPipe   = color.NRGBA{R: 90, G: 180, B: 60, A: 255}
	ColorGround = color.NRGBA{R: 222, G: 216, B: 149, A: 255}
	ColorStripe = color.NRGBA{R: 160, G: 200, B: 80, A: 255}
)

// Textures holds GPU textures built from a sprite sheet. Load after the
// window exists.
type Textures struct {
	Bird       [sprites.NumBirdFrames]rl.Texture2D
	PipeTop    rl.Texture2D
	PipeBottom rl.Texture2D
	Ground     rl.Texture2D
	loaded     bool
}

// LoadTextures uploads every mask in sheet as a tinted texture.
func LoadTextures(sheet *sprites.Sheet) *Textures {
	t := &Textures{}
	for i, m := range sheet.Bird {
		t.Bird[i] = imageTexture(m.Image(ColorBird))
	}
	t.PipeTop = imageTexture(sheet.PipeTop.Image(ColorPipe))
	t.PipeBottom = imageTexture(sheet.PipeBottom.Image(ColorPipe))
	t.Ground = imageTexture(GroundImage(sheet.GroundW, sheet.GroundH))
	t.loaded = true
	return t
}

func imageTexture(img image.Image) rl.Texture2D {
	rimg := rl.NewImageFromImage(img)
	tex := rl.LoadTextureFromImage(rimg)
	rl.UnloadImage(rimg)
	return tex
}

// GroundImage draws the ground tile: a striped grass edge over sand. The
// stripe period divides the tile width so two tiles join seamlessly.
func GroundImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	const grass, period = 24, 24
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := ColorGround
			if y < grass && ((x+y)/(period/2))%2 == 0 {
				c = ColorStripe
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// Unload frees resources.
func (t *Textures) Unload() {
	if !t.loaded {
		return
	}
	for _, tex := range t.Bird {
		rl.UnloadTexture(tex)
	}
	rl.UnloadTexture(t.PipeTop)
	rl.UnloadTexture(t.PipeBottom)
	rl.UnloadTexture(t.Ground)
	t.loaded = false
}
