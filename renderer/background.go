package renderer

import rl "github.com/gen2brain/raylib-go/raylib"

// BackgroundRenderer renders the sky as a vertical gradient with a band of
// distant hills above the ground line.
type BackgroundRenderer struct {
	top, bottom rl.Color
	hills       rl.Color
}

// NewBackgroundRenderer creates a background renderer with the default palette.
func NewBackgroundRenderer() *BackgroundRenderer {
	return &BackgroundRenderer{
		top:    rl.Color{R: 78, G: 192, B: 202, A: 255},
		bottom: rl.Color{R: 200, G: 236, B: 240, A: 255},
		hills:  rl.Color{R: 120, G: 200, B: 130, A: 255},
	}
}

// Draw fills the visible playfield down to groundY.
func (b *BackgroundRenderer) Draw(v View, groundY float32) {
	x0, y0 := v.Cam.WorldToScreen(0, 0)
	w := v.Cam.Scale(v.Cam.WorldW)
	h := v.Cam.Scale(groundY)
	rl.DrawRectangleGradientV(int32(x0), int32(y0), int32(w), int32(h), b.top, b.bottom)

	// Hills: a row of overlapping circles clipped by the ground strip
	r := v.Cam.Scale(60)
	_, gy := v.Cam.WorldToScreen(0, groundY)
	for i := float32(0); i*90 < v.Cam.WorldW+90; i++ {
		cx, _ := v.Cam.WorldToScreen(i*90+30, 0)
		rl.DrawCircleV(rl.Vector2{X: cx, Y: gy + r*0.4}, r, b.hills)
	}
}
