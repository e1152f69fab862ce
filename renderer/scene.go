// Package renderer draws episode frames in a raylib window.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/camera"
	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/game"
	"github.com/pthm-cable/flock/sprites"
)

// View is what every drawing pass needs to place things on screen.
type View struct {
	Cam *camera.Camera
}

// DrawOptions selects optional layers.
type DrawOptions struct {
	AllBirds  bool // draw the whole cohort, not just the lead bird
	Hitboxes  bool // outline sprite bounds
	Lookahead bool // line from the lead bird to the gap it is steering for
}

// Scene draws frames: sky, pipes, ground, birds and feathers.
type Scene struct {
	cfg   *config.Config
	sheet *sprites.Sheet
	view  View

	background *BackgroundRenderer
	feathers   *FeatherSystem
	tex        *Textures
}

// NewScene creates a scene. Call Init once the window exists.
func NewScene(cfg *config.Config, sheet *sprites.Sheet, cam *camera.Camera) *Scene {
	return &Scene{
		cfg:        cfg,
		sheet:      sheet,
		view:       View{Cam: cam},
		background: NewBackgroundRenderer(),
		feathers:   NewFeatherSystem(1),
	}
}

// Init uploads textures.
func (s *Scene) Init() {
	if s.tex == nil {
		s.tex = LoadTextures(s.sheet)
	}
}

// Unload frees textures.
func (s *Scene) Unload() {
	if s.tex != nil {
		s.tex.Unload()
		s.tex = nil
	}
}

// Observe feeds a simulated frame to the particle effects.
func (s *Scene) Observe(f game.Frame) {
	s.feathers.Observe(f, float32(s.sheet.BirdW()), float32(s.sheet.BirdH()))
}

// Draw renders f. The caller owns BeginDrawing/EndDrawing.
func (s *Scene) Draw(f game.Frame, opts DrawOptions) {
	s.Init()
	s.feathers.Update()

	s.background.Draw(s.view, float32(f.GroundY))

	pipeW := float32(s.sheet.PipeW())
	pipeH := float32(s.sheet.PipeH())
	for _, p := range f.Pipes {
		s.drawSprite(s.tex.PipeTop, float32(p.X), float32(p.Top), pipeW, pipeH, 0, rl.White)
		s.drawSprite(s.tex.PipeBottom, float32(p.X), float32(p.Bottom), pipeW, pipeH, 0, rl.White)
		if opts.Hitboxes {
			s.outline(float32(p.X), float32(p.Top), pipeW, pipeH, rl.Red)
			s.outline(float32(p.X), float32(p.Bottom), pipeW, pipeH, rl.Red)
		}
	}

	gw, gh := float32(s.sheet.GroundW), float32(s.sheet.GroundH)
	s.drawSprite(s.tex.Ground, float32(f.GroundX1), float32(f.GroundY), gw, gh, 0, rl.White)
	s.drawSprite(s.tex.Ground, float32(f.GroundX2), float32(f.GroundY), gw, gh, 0, rl.White)

	bw, bh := float32(s.sheet.BirdW()), float32(s.sheet.BirdH())
	// Back to front so the lead bird ends up on top
	for i := len(f.Birds) - 1; i >= 0; i-- {
		b := f.Birds[i]
		lead := b.Slot == f.LeadSlot
		if !lead && !opts.AllBirds {
			continue
		}
		tint := rl.White
		if !lead {
			tint = rl.Fade(rl.White, 0.45)
		}
		s.drawSprite(s.tex.Bird[b.Frame], float32(b.X), float32(b.Y), bw, bh, float32(-b.Tilt), tint)
		if opts.Hitboxes {
			s.outline(float32(b.X), float32(b.Y), bw, bh, rl.Orange)
		}
	}

	if opts.Lookahead && f.LeadSlot >= 0 && len(f.Birds) > 0 {
		s.drawLookahead(f, bw, bh)
	}

	s.feathers.Draw(s.view)
}

// drawLookahead connects the lead bird to both edges of the gap it observes.
func (s *Scene) drawLookahead(f game.Frame, bw, bh float32) {
	if f.LeadPipe < 0 || f.LeadPipe >= len(f.Pipes) {
		return
	}
	lead := f.Birds[0]
	pipe := f.Pipes[f.LeadPipe]
	cam := s.view.Cam

	fx, fy := cam.WorldToScreen(float32(lead.X)+bw/2, float32(lead.Y)+bh/2)
	from := rl.Vector2{X: fx, Y: fy}
	px := float32(pipe.X)
	for _, edge := range []struct {
		y     float64
		color rl.Color
	}{
		{pipe.GapY, rl.SkyBlue},
		{pipe.Bottom, rl.Magenta},
	} {
		tx, ty := cam.WorldToScreen(px, float32(edge.y))
		rl.DrawLineEx(from, rl.Vector2{X: tx, Y: ty}, 2, edge.color)
	}
}

func (s *Scene) drawSprite(tex rl.Texture2D, x, y, w, h, rotation float32, tint rl.Color) {
	cam := s.view.Cam
	if !cam.IsVisible(x, y, w, h) {
		return
	}
	sx, sy := cam.WorldToScreen(x+w/2, y+h/2)
	dw, dh := cam.Scale(w), cam.Scale(h)
	rl.DrawTexturePro(
		tex,
		rl.Rectangle{X: 0, Y: 0, Width: w, Height: h},
		rl.Rectangle{X: sx, Y: sy, Width: dw, Height: dh},
		rl.Vector2{X: dw / 2, Y: dh / 2},
		rotation,
		tint,
	)
}

func (s *Scene) outline(x, y, w, h float32, color rl.Color) {
	sx, sy := s.view.Cam.WorldToScreen(x, y)
	rl.DrawRectangleLinesEx(rl.Rectangle{X: sx, Y: sy, Width: s.view.Cam.Scale(w), Height: s.view.Cam.Scale(h)}, 1, color)
}
