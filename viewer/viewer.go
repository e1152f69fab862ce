// Package viewer is the raylib window: it paces training against the
// render loop and draws frames, panels and controls.
package viewer

import (
	"sync"
	"time"

	"github.com/pthm-cable/flock/camera"
	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/game"
	"github.com/pthm-cable/flock/inspector"
	"github.com/pthm-cable/flock/neural"
	"github.com/pthm-cable/flock/renderer"
	"github.com/pthm-cable/flock/sprites"
	"github.com/pthm-cable/flock/telemetry"
	"github.com/pthm-cable/flock/ui"
)

// Side panel width, added to the playfield to size the window.
const PanelWidth = 340

// frameBudget bounds how long one render frame waits for simulation ticks.
const frameBudget = 12 * time.Millisecond

// Progress is training state shared with the trainer goroutine.
type Progress struct {
	mu          sync.Mutex
	generation  int
	nets        []*neural.FFNN
	best, mean  []float64
	allTimeBest float64
	done        bool
}

// GenerationStart records the networks of the generation about to fly.
func (p *Progress) GenerationStart(generation int, nets []*neural.FFNN) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generation = generation
	p.nets = nets
}

// GenerationEnd appends a generation to the fitness history.
func (p *Progress) GenerationEnd(stats telemetry.GenerationStats) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.best = append(p.best, stats.BestFitness)
	p.mean = append(p.mean, stats.MeanFitness)
	if len(p.best) == 1 || stats.BestFitness > p.allTimeBest {
		p.allTimeBest = stats.BestFitness
	}
}

// Finish marks training as over.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done = true
}

// snapshot copies what one render frame needs.
type snapshot struct {
	generation  int
	lead        *neural.FFNN
	best, mean  []float64
	allTimeBest float64
	done        bool
}

func (p *Progress) snapshot(leadSlot int) snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := snapshot{
		generation:  p.generation,
		best:        p.best,
		mean:        p.mean,
		allTimeBest: p.allTimeBest,
		done:        p.done,
	}
	if leadSlot >= 0 && leadSlot < len(p.nets) {
		s.lead = p.nets[leadSlot]
	}
	return s
}

// Viewer owns the window state. All methods must run on the main thread.
type Viewer struct {
	cfg   *config.Config
	title string

	cam       *camera.Camera
	scene     *renderer.Scene
	hud       *ui.HUD
	perfPanel *ui.PerfPanel
	history   *ui.FitnessPanel
	controls  *ui.ControlsPanel
	overlays  *ui.OverlayRegistry
	inspector *inspector.Inspector

	pacer    *ui.Pacer
	progress *Progress
	perf     *telemetry.PerfCollector

	state        ui.ControlsState
	frame        game.Frame
	haveFrame    bool
	screenWidth  float32
	screenHeight float32
}

// New creates a viewer for an already opened window. perf may be nil.
func New(cfg *config.Config, sheet *sprites.Sheet, title string, pacer *ui.Pacer, progress *Progress, perf *telemetry.PerfCollector) *Viewer {
	w := float32(cfg.Screen.Width + PanelWidth)
	h := float32(cfg.Screen.Height)
	cam := camera.New(float32(cfg.Screen.Width), h, cfg.Derived.ScreenW32, cfg.Derived.ScreenH32)

	v := &Viewer{
		cfg:          cfg,
		title:        title,
		cam:          cam,
		scene:        renderer.NewScene(cfg, sheet, cam),
		hud:          ui.NewHUD(),
		perfPanel:    ui.NewPerfPanel(10, 150, 260),
		history:      ui.NewFitnessPanel(0, 0, PanelWidth-20, 120),
		controls:     ui.NewControlsPanel(0, 0, PanelWidth-20),
		overlays:     ui.NewOverlayRegistry(),
		inspector:    inspector.NewInspector(0, 0, cfg.Decision.Threshold),
		pacer:        pacer,
		progress:     progress,
		perf:         perf,
		state:        ui.ControlsState{Speed: 1},
		screenWidth:  w,
		screenHeight: h,
	}
	v.layout()
	return v
}

// layout places the side panels to the right of the playfield.
func (v *Viewer) layout() {
	x := int32(v.screenWidth) - PanelWidth + 10
	v.history.SetPosition(x, 10)
	v.controls.SetPosition(x, 140)
}

// Update handles input and pulls simulated frames.
func (v *Viewer) Update() {
	v.handleInput()
	if v.perf != nil {
		v.perf.RecordFrame()
	}

	if v.state.Paused {
		return
	}
	if f, n := v.pacer.Take(v.state.Speed, frameBudget); n > 0 {
		v.frame = f
		v.haveFrame = true
		v.scene.Observe(f)
	}
}

// Unload releases GPU resources.
func (v *Viewer) Unload() {
	v.scene.Unload()
}
