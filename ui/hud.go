package ui

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/systems"
	"github.com/pthm-cable/flock/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title       string
	Generation  int
	Tick        int
	Score       int
	Alive       int
	Population  int
	Best        float64 // best fitness this episode
	AllTimeBest float64 // best fitness in the hall of fame
	Speed       int
	FPS         int32
	Paused      bool
	Done        bool // training finished; the window only replays the last frame
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Lines returns the HUD text lines.
func (d HUDData) Lines() []string {
	return []string{
		fmt.Sprintf("Gen %d | Tick %s | Score %d", d.Generation, humanize.Comma(int64(d.Tick)), d.Score),
		fmt.Sprintf("Best %.1f | All-time %.1f", d.Best, d.AllTimeBest),
		fmt.Sprintf("Speed %dx | FPS %d", d.Speed, d.FPS),
	}
}

// Status returns the run state label.
func (d HUDData) Status() string {
	switch {
	case d.Done:
		return "DONE"
	case d.Paused:
		return "PAUSED"
	default:
		return "Training"
	}
}

// Draw renders the HUD in the top-left corner.
func (h *HUD) Draw(data HUDData) {
	r := h.renderer
	x, y := int32(10), int32(10)

	rl.DrawText(data.Title, x, y, 20, rl.White)
	y += 24

	for _, line := range data.Lines() {
		rl.DrawText(line, x, y, 16, rl.RayWhite)
		y += 18
	}
	y = r.DrawRatioBar(x, y, "Alive", data.Alive, data.Population, 260)
	rl.DrawText(data.Status(), x, y, 16, rl.Yellow)

	// Current score, large and centred
	score := fmt.Sprintf("%d", data.Score)
	w := rl.MeasureText(score, 48)
	rl.DrawText(score, int32(rl.GetScreenWidth())/2-w/2, 60, 48, rl.White)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.DarkGray)
}

// PerfPanel renders per-phase tick timings.
type PerfPanel struct {
	renderer *Renderer
	registry *systems.SystemRegistry
	x, y     int32
	width    int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y, width int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		registry: systems.NewSystemRegistry(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// PerfLine is one row of the perf panel.
type PerfLine struct {
	Category string
	Phase    string
	Name     string
	Avg      time.Duration
	Pct      float64
}

// PerfLines lists sampled phases grouped by category, in registration order.
// Phases the registry does not know are appended under "other".
func PerfLines(stats telemetry.PerfStats, reg *systems.SystemRegistry) []PerfLine {
	var lines []PerfLine
	known := make(map[string]bool)
	for _, cat := range reg.Categories() {
		for _, info := range reg.ByCategory(cat) {
			known[info.ID] = true
			avg, ok := stats.PhaseAvg[info.ID]
			if !ok {
				continue
			}
			lines = append(lines, PerfLine{Category: cat, Phase: info.ID, Name: info.Name, Avg: avg, Pct: stats.PhasePct[info.ID]})
		}
	}
	for _, id := range slices.Sorted(maps.Keys(stats.PhaseAvg)) {
		if known[id] {
			continue
		}
		lines = append(lines, PerfLine{Category: "other", Phase: id, Name: reg.GetName(id), Avg: stats.PhaseAvg[id], Pct: stats.PhasePct[id]})
	}
	return lines
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	lines := PerfLines(stats, p.registry)
	groups := 0
	for i, l := range lines {
		if i == 0 || l.Category != lines[i-1].Category {
			groups++
		}
	}
	height := int32(len(lines)+groups+3)*r.Theme.LineHeight + r.Theme.Padding*2
	r.DrawPanel(p.x, p.y, p.width, height)

	x := p.x + r.Theme.Padding
	y := r.DrawSectionHeader(x, p.y+r.Theme.Padding, "Tick Phases")
	y = r.DrawLabelValue(x, y, "Tick", stats.AvgTickDuration.Round(time.Microsecond).String())
	y = r.DrawLabelValue(x, y, "Ticks/s", humanize.Comma(int64(stats.TicksPerSecond)))

	for i, l := range lines {
		if i == 0 || l.Category != lines[i-1].Category {
			rl.DrawText(l.Category, x, y, r.Theme.FontSize, rl.Gray)
			y += r.Theme.LineHeight
		}
		color := r.Theme.LabelColor
		switch {
		case l.Pct > 40:
			color = rl.Red
		case l.Pct > 20:
			color = rl.Orange
		}
		rl.DrawText(
			fmt.Sprintf("  %-10s %8s %5.1f%%", l.Name, l.Avg.Round(time.Microsecond), l.Pct),
			x, y, r.Theme.FontSize, color,
		)
		y += r.Theme.LineHeight
	}
}

// FitnessPanel plots best and mean fitness per generation.
type FitnessPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	height   int32
}

// NewFitnessPanel creates a new fitness history panel.
func NewFitnessPanel(x, y, width, height int32) *FitnessPanel {
	return &FitnessPanel{renderer: NewRenderer(), x: x, y: y, width: width, height: height}
}

// SetPosition updates the panel position.
func (f *FitnessPanel) SetPosition(x, y int32) {
	f.x = x
	f.y = y
}

// Draw renders the history. best and mean must have equal length.
func (f *FitnessPanel) Draw(best, mean []float64) {
	r := f.renderer
	r.DrawPanel(f.x, f.y, f.width, f.height)
	pad := r.Theme.Padding
	y := r.DrawSectionHeader(f.x+pad, f.y+pad, "Fitness")
	if len(best) == 0 {
		rl.DrawText("waiting for first generation", f.x+pad, y, r.Theme.FontSize, r.Theme.LabelColor)
		return
	}
	plotH := f.height - (y - f.y) - pad
	r.DrawSparkline(f.x+pad, y, f.width-pad*2, plotH, best, rl.Gold)
	r.DrawSparkline(f.x+pad, y, f.width-pad*2, plotH, mean, rl.SkyBlue)
}
