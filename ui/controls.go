package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Speed limits for the simulation speed slider.
const (
	MinSpeed = 1
	MaxSpeed = 64
)

// ControlsState is what the controls panel edits.
type ControlsState struct {
	Speed  int
	Paused bool
}

// ControlsPanel renders the right-side panel: speed slider, pause button and
// overlay toggles.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Draw renders the panel and applies any edits to state and overlays. It
// returns the Y just below the panel.
func (c *ControlsPanel) Draw(state *ControlsState, overlays *OverlayRegistry) int32 {
	if !c.visible {
		return c.y
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	all := overlays.All()
	panelHeight := padding*2 + lineHeight + 30 + 40 + int32(len(all))*(lineHeight+6) + int32(len(overlays.Categories()))*lineHeight
	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	x := float32(c.x + padding)
	w := float32(c.width - padding*2)
	y := c.y + padding

	rl.DrawText(fmt.Sprintf("Speed %dx", state.Speed), int32(x), y, 16, rl.White)
	y += lineHeight + 4

	speed := gui.SliderBar(
		rl.Rectangle{X: x + 20, Y: float32(y), Width: w - 50, Height: 16},
		fmt.Sprint(MinSpeed), fmt.Sprint(MaxSpeed),
		float32(state.Speed), MinSpeed, MaxSpeed,
	)
	state.Speed = ClampSpeed(int(speed + 0.5))
	y += 26

	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: w, Height: 26}, toggleText(state.Paused, "Resume", "Pause")) {
		state.Paused = !state.Paused
	}
	y += 40

	for _, category := range overlays.Categories() {
		y = r.DrawSectionHeader(int32(x), y, categoryLabel(category))
		for _, desc := range overlays.ByCategory(category) {
			label := fmt.Sprintf("%s %s [%s]", toggleText(overlays.IsEnabled(desc.ID), "[x]", "[ ]"), desc.Name, desc.KeyLabel)
			if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: w, Height: float32(lineHeight + 2)}, label) {
				overlays.Toggle(desc.ID)
			}
			y += lineHeight + 6
		}
	}

	return c.y + panelHeight
}

// ClampSpeed limits a speed multiplier to the slider range.
func ClampSpeed(speed int) int {
	return min(max(speed, MinSpeed), MaxSpeed)
}

func toggleText(on bool, whenOn, whenOff string) string {
	if on {
		return whenOn
	}
	return whenOff
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "view":
		return "View"
	case "debug":
		return "Debug"
	default:
		return cat
	}
}
