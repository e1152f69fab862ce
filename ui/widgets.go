package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Renderer handles all UI drawing with consistent styling.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel draws a panel background with border.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

// DrawSectionHeader draws a section header and returns the new Y position.
func (r *Renderer) DrawSectionHeader(x, y int32, title string) int32 {
	rl.DrawText(title, x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	return y + r.Theme.LineHeight
}

// DrawLabelValue draws a label and value on the same line.
func (r *Renderer) DrawLabelValue(x, y int32, label, value string) int32 {
	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawText(value, x+r.Theme.LabelWidth, y, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.LineHeight
}

// DrawRatioBar draws a bar for current/total, coloured low to high.
func (r *Renderer) DrawRatioBar(x, y int32, label string, current, total int, width int32) int32 {
	ratio := float32(0)
	if total > 0 {
		ratio = float32(current) / float32(total)
	}
	ratio = min(max(ratio, 0), 1)

	barX := x + r.Theme.LabelWidth
	barWidth := width - r.Theme.LabelWidth - 60

	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawRectangle(barX, y+2, barWidth, r.Theme.BarHeight, r.Theme.BarBg)

	barColor := r.Theme.BarFillHigh
	if ratio < 0.3 {
		barColor = r.Theme.BarFillLow
	}
	rl.DrawRectangle(barX, y+2, int32(float32(barWidth)*ratio), r.Theme.BarHeight, barColor)
	rl.DrawText(fmt.Sprintf("%d/%d", current, total), barX+barWidth+5, y, r.Theme.FontSize, r.Theme.ValueColor)

	return y + r.Theme.LineHeight + 2
}

// DrawSparkline plots values as a polyline inside the given box.
func (r *Renderer) DrawSparkline(x, y, width, height int32, values []float64, color rl.Color) {
	rl.DrawRectangle(x, y, width, height, r.Theme.BarBg)
	pts := sparkline(values, float32(x), float32(y), float32(width), float32(height))
	for i := 1; i < len(pts); i++ {
		rl.DrawLineV(pts[i-1], pts[i], color)
	}
}

// sparkline maps values onto the box, oldest on the left. A flat series is
// drawn along the middle.
func sparkline(values []float64, x, y, w, h float32) []rl.Vector2 {
	if len(values) == 0 {
		return nil
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	pts := make([]rl.Vector2, len(values))
	step := float32(0)
	if len(values) > 1 {
		step = w / float32(len(values)-1)
	}
	for i, v := range values {
		t := float32(0.5)
		if hi > lo {
			t = float32((v - lo) / (hi - lo))
		}
		pts[i] = rl.Vector2{X: x + step*float32(i), Y: y + h - t*h}
	}
	return pts
}
