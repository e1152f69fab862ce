package inspector

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Widget colors
var (
	ColorBarBg       = rl.Color{R: 40, G: 40, B: 40, A: 255}
	ColorBarFill     = rl.Color{R: 100, G: 180, B: 100, A: 255}
	ColorBarLow      = rl.Color{R: 180, G: 80, B: 80, A: 255}
	ColorText        = rl.Color{R: 220, G: 220, B: 220, A: 255}
	ColorTextDim     = rl.Color{R: 150, G: 150, B: 150, A: 255}
	ColorAngleBg     = rl.Color{R: 50, G: 50, B: 60, A: 255}
	ColorAngleNeedle = rl.Color{R: 255, G: 200, B: 100, A: 255}
	ColorBoolOn      = rl.Color{R: 100, G: 200, B: 100, A: 255}
	ColorBoolOff     = rl.Color{R: 80, G: 80, B: 80, A: 255}
)

// DrawLabel renders a text value.
func DrawLabel(x, y int32, f Field) int32 {
	rl.DrawText(fmt.Sprintf("%s: %s", f.Name, f.Text()), x, y, 14, ColorText)
	return 18
}

// DrawBar renders a horizontal bar scaled by the field's max option.
func DrawBar(x, y int32, f Field, value float64) int32 {
	ratio := float32(min(max(value/f.Max(), 0), 1))
	barWidth, barHeight := int32(120), int32(14)

	rl.DrawText(f.Name, x, y, 14, ColorTextDim)

	barX := x + 80
	rl.DrawRectangle(barX, y, barWidth, barHeight, ColorBarBg)
	fillColor := ColorBarFill
	if ratio < 0.3 {
		fillColor = ColorBarLow
	}
	rl.DrawRectangle(barX, y, int32(float32(barWidth)*ratio), barHeight, fillColor)
	rl.DrawText(f.Text(), barX+barWidth+5, y, 14, ColorTextDim)

	return 18
}

// DrawAngle renders a dial for a tilt in degrees (positive = nose up).
func DrawAngle(x, y int32, f Field, degrees float64) int32 {
	size := int32(40)
	centerX := x + 80 + size/2
	centerY := y + size/2

	rl.DrawText(f.Name, x, y+size/2-7, 14, ColorTextDim)
	rl.DrawCircle(centerX, centerY, float32(size/2), ColorAngleBg)
	rl.DrawCircleLines(centerX, centerY, float32(size/2), ColorTextDim)

	// Screen y grows downward, so nose up is a negative angle
	rad := -degrees * math.Pi / 180
	needle := float64(size/2 - 4)
	end := rl.Vector2{
		X: float32(centerX) + float32(needle*math.Cos(rad)),
		Y: float32(centerY) + float32(needle*math.Sin(rad)),
	}
	rl.DrawLineEx(rl.Vector2{X: float32(centerX), Y: float32(centerY)}, end, 2, ColorAngleNeedle)
	rl.DrawText(fmt.Sprintf("%.0f deg", degrees), x+80+size+5, y+size/2-7, 14, ColorTextDim)

	return size + 4
}

// DrawBool renders an on/off indicator.
func DrawBool(x, y int32, name string, value bool) int32 {
	rl.DrawText(name, x, y, 14, ColorTextDim)

	indicatorX := x + 80
	indicatorSize := int32(14)
	color, text := ColorBoolOff, "OFF"
	if value {
		color, text = ColorBoolOn, "ON"
	}
	rl.DrawRectangle(indicatorX, y, indicatorSize, indicatorSize, color)
	rl.DrawText(text, indicatorX+indicatorSize+5, y, 14, color)

	return 18
}

// DrawField renders a field using its widget type and returns its height.
func DrawField(x, y int32, f Field) int32 {
	switch f.Widget {
	case WidgetBar:
		if v, ok := f.Float(); ok {
			return DrawBar(x, y, f, v)
		}
	case WidgetAngle:
		if v, ok := f.Float(); ok {
			return DrawAngle(x, y, f, v)
		}
	case WidgetBool:
		if v, ok := f.Value.(bool); ok {
			return DrawBool(x, y, f.Name, v)
		}
	}
	return DrawLabel(x, y, f)
}

// FieldHeight returns the height DrawField uses for f.
func FieldHeight(f Field) int32 {
	if f.Widget == WidgetAngle {
		if _, ok := f.Float(); ok {
			return 44
		}
	}
	return 18
}
