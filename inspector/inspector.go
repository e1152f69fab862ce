// Package inspector draws the lead bird's panel: its components, what it
// observes and its network's activations.
package inspector

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/game"
	"github.com/pthm-cable/flock/neural"
)

// Panel dimensions
const (
	PanelWidth    = 320
	PanelPadding  = 10
	HeaderHeight  = 30
	NetworkHeight = 180
)

// Panel colors
var (
	ColorPanelBg     = rl.Color{R: 30, G: 30, B: 35, A: 230}
	ColorPanelHeader = rl.Color{R: 45, G: 45, B: 55, A: 255}
	ColorPanelBorder = rl.Color{R: 70, G: 70, B: 80, A: 255}
	ColorHeaderText  = rl.Color{R: 255, G: 255, B: 255, A: 255}
	ColorSectionText = rl.Color{R: 200, G: 200, B: 220, A: 255}
)

// Section is a titled group of component fields.
type Section struct {
	Title  string
	Fields []Field
}

// Inspector renders the lead bird panel.
type Inspector struct {
	panelX, panelY int32
	threshold      float64
}

// NewInspector creates an inspector anchored at the given position.
func NewInspector(x, y int32, threshold float64) *Inspector {
	return &Inspector{panelX: x, panelY: y, threshold: threshold}
}

// SetPosition moves the panel.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.panelX, ins.panelY = x, y
}

// Sections lists what the panel shows for the lead bird of f. It is empty
// once the cohort is extinct.
func Sections(f game.Frame) []Section {
	if f.LeadSlot < 0 || len(f.Birds) == 0 {
		return nil
	}
	lead := f.Birds[0]
	return []Section{
		{Title: "Position", Fields: ExtractFields(components.Position{X: lead.X, Y: lead.Y})},
		{Title: "Flight", Fields: ExtractFields(f.LeadFlight)},
		{Title: "Observation", Fields: ExtractFields(f.Lead)},
	}
}

// Draw renders the panel for f's lead bird. nn is that bird's network and
// may be nil when the frame comes from elsewhere.
func (ins *Inspector) Draw(f game.Frame, nn *neural.FFNN) {
	sections := Sections(f)

	height := int32(HeaderHeight + PanelPadding)
	for _, s := range sections {
		height += 20
		for _, field := range s.Fields {
			height += FieldHeight(field)
		}
	}
	if nn != nil {
		height += NetworkHeight + 20
	}
	if len(sections) == 0 {
		height += 20
	}

	x, y := ins.panelX, ins.panelY
	rl.DrawRectangle(x, y, PanelWidth, height, ColorPanelBg)
	rl.DrawRectangleLinesEx(
		rl.Rectangle{X: float32(x), Y: float32(y), Width: PanelWidth, Height: float32(height)},
		1,
		ColorPanelBorder,
	)
	rl.DrawRectangle(x, y, PanelWidth, HeaderHeight, ColorPanelHeader)

	title := "LEAD BIRD"
	if f.LeadSlot >= 0 {
		title = fmt.Sprintf("LEAD BIRD #%d", f.LeadSlot)
	}
	rl.DrawText(title, x+PanelPadding, y+7, 16, ColorHeaderText)
	y += HeaderHeight + PanelPadding/2

	if len(sections) == 0 {
		rl.DrawText("no bird flying", x+PanelPadding, y, 14, ColorTextDim)
		return
	}

	for _, s := range sections {
		rl.DrawText(s.Title, x+PanelPadding, y, 14, ColorSectionText)
		y += 20
		for _, field := range s.Fields {
			y += DrawField(x+PanelPadding, y, field)
		}
	}

	if nn != nil {
		rl.DrawText("Network", x+PanelPadding, y, 14, ColorSectionText)
		y += 20
		act := neural.NewBrain(nn, f.GroundY).Capture(f.Lead)
		DrawNetworkDiagram(x+40, y, PanelWidth-50, NetworkHeight, nn, act, ins.threshold)
	}
}
