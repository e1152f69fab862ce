package inspector

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/neural"
)

// NetworkColors for activation visualization.
var (
	ColorNodePositive = rl.Color{R: 255, G: 100, B: 100, A: 255}
	ColorNodeNegative = rl.Color{R: 100, G: 100, B: 255, A: 255}
	ColorEdgePositive = rl.Color{R: 200, G: 80, B: 80, A: 100}
	ColorEdgeNegative = rl.Color{R: 80, G: 80, B: 200, A: 100}
	ColorLabelDim     = rl.Color{R: 120, G: 120, B: 120, A: 255}
	ColorFlap         = rl.Color{R: 250, G: 200, B: 40, A: 255}
)

// layerColumn spreads n nodes evenly over a column of the given height.
func layerColumn(n int, x, top, height float32) []rl.Vector2 {
	nodes := make([]rl.Vector2, n)
	spacing := height / float32(n)
	for i := range nodes {
		nodes[i] = rl.Vector2{X: x, Y: top + spacing*(float32(i)+0.5)}
	}
	return nodes
}

// DrawNetworkDiagram renders the network with activations. threshold marks
// the output node when the bird flaps.
func DrawNetworkDiagram(x, y, width, height int32, nn *neural.FFNN, act *neural.Activations, threshold float64) {
	if nn == nil || act == nil {
		rl.DrawText("No network data", x+10, y+10, 14, ColorLabelDim)
		return
	}

	colWidth := float32(width) / 3
	nodeRadius := float32(7)
	top, h := float32(y)+10, float32(height-20)

	inputNodes := layerColumn(neural.NumInputs, float32(x)+colWidth/2, top, h)
	hiddenNodes := layerColumn(neural.NumHidden, float32(x)+colWidth*1.5, top, h)
	outputNodes := layerColumn(neural.NumOutputs, float32(x)+colWidth*2.5, top, h)

	for hi := range hiddenNodes {
		for i := range inputNodes {
			drawEdge(inputNodes[i], hiddenNodes[hi], nn.W1[hi][i])
		}
	}
	for o := range outputNodes {
		for hi := range hiddenNodes {
			drawEdge(hiddenNodes[hi], outputNodes[o], nn.W2[o][hi])
		}
	}

	inputLabels := neural.InputLabels()
	for i, pos := range inputNodes {
		drawNode(pos, nodeRadius, at(act.Inputs, i))
		if i < len(inputLabels) {
			w := rl.MeasureText(inputLabels[i], 10)
			rl.DrawText(inputLabels[i], int32(pos.X-nodeRadius)-w-4, int32(pos.Y)-5, 10, ColorLabelDim)
		}
	}

	for i, pos := range hiddenNodes {
		drawNode(pos, nodeRadius, at(act.Hidden, i))
	}

	outputLabels := neural.OutputLabels()
	for i, pos := range outputNodes {
		v := at(act.Outputs, i)
		drawNode(pos, nodeRadius+2, v)
		if float64(v) > threshold {
			rl.DrawCircleLinesV(pos, nodeRadius+6, ColorFlap)
		}
		if i < len(outputLabels) {
			rl.DrawText(outputLabels[i], int32(pos.X+nodeRadius+8), int32(pos.Y)-5, 10, ColorLabelDim)
		}
	}
}

func at(values []float32, i int) float32 {
	if i < len(values) {
		return values[i]
	}
	return 0
}

// drawNode renders a single neuron node.
func drawNode(pos rl.Vector2, radius, activation float32) {
	rl.DrawCircleV(pos, radius, activationColor(activation))
	rl.DrawCircleLinesV(pos, radius, rl.Color{R: 100, G: 100, B: 100, A: 255})
}

// drawEdge renders a connection; faint weights are skipped.
func drawEdge(from, to rl.Vector2, weight float32) {
	mag := float32(math.Abs(float64(weight)))
	if mag < 0.1 {
		return
	}

	color := ColorEdgePositive
	if weight < 0 {
		color = ColorEdgeNegative
	}
	color.A = uint8(min(40+int(mag*40), 150))

	rl.DrawLineEx(from, to, min(max(mag*1.5, 0.5), 3), color)
}

// activationColor maps [-1, 1] onto blue, gray, red.
func activationColor(activation float32) rl.Color {
	t := min(float32(math.Abs(float64(activation))), 1)
	hot, cold := uint8(60+t*195), uint8(60-t*30)
	if activation > 0 {
		return rl.Color{R: hot, G: cold, B: cold, A: 255}
	}
	return rl.Color{R: cold, G: cold, B: hot, A: 255}
}
