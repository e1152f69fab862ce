package viewer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/renderer"
	"github.com/pthm-cable/flock/ui"
)

const controlsLegend = "[Space] Pause  [,/.] Speed  [F] Fast-forward  [Tab] Panel  [Arrows/Wheel] Camera  [Home] Reset"

// Draw renders the current frame and the UI.
func (v *Viewer) Draw() {
	rl.BeginDrawing()
	defer rl.EndDrawing()
	rl.ClearBackground(rl.Color{R: 15, G: 18, B: 22, A: 255})

	snap := v.progress.snapshot(v.frame.LeadSlot)

	playW := int32(v.screenWidth) - PanelWidth
	rl.BeginScissorMode(0, 0, playW, int32(v.screenHeight))
	if v.haveFrame {
		v.scene.Draw(v.frame, renderer.DrawOptions{
			AllBirds:  v.overlays.IsEnabled(ui.OverlayAllBirds),
			Hitboxes:  v.overlays.IsEnabled(ui.OverlayHitboxes),
			Lookahead: v.overlays.IsEnabled(ui.OverlayLookahead),
		})
	} else {
		rl.DrawText("waiting for the first tick", 20, int32(v.screenHeight)/2, 20, rl.LightGray)
	}
	rl.EndScissorMode()

	v.hud.Draw(ui.HUDData{
		Title:       v.title,
		Generation:  snap.generation,
		Tick:        v.frame.Tick,
		Score:       v.frame.Score,
		Alive:       v.frame.Alive,
		Population:  v.frame.Population,
		Best:        v.frame.BestFitness,
		AllTimeBest: snap.allTimeBest,
		Speed:       v.state.Speed,
		FPS:         rl.GetFPS(),
		Paused:      v.state.Paused,
		Done:        snap.done,
	})
	if v.overlays.IsEnabled(ui.OverlayPerf) && v.perf != nil {
		v.perfPanel.Draw(v.perf.Stats())
	}

	// Side panel
	rl.DrawRectangle(playW, 0, PanelWidth, int32(v.screenHeight), rl.Color{R: 24, G: 28, B: 34, A: 255})
	v.history.Draw(snap.best, snap.mean)
	below := v.controls.Draw(&v.state, v.overlays)
	if v.overlays.IsEnabled(ui.OverlayNetwork) && v.haveFrame {
		v.inspector.SetPosition(playW+10, below+10)
		v.inspector.Draw(v.frame, snap.lead)
	}

	v.hud.DrawControls(int32(v.screenHeight), controlsLegend)
}
