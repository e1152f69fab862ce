package camera

import (
	"math"
	"testing"
)

const eps = 1e-4

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < eps
}

func TestNewFitsWorld(t *testing.T) {
	tests := []struct {
		name         string
		vw, vh       float32
		wantZoom     float32
		wantOriginX  float32 // screen X of world (0, 0)
		wantOriginY  float32
	}{
		{"exact", 500, 800, 1, 0, 0},
		{"tall window letterboxes vertically", 500, 1000, 1, 0, 100},
		{"wide window letterboxes horizontally", 1000, 800, 1, 250, 0},
		{"half size", 250, 400, 0.5, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := New(tt.vw, tt.vh, 500, 800)
			if !near(cam.Zoom, tt.wantZoom) {
				t.Errorf("zoom = %v, want %v", cam.Zoom, tt.wantZoom)
			}
			sx, sy := cam.WorldToScreen(0, 0)
			if !near(sx, tt.wantOriginX) || !near(sy, tt.wantOriginY) {
				t.Errorf("origin at (%v, %v), want (%v, %v)", sx, sy, tt.wantOriginX, tt.wantOriginY)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	cam := New(700, 900, 500, 800)
	cam.SetZoom(2)
	cam.Pan(40, -30)

	points := [][2]float32{{0, 0}, {230, 350}, {499, 799}, {250, 400}}
	for _, p := range points {
		sx, sy := cam.WorldToScreen(p[0], p[1])
		wx, wy := cam.ScreenToWorld(sx, sy)
		if !near(wx, p[0]) || !near(wy, p[1]) {
			t.Errorf("round trip (%v, %v) -> (%v, %v)", p[0], p[1], wx, wy)
		}
	}
}

func TestZoomClamps(t *testing.T) {
	cam := New(500, 800, 500, 800)

	cam.SetZoom(0.1)
	if !near(cam.Zoom, cam.MinZoom) {
		t.Errorf("zoom below fit = %v, want %v", cam.Zoom, cam.MinZoom)
	}
	cam.ZoomBy(100)
	if !near(cam.Zoom, cam.MaxZoom) {
		t.Errorf("zoom above max = %v, want %v", cam.Zoom, cam.MaxZoom)
	}
}

func TestPanStaysInsideWorld(t *testing.T) {
	cam := New(500, 800, 500, 800)
	cam.SetZoom(2)

	cam.Pan(-10000, -10000)
	minX, minY, _, _ := cam.VisibleWorldBounds()
	if !near(minX, 0) || !near(minY, 0) {
		t.Errorf("view top-left = (%v, %v), want (0, 0)", minX, minY)
	}

	cam.Pan(10000, 10000)
	_, _, maxX, maxY := cam.VisibleWorldBounds()
	if !near(maxX, 500) || !near(maxY, 800) {
		t.Errorf("view bottom-right = (%v, %v), want (500, 800)", maxX, maxY)
	}

	// At fit zoom the world cannot be panned
	cam.Reset()
	cam.Pan(100, 100)
	if !near(cam.X, 250) || !near(cam.Y, 400) {
		t.Errorf("fit view moved to (%v, %v)", cam.X, cam.Y)
	}
}

func TestResizeRefits(t *testing.T) {
	cam := New(500, 800, 500, 800)
	cam.Resize(250, 400)
	if !near(cam.MinZoom, 0.5) || !near(cam.Zoom, 1) {
		t.Errorf("after shrink min %v zoom %v, want 0.5 and 1", cam.MinZoom, cam.Zoom)
	}
	cam.Resize(1000, 1600)
	if !near(cam.Zoom, 2) {
		t.Errorf("after grow zoom = %v, want 2", cam.Zoom)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(500, 800, 500, 800)
	cam.SetZoom(2)
	cam.Pan(-10000, -10000) // view covers world [0,250] x [0,400]

	tests := []struct {
		name       string
		x, y, w, h float32
		want       bool
	}{
		{"inside", 100, 100, 10, 10, true},
		{"straddles right edge", 240, 100, 104, 10, true},
		{"right of view", 300, 100, 104, 10, false},
		{"below view", 100, 500, 10, 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cam.IsVisible(tt.x, tt.y, tt.w, tt.h); got != tt.want {
				t.Errorf("IsVisible = %v, want %v", got, tt.want)
			}
		})
	}
}
