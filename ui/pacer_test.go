package ui

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pthm-cable/flock/game"
	"github.com/pthm-cable/flock/systems"
	"github.com/pthm-cable/flock/telemetry"
)

// produce runs the observer for ticks 1..n in the background.
func produce(p *Pacer, n int) *sync.WaitGroup {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		obs := p.Observer()
		for tick := 1; tick <= n; tick++ {
			obs(game.Frame{Tick: tick})
		}
	}()
	return &wg
}

func TestTakeEmpty(t *testing.T) {
	p := NewPacer(context.Background())
	if _, got := p.Take(4, time.Millisecond); got != 0 {
		t.Errorf("took %d frames from an idle pacer", got)
	}
}

func TestThrottledDeliversEveryFrameInOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := NewPacer(ctx)
	wg := produce(p, 20)

	seen := 0
	deadline := time.Now().Add(5 * time.Second)
	for seen < 20 && time.Now().Before(deadline) {
		f, got := p.Take(3, 50*time.Millisecond)
		if got == 0 {
			continue
		}
		seen += got
		if f.Tick != seen {
			t.Fatalf("newest frame tick = %d after %d frames", f.Tick, seen)
		}
	}
	if seen != 20 {
		t.Fatalf("took %d frames, want 20", seen)
	}
	wg.Wait()
	if p.Dropped() != 0 {
		t.Errorf("dropped %d frames while throttled", p.Dropped())
	}
}

func TestCancelReleasesProducer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPacer(ctx)
	wg := produce(p, 10)

	cancel()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("producer still blocked after cancel")
	}
}

func TestUnthrottledNeverBlocks(t *testing.T) {
	p := NewPacer(context.Background())
	p.SetThrottled(false)
	if p.Throttled() {
		t.Fatal("pacer should be unthrottled")
	}

	produce(p, 100).Wait()

	f, got := p.Take(10, time.Millisecond)
	if got != 1 || f.Tick != 1 {
		t.Errorf("Take = (tick %d, %d), want the single buffered frame", f.Tick, got)
	}
	if p.Dropped() != 99 {
		t.Errorf("dropped = %d, want 99", p.Dropped())
	}
}

func TestClampSpeed(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, MinSpeed},
		{5, 5},
		{1000, MaxSpeed},
	}
	for _, tt := range tests {
		if got := ClampSpeed(tt.in); got != tt.want {
			t.Errorf("ClampSpeed(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestPerfLinesGroupByCategory(t *testing.T) {
	stats := telemetry.PerfStats{PhaseAvg: map[string]time.Duration{
		telemetry.PhaseFitness: time.Microsecond,
		telemetry.PhasePipes:   2 * time.Microsecond,
		telemetry.PhaseObserve: 3 * time.Microsecond,
		telemetry.PhaseDecide:  10 * time.Microsecond,
		"render":               4 * time.Microsecond,
	}}
	lines := PerfLines(stats, systems.NewSystemRegistry())

	want := []struct{ phase, category, name string }{
		{telemetry.PhaseObserve, "ai", "Observe"},
		{telemetry.PhaseDecide, "ai", "Decide"},
		{telemetry.PhaseFitness, "core", "Fitness"},
		{telemetry.PhasePipes, "world", "Pipes"},
		{"render", "other", "render"},
	}
	if len(lines) != len(want) {
		t.Fatalf("lines = %v", lines)
	}
	for i, w := range want {
		l := lines[i]
		if l.Phase != w.phase || l.Category != w.category || l.Name != w.name {
			t.Errorf("line %d = %s/%s/%s, want %s/%s/%s", i, l.Category, l.Phase, l.Name, w.category, w.phase, w.name)
		}
	}
}

func TestSparklineSpansBox(t *testing.T) {
	pts := sparkline([]float64{1, 3, 2}, 10, 20, 100, 50)
	if len(pts) != 3 {
		t.Fatalf("points = %d", len(pts))
	}
	if pts[0].X != 10 || pts[2].X != 110 {
		t.Errorf("x range = [%v, %v], want [10, 110]", pts[0].X, pts[2].X)
	}
	if pts[0].Y != 70 || pts[1].Y != 20 {
		t.Errorf("min at y=%v, max at y=%v; want 70 and 20", pts[0].Y, pts[1].Y)
	}

	flat := sparkline([]float64{4, 4}, 0, 0, 10, 10)
	if flat[0].Y != 5 {
		t.Errorf("flat series y = %v, want middle 5", flat[0].Y)
	}
}

func TestHUDStatus(t *testing.T) {
	tests := []struct {
		data HUDData
		want string
	}{
		{HUDData{}, "Training"},
		{HUDData{Paused: true}, "PAUSED"},
		{HUDData{Paused: true, Done: true}, "DONE"},
	}
	for _, tt := range tests {
		if got := tt.data.Status(); got != tt.want {
			t.Errorf("Status() = %q, want %q", got, tt.want)
		}
	}
	if lines := (HUDData{Tick: 12345}).Lines(); lines[0] != "Gen 0 | Tick 12,345 | Score 0" {
		t.Errorf("first line = %q", lines[0])
	}
}
