package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_TracksTickPhases(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseObserve)
		time.Sleep(50 * time.Microsecond)
		pc.StartPhase(PhaseCollision)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration")
	}
	for _, phase := range []string{PhaseObserve, PhaseCollision} {
		if _, ok := stats.PhaseAvg[phase]; !ok {
			t.Errorf("phase %s not tracked", phase)
		}
	}
	if stats.PhasePct[PhaseCollision] <= stats.PhasePct[PhaseObserve] {
		t.Errorf("collision %v%% should exceed observe %v%%",
			stats.PhasePct[PhaseCollision], stats.PhasePct[PhaseObserve])
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 12; i++ {
		pc.StartTick()
		pc.StartPhase(PhasePhysics)
		pc.EndTick()
	}

	if pc.sampleCount != 5 {
		t.Errorf("sampleCount = %d, want window size 5", pc.sampleCount)
	}
	if stats := pc.Stats(); stats.TicksPerSecond <= 0 {
		t.Error("expected positive ticks per second")
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	stats := NewPerfCollector(10).Stats()

	if stats.AvgTickDuration != 0 {
		t.Error("expected zero avg tick duration for empty collector")
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("expected non-nil phase maps")
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	s := PerfStats{
		AvgTickDuration: 40 * time.Microsecond,
		PhasePct:        map[string]float64{PhaseDecide: 55, PhasePipes: 5},
	}

	row := s.ToCSV(3)
	if row.Generation != 3 || row.AvgTickUS != 40 {
		t.Errorf("row = %+v", row)
	}
	if row.DecidePct != 55 || row.PipesPct != 5 || row.PhysicsPct != 0 {
		t.Errorf("phase columns = %+v", row)
	}
}
