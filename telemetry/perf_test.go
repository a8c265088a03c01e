package telemetry

import (
	"math/rand"
	"testing"
	"time"

	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/systems"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(systems.PhaseScent)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(systems.PhaseBehavior)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration")
	}
	if _, ok := stats.PhaseAvg[systems.PhaseScent]; !ok {
		t.Error("expected scent phase to be tracked")
	}
	if _, ok := stats.PhaseAvg[systems.PhaseBehavior]; !ok {
		t.Error("expected behavior phase to be tracked")
	}
}

func TestPerfCollector_TimesRunTick(t *testing.T) {
	g := systems.NewGrid(config.Default(), rand.New(rand.NewSource(1)))
	pc := NewPerfCollector(10)

	pc.StartTick()
	g.RunTick(pc)
	pc.StartPhase(PhaseTelemetry)
	pc.EndTick()

	stats := pc.Stats()
	for _, phase := range perfPhases {
		if _, ok := stats.PhaseAvg[phase]; !ok {
			t.Errorf("phase %q not tracked", phase)
		}
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(systems.PhaseWeather)
		time.Sleep(10 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if pc.filled != 5 {
		t.Errorf("filled = %d, want 5", pc.filled)
	}
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration after window filled")
	}
	if stats.TicksPerSecond <= 0 {
		t.Error("expected positive ticks per second")
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase("fast")
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase("slow")
		time.Sleep(2 * time.Millisecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.PhasePct["slow"] <= stats.PhasePct["fast"] {
		t.Errorf("expected slow phase (%v%%) > fast phase (%v%%)", stats.PhasePct["slow"], stats.PhasePct["fast"])
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
		AvgTickDuration: 1500 * time.Microsecond,
		PhasePct:        map[string]float64{systems.PhaseBehavior: 80, PhaseTelemetry: 5},
	}
	row := s.ToCSV(240)
	if row.WindowEnd != 240 || row.AvgTickUS != 1500 || row.BehaviorPct != 80 || row.TelemetryPct != 5 {
		t.Errorf("ToCSV() = %+v", row)
	}
}
