package telemetry

import (
	"log/slog"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/meadow/systems"
)

// PhaseTelemetry covers window flushing and output after a tick.
const PhaseTelemetry = "telemetry"

var perfPhases = []string{
	systems.PhaseWeather, systems.PhaseScent, systems.PhaseBehavior, PhaseTelemetry,
}

// PerfCollector keeps tick and phase durations for the last window ticks.
// It satisfies systems.PhaseTimer.
type PerfCollector struct {
	window int
	next   int
	filled int

	// Ring buffers in nanoseconds; phases[name][i] belongs to ticks[i].
	ticks  []float64
	phases map[string][]float64

	current    map[string]time.Duration
	tickStart  time.Time
	phaseStart time.Time
	phase      string
}

// NewPerfCollector creates a collector averaging over window ticks.
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 120
	}
	return &PerfCollector{
		window:  window,
		ticks:   make([]float64, window),
		phases:  make(map[string][]float64),
		current: make(map[string]time.Duration),
	}
}

// StartTick begins timing a new simulation tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	clear(p.current)
	p.phase = ""
}

// StartPhase closes the running phase, if any, and begins timing phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	p.closePhase(now)
	p.phaseStart = now
	p.phase = phase
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.phase != "" {
		p.current[p.phase] += now.Sub(p.phaseStart)
	}
}

// EndTick records the tick that began with StartTick.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.phase = ""

	p.ticks[p.next] = float64(now.Sub(p.tickStart))
	for name := range p.current {
		if _, ok := p.phases[name]; !ok {
			p.phases[name] = make([]float64, p.window)
		}
	}
	for name, ring := range p.phases {
		ring[p.next] = float64(p.current[name])
	}

	p.next = (p.next + 1) % p.window
	p.filled = min(p.filled+1, p.window)
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	// Average duration and share of tick time per phase
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	TicksPerSecond float64
}

// Stats aggregates the recorded window.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{
		PhaseAvg: make(map[string]time.Duration),
		PhasePct: make(map[string]float64),
	}
	if p.filled == 0 {
		return s
	}

	ticks := p.ticks[:p.filled]
	avg := stat.Mean(ticks, nil)
	s.AvgTickDuration = time.Duration(avg)
	s.MinTickDuration = time.Duration(floats.Min(ticks))
	s.MaxTickDuration = time.Duration(floats.Max(ticks))
	if avg > 0 {
		s.TicksPerSecond = float64(time.Second) / avg
	}

	for name, ring := range p.phases {
		phaseAvg := stat.Mean(ring[:p.filled], nil)
		s.PhaseAvg[name] = time.Duration(phaseAvg)
		if avg > 0 {
			s.PhasePct[name] = phaseAvg / avg * 100
		}
	}
	return s
}

// LogValue renders the stats in microseconds, listing the known phases
// that took a measurable share of the tick.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Int("ticks_per_sec", int(s.TicksPerSecond)),
	}
	for _, phase := range perfPhases {
		if pct := s.PhasePct[phase]; pct > 0.1 {
			attrs = append(attrs, slog.Float64(phase+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	slog.Info("perf", "stats", s)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd    int     `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	WeatherPct   float64 `csv:"weather_pct"`
	ScentPct     float64 `csv:"scent_pct"`
	BehaviorPct  float64 `csv:"behavior_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd int) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		MinTickUS:    s.MinTickDuration.Microseconds(),
		MaxTickUS:    s.MaxTickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		WeatherPct:   s.PhasePct[systems.PhaseWeather],
		ScentPct:     s.PhasePct[systems.PhaseScent],
		BehaviorPct:  s.PhasePct[systems.PhaseBehavior],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
