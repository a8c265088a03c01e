package game

import (
	"log/slog"

	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/systems"
	"github.com/pthm-cable/meadow/telemetry"
)

// fanout forwards grid events to several listeners in order.
type fanout []systems.Listener

func (f fanout) OrganismAdded(org *components.Organism) {
	for _, l := range f {
		l.OrganismAdded(org)
	}
}

func (f fanout) OrganismRemoved(org *components.Organism) {
	for _, l := range f {
		l.OrganismRemoved(org)
	}
}

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	tick := g.grid.Tick()
	if !g.collector.ShouldFlush(tick) {
		return
	}

	stats := g.collector.Flush(tick, telemetry.TakeCensus(g.grid), g.lifetimeTracker)
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}

		// Keep the world as it looked when the bookmark fired.
		frame := telemetry.CaptureFrame(g.grid, g.organisms)
		frame.Bookmark = &bm
		slog.Debug("bookmark frame", "type", bm.Type, "tick", frame.Tick, "counts", frame.Counts())
		if err := g.outputManager.WriteFrame(frame); err != nil {
			slog.Error("failed to write frame", "error", err)
		}
	}
}

// publishFrame hands the observer a frame every frameInterval ticks.
func (g *Game) publishFrame() {
	if g.hub == nil || g.grid.Tick()%g.frameInterval != 0 {
		return
	}
	if err := g.hub.Publish(telemetry.CaptureFrame(g.grid, g.organisms)); err != nil {
		slog.Error("failed to publish frame", "error", err)
	}
}
