// Package game owns a running meadow: it generates the world, advances it
// tick by tick and feeds telemetry and the observer.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/observer"
	"github.com/pthm-cable/meadow/systems"
	"github.com/pthm-cable/meadow/telemetry"
)

// Options configures a Game.
type Options struct {
	Seed        int64
	LogStats    bool
	StatsWindow int    // Ticks per stats window (0 = use config)
	OutputDir   string // Empty disables CSV output

	// Config overrides the global configuration when set.
	Config *config.Config

	// StatsCallback receives every flushed window.
	StatsCallback func(telemetry.WindowStats)

	// Observer receives a frame every observer.frame_interval ticks.
	Observer *observer.Hub
}

// Game holds the complete simulation state.
type Game struct {
	cfg  *config.Config
	rng  *rand.Rand
	grid *systems.Grid

	rngSeed   int64
	organisms []*components.Organism

	// Telemetry
	collector        *telemetry.Collector
	lifetimeTracker  *telemetry.LifetimeTracker
	bookmarkDetector *telemetry.BookmarkDetector
	perfCollector    *telemetry.PerfCollector
	outputManager    *telemetry.OutputManager
	logStats         bool
	statsCallback    func(telemetry.WindowStats)

	hub           *observer.Hub
	frameInterval int
}

// NewGameWithOptions generates a world from opts and returns the game
// ready to step.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	window := cfg.Telemetry.StatsWindow
	if opts.StatsWindow > 0 {
		window = opts.StatsWindow
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	g := &Game{
		cfg:              cfg,
		rng:              rng,
		grid:             systems.NewGrid(cfg, rng),
		rngSeed:          opts.Seed,
		collector:        telemetry.NewCollector(window),
		bookmarkDetector: telemetry.NewBookmarkDetector(cfg.Bookmarks, 10),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		logStats:         opts.LogStats,
		statsCallback:    opts.StatsCallback,
		hub:              opts.Observer,
		frameInterval:    max(cfg.Observer.FrameInterval, 1),
	}
	g.lifetimeTracker = telemetry.NewLifetimeTracker(g.grid.Tick)

	// Lifetimes include the founders; window counts start after generation.
	g.grid.SetListener(g.lifetimeTracker)
	if err := g.generateWorld(); err != nil {
		return nil, fmt.Errorf("generating world: %w", err)
	}
	g.grid.SetListener(fanout{g.lifetimeTracker, g.collector})
	g.organisms = g.grid.Organisms()

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	g.logWorldState()
	return g, nil
}

// Step advances the simulation one tick and handles telemetry and the
// observer feed.
func (g *Game) Step() {
	g.perfCollector.StartTick()
	g.organisms = g.grid.RunTick(g.perfCollector)
	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()
	g.publishFrame()
	g.perfCollector.EndTick()
}

// Tick returns the number of ticks run.
func (g *Game) Tick() int { return g.grid.Tick() }

// Grid returns the world grid.
func (g *Game) Grid() *systems.Grid { return g.grid }

// Organisms returns the organisms on the grid after the last step.
func (g *Game) Organisms() []*components.Organism { return g.organisms }

// Count returns the live population of sp.
func (g *Game) Count(sp components.Species) int {
	return g.grid.Registry().Census()[sp]
}

// RabbitCount returns the live rabbit population.
func (g *Game) RabbitCount() int { return g.Count(components.SpeciesRabbit) }

// FoxCount returns the live fox population.
func (g *Game) FoxCount() int { return g.Count(components.SpeciesFox) }

// Seed returns the seed the world was generated from.
func (g *Game) Seed() int64 { return g.rngSeed }

// Unload flushes and closes experiment output.
func (g *Game) Unload() {
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
