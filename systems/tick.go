package systems

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/meadow/components"
)

// Phase names reported to a PhaseTimer during RunTick.
const (
	PhaseWeather  = "weather"
	PhaseScent    = "scent"
	PhaseBehavior = "behavior"
)

// PhaseTimer receives phase boundaries while a tick runs.
type PhaseTimer interface {
	StartPhase(phase string)
}

type noopTimer struct{}

func (noopTimer) StartPhase(string) {}

// RunTick advances the world one step: weather and scent decay once, then
// every organism's tree once in Organisms order. Organisms removed earlier
// in the same tick are skipped; newborns wait for the next tick. Returns
// the organisms on the grid afterward.
func (g *Grid) RunTick(timer PhaseTimer) []*components.Organism {
	if timer == nil {
		timer = noopTimer{}
	}

	timer.StartPhase(PhaseWeather)
	g.weather.Advance()

	timer.StartPhase(PhaseScent)
	g.nectar.Decay(g.cfg.Scent.Decay)
	g.rabbit.Decay(g.cfg.Scent.Decay)

	timer.StartPhase(PhaseBehavior)
	for _, org := range g.Organisms() {
		if !org.Alive() {
			continue
		}
		if g.cfg.Simulation.RecoverPanics {
			g.runRecovering(org)
		} else {
			org.Run()
		}
	}

	g.tick++
	return g.Organisms()
}

// runRecovering evaluates org's tree and turns a panic into a logged skip.
func (g *Grid) runRecovering(org *components.Organism) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("organism evaluation panicked",
				"tick", g.tick,
				"species", org.Species.String(),
				"id", org.ID.ID(),
				"x", org.X,
				"y", org.Y,
				"panic", fmt.Sprint(r),
			)
		}
	}()
	org.Run()
}
