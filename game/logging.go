package game

import (
	"log/slog"

	"github.com/pthm-cable/meadow/components"
)

// logWorldState logs the population of every species.
func (g *Game) logWorldState() {
	census := g.grid.Registry().Census()
	attrs := []any{
		"tick", g.grid.Tick(),
		"seed", g.rngSeed,
		"width", g.grid.Width(),
		"height", g.grid.Height(),
	}
	for sp := components.Species(0); sp < components.NumSpecies; sp++ {
		attrs = append(attrs, sp.String(), census[sp])
	}
	slog.Info("world", attrs...)
}
