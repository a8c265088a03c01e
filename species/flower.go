package species

import (
	"github.com/pthm-cable/meadow/behavior"
	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/systems"
)

// NewFlower creates a flower with the given amount. Flowers at or above the
// reproduction threshold are blooming: they scent the air with nectar and
// bees can harvest them.
func NewFlower(g *systems.Grid, amount float64) *components.Organism {
	cfg := &g.Config().Species.Flower
	scent := &g.Config().Scent
	org := &components.Organism{
		Species: components.SpeciesFlower,
		Amount:  amount,
		Seed:    amount <= 0,
	}

	grow := behavior.NewAction("grow", func() behavior.Status {
		org.Amount = clamp(org.Amount+cfg.GrowthSpeed, org.Amount, cfg.MaxAmount)
		if org.Amount > 0 {
			org.Seed = false
		}
		return behavior.Success
	})
	emit := behavior.NewAction("emit nectar scent", func() behavior.Status {
		w := g.Weather()
		g.NectarScent().Emit(org.X, org.Y, scent.NectarStrength, scent.NectarRange, w.Wind, g.Config().Weather.WindAttenuation)
		return behavior.Success
	})

	return attach(org, behavior.NewSequence(
		aliveOrDie(g, org, func() bool { return org.Seed || org.Amount > 0 }),
		grow,
		behavior.NewFallback(
			behavior.NewSequence(
				behavior.NewCondition("is blooming", func() bool { return Blooming(g, org) }),
				emit,
			),
			behavior.Always(behavior.Success),
		),
	))
}

// Blooming reports whether a flower has nectar to give.
func Blooming(g *systems.Grid, flower *components.Organism) bool {
	return flower.Alive() && !flower.Seed && flower.Amount >= g.Config().Species.Flower.ReproductionThreshold
}

// PlantFlower places a flower seed at (x, y) if the cell is open land.
func PlantFlower(g *systems.Grid, x, y int) bool {
	t := g.Terrain(x, y)
	if t == nil || t.Species == components.SpeciesTree {
		return false
	}
	return g.Place(NewFlower(g, g.Config().Species.Flower.PlantedSeedAmount), x, y) == nil
}
