package species

import (
	"slices"

	"github.com/pthm-cable/meadow/behavior"
	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/systems"
)

// NewWater creates a water pool cell. Pools have no behaviour.
func NewWater() *components.Organism {
	org := &components.Organism{Species: components.SpeciesWater}
	return attach(org, behavior.NewFallback())
}

// NewTree creates tree terrain. Trees have no behaviour; they only add
// their penalty to the cell's load.
func NewTree() *components.Organism {
	org := &components.Organism{Species: components.SpeciesTree}
	return attach(org, behavior.NewFallback())
}

// NewEarth creates bare soil. Amount is the water held in the soil.
// Soil soaks up rain, loses some to evaporation and floods into a water
// pool once it holds too much and nothing stands on it.
func NewEarth(g *systems.Grid) *components.Organism {
	cfg := &g.Config().Species.Earth
	org := &components.Organism{Species: components.SpeciesEarth}

	floodLevel := cfg.WaterCapacity * cfg.FloodMultiplier

	soak := behavior.NewAction("soak", func() behavior.Status {
		org.Amount = clamp(org.Amount+g.Weather().Rain-cfg.Evaporation, 0, floodLevel)
		return behavior.Success
	})
	belowFlood := behavior.NewCondition("below flood level", func() bool {
		return org.Amount < floodLevel
	})
	flood := behavior.NewAction("flood", func() behavior.Status {
		if len(g.Occupants(org.X, org.Y, components.LayerMobile)) > 0 {
			return behavior.Failure
		}
		// Flowers drown with the soil.
		for _, f := range slices.Clone(g.Flora(org.X, org.Y)) {
			g.Remove(f)
		}
		if err := g.Replace(org, NewWater()); err != nil {
			return behavior.Failure
		}
		return behavior.Success
	})

	return attach(org, behavior.NewSequence(
		soak,
		behavior.NewFallback(belowFlood, flood),
	))
}

// NewGrass creates grass terrain with the given amount. A seed (amount at
// or below zero) grows until it sprouts; a sprouted plant grazed down to
// nothing dies back to earth.
func NewGrass(g *systems.Grid, amount float64) *components.Organism {
	cfg := &g.Config().Species.Grass
	org := &components.Organism{
		Species: components.SpeciesGrass,
		Amount:  amount,
		Seed:    amount <= 0,
	}

	alive := func() bool { return org.Seed || org.Amount > 0 }
	die := behavior.NewAction("die back to earth", func() behavior.Status {
		if err := g.Replace(org, NewEarth(g)); err != nil {
			g.Remove(org)
		}
		return behavior.Failure
	})
	grow := behavior.NewAction("grow", func() behavior.Status {
		org.Amount = clamp(org.Amount+cfg.GrowthSpeed, org.Amount, cfg.MaxAmount)
		if org.Amount > 0 {
			org.Seed = false
		}
		return behavior.Success
	})
	immature := behavior.NewCondition("below reproduction threshold", func() bool {
		return org.Amount < cfg.ReproductionThreshold
	})
	spread := behavior.NewAction("spread", func() behavior.Status {
		if g.Rand().Float64() >= cfg.SpreadChance {
			return behavior.Failure
		}
		p, ok := freeLand(g, org.X, org.Y, func(x, y int) bool {
			t := g.Terrain(x, y)
			return t != nil && t.Species == components.SpeciesEarth
		})
		if !ok {
			return behavior.Failure
		}
		if err := g.Replace(g.Terrain(p.X, p.Y), NewGrass(g, cfg.SeedAmount)); err != nil {
			return behavior.Failure
		}
		return behavior.Success
	})

	return attach(org, behavior.NewSequence(
		behavior.NewFallback(behavior.NewCondition("is alive", alive), die),
		grow,
		behavior.NewFallback(immature, spread),
	))
}
