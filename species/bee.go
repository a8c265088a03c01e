package species

import (
	"github.com/pthm-cable/meadow/behavior"
	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/systems"
)

// NewBee creates a bee belonging to hive. The caller places it and links
// Home and Mother.
func NewBee(g *systems.Grid, hive *components.Organism) *components.Organism {
	cfg := &g.Config().Species.Bee
	org := &components.Organism{
		Species: components.SpeciesBee,
		Size:    cfg.Size,
		Traits: components.Traits{
			MovementCooldown: cfg.MovementCooldown,
			LifeSpan:         cfg.LifeSpan,
		},
	}

	home := func() (*components.Organism, bool) {
		return g.Lookup(org.Home)
	}

	alive := func() bool {
		_, ok := home()
		return ok && org.Age < org.LifeSpan
	}
	age := behavior.NewAction("age", func() behavior.Status {
		org.Age++
		if org.Timers.Movement > 0 {
			org.Timers.Movement--
		}
		return behavior.Success
	})

	full := behavior.NewCondition("is full", func() bool {
		return org.Nectar >= cfg.NectarCapacity
	})
	atHome := behavior.NewCondition("is at hive", func() bool {
		h, ok := home()
		return ok && h.X == org.X && h.Y == org.Y
	})
	deposit := behavior.NewAction("deposit nectar", func() behavior.Status {
		h, ok := home()
		if !ok {
			return behavior.Failure
		}
		h.Amount += org.Nectar
		org.Nectar = 0
		return behavior.Success
	})
	goHome := behavior.NewAction("go home", func() behavior.Status {
		h, ok := home()
		if !ok {
			return behavior.Failure
		}
		return moveToward(g, org, h.Pos(), cfg.MaxPathLength)
	})

	flowerHere := behavior.NewCondition("is at a blooming flower", func() bool {
		return bloomingAt(g, org.X, org.Y) != nil
	})
	collect := behavior.NewAction("collect nectar", func() behavior.Status {
		flower := bloomingAt(g, org.X, org.Y)
		if flower == nil {
			return behavior.Failure
		}
		take := cfg.NectarPerVisit
		if room := cfg.NectarCapacity - org.Nectar; take > room {
			take = room
		}
		org.Nectar += take
		flower.Amount -= take

		if org.Pollen != components.NoID && org.Pollen != flower.ID &&
			g.Rand().Float64() < cfg.PollinationChance {
			if p, ok := freeLand(g, org.X, org.Y, func(x, y int) bool {
				t := g.Terrain(x, y)
				return t != nil && t.Species != components.SpeciesTree && len(g.Flora(x, y)) == 0
			}); ok {
				PlantFlower(g, p.X, p.Y)
			}
		}
		org.Pollen = flower.ID
		return behavior.Success
	})
	followNectar := behavior.NewAction("follow nectar scent", func() behavior.Status {
		return climb(g, org, g.NectarScent())
	})

	return attach(org, behavior.NewSequence(
		aliveOrDie(g, org, alive),
		age,
		behavior.NewFallback(
			behavior.NewSequence(full, behavior.NewFallback(
				behavior.NewSequence(atHome, deposit),
				goHome,
			)),
			behavior.NewSequence(flowerHere, collect),
			followNectar,
			wander(g, org),
		),
	))
}

// bloomingAt returns the first blooming flower at (x, y), or nil.
func bloomingAt(g *systems.Grid, x, y int) *components.Organism {
	for _, f := range g.Flora(x, y) {
		if Blooming(g, f) {
			return f
		}
	}
	return nil
}
