package species

import (
	"github.com/pthm-cable/meadow/behavior"
	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/systems"
)

// NewHive creates a hive. Amount is stored food; Children are its bees.
// A hive eats a little each tick, raises bees while it can afford them and
// dies once it is out of food with no bees left to forage.
func NewHive(g *systems.Grid) *components.Organism {
	cfg := &g.Config().Species.Hive
	org := &components.Organism{
		Species: components.SpeciesHive,
		Size:    cfg.Size,
		Amount:  cfg.InitialFood,
	}

	consume := behavior.NewAction("consume food", func() behavior.Status {
		org.Amount = clamp(org.Amount-cfg.FoodConsumption, 0, org.Amount)
		return behavior.Success
	})
	canBreed := behavior.NewCondition("can raise a bee", func() bool {
		bees := len(org.Children)
		if bees >= cfg.Capacity {
			return false
		}
		return org.Amount >= cfg.BeeMakingThreshold ||
			(bees <= cfg.MinBees && org.Amount >= cfg.BeeFoodCost)
	})
	makeBee := behavior.NewAction("make bee", func() behavior.Status {
		bee := NewBee(g, org)
		bee.Mother = org.ID
		bee.Home = org.ID
		if err := g.Place(bee, org.X, org.Y); err != nil {
			return behavior.Failure
		}
		org.Children = append(org.Children, bee.ID)
		org.Amount -= cfg.BeeFoodCost
		return behavior.Success
	})

	return attach(org, behavior.NewSequence(
		aliveOrDie(g, org, func() bool { return org.Amount > 0 || len(org.Children) > 0 }),
		consume,
		behavior.NewFallback(
			behavior.NewSequence(canBreed, makeBee),
			behavior.Always(behavior.Success),
		),
	))
}
