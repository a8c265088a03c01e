package species

import (
	"github.com/pthm-cable/meadow/behavior"
	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/systems"
)

// shelterFor maps an animal species to the structure it digs.
func shelterFor(animal components.Species) components.Species {
	if animal == components.SpeciesFox {
		return components.SpeciesDen
	}
	return components.SpeciesBurrow
}

// ownerOf maps a shelter to the species that uses it.
func ownerOf(shelter components.Species) components.Species {
	if shelter == components.SpeciesDen {
		return components.SpeciesFox
	}
	return components.SpeciesRabbit
}

func shelterConfig(g *systems.Grid, species components.Species) *config.ShelterConfig {
	if species == components.SpeciesDen {
		return &g.Config().Species.Den
	}
	return &g.Config().Species.Burrow
}

// NewShelter creates a burrow or den. A shelter's negative size makes room
// for the animals sleeping in it. It collapses after going unused for its
// life length, unless the cell would be left over capacity.
func NewShelter(g *systems.Grid, species components.Species) *components.Organism {
	cfg := shelterConfig(g, species)
	owner := ownerOf(species)
	org := &components.Organism{Species: species, Size: cfg.Size}

	// A shelter still holding up an overfull cell cannot collapse yet
	fresh := func() bool {
		return org.Timers.Idle < cfg.LifeLength ||
			g.OccupiedSize(org.X, org.Y)-org.Size > g.Config().World.CellCapacity
	}
	use := behavior.NewAction("track use", func() behavior.Status {
		if g.FirstOfType(org.X, org.Y, owner) != nil {
			org.Timers.Idle = 0
		} else {
			org.Timers.Idle++
		}
		return behavior.Success
	})

	return attach(org, behavior.NewSequence(use, aliveOrDie(g, org, fresh)))
}
