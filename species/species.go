// Package species builds the organisms of the meadow: each constructor
// returns an organism with its behaviour tree already attached, assembled
// only from the behavior primitives and closing over the grid it lives on.
package species

import (
	"fmt"

	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/systems"
)

// New creates an organism of the given species with default state.
// Animals are adults of random sex; plants start fully grown.
func New(g *systems.Grid, sp components.Species) *components.Organism {
	cfg := g.Config().Species
	switch sp {
	case components.SpeciesWater:
		return NewWater()
	case components.SpeciesEarth:
		return NewEarth(g)
	case components.SpeciesTree:
		return NewTree()
	case components.SpeciesGrass:
		return NewGrass(g, cfg.Grass.MaxAmount)
	case components.SpeciesFlower:
		return NewFlower(g, cfg.Flower.MaxAmount)
	case components.SpeciesRabbit:
		return NewRabbit(g, g.Rand().Intn(2) == 0)
	case components.SpeciesFox:
		return NewFox(g, g.Rand().Intn(2) == 0)
	case components.SpeciesHive:
		return NewHive(g)
	case components.SpeciesBurrow, components.SpeciesDen:
		return NewShelter(g, sp)
	case components.SpeciesBee:
		panic("species: bees are created by their hive")
	default:
		panic(fmt.Sprintf("species: unknown species %d", sp))
	}
}

// Spawn creates an organism with New and places it at (x, y).
func Spawn(g *systems.Grid, sp components.Species, x, y int) (*components.Organism, error) {
	org := New(g, sp)
	if err := g.Place(org, x, y); err != nil {
		return nil, fmt.Errorf("spawn %s: %w", sp, err)
	}
	return org, nil
}
