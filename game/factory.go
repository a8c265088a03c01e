package game

import (
	"fmt"
	"log/slog"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/species"
)

// generateWorld fills the grid: water pools, terrain on every other cell,
// flowers, then hives and animals on cells that can hold them.
func (g *Game) generateWorld() error {
	cfg := &g.cfg.Generation

	water := g.floodPools(cfg.WaterPools)
	for _, p := range water {
		if err := g.grid.Place(species.NewWater(), p.X, p.Y); err != nil {
			return fmt.Errorf("placing water at (%d,%d): %w", p.X, p.Y, err)
		}
	}

	if err := g.plantTerrain(); err != nil {
		return err
	}

	for _, spawn := range []struct {
		sp    components.Species
		count int
	}{
		{components.SpeciesHive, cfg.Hives},
		{components.SpeciesRabbit, cfg.Rabbits},
		{components.SpeciesFox, cfg.Foxes},
	} {
		placed := g.scatter(spawn.sp, spawn.count)
		if placed < spawn.count {
			slog.Warn("world too crowded for initial population",
				"species", spawn.sp.String(),
				"wanted", spawn.count,
				"placed", placed,
			)
		}
	}

	return nil
}

// floodPools grows one pool per entry of sizes by breadth-first flooding
// from a random dry cell, visiting neighbours in shuffled order. Pools may
// touch but never overlap.
func (g *Game) floodPools(sizes []int) []components.Position {
	w, h := g.grid.Width(), g.grid.Height()
	wet := make([]bool, w*h)
	var cells []components.Position

	for _, size := range sizes {
		if len(cells) >= w*h {
			break
		}
		var start components.Position
		for {
			start = components.Position{X: g.rng.Intn(w), Y: g.rng.Intn(h)}
			if !wet[start.X*h+start.Y] {
				break
			}
		}

		seen := map[components.Position]bool{start: true}
		queue := []components.Position{start}
		for n := 0; n < size && len(queue) > 0; {
			p := queue[0]
			queue = queue[1:]
			if wet[p.X*h+p.Y] {
				continue
			}
			wet[p.X*h+p.Y] = true
			cells = append(cells, p)
			n++

			dirs := components.Compass
			g.rng.Shuffle(len(dirs), func(i, j int) { dirs[i], dirs[j] = dirs[j], dirs[i] })
			for _, d := range dirs {
				q := p.Add(d)
				if !g.grid.InBounds(q.X, q.Y) || seen[q] || wet[q.X*h+q.Y] {
					continue
				}
				seen[q] = true
				queue = append(queue, q)
			}
		}
	}
	return cells
}

// plantTerrain gives every dry cell a Tree, Grass or Earth and scatters
// flowers on the cells without trees. Noise clusters trees and flowers
// into groves and meadows.
func (g *Game) plantTerrain() error {
	gen := &g.cfg.Generation
	sp := &g.cfg.Species
	treeNoise := opensimplex.NewNormalized(g.rng.Int63())
	flowerNoise := opensimplex.NewNormalized(g.rng.Int63())

	// density scales base by a noise factor with mean 1 at noise 0.5.
	density := func(noise opensimplex.Noise, base float64, x, y int) float64 {
		n := noise.Eval2(float64(x)*gen.NoiseScale, float64(y)*gen.NoiseScale)
		return base * ((1 - gen.NoiseWeight) + gen.NoiseWeight*2*n)
	}
	uniform := func(lo, hi float64) float64 {
		return lo + g.rng.Float64()*(hi-lo)
	}

	for x := 0; x < g.grid.Width(); x++ {
		for y := 0; y < g.grid.Height(); y++ {
			if g.grid.IsWater(x, y) {
				continue
			}

			var terrain *components.Organism
			switch r := g.rng.Float64(); {
			case r < density(treeNoise, gen.TreeFraction, x, y):
				terrain = species.NewTree()
			case g.rng.Float64() < gen.GrassFraction:
				terrain = species.NewGrass(g.grid, uniform(sp.Grass.InitialMin, sp.Grass.InitialMax))
			default:
				terrain = species.NewEarth(g.grid)
			}
			if err := g.grid.Place(terrain, x, y); err != nil {
				return fmt.Errorf("placing %s at (%d,%d): %w", terrain.Species, x, y, err)
			}

			if terrain.Species == components.SpeciesTree {
				continue
			}
			if g.rng.Float64() < density(flowerNoise, gen.FlowerFraction, x, y) {
				flower := species.NewFlower(g.grid, uniform(sp.Flower.InitialMin, sp.Flower.InitialMax))
				if err := g.grid.Place(flower, x, y); err != nil {
					return fmt.Errorf("placing flower at (%d,%d): %w", x, y, err)
				}
			}
		}
	}
	return nil
}

// scatter places up to count organisms of sp on random cells that can hold
// them and returns how many were placed.
func (g *Game) scatter(sp components.Species, count int) int {
	w, h := g.grid.Width(), g.grid.Height()
	placed := 0
	for attempts := 0; placed < count && attempts < 4*w*h; attempts++ {
		org := species.New(g.grid, sp)
		x, y := g.rng.Intn(w), g.rng.Intn(h)
		if sp.IsStructure() && g.grid.Structure(x, y) != nil {
			continue
		}
		if g.grid.Place(org, x, y) == nil {
			placed++
		}
	}
	return placed
}
