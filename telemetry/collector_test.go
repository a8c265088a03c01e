package telemetry

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/systems"
)

func newTestGrid(t *testing.T) *systems.Grid {
	t.Helper()
	cfg := config.Default()
	cfg.World.Width, cfg.World.Height = 6, 6
	cfg.ComputeDerived()
	return systems.NewGrid(cfg, rand.New(rand.NewSource(1)))
}

func place(t *testing.T, g *systems.Grid, org *components.Organism, x, y int) *components.Organism {
	t.Helper()
	if err := g.Place(org, x, y); err != nil {
		t.Fatalf("Place(%s, %d, %d): %v", org.Species, x, y, err)
	}
	return org
}

func TestCollectorCountsBirthsAndDeaths(t *testing.T) {
	g := newTestGrid(t)
	c := NewCollector(24)
	g.SetListener(c)

	r1 := place(t, g, &components.Organism{Species: components.SpeciesRabbit, Size: 10}, 1, 1)
	place(t, g, &components.Organism{Species: components.SpeciesRabbit, Size: 10}, 1, 1)
	place(t, g, &components.Organism{Species: components.SpeciesFox, Size: 20}, 2, 2)
	g.Remove(r1)

	if got := c.Births(components.SpeciesRabbit); got != 2 {
		t.Errorf("rabbit births = %d, want 2", got)
	}
	if got := c.Births(components.SpeciesFox); got != 1 {
		t.Errorf("fox births = %d, want 1", got)
	}
	if got := c.Deaths(components.SpeciesRabbit); got != 1 {
		t.Errorf("rabbit deaths = %d, want 1", got)
	}
}

func TestCollectorWindows(t *testing.T) {
	c := NewCollector(24)

	if c.ShouldFlush(23) {
		t.Error("ShouldFlush(23) = true before the window elapsed")
	}
	if !c.ShouldFlush(24) {
		t.Error("ShouldFlush(24) = false at window end")
	}

	c.OrganismAdded(&components.Organism{Species: components.SpeciesBee})
	c.OrganismAdded(&components.Organism{Species: components.SpeciesWater})
	stats := c.Flush(24, Census{}, nil)
	if stats.WindowStartTick != 0 || stats.WindowEndTick != 24 {
		t.Errorf("window = [%d, %d], want [0, 24]", stats.WindowStartTick, stats.WindowEndTick)
	}
	if stats.BeeBirths != 1 || stats.Floods != 1 {
		t.Errorf("bee births = %d, floods = %d, want 1 and 1", stats.BeeBirths, stats.Floods)
	}

	if c.ShouldFlush(47) || !c.ShouldFlush(48) {
		t.Error("next window should end at tick 48")
	}
	if c.Births(components.SpeciesBee) != 0 {
		t.Error("counters not reset after Flush")
	}
}

func TestTakeCensus(t *testing.T) {
	g := newTestGrid(t)

	place(t, g, &components.Organism{Species: components.SpeciesRabbit, Size: 10, Vitals: components.Vitals{Hunger: 10, Thirst: 1}}, 0, 0)
	place(t, g, &components.Organism{Species: components.SpeciesRabbit, Size: 10, Vitals: components.Vitals{Hunger: 30, Thirst: 3}}, 1, 0)
	place(t, g, &components.Organism{Species: components.SpeciesFox, Size: 20, Vitals: components.Vitals{Hunger: 50}}, 2, 0)
	place(t, g, &components.Organism{Species: components.SpeciesHive, Size: 10, Amount: 7}, 3, 0)
	place(t, g, &components.Organism{Species: components.SpeciesHive, Size: 10, Amount: 5}, 4, 0)
	place(t, g, &components.Organism{Species: components.SpeciesEarth}, 5, 5)

	census := TakeCensus(g)
	if census.Counts[components.SpeciesRabbit] != 2 || census.Counts[components.SpeciesEarth] != 1 {
		t.Errorf("counts = %v", census.Counts)
	}
	if census.HiveFood != 12 {
		t.Errorf("hive food = %v, want 12", census.HiveFood)
	}

	stats := NewCollector(1).Flush(1, census, nil)
	if stats.Rabbits != 2 || stats.Foxes != 1 || stats.Hives != 2 {
		t.Errorf("populations = %d rabbits, %d foxes, %d hives", stats.Rabbits, stats.Foxes, stats.Hives)
	}
	if stats.RabbitHunger.Mean != 20 {
		t.Errorf("rabbit hunger mean = %v, want 20", stats.RabbitHunger.Mean)
	}
	if stats.RabbitThirst.Mean != 2 {
		t.Errorf("rabbit thirst mean = %v, want 2", stats.RabbitThirst.Mean)
	}
	if stats.FoxHunger.P50 != 50 {
		t.Errorf("fox hunger p50 = %v, want 50", stats.FoxHunger.P50)
	}
}
