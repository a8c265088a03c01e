package telemetry

import (
	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/systems"
)

// Collector accumulates grid events within windows of ticks and produces
// WindowStats. It satisfies systems.Listener.
type Collector struct {
	windowTicks     int
	windowStartTick int

	births [components.NumSpecies]int
	deaths [components.NumSpecies]int
}

// NewCollector creates a collector that flushes every windowTicks ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: windowTicks}
}

// OrganismAdded records a birth of the organism's species.
func (c *Collector) OrganismAdded(org *components.Organism) {
	c.births[org.Species]++
}

// OrganismRemoved records a death of the organism's species.
func (c *Collector) OrganismRemoved(org *components.Organism) {
	c.deaths[org.Species]++
}

// Births returns the births of species in the current window.
func (c *Collector) Births(sp components.Species) int { return c.births[sp] }

// Deaths returns the deaths of species in the current window.
func (c *Collector) Deaths(sp components.Species) int { return c.deaths[sp] }

// ShouldFlush returns true once a full window has elapsed.
func (c *Collector) ShouldFlush(currentTick int) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// Census is the state of the grid sampled at the end of a window.
type Census struct {
	Counts [components.NumSpecies]int

	RabbitHunger []float64
	RabbitThirst []float64
	FoxHunger    []float64
	FoxThirst    []float64

	HiveFood    float64
	NectarScent float64
	RabbitScent float64
	WindSpeed   float64
	Rain        float64
}

// TakeCensus samples g through its registry without mutating it.
func TakeCensus(g *systems.Grid) Census {
	reg := g.Registry()
	c := Census{Counts: reg.Census()}

	reg.Each(components.SpeciesRabbit, func(o *components.Organism) {
		c.RabbitHunger = append(c.RabbitHunger, o.Hunger)
		c.RabbitThirst = append(c.RabbitThirst, o.Thirst)
	})
	reg.Each(components.SpeciesFox, func(o *components.Organism) {
		c.FoxHunger = append(c.FoxHunger, o.Hunger)
		c.FoxThirst = append(c.FoxThirst, o.Thirst)
	})
	reg.Each(components.SpeciesHive, func(o *components.Organism) {
		c.HiveFood += o.Amount
	})

	c.NectarScent = g.NectarScent().Total()
	c.RabbitScent = g.RabbitScent().Total()
	c.WindSpeed = g.Weather().Wind.Speed
	c.Rain = g.Weather().Rain
	return c
}

// Flush produces a WindowStats from the window's events, the census and the
// lifetime tracker, then resets counters for the next window.
func (c *Collector) Flush(currentTick int, census Census, lifetimes *LifetimeTracker) WindowStats {
	counts := census.Counts
	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,

		Water:   counts[components.SpeciesWater],
		Earth:   counts[components.SpeciesEarth],
		Trees:   counts[components.SpeciesTree],
		Grass:   counts[components.SpeciesGrass],
		Flowers: counts[components.SpeciesFlower],
		Rabbits: counts[components.SpeciesRabbit],
		Foxes:   counts[components.SpeciesFox],
		Bees:    counts[components.SpeciesBee],
		Hives:   counts[components.SpeciesHive],
		Burrows: counts[components.SpeciesBurrow],
		Dens:    counts[components.SpeciesDen],

		RabbitBirths: c.births[components.SpeciesRabbit],
		FoxBirths:    c.births[components.SpeciesFox],
		BeeBirths:    c.births[components.SpeciesBee],
		FlowerBirths: c.births[components.SpeciesFlower],
		RabbitDeaths: c.deaths[components.SpeciesRabbit],
		FoxDeaths:    c.deaths[components.SpeciesFox],
		BeeDeaths:    c.deaths[components.SpeciesBee],
		// Earth only ever turns into water by flooding.
		Floods: c.births[components.SpeciesWater],

		RabbitHunger: Summarize(census.RabbitHunger),
		RabbitThirst: Summarize(census.RabbitThirst),
		FoxHunger:    Summarize(census.FoxHunger),
		FoxThirst:    Summarize(census.FoxThirst),

		HiveFood:    census.HiveFood,
		NectarScent: census.NectarScent,
		RabbitScent: census.RabbitScent,
		WindSpeed:   census.WindSpeed,
		Rain:        census.Rain,
	}
	if lifetimes != nil {
		stats.RabbitLifetime = lifetimes.MeanLifetime(components.SpeciesRabbit)
		stats.FoxLifetime = lifetimes.MeanLifetime(components.SpeciesFox)
		stats.BeeLifetime = lifetimes.MeanLifetime(components.SpeciesBee)
	}

	c.births = [components.NumSpecies]int{}
	c.deaths = [components.NumSpecies]int{}
	c.windowStartTick = currentTick

	return stats
}
