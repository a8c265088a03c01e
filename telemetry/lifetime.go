package telemetry

import "github.com/pthm-cable/meadow/components"

// LifetimeStats tracks one organism over its life on the grid.
type LifetimeStats struct {
	Species   components.Species
	BirthTick int
	Children  int
}

// LifetimeTracker keeps per-organism stats and per-species totals of the
// ticks lived by organisms that have died. It satisfies systems.Listener
// once given a clock.
type LifetimeTracker struct {
	stats map[components.ID]*LifetimeStats
	clock func() int

	deaths [components.NumSpecies]int
	lived  [components.NumSpecies]int
}

// NewLifetimeTracker creates a tracker that reads the current tick from clock.
func NewLifetimeTracker(clock func() int) *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[components.ID]*LifetimeStats),
		clock: clock,
	}
}

// Register starts tracking an organism born at birthTick.
func (lt *LifetimeTracker) Register(id components.ID, sp components.Species, birthTick int) {
	lt.stats[id] = &LifetimeStats{Species: sp, BirthTick: birthTick}
}

// Get returns the stats for an organism, or nil if it is not tracked.
func (lt *LifetimeTracker) Get(id components.ID) *LifetimeStats {
	return lt.stats[id]
}

// RecordChild increments a parent's children count.
func (lt *LifetimeTracker) RecordChild(parent components.ID) {
	if s := lt.stats[parent]; s != nil {
		s.Children++
	}
}

// Remove stops tracking an organism that died at deathTick, folds its age
// into the species totals and returns its stats.
func (lt *LifetimeTracker) Remove(id components.ID, deathTick int) *LifetimeStats {
	s := lt.stats[id]
	if s == nil {
		return nil
	}
	delete(lt.stats, id)
	lt.deaths[s.Species]++
	lt.lived[s.Species] += deathTick - s.BirthTick
	return s
}

// MeanLifetime returns the mean ticks lived by dead organisms of species,
// or 0 before any has died.
func (lt *LifetimeTracker) MeanLifetime(sp components.Species) float64 {
	if lt.deaths[sp] == 0 {
		return 0
	}
	return float64(lt.lived[sp]) / float64(lt.deaths[sp])
}

// Count returns the number of tracked organisms.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}

// OrganismAdded registers org and credits its mother.
func (lt *LifetimeTracker) OrganismAdded(org *components.Organism) {
	lt.Register(org.ID, org.Species, lt.clock())
	if org.Mother != components.NoID {
		lt.RecordChild(org.Mother)
	}
}

// OrganismRemoved retires org.
func (lt *LifetimeTracker) OrganismRemoved(org *components.Organism) {
	lt.Remove(org.ID, lt.clock())
}
