// Package systems provides the world grid, organism registry, pathfinding
// and the per-tick ambient systems.
package systems

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/meadow/components"
)

// handle is the ECS component that points an entity back at its organism.
type handle struct {
	org *components.Organism
}

// Registry assigns every organism on the grid a stable ECS entity.
// Entities are generational, so an ID kept by a partner, child or resident
// after the organism is gone fails lookup instead of dangling.
type Registry struct {
	world   *ecs.World
	mapper  *ecs.Map2[components.Species, handle]
	handles *ecs.Map1[handle]
	filter  *ecs.Filter2[components.Species, handle]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	world := ecs.NewWorld()
	return &Registry{
		world:   world,
		mapper:  ecs.NewMap2[components.Species, handle](world),
		handles: ecs.NewMap1[handle](world),
		filter:  ecs.NewFilter2[components.Species, handle](world),
	}
}

// Register creates an entity for org and stores it in org.ID.
// Registering a live organism twice is an invariant violation.
func (r *Registry) Register(org *components.Organism) ecs.Entity {
	if r.Alive(org.ID) {
		panic(fmt.Sprintf("registry: %s at (%d,%d) registered twice", org.Species, org.X, org.Y))
	}
	species := org.Species
	org.ID = r.mapper.NewEntity(&species, &handle{org: org})
	return org.ID
}

// Unregister removes the organism's entity. Its ID goes stale.
func (r *Registry) Unregister(org *components.Organism) {
	if !r.Alive(org.ID) {
		panic(fmt.Sprintf("registry: %s at (%d,%d) is not registered", org.Species, org.X, org.Y))
	}
	r.world.RemoveEntity(org.ID)
}

// Alive reports whether id refers to a registered organism.
func (r *Registry) Alive(id ecs.Entity) bool {
	return !id.IsZero() && r.world.Alive(id)
}

// Lookup resolves an ID. Zero and stale IDs return false.
func (r *Registry) Lookup(id ecs.Entity) (*components.Organism, bool) {
	if !r.Alive(id) {
		return nil, false
	}
	h := r.handles.Get(id)
	if h == nil || h.org == nil {
		return nil, false
	}
	return h.org, true
}

// Census counts registered organisms per species.
func (r *Registry) Census() [components.NumSpecies]int {
	var counts [components.NumSpecies]int
	query := r.filter.Query()
	for query.Next() {
		species, _ := query.Get()
		if *species < components.NumSpecies {
			counts[*species]++
		}
	}
	return counts
}

// Each calls fn for every registered organism of the given species.
// fn must not place or remove organisms.
func (r *Registry) Each(species components.Species, fn func(*components.Organism)) {
	query := r.filter.Query()
	for query.Next() {
		sp, h := query.Get()
		if *sp == species {
			fn(h.org)
		}
	}
}
