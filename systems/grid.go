package systems

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/config"
)

// Rejections returned (wrapped) by Place and Move. State is untouched when
// one of these is returned.
var (
	ErrOutOfBounds = errors.New("out of bounds")
	ErrOccupied    = errors.New("slot occupied")
	ErrWater       = errors.New("cell is water")
	ErrCellFull    = errors.New("cell at capacity")
	ErrNotMobile   = errors.New("organism cannot move")
)

// Listener is notified of every organism entering or leaving the grid.
type Listener interface {
	OrganismAdded(org *components.Organism)
	OrganismRemoved(org *components.Organism)
}

// cell holds one grid position's layers. The mobile layer keeps its
// structure (hive, burrow or den) in a dedicated slot ahead of the animals.
type cell struct {
	water     *components.Organism
	terrain   *components.Organism
	flora     []*components.Organism
	structure *components.Organism
	animals   []*components.Organism
}

// Grid is the authoritative spatial state of the world.
type Grid struct {
	width, height int
	cells         []cell

	cfg      *config.Config
	rng      *rand.Rand
	registry *Registry
	listener Listener

	tick    int
	nectar  *ScentField
	rabbit  *ScentField
	weather *Weather
	paths   *Pathfinder
}

// NewGrid creates an empty grid sized from cfg.World.
func NewGrid(cfg *config.Config, rng *rand.Rand) *Grid {
	w, h := cfg.World.Width, cfg.World.Height
	g := &Grid{
		width:    w,
		height:   h,
		cells:    make([]cell, w*h),
		cfg:      cfg,
		rng:      rng,
		registry: NewRegistry(),
		nectar:   NewScentField(w, h),
		rabbit:   NewScentField(w, h),
		weather:  NewWeather(cfg.Weather, rng),
	}
	g.paths = NewPathfinder(g)
	return g
}

// Width returns the grid width in cells.
func (g *Grid) Width() int { return g.width }

// Height returns the grid height in cells.
func (g *Grid) Height() int { return g.height }

// Config returns the configuration the grid was built with.
func (g *Grid) Config() *config.Config { return g.cfg }

// Rand returns the simulation's random source.
func (g *Grid) Rand() *rand.Rand { return g.rng }

// Tick returns the number of completed ticks.
func (g *Grid) Tick() int { return g.tick }

// Registry returns the organism ID registry.
func (g *Grid) Registry() *Registry { return g.registry }

// Weather returns the weather state.
func (g *Grid) Weather() *Weather { return g.weather }

// Pathfinder returns the grid's A* pathfinder.
func (g *Grid) Pathfinder() *Pathfinder { return g.paths }

// NectarScent returns the field flowers emit into and bees follow.
func (g *Grid) NectarScent() *ScentField { return g.nectar }

// RabbitScent returns the field rabbits emit into and foxes follow.
func (g *Grid) RabbitScent() *ScentField { return g.rabbit }

// SetListener installs l (nil to remove).
func (g *Grid) SetListener(l Listener) { g.listener = l }

// InBounds reports whether (x, y) is on the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

func (g *Grid) at(x, y int) *cell {
	return &g.cells[x*g.height+y]
}

// Lookup resolves an organism ID. Stale and zero IDs return false.
func (g *Grid) Lookup(id components.ID) (*components.Organism, bool) {
	return g.registry.Lookup(id)
}

// Place puts org on the layer its species belongs to.
// Placing an organism that is already on the grid panics.
func (g *Grid) Place(org *components.Organism, x, y int) error {
	if org.State == components.Placed {
		panic(fmt.Sprintf("grid: %s already placed at (%d,%d)", org.Species, org.X, org.Y))
	}
	if !g.InBounds(x, y) {
		return fmt.Errorf("place %s at (%d,%d): %w", org.Species, x, y, ErrOutOfBounds)
	}
	c := g.at(x, y)
	if err := g.admit(c, org, nil); err != nil {
		return fmt.Errorf("place %s at (%d,%d): %w", org.Species, x, y, err)
	}

	switch org.Species.Layer() {
	case components.LayerWater:
		c.water = org
	case components.LayerTerrain:
		c.terrain = org
	case components.LayerFlora:
		c.flora = append(c.flora, org)
	case components.LayerMobile:
		if org.Species.IsStructure() {
			c.structure = org
		} else {
			c.animals = append(c.animals, org)
		}
	}

	org.X, org.Y = x, y
	org.State = components.Placed
	g.registry.Register(org)
	if g.listener != nil {
		g.listener.OrganismAdded(org)
	}
	return nil
}

// Move relocates an animal to (x, y). Structures and non-mobile species
// return ErrNotMobile. Moving onto the current cell is a no-op.
func (g *Grid) Move(org *components.Organism, x, y int) error {
	if !org.Alive() {
		panic(fmt.Sprintf("grid: move of %s that is not on the grid", org.Species))
	}
	if !org.Species.IsAnimal() {
		return fmt.Errorf("move %s: %w", org.Species, ErrNotMobile)
	}
	if x == org.X && y == org.Y {
		return nil
	}
	if !g.InBounds(x, y) {
		return fmt.Errorf("move %s to (%d,%d): %w", org.Species, x, y, ErrOutOfBounds)
	}
	dst := g.at(x, y)
	if dst.water != nil {
		return fmt.Errorf("move %s to (%d,%d): %w", org.Species, x, y, ErrWater)
	}
	if !g.fits(dst, org.Size) {
		return fmt.Errorf("move %s to (%d,%d): %w", org.Species, x, y, ErrCellFull)
	}

	src := g.at(org.X, org.Y)
	src.animals = without(src.animals, org)
	dst.animals = append(dst.animals, org)
	org.X, org.Y = x, y
	return nil
}

// Remove takes org off the grid and clears relations that point back at it.
// Removing an organism that is not on the grid panics.
func (g *Grid) Remove(org *components.Organism) {
	if org.State != components.Placed {
		panic(fmt.Sprintf("grid: remove of %s at (%d,%d) that is not on the grid (state %d)",
			org.Species, org.X, org.Y, org.State))
	}
	c := g.at(org.X, org.Y)

	switch org.Species.Layer() {
	case components.LayerWater:
		c.water = nil
	case components.LayerTerrain:
		c.terrain = nil
	case components.LayerFlora:
		c.flora = without(c.flora, org)
	case components.LayerMobile:
		if c.structure == org {
			c.structure = nil
		} else {
			c.animals = without(c.animals, org)
		}
	}

	if mother, ok := g.registry.Lookup(org.Mother); ok {
		mother.RemoveChild(org.ID)
	}
	if partner, ok := g.registry.Lookup(org.Partner); ok && partner.Partner == org.ID {
		partner.Partner = components.NoID
	}

	org.State = components.Removed
	org.ClearPath()
	g.registry.Unregister(org)
	if g.listener != nil {
		g.listener.OrganismRemoved(org)
	}
}

// Replace removes old and places repl in its cell. If repl cannot take the
// cell the error is returned and old stays exactly as it was.
func (g *Grid) Replace(old, repl *components.Organism) error {
	x, y := old.X, old.Y
	if err := g.admit(g.at(x, y), repl, old); err != nil {
		return fmt.Errorf("replace %s at (%d,%d) with %s: %w", old.Species, x, y, repl.Species, err)
	}
	g.Remove(old)
	if err := g.Place(repl, x, y); err != nil {
		panic(fmt.Sprintf("grid: %s admitted at (%d,%d) but not placed: %v", repl.Species, x, y, err))
	}
	return nil
}

// admit returns the sentinel error that keeps org out of c, treating
// vacating (which must be in c, or nil) as already gone.
func (g *Grid) admit(c *cell, org, vacating *components.Organism) error {
	held := func(o *components.Organism) bool { return o != nil && o != vacating }
	others := func(list []*components.Organism) int {
		n := 0
		for _, o := range list {
			if o != vacating {
				n++
			}
		}
		return n
	}

	load := g.load(c)
	if vacating != nil {
		switch {
		case vacating.Species == components.SpeciesTree:
			load -= g.cfg.World.TreePenalty
		case vacating.Species.Layer() == components.LayerMobile:
			load -= vacating.Size
		}
	}

	switch org.Species.Layer() {
	case components.LayerWater:
		if held(c.water) || held(c.terrain) || others(c.flora) > 0 || held(c.structure) || others(c.animals) > 0 {
			return ErrOccupied
		}
	case components.LayerTerrain:
		if held(c.water) {
			return ErrWater
		}
		if held(c.terrain) {
			return ErrOccupied
		}
		if org.Species == components.SpeciesTree && load+g.cfg.World.TreePenalty > g.cfg.World.CellCapacity {
			return ErrCellFull
		}
	case components.LayerFlora:
		if held(c.water) {
			return ErrWater
		}
		if held(c.terrain) && c.terrain.Species == components.SpeciesTree {
			return ErrOccupied
		}
	case components.LayerMobile:
		if held(c.water) {
			return ErrWater
		}
		if org.Species.IsStructure() && held(c.structure) {
			return ErrOccupied
		}
		if load+org.Size > g.cfg.World.CellCapacity {
			return ErrCellFull
		}
	}
	return nil
}

func without(list []*components.Organism, org *components.Organism) []*components.Organism {
	for i, o := range list {
		if o == org {
			return append(list[:i], list[i+1:]...)
		}
	}
	panic(fmt.Sprintf("grid: %s missing from its cell (%d,%d)", org.Species, org.X, org.Y))
}

// OccupiedSize returns the mobile layer's load at (x, y): structure and
// animal sizes plus the tree penalty.
func (g *Grid) OccupiedSize(x, y int) int {
	return g.load(g.at(x, y))
}

func (g *Grid) load(c *cell) int {
	total := 0
	if c.terrain != nil && c.terrain.Species == components.SpeciesTree {
		total += g.cfg.World.TreePenalty
	}
	if c.structure != nil {
		total += c.structure.Size
	}
	for _, a := range c.animals {
		total += a.Size
	}
	return total
}

func (g *Grid) fits(c *cell, size int) bool {
	return g.load(c)+size <= g.cfg.World.CellCapacity
}

// CanHold reports whether a mover of the given size could enter (x, y).
func (g *Grid) CanHold(x, y, size int) bool {
	if !g.InBounds(x, y) {
		return false
	}
	c := g.at(x, y)
	return c.water == nil && g.fits(c, size)
}

// IsWater reports whether (x, y) holds a water pool. Off-grid cells are not water.
func (g *Grid) IsWater(x, y int) bool {
	return g.InBounds(x, y) && g.at(x, y).water != nil
}

// IsTree reports whether (x, y) has Tree terrain.
func (g *Grid) IsTree(x, y int) bool {
	if !g.InBounds(x, y) {
		return false
	}
	t := g.at(x, y).terrain
	return t != nil && t.Species == components.SpeciesTree
}

// Water returns the water pool at (x, y), or nil.
func (g *Grid) Water(x, y int) *components.Organism {
	if !g.InBounds(x, y) {
		return nil
	}
	return g.at(x, y).water
}

// Terrain returns the ground occupant at (x, y), or nil.
func (g *Grid) Terrain(x, y int) *components.Organism {
	if !g.InBounds(x, y) {
		return nil
	}
	return g.at(x, y).terrain
}

// Structure returns the hive, burrow or den at (x, y), or nil.
func (g *Grid) Structure(x, y int) *components.Organism {
	if !g.InBounds(x, y) {
		return nil
	}
	return g.at(x, y).structure
}

// Flora returns the flowers at (x, y). The slice must not be modified.
func (g *Grid) Flora(x, y int) []*components.Organism {
	if !g.InBounds(x, y) {
		return nil
	}
	return g.at(x, y).flora
}

// Animals returns the animals at (x, y) in arrival order. The slice must
// not be modified.
func (g *Grid) Animals(x, y int) []*components.Organism {
	if !g.InBounds(x, y) {
		return nil
	}
	return g.at(x, y).animals
}

// Occupants returns a copy of the layer's occupants at (x, y). For the
// mobile layer the structure, if any, is always first.
func (g *Grid) Occupants(x, y int, layer components.Layer) []*components.Organism {
	if !g.InBounds(x, y) {
		return nil
	}
	c := g.at(x, y)
	var out []*components.Organism
	switch layer {
	case components.LayerWater:
		if c.water != nil {
			out = append(out, c.water)
		}
	case components.LayerTerrain:
		if c.terrain != nil {
			out = append(out, c.terrain)
		}
	case components.LayerFlora:
		out = append(out, c.flora...)
	case components.LayerMobile:
		if c.structure != nil {
			out = append(out, c.structure)
		}
		out = append(out, c.animals...)
	}
	return out
}

// OccupantsOfType returns the occupants of the given species at (x, y).
func (g *Grid) OccupantsOfType(x, y int, layer components.Layer, species components.Species) []*components.Organism {
	var out []*components.Organism
	for _, o := range g.Occupants(x, y, layer) {
		if o.Species == species {
			out = append(out, o)
		}
	}
	return out
}

// FirstOfType returns the first occupant of the species at (x, y) on the
// species' own layer, or nil.
func (g *Grid) FirstOfType(x, y int, species components.Species) *components.Organism {
	if !g.InBounds(x, y) {
		return nil
	}
	c := g.at(x, y)
	switch species.Layer() {
	case components.LayerWater:
		if c.water != nil && c.water.Species == species {
			return c.water
		}
	case components.LayerTerrain:
		if c.terrain != nil && c.terrain.Species == species {
			return c.terrain
		}
	case components.LayerFlora:
		for _, f := range c.flora {
			if f.Species == species {
				return f
			}
		}
	case components.LayerMobile:
		if c.structure != nil && c.structure.Species == species {
			return c.structure
		}
		for _, a := range c.animals {
			if a.Species == species {
				return a
			}
		}
	}
	return nil
}

// Neighbors returns (x, y) and its in-bounds eight neighbours, centre first
// then in compass order.
func (g *Grid) Neighbors(x, y int) []components.Position {
	out := make([]components.Position, 0, len(components.Directions))
	origin := components.Position{X: x, Y: y}
	for _, d := range components.Directions {
		p := origin.Add(d)
		if g.InBounds(p.X, p.Y) {
			out = append(out, p)
		}
	}
	return out
}

// Organisms snapshots every organism on the grid in evaluation order:
// water, terrain, flora, then the mobile layer with each cell's structure
// before its animals. Cells are scanned column by column.
func (g *Grid) Organisms() []*components.Organism {
	out := make([]*components.Organism, 0, len(g.cells)*2)
	for i := range g.cells {
		if w := g.cells[i].water; w != nil {
			out = append(out, w)
		}
	}
	for i := range g.cells {
		if t := g.cells[i].terrain; t != nil {
			out = append(out, t)
		}
	}
	for i := range g.cells {
		out = append(out, g.cells[i].flora...)
	}
	for i := range g.cells {
		c := &g.cells[i]
		if c.structure != nil {
			out = append(out, c.structure)
		}
		out = append(out, c.animals...)
	}
	return out
}
