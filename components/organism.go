package components

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/meadow/behavior"
)

// ID is a stable organism identifier handed out by the grid's registry.
// IDs are generational: once the organism is removed its ID never
// resolves again.
type ID = ecs.Entity

// NoID is the zero ID, meaning "no relation".
var NoID ID

// LifeState tracks an organism's relation to the grid. Managed by the grid.
type LifeState uint8

const (
	Unplaced LifeState = iota
	Placed
	Removed
)

// Vitals tracks an animal's needs and health.
type Vitals struct {
	Hunger float64
	Thirst float64
	Tired  float64
	Health float64
	Age    int
}

// Traits holds the heritable per-animal rates copied from the species table
// and mutated at birth.
type Traits struct {
	HungerSpeed      float64
	ThirstSpeed      float64
	TiredSpeed       float64
	MaxSize          int
	VisionRange      int
	MovementCooldown int
	LifeSpan         int
}

// Timers are countdowns (or counters) advanced once per tick by the owning tree.
type Timers struct {
	Movement     int // Ticks until the next step is allowed
	Reproduction int // Ticks of pregnancy remaining
	Cooldown     int // Ticks until mating is allowed again
	Idle         int // Shelters: ticks since last used
}

// Relations are weak references resolved through the grid's registry.
// A zero ID means none; a stale ID fails lookup.
type Relations struct {
	Partner  ID
	Mother   ID
	Home     ID
	Children []ID
}

// Organism is one entity on the grid. Species-specific fields are only
// meaningful for the species that use them.
type Organism struct {
	ID      ID
	Species Species
	X, Y    int
	Size    int
	State   LifeState

	// Plants, soil and hives: growth amount, soil water or stored food.
	Amount float64
	Seed   bool

	// Animals
	Female   bool
	Adult    bool
	Asleep   bool
	Pregnant bool
	Sire     Traits // Father's traits, kept while pregnant
	Vitals
	Traits
	Timers
	Relations

	// Bees
	Nectar float64
	Pollen ID // Flower the carried pollen came from

	// Path is the planned route, next step first; consumed one step per move.
	Path   []Position
	Target Position // Goal the current path was planned toward

	Tree behavior.Node
}

// Pos returns the organism's cell.
func (o *Organism) Pos() Position {
	return Position{X: o.X, Y: o.Y}
}

// Alive reports whether the organism is still on the grid.
func (o *Organism) Alive() bool {
	return o.State == Placed
}

// Run evaluates the organism's tree once. Organisms without a tree fail.
func (o *Organism) Run() behavior.Status {
	if o.Tree == nil {
		return behavior.Failure
	}
	return o.Tree.Evaluate()
}

// RemoveChild drops id from the children list, keeping order.
func (o *Organism) RemoveChild(id ID) bool {
	for i, c := range o.Children {
		if c == id {
			o.Children = append(o.Children[:i], o.Children[i+1:]...)
			return true
		}
	}
	return false
}

// ClearPath discards any planned route.
func (o *Organism) ClearPath() {
	o.Path = o.Path[:0]
}
