package species

import (
	"fmt"

	"github.com/pthm-cable/meadow/behavior"
	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/systems"
)

// attach validates tree and installs it on org. A malformed tree is a
// programming error.
func attach(org *components.Organism, tree behavior.Node) *components.Organism {
	if err := behavior.Validate(tree); err != nil {
		panic(fmt.Sprintf("species: %s tree: %v", org.Species, err))
	}
	org.Tree = tree
	return org
}

// aliveOrDie is the guard every mortal tree starts with. When alive fails
// the organism is removed and the guard fails, ending the tick for it.
func aliveOrDie(g *systems.Grid, org *components.Organism, alive func() bool) behavior.Node {
	return behavior.NewFallback(
		behavior.NewCondition("is alive", alive),
		behavior.NewAction("die", func() behavior.Status {
			g.Remove(org)
			return behavior.Failure
		}),
	)
}

// gated wraps a movement effect with the organism's movement cooldown.
// While cooling down the move reports Running.
func gated(org *components.Organism, move func() bool) behavior.Status {
	if org.Timers.Movement > 0 {
		return behavior.Running
	}
	if !move() {
		return behavior.Failure
	}
	org.Timers.Movement = org.Traits.MovementCooldown
	return behavior.Success
}

// wander steps org onto a random neighbouring cell that can hold it.
func wander(g *systems.Grid, org *components.Organism) behavior.Node {
	return behavior.NewAction("wander", func() behavior.Status {
		return gated(org, func() bool {
			org.ClearPath()
			neighbors := g.Neighbors(org.X, org.Y)[1:]
			g.Rand().Shuffle(len(neighbors), func(i, j int) {
				neighbors[i], neighbors[j] = neighbors[j], neighbors[i]
			})
			for _, p := range neighbors {
				if g.Move(org, p.X, p.Y) == nil {
					return true
				}
			}
			return false
		})
	})
}

// moveToward is a gated step along a planned path toward goal.
func moveToward(g *systems.Grid, org *components.Organism, goal components.Position, maxLength int) behavior.Status {
	return gated(org, func() bool {
		return g.MoveToward(org, goal, maxLength) == behavior.Success
	})
}

// climb steps org up a scent gradient. Fails when org already sits on the
// strongest cell or the field is empty around it.
func climb(g *systems.Grid, org *components.Organism, field *systems.ScentField) behavior.Status {
	target, ok := field.Strongest(org.X, org.Y, func(x, y int) bool {
		if x == org.X && y == org.Y {
			return false
		}
		return g.IsBlocked(x, y, org.Size)
	})
	if !ok || target == org.Pos() {
		return behavior.Failure
	}
	return gated(org, func() bool {
		org.ClearPath()
		return g.Move(org, target.X, target.Y) == nil
	})
}

// nearest scans the square of the given radius around org and returns the
// closest cell (Chebyshev) for which match holds, org's own cell included.
// Ties go to the first cell in scan order.
func nearest(g *systems.Grid, org *components.Organism, radius int, match func(x, y int) bool) (components.Position, bool) {
	here := org.Pos()
	best := components.Position{}
	bestDist := radius + 1
	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			x, y := here.X+dx, here.Y+dy
			if !g.InBounds(x, y) {
				continue
			}
			p := components.Position{X: x, Y: y}
			if d := components.Chebyshev(here, p); d < bestDist && match(x, y) {
				best, bestDist = p, d
			}
		}
	}
	return best, bestDist <= radius
}

// freeLand returns a random neighbouring cell (centre excluded) where pred
// holds, or false.
func freeLand(g *systems.Grid, x, y int, pred func(x, y int) bool) (components.Position, bool) {
	neighbors := g.Neighbors(x, y)[1:]
	g.Rand().Shuffle(len(neighbors), func(i, j int) {
		neighbors[i], neighbors[j] = neighbors[j], neighbors[i]
	})
	for _, p := range neighbors {
		if pred(p.X, p.Y) {
			return p, true
		}
	}
	return components.Position{}, false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
