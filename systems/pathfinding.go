package systems

import (
	"github.com/pthm-cable/meadow/behavior"
	"github.com/pthm-cable/meadow/components"
)

// Plan computes a fresh path for org toward goal and stores it on the
// organism. Reports whether the path has at least one step.
func (g *Grid) Plan(org *components.Organism, goal components.Position, maxLength int) bool {
	org.Path = g.paths.FindPath(PathRequest{
		Mover:     org,
		Start:     org.Pos(),
		Goal:      goal,
		MaxLength: maxLength,
	})
	org.Target = goal
	return len(org.Path) > 0
}

// Follow takes the next step of org's stored path. The step is re-checked
// against the current grid; if it is no longer legal the path is dropped
// and Failure returned so the caller can re-plan.
func (g *Grid) Follow(org *components.Organism) behavior.Status {
	if len(org.Path) == 0 {
		return behavior.Failure
	}
	next := org.Path[0]
	if !g.StepAllowed(org.Pos(), next) {
		org.ClearPath()
		return behavior.Failure
	}
	if err := g.Move(org, next.X, next.Y); err != nil {
		org.ClearPath()
		return behavior.Failure
	}
	org.Path = org.Path[1:]
	return behavior.Success
}

// MoveToward advances org one step toward goal, reusing the stored path
// while it still leads there. Success when a step was taken or org is
// already at goal.
func (g *Grid) MoveToward(org *components.Organism, goal components.Position, maxLength int) behavior.Status {
	if org.Pos() == goal {
		org.ClearPath()
		return behavior.Success
	}
	if len(org.Path) == 0 || org.Target != goal {
		if !g.Plan(org, goal, maxLength) {
			return behavior.Failure
		}
	}
	if g.Follow(org) == behavior.Success {
		return behavior.Success
	}
	// The stored path went stale; one re-plan per tick
	if !g.Plan(org, goal, maxLength) {
		return behavior.Failure
	}
	return g.Follow(org)
}
