package systems

import "github.com/pthm-cable/meadow/components"

// NavGrid is the view of the world the A* search runs over.
// Blocking depends on the mover's size because a cell that still holds
// a rabbit may be too full for a fox.
type NavGrid interface {
	Width() int
	Height() int
	IsBlocked(x, y, size int) bool
}

// IsBlocked reports whether a mover of the given size cannot enter (x, y).
// Off-grid cells and water are always blocked; otherwise the cell is
// blocked when its load (tree penalty included) plus size exceeds the
// cell capacity.
func (g *Grid) IsBlocked(x, y, size int) bool {
	return !g.CanHold(x, y, size)
}

// StepAllowed reports whether a single move from one cell to the next is
// short enough to be a legal step. Diagonal steps are within the default
// limit.
func (g *Grid) StepAllowed(from, to components.Position) bool {
	return components.Distance(from, to) <= g.cfg.Pathfinding.MaxStepDistance
}
