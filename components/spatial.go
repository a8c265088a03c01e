package components

import "math"

// Position is an integer grid cell.
type Position struct {
	X, Y int
}

// Add returns the position offset by d.
func (p Position) Add(d Direction) Position {
	return Position{X: p.X + d.DX, Y: p.Y + d.DY}
}

// Chebyshev returns the king-move distance between two cells.
func Chebyshev(a, b Position) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// Distance returns the Euclidean distance between two cells.
func Distance(a, b Position) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Direction is a unit step on the eight-connected grid (or none).
type Direction struct {
	DX, DY int
}

var (
	Center    = Direction{0, 0}
	East      = Direction{1, 0}
	North     = Direction{0, 1}
	NorthEast = Direction{1, 1}
	NorthWest = Direction{-1, 1}
	South     = Direction{0, -1}
	SouthEast = Direction{1, -1}
	SouthWest = Direction{-1, -1}
	West      = Direction{-1, 0}
)

// Directions lists every direction including Center, in a fixed order.
// Neighbour scans and path expansion iterate in this order.
var Directions = [9]Direction{Center, East, North, NorthEast, NorthWest, South, SouthEast, SouthWest, West}

// Compass lists the eight non-center directions in Directions order.
var Compass = [8]Direction{East, North, NorthEast, NorthWest, South, SouthEast, SouthWest, West}

// IsCenter reports whether d is the zero step.
func (d Direction) IsCenter() bool {
	return d.DX == 0 && d.DY == 0
}

// Cos returns the cosine of the angle between two non-center directions.
// Zero if either is Center.
func (d Direction) Cos(o Direction) float64 {
	if d.IsCenter() || o.IsCenter() {
		return 0
	}
	dot := float64(d.DX*o.DX + d.DY*o.DY)
	return dot / (math.Hypot(float64(d.DX), float64(d.DY)) * math.Hypot(float64(o.DX), float64(o.DY)))
}
