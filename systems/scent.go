package systems

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/meadow/components"
)

// ScentField is a scalar value per cell that producers add to and the tick
// decays. Values are stored column-major like the grid.
type ScentField struct {
	W, H int
	Val  []float64
}

// NewScentField creates a zeroed field.
func NewScentField(w, h int) *ScentField {
	return &ScentField{W: w, H: h, Val: make([]float64, w*h)}
}

// At returns the value at (x, y), 0 off-grid.
func (f *ScentField) At(x, y int) float64 {
	if x < 0 || y < 0 || x >= f.W || y >= f.H {
		return 0
	}
	return f.Val[x*f.H+y]
}

func (f *ScentField) add(x, y int, v float64) {
	if x < 0 || y < 0 || x >= f.W || y >= f.H {
		return
	}
	f.Val[x*f.H+y] += v
}

// Emit spreads a contribution from (x, y) outward along the eight
// directions: strength/(d+1) at step d, scaled by how closely the ray
// runs downwind. The source cell receives strength once.
func (f *ScentField) Emit(x, y int, strength float64, reach int, wind Wind, attenuation float64) {
	f.add(x, y, strength)
	for _, dir := range components.Compass {
		factor := 1 + attenuation*wind.Speed*dir.Cos(wind.Dir)
		if factor <= 0 {
			continue
		}
		for d := 1; d <= reach; d++ {
			f.add(x+dir.DX*d, y+dir.DY*d, strength/float64(d+1)*factor)
		}
	}
}

// Decay multiplies every value by k. k == 0 resets the field.
func (f *ScentField) Decay(k float64) {
	if k == 0 {
		for i := range f.Val {
			f.Val[i] = 0
		}
		return
	}
	floats.Scale(k, f.Val)
}

// Total returns the sum over all cells.
func (f *ScentField) Total() float64 {
	return floats.Sum(f.Val)
}

// Strongest returns the in-bounds neighbour of (x, y), centre included,
// with the highest value. ok is false when every candidate is zero.
// Ties go to the first in Directions order.
func (f *ScentField) Strongest(x, y int, skip func(x, y int) bool) (components.Position, bool) {
	best := components.Position{X: x, Y: y}
	bestVal := math.Inf(-1)
	for _, d := range components.Directions {
		nx, ny := x+d.DX, y+d.DY
		if nx < 0 || ny < 0 || nx >= f.W || ny >= f.H {
			continue
		}
		if skip != nil && skip(nx, ny) {
			continue
		}
		if v := f.At(nx, ny); v > bestVal {
			best, bestVal = components.Position{X: nx, Y: ny}, v
		}
	}
	return best, bestVal > 0
}
