// Package components defines the data types shared by the grid, the species
// trees and the telemetry layer.
package components

import "fmt"

// Species is the closed set of organism kinds.
type Species uint8

const (
	SpeciesWater Species = iota
	SpeciesEarth
	SpeciesTree
	SpeciesGrass
	SpeciesFlower
	SpeciesRabbit
	SpeciesFox
	SpeciesBee
	SpeciesHive
	SpeciesBurrow
	SpeciesDen
	NumSpecies
)

var speciesNames = [NumSpecies]string{
	"water", "earth", "tree", "grass", "flower", "rabbit", "fox", "bee", "hive", "burrow", "den",
}

func (s Species) String() string {
	if s < NumSpecies {
		return speciesNames[s]
	}
	return fmt.Sprintf("species(%d)", uint8(s))
}

// ParseSpecies returns the species with the given name.
func ParseSpecies(name string) (Species, bool) {
	for i, n := range speciesNames {
		if n == name {
			return Species(i), true
		}
	}
	return 0, false
}

// MarshalText encodes the species by name.
func (s Species) MarshalText() ([]byte, error) {
	if s >= NumSpecies {
		return nil, fmt.Errorf("unknown species %d", uint8(s))
	}
	return []byte(speciesNames[s]), nil
}

// UnmarshalText decodes a species name.
func (s *Species) UnmarshalText(text []byte) error {
	sp, ok := ParseSpecies(string(text))
	if !ok {
		return fmt.Errorf("unknown species %q", text)
	}
	*s = sp
	return nil
}

// Layer identifies one of the grid's per-cell occupant collections.
type Layer uint8

const (
	LayerWater   Layer = iota // single occupant
	LayerTerrain              // single occupant: Earth, Grass, Tree
	LayerFlora                // zero or more flowers
	LayerMobile               // optional structure plus zero or more animals
)

func (l Layer) String() string {
	switch l {
	case LayerWater:
		return "water"
	case LayerTerrain:
		return "terrain"
	case LayerFlora:
		return "flora"
	case LayerMobile:
		return "mobile"
	default:
		return fmt.Sprintf("layer(%d)", uint8(l))
	}
}

// Layer returns the layer organisms of this species live on.
func (s Species) Layer() Layer {
	switch s {
	case SpeciesWater:
		return LayerWater
	case SpeciesEarth, SpeciesGrass, SpeciesTree:
		return LayerTerrain
	case SpeciesFlower:
		return LayerFlora
	default:
		return LayerMobile
	}
}

// IsStructure reports whether the species occupies a cell's structure slot.
func (s Species) IsStructure() bool {
	return s == SpeciesHive || s == SpeciesBurrow || s == SpeciesDen
}

// IsAnimal reports whether the species moves between cells.
func (s Species) IsAnimal() bool {
	return s == SpeciesRabbit || s == SpeciesFox || s == SpeciesBee
}
