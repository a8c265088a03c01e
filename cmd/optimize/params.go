package main

import (
	"math"

	"github.com/pthm-cable/meadow/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value

	set func(cfg *config.Config, v float64)
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

func round(v float64) int { return int(math.Round(v)) }

// NewParamVector creates the standard set of optimizable parameters: the
// rabbit and fox need rates, food gains, breeding constants and fox
// mobility, plus how fast grass recovers.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Rabbit
			{Name: "rabbit_hunger_speed", Path: "species.rabbit.hunger_speed", Min: 1, Max: 8, Default: 4.1667,
				set: func(c *config.Config, v float64) { c.Species.Rabbit.HungerSpeed = v }},
			{Name: "rabbit_thirst_speed", Path: "species.rabbit.thirst_speed", Min: 0.5, Max: 5, Default: 2.0833,
				set: func(c *config.Config, v float64) { c.Species.Rabbit.ThirstSpeed = v }},
			{Name: "rabbit_food_gain", Path: "species.rabbit.food_gain", Min: 10, Max: 60, Default: 30,
				set: func(c *config.Config, v float64) { c.Species.Rabbit.FoodGain = v }},
			{Name: "rabbit_repro_cooldown", Path: "species.rabbit.reproduction_cooldown", Min: 24, Max: 720, Default: 120,
				set: func(c *config.Config, v float64) { c.Species.Rabbit.ReproductionCool = round(v) }},
			{Name: "rabbit_litter_max", Path: "species.rabbit.litter_max", Min: 2, Max: 8, Default: 5,
				set: func(c *config.Config, v float64) {
					c.Species.Rabbit.LitterMax = max(round(v), c.Species.Rabbit.LitterMin)
				}},
			// Fox
			{Name: "fox_hunger_speed", Path: "species.fox.hunger_speed", Min: 0.3, Max: 4, Default: 1.3889,
				set: func(c *config.Config, v float64) { c.Species.Fox.HungerSpeed = v }},
			{Name: "fox_thirst_speed", Path: "species.fox.thirst_speed", Min: 0.2, Max: 3, Default: 0.6944,
				set: func(c *config.Config, v float64) { c.Species.Fox.ThirstSpeed = v }},
			{Name: "fox_food_gain", Path: "species.fox.food_gain", Min: 20, Max: 100, Default: 60,
				set: func(c *config.Config, v float64) { c.Species.Fox.FoodGain = v }},
			{Name: "fox_repro_cooldown", Path: "species.fox.reproduction_cooldown", Min: 48, Max: 1440, Default: 240,
				set: func(c *config.Config, v float64) { c.Species.Fox.ReproductionCool = round(v) }},
			{Name: "fox_movement_cooldown", Path: "species.fox.movement_cooldown", Min: 1, Max: 6, Default: 3,
				set: func(c *config.Config, v float64) { c.Species.Fox.MovementCooldown = round(v) }},
			{Name: "fox_vision_range", Path: "species.fox.vision_range", Min: 2, Max: 8, Default: 4,
				set: func(c *config.Config, v float64) { c.Species.Fox.VisionRange = round(v) }},
			// Grass
			{Name: "grass_growth_speed", Path: "species.grass.growth_speed", Min: 0.05, Max: 2, Default: 0.3,
				set: func(c *config.Config, v float64) { c.Species.Grass.GrowthSpeed = v }},
			{Name: "grass_spread_chance", Path: "species.grass.spread_chance", Min: 0.001, Max: 0.1, Default: 0.01,
				set: func(c *config.Config, v float64) { c.Species.Grass.SpreadChance = v }},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = math.Min(math.Max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg and recomputes
// its derived values.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].set(cfg, v)
	}
	cfg.ComputeDerived()
}
