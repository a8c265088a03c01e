package species

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/config"
)

// minTrait keeps mutated rates strictly positive.
const minTrait = 1e-3

// Inherit returns a child's traits: each trait is the parents' mean, and
// with probability cfg.Rate it is scaled by (1 + N(0, cfg.Sigma)).
// Mutated values are clamped to stay positive.
func Inherit(rng *rand.Rand, cfg config.MutationConfig, mother, father components.Traits) components.Traits {
	mutate := func(a, b float64) float64 {
		v := (a + b) / 2
		if rng.Float64() < cfg.Rate {
			v *= 1 + rng.NormFloat64()*cfg.Sigma
		}
		return math.Max(v, minTrait)
	}
	mutateInt := func(a, b int) int {
		v := int(math.Round(mutate(float64(a), float64(b))))
		if v < 1 {
			return 1
		}
		return v
	}

	return components.Traits{
		HungerSpeed:      mutate(mother.HungerSpeed, father.HungerSpeed),
		ThirstSpeed:      mutate(mother.ThirstSpeed, father.ThirstSpeed),
		TiredSpeed:       mutate(mother.TiredSpeed, father.TiredSpeed),
		MaxSize:          mutateInt(mother.MaxSize, father.MaxSize),
		VisionRange:      mutateInt(mother.VisionRange, father.VisionRange),
		MovementCooldown: mutateInt(mother.MovementCooldown, father.MovementCooldown),
		LifeSpan:         (mother.LifeSpan + father.LifeSpan) / 2,
	}
}
