package species

import (
	"github.com/pthm-cable/meadow/behavior"
	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/systems"
)

const maxNeed = 100

// AnimalConfig returns the tuning table for a rabbit or fox.
func AnimalConfig(g *systems.Grid, species components.Species) *config.AnimalConfig {
	if species == components.SpeciesFox {
		return &g.Config().Species.Fox
	}
	return &g.Config().Species.Rabbit
}

// BaseTraits returns the unmutated traits of a species.
func BaseTraits(cfg *config.AnimalConfig) components.Traits {
	return components.Traits{
		HungerSpeed:      cfg.HungerSpeed,
		ThirstSpeed:      cfg.ThirstSpeed,
		TiredSpeed:       cfg.TiredSpeed,
		MaxSize:          cfg.Size,
		VisionRange:      cfg.VisionRange,
		MovementCooldown: cfg.MovementCooldown,
		LifeSpan:         cfg.LifeSpan,
	}
}

// NewRabbit creates an adult rabbit with the species' base traits.
func NewRabbit(g *systems.Grid, female bool) *components.Organism {
	return NewAnimal(g, components.SpeciesRabbit, female, BaseTraits(&g.Config().Species.Rabbit), true)
}

// NewFox creates an adult fox with the species' base traits.
func NewFox(g *systems.Grid, female bool) *components.Organism {
	return NewAnimal(g, components.SpeciesFox, female, BaseTraits(&g.Config().Species.Fox), true)
}

// Sheltered reports whether org is asleep inside a shelter of its kind.
// Foxes cannot take sheltered rabbits.
func Sheltered(g *systems.Grid, org *components.Organism) bool {
	if !org.Asleep {
		return false
	}
	s := g.Structure(org.X, org.Y)
	return s != nil && s.Species == shelterFor(org.Species)
}

// NewAnimal creates a rabbit or fox. Young animals start at half size and
// grow toward MaxSize as they approach adulthood.
func NewAnimal(g *systems.Grid, species components.Species, female bool, traits components.Traits, adult bool) *components.Organism {
	cfg := AnimalConfig(g, species)
	org := &components.Organism{
		Species: species,
		Female:  female,
		Adult:   adult,
		Traits:  traits,
	}
	org.Health = maxNeed
	org.Size = traits.MaxSize
	if adult {
		org.Age = cfg.AdultAge
	} else {
		org.Size = max(1, traits.MaxSize/2)
	}

	a := &animal{g: g, org: org, cfg: cfg}
	return attach(org, a.tree())
}

// animal holds what an animal's leaves close over.
type animal struct {
	g   *systems.Grid
	org *components.Organism
	cfg *config.AnimalConfig
}

func (a *animal) tree() behavior.Node {
	org := a.org
	return behavior.NewSequence(
		aliveOrDie(a.g, org, func() bool { return org.Health > 0 && org.Age < org.LifeSpan }),
		behavior.NewAction("update vitals", a.updateVitals),
		behavior.NewFallback(
			a.sleepBranch(),
			a.birthBranch(),
			a.eatBranch(),
			a.drinkBranch(),
			a.restBranch(),
			a.mateBranch(),
			wander(a.g, org),
		),
	)
}

func (a *animal) updateVitals() behavior.Status {
	org, cfg := a.org, a.cfg

	org.Age++
	if !org.Adult {
		if org.Age >= cfg.AdultAge {
			org.Adult = true
		}
		a.grow()
	}

	org.Hunger = clamp(org.Hunger+org.HungerSpeed, 0, maxNeed)
	org.Thirst = clamp(org.Thirst+org.ThirstSpeed, 0, maxNeed)
	if org.Asleep {
		org.Tired = clamp(org.Tired-cfg.SleepRecovery, 0, maxNeed)
	} else {
		org.Tired = clamp(org.Tired+org.TiredSpeed, 0, maxNeed)
	}

	hurt := false
	for _, over := range []bool{
		org.Hunger >= cfg.HungerDamage,
		org.Thirst >= cfg.ThirstDamage,
		org.Tired >= cfg.TiredDamage,
	} {
		if over {
			org.Health -= cfg.Damage
			hurt = true
		}
	}
	if !hurt {
		org.Health = clamp(org.Health+cfg.Recovery, org.Health, maxNeed)
	}

	if org.Timers.Movement > 0 {
		org.Timers.Movement--
	}
	if org.Timers.Cooldown > 0 {
		org.Timers.Cooldown--
	}
	if org.Pregnant && org.Timers.Reproduction > 0 {
		org.Timers.Reproduction--
	}

	if org.Species == components.SpeciesRabbit && !Sheltered(a.g, org) {
		s := &a.g.Config().Scent
		a.g.RabbitScent().Emit(org.X, org.Y, s.RabbitStrength, s.RabbitRange,
			a.g.Weather().Wind, a.g.Config().Weather.WindAttenuation)
	}
	return behavior.Success
}

// grow moves a young animal's size toward its adult size in proportion to
// age, as far as the cell has room.
func (a *animal) grow() {
	org := a.org
	frac := 1.0
	if a.cfg.AdultAge > 0 && org.Age < a.cfg.AdultAge {
		frac = 0.5 + 0.5*float64(org.Age)/float64(a.cfg.AdultAge)
	}
	target := max(1, int(float64(org.MaxSize)*frac))
	if delta := target - org.Size; delta > 0 && a.g.CanHold(org.X, org.Y, delta) {
		org.Size = target
	}
}

func (a *animal) sleepBranch() behavior.Node {
	org, cfg := a.org, a.cfg
	return behavior.NewSequence(
		behavior.NewCondition("is asleep", func() bool { return org.Asleep }),
		behavior.NewFallback(
			behavior.NewSequence(
				behavior.NewCondition("should wake", func() bool {
					return org.Tired <= 0 || org.Hunger >= cfg.HungerDamage || org.Thirst >= cfg.ThirstDamage
				}),
				behavior.NewAction("wake", func() behavior.Status {
					org.Asleep = false
					return behavior.Success
				}),
			),
			behavior.NewAction("doze", func() behavior.Status { return behavior.Success }),
		),
	)
}

func (a *animal) birthBranch() behavior.Node {
	org := a.org
	return behavior.NewSequence(
		behavior.NewCondition("is due", func() bool {
			return org.Pregnant && org.Timers.Reproduction <= 0
		}),
		behavior.NewAction("give birth", a.giveBirth),
	)
}

// giveBirth places each newborn in the mother's cell or the first
// neighbouring cell with room. Newborns that fit nowhere are not born.
func (a *animal) giveBirth() behavior.Status {
	g, org, cfg := a.g, a.org, a.cfg
	litter := cfg.LitterMin + g.Rand().Intn(cfg.LitterMax-cfg.LitterMin+1)
	for i := 0; i < litter; i++ {
		traits := Inherit(g.Rand(), g.Config().Mutation, org.Traits, org.Sire)
		child := NewAnimal(g, org.Species, g.Rand().Intn(2) == 0, traits, false)
		child.Mother = org.ID
		for _, p := range g.Neighbors(org.X, org.Y) {
			if g.Place(child, p.X, p.Y) == nil {
				org.Children = append(org.Children, child.ID)
				break
			}
		}
	}
	org.Pregnant = false
	org.Sire = components.Traits{}
	org.Timers.Cooldown = cfg.ReproductionCool
	return behavior.Success
}

func (a *animal) eatBranch() behavior.Node {
	org, cfg := a.org, a.cfg
	return behavior.NewSequence(
		behavior.NewCondition("is hungry", func() bool { return org.Hunger >= cfg.HungerSeek }),
		behavior.NewFallback(
			behavior.NewSequence(
				behavior.NewCondition("food here", func() bool { return a.foodAt(org.X, org.Y) != nil }),
				behavior.NewAction("eat", a.eat),
			),
			behavior.NewAction("seek food", a.seekFood),
		),
	)
}

// foodAt returns what org can eat at (x, y): grass for rabbits, an exposed
// rabbit for foxes.
func (a *animal) foodAt(x, y int) *components.Organism {
	switch a.org.Species {
	case components.SpeciesFox:
		for _, r := range a.g.OccupantsOfType(x, y, components.LayerMobile, components.SpeciesRabbit) {
			if !Sheltered(a.g, r) {
				return r
			}
		}
	default:
		if t := a.g.Terrain(x, y); t != nil && t.Species == components.SpeciesGrass && !t.Seed && t.Amount > 0 {
			return t
		}
	}
	return nil
}

func (a *animal) eat() behavior.Status {
	food := a.foodAt(a.org.X, a.org.Y)
	if food == nil {
		return behavior.Failure
	}
	if food.Species == components.SpeciesRabbit {
		a.g.Remove(food)
	} else {
		food.Amount -= a.cfg.FoodGain
	}
	a.org.Hunger = clamp(a.org.Hunger-a.cfg.FoodGain, 0, maxNeed)
	a.org.ClearPath()
	return behavior.Success
}

func (a *animal) seekFood() behavior.Status {
	org := a.org
	if target, ok := nearest(a.g, org, org.VisionRange, func(x, y int) bool {
		return a.foodAt(x, y) != nil
	}); ok {
		return moveToward(a.g, org, target, a.cfg.MaxPathLength)
	}
	if org.Species == components.SpeciesFox {
		return climb(a.g, org, a.g.RabbitScent())
	}
	return behavior.Failure
}

func (a *animal) drinkBranch() behavior.Node {
	org, cfg, g := a.org, a.cfg, a.g
	waterNear := func() bool {
		for _, p := range g.Neighbors(org.X, org.Y) {
			if g.IsWater(p.X, p.Y) {
				return true
			}
		}
		return false
	}
	return behavior.NewSequence(
		behavior.NewCondition("is thirsty", func() bool { return org.Thirst >= cfg.ThirstSeek }),
		behavior.NewFallback(
			behavior.NewSequence(
				behavior.NewCondition("water nearby", waterNear),
				behavior.NewAction("drink", func() behavior.Status {
					org.Thirst = clamp(org.Thirst-cfg.DrinkGain, 0, maxNeed)
					org.ClearPath()
					return behavior.Success
				}),
			),
			behavior.NewAction("seek water", func() behavior.Status {
				target, ok := nearest(g, org, cfg.MaxPathLength, g.IsWater)
				if !ok {
					return behavior.Failure
				}
				return moveToward(g, org, target, cfg.MaxPathLength)
			}),
		),
	)
}

func (a *animal) restBranch() behavior.Node {
	org, cfg, g := a.org, a.cfg, a.g
	kind := shelterFor(org.Species)

	return behavior.NewSequence(
		behavior.NewCondition("is tired", func() bool { return org.Tired >= cfg.TiredSeek }),
		behavior.NewFallback(
			behavior.NewSequence(
				behavior.NewCondition("at a shelter", func() bool {
					s := g.Structure(org.X, org.Y)
					return s != nil && s.Species == kind
				}),
				behavior.NewAction("sleep in shelter", func() behavior.Status {
					org.Home = g.Structure(org.X, org.Y).ID
					org.Asleep = true
					org.ClearPath()
					return behavior.Success
				}),
			),
			behavior.NewAction("go home", func() behavior.Status {
				home, ok := g.Lookup(org.Home)
				if !ok {
					return behavior.Failure
				}
				return moveToward(g, org, home.Pos(), cfg.MaxPathLength)
			}),
			behavior.NewSequence(
				behavior.NewCondition("can dig", func() bool { return g.Structure(org.X, org.Y) == nil }),
				behavior.NewAction("dig shelter", func() behavior.Status {
					s := NewShelter(g, kind)
					if err := g.Place(s, org.X, org.Y); err != nil {
						return behavior.Failure
					}
					org.Home = s.ID
					org.Asleep = true
					return behavior.Success
				}),
			),
			behavior.NewAction("sleep in the open", func() behavior.Status {
				org.Asleep = true
				org.ClearPath()
				return behavior.Success
			}),
		),
	)
}

func (a *animal) mateBranch() behavior.Node {
	org, cfg := a.org, a.cfg
	return behavior.NewSequence(
		behavior.NewCondition("wants to mate", func() bool {
			return a.ready(org) && org.Hunger < cfg.HungerSeek && org.Thirst < cfg.ThirstSeek
		}),
		behavior.NewFallback(
			behavior.NewSequence(
				behavior.NewCondition("partner ready nearby", func() bool {
					p, ok := a.partner()
					return ok && a.ready(p) && components.Chebyshev(org.Pos(), p.Pos()) <= 1
				}),
				behavior.NewAction("mate", a.mate),
			),
			behavior.NewAction("seek partner", a.seekPartner),
		),
	)
}

// ready reports whether o could conceive or sire right now.
func (a *animal) ready(o *components.Organism) bool {
	return o.Adult && !o.Pregnant && o.Timers.Cooldown <= 0
}

func (a *animal) partner() (*components.Organism, bool) {
	return a.g.Lookup(a.org.Partner)
}

func (a *animal) mate() behavior.Status {
	p, ok := a.partner()
	if !ok {
		return behavior.Failure
	}
	mother, father := a.org, p
	if !mother.Female {
		mother, father = p, a.org
	}
	mother.Pregnant = true
	mother.Sire = father.Traits
	mother.Timers.Reproduction = a.cfg.ReproductionTime
	mother.Timers.Cooldown = a.cfg.ReproductionCool
	father.Timers.Cooldown = a.cfg.ReproductionCool
	return behavior.Success
}

// seekPartner claims the nearest free mate in sight, then walks toward the
// partner. Claims are first come, first served: an animal that already has
// a live partner cannot be claimed.
func (a *animal) seekPartner() behavior.Status {
	g, org := a.g, a.org
	p, ok := a.partner()
	if !ok {
		target, found := nearest(g, org, org.VisionRange, func(x, y int) bool {
			return a.candidateAt(x, y) != nil
		})
		if !found {
			return behavior.Failure
		}
		p = a.candidateAt(target.X, target.Y)
		org.Partner = p.ID
		p.Partner = org.ID
	}
	if components.Chebyshev(org.Pos(), p.Pos()) <= 1 {
		// Waiting for the partner to be ready
		return behavior.Running
	}
	return moveToward(g, org, p.Pos(), a.cfg.MaxPathLength)
}

func (a *animal) candidateAt(x, y int) *components.Organism {
	for _, o := range a.g.OccupantsOfType(x, y, components.LayerMobile, a.org.Species) {
		if o == a.org || o.Female == a.org.Female || !a.ready(o) {
			continue
		}
		if _, taken := a.g.Lookup(o.Partner); taken {
			continue
		}
		return o
	}
	return nil
}
