package species

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/meadow/behavior"
	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/systems"
)

func newGrid(w, h int) *systems.Grid {
	cfg := config.Default()
	cfg.World.Width = w
	cfg.World.Height = h
	cfg.ComputeDerived()
	return systems.NewGrid(cfg, rand.New(rand.NewSource(5)))
}

func place(t *testing.T, g *systems.Grid, org *components.Organism, x, y int) *components.Organism {
	t.Helper()
	if err := g.Place(org, x, y); err != nil {
		t.Fatalf("Place(%s, %d, %d) error = %v", org.Species, x, y, err)
	}
	return org
}

func TestTreesValidate(t *testing.T) {
	g := newGrid(3, 3)
	for sp := components.Species(0); sp < components.NumSpecies; sp++ {
		if sp == components.SpeciesBee {
			continue
		}
		org := New(g, sp)
		if org.Species != sp {
			t.Errorf("New(%s) returned %s", sp, org.Species)
		}
		if err := behavior.Validate(org.Tree); err != nil {
			t.Errorf("%s tree: %v", sp, err)
		}
	}
	hive := New(g, components.SpeciesHive)
	if err := behavior.Validate(NewBee(g, hive).Tree); err != nil {
		t.Errorf("bee tree: %v", err)
	}
}

func TestWaterAndTreeDoNothing(t *testing.T) {
	g := newGrid(2, 2)
	water := place(t, g, NewWater(), 0, 0)
	tree := place(t, g, NewTree(), 1, 1)
	if water.Run() != behavior.Failure || tree.Run() != behavior.Failure {
		t.Error("water and tree trees should be empty fallbacks")
	}
}

func TestGrassLifecycle(t *testing.T) {
	g := newGrid(3, 3)
	cfg := g.Config().Species.Grass

	seed := place(t, g, NewGrass(g, -0.1), 0, 0)
	seed.Run()
	if seed.Seed || seed.Amount <= 0 {
		t.Errorf("seed after growth: Seed=%v Amount=%v, want sprouted", seed.Seed, seed.Amount)
	}

	grass := place(t, g, NewGrass(g, cfg.MaxAmount), 1, 1)
	grass.Run()
	if grass.Amount != cfg.MaxAmount {
		t.Errorf("grass amount = %v, want capped at %v", grass.Amount, cfg.MaxAmount)
	}

	grass.Amount = -1
	grass.Run()
	if grass.Alive() {
		t.Error("grazed-out grass still alive")
	}
	if got := g.Terrain(1, 1); got == nil || got.Species != components.SpeciesEarth {
		t.Errorf("terrain after grass death = %v, want earth", got)
	}
}

func TestGrassSpreadsOntoEarth(t *testing.T) {
	g := newGrid(3, 3)
	g.Config().Species.Grass.SpreadChance = 1
	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			if x == 1 && y == 1 {
				continue
			}
			place(t, g, NewEarth(g), x, y)
		}
	}
	grass := place(t, g, NewGrass(g, 100), 1, 1)
	grass.Run()

	seeds := 0
	for _, p := range g.Neighbors(1, 1)[1:] {
		if tr := g.Terrain(p.X, p.Y); tr.Species == components.SpeciesGrass {
			seeds++
			if !tr.Seed || tr.Amount != g.Config().Species.Grass.SeedAmount {
				t.Errorf("spread grass at %v: Seed=%v Amount=%v", p, tr.Seed, tr.Amount)
			}
		}
	}
	if seeds != 1 {
		t.Errorf("spread %d seeds, want 1", seeds)
	}
}

func TestFlowerBloomsAndDies(t *testing.T) {
	g := newGrid(5, 5)
	place(t, g, NewEarth(g), 2, 2)
	flower := place(t, g, NewFlower(g, 100), 2, 2)

	flower.Run()
	if g.NectarScent().At(2, 2) <= 0 || g.NectarScent().At(3, 2) <= 0 {
		t.Error("blooming flower did not emit nectar scent")
	}

	bud := place(t, g, NewFlower(g, 10), 2, 2)
	before := g.NectarScent().Total()
	bud.Run()
	if g.NectarScent().Total() != before {
		t.Error("flower below threshold emitted scent")
	}

	bud.Amount = -5
	bud.Seed = false
	bud.Run()
	if bud.Alive() || len(g.Flora(2, 2)) != 1 {
		t.Error("dead flower not removed from the flora layer")
	}
}

func TestEarthFloods(t *testing.T) {
	g := newGrid(3, 3)
	cfg := &g.Config().Species.Earth
	cfg.Evaporation = 0
	flood := cfg.WaterCapacity * cfg.FloodMultiplier

	occupied := place(t, g, NewEarth(g), 0, 0)
	place(t, g, NewRabbit(g, true), 0, 0)
	occupied.Amount = flood
	occupied.Run()
	if !occupied.Alive() {
		t.Error("earth under an animal flooded")
	}

	open := place(t, g, NewEarth(g), 2, 2)
	open.Amount = flood
	open.Run()
	if open.Alive() || !g.IsWater(2, 2) {
		t.Error("saturated earth did not become water")
	}

	flowered := place(t, g, NewEarth(g), 1, 1)
	flower := place(t, g, NewFlower(g, 50), 1, 1)
	flowered.Amount = flood
	flowered.Run()
	if flowered.Alive() || !g.IsWater(1, 1) {
		t.Error("saturated earth under a flower did not become water")
	}
	if flower.Alive() || len(g.Flora(1, 1)) != 0 {
		t.Error("flower survived its cell flooding")
	}
}

func TestHive(t *testing.T) {
	g := newGrid(3, 3)
	cfg := g.Config().Species.Hive
	hive := place(t, g, NewHive(g), 1, 1)

	hive.Run()
	if len(hive.Children) != 1 {
		t.Fatalf("hive has %d bees, want 1", len(hive.Children))
	}
	bee, ok := g.Lookup(hive.Children[0])
	if !ok || bee.Pos() != hive.Pos() || bee.Home != hive.ID {
		t.Fatal("bee not placed at and linked to its hive")
	}
	want := cfg.InitialFood - cfg.FoodConsumption - cfg.BeeFoodCost
	if diff := hive.Amount - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("hive food = %v, want %v", hive.Amount, want)
	}

	// Bee dies, hive starves
	g.Remove(bee)
	if len(hive.Children) != 0 {
		t.Error("dead bee still listed by its hive")
	}
	hive.Amount = 0
	hive.Run()
	if hive.Alive() {
		t.Error("hive without food or bees still alive")
	}
}

func TestHiveRaisesBeesWhenFew(t *testing.T) {
	cfg := config.Default().Species.Hive

	tests := []struct {
		name string
		bees int
		want int
	}{
		{"below minimum", cfg.MinBees - 1, cfg.MinBees},
		{"at minimum", cfg.MinBees, cfg.MinBees + 1},
		{"above minimum", cfg.MinBees + 1, cfg.MinBees + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGrid(3, 3)
			hive := place(t, g, NewHive(g), 1, 1)
			for i := 0; i < tt.bees; i++ {
				bee := NewBee(g, hive)
				bee.Mother = hive.ID
				bee.Home = hive.ID
				place(t, g, bee, 1, 1)
				hive.Children = append(hive.Children, bee.ID)
			}
			// Enough for one cheap bee, short of the making threshold.
			hive.Amount = cfg.BeeFoodCost + 10

			hive.Run()
			if len(hive.Children) != tt.want {
				t.Errorf("hive has %d bees, want %d", len(hive.Children), tt.want)
			}
		})
	}
}

func TestBee(t *testing.T) {
	g := newGrid(5, 5)
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			place(t, g, NewEarth(g), x, y)
		}
	}
	hive := place(t, g, NewHive(g), 0, 0)
	flower := place(t, g, NewFlower(g, 100), 3, 3)

	bee := NewBee(g, hive)
	place(t, g, bee, 3, 3)
	bee.Home = hive.ID

	bee.Run()
	if bee.Nectar != g.Config().Species.Bee.NectarPerVisit || bee.Pollen != flower.ID {
		t.Errorf("bee nectar=%v pollen=%v after visiting a flower", bee.Nectar, bee.Pollen)
	}

	bee.Nectar = g.Config().Species.Bee.NectarCapacity
	for i := 0; i < 20 && bee.Pos() != hive.Pos(); i++ {
		bee.Run()
	}
	if bee.Pos() != hive.Pos() {
		t.Fatalf("full bee at %v, want hive %v", bee.Pos(), hive.Pos())
	}
	food := hive.Amount
	bee.Run()
	if bee.Nectar != 0 || hive.Amount <= food {
		t.Errorf("deposit: bee nectar=%v hive food %v -> %v", bee.Nectar, food, hive.Amount)
	}

	g.Remove(hive)
	bee.Run()
	if bee.Alive() {
		t.Error("bee outlived its hive")
	}
}

func TestShelterExpiry(t *testing.T) {
	g := newGrid(3, 3)
	g.Config().Species.Burrow.LifeLength = 3

	used := place(t, g, NewShelter(g, components.SpeciesBurrow), 0, 0)
	place(t, g, NewRabbit(g, true), 0, 0)
	unused := place(t, g, NewShelter(g, components.SpeciesBurrow), 2, 2)
	place(t, g, NewFox(g, true), 2, 2) // wrong species does not count as use

	for i := 0; i < 5; i++ {
		if used.Alive() {
			used.Run()
		}
		if unused.Alive() {
			unused.Run()
		}
	}
	if !used.Alive() {
		t.Error("burrow in use collapsed")
	}
	if unused.Alive() {
		t.Error("unused burrow did not collapse")
	}
}

func TestShelterCollapsesAtLifeLength(t *testing.T) {
	g := newGrid(1, 1)
	g.Config().Species.Den.LifeLength = 3
	den := place(t, g, NewShelter(g, components.SpeciesDen), 0, 0)

	for i := 1; i < 3; i++ {
		den.Run()
		if !den.Alive() {
			t.Fatalf("den collapsed after %d idle ticks, want 3", i)
		}
	}
	den.Run()
	if den.Alive() {
		t.Errorf("den still standing after %d idle ticks", den.Timers.Idle)
	}
}

func TestShelterHoldsOverfullCell(t *testing.T) {
	g := newGrid(2, 2)
	g.Config().Species.Den.LifeLength = 1
	den := place(t, g, NewShelter(g, components.SpeciesDen), 0, 0)
	for i := 0; i < 6; i++ {
		place(t, g, NewRabbit(g, true), 0, 0)
	}
	for i := 0; i < 3; i++ {
		den.Run()
	}
	if !den.Alive() {
		t.Error("den collapsed under an overfull cell")
	}
}

func TestRabbitEatsAndDrinks(t *testing.T) {
	g := newGrid(3, 3)
	cfg := g.Config().Species.Rabbit
	place(t, g, NewWater(), 0, 0)
	grass := place(t, g, NewGrass(g, 100), 1, 1)
	rabbit := place(t, g, NewRabbit(g, true), 1, 1)

	rabbit.Hunger = 60
	rabbit.Run()
	wantHunger := 60 + cfg.HungerSpeed - cfg.FoodGain
	if diff := rabbit.Hunger - wantHunger; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("hunger = %v, want %v", rabbit.Hunger, wantHunger)
	}
	if grass.Amount != 100-cfg.FoodGain {
		t.Errorf("grass amount = %v, want %v", grass.Amount, 100-cfg.FoodGain)
	}

	rabbit.Thirst = 60
	rabbit.Run()
	if rabbit.Thirst >= 60 {
		t.Errorf("thirst = %v after drinking next to water", rabbit.Thirst)
	}
}

func TestFoxHunting(t *testing.T) {
	g := newGrid(3, 3)
	fox := place(t, g, NewFox(g, false), 0, 0)
	prey := place(t, g, NewRabbit(g, true), 0, 0)
	fox.Hunger = 60

	fox.Run()
	if prey.Alive() {
		t.Fatal("fox did not eat an exposed rabbit in its cell")
	}
	if fox.Hunger >= 60 {
		t.Errorf("fox hunger = %v after eating", fox.Hunger)
	}

	place(t, g, NewShelter(g, components.SpeciesBurrow), 2, 2)
	hidden := place(t, g, NewRabbit(g, true), 2, 2)
	hidden.Asleep = true
	if err := g.Move(fox, 1, 1); err != nil {
		t.Fatal(err)
	}
	if err := g.Move(fox, 2, 2); err != nil {
		t.Fatal(err)
	}
	fox.Hunger = 60
	fox.Run()
	if !hidden.Alive() {
		t.Error("fox ate a rabbit sheltered in its burrow")
	}
}

func TestRestDigsShelter(t *testing.T) {
	g := newGrid(3, 3)
	rabbit := place(t, g, NewRabbit(g, false), 1, 1)
	rabbit.Tired = 60

	rabbit.Run()
	burrow := g.Structure(1, 1)
	if burrow == nil || burrow.Species != components.SpeciesBurrow {
		t.Fatalf("structure = %v, want a burrow", burrow)
	}
	if !rabbit.Asleep || rabbit.Home != burrow.ID {
		t.Error("rabbit not asleep at its new home")
	}
	if !Sheltered(g, rabbit) {
		t.Error("rabbit asleep in its burrow should be sheltered")
	}

	rabbit.Tired = 0
	rabbit.Run()
	if rabbit.Asleep {
		t.Error("rested rabbit did not wake")
	}
}

func TestMatingAndBirth(t *testing.T) {
	g := newGrid(5, 5)
	cfg := g.Config().Species.Rabbit
	male := place(t, g, NewRabbit(g, false), 2, 2)
	female := place(t, g, NewRabbit(g, true), 2, 2)

	if st := male.Run(); st != behavior.Running {
		t.Errorf("male seeking partner = %v, want running", st)
	}
	if male.Partner != female.ID || female.Partner != male.ID {
		t.Fatal("partners not linked")
	}

	female.Run()
	if !female.Pregnant || female.Timers.Reproduction != cfg.ReproductionTime {
		t.Fatalf("female pregnant=%v timer=%d", female.Pregnant, female.Timers.Reproduction)
	}
	if male.Timers.Cooldown != cfg.ReproductionCool {
		t.Errorf("male cooldown = %d, want %d", male.Timers.Cooldown, cfg.ReproductionCool)
	}

	female.Timers.Reproduction = 1
	female.Run()
	if female.Pregnant {
		t.Fatal("female still pregnant after term")
	}
	n := len(female.Children)
	if n < cfg.LitterMin || n > cfg.LitterMax {
		t.Fatalf("litter size = %d, want %d..%d", n, cfg.LitterMin, cfg.LitterMax)
	}
	for _, id := range female.Children {
		kit, ok := g.Lookup(id)
		if !ok {
			t.Fatal("child ID does not resolve")
		}
		if kit.Adult || kit.Mother != female.ID || kit.Size >= cfg.Size {
			t.Errorf("kit adult=%v mother ok=%v size=%d", kit.Adult, kit.Mother == female.ID, kit.Size)
		}
		if components.Chebyshev(kit.Pos(), female.Pos()) > 1 {
			t.Errorf("kit born at %v, away from mother at %v", kit.Pos(), female.Pos())
		}
	}
}

func TestMateClaimIsFirstCome(t *testing.T) {
	g := newGrid(3, 3)
	female := place(t, g, NewRabbit(g, true), 1, 1)
	first := place(t, g, NewRabbit(g, false), 1, 1)
	second := place(t, g, NewRabbit(g, false), 1, 1)

	first.Run()
	second.Run()
	if female.Partner != first.ID {
		t.Error("first suitor did not keep the claim")
	}
	if second.Partner != components.NoID {
		t.Error("second suitor claimed a taken partner")
	}
}

func TestOldAge(t *testing.T) {
	g := newGrid(2, 2)
	fox := place(t, g, NewFox(g, true), 0, 0)
	fox.Age = fox.LifeSpan
	if fox.Run() != behavior.Failure || fox.Alive() {
		t.Error("fox at its life span should die")
	}
}

func TestMovementCooldownReportsRunning(t *testing.T) {
	g := newGrid(5, 1)
	place(t, g, NewGrass(g, 100), 3, 0)
	rabbit := place(t, g, NewRabbit(g, true), 0, 0)
	rabbit.Hunger = 60
	rabbit.Timers.Movement = 3

	if st := rabbit.Run(); st != behavior.Running {
		t.Errorf("cooling-down rabbit = %v, want running", st)
	}
	if rabbit.Pos() != (components.Position{X: 0, Y: 0}) {
		t.Error("rabbit moved during cooldown")
	}
}

func TestInherit(t *testing.T) {
	mother := components.Traits{HungerSpeed: 2, ThirstSpeed: 1, TiredSpeed: 4, MaxSize: 20, VisionRange: 3, MovementCooldown: 1, LifeSpan: 100}
	father := components.Traits{HungerSpeed: 4, ThirstSpeed: 3, TiredSpeed: 2, MaxSize: 30, VisionRange: 5, MovementCooldown: 3, LifeSpan: 200}
	rng := rand.New(rand.NewSource(1))

	tests := []struct {
		name string
		cfg  config.MutationConfig
	}{
		{"no mutation", config.MutationConfig{Rate: 0, Sigma: 0.5}},
		{"zero sigma", config.MutationConfig{Rate: 1, Sigma: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Inherit(rng, tt.cfg, mother, father)
			want := components.Traits{HungerSpeed: 3, ThirstSpeed: 2, TiredSpeed: 3, MaxSize: 25, VisionRange: 4, MovementCooldown: 2, LifeSpan: 150}
			if got != want {
				t.Errorf("Inherit() = %+v, want %+v", got, want)
			}
		})
	}

	wild := config.MutationConfig{Rate: 1, Sigma: 5}
	for i := 0; i < 500; i++ {
		got := Inherit(rng, wild, mother, father)
		if got.HungerSpeed <= 0 || got.ThirstSpeed <= 0 || got.TiredSpeed <= 0 ||
			got.MaxSize < 1 || got.VisionRange < 1 || got.MovementCooldown < 1 {
			t.Fatalf("mutated traits not positive: %+v", got)
		}
	}
}
