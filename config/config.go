// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World       WorldConfig       `yaml:"world"`
	Generation  GenerationConfig  `yaml:"generation"`
	Pathfinding PathfindingConfig `yaml:"pathfinding"`
	Scent       ScentConfig       `yaml:"scent"`
	Weather     WeatherConfig     `yaml:"weather"`
	Mutation    MutationConfig    `yaml:"mutation"`
	Simulation  SimulationConfig  `yaml:"simulation"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Bookmarks   BookmarksConfig   `yaml:"bookmarks"`
	Observer    ObserverConfig    `yaml:"observer"`
	Species     SpeciesConfig     `yaml:"species"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds grid dimensions and the per-cell capacity rule.
type WorldConfig struct {
	Width        int `yaml:"width"`
	Height       int `yaml:"height"`
	CellCapacity int `yaml:"cell_capacity"` // Max total mobile occupant size per cell
	TreePenalty  int `yaml:"tree_penalty"`  // Synthetic occupancy added by Tree terrain
}

// GenerationConfig holds initial world population parameters.
type GenerationConfig struct {
	WaterPools     []int   `yaml:"water_pools"`     // Cell count of each pool
	TreeFraction   float64 `yaml:"tree_fraction"`   // Probability a land cell is Tree
	GrassFraction  float64 `yaml:"grass_fraction"`  // Probability a non-tree land cell is Grass
	FlowerFraction float64 `yaml:"flower_fraction"` // Probability a non-tree land cell has a flower
	NoiseScale     float64 `yaml:"noise_scale"`     // Opensimplex frequency for vegetation clustering
	NoiseWeight    float64 `yaml:"noise_weight"`    // 0 = uniform placement, 1 = fully noise-driven
	Rabbits        int     `yaml:"rabbits"`
	Foxes          int     `yaml:"foxes"`
	Hives          int     `yaml:"hives"`
}

// PathfindingConfig holds A* parameters.
type PathfindingConfig struct {
	Heuristic       string  `yaml:"heuristic"`         // "squared" or "octile"
	MaxStepDistance float64 `yaml:"max_step_distance"` // Max Euclidean distance of one path step
}

// ScentConfig holds diffusion field parameters.
type ScentConfig struct {
	Decay          float64 `yaml:"decay"`           // Per-tick multiplier (0 = reset every tick)
	NectarRange    int     `yaml:"nectar_range"`    // Cells along each direction
	NectarStrength float64 `yaml:"nectar_strength"` // Contribution at the source
	RabbitRange    int     `yaml:"rabbit_range"`
	RabbitStrength float64 `yaml:"rabbit_strength"`
}

// WeatherConfig holds wind and rain parameters.
type WeatherConfig struct {
	MaxWindSpeed     float64 `yaml:"max_wind_speed"`
	WindChangeChance float64 `yaml:"wind_change_chance"` // Per-tick probability of a new wind direction
	WindAttenuation  float64 `yaml:"wind_attenuation"`   // How strongly wind skews scent
	NoiseScale       float64 `yaml:"noise_scale"`        // Opensimplex frequency over ticks
	RainThreshold    float64 `yaml:"rain_threshold"`     // Normalized noise above this rains
	RainIntensity    float64 `yaml:"rain_intensity"`     // Water per unit of noise above threshold
}

// MutationConfig holds the heritable trait mutation parameters.
type MutationConfig struct {
	Rate  float64 `yaml:"rate"`  // Probability a trait mutates at birth
	Sigma float64 `yaml:"sigma"` // Relative standard deviation of a mutation
}

// SimulationConfig holds tick policy switches.
type SimulationConfig struct {
	RecoverPanics bool `yaml:"recover_panics"` // Skip an organism whose tree panics instead of aborting
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"` // Ticks per stats window
	PerfCollectorWindow int `yaml:"perf_collector_window"`
}

// BookmarksConfig holds bookmark detection thresholds.
type BookmarksConfig struct {
	RabbitCrash     RabbitCrashConfig     `yaml:"rabbit_crash"`
	StableEcosystem StableEcosystemConfig `yaml:"stable_ecosystem"`
}

// RabbitCrashConfig holds rabbit crash detection parameters.
type RabbitCrashConfig struct {
	DropPercent float64 `yaml:"drop_percent"`
	MinDrop     int     `yaml:"min_drop"`
}

// StableEcosystemConfig holds stable ecosystem detection parameters.
type StableEcosystemConfig struct {
	MinRabbits    int     `yaml:"min_rabbits"`
	MinFoxes      int     `yaml:"min_foxes"`
	CVThreshold   float64 `yaml:"cv_threshold"`
	StableWindows int     `yaml:"stable_windows"`
}

// ObserverConfig holds the websocket feed parameters.
type ObserverConfig struct {
	Addr          string `yaml:"addr"`           // Empty disables the feed
	FrameInterval int    `yaml:"frame_interval"` // Publish every N ticks
}

// SpeciesConfig holds the per-species tuning tables.
type SpeciesConfig struct {
	Grass  GrassConfig   `yaml:"grass"`
	Flower FlowerConfig  `yaml:"flower"`
	Earth  EarthConfig   `yaml:"earth"`
	Hive   HiveConfig    `yaml:"hive"`
	Bee    BeeConfig     `yaml:"bee"`
	Burrow ShelterConfig `yaml:"burrow"`
	Den    ShelterConfig `yaml:"den"`
	Rabbit AnimalConfig  `yaml:"rabbit"`
	Fox    AnimalConfig  `yaml:"fox"`
}

// GrassConfig holds grass growth parameters.
type GrassConfig struct {
	GrowthSpeed           float64 `yaml:"growth_speed"`
	MaxAmount             float64 `yaml:"max_amount"`
	ReproductionThreshold float64 `yaml:"reproduction_threshold"`
	SpreadChance          float64 `yaml:"spread_chance"`
	SeedAmount            float64 `yaml:"seed_amount"` // Amount a spread seed starts with (<= 0)
	InitialMin            float64 `yaml:"initial_min"`
	InitialMax            float64 `yaml:"initial_max"`
}

// FlowerConfig holds flower growth and nectar parameters.
type FlowerConfig struct {
	GrowthSpeed           float64 `yaml:"growth_speed"`
	MaxAmount             float64 `yaml:"max_amount"`
	ReproductionThreshold float64 `yaml:"reproduction_threshold"` // Blooming at or above this
	PlantedSeedAmount     float64 `yaml:"planted_seed_amount"`
	InitialMin            float64 `yaml:"initial_min"`
	InitialMax            float64 `yaml:"initial_max"`
}

// EarthConfig holds soil water parameters.
type EarthConfig struct {
	WaterCapacity   float64 `yaml:"water_capacity"`
	FloodMultiplier float64 `yaml:"flood_multiplier"`
	Evaporation     float64 `yaml:"evaporation"` // Water lost per tick
}

// HiveConfig holds hive parameters.
type HiveConfig struct {
	Size               int     `yaml:"size"`
	InitialFood        float64 `yaml:"initial_food"`
	FoodConsumption    float64 `yaml:"food_consumption"`
	BeeMakingThreshold float64 `yaml:"bee_making_threshold"`
	BeeFoodCost        float64 `yaml:"bee_food_cost"`
	MinBees            int     `yaml:"min_bees"`
	Capacity           int     `yaml:"capacity"`
}

// BeeConfig holds bee parameters.
type BeeConfig struct {
	Size              int     `yaml:"size"`
	LifeSpan          int     `yaml:"life_span"`
	NectarCapacity    float64 `yaml:"nectar_capacity"`
	NectarPerVisit    float64 `yaml:"nectar_per_visit"`
	MovementCooldown  int     `yaml:"movement_cooldown"`
	PollinationChance float64 `yaml:"pollination_chance"`
	MaxPathLength     int     `yaml:"max_path_length"`
}

// ShelterConfig holds burrow and den parameters.
type ShelterConfig struct {
	Size       int `yaml:"size"` // Negative sizes enlarge the cell's capacity
	LifeLength int `yaml:"life_length"`
}

// AnimalConfig holds the tuning table shared by rabbits and foxes.
type AnimalConfig struct {
	Size             int     `yaml:"size"`
	LifeSpan         int     `yaml:"life_span"`
	AdultAge         int     `yaml:"adult_age"`
	HungerSpeed      float64 `yaml:"hunger_speed"`
	ThirstSpeed      float64 `yaml:"thirst_speed"`
	TiredSpeed       float64 `yaml:"tired_speed"`
	HungerSeek       float64 `yaml:"hunger_seek_threshold"`
	ThirstSeek       float64 `yaml:"thirst_seek_threshold"`
	TiredSeek        float64 `yaml:"tired_seek_threshold"`
	HungerDamage     float64 `yaml:"hunger_damage_threshold"`
	ThirstDamage     float64 `yaml:"thirst_damage_threshold"`
	TiredDamage      float64 `yaml:"tired_damage_threshold"`
	Damage           float64 `yaml:"damage"`   // Health lost per tick per exceeded threshold
	Recovery         float64 `yaml:"recovery"` // Health regained per tick when nothing hurts
	FoodGain         float64 `yaml:"food_gain"`
	DrinkGain        float64 `yaml:"drink_gain"`
	SleepRecovery    float64 `yaml:"sleep_recovery"`
	ReproductionTime int     `yaml:"reproduction_time"`
	ReproductionCool int     `yaml:"reproduction_cooldown"`
	LitterMin        int     `yaml:"litter_min"`
	LitterMax        int     `yaml:"litter_max"`
	MovementCooldown int     `yaml:"movement_cooldown"`
	VisionRange      int     `yaml:"vision_range"`
	MaxPathLength    int     `yaml:"max_path_length"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Cells       int  // World.Width * World.Height
	OctileHeur  bool // Pathfinding.Heuristic == "octile"
	ScentDecays bool // Scent.Decay > 0
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.ComputeDerived()

	return cfg, nil
}

// Validate rejects configurations the simulation cannot run with.
func (c *Config) Validate() error {
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("world size must be positive, got %dx%d", c.World.Width, c.World.Height)
	}
	if c.World.CellCapacity <= 0 {
		return fmt.Errorf("world.cell_capacity must be positive, got %d", c.World.CellCapacity)
	}
	switch c.Pathfinding.Heuristic {
	case "squared", "octile":
	default:
		return fmt.Errorf("pathfinding.heuristic must be squared or octile, got %q", c.Pathfinding.Heuristic)
	}
	if c.Scent.Decay < 0 || c.Scent.Decay > 1 {
		return fmt.Errorf("scent.decay must be in [0,1], got %v", c.Scent.Decay)
	}
	for name, a := range map[string]AnimalConfig{"rabbit": c.Species.Rabbit, "fox": c.Species.Fox} {
		if a.LitterMin > a.LitterMax {
			return fmt.Errorf("species.%s: litter_min %d exceeds litter_max %d", name, a.LitterMin, a.LitterMax)
		}
	}
	return nil
}

// ComputeDerived calculates values derived from loaded config.
// Call again after mutating a loaded Config in place.
func (c *Config) ComputeDerived() {
	c.Derived.Cells = c.World.Width * c.World.Height
	c.Derived.OctileHeur = c.Pathfinding.Heuristic == "octile"
	c.Derived.ScentDecays = c.Scent.Decay > 0
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	out.Generation.WaterPools = append([]int(nil), c.Generation.WaterPools...)
	return &out
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
