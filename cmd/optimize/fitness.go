package main

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/game"
	"github.com/pthm-cable/meadow/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int
	seeds       []int64
	baseConfig  *config.Config
	statsWindow int

	mu          sync.Mutex
	bestFitness float64
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 24, // one simulated day per window
		bestFitness: math.Inf(1),
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// If either animal species stays below minViablePop for extinctionGraceTicks
// consecutive ticks it counts as functionally extinct.
const (
	minViablePop         = 2
	extinctionGraceTicks = 24 * 14
	warmupTicks          = 24
)

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalTicks int                     // ticks before functional extinction (or maxTicks if survived)
	windowStats   []telemetry.WindowStats // collected via StatsCallback each window
}

type seedResult struct {
	fitness float64
	quality float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative survival ticks scaled by ecosystem quality.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result, err := fe.runSimulation(x, s)
			if err != nil {
				// Unusable parameters score as an immediate collapse.
				results[idx] = seedResult{}
				return
			}
			results[idx] = seedResult{
				fitness: fe.computeFitness(result),
				quality: fe.computeQuality(result.windowStats),
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
	}
	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
	}
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation executes a single headless simulation run until functional
// extinction or maxTicks, whichever comes first.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) (*runResult, error) {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	result := &runResult{}
	g, err := game.NewGameWithOptions(game.Options{
		Seed:        seed,
		StatsWindow: fe.statsWindow,
		Config:      cfg,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		return nil, err
	}
	defer g.Unload()

	var rabbitsBelow, foxesBelow int
	for g.Tick() < fe.maxTicks {
		g.Step()

		tick := g.Tick()
		if tick < warmupTicks {
			continue
		}

		rabbits, foxes := g.RabbitCount(), g.FoxCount()
		if rabbits == 0 || foxes == 0 {
			result.survivalTicks = tick
			return result, nil
		}

		if rabbits < minViablePop {
			rabbitsBelow++
		} else {
			rabbitsBelow = 0
		}
		if foxes < minViablePop {
			foxesBelow++
		} else {
			foxesBelow = 0
		}
		if rabbitsBelow >= extinctionGraceTicks || foxesBelow >= extinctionGraceTicks {
			result.survivalTicks = tick
			return result, nil
		}
	}

	result.survivalTicks = fe.maxTicks
	return result, nil
}

// computeFitness calculates the scalar fitness (lower = better):
// -(survivalTicks × (1.0 + 0.2 × quality)).
func (fe *FitnessEvaluator) computeFitness(r *runResult) float64 {
	survival := float64(r.survivalTicks)
	quality := fe.computeQuality(r.windowStats)
	return -(survival * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightRatio     = 0.35
	qualityWeightStability = 0.30
	qualityWeightHunger    = 0.20
	qualityWeightBreeding  = 0.15

	qualityWarmupWindows = 3 // skip first N windows (warmup)
	qualityMinPop        = 2 // exclude windows where either species < this
	targetRatio          = 6.0
)

// computeQuality computes ecosystem quality in [0, 1] from window stats.
func (fe *FitnessEvaluator) computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}

	var ratioSum, hungerSum, breedSum float64
	var count int
	rabbits := make([]float64, 0, len(windows))
	foxes := make([]float64, 0, len(windows))

	for _, w := range windows[qualityWarmupWindows:] {
		if w.Rabbits < qualityMinPop || w.Foxes < qualityMinPop {
			continue
		}
		count++
		rabbits = append(rabbits, float64(w.Rabbits))
		foxes = append(foxes, float64(w.Foxes))

		logErr := math.Log(float64(w.Rabbits) / float64(w.Foxes) / targetRatio)
		ratioSum += math.Exp(-logErr * logErr)

		// Animals that are neither starving nor gorged sit around 40.
		rabbitH := math.Exp(-math.Pow((w.RabbitHunger.P50-40)/25, 2))
		foxH := math.Exp(-math.Pow((w.FoxHunger.P50-40)/25, 2))
		hungerSum += (rabbitH + foxH) / 2

		if w.RabbitBirths+w.FoxBirths > 0 {
			breedSum++
		}
	}
	if count == 0 {
		return 0
	}

	stability := 0.0
	if len(rabbits) >= 2 {
		cr, cf := cv(rabbits), cv(foxes)
		stability = math.Exp(-(cr*cr + cf*cf))
	}

	n := float64(count)
	quality := qualityWeightRatio*ratioSum/n +
		qualityWeightStability*stability +
		qualityWeightHunger*hungerSum/n +
		qualityWeightBreeding*breedSum/n

	return clamp01(quality)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return math.Min(math.Max(x, 0), 1)
}
