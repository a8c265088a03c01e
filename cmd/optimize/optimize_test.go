package main

import (
	"math"
	"testing"
	"time"

	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/telemetry"
)

func TestNormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	def := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(def))
	for i, spec := range pv.Specs {
		if math.Abs(back[i]-def[i]) > 1e-9 {
			t.Errorf("%s: got %v, want %v", spec.Name, back[i], def[i])
		}
	}
}

func TestDefaultsWithinBounds(t *testing.T) {
	for _, spec := range NewParamVector().Specs {
		if spec.Default < spec.Min || spec.Default > spec.Max {
			t.Errorf("%s: default %v outside [%v, %v]", spec.Name, spec.Default, spec.Min, spec.Max)
		}
	}
}

func TestApplyToConfig(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()

	values := pv.DefaultVector()
	for i, spec := range pv.Specs {
		switch spec.Name {
		case "rabbit_hunger_speed":
			values[i] = 100 // clamped to Max
		case "fox_repro_cooldown":
			values[i] = 300.4
		case "rabbit_litter_max":
			values[i] = 0 // clamped to Min
		}
	}
	pv.ApplyToConfig(cfg, values)

	if cfg.Species.Rabbit.HungerSpeed != 8 {
		t.Errorf("rabbit hunger speed = %v, want 8", cfg.Species.Rabbit.HungerSpeed)
	}
	if cfg.Species.Fox.ReproductionCool != 300 {
		t.Errorf("fox cooldown = %d, want 300", cfg.Species.Fox.ReproductionCool)
	}
	if cfg.Species.Rabbit.LitterMax < cfg.Species.Rabbit.LitterMin {
		t.Errorf("litter max %d below min %d", cfg.Species.Rabbit.LitterMax, cfg.Species.Rabbit.LitterMin)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestComputeQuality(t *testing.T) {
	fe := NewFitnessEvaluator(NewParamVector(), 100, []int64{1}, config.Default())

	steady := func(rabbits, foxes int) telemetry.WindowStats {
		return telemetry.WindowStats{
			Rabbits:      rabbits,
			Foxes:        foxes,
			RabbitBirths: 1,
			RabbitHunger: telemetry.Distribution{P50: 40},
			FoxHunger:    telemetry.Distribution{P50: 40},
		}
	}

	tests := []struct {
		name    string
		windows []telemetry.WindowStats
		min     float64
		max     float64
	}{
		{"too short", []telemetry.WindowStats{steady(60, 10)}, 0, 0},
		{"collapsed", []telemetry.WindowStats{steady(0, 0), steady(0, 0), steady(0, 0), steady(1, 0), steady(0, 1)}, 0, 0},
		{"ideal", []telemetry.WindowStats{steady(60, 10), steady(60, 10), steady(60, 10), steady(60, 10), steady(60, 10)}, 0.999, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := fe.computeQuality(tt.windows)
			if q < tt.min || q > tt.max {
				t.Errorf("quality = %v, want in [%v, %v]", q, tt.min, tt.max)
			}
		})
	}
}

func TestComputeFitnessScalesSurvival(t *testing.T) {
	fe := NewFitnessEvaluator(NewParamVector(), 100, []int64{1}, config.Default())
	if got := fe.computeFitness(&runResult{survivalTicks: 500}); got != -500 {
		t.Errorf("fitness = %v, want -500", got)
	}
}

func TestCV(t *testing.T) {
	if got := cv([]float64{5, 5, 5}); got != 0 {
		t.Errorf("cv of constant = %v, want 0", got)
	}
	if got := cv(nil); got != 0 {
		t.Errorf("cv of empty = %v, want 0", got)
	}
	if got := cv([]float64{2, 4}); math.Abs(got-1.0/3) > 1e-9 {
		t.Errorf("cv = %v, want 1/3", got)
	}
}

func TestBestTracker(t *testing.T) {
	b := &bestTracker{fitness: math.Inf(1)}
	vals := []float64{1, 2}
	b.observe(-10, vals)
	vals[0] = 99 // caller reuses its slice
	b.observe(-5, []float64{3, 4})

	if b.fitness != -10 {
		t.Errorf("fitness = %v, want -10", b.fitness)
	}
	if b.values[0] != 1 || b.values[1] != 2 {
		t.Errorf("values = %v, want [1 2]", b.values)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{65 * time.Second, "1m05s"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1h02m03s"},
		{400 * time.Millisecond, "0m00s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
