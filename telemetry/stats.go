package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of ticks.
type WindowStats struct {
	WindowStartTick int `csv:"-"`
	WindowEndTick   int `csv:"window_end"`

	// Population counts at window end
	Water   int `csv:"water"`
	Earth   int `csv:"earth"`
	Trees   int `csv:"trees"`
	Grass   int `csv:"grass"`
	Flowers int `csv:"flowers"`
	Rabbits int `csv:"rabbits"`
	Foxes   int `csv:"foxes"`
	Bees    int `csv:"bees"`
	Hives   int `csv:"hives"`
	Burrows int `csv:"burrows"`
	Dens    int `csv:"dens"`

	// Events during window
	RabbitBirths int `csv:"rabbit_births"`
	FoxBirths    int `csv:"fox_births"`
	BeeBirths    int `csv:"bee_births"`
	FlowerBirths int `csv:"flower_births"`
	RabbitDeaths int `csv:"rabbit_deaths"`
	FoxDeaths    int `csv:"fox_deaths"`
	BeeDeaths    int `csv:"bee_deaths"`
	Floods       int `csv:"floods"`

	// Vitals distributions (sampled at window end)
	RabbitHunger Distribution `csv:"-"`
	RabbitThirst Distribution `csv:"-"`
	FoxHunger    Distribution `csv:"-"`
	FoxThirst    Distribution `csv:"-"`

	// Mean age at death since the run began
	RabbitLifetime float64 `csv:"rabbit_lifetime"`
	FoxLifetime    float64 `csv:"fox_lifetime"`
	BeeLifetime    float64 `csv:"bee_lifetime"`

	HiveFood    float64 `csv:"hive_food"`
	NectarScent float64 `csv:"nectar_scent"`
	RabbitScent float64 `csv:"rabbit_scent"`
	WindSpeed   float64 `csv:"wind_speed"`
	Rain        float64 `csv:"rain"`
}

// Distribution summarizes a sample.
type Distribution struct {
	Mean, Std, P10, P50, P90 float64
}

// WindowStatsCSV is the flat row written to telemetry.csv.
type WindowStatsCSV struct {
	WindowStats

	RabbitHungerMean float64 `csv:"rabbit_hunger_mean"`
	RabbitHungerStd  float64 `csv:"rabbit_hunger_std"`
	RabbitHungerP10  float64 `csv:"rabbit_hunger_p10"`
	RabbitHungerP50  float64 `csv:"rabbit_hunger_p50"`
	RabbitHungerP90  float64 `csv:"rabbit_hunger_p90"`
	RabbitThirstMean float64 `csv:"rabbit_thirst_mean"`
	RabbitThirstP50  float64 `csv:"rabbit_thirst_p50"`
	FoxHungerMean    float64 `csv:"fox_hunger_mean"`
	FoxHungerStd     float64 `csv:"fox_hunger_std"`
	FoxHungerP10     float64 `csv:"fox_hunger_p10"`
	FoxHungerP50     float64 `csv:"fox_hunger_p50"`
	FoxHungerP90     float64 `csv:"fox_hunger_p90"`
	FoxThirstMean    float64 `csv:"fox_thirst_mean"`
	FoxThirstP50     float64 `csv:"fox_thirst_p50"`
}

// ToCSV flattens the vitals distributions into columns.
func (s WindowStats) ToCSV() WindowStatsCSV {
	return WindowStatsCSV{
		WindowStats:      s,
		RabbitHungerMean: s.RabbitHunger.Mean,
		RabbitHungerStd:  s.RabbitHunger.Std,
		RabbitHungerP10:  s.RabbitHunger.P10,
		RabbitHungerP50:  s.RabbitHunger.P50,
		RabbitHungerP90:  s.RabbitHunger.P90,
		RabbitThirstMean: s.RabbitThirst.Mean,
		RabbitThirstP50:  s.RabbitThirst.P50,
		FoxHungerMean:    s.FoxHunger.Mean,
		FoxHungerStd:     s.FoxHunger.Std,
		FoxHungerP10:     s.FoxHunger.P10,
		FoxHungerP50:     s.FoxHunger.P50,
		FoxHungerP90:     s.FoxHunger.P90,
		FoxThirstMean:    s.FoxThirst.Mean,
		FoxThirstP50:     s.FoxThirst.P50,
	}
}

// Percentile calculates the p-th percentile of a sorted slice by linear
// interpolation between closest ranks. p should be in [0, 1]. Returns 0 if
// the slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Summarize computes the population mean and standard deviation and the
// 10th, 50th and 90th percentiles of values.
func Summarize(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}

	mean, std := stat.PopMeanStdDev(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return Distribution{
		Mean: mean,
		Std:  std,
		P10:  Percentile(sorted, 0.10),
		P50:  Percentile(sorted, 0.50),
		P90:  Percentile(sorted, 0.90),
	}
}

// LogValue implements slog.LogValuer.
func (d Distribution) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("mean", d.Mean),
		slog.Float64("std", d.Std),
		slog.Float64("p10", d.P10),
		slog.Float64("p50", d.P50),
		slog.Float64("p90", d.P90),
	)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStartTick),
		slog.Int("window_end", s.WindowEndTick),
		slog.Int("water", s.Water),
		slog.Int("earth", s.Earth),
		slog.Int("trees", s.Trees),
		slog.Int("grass", s.Grass),
		slog.Int("flowers", s.Flowers),
		slog.Int("rabbits", s.Rabbits),
		slog.Int("foxes", s.Foxes),
		slog.Int("bees", s.Bees),
		slog.Int("hives", s.Hives),
		slog.Int("burrows", s.Burrows),
		slog.Int("dens", s.Dens),
		slog.Int("rabbit_births", s.RabbitBirths),
		slog.Int("fox_births", s.FoxBirths),
		slog.Int("bee_births", s.BeeBirths),
		slog.Int("flower_births", s.FlowerBirths),
		slog.Int("rabbit_deaths", s.RabbitDeaths),
		slog.Int("fox_deaths", s.FoxDeaths),
		slog.Int("bee_deaths", s.BeeDeaths),
		slog.Int("floods", s.Floods),
		slog.Any("rabbit_hunger", s.RabbitHunger),
		slog.Any("rabbit_thirst", s.RabbitThirst),
		slog.Any("fox_hunger", s.FoxHunger),
		slog.Any("fox_thirst", s.FoxThirst),
		slog.Float64("rabbit_lifetime", s.RabbitLifetime),
		slog.Float64("fox_lifetime", s.FoxLifetime),
		slog.Float64("bee_lifetime", s.BeeLifetime),
		slog.Float64("hive_food", s.HiveFood),
		slog.Float64("nectar_scent", s.NectarScent),
		slog.Float64("rabbit_scent", s.RabbitScent),
		slog.Float64("wind_speed", s.WindSpeed),
		slog.Float64("rain", s.Rain),
	)
}

// LogStats logs the headline numbers of the window.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"rabbits", s.Rabbits,
		"foxes", s.Foxes,
		"bees", s.Bees,
		"hives", s.Hives,
		"grass", s.Grass,
		"flowers", s.Flowers,
		"rabbit_births", s.RabbitBirths,
		"fox_births", s.FoxBirths,
		"rabbit_deaths", s.RabbitDeaths,
		"fox_deaths", s.FoxDeaths,
		"rabbit_hunger_mean", s.RabbitHunger.Mean,
		"fox_hunger_mean", s.FoxHunger.Mean,
		"hive_food", s.HiveFood,
		"rain", s.Rain,
	)
}
