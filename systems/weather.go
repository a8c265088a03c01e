package systems

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/config"
)

// Wind skews scent emission. Dir is Center when calm.
type Wind struct {
	Dir   components.Direction
	Speed float64
}

// Weather holds the per-tick wind and rain. Speed and rain follow smooth
// noise over time; wind direction jumps at random.
type Weather struct {
	cfg       config.WeatherConfig
	rng       *rand.Rand
	windNoise opensimplex.Noise
	rainNoise opensimplex.Noise
	ticks     int

	Wind Wind
	Rain float64 // Water delivered to every Earth cell this tick
}

// NewWeather creates weather seeded from rng.
func NewWeather(cfg config.WeatherConfig, rng *rand.Rand) *Weather {
	w := &Weather{
		cfg:       cfg,
		rng:       rng,
		windNoise: opensimplex.NewNormalized(rng.Int63()),
		rainNoise: opensimplex.NewNormalized(rng.Int63()),
	}
	w.Wind.Dir = components.Directions[rng.Intn(len(components.Directions))]
	return w
}

// Advance moves the weather forward one tick.
func (w *Weather) Advance() {
	w.ticks++
	if w.rng.Float64() < w.cfg.WindChangeChance {
		w.Wind.Dir = components.Directions[w.rng.Intn(len(components.Directions))]
	}

	t := float64(w.ticks) * w.cfg.NoiseScale
	if w.Wind.Dir.IsCenter() {
		w.Wind.Speed = 0
	} else {
		w.Wind.Speed = w.windNoise.Eval2(t, 0) * w.cfg.MaxWindSpeed
	}

	w.Rain = 0
	if r := w.rainNoise.Eval2(t, 0); r > w.cfg.RainThreshold {
		w.Rain = (r - w.cfg.RainThreshold) * w.cfg.RainIntensity
	}
}
