// Package main searches rabbit, fox and grass constants with CMA-ES for
// meadows where both animal species survive as long as possible.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/meadow/config"
)

type options struct {
	configPath string
	maxTicks   int
	seeds      int
	maxEvals   int
	population int
	outputDir  string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Base config YAML file (empty = use defaults)")
	flag.IntVar(&opts.maxTicks, "max-ticks", 24*365, "Simulated hours per run (cap)")
	flag.IntVar(&opts.seeds, "seeds", 3, "Worlds generated per evaluation")
	flag.IntVar(&opts.maxEvals, "max-evals", 200, "Maximum number of evaluations")
	flag.IntVar(&opts.population, "population", 0, "CMA-ES population size (0 = auto)")
	flag.StringVar(&opts.outputDir, "output", "", "Output directory for results")
	flag.Parse()

	if opts.outputDir == "" {
		log.Fatal("--output is required")
	}

	// Every run logs its generated world; keep only warnings.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if err := run(opts); err != nil {
		log.Fatal(err)
	}
}

func run(opts options) error {
	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	baseCfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	params := NewParamVector()
	seeds := make([]int64, opts.seeds)
	for i := range seeds {
		seeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, opts.maxTicks, seeds, baseCfg)

	evalLog, err := newEvalLog(filepath.Join(opts.outputDir, "optimize_log.csv"), params)
	if err != nil {
		return err
	}
	defer evalLog.Close()

	popSize := opts.population
	if popSize == 0 {
		// 4 + floor(3 ln n)
		popSize = 4 + int(3*math.Log(float64(params.Dim())))
	}

	best := &bestTracker{fitness: math.Inf(1)}
	progress := newProgress(opts.maxEvals)

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			values := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(values)
			quality := evaluator.LastQuality()

			best.observe(fitness, values)
			n := progress.step()
			if err := evalLog.Write(n, fitness, quality, values); err != nil {
				slog.Warn("failed to log evaluation", "eval", n, "error", err)
			}
			progress.report(n, fitness, quality, best.fitness)
			return fitness
		},
	}

	fmt.Printf("Starting CMA-ES optimization with %d parameters, population=%d, max_evals=%d\n",
		params.Dim(), popSize, opts.maxEvals)
	fmt.Printf("Seeds per evaluation: %d, ticks per run: %d\n", opts.seeds, opts.maxTicks)

	result, err := optimize.Minimize(problem, params.Normalize(params.DefaultVector()),
		&optimize.Settings{FuncEvaluations: opts.maxEvals},
		&optimize.CmaEsChol{InitStepSize: 0.3, Population: popSize})
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}
	if best.values == nil && result != nil {
		best.values = params.Clamp(params.Denormalize(result.X))
	}
	if best.values == nil {
		return fmt.Errorf("no evaluations completed")
	}

	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", progress.done, formatDuration(progress.elapsed()))
	fmt.Printf("Best fitness: %.0f\n", best.fitness)
	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %-24s %-40s %.6f\n", spec.Name, spec.Path, best.values[i])
	}

	bestCfg := baseCfg.Clone()
	params.ApplyToConfig(bestCfg, best.values)
	path := filepath.Join(opts.outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(path); err != nil {
		return fmt.Errorf("writing best config: %w", err)
	}
	fmt.Printf("\nBest config saved to: %s\n", path)
	return nil
}

// bestTracker remembers the best parameters seen across all evaluations,
// which may not be the optimizer's final point.
type bestTracker struct {
	fitness float64
	values  []float64
}

func (b *bestTracker) observe(fitness float64, values []float64) {
	if fitness < b.fitness {
		b.fitness = fitness
		b.values = append(b.values[:0], values...)
	}
}

// evalLog writes one CSV row per evaluation with the clamped values used.
type evalLog struct {
	f *os.File
	w *csv.Writer
}

func newEvalLog(path string, params *ParamVector) (*evalLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating eval log: %w", err)
	}
	header := []string{"eval", "fitness", "quality"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	l := &evalLog{f: f, w: csv.NewWriter(f)}
	if err := l.w.Write(header); err != nil {
		f.Close()
		return nil, err
	}
	return l, nil
}

func (l *evalLog) Write(eval int, fitness, quality float64, values []float64) error {
	row := []string{
		strconv.Itoa(eval),
		strconv.FormatFloat(fitness, 'f', 6, 64),
		strconv.FormatFloat(quality, 'f', 4, 64),
	}
	for _, v := range values {
		row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
	}
	if err := l.w.Write(row); err != nil {
		return err
	}
	l.w.Flush()
	return l.w.Error()
}

func (l *evalLog) Close() error {
	l.w.Flush()
	return l.f.Close()
}

// progress prints one line per evaluation with an ETA.
type progress struct {
	total int
	done  int
	start time.Time
}

func newProgress(total int) *progress {
	return &progress{total: total, start: time.Now()}
}

func (p *progress) step() int {
	p.done++
	return p.done
}

func (p *progress) elapsed() time.Duration { return time.Since(p.start) }

func (p *progress) report(n int, fitness, quality, best float64) {
	elapsed := p.elapsed()
	remaining := time.Duration(p.total-n) * (elapsed / time.Duration(n))

	// fitness = -(ticks × (1 + 0.2 × quality)); one tick is an hour
	days := -fitness / (1 + 0.2*quality) / 24
	fmt.Printf("Eval %d/%d: survived=%.1fd quality=%.2f (best=%.0f) | elapsed: %s, ETA: %s\n",
		n, p.total, days, quality, best, formatDuration(elapsed), formatDuration(remaining))
}

// formatDuration formats a duration as 1h02m03s or 2m03s.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
