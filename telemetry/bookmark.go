package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/meadow/config"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkRabbitCrash     BookmarkType = "rabbit_crash"
	BookmarkFoxExtinction   BookmarkType = "fox_extinction"
	BookmarkBeeExtinction   BookmarkType = "bee_extinction"
	BookmarkStableEcosystem BookmarkType = "stable_ecosystem"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Tick        int          `csv:"tick" json:"tick"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	cfg config.BookmarksConfig

	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	recentRabbitPeak   int
	prevFoxes          int
	prevBees           int
	stableWindowsCount int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(cfg config.BookmarksConfig, historySize int) *BookmarkDetector {
	if historySize < 4 {
		historySize = 4
	}
	return &BookmarkDetector{
		cfg:         cfg,
		history:     make([]WindowStats, historySize),
		historySize: historySize,
		prevFoxes:   -1,
		prevBees:    -1,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkRabbitCrash(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkExtinction(BookmarkFoxExtinction, "foxes", bd.prevFoxes, stats.Foxes, stats.WindowEndTick); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkExtinction(BookmarkBeeExtinction, "bees", bd.prevBees, stats.Bees, stats.WindowEndTick); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)

	if b := bd.checkStableEcosystem(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if stats.Rabbits > bd.recentRabbitPeak {
		bd.recentRabbitPeak = stats.Rabbits
	}
	bd.prevFoxes = stats.Foxes
	bd.prevBees = stats.Bees

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkRabbitCrash(stats WindowStats) *Bookmark {
	if bd.recentRabbitPeak == 0 {
		return nil
	}

	cfg := bd.cfg.RabbitCrash
	drop := 1.0 - float64(stats.Rabbits)/float64(bd.recentRabbitPeak)
	if drop > cfg.DropPercent && bd.recentRabbitPeak-stats.Rabbits >= cfg.MinDrop {
		oldPeak := bd.recentRabbitPeak
		bd.recentRabbitPeak = stats.Rabbits

		return &Bookmark{
			Type:        BookmarkRabbitCrash,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Rabbits crashed %.0f%% from peak %d to %d", drop*100, oldPeak, stats.Rabbits),
		}
	}

	return nil
}

// checkExtinction fires on the first window a population is seen at zero
// after being present.
func (bd *BookmarkDetector) checkExtinction(typ BookmarkType, name string, prev, now, tick int) *Bookmark {
	if prev <= 0 || now > 0 {
		return nil
	}
	return &Bookmark{
		Type:        typ,
		Tick:        tick,
		Description: fmt.Sprintf("All %s died out (%d in the previous window)", name, prev),
	}
}

func (bd *BookmarkDetector) checkStableEcosystem(stats WindowStats) *Bookmark {
	cfg := bd.cfg.StableEcosystem
	if stats.Rabbits < cfg.MinRabbits || stats.Foxes < cfg.MinFoxes {
		bd.stableWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	recent := history
	if bd.historyFull {
		// Oldest entry sits at the write index once the ring has wrapped.
		recent = append(append([]WindowStats(nil), history[bd.historyIdx:]...), history[:bd.historyIdx]...)
	}
	recent = recent[len(recent)-4:]

	rabbits := make([]float64, len(recent))
	foxes := make([]float64, len(recent))
	for i, h := range recent {
		rabbits[i] = float64(h.Rabbits)
		foxes[i] = float64(h.Foxes)
	}

	if cv(rabbits) < cfg.CVThreshold && cv(foxes) < cfg.CVThreshold {
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == cfg.StableWindows {
		return &Bookmark{
			Type:        BookmarkStableEcosystem,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Stable ecosystem with %d rabbits, %d foxes over %d windows", stats.Rabbits, stats.Foxes, cfg.StableWindows),
		}
	}

	return nil
}

// cv returns the coefficient of variation of xs, or 0 for a zero mean.
func cv(xs []float64) float64 {
	mean, std := stat.PopMeanStdDev(xs, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}
