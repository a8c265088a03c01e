package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/systems"
)

// Frame is a read-only view of the grid at the end of a tick: every live
// organism with its position and species.
type Frame struct {
	Tick      int             `json:"tick"`
	Width     int             `json:"width"`
	Height    int             `json:"height"`
	Organisms []OrganismState `json:"organisms"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// OrganismState is one organism's entry in a Frame.
type OrganismState struct {
	ID      uint32             `json:"id"`
	Species components.Species `json:"species"`
	X       int                `json:"x"`
	Y       int                `json:"y"`
}

// CaptureFrame builds a Frame from the organisms RunTick returned.
func CaptureFrame(g *systems.Grid, orgs []*components.Organism) Frame {
	f := Frame{
		Tick:      g.Tick(),
		Width:     g.Width(),
		Height:    g.Height(),
		Organisms: make([]OrganismState, 0, len(orgs)),
	}
	for _, o := range orgs {
		f.Organisms = append(f.Organisms, OrganismState{
			ID:      o.ID.ID(),
			Species: o.Species,
			X:       o.X,
			Y:       o.Y,
		})
	}
	return f
}

// Counts tallies the frame's organisms per species.
func (f Frame) Counts() map[components.Species]int {
	counts := make(map[components.Species]int)
	for _, o := range f.Organisms {
		counts[o.Species]++
	}
	return counts
}

// WriteFrame saves a frame as JSON under dir/frames, named by tick.
func WriteFrame(dir string, f Frame) (string, error) {
	framesDir := filepath.Join(dir, "frames")
	if err := os.MkdirAll(framesDir, 0755); err != nil {
		return "", fmt.Errorf("creating frames directory: %w", err)
	}

	name := fmt.Sprintf("tick_%08d", f.Tick)
	if f.Bookmark != nil {
		name += "_" + string(f.Bookmark.Type)
	}
	path := filepath.Join(framesDir, name+".json")

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling frame: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing frame: %w", err)
	}
	return path, nil
}
