package visualizer

import (
	"time"

	"github.com/olivier-w/sonoscope/internal/analysis"
	"github.com/olivier-w/sonoscope/internal/scene"
)

// Frame is the state a visualizer draws for one render tick.
type Frame struct {
	Bands       analysis.Bands
	Volume      float64 // RMS in [0, 1]
	Sensitivity float64
	Elapsed     time.Duration
	Scene       *scene.Scene
}

// Visualizer renders a Frame as terminal text.
type Visualizer interface {
	Name() string
	Update(f Frame, width, height int)
	View() string
}

// Modes returns all available visualizers.
func Modes(fps int) []Visualizer {
	return []Visualizer{
		NewSceneView(fps),
		NewBandMeter(fps),
		NewVUMeter(),
	}
}
