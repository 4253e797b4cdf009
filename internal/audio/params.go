package audio

import (
	"github.com/olivier-w/sonoscope/internal/config"
	"github.com/olivier-w/sonoscope/internal/player"
)

// Params carries everything a source factory may need.
type Params struct {
	SampleRate int // microphone capture rate
	Volume     float64
	MediaPath  string
	Mic        config.Mic
	Tone       config.Tone
}

// ParamsFromConfig builds Params from the loaded configuration.
func ParamsFromConfig(cfg config.Config) Params {
	return Params{
		SampleRate: cfg.Analysis.SampleRate,
		Volume:     0.8,
		MediaPath:  cfg.Media.Path,
		Mic:        cfg.Mic,
		Tone:       cfg.Tone,
	}
}

// SampleRateFor returns the rate a source of the given mode feeds the sink at.
// Only the microphone follows the configured rate; tone and media play through
// the shared output at a fixed rate.
func SampleRateFor(mode Mode, p Params) int {
	switch mode {
	case ModeMicrophone:
		return p.SampleRate
	case ModeTone, ModeMedia:
		return player.OutputSampleRate
	}
	return 0
}
