package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/sonoscope/internal/analysis"
	"github.com/olivier-w/sonoscope/internal/audio"
	"github.com/olivier-w/sonoscope/internal/config"
	"github.com/olivier-w/sonoscope/internal/ui"
	"github.com/olivier-w/sonoscope/internal/util"
)

type flags struct {
	config      string
	media       string
	sensitivity float64
	particles   int
	mode        string
	debug       bool
}

func main() {
	var f flags
	flag.StringVar(&f.config, "config", "", "TOML config file (reloaded on change)")
	flag.StringVar(&f.media, "media", "", "sample media file, playlist or URL")
	flag.Float64Var(&f.sensitivity, "sensitivity", 0, "initial sensitivity, 0.1 to 3.0")
	flag.IntVar(&f.particles, "particles", 0, "particle count")
	flag.StringVar(&f.mode, "mode", "", "start with a source: mic, tone or media")
	flag.BoolVar(&f.debug, "debug", false, "write a debug log to sonoscope.log")
	flag.Parse()
	if f.media == "" && flag.NArg() > 0 {
		f.media = flag.Arg(0)
	}

	if f.debug || os.Getenv("SONOSCOPE_DEBUG") != "" {
		logFile, err := tea.LogToFile("sonoscope.log", "sonoscope")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logFile.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	cfg, err := loadConfig(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	start, err := parseMode(f.mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logBands(cfg.Analysis)

	analyser := analysis.NewAnalyser(cfg.Analysis)
	graph := audio.NewGraph(analyser)
	defer graph.Release()

	program := tea.NewProgram(ui.New(cfg, graph, analyser, start), tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if f.config != "" {
		go func() {
			err := config.Watch(ctx, f.config, func(c config.Config) {
				if err := f.apply(&c); err != nil {
					log.Printf("config: %v", err)
					return
				}
				program.Send(ui.ConfigChanged(c))
			})
			if err != nil {
				log.Printf("config: watch stopped: %v", err)
			}
		}()
	}

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(f flags) (config.Config, error) {
	cfg, err := config.Load(f.config)
	if err != nil {
		return cfg, err
	}
	return cfg, f.apply(&cfg)
}

// apply lays command-line overrides over cfg. Reloaded files go through here too
// so flags keep winning.
func (f flags) apply(cfg *config.Config) error {
	if f.media != "" {
		cfg.Media.Path = f.media
	}
	if f.sensitivity > 0 {
		cfg.Visual.Sensitivity = f.sensitivity
	}
	if f.particles > 0 {
		cfg.Visual.Particles = f.particles
	}
	return cfg.Validate()
}

func parseMode(s string) (audio.Mode, error) {
	switch strings.ToLower(s) {
	case "", "idle":
		return audio.ModeIdle, nil
	case "mic", "microphone":
		return audio.ModeMicrophone, nil
	case "tone":
		return audio.ModeTone, nil
	case "media":
		return audio.ModeMedia, nil
	}
	return audio.ModeIdle, fmt.Errorf("unknown mode %q (want mic, tone or media)", s)
}

func logBands(cfg config.Analysis) {
	start, end := analysis.FrequencyBins(cfg.LowFrequency, cfg.HighFrequency, float64(cfg.SampleRate), cfg.FFTSize)
	edges := analysis.BandBoundaries(start, end, analysis.BandCount)
	binHz := float64(cfg.SampleRate) / float64(cfg.FFTSize)
	parts := make([]string, len(edges))
	for i, e := range edges {
		parts[i] = util.FormatHz(e * binHz)
	}
	log.Printf("analysis: fft %d, microphone bins %d-%d, band edges %s", cfg.FFTSize, start, end, strings.Join(parts, " | "))
}
