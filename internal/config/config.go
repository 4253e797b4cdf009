package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	MinSensitivity = 0.1
	MaxSensitivity = 3.0
)

// Config is the full runtime configuration. Zero values in a TOML file leave the
// defaults untouched.
type Config struct {
	Analysis Analysis `toml:"analysis"`
	Visual   Visual   `toml:"visual"`
	Tone     Tone     `toml:"tone"`
	Mic      Mic      `toml:"mic"`
	Media    Media    `toml:"media"`
}

// Analysis configures the analyser and the band sampler.
type Analysis struct {
	SampleRate    int      `toml:"sample_rate"` // microphone only
	FFTSize       int      `toml:"fft_size"`
	Smoothing     float64  `toml:"smoothing"`
	MinDecibels   float64  `toml:"min_decibels"`
	MaxDecibels   float64  `toml:"max_decibels"`
	LowFrequency  float64  `toml:"low_frequency"`
	HighFrequency float64  `toml:"high_frequency"`
	PollInterval  Duration `toml:"poll_interval"`
}

type Visual struct {
	Particles   int     `toml:"particles"`
	FPS         int     `toml:"fps"`
	Sensitivity float64 `toml:"sensitivity"`
	Seed        int64   `toml:"seed"`
}

// Tone describes the synthetic oscillator bank.
type Tone struct {
	Frequencies []float64 `toml:"frequencies"`
	Gain        float64   `toml:"gain"`
}

type Mic struct {
	FramesPerBuffer int `toml:"frames_per_buffer"`
}

type Media struct {
	Path string `toml:"path"`
}

// Duration wraps time.Duration so it can be written as "100ms" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Analysis: Analysis{
			SampleRate:    44100,
			FFTSize:       2048,
			Smoothing:     0.8,
			MinDecibels:   -100,
			MaxDecibels:   -30,
			LowFrequency:  20,
			HighFrequency: 16000,
			PollInterval:  Duration{100 * time.Millisecond},
		},
		Visual: Visual{
			Particles:   5000,
			FPS:         30,
			Sensitivity: 1.0,
			Seed:        1,
		},
		Tone: Tone{
			Frequencies: []float64{55, 110, 220, 440, 880, 1760, 3520, 7040},
			Gain:        0.5,
		},
		Mic: Mic{FramesPerBuffer: 1024},
	}
}

// Load reads a TOML file on top of Default. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return cfg, fmt.Errorf("decoding config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks structural constraints and clamps the sensitivity into range.
func (c *Config) Validate() error {
	a := c.Analysis
	if a.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", a.SampleRate)
	}
	if a.FFTSize < 32 || a.FFTSize > 32768 || a.FFTSize&(a.FFTSize-1) != 0 {
		return fmt.Errorf("fft size must be a power of two in [32, 32768], got %d", a.FFTSize)
	}
	if a.Smoothing < 0 || a.Smoothing >= 1 {
		return fmt.Errorf("smoothing must be in [0, 1), got %g", a.Smoothing)
	}
	if a.MinDecibels >= a.MaxDecibels {
		return errors.New("min_decibels must be below max_decibels")
	}
	if a.LowFrequency <= 0 || a.HighFrequency <= a.LowFrequency {
		return fmt.Errorf("invalid frequency range %g..%g", a.LowFrequency, a.HighFrequency)
	}
	if a.PollInterval.Duration <= 0 {
		return errors.New("poll_interval must be positive")
	}
	if c.Visual.Particles < 0 {
		return fmt.Errorf("invalid particle count %d", c.Visual.Particles)
	}
	if c.Visual.FPS <= 0 {
		return fmt.Errorf("invalid fps %d", c.Visual.FPS)
	}
	if c.Mic.FramesPerBuffer <= 0 {
		return fmt.Errorf("invalid frames_per_buffer %d", c.Mic.FramesPerBuffer)
	}
	c.Visual.Sensitivity = ClampSensitivity(c.Visual.Sensitivity)
	return nil
}

// ClampSensitivity limits v to [MinSensitivity, MaxSensitivity].
func ClampSensitivity(v float64) float64 {
	if v < MinSensitivity {
		return MinSensitivity
	}
	if v > MaxSensitivity {
		return MaxSensitivity
	}
	return v
}
