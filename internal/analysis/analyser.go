package analysis

import (
	"math"
	"math/cmplx"
	"sync"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/olivier-w/sonoscope/internal/config"
)

// Analyser keeps the most recent FFTSize mono samples and exposes them as byte
// frequency and time-domain frames. Byte frequency values follow the usual
// analyser-node convention: Blackman window, magnitudes smoothed over time, then
// mapped from [MinDecibels, MaxDecibels] onto [0, 255].
type Analyser struct {
	ring      *sampleRing
	fftSize   int
	window    []float64
	scratch   []float64
	mu        sync.Mutex // guards smoothing state and settings below
	smoothing float64
	minDB     float64
	maxDB     float64
	prev      []float64
}

// NewAnalyser creates an analyser from the analysis configuration.
func NewAnalyser(cfg config.Analysis) *Analyser {
	return &Analyser{
		ring:      newSampleRing(cfg.FFTSize),
		fftSize:   cfg.FFTSize,
		window:    window.Blackman(cfg.FFTSize),
		scratch:   make([]float64, cfg.FFTSize),
		smoothing: cfg.Smoothing,
		minDB:     cfg.MinDecibels,
		maxDB:     cfg.MaxDecibels,
		prev:      make([]float64, cfg.FFTSize/2),
	}
}

// Write appends mono samples in [-1, 1]. It is safe to call from audio goroutines.
func (a *Analyser) Write(samples []float32) {
	a.ring.write(samples)
}

// FFTSize returns the analysis window length in samples.
func (a *Analyser) FFTSize() int { return a.fftSize }

// FrequencyBinCount returns half the FFT size.
func (a *Analyser) FrequencyBinCount() int { return a.fftSize / 2 }

// SetSmoothing updates the time smoothing constant, clamped to [0, 1).
func (a *Analyser) SetSmoothing(v float64) {
	if v < 0 {
		v = 0
	}
	if v >= 1 {
		v = 0.99
	}
	a.mu.Lock()
	a.smoothing = v
	a.mu.Unlock()
}

// ByteFrequencyData fills dst with up to FrequencyBinCount byte magnitudes.
func (a *Analyser) ByteFrequencyData(dst []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.ring.latest(a.scratch)
	for i, w := range a.window {
		a.scratch[i] *= w
	}
	spectrum := fft.FFTReal(a.scratch)

	n := len(dst)
	if n > len(a.prev) {
		n = len(a.prev)
	}
	scale := 1 / float64(a.fftSize)
	rangeDB := a.maxDB - a.minDB
	for k := range a.prev {
		mag := cmplx.Abs(spectrum[k]) * scale
		a.prev[k] = a.smoothing*a.prev[k] + (1-a.smoothing)*mag
		if k >= n {
			continue
		}
		dst[k] = magnitudeToByte(a.prev[k], a.minDB, rangeDB)
	}
}

// ByteTimeDomainData fills dst with the newest samples mapped to 128 + 128*s.
func (a *Analyser) ByteTimeDomainData(dst []byte) {
	n := len(dst)
	if n > a.fftSize {
		n = a.fftSize
	}
	samples := make([]float64, n)
	a.ring.latest(samples)
	for i, s := range samples {
		v := math.Floor(128 + 128*s)
		if v < 0 {
			v = 0
		} else if v > 255 {
			v = 255
		}
		dst[i] = byte(v)
	}
}

// Reset clears buffered samples and the smoothing history.
func (a *Analyser) Reset() {
	a.ring.clear()
	a.mu.Lock()
	clear(a.prev)
	a.mu.Unlock()
}

func magnitudeToByte(mag, minDB, rangeDB float64) byte {
	if mag <= 0 {
		return 0
	}
	db := 20 * math.Log10(mag)
	v := 255 * (db - minDB) / rangeDB
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(v)
}
