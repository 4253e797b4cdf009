package analysis

import "github.com/olivier-w/sonoscope/internal/config"

// Sampler reads bands and volume from an Analyser over a bin range derived from the
// configured frequency limits and the rate the current source runs at.
type Sampler struct {
	analyser *Analyser
	low      float64
	high     float64
	rate     int
	startBin int
	endBin   int
	freq     []byte
	time     []byte
}

// NewSampler derives the bin range from the configured frequency limits at the
// configured sample rate. The DC bin is always skipped.
func NewSampler(a *Analyser, cfg config.Analysis) *Sampler {
	s := &Sampler{
		analyser: a,
		low:      cfg.LowFrequency,
		high:     cfg.HighFrequency,
		freq:     make([]byte, a.FrequencyBinCount()),
		time:     make([]byte, a.FFTSize()),
	}
	s.SetSampleRate(cfg.SampleRate)
	return s
}

// SetSampleRate recomputes the bin range for samples arriving at rate Hz.
// Non-positive rates are ignored.
func (s *Sampler) SetSampleRate(rate int) {
	if rate <= 0 || rate == s.rate {
		return
	}
	s.rate = rate
	s.startBin, s.endBin = FrequencyBins(s.low, s.high, float64(rate), s.analyser.FFTSize())
}

// SampleRate returns the rate the bin range was derived for.
func (s *Sampler) SampleRate() int { return s.rate }

// FrequencyBins maps [low, high] Hz onto FFT bins at the given rate, skipping DC and
// capping at the Nyquist bin.
func FrequencyBins(low, high, rate float64, fftSize int) (int, int) {
	start := BinForFrequency(low, rate, fftSize)
	end := BinForFrequency(high, rate, fftSize)
	if start < 1 {
		start = 1
	}
	if half := fftSize / 2; end > half {
		end = half
	}
	return start, end
}

// BinRange returns the sampled [start, end) bin range.
func (s *Sampler) BinRange() (int, int) { return s.startBin, s.endBin }

// SampleBands returns the current peak energy of each band.
func (s *Sampler) SampleBands() Bands {
	s.analyser.ByteFrequencyData(s.freq)
	return SampleBands(s.freq, s.startBin, s.endBin)
}

// SampleVolume returns the RMS of the current time-domain window.
func (s *Sampler) SampleVolume() float64 {
	s.analyser.ByteTimeDomainData(s.time)
	return RMS(s.time)
}
