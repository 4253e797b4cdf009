package analysis

import "math"

// BandCount is the number of output bands.
const BandCount = 8

// Bands holds per-band peak energy in [0, 255].
type Bands [BandCount]float64

// IsZero reports whether every band is silent.
func (b Bands) IsZero() bool {
	return b == Bands{}
}

// BandBoundaries returns n+1 logarithmically spaced boundaries between start and
// end: b_i = exp(log(start) + i*(log(end)-log(start))/n). start must be >= 1.
func BandBoundaries(start, end, n int) []float64 {
	if n <= 0 || start < 1 || end <= start {
		return nil
	}
	logStart := math.Log(float64(start))
	step := (math.Log(float64(end)) - logStart) / float64(n)
	out := make([]float64, n+1)
	for i := range out {
		out[i] = math.Exp(logStart + float64(i)*step)
	}
	out[0] = float64(start)
	out[n] = float64(end)
	return out
}

// SampleBands splits freq[start:end] into BandCount logarithmic sub-bands and
// returns the peak of each. The result is all zero when the range carries no energy.
func SampleBands(freq []byte, start, end int) Bands {
	var out Bands
	if start < 1 {
		start = 1
	}
	if end > len(freq) {
		end = len(freq)
	}
	if end <= start {
		return out
	}

	total := 0
	for _, v := range freq[start:end] {
		total += int(v)
	}
	if total == 0 {
		return out
	}

	bounds := BandBoundaries(start, end, BandCount)
	for b := range BandCount {
		lo := int(bounds[b])
		hi := int(bounds[b+1])
		if b == BandCount-1 {
			hi = end
		}
		if hi <= lo {
			hi = lo + 1
		}
		if hi > end {
			hi = end
		}

		var peak byte
		for _, v := range freq[lo:hi] {
			if v > peak {
				peak = v
			}
		}
		out[b] = float64(peak)
	}
	return out
}

// RMS returns the root-mean-square of byte time-domain samples normalised to [-1, 1].
func RMS(timeDomain []byte) float64 {
	if len(timeDomain) == 0 {
		return 0
	}
	var sum float64
	for _, v := range timeDomain {
		s := (float64(v) - 128) / 128
		sum += s * s
	}
	rms := math.Sqrt(sum / float64(len(timeDomain)))
	if rms > 1 {
		rms = 1
	}
	return rms
}

// BinForFrequency maps a frequency in Hz to its FFT bin index.
func BinForFrequency(hz, sampleRate float64, fftSize int) int {
	if sampleRate <= 0 || fftSize <= 0 {
		return 0
	}
	return int(math.Round(hz * float64(fftSize) / sampleRate))
}
