package analysis

import (
	"math"
	"math/rand"
	"testing"
)

func TestSampleBandsAlwaysReturnsEightValuesInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := range 200 {
		freq := make([]byte, 1024)
		for i := range freq {
			if rng.Intn(4) == 0 {
				freq[i] = byte(rng.Intn(256))
			}
		}
		bands := SampleBands(freq, 1, 743)
		if len(bands) != BandCount {
			t.Fatalf("trial %d: expected %d bands, got %d", trial, BandCount, len(bands))
		}

		sum := 0
		for _, v := range freq[1:743] {
			sum += int(v)
		}
		for i, v := range bands {
			if v < 0 || v > 255 {
				t.Fatalf("trial %d: band %d out of range: %v", trial, i, v)
			}
		}
		if (sum == 0) != bands.IsZero() {
			t.Fatalf("trial %d: sum=%d but IsZero=%v", trial, sum, bands.IsZero())
		}
	}
}

func TestSampleBandsZeroInput(t *testing.T) {
	if got := SampleBands(make([]byte, 512), 1, 512); !got.IsZero() {
		t.Fatalf("expected all-zero bands, got %v", got)
	}
}

func TestSampleBandsIgnoresDCBin(t *testing.T) {
	freq := make([]byte, 512)
	freq[0] = 255
	if got := SampleBands(freq, 0, 512); !got.IsZero() {
		t.Fatalf("expected DC energy to be skipped, got %v", got)
	}
}

func TestSampleBandsTakesPeakNotMean(t *testing.T) {
	freq := make([]byte, 1024)
	bounds := BandBoundaries(1, 1024, BandCount)
	lo, hi := int(bounds[7]), 1024
	freq[(lo+hi)/2] = 200
	freq[lo] = 10

	got := SampleBands(freq, 1, 1024)
	if got[7] != 200 {
		t.Fatalf("expected top band to report peak 200, got %v", got[7])
	}
	for i := range 7 {
		if got[i] != 0 {
			t.Fatalf("expected band %d silent, got %v", i, got[i])
		}
	}
}

func TestSampleBandsLowEnergyLandsInFirstBand(t *testing.T) {
	freq := make([]byte, 1024)
	freq[1] = 255
	got := SampleBands(freq, 1, 1024)
	want := Bands{255}
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSampleBandsClampsEndToInput(t *testing.T) {
	freq := []byte{0, 0, 9, 0}
	got := SampleBands(freq, 1, 4096)
	if got.IsZero() {
		t.Fatal("expected energy within the clamped range to register")
	}
}

func TestBandBoundariesMonotonicAndDeterministic(t *testing.T) {
	a := BandBoundaries(2, 743, BandCount)
	b := BandBoundaries(2, 743, BandCount)
	if len(a) != BandCount+1 {
		t.Fatalf("expected %d boundaries, got %d", BandCount+1, len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("boundary %d differs between calls: %v vs %v", i, a[i], b[i])
		}
		if i > 0 && a[i] <= a[i-1] {
			t.Fatalf("boundaries not increasing at %d: %v <= %v", i, a[i], a[i-1])
		}
	}
	if a[0] != 2 || a[BandCount] != 743 {
		t.Fatalf("expected endpoints 2 and 743, got %v and %v", a[0], a[BandCount])
	}

	// Each step is a constant ratio.
	ratio := a[1] / a[0]
	for i := 2; i < len(a); i++ {
		if math.Abs(a[i]/a[i-1]-ratio) > 1e-9 {
			t.Fatalf("expected constant ratio %v, got %v at %d", ratio, a[i]/a[i-1], i)
		}
	}
}

func TestBandBoundariesRejectsInvalidRange(t *testing.T) {
	if BandBoundaries(0, 10, 8) != nil {
		t.Fatal("expected nil for start < 1")
	}
	if BandBoundaries(10, 10, 8) != nil {
		t.Fatal("expected nil for empty range")
	}
}

func TestRMS(t *testing.T) {
	silent := make([]byte, 1024)
	for i := range silent {
		silent[i] = 128
	}
	if got := RMS(silent); got != 0 {
		t.Fatalf("expected silent RMS 0, got %v", got)
	}

	square := make([]byte, 1024)
	for i := range square {
		if i%2 == 0 {
			square[i] = 255
		}
	}
	if got := RMS(square); got < 0.99 || got > 1 {
		t.Fatalf("expected full-scale square RMS near 1, got %v", got)
	}

	if got := RMS(nil); got != 0 {
		t.Fatalf("expected empty RMS 0, got %v", got)
	}
}

func TestBinForFrequency(t *testing.T) {
	if got := BinForFrequency(20, 44100, 2048); got != 1 {
		t.Fatalf("expected 20 Hz at bin 1, got %d", got)
	}
	if got := BinForFrequency(16000, 44100, 2048); got != 743 {
		t.Fatalf("expected 16 kHz at bin 743, got %d", got)
	}
}
