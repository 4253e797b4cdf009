package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"math"

	"github.com/olivier-w/sonoscope/internal/player"
)

// oscillator is one sine voice with a slow amplitude LFO.
type oscillator struct {
	freq    float64
	gain    float64
	lfoRate float64
	lfoOff  float64
}

// ToneGenerator mixes a bank of oscillators into 44.1 kHz stereo s16le PCM. Each
// voice swells and fades at its own rate, so every band gets exercised over time.
type ToneGenerator struct {
	oscs  []oscillator
	frame int64
}

// NewToneGenerator builds a generator for the given frequencies. gain is the peak
// level of the mix in [0, 1].
func NewToneGenerator(freqs []float64, gain float64) *ToneGenerator {
	if gain < 0 {
		gain = 0
	} else if gain > 1 {
		gain = 1
	}
	g := &ToneGenerator{}
	if len(freqs) == 0 {
		return g
	}
	per := gain / float64(len(freqs))
	for i, f := range freqs {
		g.oscs = append(g.oscs, oscillator{
			freq:    f,
			gain:    per,
			lfoRate: 0.15 + 0.11*float64(i),
			lfoOff:  float64(i) * 0.9,
		})
	}
	return g
}

// Read fills p with whole stereo frames. It never ends.
func (g *ToneGenerator) Read(p []byte) (int, error) {
	frames := len(p) / 4
	for i := range frames {
		v := g.sample(g.frame)
		g.frame++
		s := uint16(int16(v * 32767))
		binary.LittleEndian.PutUint16(p[i*4:], s)
		binary.LittleEndian.PutUint16(p[i*4+2:], s)
	}
	return frames * 4, nil
}

func (g *ToneGenerator) sample(frame int64) float64 {
	t := float64(frame) / player.OutputSampleRate
	var v float64
	for _, o := range g.oscs {
		env := 0.5 + 0.5*math.Sin(2*math.Pi*o.lfoRate*t+o.lfoOff)
		v += o.gain * env * math.Sin(2*math.Pi*o.freq*t)
	}
	return v
}

// tone plays a ToneGenerator and feeds it to the sink.
type tone struct {
	gen    *ToneGenerator
	volume float64
	out    *player.Player
}

func newTone(_ context.Context, p Params) (Source, error) {
	if len(p.Tone.Frequencies) == 0 {
		return nil, errors.New("tone has no frequencies")
	}
	return &tone{
		gen:    NewToneGenerator(p.Tone.Frequencies, p.Tone.Gain),
		volume: p.Volume,
	}, nil
}

func (t *tone) Start(sink Sink) error {
	out, err := player.New(player.NewTee(t.gen, sink), t.volume, nil)
	if err != nil {
		return err
	}
	t.out = out
	return nil
}

func (t *tone) Stop() error {
	if t.out == nil {
		return nil
	}
	return t.out.Close()
}

func (t *tone) Done() <-chan struct{} { return nil }
