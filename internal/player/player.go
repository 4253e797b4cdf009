package player

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

const (
	OutputSampleRate = 44100
	OutputChannels   = 2
	outputFrameSize  = OutputChannels * 2 // 16-bit
	bytesPerSec      = OutputSampleRate * outputFrameSize
)

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

// initOto creates the process-wide output context. oto allows only one.
func initOto() (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   OutputSampleRate,
			ChannelCount: OutputChannels,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return globalOtoCtx, otoInitErr
}

// countingReader tracks bytes handed to the output and closes done at end of stream.
type countingReader struct {
	reader   io.Reader
	pos      int64
	mu       sync.Mutex
	done     chan struct{}
	doneOnce sync.Once
}

func newCountingReader(r io.Reader) *countingReader {
	return &countingReader{reader: r, done: make(chan struct{})}
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.reader.Read(p)
	cr.mu.Lock()
	cr.pos += int64(n)
	cr.mu.Unlock()
	if err != nil {
		cr.finish()
	}
	return n, err
}

func (cr *countingReader) Pos() int64 {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.pos
}

func (cr *countingReader) finish() {
	cr.doneOnce.Do(func() { close(cr.done) })
}

// Player streams 44.1 kHz stereo s16le PCM to the audio device.
type Player struct {
	counter   *countingReader
	otoPlayer *oto.Player
	volume    float64
	mu        sync.Mutex
	closed    bool
	cleanup   func()
}

// New starts playing r immediately. cleanup, if non-nil, runs once on Close.
func New(r io.Reader, volume float64, cleanup func()) (*Player, error) {
	ctx, err := initOto()
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		return nil, errors.New("audio output unavailable")
	}
	p := &Player{
		counter: newCountingReader(r),
		volume:  clampVolume(volume),
		cleanup: cleanup,
	}
	p.otoPlayer = ctx.NewPlayer(p.counter)
	p.otoPlayer.SetVolume(p.volume)
	p.otoPlayer.Play()
	return p, nil
}

// Done returns a channel that closes when the source reader is exhausted or the
// player is closed.
func (p *Player) Done() <-chan struct{} {
	return p.counter.done
}

// Position returns how much audio has been handed to the device.
func (p *Player) Position() time.Duration {
	if p.counter == nil {
		return 0
	}
	secs := float64(p.counter.Pos()) / float64(bytesPerSec)
	return time.Duration(secs * float64(time.Second))
}

// Volume returns current volume (0.0 to 1.0).
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetVolume sets volume (clamped to 0.0 - 1.0).
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = clampVolume(v)
	if p.otoPlayer != nil {
		p.otoPlayer.SetVolume(p.volume)
	}
}

// Close stops output and releases resources. Safe to call more than once.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	var err error
	if p.otoPlayer != nil {
		p.otoPlayer.Pause()
		err = p.otoPlayer.Close()
	}
	if p.counter != nil {
		p.counter.finish()
	}
	if p.cleanup != nil {
		p.cleanup()
	}
	return err
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
