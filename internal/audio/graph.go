package audio

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
)

// Mode identifies what is feeding the analyser.
type Mode uint8

const (
	ModeIdle Mode = iota
	ModeMicrophone
	ModeTone
	ModeMedia
	ModeError
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeMicrophone:
		return "microphone"
	case ModeTone:
		return "test tone"
	case ModeMedia:
		return "sample media"
	case ModeError:
		return "error"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

var (
	// ErrNoSource is returned for modes without a registered factory.
	ErrNoSource = errors.New("no source for mode")
	// ErrReleased means Release ran while the source was still being built.
	ErrReleased = errors.New("released during acquisition")
)

// Sink receives mono samples in [-1, 1] from a running source.
type Sink interface {
	Write(samples []float32)
}

// Source is one running input. Start connects it to the sink; Stop disconnects it
// and must be safe to call more than once.
type Source interface {
	Start(sink Sink) error
	Stop() error
	// Done closes when a finite source runs out. Live sources return nil.
	Done() <-chan struct{}
}

// Factory builds an unstarted source for the given parameters. Slow work such as
// a download should stop when ctx is done.
type Factory func(ctx context.Context, p Params) (Source, error)

// Graph owns at most one running source. Switching modes always tears the previous
// source down before the next one starts.
type Graph struct {
	mu          sync.Mutex
	sink        Sink
	factories   map[Mode]Factory
	mode        Mode
	current     Source
	err         error
	connections int
	gen         uint64 // bumped by every release
}

// Option configures a Graph.
type Option func(*Graph)

// WithFactory registers (or replaces) the source factory for a mode.
func WithFactory(mode Mode, f Factory) Option {
	return func(g *Graph) {
		g.factories[mode] = f
	}
}

// NewGraph creates a graph feeding sink, with the microphone, tone and media
// sources registered.
func NewGraph(sink Sink, opts ...Option) *Graph {
	g := &Graph{
		sink: sink,
		factories: map[Mode]Factory{
			ModeMicrophone: newMicrophone,
			ModeTone:       newTone,
			ModeMedia:      newMedia,
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Acquire replaces the current source with a new one of the given mode. It
// reports failure as false; Err holds the cause. The factory runs without the
// lock held, so a download never blocks Release. A Release or a done ctx before
// the source starts cancels the acquisition.
func (g *Graph) Acquire(ctx context.Context, mode Mode, p Params) bool {
	g.mu.Lock()
	g.releaseLocked()
	gen := g.gen
	factory, ok := g.factories[mode]
	g.mu.Unlock()

	var src Source
	err := fmt.Errorf("%w %s", ErrNoSource, mode)
	if ok {
		src, err = factory(ctx, p)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gen != gen || ctx.Err() != nil {
		if src != nil {
			_ = src.Stop()
		}
		log.Printf("audio: %s released before it started", mode)
		g.err = ErrReleased
		return false
	}
	if err == nil {
		err = g.startLocked(mode, src)
	}
	if err != nil {
		log.Printf("audio: acquire %s failed: %v", mode, err)
		g.mode = ModeError
		g.err = err
		return false
	}
	log.Printf("audio: acquired %s", mode)
	return true
}

func (g *Graph) startLocked(mode Mode, src Source) error {
	if err := src.Start(g.sink); err != nil {
		_ = src.Stop()
		return err
	}
	g.current = src
	g.mode = mode
	g.err = nil
	g.connections++
	return nil
}

// Release stops and disconnects the current source, if any, and returns to idle.
func (g *Graph) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.releaseLocked()
}

func (g *Graph) releaseLocked() {
	g.gen++
	if g.current != nil {
		if err := g.current.Stop(); err != nil {
			log.Printf("audio: stopping %s: %v", g.mode, err)
		}
		g.current = nil
		g.connections--
		log.Printf("audio: released %s", g.mode)
	}
	g.mode = ModeIdle
	g.err = nil
}

// Mode returns the current acquisition mode.
func (g *Graph) Mode() Mode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mode
}

// Err returns why the last acquisition failed, or nil.
func (g *Graph) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}

// Connections returns how many sources are currently connected to the sink.
func (g *Graph) Connections() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.connections
}

// Done returns the current source's completion channel, or nil.
func (g *Graph) Done() <-chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil {
		return nil
	}
	return g.current.Done()
}

// Current returns the running source, or nil.
func (g *Graph) Current() Source {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}
