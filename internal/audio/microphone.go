package audio

import (
	"context"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// microphone captures the default input device through PortAudio.
type microphone struct {
	sampleRate int
	frames     int
	stream     *portaudio.Stream
	buf        []float32
	quit       chan struct{}
	wg         sync.WaitGroup
	stopOnce   sync.Once
	stopErr    error
	started    bool
}

func newMicrophone(_ context.Context, p Params) (Source, error) {
	if p.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", p.SampleRate)
	}
	frames := p.Mic.FramesPerBuffer
	if frames <= 0 {
		frames = 1024
	}
	return &microphone{
		sampleRate: p.SampleRate,
		frames:     frames,
		quit:       make(chan struct{}),
	}, nil
}

func (m *microphone) Start(sink Sink) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing audio input: %w", err)
	}
	m.buf = make([]float32, m.frames)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.sampleRate), len(m.buf), m.buf)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("opening microphone: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("starting microphone: %w", err)
	}
	m.stream = stream
	m.started = true

	m.wg.Add(1)
	go m.readLoop(sink)
	return nil
}

func (m *microphone) readLoop(sink Sink) {
	defer m.wg.Done()
	for {
		select {
		case <-m.quit:
			return
		default:
		}
		if err := m.stream.Read(); err != nil {
			// Overflows are transient; anything else means the stream is gone.
			if err == portaudio.InputOverflowed {
				continue
			}
			return
		}
		sink.Write(m.buf)
	}
}

func (m *microphone) Stop() error {
	m.stopOnce.Do(func() {
		close(m.quit)
		if !m.started {
			return
		}
		if err := m.stream.Stop(); err != nil {
			m.stopErr = err
		}
		m.wg.Wait()
		if err := m.stream.Close(); err != nil && m.stopErr == nil {
			m.stopErr = err
		}
		if err := portaudio.Terminate(); err != nil && m.stopErr == nil {
			m.stopErr = err
		}
	})
	return m.stopErr
}

func (m *microphone) Done() <-chan struct{} { return nil }
