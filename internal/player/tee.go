package player

import (
	"encoding/binary"
	"io"
)

// SampleWriter receives mono samples in [-1, 1].
type SampleWriter interface {
	Write(samples []float32)
}

// Tee passes stereo s16le PCM through unchanged and writes a mono mix of every
// complete frame it sees to a SampleWriter.
type Tee struct {
	r       io.Reader
	sink    SampleWriter
	partial []byte
	mono    []float32
}

// NewTee wraps r so that everything read from it also reaches sink.
func NewTee(r io.Reader, sink SampleWriter) *Tee {
	return &Tee{r: r, sink: sink}
}

func (t *Tee) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if n > 0 {
		t.forward(p[:n])
	}
	return n, err
}

func (t *Tee) forward(b []byte) {
	data := b
	if len(t.partial) > 0 {
		data = append(t.partial, b...)
	}
	frames := len(data) / outputFrameSize
	if cap(t.mono) < frames {
		t.mono = make([]float32, frames)
	}
	mono := t.mono[:frames]
	for i := range frames {
		off := i * outputFrameSize
		l := int16(binary.LittleEndian.Uint16(data[off:]))
		r := int16(binary.LittleEndian.Uint16(data[off+2:]))
		mono[i] = (float32(l) + float32(r)) / 65536
	}
	t.partial = append(t.partial[:0], data[frames*outputFrameSize:]...)
	if frames > 0 {
		t.sink.Write(mono)
	}
}
