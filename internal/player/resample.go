package player

import (
	"encoding/binary"
	"fmt"
	"io"
)

// resampler presents any mono or stereo Stream as OutputSampleRate stereo s16le,
// interpolating linearly between source frames.
type resampler struct {
	src      Stream
	channels int
	step     float64 // source frames per output frame
	pos      float64 // fractional index into frames
	frames   [][2]int16
	readBuf  []byte
	carry    []byte
	eof      bool
	err      error
}

// Resample wraps src so it plays at OutputSampleRate in stereo. Streams already in
// that shape are returned unchanged.
func Resample(src Stream) (io.Reader, error) {
	rate := src.SampleRate()
	if rate <= 0 {
		return nil, fmt.Errorf("unsupported sample rate: %d", rate)
	}
	channels := src.ChannelCount()
	if channels < 1 || channels > OutputChannels {
		return nil, fmt.Errorf("unsupported channel count: %d", channels)
	}
	if rate == OutputSampleRate && channels == OutputChannels {
		return src, nil
	}
	return &resampler{
		src:      src,
		channels: channels,
		step:     float64(rate) / OutputSampleRate,
		readBuf:  make([]byte, 4096*channels*2),
	}, nil
}

func (r *resampler) Read(p []byte) (int, error) {
	frameCount := len(p) / outputFrameSize
	if frameCount == 0 {
		return 0, nil
	}

	n := 0
	for n < frameCount {
		i := int(r.pos)
		if i+1 >= len(r.frames) {
			if r.eof {
				if i < len(r.frames) {
					f := r.frames[i]
					putFrame(p[n*outputFrameSize:], f[0], f[1])
					n++
					r.frames = r.frames[:0]
					r.pos = 0
				}
				break
			}
			r.fill()
			continue
		}

		t := r.pos - float64(i)
		a, b := r.frames[i], r.frames[i+1]
		left := float64(a[0]) + (float64(b[0])-float64(a[0]))*t
		right := float64(a[1]) + (float64(b[1])-float64(a[1]))*t
		putFrame(p[n*outputFrameSize:], int16(left), int16(right))
		n++
		r.pos += r.step
	}

	if n == 0 {
		if r.err != nil {
			return 0, r.err
		}
		return 0, io.EOF
	}
	return n * outputFrameSize, nil
}

// fill drops consumed frames and reads the next chunk of source frames.
func (r *resampler) fill() {
	consumed := int(r.pos)
	if consumed > len(r.frames) {
		consumed = len(r.frames)
	}
	if consumed > 0 {
		r.frames = append(r.frames[:0], r.frames[consumed:]...)
		r.pos -= float64(consumed)
	}

	srcFrameSize := r.channels * 2
	n, err := r.src.Read(r.readBuf)
	data := append(r.carry, r.readBuf[:n]...)
	whole := len(data) / srcFrameSize * srcFrameSize
	for off := 0; off < whole; off += srcFrameSize {
		l := int16(binary.LittleEndian.Uint16(data[off:]))
		rr := l
		if r.channels == 2 {
			rr = int16(binary.LittleEndian.Uint16(data[off+2:]))
		}
		r.frames = append(r.frames, [2]int16{l, rr})
	}
	r.carry = append(r.carry[:0], data[whole:]...)

	if err != nil {
		r.eof = true
		if err != io.EOF {
			r.err = err
		}
	}
}

func putFrame(dst []byte, left, right int16) {
	binary.LittleEndian.PutUint16(dst, uint16(left))
	binary.LittleEndian.PutUint16(dst[2:], uint16(right))
}
