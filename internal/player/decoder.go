package player

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// ErrUnsupportedFormat is returned by Open for extensions without a decoder.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Stream is decoded interleaved s16le PCM at its native rate and channel count.
type Stream interface {
	io.Reader
	SampleRate() int
	ChannelCount() int
}

// File is a decoded Stream backed by an open file.
type File struct {
	Stream
	file *os.File
}

// Close releases the underlying file.
func (f *File) Close() error { return f.file.Close() }

// Open decodes the file at path, picking the decoder by extension.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	s, err := newDecoder(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &File{Stream: s, file: f}, nil
}

func newDecoder(f *os.File) (Stream, error) {
	ext := strings.ToLower(filepath.Ext(f.Name()))
	switch ext {
	case ".mp3":
		return newMP3Decoder(f)
	case ".wav":
		return newWAVDecoder(f)
	case ".flac":
		return newFLACDecoder(f)
	case ".ogg":
		return newOGGDecoder(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// --- MP3 ---

type mp3Decoder struct {
	dec       *mp3.Decoder
	remaining int64 // PCM bytes left before encoder padding, or -1
}

// newMP3Decoder drops the LAME encoder delay and padding when the file carries them.
func newMP3Decoder(f *os.File) (*mp3Decoder, error) {
	start, end := mp3Trim(f)
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("decoding MP3: %w", err)
	}
	d := &mp3Decoder{dec: dec, remaining: -1}
	if start == 0 && end == 0 {
		return d, nil
	}

	const frameSize = 4
	length := dec.Length()
	body := length - (start+end)*frameSize
	if length <= 0 || body <= 0 {
		return d, nil
	}
	if _, err := dec.Seek(start*frameSize, io.SeekStart); err != nil {
		return d, nil
	}
	d.remaining = body
	return d, nil
}

func (d *mp3Decoder) Read(p []byte) (int, error) {
	if d.remaining < 0 {
		return d.dec.Read(p)
	}
	if d.remaining == 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > d.remaining {
		p = p[:d.remaining]
	}
	n, err := d.dec.Read(p)
	d.remaining -= int64(n)
	return n, err
}

func (d *mp3Decoder) SampleRate() int { return d.dec.SampleRate() }

// go-mp3 always produces stereo.
func (d *mp3Decoder) ChannelCount() int { return 2 }

// --- WAV ---

type wavDecoder struct {
	file        io.Reader
	buf         []byte
	sampleRate  int
	channels    int
	srcBitDepth int
}

func newWAVDecoder(f *os.File) (*wavDecoder, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}
	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("unsupported WAV bit depth: %d", bitDepth)
	}
	return &wavDecoder{
		file:        io.LimitReader(f, dec.PCMLen()),
		sampleRate:  int(dec.SampleRate),
		channels:    int(dec.NumChans),
		srcBitDepth: bitDepth,
	}, nil
}

func (d *wavDecoder) Read(p []byte) (int, error) {
	if len(d.buf) > 0 {
		n := copy(p, d.buf)
		d.buf = d.buf[n:]
		return n, nil
	}

	width := d.srcBitDepth / 8
	samples := len(p) / 2
	if samples == 0 {
		samples = 1
	}
	src := make([]byte, samples*width)
	n, err := io.ReadFull(d.file, src)
	samplesRead := n / width
	if samplesRead == 0 {
		if err == nil || err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return 0, err
	}

	raw := make([]byte, samplesRead*2)
	for i := range samplesRead {
		off := i * width
		var s int
		switch d.srcBitDepth {
		case 8:
			// 8-bit WAV is unsigned
			s = (int(src[off]) - 128) << 8
		case 16:
			s = int(int16(binary.LittleEndian.Uint16(src[off:])))
		case 24:
			v := int32(src[off]) | int32(src[off+1])<<8 | int32(src[off+2])<<16
			if v&0x800000 != 0 {
				v |= ^0xFFFFFF
			}
			s = int(v >> 8)
		case 32:
			s = int(int32(binary.LittleEndian.Uint32(src[off:])) >> 16)
		}
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(clampInt16(s)))
	}

	written := copy(p, raw)
	if written < len(raw) {
		d.buf = raw[written:]
	}
	if err == io.ErrUnexpectedEOF {
		err = nil
	}
	return written, err
}

func (d *wavDecoder) SampleRate() int   { return d.sampleRate }
func (d *wavDecoder) ChannelCount() int { return d.channels }

// --- FLAC ---

type flacDecoder struct {
	stream     *flac.Stream
	buf        []byte
	sampleRate int
	channels   int
	bps        int
}

func newFLACDecoder(f *os.File) (*flacDecoder, error) {
	stream, err := flac.New(f)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}
	info := stream.Info
	return &flacDecoder{
		stream:     stream,
		sampleRate: int(info.SampleRate),
		channels:   int(info.NChannels),
		bps:        int(info.BitsPerSample),
	}, nil
}

func (d *flacDecoder) Read(p []byte) (int, error) {
	if len(d.buf) > 0 {
		n := copy(p, d.buf)
		d.buf = d.buf[n:]
		return n, nil
	}

	frame, err := d.stream.ParseNext()
	if err != nil {
		return 0, err
	}

	nSamples := int(frame.Subframes[0].NSamples)
	raw := make([]byte, nSamples*d.channels*2)
	for i := range nSamples {
		for ch := range d.channels {
			s := int(frame.Subframes[ch].Samples[i])
			switch {
			case d.bps > 16:
				s >>= d.bps - 16
			case d.bps < 16:
				s <<= 16 - d.bps
			}
			binary.LittleEndian.PutUint16(raw[(i*d.channels+ch)*2:], uint16(clampInt16(s)))
		}
	}

	n := copy(p, raw)
	if n < len(raw) {
		d.buf = raw[n:]
	}
	return n, nil
}

func (d *flacDecoder) SampleRate() int   { return d.sampleRate }
func (d *flacDecoder) ChannelCount() int { return d.channels }

// --- OGG Vorbis ---

type oggDecoder struct {
	reader *oggvorbis.Reader
	buf    []byte
	tmp    []float32
}

func newOGGDecoder(f *os.File) (*oggDecoder, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}
	return &oggDecoder{reader: reader}, nil
}

func (d *oggDecoder) Read(p []byte) (int, error) {
	if len(d.buf) > 0 {
		n := copy(p, d.buf)
		d.buf = d.buf[n:]
		return n, nil
	}

	want := len(p) / 2
	if want == 0 {
		want = 1
	}
	if cap(d.tmp) < want {
		d.tmp = make([]float32, want)
	}
	samples := d.tmp[:want]
	n, err := d.reader.Read(samples)
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}

	raw := make([]byte, n*2)
	for i, s := range samples[:n] {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(floatToInt16(s)))
	}
	written := copy(p, raw)
	if written < len(raw) {
		d.buf = raw[written:]
	}
	if err == io.EOF {
		err = nil
	}
	return written, err
}

func (d *oggDecoder) SampleRate() int   { return d.reader.SampleRate() }
func (d *oggDecoder) ChannelCount() int { return d.reader.Channels() }

func clampInt16(s int) int16 {
	if s > 32767 {
		return 32767
	}
	if s < -32768 {
		return -32768
	}
	return int16(s)
}

func floatToInt16(s float32) int16 {
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	return int16(s * 32767)
}
