package player

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

// Samples the MP3 synthesis filter adds on top of the encoder delay.
const mp3DecoderDelay = 529

// mp3Trim reads the LAME/Xing header of an MP3 and returns how many sample frames
// of encoder delay and padding to drop. Zeros mean no usable tag. r is rewound to
// the start on return.
func mp3Trim(r io.ReadSeeker) (start, end int64) {
	defer r.Seek(0, io.SeekStart)

	offset, err := id3Skip(r)
	if err != nil {
		return 0, 0
	}
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return 0, 0
	}

	head := make([]byte, 4)
	if _, err := io.ReadFull(r, head); err != nil {
		return 0, 0
	}
	sideInfo, err := mp3SideInfoLen(head)
	if err != nil {
		return 0, 0
	}
	if _, err := r.Seek(offset+4+int64(sideInfo), io.SeekStart); err != nil {
		return 0, 0
	}

	buf := make([]byte, 256)
	n, _ := io.ReadFull(r, buf)
	start, end, _ = lameTrim(buf[:n])
	return start, end
}

// id3Skip returns the offset of the first byte after any ID3v2 tag.
func id3Skip(r io.ReadSeeker) (int64, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	header := make([]byte, 10)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, err
	}
	if !bytes.Equal(header[:3], []byte("ID3")) {
		return 0, nil
	}
	size := int64(header[6]&0x7f)<<21 | int64(header[7]&0x7f)<<14 | int64(header[8]&0x7f)<<7 | int64(header[9]&0x7f)
	if header[5]&0x10 != 0 {
		size += 10 // footer
	}
	return 10 + size, nil
}

// mp3SideInfoLen returns the bytes between the frame header and the Xing tag:
// the optional CRC plus the Layer III side information.
func mp3SideInfoLen(head []byte) (int, error) {
	if len(head) < 4 {
		return 0, errors.New("short mp3 header")
	}
	h := binary.BigEndian.Uint32(head)
	if h>>21 != 0x7ff {
		return 0, errors.New("invalid mp3 sync")
	}
	version := (h >> 19) & 0x3
	if version == 0x1 {
		return 0, errors.New("reserved mpeg version")
	}
	if (h>>17)&0x3 != 0x1 {
		return 0, errors.New("not layer iii")
	}

	mpeg1 := version == 0x3
	mono := (h>>6)&0x3 == 0x3
	var n int
	switch {
	case mpeg1 && mono:
		n = 17
	case mpeg1:
		n = 32
	case mono:
		n = 9
	default:
		n = 17
	}
	if (h>>16)&0x1 == 0 {
		n += 2 // CRC
	}
	return n, nil
}

// lameTrim parses a Xing/Info tag with a LAME extension.
func lameTrim(b []byte) (start, end int64, ok bool) {
	if len(b) < 8 {
		return 0, 0, false
	}
	if tag := string(b[:4]); tag != "Xing" && tag != "Info" {
		return 0, 0, false
	}

	flags := binary.BigEndian.Uint32(b[4:8])
	offset := 8
	for _, f := range []struct {
		bit  uint32
		size int
	}{{0x1, 4}, {0x2, 4}, {0x4, 100}, {0x8, 4}} {
		if flags&f.bit != 0 {
			offset += f.size
		}
	}
	if len(b) < offset+24 {
		return 0, 0, false
	}

	// 12-bit delay and 12-bit padding packed into three bytes.
	dp := b[offset+21 : offset+24]
	delay := int64(dp[0])<<4 | int64(dp[1]>>4)
	padding := int64(dp[1]&0x0f)<<8 | int64(dp[2])
	if delay == 0 && padding == 0 {
		return 0, 0, false
	}
	return delay + mp3DecoderDelay, max(padding-mp3DecoderDelay, 0), true
}
