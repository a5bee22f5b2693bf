package bfg

import (
	"fmt"

	"github.com/sebseager/bfg/internal/codec"
	"github.com/sebseager/bfg/internal/container"
	"github.com/sebseager/bfg/internal/pool"
)

// MaxChannels is the largest number of channels a raw image may carry
// (grayscale, grayscale+alpha, RGB, or RGBA).
const MaxChannels = 4

// RawImage is a decoded, planar raster image: width*height*n_channels
// bytes, row-major, channels interleaved per pixel.
type RawImage struct {
	Width     int
	Height    int
	NChannels int
	Pixels    []byte
}

// Header mirrors the on-wire BFG container header.
type Header = container.Header

// Validate checks RawImage's dimension invariants: width and height at
// least 1, n_channels in [1, MaxChannels], and width*height*n_channels
// representable in 32 bits.
func (r *RawImage) Validate() error {
	if r.Width < 1 || r.Height < 1 {
		return fmt.Errorf("%w: width=%d height=%d", codec.ErrInvalidDimensions, r.Width, r.Height)
	}
	if r.NChannels < 1 || r.NChannels > MaxChannels {
		return fmt.Errorf("%w: n_channels=%d", codec.ErrInvalidDimensions, r.NChannels)
	}
	total := uint64(r.Width) * uint64(r.Height) * uint64(r.NChannels)
	if total > 0xFFFFFFFF {
		return fmt.Errorf("%w: width*height*n_channels overflows uint32", codec.ErrInvalidDimensions)
	}
	if len(r.Pixels) != int(total) {
		return fmt.Errorf("%w: pixels has %d bytes, want %d", codec.ErrInvalidDimensions, len(r.Pixels), total)
	}
	return nil
}

// Encode compresses raw into a BFG header and payload.
func Encode(raw *RawImage) (Header, []byte, error) {
	if err := raw.Validate(); err != nil {
		return Header{}, nil, err
	}

	n := raw.Width * raw.Height
	worstCase := n * raw.NChannels
	scratch := pool.Get(worstCase)
	defer pool.Put(scratch)

	payload := scratch[:0]
	channel := pool.Get(n)
	defer pool.Put(channel)

	for c := 0; c < raw.NChannels; c++ {
		deinterleave(raw.Pixels, raw.NChannels, c, channel)
		payload = codec.EncodeChannel(channel, payload)
	}

	out := make([]byte, len(payload))
	copy(out, payload)

	hdr := Header{
		Width:     uint32(raw.Width),
		Height:    uint32(raw.Height),
		NBytes:    uint32(len(out)),
		NChannels: uint8(raw.NChannels),
	}
	return hdr, out, nil
}

// Decode reconstructs the raw pixel array described by hdr from payload.
func Decode(hdr Header, payload []byte) (*RawImage, error) {
	raw := &RawImage{
		Width:     int(hdr.Width),
		Height:    int(hdr.Height),
		NChannels: int(hdr.NChannels),
	}
	if raw.Width < 1 || raw.Height < 1 {
		return nil, fmt.Errorf("%w: width=%d height=%d", codec.ErrInvalidDimensions, raw.Width, raw.Height)
	}
	if raw.NChannels < 1 || raw.NChannels > MaxChannels {
		return nil, fmt.Errorf("%w: n_channels=%d", codec.ErrInvalidDimensions, raw.NChannels)
	}
	total := uint64(raw.Width) * uint64(raw.Height) * uint64(raw.NChannels)
	if total > 0xFFFFFFFF {
		return nil, fmt.Errorf("%w: width*height*n_channels overflows uint32", codec.ErrInvalidDimensions)
	}
	if uint32(len(payload)) != hdr.NBytes {
		return nil, fmt.Errorf("%w: payload has %d bytes, header declares %d", container.ErrTruncated, len(payload), hdr.NBytes)
	}

	n := raw.Width * raw.Height
	raw.Pixels = make([]byte, n*raw.NChannels)

	channel := pool.Get(n)
	defer pool.Put(channel)

	pos := 0
	for c := 0; c < raw.NChannels; c++ {
		consumed, err := codec.DecodeChannel(payload[pos:], n, channel)
		if err != nil {
			return nil, fmt.Errorf("bfg: decoding channel %d: %w", c, err)
		}
		interleave(channel, raw.NChannels, c, raw.Pixels)
		pos += consumed
	}

	return raw, nil
}

// deinterleave copies channel c's samples out of pixels (n_channels-wide
// interleaved rows) into dst, which must have length len(pixels)/n_channels.
func deinterleave(pixels []byte, nChannels, c int, dst []byte) {
	for i, p := 0, c; i < len(dst); i, p = i+1, p+nChannels {
		dst[i] = pixels[p]
	}
}

// interleave is the inverse of deinterleave: it scatters src's samples
// into channel c's slot of each pixel in dst.
func interleave(src []byte, nChannels, c int, dst []byte) {
	for i, p := 0, c; i < len(src); i, p = i+1, p+nChannels {
		dst[p] = src[i]
	}
}
