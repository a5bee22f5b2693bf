// Package container implements the fixed 19-byte BFG file header plus
// payload framing: reading and writing the container that wraps an
// encoded BFG image on disk or over a stream.
package container

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MagicTag is the constant 4-byte identifier every BFG container starts
// with.
const MagicTag uint32 = 0xBFBFBFBF

// Version is the only format version this package knows how to read or
// write.
const Version uint8 = 1

// HeaderSize is the fixed size, in bytes, of a BFG container header.
const HeaderSize = 19

// Common errors.
var (
	ErrBadMagic           = errors.New("container: bad magic tag")
	ErrUnsupportedVersion = errors.New("container: unsupported version")
	ErrTruncated          = errors.New("container: truncated data")
)

// Header holds the fixed fields that precede a BFG payload.
type Header struct {
	Width     uint32
	Height    uint32
	NBytes    uint32
	NChannels uint8
	ColorMode uint8 // reserved, always written as 0 and ignored on read
}

// Encode writes hdr's 19-byte on-wire representation to buf, which must
// have length >= HeaderSize.
func (h Header) Encode(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], MagicTag)
	buf[4] = Version
	binary.LittleEndian.PutUint32(buf[5:9], h.Width)
	binary.LittleEndian.PutUint32(buf[9:13], h.Height)
	binary.LittleEndian.PutUint32(buf[13:17], h.NBytes)
	buf[17] = h.NChannels
	buf[18] = 0
}

// DecodeHeader parses a 19-byte BFG header from buf. buf must have length
// >= HeaderSize; any trailing bytes are ignored.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("%w: header needs %d bytes, got %d", ErrTruncated, HeaderSize, len(buf))
	}
	magic := binary.LittleEndian.Uint32(buf[0:4])
	if magic != MagicTag {
		return Header{}, fmt.Errorf("%w: got %#x", ErrBadMagic, magic)
	}
	version := buf[4]
	if version != Version {
		return Header{}, fmt.Errorf("%w: got %d", ErrUnsupportedVersion, version)
	}
	return Header{
		Width:     binary.LittleEndian.Uint32(buf[5:9]),
		Height:    binary.LittleEndian.Uint32(buf[9:13]),
		NBytes:    binary.LittleEndian.Uint32(buf[13:17]),
		NChannels: buf[17],
		ColorMode: 0,
	}, nil
}

// Write writes the full container (header + payload) to w.
func Write(w io.Writer, hdr Header, payload []byte) error {
	var buf [HeaderSize]byte
	hdr.Encode(buf[:])
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("container: writing header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("container: writing payload: %w", err)
	}
	return nil
}

// Read reads a full container (header + payload) from r.
func Read(r io.Reader) (Header, []byte, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return Header{}, nil, fmt.Errorf("%w: %v", ErrTruncated, err)
		}
		return Header{}, nil, fmt.Errorf("container: reading header: %w", err)
	}
	hdr, err := DecodeHeader(buf[:])
	if err != nil {
		return Header{}, nil, err
	}
	payload := make([]byte, hdr.NBytes)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return Header{}, nil, fmt.Errorf("%w: %v", ErrTruncated, err)
		}
		return Header{}, nil, fmt.Errorf("container: reading payload: %w", err)
	}
	return hdr, payload, nil
}
