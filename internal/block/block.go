// Package block defines the three BFG block kinds (FULL, RUN, DIFF), their
// one-byte headers, and the payload-size/delta codec helpers shared by the
// encoder and decoder state machines in internal/codec.
package block

import (
	"errors"
	"fmt"
)

// Kind identifies the on-wire representation a block uses for its pixels.
type Kind uint8

const (
	// FULL stores each pixel's byte literally: 8 bits/pixel.
	FULL Kind = 0
	// RUN asserts that the next length pixels equal the previously emitted
	// pixel: 0 payload bits/pixel.
	RUN Kind = 1
	// DIFF stores successive signed deltas in 4-bit sign-magnitude slots:
	// 4 bits/pixel.
	DIFF Kind = 2
)

func (k Kind) String() string {
	switch k {
	case FULL:
		return "FULL"
	case RUN:
		return "RUN"
	case DIFF:
		return "DIFF"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// TagBits is the width, in bits, of the block-kind tag within the header
// byte.
const TagBits = 3

// LengthBits is the width, in bits, of the length-1 field within the header
// byte.
const LengthBits = 5

// MaxLength is the largest pixel count a single block may encode (5 bits of
// length-1, so length in [1, MaxLength]).
const MaxLength = 1 << LengthBits // 32

// DiffBits is the width, in bits, of each DIFF payload slot.
const DiffBits = 4

// MaxDelta is the largest magnitude representable by a DIFF slot.
const MaxDelta = 7

// ErrReservedTag indicates a block header used a tag value >= 3, which is
// reserved and therefore invalid on decode.
var ErrReservedTag = errors.New("block: reserved tag")

// EncodeHeader packs kind and a pixel count (length in [1, MaxLength]) into
// a single header byte.
func EncodeHeader(kind Kind, length int) byte {
	if length < 1 || length > MaxLength {
		panic("block: length out of range")
	}
	return byte(kind)<<LengthBits | byte(length-1)
}

// DecodeHeader unpacks a header byte into its kind and pixel-count length.
// It returns ErrReservedTag if the tag is not FULL, RUN, or DIFF.
func DecodeHeader(header byte) (kind Kind, length int, err error) {
	kind = Kind(header >> LengthBits)
	length = int(header&(1<<LengthBits-1)) + 1
	if kind != FULL && kind != RUN && kind != DIFF {
		return 0, 0, fmt.Errorf("%w: %d", ErrReservedTag, kind)
	}
	return kind, length, nil
}

// PayloadBytes returns the number of payload bytes that follow a block
// header of the given kind and pixel-count length.
func PayloadBytes(kind Kind, length int) int {
	switch kind {
	case FULL:
		return length
	case RUN:
		return 0
	case DIFF:
		return (length*DiffBits + 7) / 8
	default:
		panic("block: unknown kind")
	}
}

// EncodeDelta converts a signed delta in [-MaxDelta, MaxDelta] to its 4-bit
// sign-magnitude slot value: bit 3 is the sign (1 = negative), bits 2..0 the
// magnitude.
func EncodeDelta(delta int) byte {
	if delta < -MaxDelta || delta > MaxDelta {
		panic("block: delta out of range")
	}
	if delta < 0 {
		return 0x8 | byte(-delta)
	}
	return byte(delta)
}

// DecodeDelta converts a 4-bit sign-magnitude slot value back to a signed
// delta.
func DecodeDelta(slot byte) int {
	mag := int(slot & 0x7)
	if slot&0x8 != 0 {
		return -mag
	}
	return mag
}

// InRange reports whether delta is representable by a single DIFF slot.
func InRange(delta int) bool {
	return delta >= -MaxDelta && delta <= MaxDelta
}
