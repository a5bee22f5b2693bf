// Package codec implements the per-channel BFG block encoder and decoder:
// the streaming state machine that classifies pixels into FULL/RUN/DIFF
// blocks on encode, and the dispatch loop that reverses it on decode.
package codec

import (
	"github.com/sebseager/bfg/internal/bitio"
	"github.com/sebseager/bfg/internal/block"
)

// builder accumulates the payload bytes of the block currently being
// written, plus its pixel count, independent of where it will ultimately
// be flushed to.
type builder struct {
	kind    block.Kind
	length  int
	payload []byte
}

func (b *builder) reset(kind block.Kind) {
	b.kind = kind
	b.length = 0
	b.payload = b.payload[:0]
}

func (b *builder) appendFull(v byte) {
	b.payload = append(b.payload, v)
	b.length++
}

func (b *builder) appendRun() {
	b.length++
}

// appendDiff packs delta into this block's next 4-bit slot: high nibble of
// a payload byte first, then low nibble.
func (b *builder) appendDiff(delta int) {
	slot := block.EncodeDelta(delta)
	byteIdx := b.length / 2
	if byteIdx == len(b.payload) {
		b.payload = append(b.payload, 0)
	}
	if b.length%2 == 0 {
		bitio.WriteBits(b.payload, byteIdx, slot, block.DiffBits, 4)
	} else {
		bitio.WriteBits(b.payload, byteIdx, slot, block.DiffBits, 0)
	}
	b.length++
}

// flush appends this block's header byte and payload to dst and returns the
// extended slice. It must only be called with b.length >= 1.
func (b *builder) flush(dst []byte) []byte {
	dst = append(dst, block.EncodeHeader(b.kind, b.length))
	dst = append(dst, b.payload...)
	return dst
}

// clampedAt returns pixels[i] if i is in range, otherwise the last pixel in
// the slice — the lookahead clamping behavior required near the end of a
// channel (spec section 4.3).
func clampedAt(pixels []byte, i int) byte {
	if i >= len(pixels) {
		return pixels[len(pixels)-1]
	}
	return pixels[i]
}

// runStartable reports whether a RUN block could legally begin at pixels[i]
// given the previously emitted pixel value prev: the pixel must equal prev,
// and the pixel that follows it must also equal it.
func runStartable(pixels []byte, i int, prev byte) bool {
	curr := pixels[i]
	if curr != prev {
		return false
	}
	return clampedAt(pixels, i+1) == curr
}

// diffStartable reports whether a DIFF block could legally begin at
// pixels[i]: the delta from prev must be representable, and so must the
// delta from pixels[i] to the pixel that follows it.
func diffStartable(pixels []byte, i int, prev byte) bool {
	curr := pixels[i]
	if !block.InRange(int(curr) - int(prev)) {
		return false
	}
	next := clampedAt(pixels, i+1)
	return block.InRange(int(next) - int(curr))
}

// canContinue reports whether the active block may absorb pixels[i] without
// closing, given the previously emitted pixel value prev.
func canContinue(kind block.Kind, curr, prev byte) bool {
	switch kind {
	case block.FULL:
		return true
	case block.RUN:
		return curr == prev
	case block.DIFF:
		return block.InRange(int(curr) - int(prev))
	}
	return false
}

// EncodeChannel encodes pixels — one channel's samples, in scan order — as
// a sequence of BFG blocks, appending the result to dst and returning the
// extended slice. The "previous pixel" baseline at the start of the channel
// is 0, per spec.
func EncodeChannel(pixels []byte, dst []byte) []byte {
	n := len(pixels)
	if n == 0 {
		return dst
	}

	var b builder
	b.reset(block.FULL)

	var prev byte
	for i := 0; i < n; i++ {
		curr := pixels[i]

		if i == 0 {
			// The channel's very first pixel always lands in the initial
			// FULL block; there is no preceding pixel to weigh a switch
			// against yet.
			b.appendFull(curr)
			prev = curr
			continue
		}

		forcedByLength := b.length == block.MaxLength
		mustClose := forcedByLength
		var nextKind block.Kind
		haveNextKind := false

		if !forcedByLength {
			if canContinue(b.kind, curr, prev) {
				switch b.kind {
				case block.FULL:
					switch {
					case runStartable(pixels, i, prev):
						mustClose, nextKind, haveNextKind = true, block.RUN, true
					case diffStartable(pixels, i, prev):
						mustClose, nextKind, haveNextKind = true, block.DIFF, true
					}
				case block.DIFF:
					aligned := (b.length*block.DiffBits)%8 == 0
					if aligned && runStartable(pixels, i, prev) {
						mustClose, nextKind, haveNextKind = true, block.RUN, true
					}
				case block.RUN:
					// An intact run is already the cheapest representation;
					// nothing to opportunistically switch to.
				}
			} else {
				// The active block's continuation precondition failed
				// (a run broke, or a delta fell out of range): it must
				// close here.
				mustClose = true
			}
		}

		if mustClose {
			if b.length > 0 {
				dst = b.flush(dst)
			}
			if !haveNextKind {
				switch {
				case runStartable(pixels, i, prev):
					nextKind = block.RUN
				case diffStartable(pixels, i, prev):
					nextKind = block.DIFF
				default:
					nextKind = block.FULL
				}
			}
			b.reset(nextKind)
		}

		switch b.kind {
		case block.FULL:
			b.appendFull(curr)
		case block.RUN:
			b.appendRun()
		case block.DIFF:
			b.appendDiff(int(curr) - int(prev))
		}

		prev = curr
	}

	if b.length > 0 {
		dst = b.flush(dst)
	}
	return dst
}
