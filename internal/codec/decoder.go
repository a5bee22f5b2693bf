package codec

import (
	"fmt"

	"github.com/sebseager/bfg/internal/bitio"
	"github.com/sebseager/bfg/internal/block"
)

// DecodeChannel decodes blocks from payload, starting at offset 0, until
// exactly n pixels have been emitted into out (which must have length n).
// It returns the number of payload bytes consumed.
//
// DecodeChannel never writes a partial pixel for a block it rejects: on any
// error it returns before touching out for that block.
func DecodeChannel(payload []byte, n int, out []byte) (consumed int, err error) {
	if len(out) != n {
		panic("codec: out buffer size mismatch")
	}

	var prev byte
	pos := 0
	emitted := 0

	for emitted < n {
		if pos >= len(payload) {
			return pos, fmt.Errorf("%w: header missing", ErrMalformedBlock)
		}

		kind, length, herr := block.DecodeHeader(payload[pos])
		if herr != nil {
			return pos, fmt.Errorf("%w: %v", ErrMalformedBlock, herr)
		}
		headerPos := pos
		pos++

		if emitted+length > n {
			return headerPos, fmt.Errorf("%w: block of length %d overruns channel", ErrMalformedBlock, length)
		}

		need := block.PayloadBytes(kind, length)
		if pos+need > len(payload) {
			return headerPos, fmt.Errorf("%w: block declares %d payload bytes, only %d remain", ErrMalformedBlock, need, len(payload)-pos)
		}

		switch kind {
		case block.FULL:
			copy(out[emitted:emitted+length], payload[pos:pos+need])
			prev = out[emitted+length-1]

		case block.RUN:
			for i := 0; i < length; i++ {
				out[emitted+i] = prev
			}

		case block.DIFF:
			chunk := payload[pos : pos+need]
			for i := 0; i < length; i++ {
				byteIdx := i / 2
				var slot byte
				if i%2 == 0 {
					slot = bitio.ReadBits(chunk, byteIdx, block.DiffBits, 4)
				} else {
					slot = bitio.ReadBits(chunk, byteIdx, block.DiffBits, 0)
				}
				prev = byte(int(prev) + block.DecodeDelta(slot))
				out[emitted+i] = prev
			}
		}

		pos += need
		emitted += length
	}

	return pos, nil
}
