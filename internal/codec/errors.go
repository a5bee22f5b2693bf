package codec

import "errors"

// Errors surfaced by the per-channel encoder and decoder. Container-level
// errors (bad magic, unsupported version, truncated reads) live in
// internal/container instead.
var (
	// ErrInvalidDimensions is returned when width, height, or n_channels is
	// out of range, or width*height*n_channels would overflow uint32.
	ErrInvalidDimensions = errors.New("codec: invalid dimensions")

	// ErrMalformedBlock is returned when a block header carries a reserved
	// tag, a block's declared length overruns the channel's remaining
	// pixels or the payload's remaining bytes, or the decoded pixel count
	// does not match the expected total.
	ErrMalformedBlock = errors.New("codec: malformed block")
)
