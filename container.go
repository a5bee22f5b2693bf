package bfg

import (
	"fmt"
	"io"

	"github.com/sebseager/bfg/internal/container"
)

// WriteContainer encodes raw and writes the full BFG container (header +
// payload) to w.
func WriteContainer(w io.Writer, raw *RawImage) error {
	hdr, payload, err := Encode(raw)
	if err != nil {
		return err
	}
	if err := container.Write(w, hdr, payload); err != nil {
		return fmt.Errorf("bfg: writing container: %w", err)
	}
	return nil
}

// ReadContainer reads a full BFG container from r and decodes it into a
// RawImage.
func ReadContainer(r io.Reader) (*RawImage, error) {
	hdr, payload, err := container.Read(r)
	if err != nil {
		return nil, fmt.Errorf("bfg: reading container: %w", err)
	}
	return Decode(hdr, payload)
}
