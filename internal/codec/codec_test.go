package codec

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/sebseager/bfg/internal/block"
)

func decodeAll(t *testing.T, payload []byte, n int) []byte {
	t.Helper()
	out := make([]byte, n)
	consumed, err := DecodeChannel(payload, n, out)
	if err != nil {
		t.Fatalf("DecodeChannel: %v", err)
	}
	if consumed != len(payload) {
		t.Fatalf("DecodeChannel consumed %d bytes, want %d", consumed, len(payload))
	}
	return out
}

func TestEncodeDecode_SinglePixel(t *testing.T) {
	pixels := []byte{42}
	payload := EncodeChannel(pixels, nil)
	want := []byte{block.EncodeHeader(block.FULL, 1), 42}
	if !bytes.Equal(payload, want) {
		t.Fatalf("payload = %v, want %v", payload, want)
	}
	got := decodeAll(t, payload, 1)
	if !bytes.Equal(got, pixels) {
		t.Fatalf("decoded = %v, want %v", got, pixels)
	}
}

func TestEncodeDecode_RunOfFive(t *testing.T) {
	pixels := []byte{7, 7, 7, 7, 7}
	payload := EncodeChannel(pixels, nil)
	if len(payload) > 3 {
		t.Fatalf("payload length = %d, want <= 3", len(payload))
	}
	got := decodeAll(t, payload, len(pixels))
	if !bytes.Equal(got, pixels) {
		t.Fatalf("decoded = %v, want %v", got, pixels)
	}
}

func TestEncode_GradientWithinDeltaRange(t *testing.T) {
	pixels := []byte{10, 13, 16, 19, 22, 25, 28, 31}
	payload := EncodeChannel(pixels, nil)

	wantHeader1 := block.EncodeHeader(block.FULL, 1)
	wantHeader2 := block.EncodeHeader(block.DIFF, 7)
	if payload[0] != wantHeader1 || payload[1] != 10 {
		t.Fatalf("first block header/payload = %#x %d, want %#x 10", payload[0], payload[1], wantHeader1)
	}
	if payload[2] != wantHeader2 {
		t.Fatalf("second block header = %#x, want %#x", payload[2], wantHeader2)
	}
	if len(payload) != 2+1+4 {
		t.Fatalf("payload length = %d, want %d", len(payload), 2+1+4)
	}

	got := decodeAll(t, payload, len(pixels))
	if !bytes.Equal(got, pixels) {
		t.Fatalf("decoded = %v, want %v", got, pixels)
	}
}

func TestEncode_DeltaOutOfRange(t *testing.T) {
	pixels := []byte{0, 100, 200}
	payload := EncodeChannel(pixels, nil)
	want := []byte{block.EncodeHeader(block.FULL, 3), 0, 100, 200}
	if !bytes.Equal(payload, want) {
		t.Fatalf("payload = %v, want %v", payload, want)
	}
	got := decodeAll(t, payload, len(pixels))
	if !bytes.Equal(got, pixels) {
		t.Fatalf("decoded = %v, want %v", got, pixels)
	}
}

func TestEncode_TwoPatternChannels(t *testing.T) {
	ch0 := []byte{0, 0, 0, 0}
	payload0 := EncodeChannel(ch0, nil)
	want0 := []byte{
		block.EncodeHeader(block.FULL, 1), 0,
		block.EncodeHeader(block.RUN, 3),
	}
	if !bytes.Equal(payload0, want0) {
		t.Fatalf("channel 0 payload = %v, want %v", payload0, want0)
	}

	ch1 := []byte{255, 255, 255, 255}
	payload1 := EncodeChannel(ch1, nil)
	want1 := []byte{
		block.EncodeHeader(block.FULL, 1), 255,
		block.EncodeHeader(block.RUN, 3),
	}
	if !bytes.Equal(payload1, want1) {
		t.Fatalf("channel 1 payload = %v, want %v", payload1, want1)
	}
}

func TestDecode_ReservedTag(t *testing.T) {
	payload := []byte{7 << block.LengthBits}
	out := make([]byte, 1)
	_, err := DecodeChannel(payload, 1, out)
	if err == nil {
		t.Fatal("expected error for reserved tag")
	}
	for _, v := range out {
		if v != 0 {
			t.Fatalf("decoder wrote pixels on a malformed header: %v", out)
		}
	}
}

func TestDecode_LengthOverrunsChannel(t *testing.T) {
	payload := []byte{block.EncodeHeader(block.FULL, 5), 1, 2, 3, 4, 5}
	out := make([]byte, 3)
	_, err := DecodeChannel(payload, 3, out)
	if err == nil {
		t.Fatal("expected error when block length exceeds remaining channel pixels")
	}
}

func TestDecode_TruncatedPayload(t *testing.T) {
	payload := []byte{block.EncodeHeader(block.FULL, 3), 1, 2}
	out := make([]byte, 3)
	_, err := DecodeChannel(payload, 3, out)
	if err == nil {
		t.Fatal("expected error when payload is shorter than declared")
	}
}

func TestRoundTrip_RandomChannels(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(300)
		pixels := make([]byte, n)
		switch trial % 4 {
		case 0: // uniform
			v := byte(rng.Intn(256))
			for i := range pixels {
				pixels[i] = v
			}
		case 1: // gradient
			v := byte(rng.Intn(256))
			for i := range pixels {
				pixels[i] = v
				v += byte(rng.Intn(5) - 2)
			}
		case 2: // fully random
			rng.Read(pixels)
		case 3: // sparse edits atop a uniform baseline
			v := byte(rng.Intn(256))
			for i := range pixels {
				pixels[i] = v
			}
			for i := 0; i < n/10; i++ {
				pixels[rng.Intn(n)] = byte(rng.Intn(256))
			}
		}

		payload := EncodeChannel(pixels, nil)
		got := decodeAll(t, payload, n)
		if !bytes.Equal(got, pixels) {
			t.Fatalf("trial %d (n=%d): round-trip mismatch", trial, n)
		}
	}
}

func TestRunPreference_LongIdenticalRun(t *testing.T) {
	pixels := make([]byte, 40)
	for i := range pixels {
		pixels[i] = 9
	}
	payload := EncodeChannel(pixels, nil)

	sawRun := false
	pos := 0
	for pos < len(payload) {
		kind, length, err := block.DecodeHeader(payload[pos])
		if err != nil {
			t.Fatalf("DecodeHeader: %v", err)
		}
		if kind == block.RUN {
			sawRun = true
		}
		pos += 1 + block.PayloadBytes(kind, length)
	}
	if !sawRun {
		t.Fatal("expected at least one RUN block for a long identical run")
	}
}

func TestBlockLengthBound(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	pixels := make([]byte, 500)
	rng.Read(pixels)
	payload := EncodeChannel(pixels, nil)

	pos := 0
	for pos < len(payload) {
		kind, length, err := block.DecodeHeader(payload[pos])
		if err != nil {
			t.Fatalf("DecodeHeader: %v", err)
		}
		if length < 1 || length > block.MaxLength {
			t.Fatalf("block length %d out of [1, %d]", length, block.MaxLength)
		}
		pos += 1 + block.PayloadBytes(kind, length)
	}
}

func TestChannelIndependence(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	channels := make([][]byte, 3)
	for c := range channels {
		channels[c] = make([]byte, 64)
		rng.Read(channels[c])
	}

	var combined []byte
	for _, ch := range channels {
		combined = EncodeChannel(ch, combined)
	}

	var separate []byte
	for _, ch := range channels {
		separate = append(separate, EncodeChannel(ch, nil)...)
	}

	if !bytes.Equal(combined, separate) {
		t.Fatal("channel-by-channel concatenation differs from combined encode")
	}
}

func TestDiffRangeCheck(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for trial := 0; trial < 50; trial++ {
		n := 20 + rng.Intn(100)
		pixels := make([]byte, n)
		v := byte(128)
		for i := range pixels {
			pixels[i] = v
			v += byte(rng.Intn(7) - 3)
		}
		payload := EncodeChannel(pixels, nil)

		pos := 0
		for pos < len(payload) {
			kind, length, err := block.DecodeHeader(payload[pos])
			if err != nil {
				t.Fatalf("DecodeHeader: %v", err)
			}
			if kind == block.DIFF {
				need := block.PayloadBytes(kind, length)
				chunk := payload[pos+1 : pos+1+need]
				for i := 0; i < length; i++ {
					byteIdx := i / 2
					var slot byte
					if i%2 == 0 {
						slot = (chunk[byteIdx] >> 4) & 0xF
					} else {
						slot = chunk[byteIdx] & 0xF
					}
					delta := block.DecodeDelta(slot)
					if delta < -block.MaxDelta || delta > block.MaxDelta {
						t.Fatalf("trial %d: delta %d out of range", trial, delta)
					}
				}
			}
			pos += 1 + block.PayloadBytes(kind, length)
		}
	}
}
