// Package bfg implements a lossless, block-partitioned codec for raw 8-bit
// raster images (grayscale, grayscale+alpha, RGB, or RGBA).
//
// BFG targets small-to-medium images with large uniform regions and locally
// smooth gradients, where a simple block-oriented scheme beats a general
// purpose entropy coder in both size and CPU time. Each channel plane is
// scanned independently and classified, pixel run by pixel run, into one of
// three block kinds:
//
//   - FULL: literal bytes, one per pixel.
//   - RUN:  a run of pixels identical to the previously emitted one.
//   - DIFF: a run of small signed deltas (+/-7) packed four bits per pixel.
//
// The package supports:
//   - Encoding/decoding the raw planar pixel representation directly.
//   - Reading and writing the on-disk BFG container (19-byte header + payload).
//   - Adapting to and from the standard library's image.Image, so BFG files
//     can be produced from (and decoded back into) any image source the
//     standard library already understands (PNG, JPEG, GIF, ...).
//
// Basic usage for encoding:
//
//	data, err := bfg.EncodeImage(img)
//
// Basic usage for decoding:
//
//	img, err := bfg.DecodeImage(reader)
package bfg
