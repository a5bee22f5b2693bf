package bfg

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/sebseager/bfg/internal/codec"
	"github.com/sebseager/bfg/internal/container"
)

func init() {
	image.RegisterFormat("bfg", "\xbf\xbf\xbf\xbf", DecodeImage, DecodeConfig)
}

// EncodeImage converts img to a RawImage and returns it as a complete BFG
// container (header + payload).
func EncodeImage(img image.Image) ([]byte, error) {
	raw, err := rawFromImage(img)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := WriteContainer(&buf, raw); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeImage reads a BFG container from r and returns it as an
// image.Image: *image.Gray for single-channel images, *GrayAlpha for
// two-channel, and *image.NRGBA for three or four.
func DecodeImage(r io.Reader) (image.Image, error) {
	raw, err := ReadContainer(r)
	if err != nil {
		return nil, err
	}
	return imageFromRaw(raw), nil
}

// DecodeConfig returns a BFG image's color model and dimensions without
// decoding pixel data.
func DecodeConfig(r io.Reader) (image.Config, error) {
	buf := make([]byte, container.HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return image.Config{}, fmt.Errorf("bfg: reading header: %w", err)
	}
	hdr, err := container.DecodeHeader(buf)
	if err != nil {
		return image.Config{}, err
	}
	var cm color.Model
	switch hdr.NChannels {
	case 1:
		cm = color.GrayModel
	case 2:
		cm = grayAlphaModel
	default:
		cm = color.NRGBAModel
	}
	return image.Config{ColorModel: cm, Width: int(hdr.Width), Height: int(hdr.Height)}, nil
}

// rawFromImage extracts a planar RawImage from any image.Image, choosing
// the narrowest channel count the source actually uses: 1 for pure
// grayscale, 2 if it additionally carries non-opaque alpha, 3 for color
// without meaningful alpha, 4 for color with alpha.
func rawFromImage(img image.Image) (*RawImage, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("%w: width=%d height=%d", codec.ErrInvalidDimensions, w, h)
	}

	switch src := img.(type) {
	case *image.Gray:
		return rawFromGray(src, w, h), nil
	case *GrayAlpha:
		return rawFromGrayAlpha(src, w, h), nil
	}

	hasColor, hasAlpha := scanChannels(img)
	nChannels := channelsFor(hasColor, hasAlpha)
	pixels := make([]byte, w*h*nChannels)

	idx := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			switch nChannels {
			case 1:
				pixels[idx] = c.R
			case 2:
				pixels[idx] = c.R
				pixels[idx+1] = c.A
			case 3:
				pixels[idx] = c.R
				pixels[idx+1] = c.G
				pixels[idx+2] = c.B
			case 4:
				pixels[idx] = c.R
				pixels[idx+1] = c.G
				pixels[idx+2] = c.B
				pixels[idx+3] = c.A
			}
			idx += nChannels
		}
	}

	return &RawImage{Width: w, Height: h, NChannels: nChannels, Pixels: pixels}, nil
}

// scanChannels reports whether img carries genuine color information (any
// pixel with R, G, B not all equal) and genuine transparency (any pixel
// with alpha != fully opaque).
func scanChannels(img image.Image) (hasColor, hasAlpha bool) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			if r != g || g != bl {
				hasColor = true
			}
			if a != 0xffff {
				hasAlpha = true
			}
			if hasColor && hasAlpha {
				return true, true
			}
		}
	}
	return hasColor, hasAlpha
}

func channelsFor(hasColor, hasAlpha bool) int {
	switch {
	case hasColor && hasAlpha:
		return 4
	case hasColor:
		return 3
	case hasAlpha:
		return 2
	default:
		return 1
	}
}

func rawFromGray(g *image.Gray, w, h int) *RawImage {
	pixels := make([]byte, w*h)
	b := g.Bounds()
	idx := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := g.PixOffset(b.Min.X, y)
		copy(pixels[idx:idx+w], g.Pix[off:off+w])
		idx += w
	}
	return &RawImage{Width: w, Height: h, NChannels: 1, Pixels: pixels}
}

func rawFromGrayAlpha(g *GrayAlpha, w, h int) *RawImage {
	pixels := make([]byte, w*h*2)
	b := g.Bounds()
	idx := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := g.PixOffset(b.Min.X, y)
		copy(pixels[idx:idx+w*2], g.Pix[off:off+w*2])
		idx += w * 2
	}
	return &RawImage{Width: w, Height: h, NChannels: 2, Pixels: pixels}
}

// imageFromRaw builds the narrowest standard (or BFG-provided) image.Image
// type for raw's channel count.
func imageFromRaw(raw *RawImage) image.Image {
	rect := image.Rect(0, 0, raw.Width, raw.Height)
	switch raw.NChannels {
	case 1:
		img := image.NewGray(rect)
		copy(img.Pix, raw.Pixels)
		return img
	case 2:
		img := NewGrayAlpha(rect)
		copy(img.Pix, raw.Pixels)
		return img
	case 3:
		img := image.NewNRGBA(rect)
		n := raw.Width * raw.Height
		di := 0
		for i := 0; i < n; i++ {
			img.Pix[di] = raw.Pixels[i*3]
			img.Pix[di+1] = raw.Pixels[i*3+1]
			img.Pix[di+2] = raw.Pixels[i*3+2]
			img.Pix[di+3] = 0xff
			di += 4
		}
		return img
	default: // 4
		img := image.NewNRGBA(rect)
		copy(img.Pix, raw.Pixels)
		return img
	}
}

// GrayAlpha is a 2-channel (gray, alpha) image: the in-memory
// representation BFG uses for n_channels == 2, since the standard library
// has no built-in image type for it.
type GrayAlpha struct {
	// Pix holds the image's pixels as (gray, alpha) pairs, row-major,
	// starting at Pix[0].
	Pix []byte
	// Stride is the Pix index difference between vertically adjacent
	// pixels.
	Stride int
	Rect   image.Rectangle
}

// NewGrayAlpha returns a new GrayAlpha image with the given bounds.
func NewGrayAlpha(r image.Rectangle) *GrayAlpha {
	w, h := r.Dx(), r.Dy()
	return &GrayAlpha{Pix: make([]byte, w*h*2), Stride: w * 2, Rect: r}
}

func (p *GrayAlpha) ColorModel() color.Model { return grayAlphaModel }

func (p *GrayAlpha) Bounds() image.Rectangle { return p.Rect }

func (p *GrayAlpha) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*2
}

func (p *GrayAlpha) At(x, y int) color.Color {
	if !(image.Pt(x, y).In(p.Rect)) {
		return grayAlphaColor{}
	}
	i := p.PixOffset(x, y)
	return grayAlphaColor{Y: p.Pix[i], A: p.Pix[i+1]}
}

// Set stores c, converted to grayAlphaColor, at (x, y).
func (p *GrayAlpha) Set(x, y int, c color.Color) {
	if !(image.Pt(x, y).In(p.Rect)) {
		return
	}
	i := p.PixOffset(x, y)
	ga := grayAlphaModel.Convert(c).(grayAlphaColor)
	p.Pix[i] = ga.Y
	p.Pix[i+1] = ga.A
}

// grayAlphaColor is an 8-bit grayscale color with an 8-bit alpha channel.
type grayAlphaColor struct {
	Y, A uint8
}

// RGBA implements color.Color. The result is alpha-premultiplied, per the
// color.Color contract.
func (c grayAlphaColor) RGBA() (r, g, b, a uint32) {
	y := uint32(c.Y)
	y |= y << 8
	a = uint32(c.A)
	a |= a << 8
	y = y * a / 0xffff
	return y, y, y, a
}

var grayAlphaModel = color.ModelFunc(func(c color.Color) color.Color {
	if ga, ok := c.(grayAlphaColor); ok {
		return ga
	}
	r, _, _, a := c.RGBA()
	var y uint32
	if a != 0 {
		y = r * 0xffff / a
	}
	return grayAlphaColor{Y: uint8(y >> 8), A: uint8(a >> 8)}
})
