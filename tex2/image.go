// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ddpack

package tex2

import (
	"fmt"
	"image"
	"image/color"
	"io"
)

// fillPixel is returned for reads outside the pixel buffer.
var fillPixel = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// Image is a decoded tex2 texture with all of its mipmap levels.
// The selected level is used by pixel lookups and image.Image methods only;
// serialization always emits the whole chain.
type Image struct {
	// Pixels holds every level back to back, level 0 first.
	Pixels []color.NRGBA
	Height uint32
	Width  uint32
	// MipmapLevels is the declared level count kept verbatim from the header.
	MipmapLevels uint8

	level       uint8
	levelOffset uint32
}

// Parse decodes a texture reading exactly the declared pixel chain.
// It returns the number of unused bytes after the chain.
func Parse(b []byte) (*Image, int, error) {
	h, err := ParseHeader(b)
	if err != nil {
		return nil, 0, err
	}

	want := TotalPixelCount(h.Height, h.Width, h.MipmapLevels)
	avail := uint64(len(b)-HeaderSize) / pixelSize
	if avail < want {
		return nil, 0, fmt.Errorf("%w: %dx%d with %d level(s) needs %d pixels, got %d",
			ErrIncompleteInput, h.Width, h.Height, h.MipmapLevels, want, avail)
	}

	img := newImage(h, b[HeaderSize:], int(want)) //nolint:gosec // bounded by len(b)
	return img, len(b) - HeaderSize - int(want)*pixelSize, nil
}

// ParseUnbounded decodes a texture reading pixels until input is exhausted.
// It returns the number of leftover bytes that do not form a whole pixel.
func ParseUnbounded(b []byte) (*Image, int, error) {
	h, err := ParseHeader(b)
	if err != nil {
		return nil, 0, err
	}

	data := b[HeaderSize:]
	count := len(data) / pixelSize
	return newImage(h, data, count), len(data) % pixelSize, nil
}

// newImage copies count RGBA tuples from data.
func newImage(h Header, data []byte, count int) *Image {
	pixels := make([]color.NRGBA, count)
	for i := range pixels {
		p := data[i*pixelSize : i*pixelSize+pixelSize]
		pixels[i] = color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
	}

	return &Image{
		Height:       h.Height,
		Width:        h.Width,
		MipmapLevels: h.MipmapLevels,
		Pixels:       pixels,
	}
}

// FromImage builds a base-level texture from any image.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	img := &Image{
		Width:  uint32(b.Dx()), //nolint:gosec // image bounds are non-negative
		Height: uint32(b.Dy()), //nolint:gosec // image bounds are non-negative
		Pixels: make([]color.NRGBA, 0, b.Dx()*b.Dy()),
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA) //nolint:forcetypeassert // NRGBAModel returns NRGBA
			img.Pixels = append(img.Pixels, c)
		}
	}

	return img
}

// Header returns the texture header.
func (img *Image) Header() Header {
	return Header{Height: img.Height, Width: img.Width, MipmapLevels: img.MipmapLevels}
}

// Level returns the selected mipmap level.
func (img *Image) Level() uint8 {
	return img.level
}

// SetLevel selects the mipmap level used by pixel lookups.
// Levels above zero need power-of-two dimensions and at least one pixel per side.
func (img *Image) SetLevel(level uint8) error {
	offset, err := OffsetForLevel(img.Height, img.Width, level)
	if err != nil {
		return err
	}

	if level > 0 && (shift(img.Width, level) == 0 || shift(img.Height, level) == 0) {
		return fmt.Errorf("%w: level %d of %dx%d texture is empty", ErrUnsupportedMipmapLevel, level, img.Width, img.Height)
	}

	img.level = level
	img.levelOffset = offset
	return nil
}

// LevelSize returns width and height of the selected level.
func (img *Image) LevelSize() (uint32, uint32) {
	return shift(img.Width, img.level), shift(img.Height, img.level)
}

// PixelAt returns the pixel at (x, y) of the selected level.
// Reads outside the pixel buffer return opaque white.
func (img *Image) PixelAt(x, y int) color.NRGBA {
	w, _ := img.LevelSize()
	idx := int64(img.levelOffset) + int64(w)*int64(y) + int64(x)
	if idx < 0 || idx >= int64(len(img.Pixels)) {
		return fillPixel
	}

	return img.Pixels[idx]
}

// ColorModel implements image.Image.
func (img *Image) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements image.Image for the selected level.
func (img *Image) Bounds() image.Rectangle {
	w, h := img.LevelSize()
	return image.Rect(0, 0, int(w), int(h))
}

// At implements image.Image for the selected level.
func (img *Image) At(x, y int) color.Color {
	return img.PixelAt(x, y)
}

// NRGBA copies the selected level into an *image.NRGBA.
func (img *Image) NRGBA() *image.NRGBA {
	out := image.NewNRGBA(img.Bounds())
	w, h := img.LevelSize()
	for y := 0; y < int(h); y++ {
		for x := 0; x < int(w); x++ {
			out.SetNRGBA(x, y, img.PixelAt(x, y))
		}
	}

	return out
}

// MarshalBinary encodes the header and the full pixel chain regardless of selected level.
func (img *Image) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, HeaderSize+len(img.Pixels)*pixelSize)
	out = AppendHeader(out, img.Header())
	for _, p := range img.Pixels {
		out = append(out, p.R, p.G, p.B, p.A)
	}

	return out, nil
}

// WriteTo writes the encoded texture to w.
func (img *Image) WriteTo(w io.Writer) (int64, error) {
	raw, err := img.MarshalBinary()
	if err != nil {
		return 0, err
	}

	n, err := w.Write(raw)
	return int64(n), err
}
