// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ddpack

package tex2

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"
)

const (
	// HeaderSize is magic(2) + height(4) + width(4) + levels(1).
	HeaderSize = 11
	// pixelSize is one RGBA8 tuple.
	pixelSize = 4
)

// Magic is the tex2 signature (".@" with a leading 0x11).
var Magic = [2]byte{0x11, 0x40}

// Header is the fixed tex2 header.
type Header struct {
	Height uint32 `json:"height" yaml:"height"`
	Width  uint32 `json:"width" yaml:"width"`
	// MipmapLevels is the declared level count; 0 and 1 both mean base level only.
	MipmapLevels uint8 `json:"mipmap_levels" yaml:"mipmap_levels"`
}

// ParseHeader parses the tex2 header from the start of b.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < len(Magic) || b[0] != Magic[0] || b[1] != Magic[1] {
		return Header{}, ErrBadTextureMagic
	}

	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: header needs %d bytes, got %d", ErrIncompleteInput, HeaderSize, len(b))
	}

	return Header{
		Height:       binary.LittleEndian.Uint32(b[2:6]),
		Width:        binary.LittleEndian.Uint32(b[6:10]),
		MipmapLevels: b[10],
	}, nil
}

// AppendHeader appends the encoded header to dst.
func AppendHeader(dst []byte, h Header) []byte {
	dst = append(dst, Magic[:]...)
	dst = binary.LittleEndian.AppendUint32(dst, h.Height)
	dst = binary.LittleEndian.AppendUint32(dst, h.Width)
	return append(dst, h.MipmapLevels)
}

// LevelCount returns the number of stored levels including the base level.
func (h Header) LevelCount() int {
	if h.MipmapLevels <= 1 {
		return 1
	}

	return int(h.MipmapLevels)
}

// TotalPixelCount returns the number of pixels in the declared chain.
// The sum saturates at math.MaxUint64; no payload can hold that many pixels.
func TotalPixelCount(height, width uint32, levels uint8) uint64 {
	count := Header{Height: height, Width: width, MipmapLevels: levels}.LevelCount()

	var total uint64
	for n := range count {
		sum, carry := bits.Add64(total, levelPixels(height, width, uint8(n)), 0) //nolint:gosec // n < 256
		if carry != 0 {
			return math.MaxUint64
		}

		total = sum
	}

	return total
}

// OffsetForLevel returns the pixel index where level starts:
// the sum of (width>>n)*(height>>n) for every n below level.
func OffsetForLevel(height, width uint32, level uint8) (uint32, error) {
	if level == 0 {
		return 0, nil
	}

	if !isPowerOfTwo(height) || !isPowerOfTwo(width) {
		return 0, fmt.Errorf("%w: level %d of %dx%d texture needs power-of-two dimensions",
			ErrUnsupportedMipmapLevel, level, width, height)
	}

	var total uint64
	for n := range level {
		total += levelPixels(height, width, n)
	}

	if total > math.MaxUint32 {
		return 0, fmt.Errorf("%w: level %d offset %d", ErrSizeOverflow, level, total)
	}

	return uint32(total), nil
}

// levelPixels returns pixel count of one level.
func levelPixels(height, width uint32, level uint8) uint64 {
	return uint64(shift(width, level)) * uint64(shift(height, level))
}

// shift returns v>>level, zero for shifts past the value width.
func shift(v uint32, level uint8) uint32 {
	if level >= 32 {
		return 0
	}

	return v >> level
}

// isPowerOfTwo reports whether v is a non-zero power of two.
func isPowerOfTwo(v uint32) bool {
	return v != 0 && v&(v-1) == 0
}
