// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ddpack

package tex2

import "math"

// LevelInfo describes one mipmap level beyond the base level.
type LevelInfo struct {
	Level  uint8  `json:"level" yaml:"level"`
	Width  uint32 `json:"width" yaml:"width"`
	Height uint32 `json:"height" yaml:"height"`
	Pixels uint64 `json:"pixels" yaml:"pixels"`
	// Remaining is extra pixels left after this and all previous levels; negative means missing data.
	Remaining int64 `json:"remaining" yaml:"remaining"`
}

// Report summarizes how a texture payload relates to its declared mipmap chain.
// Inconsistent level counts are reported here instead of failing.
type Report struct {
	Header Header `json:"header" yaml:"header"`
	// Levels lists declared levels above zero.
	Levels []LevelInfo `json:"levels,omitempty" yaml:"levels,omitempty"`
	// BasePixels is width*height.
	BasePixels uint64 `json:"base_pixels" yaml:"base_pixels"`
	// DeclaredPixels is the pixel count of the declared chain.
	DeclaredPixels uint64 `json:"declared_pixels" yaml:"declared_pixels"`
	// AvailablePixels is the number of whole pixels present in the payload.
	AvailablePixels uint64 `json:"available_pixels" yaml:"available_pixels"`
	// ExtraPixels is AvailablePixels minus BasePixels; negative when the base level is short.
	ExtraPixels int64 `json:"extra_pixels" yaml:"extra_pixels"`
	// MissingPixels is how many declared pixels are absent.
	MissingPixels uint64 `json:"missing_pixels,omitempty" yaml:"missing_pixels,omitempty"`
	// UnusedBytes is the byte count after the declared chain.
	UnusedBytes int `json:"unused_bytes" yaml:"unused_bytes"`
}

// Consistent reports whether the payload holds exactly the declared chain.
func (r Report) Consistent() bool {
	return r.MissingPixels == 0 && r.UnusedBytes == 0
}

// Inspect reads the header and measures the payload against the declared chain.
func Inspect(b []byte) (Report, error) {
	h, err := ParseHeader(b)
	if err != nil {
		return Report{}, err
	}

	payload := uint64(len(b) - HeaderSize)
	r := Report{
		Header:          h,
		BasePixels:      levelPixels(h.Height, h.Width, 0),
		DeclaredPixels:  TotalPixelCount(h.Height, h.Width, h.MipmapLevels),
		AvailablePixels: payload / pixelSize,
	}

	r.ExtraPixels = clampInt64(r.AvailablePixels) - clampInt64(r.BasePixels)
	if r.AvailablePixels < r.DeclaredPixels {
		r.MissingPixels = r.DeclaredPixels - r.AvailablePixels
		r.UnusedBytes = int(payload % pixelSize)
	} else {
		r.UnusedBytes = int(payload - r.DeclaredPixels*pixelSize) //nolint:gosec // bounded by len(b)
	}

	remaining := r.ExtraPixels
	for n := 1; n < h.LevelCount(); n++ {
		level := uint8(n) //nolint:gosec // LevelCount <= 255
		info := LevelInfo{
			Level:  level,
			Width:  shift(h.Width, level),
			Height: shift(h.Height, level),
			Pixels: levelPixels(h.Height, h.Width, level),
		}

		remaining = subSaturated(remaining, clampInt64(info.Pixels))
		info.Remaining = remaining
		r.Levels = append(r.Levels, info)
	}

	return r, nil
}

// clampInt64 converts v to int64, saturating at math.MaxInt64.
func clampInt64(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}

	return int64(v)
}

// subSaturated returns a-b for b >= 0, saturating at math.MinInt64.
func subSaturated(a, b int64) int64 {
	if a < math.MinInt64+b {
		return math.MinInt64
	}

	return a - b
}
