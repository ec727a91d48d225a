// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ddpack

package tex2

import (
	"fmt"
	"image/png"
	"io"
)

// EncodePNG writes the selected level of img as PNG.
func EncodePNG(w io.Writer, img *Image) error {
	if err := png.Encode(w, img.NRGBA()); err != nil {
		return fmt.Errorf("encode PNG: %w", err)
	}

	return nil
}

// DecodePNG reads a PNG into a base-level texture.
func DecodePNG(r io.Reader) (*Image, error) {
	src, err := png.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode PNG: %w", err)
	}

	return FromImage(src), nil
}
