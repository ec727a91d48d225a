// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ddpack

package tex2

import "errors"

// Sentinel errors for texture operations. Use errors.Is in callers.
var (
	// ErrBadTextureMagic means data does not start with the 0x11 0x40 signature.
	ErrBadTextureMagic = errors.New("invalid tex2 texture: bad magic")
	// ErrIncompleteInput means data is shorter than the header or declared pixel chain.
	ErrIncompleteInput = errors.New("incomplete tex2 input")
	// ErrUnsupportedMipmapLevel means a level above zero was requested for
	// non-power-of-two dimensions, or the level has no pixels.
	ErrUnsupportedMipmapLevel = errors.New("unsupported mipmap level")
	// ErrSizeOverflow means dimensions produce a pixel chain beyond uint32 addressing.
	ErrSizeOverflow = errors.New("texture size exceeds uint32 limit")
)
