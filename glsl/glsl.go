// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ddpack

// Package glsl encodes and decodes the paired vertex/fragment shader blob
// stored in GLSL archive entries:
//
//	[u32 nameLen][u32 vertLen][u32 fragLen][name][vertex source][fragment source]
//
// All lengths are little-endian byte counts.
package glsl

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// headerSize is three uint32 length prefixes.
const headerSize = 12

var (
	// ErrTruncated means the blob ends before a declared length is satisfied.
	ErrTruncated = errors.New("truncated GLSL record")
	// ErrInvalidText means one of the strings is not valid UTF-8.
	ErrInvalidText = errors.New("GLSL record contains invalid UTF-8")
)

// Pair is a named vertex and fragment shader couple.
type Pair struct {
	Name     string `json:"name" yaml:"name"`
	Vertex   string `json:"vertex" yaml:"vertex"`
	Fragment string `json:"fragment" yaml:"fragment"`
}

// Parse decodes a GLSL blob. Bytes after the fragment source are ignored.
func Parse(b []byte) (Pair, error) {
	if len(b) < headerSize {
		return Pair{}, fmt.Errorf("%w: need %d header bytes, got %d", ErrTruncated, headerSize, len(b))
	}

	var lengths [3]uint64
	for i := range lengths {
		lengths[i] = uint64(binary.LittleEndian.Uint32(b[i*4:]))
	}

	fields := [3]string{}
	labels := [3]string{"name", "vertex", "fragment"}
	off := uint64(headerSize)
	for i, n := range lengths {
		if uint64(len(b))-off < n {
			return Pair{}, fmt.Errorf("%w: %s declares %d bytes at offset %d, %d remain",
				ErrTruncated, labels[i], n, off, uint64(len(b))-off)
		}

		field := b[off : off+n]
		if !utf8.Valid(field) {
			return Pair{}, fmt.Errorf("%w: %s", ErrInvalidText, labels[i])
		}

		fields[i] = string(field)
		off += n
	}

	return Pair{Name: fields[0], Vertex: fields[1], Fragment: fields[2]}, nil
}

// Size returns the serialized blob size.
func (p Pair) Size() int {
	return headerSize + len(p.Name) + len(p.Vertex) + len(p.Fragment)
}

// Marshal encodes p as a GLSL blob.
func Marshal(p Pair) []byte {
	out := make([]byte, 0, p.Size())
	out = binary.LittleEndian.AppendUint32(out, uint32(len(p.Name)))     //nolint:gosec // shader text is far below 4 GiB
	out = binary.LittleEndian.AppendUint32(out, uint32(len(p.Vertex)))   //nolint:gosec // shader text is far below 4 GiB
	out = binary.LittleEndian.AppendUint32(out, uint32(len(p.Fragment))) //nolint:gosec // shader text is far below 4 GiB
	out = append(out, p.Name...)
	out = append(out, p.Vertex...)
	return append(out, p.Fragment...)
}

// WriteTo writes the encoded blob to w.
func (p Pair) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(Marshal(p))
	return int64(n), err
}
