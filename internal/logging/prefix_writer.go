// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ddpack

package logging

import (
	"bytes"
	"io"
)

// PrefixWriter prepends a prefix to every complete line written through it.
type PrefixWriter struct {
	writer io.Writer
	prefix []byte
	buffer bytes.Buffer
}

// NewPrefixWriter creates a new PrefixWriter.
func NewPrefixWriter(prefix string, w io.Writer) *PrefixWriter {
	return &PrefixWriter{
		prefix: []byte(prefix),
		writer: w,
	}
}

// Write buffers p and flushes every complete line with the prefix.
// A trailing partial line stays buffered until its newline arrives.
func (pw *PrefixWriter) Write(p []byte) (int, error) {
	n := len(p)
	pw.buffer.Write(p)

	for {
		i := bytes.IndexByte(pw.buffer.Bytes(), '\n')
		if i < 0 {
			return n, nil
		}

		line := pw.buffer.Next(i + 1)
		if _, err := pw.writer.Write(append(pw.prefix[:len(pw.prefix):len(pw.prefix)], line...)); err != nil {
			return 0, err
		}
	}
}
