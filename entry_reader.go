// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ddpack

package ddpack

import (
	"fmt"
	"io"
)

// FindEntry returns the first entry with name and type.
func (r *Reader) FindEntry(name string, t FileType) (Entry, bool) {
	if r == nil {
		return Entry{}, false
	}

	for i := range r.entries {
		if r.entries[i].Name == name && r.entries[i].Type == t {
			return r.entries[i], true
		}
	}

	return Entry{}, false
}

// OpenEntry opens a payload stream for entry metadata.
func (r *Reader) OpenEntry(e Entry) (io.ReadCloser, error) {
	if r == nil || r.ra == nil {
		return nil, ErrNilReader
	}

	if r.isClosed() {
		return nil, ErrClosed
	}

	return io.NopCloser(io.NewSectionReader(r.ra, int64(e.Offset), int64(e.Size))), nil
}

// ReadEntry reads the full payload of entry.
func (r *Reader) ReadEntry(e Entry) ([]byte, error) {
	if r == nil || r.ra == nil {
		return nil, ErrNilReader
	}

	if r.isClosed() {
		return nil, ErrClosed
	}

	buf := make([]byte, e.Size)
	n, err := r.ra.ReadAt(buf, int64(e.Offset))
	if n != len(buf) {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}

		return nil, fmt.Errorf("read entry %s at %d: %w", e.Name, e.Offset, err)
	}

	return buf, nil
}

// ReadEntryByName reads the payload of the first entry named name regardless of type.
func (r *Reader) ReadEntryByName(name string) ([]byte, error) {
	if r == nil {
		return nil, ErrNilReader
	}

	for i := range r.entries {
		if r.entries[i].Name == name {
			return r.ReadEntry(r.entries[i])
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
}
