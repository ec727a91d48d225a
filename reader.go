// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ddpack

package ddpack

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Reader provides read-only access to a parsed archive.
type Reader struct {
	// ra is the underlying random-access reader used for payload reads.
	ra io.ReaderAt
	// file is set when Reader owns an *os.File opened via Open.
	file *os.File
	// entries stores parsed entry metadata in stored order.
	entries []Entry
	// header is the parsed main header.
	header MainHeader
	// size is total source size in bytes.
	size int64
	// mu guards closed state and close operation.
	mu sync.Mutex
	// closed reports whether Close was already called.
	closed bool
}

// Open opens an archive file by path and parses its header and TOC.
func Open(path string) (*Reader, error) {
	f, size, err := openFileWithSize(path)
	if err != nil {
		return nil, err
	}

	r, err := NewReader(f, size)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	r.file = f
	return r, nil
}

// NewReader parses an archive from existing ReaderAt and known size.
func NewReader(ra io.ReaderAt, size int64) (*Reader, error) {
	if ra == nil {
		return nil, ErrNilReader
	}

	if err := checkDeclaredTOC(ra, size); err != nil {
		return nil, err
	}

	header, entries, err := ReadTOC(io.NewSectionReader(ra, 0, size))
	if err != nil {
		return nil, err
	}

	if err := validatePayloadBounds(entries, size); err != nil {
		return nil, err
	}

	return &Reader{
		ra:      ra,
		header:  header,
		entries: entries,
		size:    size,
	}, nil
}

// checkDeclaredTOC rejects sources shorter than the header plus the declared TOC length.
// Shorter or malformed headers are left to ReadTOC for the precise error.
func checkDeclaredTOC(ra io.ReaderAt, size int64) error {
	if size < mainHeaderSize {
		return nil
	}

	var raw [mainHeaderSize]byte
	if _, err := ra.ReadAt(raw[:], 0); err != nil {
		return nil //nolint:nilerr // ReadTOC reports header read errors
	}

	h, err := ParseMainHeader(raw[:])
	if err != nil {
		return nil //nolint:nilerr // ReadTOC reports malformed headers
	}

	if end := int64(mainHeaderSize) + int64(h.TOCLength); end > size {
		return fmt.Errorf("%w: TOC ends at byte %d, source has %d", ErrIncompleteInput, end, size)
	}

	return nil
}

// Header returns the parsed main header.
func (r *Reader) Header() MainHeader {
	if r == nil {
		return MainHeader{}
	}

	return r.header
}

// Entries returns a copy of parsed entries in stored order.
func (r *Reader) Entries() []Entry {
	if r == nil {
		return nil
	}

	entries := make([]Entry, len(r.entries))
	copy(entries, r.entries)
	return entries
}

// Size returns total archive size in bytes.
func (r *Reader) Size() int64 {
	if r == nil {
		return 0
	}

	return r.size
}

// Close closes the underlying file if reader owns one.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}

	r.closed = true
	if r.file != nil {
		return r.file.Close()
	}

	return nil
}

// isClosed reports closed state under lock.
func (r *Reader) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.closed
}

// validatePayloadBounds checks that every entry payload lies within the source.
func validatePayloadBounds(entries []Entry, size int64) error {
	for i := range entries {
		end := int64(entries[i].Offset) + int64(entries[i].Size)
		if end > size {
			return fmt.Errorf("%w: entry %s payload [%d,%d) exceeds archive size %d",
				ErrInvalidEntryOffset, entries[i].Name, entries[i].Offset, end, size)
		}
	}

	return nil
}
