// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ddpack

package ddpack

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

// ParseMainHeader parses the fixed 12-byte main header.
func ParseMainHeader(b []byte) (MainHeader, error) {
	var h MainHeader
	if len(b) < mainHeaderSize {
		return h, fmt.Errorf("%w: main header needs %d bytes, got %d", ErrIncompleteInput, mainHeaderSize, len(b))
	}

	copy(h.Magic[:], b[:magicSize])
	if h.Magic != Magic {
		return h, fmt.Errorf("%w: % x", ErrMalformedMagic, h.Magic[:])
	}

	h.TOCLength = binary.LittleEndian.Uint32(b[magicSize:mainHeaderSize])
	return h, nil
}

// ParseTOC parses TOC records from b, which starts right after the main header.
// Only the first tocLength bytes are considered; parsing stops at the terminator
// and anything after it inside the window is not validated.
func ParseTOC(b []byte, tocLength uint32) ([]Entry, error) {
	if uint64(len(b)) < uint64(tocLength) {
		return nil, fmt.Errorf("%w: TOC declares %d bytes, got %d", ErrIncompleteInput, tocLength, len(b))
	}

	window := b[:tocLength]
	entries := make([]Entry, 0, estimateEntryCapacity(len(window)))
	off := 0
	for {
		if len(window)-off < terminatorSize {
			return nil, fmt.Errorf("%w: missing terminator at TOC offset %d", ErrTruncatedRecord, off)
		}

		code := binary.LittleEndian.Uint16(window[off:])
		if code == 0 {
			return entries, nil
		}

		entry, n, err := parseRecord(window[off:])
		if err != nil {
			return nil, fmt.Errorf("%w at TOC offset %d", err, off)
		}

		entries = append(entries, entry)
		off += n
	}
}

// parseRecord parses one non-terminator record and returns consumed byte count.
func parseRecord(b []byte) (Entry, int, error) {
	nameEnd := bytes.IndexByte(b[terminatorSize:], 0)
	if nameEnd < 0 {
		return Entry{}, 0, fmt.Errorf("%w: unterminated entry name", ErrTruncatedRecord)
	}

	fieldsAt := terminatorSize + nameEnd + 1
	if len(b)-fieldsAt < 12 {
		return Entry{}, 0, fmt.Errorf("%w: entry %q is missing offset/size/timestamp", ErrTruncatedRecord, b[terminatorSize:terminatorSize+nameEnd])
	}

	fields := b[fieldsAt : fieldsAt+12]
	return Entry{
		Type:      ResolveFileType(binary.LittleEndian.Uint16(b[0:2])),
		Name:      string(b[terminatorSize : terminatorSize+nameEnd]),
		Offset:    binary.LittleEndian.Uint32(fields[0:4]),
		Size:      binary.LittleEndian.Uint32(fields[4:8]),
		Timestamp: binary.LittleEndian.Uint32(fields[8:12]),
	}, fieldsAt + 12, nil
}

// ReadTOC reads the main header and TOC from a stream using length-prefixed framing:
// first exactly 12 header bytes, then exactly TOCLength more bytes.
func ReadTOC(r io.Reader) (MainHeader, []Entry, error) {
	if r == nil {
		return MainHeader{}, nil, ErrNilReader
	}

	buf := make([]byte, mainHeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return MainHeader{}, nil, fmt.Errorf("%w: read main header: %w", ErrIncompleteInput, err)
	}

	h, err := ParseMainHeader(buf)
	if err != nil {
		return MainHeader{}, nil, err
	}

	// The buffer grows with the bytes actually read, not with the declared length.
	var region bytes.Buffer
	region.Write(buf)
	n, err := io.CopyN(&region, r, int64(h.TOCLength))
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}

		return MainHeader{}, nil, fmt.Errorf("%w: read %d of %d TOC bytes: %w", ErrIncompleteInput, n, h.TOCLength, err)
	}

	return ParseArchiveHeader(region.Bytes())
}

// ParseArchiveHeader parses the main header and TOC from a fully buffered header region.
func ParseArchiveHeader(b []byte) (MainHeader, []Entry, error) {
	h, err := ParseMainHeader(b)
	if err != nil {
		return MainHeader{}, nil, err
	}

	entries, err := ParseTOC(b[mainHeaderSize:], h.TOCLength)
	if err != nil {
		return MainHeader{}, nil, err
	}

	return h, entries, nil
}

// TOCLength returns the serialized TOC size (records plus terminator) for entries.
func TOCLength(entries []Entry) uint32 {
	total := uint64(terminatorSize)
	for i := range entries {
		total += recordSize(entries[i].Name)
	}

	if total > maxArchiveOffset {
		return maxArchiveOffset
	}

	return uint32(total) //nolint:gosec // clamped above
}

// recordSize returns serialized size of one TOC record for name.
func recordSize(name string) uint64 {
	return recordFixedSize + uint64(len(name)) + 1
}

// AppendTOC appends main header, TOC records and terminator for entries to dst.
func AppendTOC(dst []byte, entries []Entry) ([]byte, error) {
	total := uint64(terminatorSize)
	for i := range entries {
		if err := validateRecord(entries[i]); err != nil {
			return nil, err
		}

		total += recordSize(entries[i].Name)
	}

	if total > maxArchiveOffset {
		return nil, fmt.Errorf("%w: TOC length %d", ErrSizeOverflow, total)
	}

	dst = append(dst, Magic[:]...)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(total)) //nolint:gosec // bounded above
	for i := range entries {
		e := entries[i]
		dst = binary.LittleEndian.AppendUint16(dst, uint16(e.Type))
		dst = append(dst, e.Name...)
		dst = append(dst, 0)
		dst = binary.LittleEndian.AppendUint32(dst, e.Offset)
		dst = binary.LittleEndian.AppendUint32(dst, e.Size)
		dst = binary.LittleEndian.AppendUint32(dst, e.Timestamp)
	}

	return append(dst, 0, 0), nil
}

// MarshalTOC serializes main header, TOC records and terminator for entries.
func MarshalTOC(entries []Entry) ([]byte, error) {
	size := uint64(mainHeaderSize + terminatorSize)
	for i := range entries {
		size += recordSize(entries[i].Name)
	}

	if size > maxArchiveOffset {
		return nil, fmt.Errorf("%w: TOC length %d", ErrSizeOverflow, size)
	}

	return AppendTOC(make([]byte, 0, size), entries)
}

// WriteTOC writes main header, TOC records and terminator for entries to w.
func WriteTOC(w io.Writer, entries []Entry) (int64, error) {
	if w == nil {
		return 0, ErrNilWriter
	}

	raw, err := MarshalTOC(entries)
	if err != nil {
		return 0, err
	}

	n, err := w.Write(raw)
	if err != nil {
		return int64(n), fmt.Errorf("write TOC: %w", err)
	}

	return int64(n), nil
}

// ValidateLayout checks that entry offsets form a gapless chain starting right after the TOC.
func ValidateLayout(h MainHeader, entries []Entry) error {
	next := uint64(h.DataStart())
	for i := range entries {
		if uint64(entries[i].Offset) != next {
			return fmt.Errorf("%w: entry %d (%s) at %d, want %d",
				ErrInvalidEntryOffset, i, entries[i].Name, entries[i].Offset, next)
		}

		next += uint64(entries[i].Size)
	}

	if next > maxArchiveOffset+1 {
		return fmt.Errorf("%w: payload ends at %d", ErrSizeOverflow, next)
	}

	return nil
}

// validateRecord checks one entry can be serialized unambiguously.
func validateRecord(e Entry) error {
	if e.Type == 0 {
		return fmt.Errorf("%w: entry %q", ErrReservedFileType, e.Name)
	}

	if strings.IndexByte(e.Name, 0) >= 0 {
		return fmt.Errorf("%w: %q contains NUL", ErrInvalidEntryName, e.Name)
	}

	return nil
}

// estimateEntryCapacity returns a conservative initial capacity for parsed entry metadata.
func estimateEntryCapacity(tocBytes int) int {
	const (
		maxCap = 8192
		// typical record: 14 fixed bytes plus a short name
		avgEntryBytes = 32
	)

	estimated := tocBytes / avgEntryBytes
	if estimated > maxCap {
		return maxCap
	}

	return estimated
}
