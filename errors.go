// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ddpack

package ddpack

import "errors"

// Sentinel errors for archive operations. Use errors.Is in callers.
var (
	// ErrMalformedMagic means the archive does not start with the ":hx:rg:" signature.
	ErrMalformedMagic = errors.New("invalid archive: malformed magic")
	// ErrIncompleteInput means the source supplied fewer bytes than the header declares.
	ErrIncompleteInput = errors.New("incomplete input")
	// ErrTruncatedRecord means a TOC record ends before all of its fields are present.
	ErrTruncatedRecord = errors.New("truncated TOC record")
	// ErrUnresolvedFileType means a source file extension has no archive file type.
	ErrUnresolvedFileType = errors.New("cannot determine file type")
	// ErrSizeRaceDetected means a source changed size between listing and writing.
	ErrSizeRaceDetected = errors.New("source size changed while packing")
	// ErrInvalidEntryName means an entry name is empty or contains a NUL byte.
	ErrInvalidEntryName = errors.New("invalid entry name")
	// ErrReservedFileType means type code 0 was used, which collides with the TOC terminator.
	ErrReservedFileType = errors.New("file type 0x0 is reserved for TOC terminator")
	// ErrDuplicateEntryName means two inputs share the same name and file type.
	ErrDuplicateEntryName = errors.New("duplicate entry name")
	// ErrInvalidEntryOffset means an entry payload lies outside the archive or breaks the offset chain.
	ErrInvalidEntryOffset = errors.New("invalid entry offset")
	// ErrSizeOverflow means the size exceeds the uint32 archive limit.
	ErrSizeOverflow = errors.New("size exceeds uint32 archive limit")
	// ErrNilReader means the reader is nil.
	ErrNilReader = errors.New("reader is nil")
	// ErrNilWriter means the writer is nil.
	ErrNilWriter = errors.New("writer is nil")
	// ErrEntryNotFound means the entry is not found.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrClosed means the reader is already closed.
	ErrClosed = errors.New("reader already closed")
	// ErrInvalidSourceRules means one or more source selection rules are invalid.
	ErrInvalidSourceRules = errors.New("invalid source rules")
	// ErrInvalidExtractPath means an entry or folder name is unsafe for the extraction destination.
	ErrInvalidExtractPath = errors.New("invalid extract path")
)
