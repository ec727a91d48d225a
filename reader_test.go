// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ddpack

package ddpack

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_InvalidHeader(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.dd")
	if err := os.WriteFile(path, []byte("PK\x03\x04 not an archive"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := Open(path); !errors.Is(err, ErrMalformedMagic) {
		t.Fatalf("expected ErrMalformedMagic, got %v", err)
	}
}

func TestOpen_EmptyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.dd")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := Open(path); !errors.Is(err, ErrIncompleteInput) {
		t.Fatalf("expected ErrIncompleteInput, got %v", err)
	}
}

func TestNewReader_PayloadOutOfBounds(t *testing.T) {
	t.Parallel()

	raw := buildArchive(t, rawEntry{name: "intro", fileType: WavAudio, payload: []byte("abcdef")})
	truncated := raw[:len(raw)-2]

	if _, err := NewReader(bytes.NewReader(truncated), int64(len(truncated))); !errors.Is(err, ErrInvalidEntryOffset) {
		t.Fatalf("expected ErrInvalidEntryOffset, got %v", err)
	}

	if _, err := NewReader(nil, 0); !errors.Is(err, ErrNilReader) {
		t.Fatalf("expected ErrNilReader, got %v", err)
	}
}

func TestReaderReadEntries(t *testing.T) {
	t.Parallel()

	raw := buildArchive(t,
		rawEntry{name: "music", fileType: WavAudio, payload: []byte("wave data")},
		rawEntry{name: "music", fileType: ShaderText, payload: []byte("cfg")},
		rawEntry{name: "empty", fileType: Texture2},
	)
	r := openArchiveBytes(t, raw)

	if r.Size() != int64(len(raw)) {
		t.Fatalf("Size=%d, want %d", r.Size(), len(raw))
	}
	if r.Header().TOCLength != TOCLength(r.Entries()) {
		t.Fatalf("header TOCLength=%d", r.Header().TOCLength)
	}

	e, ok := r.FindEntry("music", ShaderText)
	if !ok {
		t.Fatal("FindEntry(music, shadercfg) not found")
	}
	data, err := r.ReadEntry(e)
	if err != nil {
		t.Fatalf("ReadEntry: %v", err)
	}
	if string(data) != "cfg" {
		t.Fatalf("ReadEntry=%q, want cfg", data)
	}

	byName, err := r.ReadEntryByName("music")
	if err != nil {
		t.Fatalf("ReadEntryByName: %v", err)
	}
	if string(byName) != "wave data" {
		t.Fatalf("ReadEntryByName=%q, want first stored entry", byName)
	}

	empty, ok := r.FindEntry("empty", Texture2)
	if !ok {
		t.Fatal("FindEntry(empty) not found")
	}
	rc, err := r.OpenEntry(empty)
	if err != nil {
		t.Fatalf("OpenEntry: %v", err)
	}
	got, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil || len(got) != 0 {
		t.Fatalf("OpenEntry(empty) read %d bytes, err=%v", len(got), err)
	}

	if _, ok := r.FindEntry("music", GLSL); ok {
		t.Fatal("FindEntry must match type")
	}
}

func TestReaderEntriesReturnsCopy(t *testing.T) {
	t.Parallel()

	r := openArchiveBytes(t, buildArchive(t, rawEntry{name: "a", fileType: WavAudio, payload: []byte{1}}))

	entries := r.Entries()
	entries[0].Name = "changed"
	if r.Entries()[0].Name != "a" {
		t.Fatal("Entries must return a copy")
	}
}

func TestReadEntry_NotFound(t *testing.T) {
	t.Parallel()

	r := openArchiveBytes(t, buildArchive(t))
	if _, err := r.ReadEntryByName("missing"); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestReaderClose(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeArchiveFile(t, dir, buildArchive(t, rawEntry{name: "a", fileType: WavAudio, payload: []byte("x")}))

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	e := r.Entries()[0]
	if _, err := r.ReadEntry(e); !errors.Is(err, ErrClosed) {
		t.Fatalf("ReadEntry after close: expected ErrClosed, got %v", err)
	}
	if _, err := r.OpenEntry(e); !errors.Is(err, ErrClosed) {
		t.Fatalf("OpenEntry after close: expected ErrClosed, got %v", err)
	}
	if err := r.Extract(t.Context(), filepath.Join(dir, "out"), ExtractOptions{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("Extract after close: expected ErrClosed, got %v", err)
	}
}

func TestListEntries_MatchesOpenEntries(t *testing.T) {
	t.Parallel()

	path := writeArchiveFile(t, t.TempDir(), buildArchive(t,
		rawEntry{name: "b", fileType: FolderMarker},
		rawEntry{name: "x", fileType: WavAudio, payload: []byte("xx"), timestamp: 10},
	))

	listed, err := ListEntries(path)
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = r.Close() }()

	opened := r.Entries()
	if len(listed) != len(opened) {
		t.Fatalf("ListEntries=%d entries, Open=%d", len(listed), len(opened))
	}
	for i := range listed {
		if listed[i] != opened[i] {
			t.Fatalf("entry %d: listed %+v, opened %+v", i, listed[i], opened[i])
		}
	}
}
