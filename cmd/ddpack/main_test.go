// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ddpack

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/woozymasta/pathrules"

	"github.com/woozymasta/ddpack"
	"github.com/woozymasta/ddpack/internal/logging"
	"github.com/woozymasta/ddpack/tex2"
)

func TestPackOptionsRules(t *testing.T) {
	t.Parallel()

	opts := packOptions(packFlags{
		include:  []string{"*.wav"},
		exclude:  []string{"tmp*"},
		zeroTime: true,
	})

	if !opts.ZeroTime {
		t.Fatal("expected ZeroTime")
	}
	if len(opts.Rules) != 2 {
		t.Fatalf("len(Rules)=%d, want 2", len(opts.Rules))
	}
	if opts.Rules[1].Action != pathrules.ActionExclude {
		t.Fatalf("exclude rule must come last, got %+v", opts.Rules)
	}
	if opts.RuleOptions.DefaultAction != pathrules.ActionExclude {
		t.Fatal("include rules must switch default action to exclude")
	}

	if got := packOptions(packFlags{}).RuleOptions.DefaultAction; got != pathrules.ActionInclude {
		t.Fatalf("default action without includes=%v, want include", got)
	}
}

func TestUnpackOptions(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		flags       unpackFlags
		wantOrder   ddpack.ExtractOrder
		wantFolders ddpack.FolderPolicy
	}{
		{name: "default", wantOrder: ddpack.OrderReversed, wantFolders: ddpack.FolderTree},
		{name: "no folders", flags: unpackFlags{noFolders: true}, wantOrder: ddpack.OrderStored, wantFolders: ddpack.FolderFlatten},
		{name: "markers", flags: unpackFlags{folderMarkers: true}, wantOrder: ddpack.OrderReversed, wantFolders: ddpack.FolderPreserve},
		{name: "nested", flags: unpackFlags{nested: true}, wantOrder: ddpack.OrderReversed, wantFolders: ddpack.FolderNested},
		{name: "stored order", flags: unpackFlags{storedOrder: true}, wantOrder: ddpack.OrderStored, wantFolders: ddpack.FolderTree},
	}

	if !unpackOptions(unpackFlags{sanitize: true}).SanitizeNames {
		t.Fatal("--sanitize must enable SanitizeNames")
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			opts := unpackOptions(tc.flags)
			if opts.Order != tc.wantOrder || opts.Folders != tc.wantFolders {
				t.Fatalf("got order=%s folders=%s, want %s/%s", opts.Order, opts.Folders, tc.wantOrder, tc.wantFolders)
			}
		})
	}
}

func TestPrintInfo(t *testing.T) {
	t.Parallel()

	entries := []ddpack.Entry{
		{Name: "intro", Type: ddpack.WavAudio, Size: 1024 * 1024, Timestamp: 86400},
	}
	header := ddpack.MainHeader{Magic: ddpack.Magic, TOCLength: ddpack.TOCLength(entries)}
	entries[0].Offset = header.DataStart()

	var plain bytes.Buffer
	if err := printInfo(&plain, header, entries, infoFlags{}); err != nil {
		t.Fatalf("printInfo: %v", err)
	}
	if got, want := plain.String(), "1 file\nintro: 1.000 MB\n"; got != want {
		t.Fatalf("plain output=%q, want %q", got, want)
	}

	var verbose bytes.Buffer
	if err := printInfo(&verbose, header, entries, infoFlags{verbose: true, extensions: true}); err != nil {
		t.Fatalf("printInfo: %v", err)
	}
	for _, want := range []string{"## HEADER", "layout: ok", "1970-01-02T00:00:00Z", "intro.wav"} {
		if !strings.Contains(verbose.String(), want) {
			t.Fatalf("verbose output missing %q:\n%s", want, verbose.String())
		}
	}
}

func TestEntryFilterFlags(t *testing.T) {
	t.Parallel()

	f, err := entryFilter(infoFlags{typeNames: []string{"wav", ".dd_tex2"}, minSize: 10})
	if err != nil {
		t.Fatalf("entryFilter: %v", err)
	}
	if len(f.Types) != 2 || f.Types[0] != ddpack.WavAudio || f.Types[1] != ddpack.Texture2 || f.MinSize != 10 {
		t.Fatalf("filter=%+v", f)
	}

	if _, err := entryFilter(infoFlags{typeNames: []string{"png"}}); !errors.Is(err, ddpack.ErrUnresolvedFileType) {
		t.Fatalf("expected ErrUnresolvedFileType, got %v", err)
	}
}

func TestPNGPath(t *testing.T) {
	t.Parallel()

	if got := pngPath(filepath.Join("a", "b.dd_tex2")); got != filepath.Join("a", "b.png") {
		t.Fatalf("pngPath=%q", got)
	}
	if got := pngPath("noext"); got != "noext.png" {
		t.Fatalf("pngPath=%q", got)
	}
}

func TestConvertAndInspectTexture(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "sky.dd_tex2")

	raw := tex2.AppendHeader(nil, tex2.Header{Height: 2, Width: 2})
	for i := range 6 {
		raw = append(raw, byte(i), 0, 0, 0xFF)
	}
	if err := os.WriteFile(src, raw, 0o600); err != nil {
		t.Fatalf("write texture: %v", err)
	}

	dst := pngPath(src)
	if err := convertTexture(src, dst, 0); err != nil {
		t.Fatalf("convertTexture: %v", err)
	}
	f, err := os.Open(dst)
	if err != nil {
		t.Fatalf("open png: %v", err)
	}
	defer func() { _ = f.Close() }()
	img, err := tex2.DecodePNG(f)
	if err != nil {
		t.Fatalf("DecodePNG: %v", err)
	}
	if img.Width != 2 || img.Height != 2 {
		t.Fatalf("png size %dx%d, want 2x2", img.Width, img.Height)
	}

	var out bytes.Buffer
	if err := inspectTexture(&out, src); err != nil {
		t.Fatalf("inspectTexture: %v", err)
	}
	if !strings.Contains(out.String(), "2x2 (4), levels 0X0, extra pixels: 2, unused: 8") {
		t.Fatalf("unexpected report %q", out.String())
	}
}

func TestStageEdits(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	archivePath := filepath.Join(dir, "data.dd")
	src := filepath.Join(dir, "src")
	if err := os.MkdirAll(src, 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for name, data := range map[string]string{"intro.wav": "old", "outro.wav": "bye"} {
		if err := os.WriteFile(filepath.Join(src, name), []byte(data), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if _, err := ddpack.PackDir(context.Background(), archivePath, src, ddpack.PackOptions{}); err != nil {
		t.Fatalf("PackDir: %v", err)
	}

	if _, err := stageEdits(archivePath, editFlags{}); err == nil {
		t.Fatal("expected error without operations")
	}

	upd := filepath.Join(dir, "upd")
	if err := os.MkdirAll(upd, 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	replacement := filepath.Join(upd, "intro.wav")
	added := filepath.Join(upd, "fog.shadercfg")
	if err := os.WriteFile(replacement, []byte("new"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(added, []byte("fog=1"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	editor, err := stageEdits(archivePath, editFlags{
		add:     []string{added},
		replace: []string{replacement},
		remove:  []string{"outro.wav"},
	})
	if err != nil {
		t.Fatalf("stageEdits: %v", err)
	}
	if _, err := editor.Commit(context.Background()); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	r, err := ddpack.Open(archivePath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = r.Close() }()

	names := make([]string, 0, 2)
	for _, e := range r.Entries() {
		names = append(names, e.FileName())
	}
	if strings.Join(names, ",") != "fog.shadercfg,intro.wav" {
		t.Fatalf("entries=%v", names)
	}

	data, err := r.ReadEntryByName("intro")
	if err != nil {
		t.Fatalf("ReadEntryByName: %v", err)
	}
	if string(data) != "new" {
		t.Fatalf("intro=%q, want new", data)
	}

	if _, err := stageEdits(archivePath, editFlags{remove: []string{"notes.txt"}}); !errors.Is(err, ddpack.ErrUnresolvedFileType) {
		t.Fatalf("expected ErrUnresolvedFileType, got %v", err)
	}
}

func TestNewCommandLoggerUsesPrefix(t *testing.T) {
	t.Setenv(logging.EnvJSONLog, "")
	t.Setenv(logging.EnvLogPrefix, "~ ")

	var out bytes.Buffer
	log := newCommandLogger("debug", &out)
	log.Debug("packed", "entries", 2)

	if got := out.String(); !strings.HasPrefix(got, "~ ") || !strings.Contains(got, "entries=2") {
		t.Fatalf("unexpected log output %q", got)
	}
}
