// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ddpack

package ddpack

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/woozymasta/ddpack/glsl"
)

// folderArchive stores two folders the way the game tools do: each marker
// follows its files in stored order, so reversed traversal is a, y, b, x.
func folderArchive(t *testing.T) *Reader {
	t.Helper()

	return openArchiveBytes(t, buildArchive(t,
		rawEntry{name: "x", fileType: WavAudio, payload: []byte("X")},
		rawEntry{name: "b", fileType: FolderMarker},
		rawEntry{name: "y", fileType: WavAudio, payload: []byte("Y")},
		rawEntry{name: "a", fileType: FolderMarker},
	))
}

// listFiles returns slash-separated relative paths of regular files under root.
func listFiles(t *testing.T, root string) []string {
	t.Helper()

	var out []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.Type().IsRegular() {
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				return relErr
			}

			out = append(out, filepath.ToSlash(rel))
		}

		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}

	sort.Strings(out)
	return out
}

// assertFiles compares extracted file set with want.
func assertFiles(t *testing.T, root string, want ...string) {
	t.Helper()

	got := listFiles(t, root)
	sort.Strings(want)
	if len(got) != len(want) {
		t.Fatalf("files=%v, want %v", got, want)
	}

	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("files=%v, want %v", got, want)
		}
	}
}

// readFile reads one extracted file.
func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}

	return string(data)
}

func TestExtract_FolderPolicies(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		opts ExtractOptions
		want []string
	}{
		{
			name: "tree replaces folder",
			opts: ExtractOptions{},
			want: []string{"a/y.wav", "b/x.wav"},
		},
		{
			name: "nested pushes folder",
			opts: ExtractOptions{Folders: FolderNested},
			want: []string{"a/y.wav", "a/b/x.wav"},
		},
		{
			name: "flatten ignores markers",
			opts: ExtractOptions{Folders: FolderFlatten, Order: OrderStored},
			want: []string{"x.wav", "y.wav"},
		},
		{
			name: "preserve writes marker files",
			opts: ExtractOptions{Folders: FolderPreserve},
			want: []string{"a.foldermarker", "b.foldermarker", "x.wav", "y.wav"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out := t.TempDir()
			if err := folderArchive(t).Extract(context.Background(), out, tc.opts); err != nil {
				t.Fatalf("Extract: %v", err)
			}

			assertFiles(t, out, tc.want...)
		})
	}
}

func TestExtract_TreeContents(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	if err := folderArchive(t).Extract(context.Background(), out, ExtractOptions{}); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if got := readFile(t, filepath.Join(out, "a", "y.wav")); got != "Y" {
		t.Fatalf("a/y.wav=%q", got)
	}
	if got := readFile(t, filepath.Join(out, "b", "x.wav")); got != "X" {
		t.Fatalf("b/x.wav=%q", got)
	}
}

func TestExtract_FilesBeforeFirstMarkerGoToRoot(t *testing.T) {
	t.Parallel()

	r := openArchiveBytes(t, buildArchive(t,
		rawEntry{name: "inner", fileType: ShaderText, payload: []byte("i")},
		rawEntry{name: "sub", fileType: FolderMarker},
		rawEntry{name: "top", fileType: ShaderText, payload: []byte("t")},
	))

	out := t.TempDir()
	if err := r.Extract(context.Background(), out, ExtractOptions{}); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	assertFiles(t, out, "top.shadercfg", "sub/inner.shadercfg")
}

func TestExtract_GLSL(t *testing.T) {
	t.Parallel()

	pair := glsl.Marshal(glsl.Pair{Name: "other", Vertex: "void main(){}", Fragment: "out vec4 c;"})
	raw := buildArchive(t,
		rawEntry{name: "water", fileType: GLSL, payload: pair},
		rawEntry{name: "broken", fileType: GLSL, payload: []byte{1, 2, 3}},
	)

	t.Run("split", func(t *testing.T) {
		t.Parallel()

		out := t.TempDir()
		var outputs []string
		opts := ExtractOptions{
			OnEntryDone: func(_ Entry, _ int64, paths []string) {
				outputs = append(outputs, paths...)
			},
		}
		if err := openArchiveBytes(t, raw).Extract(context.Background(), out, opts); err != nil {
			t.Fatalf("Extract: %v", err)
		}

		assertFiles(t, out, "water.vert", "water.frag", "broken.dd_glsl")
		if got := readFile(t, filepath.Join(out, "water.vert")); got != "void main(){}" {
			t.Fatalf("water.vert=%q", got)
		}
		if got := readFile(t, filepath.Join(out, "water.frag")); got != "out vec4 c;" {
			t.Fatalf("water.frag=%q", got)
		}
		if got := readFile(t, filepath.Join(out, "broken.dd_glsl")); got != "\x01\x02\x03" {
			t.Fatalf("malformed GLSL must be saved raw, got %q", got)
		}
		if len(outputs) != 3 {
			t.Fatalf("OnEntryDone outputs=%v", outputs)
		}
	})

	t.Run("preserve", func(t *testing.T) {
		t.Parallel()

		out := t.TempDir()
		if err := openArchiveBytes(t, raw).Extract(context.Background(), out, ExtractOptions{PreserveGLSL: true}); err != nil {
			t.Fatalf("Extract: %v", err)
		}

		assertFiles(t, out, "water.dd_glsl", "broken.dd_glsl")
		if got := readFile(t, filepath.Join(out, "water.dd_glsl")); got != string(pair) {
			t.Fatal("preserved GLSL differs from payload")
		}
	})
}

func TestExtract_UnknownTypeExtension(t *testing.T) {
	t.Parallel()

	r := openArchiveBytes(t, buildArchive(t, rawEntry{name: "blob", fileType: FileType(0x1F), payload: []byte("?")}))

	out := t.TempDir()
	if err := r.Extract(context.Background(), out, ExtractOptions{}); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	assertFiles(t, out, "blob.dd_0x1F")
}

func TestExtract_ModTimes(t *testing.T) {
	t.Parallel()

	const ts = 1400000000
	raw := buildArchive(t,
		rawEntry{name: "stamped", fileType: WavAudio, payload: []byte("s"), timestamp: ts},
		rawEntry{name: "unstamped", fileType: WavAudio, payload: []byte("u")},
	)

	out := t.TempDir()
	before := time.Now().Add(-time.Minute)
	if err := openArchiveBytes(t, raw).Extract(context.Background(), out, ExtractOptions{}); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	info, err := os.Stat(filepath.Join(out, "stamped.wav"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !info.ModTime().Equal(time.Unix(ts, 0)) {
		t.Fatalf("mtime=%v, want %v", info.ModTime(), time.Unix(ts, 0))
	}

	info, err = os.Stat(filepath.Join(out, "unstamped.wav"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.ModTime().Before(before) {
		t.Fatalf("timestamp 0 must leave mtime unset, got %v", info.ModTime())
	}

	skipped := t.TempDir()
	if err := openArchiveBytes(t, raw).Extract(context.Background(), skipped, ExtractOptions{SkipModTimes: true}); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	info, err = os.Stat(filepath.Join(skipped, "stamped.wav"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.ModTime().Before(before) {
		t.Fatalf("SkipModTimes applied stored time %v", info.ModTime())
	}
}

func TestExtract_RejectsUnsafeNames(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		entry rawEntry
	}{
		{name: "file traversal", entry: rawEntry{name: "../evil", fileType: WavAudio, payload: []byte("x")}},
		{name: "marker traversal", entry: rawEntry{name: "../../up", fileType: FolderMarker}},
		{name: "absolute", entry: rawEntry{name: "/etc/evil", fileType: ShaderText}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			parent := t.TempDir()
			out := filepath.Join(parent, "out")
			r := openArchiveBytes(t, buildArchive(t, tc.entry))
			if err := r.Extract(context.Background(), out, ExtractOptions{}); !errors.Is(err, ErrInvalidExtractPath) {
				t.Fatalf("expected ErrInvalidExtractPath, got %v", err)
			}

			assertFiles(t, parent)
		})
	}
}

func TestExtract_SanitizeNames(t *testing.T) {
	t.Parallel()

	r := openArchiveBytes(t, buildArchive(t,
		rawEntry{name: "con", fileType: WavAudio, payload: []byte("1")},
		rawEntry{name: "a?b", fileType: WavAudio, payload: []byte("2")},
		rawEntry{name: "a*b", fileType: WavAudio, payload: []byte("3")},
		rawEntry{name: "../up", fileType: FolderMarker},
	))

	out := t.TempDir()
	if err := r.Extract(context.Background(), out, ExtractOptions{SanitizeNames: true}); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	assertFiles(t, out, "_/up/_con.wav", "_/up/a_b.wav", "_/up/a_b~2.wav")
	if got := readFile(t, filepath.Join(out, "_", "up", "a_b.wav")); got != "3" {
		t.Fatalf("first written a_b.wav=%q, want payload of a*b (reversed order)", got)
	}
}

func TestExtract_FileModes(t *testing.T) {
	t.Parallel()

	raw := buildArchive(t, rawEntry{name: "intro", fileType: WavAudio, payload: []byte("new")})

	out := t.TempDir()
	target := filepath.Join(out, "intro.wav")
	if err := os.WriteFile(target, []byte("old content"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	err := openArchiveBytes(t, raw).Extract(context.Background(), out, ExtractOptions{FileMode: ExtractFileModeCreateOnly})
	if !errors.Is(err, os.ErrExist) {
		t.Fatalf("create_only: expected os.ErrExist, got %v", err)
	}

	if err := openArchiveBytes(t, raw).Extract(context.Background(), out, ExtractOptions{}); err != nil {
		t.Fatalf("auto: %v", err)
	}
	if got := readFile(t, target); got != "new" {
		t.Fatalf("auto mode must truncate, got %q", got)
	}

	if err := openArchiveBytes(t, raw).Extract(context.Background(), out, ExtractOptions{FileMode: "bogus"}); err == nil {
		t.Fatal("expected error for unknown file mode")
	}
}

func TestExtract_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := t.TempDir()
	if err := folderArchive(t).Extract(ctx, out, ExtractOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	assertFiles(t, out)
}

func TestExtractFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeArchiveFile(t, dir, buildArchive(t, rawEntry{name: "intro", fileType: WavAudio, payload: []byte("x")}))

	out := filepath.Join(dir, "out")
	if err := ExtractFile(context.Background(), path, out, ExtractOptions{}); err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}

	assertFiles(t, out, "intro.wav")
}

func TestExtract_NilContext(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	//nolint:staticcheck // nil context is tolerated
	if err := folderArchive(t).Extract(nil, out, ExtractOptions{}); err != nil {
		t.Fatalf("Extract(nil ctx): %v", err)
	}

	assertFiles(t, out, "a/y.wav", "b/x.wav")
}
