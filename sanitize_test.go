// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ddpack

package ddpack

import (
	"strings"
	"testing"
)

func TestSanitizeName(t *testing.T) {
	t.Parallel()

	longName := strings.Repeat("a", 400)
	gotLong := SanitizeName(longName)
	if len(gotLong) > maxSanitizedSegmentLen {
		t.Fatalf("len(long)=%d, want <= %d", len(gotLong), maxSanitizedSegmentLen)
	}
	if gotLong == longName {
		t.Fatal("long segment was not shortened")
	}
	if SanitizeName(longName) != gotLong {
		t.Fatal("shortened segment is not stable")
	}

	testCases := []struct {
		in   string
		want string
	}{
		{in: "intro", want: "intro"},
		{in: "CON", want: "_CON"},
		{in: "con.old", want: "_con.old"},
		{in: "  COM8  ", want: "_COM8"},
		{in: "LPT1 ", want: "_LPT1"},
		{in: "COM10", want: "COM10"},
		{in: "a:b?", want: "a_b_"},
		{in: `x<y>"z"|w*`, want: "x_y__z__w_"},
		{in: "name. ", want: "name"},
		{in: "...", want: "_"},
		{in: "a\x1b[31m", want: "a_[31m"},
		{in: "name\u009b0m", want: "name_0m"},
		{in: "a\x7fb", want: "a_b"},
		{in: "a\u200fb", want: "a_b"},
		{in: "bad\uFFFDrune", want: "bad_rune"},
		{in: "", want: "_"},
		{in: `\\\\\:\`, want: "_"},
		{in: `..\evil`, want: "_/evil"},
		{in: "../../etc/passwd", want: "_/_/etc/passwd"},
		{in: "./shaders/./water", want: "shaders/water"},
		{in: `sounds\ambient\COM8`, want: "sounds/ambient/_COM8"},
	}

	for _, tc := range testCases {
		if got := SanitizeName(tc.in); got != tc.want {
			t.Fatalf("SanitizeName(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeNameIsExtractSafe(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"../x", "/abs", `C:\win`, "..", "a/../../b", "\x00"} {
		sanitized := SanitizeName(name)
		if _, err := normalizeExtractSegment(sanitized); err != nil {
			t.Fatalf("SanitizeName(%q)=%q rejected by extractor: %v", name, sanitized, err)
		}
	}
}

func TestIsReservedDeviceName(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		want bool
	}{
		{name: "con", want: true},
		{name: "con.wav", want: true},
		{name: "CON ", want: true},
		{name: "nul", want: true},
		{name: "lpt9", want: true},
		{name: "com0", want: false},
		{name: "normal", want: false},
		{name: "_con", want: false},
		{name: "console", want: false},
	}

	for _, tc := range testCases {
		if got := isReservedDeviceName(tc.name); got != tc.want {
			t.Fatalf("isReservedDeviceName(%q)=%v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestUniquePath(t *testing.T) {
	t.Parallel()

	used := make(map[string]struct{})

	testCases := []struct {
		base string
		ext  string
		want string
	}{
		{base: "a_b", ext: ".wav", want: "a_b.wav"},
		{base: "a_b", ext: ".wav", want: "a_b~2.wav"},
		{base: "A_B", ext: ".wav", want: "A_B~3.wav"},
		{base: "a_b", ext: ".shadercfg", want: "a_b.shadercfg"},
		{base: "a_b~2", ext: ".wav", want: "a_b~2~2.wav"},
	}

	for _, tc := range testCases {
		if got := uniquePath(used, tc.base, tc.ext); got != tc.want {
			t.Fatalf("uniquePath(%q, %q)=%q, want %q", tc.base, tc.ext, got, tc.want)
		}
	}
}
