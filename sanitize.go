// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ddpack

package ddpack

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"unicode"
)

// maxSanitizedSegmentLen limits one path segment to common filesystem-safe length.
const maxSanitizedSegmentLen = 240

// reservedDeviceNames contains case-insensitive reserved Windows device names.
var reservedDeviceNames = func() map[string]struct{} {
	names := map[string]struct{}{"con": {}, "prn": {}, "aux": {}, "nul": {}}
	for i := 1; i <= 9; i++ {
		names["com"+strconv.Itoa(i)] = struct{}{}
		names["lpt"+strconv.Itoa(i)] = struct{}{}
	}

	return names
}()

// SanitizeName rewrites an entry or folder marker name into a filesystem-safe
// relative path. Slash separated segments are kept; each segment has unsafe
// characters replaced, trailing dots and spaces trimmed, and reserved device
// names prefixed with "_". Traversal segments become "_".
func SanitizeName(name string) string {
	parts := strings.Split(strings.ReplaceAll(name, `\`, `/`), "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" || part == "." {
			continue
		}

		out = append(out, sanitizeSegment(part))
	}

	if len(out) == 0 {
		return "_"
	}

	return strings.Join(out, "/")
}

// sanitizeSegment sanitizes one path segment.
func sanitizeSegment(segment string) string {
	if segment == ".." {
		return "_"
	}

	var b strings.Builder
	b.Grow(len(segment))
	for _, r := range segment {
		if isUnsafeNameRune(r) {
			b.WriteByte('_')
			continue
		}

		b.WriteRune(r)
	}

	out := strings.TrimRight(b.String(), ". ")
	if out == "" {
		out = "_"
	}

	if isReservedDeviceName(out) {
		out = "_" + out
	}

	return shortenSegment(out, maxSanitizedSegmentLen)
}

// isUnsafeNameRune reports whether r cannot appear in a portable file name.
func isUnsafeNameRune(r rune) bool {
	return unicode.IsControl(r) || unicode.In(r, unicode.Cf) || r == '\uFFFD' ||
		strings.ContainsRune(`<>:"|?*`, r)
}

// isReservedDeviceName reports whether the part before the first dot is a device name.
func isReservedDeviceName(name string) bool {
	base := strings.ToLower(name)
	if dot := strings.IndexByte(base, '.'); dot >= 0 {
		base = base[:dot]
	}

	_, ok := reservedDeviceNames[strings.TrimRight(base, " ")]
	return ok
}

// shortenSegment cuts long segments keeping a hash of the full value as suffix.
func shortenSegment(value string, maxLen int) string {
	if len(value) <= maxLen {
		return value
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(value))
	hashPart := fmt.Sprintf("~%08x", h.Sum32())

	return value[:maxLen-len(hashPart)] + hashPart
}

// uniquePath returns path, or path with "~N" inserted before ext when it was already used.
// Keys are compared case-insensitively.
func uniquePath(used map[string]struct{}, base, ext string) string {
	candidate := base + ext
	for n := 2; ; n++ {
		key := strings.ToLower(candidate)
		if _, exists := used[key]; !exists {
			used[key] = struct{}{}
			return candidate
		}

		candidate = base + "~" + strconv.Itoa(n) + ext
	}
}
