// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ddpack

package ddpack

import (
	"fmt"
	"path/filepath"
	"strings"
)

// EntryNameFromPath derives the stored entry name and file type from a source file path.
// The name is the base name with its last extension removed.
func EntryNameFromPath(sourcePath string) (string, FileType, error) {
	base := filepath.Base(sourcePath)
	ext := filepath.Ext(base)
	if ext == "" || ext == base {
		return "", 0, fmt.Errorf("%w: %s has no extension (known: %s)",
			ErrUnresolvedFileType, sourcePath, strings.Join(knownExtensions(), ", "))
	}

	t, ok := FileTypeFromExtension(ext)
	if !ok {
		return "", 0, fmt.Errorf("%w: %s has unrecognized extension %q", ErrUnresolvedFileType, sourcePath, ext)
	}

	return strings.TrimSuffix(base, ext), t, nil
}

// validateEntryName checks a name can be stored as a NUL-terminated TOC string.
func validateEntryName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidEntryName)
	}

	if strings.IndexByte(name, 0) >= 0 {
		return fmt.Errorf("%w: %q contains NUL", ErrInvalidEntryName, name)
	}

	return nil
}

// normalizeExtractSegment validates one archive-provided name used as output path component(s).
// Absolute paths, drive prefixes and ".." segments are rejected.
func normalizeExtractSegment(name string) (string, error) {
	raw := strings.TrimSpace(name)
	if raw == "" || strings.ContainsRune(raw, 0) {
		return "", fmt.Errorf("%w: %q", ErrInvalidExtractPath, name)
	}
	if strings.HasPrefix(raw, `/`) || strings.HasPrefix(raw, `\`) {
		return "", fmt.Errorf("%w: %q is absolute", ErrInvalidExtractPath, name)
	}

	raw = strings.ReplaceAll(raw, `\`, `/`)
	if hasWindowsAbsDrivePrefix(raw) {
		return "", fmt.Errorf("%w: %q is absolute", ErrInvalidExtractPath, name)
	}

	parts := strings.Split(raw, `/`)
	cleanParts := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			return "", fmt.Errorf("%w: %q escapes destination", ErrInvalidExtractPath, name)
		default:
			cleanParts = append(cleanParts, part)
		}
	}
	if len(cleanParts) == 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidExtractPath, name)
	}

	return filepath.Join(cleanParts...), nil
}

// hasWindowsAbsDrivePrefix reports whether path starts with drive prefix like C:.
func hasWindowsAbsDrivePrefix(path string) bool {
	if len(path) < 2 {
		return false
	}

	return isASCIIAlpha(path[0]) && path[1] == ':'
}

// isASCIIAlpha reports whether byte is ASCII latin letter.
func isASCIIAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// knownExtensions returns named type extensions in type code order.
func knownExtensions() []string {
	types := []FileType{Texture1, Texture2, GLSL, FolderMarker, WavAudio, ShaderText}
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = "." + t.Extension()
	}

	return out
}
