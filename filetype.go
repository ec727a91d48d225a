// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ddpack

package ddpack

import (
	"fmt"
	"strings"
)

// FileType is the 16-bit content type code of a TOC entry (stored little-endian).
// Codes outside the named set are kept verbatim and treated as unknown.
type FileType uint16

// Known archive file types.
const (
	// Texture1 is texture data, usually a tex2 image.
	Texture1 FileType = 0x01
	// Texture2 is texture data, usually a tex2 image.
	Texture2 FileType = 0x02
	// GLSL is a combined vertex and fragment shader blob.
	GLSL FileType = 0x10
	// FolderMarker opens a directory for the entries that follow it in reversed order.
	FolderMarker FileType = 0x11
	// WavAudio is little-endian 44100 Hz 16-bit PCM WAVE audio.
	WavAudio FileType = 0x20
	// ShaderText is a shader configuration text file.
	ShaderText FileType = 0x80
)

// fileTypeInfo holds static registry data for one named file type.
type fileTypeInfo struct {
	ext  string
	desc string
}

var (
	// fileTypes maps named type codes to extension and description.
	fileTypes = map[FileType]fileTypeInfo{
		WavAudio:     {ext: "wav", desc: "wav audio"},
		ShaderText:   {ext: "shadercfg", desc: "shader text file"},
		GLSL:         {ext: "dd_glsl", desc: "glsl vert+frag shader"},
		Texture1:     {ext: "dd_tex1", desc: "texture 1"},
		Texture2:     {ext: "dd_tex2", desc: "texture 2"},
		FolderMarker: {ext: "foldermarker", desc: "folder marker"},
	}

	// extensionTypes is the reverse of fileTypes, defined for named types only.
	extensionTypes = func() map[string]FileType {
		out := make(map[string]FileType, len(fileTypes))
		for t, info := range fileTypes {
			out[info.ext] = t
		}

		return out
	}()
)

// ResolveFileType converts a raw type code into FileType. It never fails.
func ResolveFileType(code uint16) FileType {
	return FileType(code)
}

// Known reports whether t is one of the named file types.
func (t FileType) Known() bool {
	_, ok := fileTypes[t]
	return ok
}

// Extension returns the canonical file extension without a leading dot.
// Unknown types map to "dd_0x" followed by the upper-case hex code.
func (t FileType) Extension() string {
	if info, ok := fileTypes[t]; ok {
		return info.ext
	}

	return fmt.Sprintf("dd_0x%X", uint16(t))
}

// String returns a human-readable type description.
func (t FileType) String() string {
	if info, ok := fileTypes[t]; ok {
		return info.desc
	}

	return fmt.Sprintf("unknown (0x%X)", uint16(t))
}

// FileTypeFromExtension resolves a named file type from an extension with or without leading dot.
// Synthesized unknown extensions like "dd_0x1F" are not resolved.
func FileTypeFromExtension(ext string) (FileType, bool) {
	t, ok := extensionTypes[strings.TrimPrefix(ext, ".")]
	return t, ok
}
