// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ddpack

/*
Package ddpack provides read, pack, and extract operations for ":hx:rg:"
game asset archives. The container is a flat little-endian layout: an 8-byte
signature, a uint32 table-of-contents length, a list of typed records closed
by a zero type code, and the concatenated payloads.

Packing streams caller-provided inputs (Input.Open) into the archive in a
deterministic order (name, then type code) and verifies that every stream
yields exactly its declared size. Reading and extraction work through
io.ReaderAt without loading the archive into memory.

Texture and shader payloads are decoded by the tex2 and glsl subpackages.

# Reading

Open an archive and read entries:

	r, err := ddpack.Open("data.dd")
	if err != nil {
	    return err
	}
	defer r.Close()
	for _, e := range r.Entries() {
	    data, _ := r.ReadEntry(e)
	    // use data
	}

For metadata-only scans, read only the header and TOC:

	header, entries, err := ddpack.ReadTOCFile("data.dd")
	if err != nil {
	    return err
	}
	_, _ = header, entries

# Packing

Pack a flat directory; each file extension selects the entry type:

	res, err := ddpack.PackDir(ctx, "data.dd", "assets", ddpack.PackOptions{
	    Rules: []pathrules.Rule{
	        {Action: pathrules.ActionExclude, Pattern: "*.tmp"},
	    },
	})
	if err != nil {
	    return err
	}
	_ = res

Or pack explicit inputs:

	res, err := ddpack.PackFile(ctx, "data.dd", []ddpack.Input{
	    {
	        Name: "intro",
	        Type: ddpack.WavAudio,
	        Size: int64(len(wav)),
	        Open: func() (io.ReadCloser, error) {
	            return io.NopCloser(bytes.NewReader(wav)), nil
	        },
	    },
	}, ddpack.PackOptions{})

# Extracting

Folder marker entries rebuild the directory tree. By default the TOC is
walked in reverse so each marker precedes the files it owns:

	err = r.Extract(ctx, "out", ddpack.ExtractOptions{
	    Folders: ddpack.FolderTree,
	})

GLSL entries are split into "<name>.vert" and "<name>.frag" unless
ExtractOptions.PreserveGLSL is set; malformed GLSL payloads are written
unchanged.
*/
package ddpack
