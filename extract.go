// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ddpack

package ddpack

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/woozymasta/ddpack/glsl"
)

// extractCopyBufferSize defines buffer size for file copy during extraction.
const extractCopyBufferSize = 64 * 1024

// GLSL split output extensions.
const (
	vertexExtension   = "vert"
	fragmentExtension = "frag"
)

// extractor holds folder state for one Extract call.
type extractor struct {
	r       *Reader
	opts    ExtractOptions
	root    string
	copyBuf []byte
	// folders is the current output folder as a segment stack under root.
	folders []string
	// used tracks output paths when names are sanitized.
	used map[string]struct{}
	// markerSeen is set after the first folder marker under FolderTree.
	markerSeen bool
}

// Extract writes every entry of the archive under dstDir, rebuilding folders
// from folder marker entries. Entries are processed sequentially because folder
// state depends on traversal order; the first error stops extraction.
func (r *Reader) Extract(ctx context.Context, dstDir string, opts ExtractOptions) error {
	if r == nil || r.ra == nil {
		return ErrNilReader
	}

	if r.isClosed() {
		return ErrClosed
	}

	if ctx == nil {
		ctx = context.Background()
	}

	opts.applyDefaults()
	if err := opts.validate(); err != nil {
		return err
	}

	root, err := filepath.Abs(dstDir)
	if err != nil {
		return fmt.Errorf("resolve output dir: %w", err)
	}

	if err := os.MkdirAll(root, 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	x := &extractor{
		r:       r,
		opts:    opts,
		root:    root,
		copyBuf: make([]byte, extractCopyBufferSize),
		used:    make(map[string]struct{}),
	}

	for _, entry := range extractSequence(r.entries, opts.Order) {
		if err := ctx.Err(); err != nil {
			return err
		}

		if entry.Type == FolderMarker && opts.Folders != FolderPreserve {
			if err := x.enterFolder(entry); err != nil {
				return err
			}

			continue
		}

		if err := x.extractEntry(entry); err != nil {
			return err
		}
	}

	return nil
}

// ExtractFile opens archivePath and extracts it under dstDir.
func ExtractFile(ctx context.Context, archivePath string, dstDir string, opts ExtractOptions) error {
	r, err := Open(archivePath)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	return r.Extract(ctx, dstDir, opts)
}

// validate rejects unknown option values after defaults are applied.
func (opts ExtractOptions) validate() error {
	switch opts.Order {
	case OrderReversed, OrderStored:
	default:
		return fmt.Errorf("unknown extract order %q", opts.Order)
	}

	switch opts.Folders {
	case FolderTree, FolderNested, FolderFlatten, FolderPreserve:
	default:
		return fmt.Errorf("unknown folder policy %q", opts.Folders)
	}

	switch opts.FileMode {
	case ExtractFileModeAuto, ExtractFileModeTruncate, ExtractFileModeCreateOnly:
	default:
		return fmt.Errorf("unknown extract file mode %q", opts.FileMode)
	}

	return nil
}

// extractSequence returns entries in traversal order without touching the source slice.
func extractSequence(entries []Entry, order ExtractOrder) []Entry {
	out := slices.Clone(entries)
	if order == OrderReversed {
		slices.Reverse(out)
	}

	return out
}

// segment converts an archive name into a relative output path.
func (x *extractor) segment(name string) (string, error) {
	if x.opts.SanitizeNames {
		name = SanitizeName(name)
	}

	return normalizeExtractSegment(name)
}

// outputPath joins base and ext; sanitized extraction also resolves collisions.
func (x *extractor) outputPath(base, ext string) string {
	if !x.opts.SanitizeNames {
		return base + "." + ext
	}

	return uniquePath(x.used, base, "."+ext)
}

// currentDir returns the absolute output folder for the current stack.
func (x *extractor) currentDir() string {
	return filepath.Join(append([]string{x.root}, x.folders...)...)
}

// enterFolder applies one folder marker to the folder stack.
func (x *extractor) enterFolder(entry Entry) error {
	if x.opts.Folders == FolderFlatten {
		x.opts.Logger.Debug("ignoring folder marker", "name", entry.Name)
		x.done(entry, 0, nil)
		return nil
	}

	segment, err := x.segment(entry.Name)
	if err != nil {
		return fmt.Errorf("folder marker %q: %w", entry.Name, err)
	}

	if x.opts.Folders == FolderTree {
		if x.markerSeen && len(x.folders) > 0 {
			x.folders = x.folders[:len(x.folders)-1]
		}

		x.markerSeen = true
	}

	x.folders = append(x.folders, segment)
	dir := x.currentDir()
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create folder %s: %w", dir, err)
	}

	x.opts.Logger.Debug("entered folder", "name", entry.Name, "path", dir)
	x.done(entry, 0, []string{dir})
	return nil
}

// extractEntry writes one non-marker entry (or a preserved marker) into the current folder.
func (x *extractor) extractEntry(entry Entry) error {
	name, err := x.segment(entry.Name)
	if err != nil {
		return fmt.Errorf("entry %q: %w", entry.Name, err)
	}

	base := filepath.Join(x.currentDir(), name)
	if err := os.MkdirAll(filepath.Dir(base), 0o750); err != nil {
		return fmt.Errorf("create output directory for %s: %w", entry.FileName(), err)
	}

	if entry.Type == GLSL && !x.opts.PreserveGLSL {
		handled, err := x.extractGLSL(entry, base)
		if handled || err != nil {
			return err
		}
	}

	outPath := x.outputPath(base, entry.Type.Extension())
	rc, err := x.r.OpenEntry(entry)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	written, err := x.writeFile(outPath, rc)
	if err != nil {
		return fmt.Errorf("write %s: %w", entry.FileName(), err)
	}

	if written != int64(entry.Size) {
		return fmt.Errorf("%w: %s: wrote %d of %d bytes", ErrIncompleteInput, entry.FileName(), written, entry.Size)
	}

	if err := x.applyModTime(entry, outPath); err != nil {
		return err
	}

	x.opts.Logger.Debug("wrote entry", "name", entry.Name, "type", entry.Type.String(), "path", outPath, "size", written)
	x.done(entry, written, []string{outPath})
	return nil
}

// extractGLSL splits a GLSL pair into vertex and fragment files.
// It reports false without error when the payload is malformed so the caller stores it raw.
func (x *extractor) extractGLSL(entry Entry, base string) (bool, error) {
	raw, err := x.r.ReadEntry(entry)
	if err != nil {
		return false, err
	}

	pair, err := glsl.Parse(raw)
	if err != nil {
		x.opts.Logger.Warn("malformed GLSL entry, saving as normal file", "name", entry.Name, "error", err)
		return false, nil
	}

	if pair.Name != entry.Name {
		x.opts.Logger.Warn("GLSL program name differs from entry name", "program", pair.Name, "entry", entry.Name)
	}

	outputs := []string{x.outputPath(base, vertexExtension), x.outputPath(base, fragmentExtension)}
	sources := []string{pair.Vertex, pair.Fragment}

	var written int64
	for i, outPath := range outputs {
		n, err := x.writeFile(outPath, strings.NewReader(sources[i]))
		if err != nil {
			return true, fmt.Errorf("write %s: %w", outPath, err)
		}

		written += n
		if err := x.applyModTime(entry, outPath); err != nil {
			return true, err
		}
	}

	x.opts.Logger.Debug("wrote GLSL pair", "name", entry.Name, "vertex", outputs[0], "fragment", outputs[1])
	x.done(entry, written, outputs)
	return true, nil
}

// writeFile creates outPath according to the file mode and copies src into it.
func (x *extractor) writeFile(outPath string, src io.Reader) (int64, error) {
	file, err := openExtractFile(outPath, x.opts.FileMode)
	if err != nil {
		return 0, err
	}

	written, copyErr := copyExtractData(file, src, x.copyBuf)
	closeErr := file.Close()
	if copyErr != nil {
		return written, copyErr
	}

	return written, closeErr
}

// applyModTime sets the stored timestamp as file modification time.
func (x *extractor) applyModTime(entry Entry, outPath string) error {
	if x.opts.SkipModTimes || entry.Timestamp == 0 {
		return nil
	}

	if err := os.Chtimes(outPath, time.Time{}, entry.ModTime()); err != nil {
		return fmt.Errorf("set timestamp on %s: %w", outPath, err)
	}

	return nil
}

// done reports one processed entry.
func (x *extractor) done(entry Entry, written int64, outputs []string) {
	if x.opts.OnEntryDone != nil {
		x.opts.OnEntryDone(entry, written, outputs)
	}
}

// openExtractFile opens output path according to selected extract file mode.
func openExtractFile(path string, mode ExtractFileMode) (*os.File, error) {
	switch mode {
	case ExtractFileModeAuto:
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return file, nil
		}

		if !os.IsExist(err) {
			return nil, err
		}

		return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	case ExtractFileModeTruncate:
		return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	case ExtractFileModeCreateOnly:
		return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	default:
		return nil, fmt.Errorf("unknown extract file mode %q", mode)
	}
}

// copyExtractData copies one entry stream to output file using a fixed buffer.
func copyExtractData(dst *os.File, src io.Reader, buf []byte) (int64, error) {
	if len(buf) == 0 {
		return 0, io.ErrShortBuffer
	}

	var total int64
	for {
		readN, readErr := src.Read(buf)
		if readN > 0 {
			writeN, writeErr := dst.Write(buf[:readN])
			total += int64(writeN)

			if writeErr != nil {
				return total, writeErr
			}

			if writeN != readN {
				return total, io.ErrShortWrite
			}
		}

		if readErr == nil {
			continue
		}

		if readErr == io.EOF {
			return total, nil
		}

		return total, readErr
	}
}
