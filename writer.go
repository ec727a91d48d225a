// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ddpack

package ddpack

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

const (
	// packCopyBufferSize is per-pack temporary buffer used by streaming payload copy.
	packCopyBufferSize = 64 * 1024
)

var (
	// defaultPackCopyBufferPool reuses payload copy buffers between Pack calls.
	defaultPackCopyBufferPool = sync.Pool{
		New: func() any {
			return new([packCopyBufferSize]byte)
		},
	}
)

// packItem pairs one sorted input with its TOC record.
type packItem struct {
	input Input
	entry Entry
}

// Pack writes an archive to out from the given inputs.
// Inputs are sorted by name for deterministic output; offsets are assigned
// sequentially after the TOC and each payload is written at its offset.
func Pack(ctx context.Context, out io.WriteSeeker, inputs []Input, opts PackOptions) (*PackResult, error) {
	startedAt := time.Now()

	if out == nil {
		return nil, ErrNilWriter
	}

	if ctx == nil {
		ctx = context.Background()
	}

	opts.applyDefaults()

	plan, header, err := preparePackPlan(inputs)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, len(plan))
	for i := range plan {
		entries[i] = plan[i].entry
	}

	if _, err := out.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek archive start: %w", err)
	}

	w := bufio.NewWriterSize(out, opts.WriterBufferSize)
	if _, err := WriteTOC(w, entries); err != nil {
		return nil, err
	}

	opts.Logger.Debug("wrote TOC", "entries", len(entries), "toc_length", header.TOCLength)

	arr := defaultPackCopyBufferPool.Get().(*[packCopyBufferSize]byte) //nolint:forcetypeassert // pool contains only fixed-size buffers
	defer defaultPackCopyBufferPool.Put(arr)

	var dataSize int64
	for _, item := range plan {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := w.Flush(); err != nil {
			return nil, fmt.Errorf("flush before %s: %w", item.entry.Name, err)
		}

		if _, err := out.Seek(int64(item.entry.Offset), io.SeekStart); err != nil {
			return nil, fmt.Errorf("seek to entry %s offset %d: %w", item.entry.Name, item.entry.Offset, err)
		}

		if err := writeInputPayload(w, item, arr[:]); err != nil {
			return nil, err
		}

		dataSize += int64(item.entry.Size)
		opts.Logger.Debug("wrote entry", "name", item.entry.Name, "type", item.entry.Type, "offset", item.entry.Offset, "size", item.entry.Size)

		if opts.OnEntryDone != nil {
			opts.OnEntryDone(PackEntryProgress{Entry: item.entry, Source: item.input.Source})
		}
	}

	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("flush payloads: %w", err)
	}

	return &PackResult{
		Header:   header,
		Entries:  entries,
		DataSize: dataSize,
		Duration: time.Since(startedAt),
	}, nil
}

// PackFile writes an archive to outPath. The archive is built in a temporary file
// next to outPath and renamed into place only after every entry was written.
func PackFile(ctx context.Context, outPath string, inputs []Input, opts PackOptions) (res *PackResult, err error) {
	f, err := os.CreateTemp(filepath.Dir(outPath), "."+filepath.Base(outPath)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create archive file: %w", err)
	}

	tmpPath := f.Name()
	defer func() {
		if f != nil {
			_ = f.Close()
		}

		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	res, err = Pack(ctx, f, inputs, opts)
	if err != nil {
		return nil, err
	}

	if err = f.Sync(); err != nil {
		return nil, fmt.Errorf("sync archive file: %w", err)
	}

	if err = f.Close(); err != nil {
		f = nil
		return nil, fmt.Errorf("close archive file: %w", err)
	}
	f = nil

	if err = os.Chmod(tmpPath, 0o644); err != nil {
		return nil, fmt.Errorf("chmod archive file: %w", err)
	}

	if err = os.Rename(tmpPath, outPath); err != nil {
		return nil, fmt.Errorf("rename archive file: %w", err)
	}

	return res, nil
}

// preparePackPlan validates and sorts inputs and assigns TOC offsets.
func preparePackPlan(inputs []Input) ([]packItem, MainHeader, error) {
	plan := make([]packItem, len(inputs))
	for i := range inputs {
		in := inputs[i]
		if err := validateEntryName(in.Name); err != nil {
			return nil, MainHeader{}, fmt.Errorf("input %s: %w", in.label(), err)
		}

		if in.Type == 0 {
			return nil, MainHeader{}, fmt.Errorf("%w: input %s", ErrReservedFileType, in.label())
		}

		if in.Size < 0 || in.Size > maxArchiveOffset {
			return nil, MainHeader{}, fmt.Errorf("%w: input %s size %d", ErrSizeOverflow, in.label(), in.Size)
		}

		plan[i] = packItem{
			input: in,
			entry: Entry{
				Name:      in.Name,
				Type:      in.Type,
				Size:      uint32(in.Size), //nolint:gosec // bounded above
				Timestamp: timeToUint32(in.ModTime),
			},
		}
	}

	sort.SliceStable(plan, func(i, j int) bool {
		if plan[i].entry.Name != plan[j].entry.Name {
			return plan[i].entry.Name < plan[j].entry.Name
		}

		return plan[i].entry.Type < plan[j].entry.Type
	})

	for i := 1; i < len(plan); i++ {
		if plan[i].entry.Name == plan[i-1].entry.Name && plan[i].entry.Type == plan[i-1].entry.Type {
			return nil, MainHeader{}, fmt.Errorf("%w: %q (%s) conflicts with %q",
				ErrDuplicateEntryName, plan[i].input.label(), plan[i].entry.Type, plan[i-1].input.label())
		}
	}

	entries := make([]Entry, len(plan))
	for i := range plan {
		entries[i] = plan[i].entry
	}

	header := MainHeader{Magic: Magic, TOCLength: TOCLength(entries)}
	current := uint64(mainHeaderSize) + uint64(header.TOCLength)
	for i := range plan {
		if current+uint64(plan[i].entry.Size) > maxArchiveOffset {
			return nil, MainHeader{}, fmt.Errorf("%w: entry %s would end past 4 GiB", ErrSizeOverflow, plan[i].entry.Name)
		}

		plan[i].entry.Offset = uint32(current) //nolint:gosec // bounded above
		current += uint64(plan[i].entry.Size)
	}

	return plan, header, nil
}

// writeInputPayload opens one input and streams exactly its recorded size.
func writeInputPayload(dst io.Writer, item packItem, copyBuf []byte) error {
	if item.input.Open == nil {
		return fmt.Errorf("input %s: Open is nil", item.input.label())
	}

	rc, err := item.input.Open()
	if err != nil {
		return fmt.Errorf("open input %s: %w", item.input.label(), err)
	}

	written, copyErr := copyPayloadExact(dst, rc, int64(item.entry.Size), copyBuf)
	closeErr := rc.Close()
	if copyErr != nil {
		if errors.Is(copyErr, ErrSizeRaceDetected) {
			return fmt.Errorf("%w: %s recorded %d bytes, read %d",
				ErrSizeRaceDetected, item.input.label(), item.entry.Size, written)
		}

		return fmt.Errorf("stream input %s: %w", item.input.label(), copyErr)
	}

	if closeErr != nil {
		return fmt.Errorf("close input %s: %w", item.input.label(), closeErr)
	}

	return nil
}

// copyPayloadExact streams exactly size bytes from src to dst.
// A shorter source, or one with bytes left after size, is reported as ErrSizeRaceDetected.
func copyPayloadExact(dst io.Writer, src io.Reader, size int64, buf []byte) (int64, error) {
	if dst == nil {
		return 0, ErrNilWriter
	}
	if src == nil {
		return 0, ErrNilReader
	}
	if len(buf) == 0 {
		buf = make([]byte, 32*1024)
	}

	var written int64
	emptyReads := 0
	for written < size {
		chunkSize := len(buf)
		if remaining := size - written; int64(chunkSize) > remaining {
			chunkSize = int(remaining)
		}

		n, readErr := src.Read(buf[:chunkSize])
		if n > 0 {
			emptyReads = 0
			nw, writeErr := dst.Write(buf[:n])
			written += int64(nw)

			if writeErr != nil {
				return written, writeErr
			}
			if nw != n {
				return written, io.ErrShortWrite
			}
		}
		if n == 0 && readErr == nil {
			emptyReads++
			if emptyReads > 100 {
				return written, io.ErrNoProgress
			}

			continue
		}

		if readErr != nil {
			if readErr == io.EOF {
				break
			}

			return written, readErr
		}
	}

	if written < size {
		return written, ErrSizeRaceDetected
	}

	// Probe one extra byte to ensure source did not grow.
	var probe [1]byte
	for range 100 {
		n, err := src.Read(probe[:])
		if n > 0 {
			return written + int64(n), ErrSizeRaceDetected
		}
		if err == io.EOF {
			return written, nil
		}
		if err != nil {
			return written, err
		}
	}

	return written, io.ErrNoProgress
}

// timeToUint32 converts time to uint32 Unix timestamp with bounds clamping.
// Zero time maps to 0 (no timestamp).
func timeToUint32(t time.Time) uint32 {
	if t.IsZero() {
		return 0
	}

	u := t.Unix()
	if u < 0 {
		return 0
	}

	if u > 0xffffffff {
		return 0xffffffff
	}

	return uint32(u)
}
