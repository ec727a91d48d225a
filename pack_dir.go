// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ddpack

package ddpack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CollectDir lists regular files directly inside dir and converts them to pack inputs.
// File type is inferred from the extension; a file without a known extension fails
// with ErrUnresolvedFileType naming the path. Subdirectories are skipped.
func CollectDir(dir string, opts PackOptions) ([]Input, error) {
	opts.applyDefaults()

	matcher, err := newSourceMatcher(opts.Rules, opts.RuleOptions)
	if err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read source dir: %w", err)
	}

	inputs := make([]Input, 0, len(dirEntries))
	for _, de := range dirEntries {
		sourcePath := filepath.Join(dir, de.Name())
		if de.IsDir() {
			opts.Logger.Debug("skipping subdirectory", "path", sourcePath)
			continue
		}

		if !matcher.Match(de.Name()) {
			opts.Logger.Debug("excluded by rules", "path", sourcePath)
			continue
		}

		in, err := FileInput(sourcePath, opts.ZeroTime)
		if errors.Is(err, errNotRegular) {
			opts.Logger.Debug("skipping non-regular file", "path", sourcePath)
			continue
		}
		if err != nil {
			return nil, err
		}

		opts.Logger.Info("collected", "path", sourcePath, "type", in.Type.String(), "size", in.Size)
		inputs = append(inputs, in)
	}

	return inputs, nil
}

// errNotRegular marks sources that are not regular files.
var errNotRegular = errors.New("not a regular file")

// FileInput builds a pack input for one source file. Name and type come from
// the file name; the timestamp is the file mtime unless zeroTime is set.
func FileInput(sourcePath string, zeroTime bool) (Input, error) {
	info, err := os.Stat(sourcePath)
	if err != nil {
		return Input{}, fmt.Errorf("stat %s: %w", sourcePath, err)
	}

	if !info.Mode().IsRegular() {
		return Input{}, fmt.Errorf("%s: %w", sourcePath, errNotRegular)
	}

	name, fileType, err := EntryNameFromPath(sourcePath)
	if err != nil {
		return Input{}, err
	}

	in := Input{
		Name:   name,
		Type:   fileType,
		Size:   info.Size(),
		Source: sourcePath,
		Open: func() (io.ReadCloser, error) {
			return os.Open(sourcePath)
		},
	}
	if !zeroTime {
		in.ModTime = info.ModTime()
	}

	return in, nil
}

// PackDir packs regular files from dir into an archive at archivePath.
// No archive file is left behind when packing fails.
func PackDir(ctx context.Context, archivePath string, dir string, opts PackOptions) (*PackResult, error) {
	inputs, err := CollectDir(dir, opts)
	if err != nil {
		return nil, err
	}

	return PackFile(ctx, archivePath, inputs, opts)
}
