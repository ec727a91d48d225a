// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ddpack

package ddpack

import (
	"bufio"
	"fmt"
	"os"
)

// ReadTOCFile opens an archive and returns its main header and TOC without payload reads.
func ReadTOCFile(path string) (MainHeader, []Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return MainHeader{}, nil, fmt.Errorf("open archive: %w", err)
	}
	defer func() { _ = f.Close() }()

	h, entries, err := ReadTOC(bufio.NewReader(f))
	if err != nil {
		return MainHeader{}, nil, fmt.Errorf("%s: %w", path, err)
	}

	return h, entries, nil
}

// ListEntries opens an archive and returns entry metadata in stored order.
func ListEntries(path string) ([]Entry, error) {
	_, entries, err := ReadTOCFile(path)
	return entries, err
}

// openFileWithSize opens a file and returns a handle plus current size.
func openFileWithSize(path string) (*os.File, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open archive: %w", err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, fmt.Errorf("stat: %w", err)
	}

	return f, fi.Size(), nil
}
