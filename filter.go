// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ddpack

package ddpack

import (
	"slices"
	"strings"
)

// EntryFilter selects entries for listing workflows. Zero value keeps everything.
type EntryFilter struct {
	// Types keeps only entries of the listed types.
	Types []FileType `json:"types,omitempty" yaml:"types,omitempty"`
	// NamePrefix keeps entries whose name starts with the prefix (case-insensitive).
	NamePrefix string `json:"name_prefix,omitempty" yaml:"name_prefix,omitempty"`
	// MinSize keeps entries with payload of at least MinSize bytes.
	MinSize uint32 `json:"min_size,omitempty" yaml:"min_size,omitempty"`
	// ASCIIOnly keeps entries whose name contains only ASCII bytes.
	ASCIIOnly bool `json:"ascii_only,omitempty" yaml:"ascii_only,omitempty"`
}

// IsZero reports whether the filter keeps every entry.
func (f EntryFilter) IsZero() bool {
	return len(f.Types) == 0 && f.NamePrefix == "" && f.MinSize == 0 && !f.ASCIIOnly
}

// Match reports whether entry passes every filter criterion.
func (f EntryFilter) Match(e Entry) bool {
	if len(f.Types) > 0 && !slices.Contains(f.Types, e.Type) {
		return false
	}

	if f.NamePrefix != "" && !strings.HasPrefix(strings.ToLower(e.Name), strings.ToLower(f.NamePrefix)) {
		return false
	}

	if e.Size < f.MinSize {
		return false
	}

	return !f.ASCIIOnly || isASCIIOnly(e.Name)
}

// FilterEntries returns entries matching f, keeping their order.
// Folder state depends on every entry, so filtered lists are for listing only.
func FilterEntries(entries []Entry, f EntryFilter) []Entry {
	if f.IsZero() {
		return entries
	}

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if f.Match(e) {
			out = append(out, e)
		}
	}

	return out
}

// isASCIIOnly reports whether value contains only ASCII bytes.
func isASCIIOnly(value string) bool {
	for i := 0; i < len(value); i++ {
		if value[i] >= 0x80 {
			return false
		}
	}

	return true
}
