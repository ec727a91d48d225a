// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ddpack

package ddpack

import (
	"io"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/woozymasta/pathrules"
)

// Internal binary layout and format limits.
const (
	magicSize        = 8  // archive signature size
	mainHeaderSize   = 12 // signature + uint32 TOC length
	terminatorSize   = 2  // zero type code closing the TOC
	recordFixedSize  = 14 // type(2) + offset(4) + size(4) + timestamp(4), name excluded
	maxArchiveOffset = 1<<32 - 1
)

// Default packer tuning values.
const (
	DefaultWriteBuffer = 4 * 1024 * 1024
)

// Magic is the fixed archive signature.
var Magic = [magicSize]byte{':', 'h', 'x', ':', 'r', 'g', ':', 0x01}

// MainHeader is the fixed 12-byte archive header.
type MainHeader struct {
	// Magic is the archive signature, always ":hx:rg:\x01" for valid archives.
	Magic [magicSize]byte `json:"magic" yaml:"magic"`
	// TOCLength is the byte length of all TOC records plus the 2-byte terminator.
	// It does not include the main header itself.
	TOCLength uint32 `json:"toc_length" yaml:"toc_length"`
}

// DataStart returns the absolute offset of the first payload byte.
func (h MainHeader) DataStart() uint32 {
	return mainHeaderSize + h.TOCLength
}

// Entry describes a single TOC record.
type Entry struct {
	// Name is the entry name as stored, without extension and without NUL terminator.
	Name string `json:"name" yaml:"name"`
	// Type is the entry content type.
	Type FileType `json:"type" yaml:"type"`
	// Offset is the absolute byte offset of the payload from archive start.
	Offset uint32 `json:"offset" yaml:"offset"`
	// Size is the payload length in bytes.
	Size uint32 `json:"size" yaml:"size"`
	// Timestamp is the Unix modification time; zero means none recorded.
	Timestamp uint32 `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
}

// FileName returns the entry name with its type extension appended.
func (e Entry) FileName() string {
	return e.Name + "." + e.Type.Extension()
}

// ModTime returns the entry timestamp as time, or zero time when not recorded.
func (e Entry) ModTime() time.Time {
	if e.Timestamp == 0 {
		return time.Time{}
	}

	return time.Unix(int64(e.Timestamp), 0)
}

// Input describes one source stream to be packed into an archive entry.
type Input struct {
	// ModTime is optional entry timestamp; zero time stores 0.
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
	// Open returns raw source stream for this entry.
	Open func() (io.ReadCloser, error) `json:"-" yaml:"-"`
	// Name is the stored entry name (no extension).
	Name string `json:"name" yaml:"name"`
	// Source is an optional origin label (usually filesystem path) used in errors.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	// Size is the size recorded in the TOC; the stream must yield exactly this many bytes.
	Size int64 `json:"size" yaml:"size"`
	// Type is the entry file type.
	Type FileType `json:"type" yaml:"type"`
}

// label returns the most descriptive identifier for errors.
func (in Input) label() string {
	if in.Source != "" {
		return in.Source
	}

	return in.Name
}

// PackEntryProgress contains one completed entry write event from pack flow.
type PackEntryProgress struct {
	// Entry is the TOC record written for this input.
	Entry Entry `json:"entry" yaml:"entry"`
	// Source is the input origin label.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// PackOptions configures pack behavior.
type PackOptions struct {
	// OnEntryDone is called after one entry payload is fully written.
	OnEntryDone func(entry PackEntryProgress) `json:"-" yaml:"-"`
	// Logger receives pack diagnostics; nil disables logging.
	Logger hclog.Logger `json:"-" yaml:"-"`
	// Rules select source files for CollectDir and PackDir.
	// Empty rule set includes every regular file.
	Rules []pathrules.Rule `json:"rules,omitempty" yaml:"rules,omitempty"`
	// RuleOptions control source rule matching.
	RuleOptions pathrules.MatcherOptions `json:"rule_options,omitzero" yaml:"rule_options,omitzero"`
	// WriterBufferSize is buffered writer size in bytes.
	WriterBufferSize int `json:"writer_buffer_size,omitempty" yaml:"writer_buffer_size,omitempty"`
	// ZeroTime stores 0 timestamps instead of source modification times.
	ZeroTime bool `json:"zero_time,omitempty" yaml:"zero_time,omitempty"`
}

// PackResult contains pack output statistics.
type PackResult struct {
	// Header is the written main header.
	Header MainHeader `json:"header" yaml:"header"`
	// Entries are written TOC records in archive order.
	Entries []Entry `json:"entries" yaml:"entries"`
	// DataSize is total payload bytes written.
	DataSize int64 `json:"data_size" yaml:"data_size"`
	// Duration is end-to-end pack core duration.
	Duration time.Duration `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// EditOptions configures file-based archive edit flow.
type EditOptions struct {
	// PackOptions are applied when the edited archive is rewritten.
	PackOptions PackOptions `json:"pack_options,omitzero" yaml:"pack_options,omitzero"`
	// BackupKeep controls how many backup generations are kept after successful commit.
	// 0 means remove backup, 1 keeps only `<archive>.bak`, N keeps `.bak` + `.bak.1..N-1`.
	BackupKeep int `json:"backup_keep,omitempty" yaml:"backup_keep,omitempty"`
}

// ExtractOrder controls TOC traversal order during extraction.
type ExtractOrder string

// Extraction traversal orders.
const (
	// OrderReversed walks the TOC back to front so folder markers precede their files.
	OrderReversed ExtractOrder = "reversed"
	// OrderStored walks the TOC in stored order.
	OrderStored ExtractOrder = "stored"
)

// FolderPolicy controls how folder marker entries are handled during extraction.
type FolderPolicy string

// Folder marker policies.
const (
	// FolderTree replaces the current folder with the marker name (pop one, push one).
	FolderTree FolderPolicy = "tree"
	// FolderNested pushes every marker under the current folder without popping.
	FolderNested FolderPolicy = "nested"
	// FolderFlatten ignores markers and writes every entry into the destination root.
	FolderFlatten FolderPolicy = "flatten"
	// FolderPreserve writes markers as empty ".foldermarker" files and keeps folder state unchanged.
	FolderPreserve FolderPolicy = "preserve"
)

// ExtractFileMode controls output file open behavior during extraction.
type ExtractFileMode string

// Output file creation policies for extraction.
const (
	// ExtractFileModeAuto first tries create-only, then falls back to truncate for existing files.
	ExtractFileModeAuto ExtractFileMode = "auto"
	// ExtractFileModeTruncate opens existing files with truncate and creates missing files.
	ExtractFileModeTruncate ExtractFileMode = "truncate"
	// ExtractFileModeCreateOnly creates files only when absent and fails on existing files.
	ExtractFileModeCreateOnly ExtractFileMode = "create_only"
)

// ExtractOptions configures Extract behavior.
type ExtractOptions struct {
	// OnEntryDone is called after one entry is written; outputs lists created files.
	OnEntryDone func(entry Entry, written int64, outputs []string) `json:"-" yaml:"-"`
	// Logger receives extraction diagnostics; nil disables logging.
	Logger hclog.Logger `json:"-" yaml:"-"`
	// Order selects TOC traversal order; default is OrderReversed.
	Order ExtractOrder `json:"order,omitempty" yaml:"order,omitempty"`
	// Folders selects folder marker handling; default is FolderTree.
	Folders FolderPolicy `json:"folders,omitempty" yaml:"folders,omitempty"`
	// FileMode controls output file creation policy.
	FileMode ExtractFileMode `json:"file_mode,omitempty" yaml:"file_mode,omitempty"`
	// PreserveGLSL writes GLSL entries verbatim instead of splitting into .vert/.frag.
	PreserveGLSL bool `json:"preserve_glsl,omitempty" yaml:"preserve_glsl,omitempty"`
	// SanitizeNames rewrites entry and folder names into filesystem-safe form
	// and resolves resulting collisions with "~N" suffixes.
	SanitizeNames bool `json:"sanitize_names,omitempty" yaml:"sanitize_names,omitempty"`
	// SkipModTimes leaves output modification times untouched.
	SkipModTimes bool `json:"skip_mod_times,omitempty" yaml:"skip_mod_times,omitempty"`
}

// applyDefaults fills zero-valued pack options with defaults.
func (opts *PackOptions) applyDefaults() {
	if opts.WriterBufferSize < 4096 {
		opts.WriterBufferSize = DefaultWriteBuffer
	}

	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}

	if opts.RuleOptions == (pathrules.MatcherOptions{}) {
		opts.RuleOptions = pathrules.MatcherOptions{
			DefaultAction: pathrules.ActionInclude,
		}
	}

	if opts.RuleOptions.DefaultAction == pathrules.ActionUnknown {
		opts.RuleOptions.DefaultAction = pathrules.ActionInclude
	}
}

// applyDefaults fills zero-valued edit options with defaults.
func (opts *EditOptions) applyDefaults() {
	opts.PackOptions.applyDefaults()

	if opts.BackupKeep < 0 {
		opts.BackupKeep = 0
	}
}

// applyDefaults fills zero-valued extract options with defaults.
func (opts *ExtractOptions) applyDefaults() {
	if opts.Order == "" {
		opts.Order = OrderReversed
	}

	if opts.Folders == "" {
		opts.Folders = FolderTree
	}

	if opts.FileMode == "" {
		opts.FileMode = ExtractFileModeAuto
	}

	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
}
