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
	"strconv"
	"strings"
)

// EntryRef identifies one archive entry; names are unique per type.
type EntryRef struct {
	Name string   `json:"name" yaml:"name"`
	Type FileType `json:"type" yaml:"type"`
}

// Ref returns the entry identity.
func (e Entry) Ref() EntryRef {
	return EntryRef{Name: e.Name, Type: e.Type}
}

// ParseEntryRef parses "<name>.<ext>" as printed by Entry.FileName.
// Unknown type codes are accepted in their "dd_0x<hex>" form.
func ParseEntryRef(fileName string) (EntryRef, error) {
	dot := strings.LastIndexByte(fileName, '.')
	if dot <= 0 || dot == len(fileName)-1 {
		return EntryRef{}, fmt.Errorf("%w: %q has no type extension", ErrUnresolvedFileType, fileName)
	}

	name, ext := fileName[:dot], fileName[dot+1:]
	if t, ok := FileTypeFromExtension(ext); ok {
		return EntryRef{Name: name, Type: t}, nil
	}

	if hex, ok := strings.CutPrefix(ext, "dd_0x"); ok {
		code, err := strconv.ParseUint(hex, 16, 16)
		if err == nil && code != 0 {
			return EntryRef{Name: name, Type: FileType(code)}, nil
		}
	}

	return EntryRef{}, fmt.Errorf("%w: %q has unrecognized extension %q", ErrUnresolvedFileType, fileName, ext)
}

// Editor accumulates archive edit operations and applies them on Commit.
// The archive is rebuilt with the deterministic packer, so entry order and
// offsets of a committed archive match a fresh pack of the same contents.
type Editor struct {
	path string
	ops  []editOperation
	opts EditOptions
}

// editOperation stores one staged editor operation.
type editOperation struct {
	inputs []Input
	refs   []EntryRef
	kind   editOperationKind
}

// editOperationKind identifies staged edit action type.
type editOperationKind uint8

const (
	// editOperationAdd appends new entries and fails on existing name and type.
	editOperationAdd editOperationKind = iota + 1
	// editOperationReplace rewrites existing entries.
	editOperationReplace
	// editOperationDelete removes entries.
	editOperationDelete
)

// rewriteEntry is one entry of the edited archive: either kept from the source or a new input.
type rewriteEntry struct {
	source *Entry
	input  *Input
}

// OpenEditor creates staged editor for file-based archive rewrite workflow.
func OpenEditor(path string, opts EditOptions) (*Editor, error) {
	trimmedPath := strings.TrimSpace(path)
	if trimmedPath == "" {
		return nil, fmt.Errorf("%w: empty archive path", ErrInvalidExtractPath)
	}

	opts.applyDefaults()

	return &Editor{
		path: trimmedPath,
		opts: opts,
		ops:  make([]editOperation, 0, 8),
	}, nil
}

// Add schedules adding new entries; commit fails when an entry with the same name and type exists.
func (e *Editor) Add(inputs ...Input) error {
	return e.stageInputs(editOperationAdd, inputs)
}

// Replace schedules replacing existing entries; commit fails when an entry is missing.
func (e *Editor) Replace(inputs ...Input) error {
	return e.stageInputs(editOperationReplace, inputs)
}

// Delete schedules entry removal. Missing entries are ignored.
func (e *Editor) Delete(refs ...EntryRef) error {
	if e == nil {
		return ErrNilReader
	}

	for _, ref := range refs {
		if err := validateEntryName(ref.Name); err != nil {
			return err
		}
	}

	if len(refs) > 0 {
		e.ops = append(e.ops, editOperation{kind: editOperationDelete, refs: refs})
	}

	return nil
}

// stageInputs validates inputs and appends one staged operation.
func (e *Editor) stageInputs(kind editOperationKind, inputs []Input) error {
	if e == nil {
		return ErrNilReader
	}

	for _, in := range inputs {
		if err := validateEntryName(in.Name); err != nil {
			return fmt.Errorf("input %s: %w", in.label(), err)
		}

		if in.Type == 0 {
			return fmt.Errorf("%w: input %s", ErrReservedFileType, in.label())
		}
	}

	if len(inputs) > 0 {
		e.ops = append(e.ops, editOperation{kind: kind, inputs: inputs})
	}

	return nil
}

// Commit applies all staged operations in one rewrite transaction.
// The original archive is restored when the rewrite fails.
func (e *Editor) Commit(ctx context.Context) (*PackResult, error) {
	if e == nil {
		return nil, ErrNilReader
	}

	if ctx == nil {
		ctx = context.Background()
	}

	backupPath := e.path + ".bak"
	if err := prepareBackupSlot(backupPath, e.opts.BackupKeep); err != nil {
		return nil, err
	}

	if err := os.Rename(e.path, backupPath); err != nil {
		return nil, fmt.Errorf("move archive to backup: %w", err)
	}

	res, err := e.commitFromBackup(ctx, backupPath)
	if err != nil {
		if rollbackErr := rollbackFromBackup(e.path, backupPath); rollbackErr != nil {
			return nil, fmt.Errorf("%w (rollback failed: %w)", err, rollbackErr)
		}

		return nil, err
	}

	if e.opts.BackupKeep == 0 {
		if err := removeIfExists(backupPath); err != nil {
			return nil, fmt.Errorf("remove backup: %w", err)
		}
	}

	e.ops = e.ops[:0]
	return res, nil
}

// commitFromBackup writes edited archive from backup source.
func (e *Editor) commitFromBackup(ctx context.Context, backupPath string) (*PackResult, error) {
	src, err := Open(backupPath)
	if err != nil {
		return nil, fmt.Errorf("open backup: %w", err)
	}
	defer func() { _ = src.Close() }()

	plan, err := buildEditPlan(src.entries, e.ops)
	if err != nil {
		return nil, err
	}

	inputs := make([]Input, 0, len(plan))
	for _, item := range plan {
		inputs = append(inputs, item.packInput(src))
	}

	dstFile, err := os.OpenFile(e.path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create destination archive: %w", err)
	}

	res, writeErr := Pack(ctx, dstFile, inputs, e.opts.PackOptions)
	if writeErr != nil {
		_ = dstFile.Close()
		return nil, writeErr
	}

	if err := dstFile.Sync(); err != nil {
		_ = dstFile.Close()
		return nil, fmt.Errorf("sync destination archive: %w", err)
	}

	if err := dstFile.Close(); err != nil {
		return nil, fmt.Errorf("close destination archive: %w", err)
	}

	return res, nil
}

// packInput converts a plan item into a packer input reading kept payloads from src.
func (item rewriteEntry) packInput(src *Reader) Input {
	if item.input != nil {
		return *item.input
	}

	entry := *item.source
	return Input{
		Name:    entry.Name,
		Type:    entry.Type,
		Size:    int64(entry.Size),
		ModTime: entry.ModTime(),
		Source:  "kept:" + entry.FileName(),
		Open: func() (io.ReadCloser, error) {
			return src.OpenEntry(entry)
		},
	}
}

// buildEditPlan applies staged operations to source entries and builds the final entry set.
func buildEditPlan(sourceEntries []Entry, ops []editOperation) ([]rewriteEntry, error) {
	state := make(map[EntryRef]rewriteEntry, len(sourceEntries))
	for i := range sourceEntries {
		entry := sourceEntries[i]
		if _, exists := state[entry.Ref()]; exists {
			return nil, fmt.Errorf("%w: source entry %s", ErrDuplicateEntryName, entry.FileName())
		}

		state[entry.Ref()] = rewriteEntry{source: &entry}
	}

	for _, op := range ops {
		switch op.kind {
		case editOperationAdd, editOperationReplace:
			for _, in := range op.inputs {
				ref := EntryRef{Name: in.Name, Type: in.Type}
				_, exists := state[ref]
				if op.kind == editOperationAdd && exists {
					return nil, fmt.Errorf("%w: %s.%s", ErrDuplicateEntryName, in.Name, in.Type.Extension())
				}

				if op.kind == editOperationReplace && !exists {
					return nil, fmt.Errorf("%w: %s.%s", ErrEntryNotFound, in.Name, in.Type.Extension())
				}

				item := in
				state[ref] = rewriteEntry{input: &item}
			}
		case editOperationDelete:
			for _, ref := range op.refs {
				delete(state, ref)
			}
		default:
			return nil, fmt.Errorf("unknown edit operation kind: %d", op.kind)
		}
	}

	plan := make([]rewriteEntry, 0, len(state))
	for _, item := range state {
		plan = append(plan, item)
	}

	return plan, nil
}

// prepareBackupSlot rotates/removes existing backup generations before new commit.
func prepareBackupSlot(backupPath string, keep int) error {
	if keep <= 1 {
		return removeIfExists(backupPath)
	}

	if err := removeIfExists(fmt.Sprintf("%s.%d", backupPath, keep-1)); err != nil {
		return err
	}

	for i := keep - 2; i >= 1; i-- {
		from := fmt.Sprintf("%s.%d", backupPath, i)
		to := fmt.Sprintf("%s.%d", backupPath, i+1)
		if err := renameIfExists(from, to); err != nil {
			return err
		}
	}

	return renameIfExists(backupPath, backupPath+".1")
}

// renameIfExists renames source to destination when source exists.
func renameIfExists(from string, to string) error {
	_, err := os.Stat(from)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", from, err)
	}

	if err := removeIfExists(to); err != nil {
		return err
	}

	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("rename %s to %s: %w", from, to, err)
	}

	return nil
}

// removeIfExists removes file when present.
func removeIfExists(path string) error {
	err := os.Remove(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("remove %s: %w", path, err)
}

// rollbackFromBackup restores backup on failed commit.
func rollbackFromBackup(path string, backupPath string) error {
	_ = os.Remove(path)

	if err := os.Rename(backupPath, path); err != nil {
		return fmt.Errorf("restore backup: %w", err)
	}

	return nil
}
