// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ddpack

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/woozymasta/ddpack"
)

// editFlags holds flags of the edit command.
type editFlags struct {
	add        []string
	replace    []string
	remove     []string
	backupKeep int
	zeroTime   bool
}

func newEditCmd() *cobra.Command {
	var flags editFlags

	cmd := &cobra.Command{
		Use:   "edit ARCHIVE",
		Short: "Add, replace or delete entries of an archive in place",
		Long: `Rewrite ARCHIVE with staged changes applied in one pass.
Source files name their entries the same way pack does (name.ext).
Entries to delete are given as name.ext, for example intro.wav or blob.dd_0x1F.
The original archive is restored when the rewrite fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			editor, err := stageEdits(args[0], flags)
			if err != nil {
				return err
			}

			res, err := editor.Commit(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "rewrote %s with %d entries\n", args[0], len(res.Entries))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&flags.add, "add", nil, "Add a file as a new entry (repeatable)")
	cmd.Flags().StringArrayVar(&flags.replace, "replace", nil, "Replace an existing entry with a file (repeatable)")
	cmd.Flags().StringArrayVar(&flags.remove, "delete", nil, "Delete entry name.ext (repeatable)")
	cmd.Flags().IntVar(&flags.backupKeep, "backup-keep", 0, "Backup generations to keep (0 removes the backup)")
	cmd.Flags().BoolVar(&flags.zeroTime, "zero-time", false, "Store zero timestamps for added and replaced files")

	return cmd
}

// stageEdits opens an editor for path and stages every flag operation.
func stageEdits(path string, flags editFlags) (*ddpack.Editor, error) {
	if len(flags.add)+len(flags.replace)+len(flags.remove) == 0 {
		return nil, errors.New("nothing to do: use --add, --replace or --delete")
	}

	editor, err := ddpack.OpenEditor(path, ddpack.EditOptions{
		PackOptions: ddpack.PackOptions{Logger: logger.Named("edit")},
		BackupKeep:  flags.backupKeep,
	})
	if err != nil {
		return nil, err
	}

	adds, err := fileInputs(flags.add, flags.zeroTime)
	if err != nil {
		return nil, err
	}
	if err := editor.Add(adds...); err != nil {
		return nil, err
	}

	replaces, err := fileInputs(flags.replace, flags.zeroTime)
	if err != nil {
		return nil, err
	}
	if err := editor.Replace(replaces...); err != nil {
		return nil, err
	}

	refs := make([]ddpack.EntryRef, 0, len(flags.remove))
	for _, name := range flags.remove {
		ref, err := ddpack.ParseEntryRef(name)
		if err != nil {
			return nil, err
		}

		refs = append(refs, ref)
	}

	if err := editor.Delete(refs...); err != nil {
		return nil, err
	}

	return editor, nil
}

// fileInputs converts source paths into pack inputs.
func fileInputs(paths []string, zeroTime bool) ([]ddpack.Input, error) {
	inputs := make([]ddpack.Input, 0, len(paths))
	for _, p := range paths {
		in, err := ddpack.FileInput(p, zeroTime)
		if err != nil {
			return nil, err
		}

		inputs = append(inputs, in)
	}

	return inputs, nil
}
