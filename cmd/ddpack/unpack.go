// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ddpack

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/woozymasta/ddpack"
)

// unpackFlags holds flags of the unpack command.
type unpackFlags struct {
	noFolders     bool
	folderMarkers bool
	nested        bool
	preserveGLSL  bool
	sanitize      bool
	noModTimes    bool
	storedOrder   bool
}

func newUnpackCmd() *cobra.Command {
	var flags unpackFlags

	cmd := &cobra.Command{
		Use:   "unpack FILE FOLDER",
		Short: "Unpack an archive into a folder",
		Long: `Unpack every entry of FILE into FOLDER.
Folder marker entries rebuild subdirectories; the table of contents is walked
in reverse so that each marker comes before the files it owns.
GLSL entries are split into .vert and .frag files.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := unpackOptions(flags)
			opts.Logger = logger.Named("unpack")

			var files int
			opts.OnEntryDone = func(e ddpack.Entry, _ int64, outputs []string) {
				for _, out := range outputs {
					if e.Type != ddpack.FolderMarker || opts.Folders == ddpack.FolderPreserve {
						files++
						opts.Logger.Info("writing", "path", out)
					}
				}
			}

			if err := ddpack.ExtractFile(cmd.Context(), args[0], args[1], opts); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "unpacked %d file(s) into %s\n", files, args[1])
			return nil
		},
	}

	cmd.Flags().BoolVar(&flags.noFolders, "no-folders", false, "Ignore folder markers and unpack everything flat (implies --stored-order)")
	cmd.Flags().BoolVar(&flags.folderMarkers, "folder-markers", false, "Write folder markers as .foldermarker files instead of folders")
	cmd.Flags().BoolVar(&flags.nested, "nested", false, "Nest every folder marker under the previous one instead of replacing it")
	cmd.Flags().BoolVar(&flags.preserveGLSL, "preserve-glsl", false, "Write GLSL entries as stored instead of splitting them")
	cmd.Flags().BoolVar(&flags.sanitize, "sanitize", false, "Rewrite unsafe entry and folder names into portable file names")
	cmd.Flags().BoolVar(&flags.noModTimes, "no-modtimes", false, "Do not apply stored modification times")
	cmd.Flags().BoolVar(&flags.storedOrder, "stored-order", false, "Walk entries in stored order instead of reverse")
	cmd.MarkFlagsMutuallyExclusive("no-folders", "folder-markers", "nested")

	return cmd
}

// unpackOptions maps command flags to extract options.
func unpackOptions(flags unpackFlags) ddpack.ExtractOptions {
	opts := ddpack.ExtractOptions{
		Order:         ddpack.OrderReversed,
		Folders:       ddpack.FolderTree,
		PreserveGLSL:  flags.preserveGLSL,
		SanitizeNames: flags.sanitize,
		SkipModTimes:  flags.noModTimes,
	}

	switch {
	case flags.folderMarkers:
		opts.Folders = ddpack.FolderPreserve
	case flags.nested:
		opts.Folders = ddpack.FolderNested
	case flags.noFolders:
		opts.Folders = ddpack.FolderFlatten
		opts.Order = ddpack.OrderStored
	}

	if flags.storedOrder {
		opts.Order = ddpack.OrderStored
	}

	return opts
}
