// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ddpack

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/woozymasta/pathrules"

	"github.com/woozymasta/ddpack"
)

// packFlags holds flags of the pack command.
type packFlags struct {
	include  []string
	exclude  []string
	zeroTime bool
}

func newPackCmd() *cobra.Command {
	var flags packFlags

	cmd := &cobra.Command{
		Use:   "pack DIR ARCHIVE",
		Short: "Pack regular files of a directory into an archive",
		Long: `Pack every regular file directly inside DIR into ARCHIVE.
The file extension selects the entry type (wav, shadercfg, dd_glsl, dd_tex1,
dd_tex2, foldermarker); any other extension fails the pack.
Entries are written sorted by name, so identical input gives identical output.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := packOptions(flags)
			opts.Logger = logger.Named("pack")
			opts.OnEntryDone = func(p ddpack.PackEntryProgress) {
				opts.Logger.Debug("packed", "name", p.Entry.FileName(), "offset", p.Entry.Offset, "size", p.Entry.Size)
			}

			res, err := ddpack.PackDir(cmd.Context(), args[1], args[0], opts)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "packed %d file(s), %d B payload into %s in %s\n",
				len(res.Entries), res.DataSize, args[1], res.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().BoolVar(&flags.zeroTime, "zero-time", false, "Store zero timestamps instead of file modification times")
	cmd.Flags().StringArrayVar(&flags.include, "include", nil, "Only pack files matching pattern (repeatable)")
	cmd.Flags().StringArrayVar(&flags.exclude, "exclude", nil, "Skip files matching pattern (repeatable, wins over --include)")

	return cmd
}

// packOptions converts include/exclude flags to ordered pathrules.
// Excludes are appended last so they override includes.
func packOptions(flags packFlags) ddpack.PackOptions {
	opts := ddpack.PackOptions{ZeroTime: flags.zeroTime}

	for _, p := range flags.include {
		opts.Rules = append(opts.Rules, pathrules.Rule{Action: pathrules.ActionInclude, Pattern: p})
	}
	for _, p := range flags.exclude {
		opts.Rules = append(opts.Rules, pathrules.Rule{Action: pathrules.ActionExclude, Pattern: p})
	}

	opts.RuleOptions.DefaultAction = pathrules.ActionInclude
	if len(flags.include) > 0 {
		opts.RuleOptions.DefaultAction = pathrules.ActionExclude
	}

	return opts
}
