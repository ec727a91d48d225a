// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ddpack

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/woozymasta/ddpack"
)

// infoFlags holds flags of the info command.
type infoFlags struct {
	typeNames  []string
	prefix     string
	minSize    uint32
	verbose    bool
	types      bool
	extensions bool
}

func newInfoCmd() *cobra.Command {
	var flags infoFlags

	cmd := &cobra.Command{
		Use:   "info FILE",
		Short: "Show archive contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := entryFilter(flags)
			if err != nil {
				return err
			}

			header, entries, err := ddpack.ReadTOCFile(args[0])
			if err != nil {
				return err
			}

			if !flags.verbose {
				entries = ddpack.FilterEntries(entries, filter)
			}

			return printInfo(cmd.OutOrStdout(), header, entries, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Print header and full record of every entry")
	cmd.Flags().BoolVarP(&flags.types, "types", "t", false, "Print entry types")
	cmd.Flags().BoolVarP(&flags.extensions, "extensions", "e", false, "Append type extension to entry names")
	cmd.Flags().StringArrayVar(&flags.typeNames, "type", nil, "List only entries of this type extension (repeatable)")
	cmd.Flags().StringVar(&flags.prefix, "prefix", "", "List only entries whose name starts with prefix")
	cmd.Flags().Uint32Var(&flags.minSize, "min-size", 0, "List only entries of at least this many bytes")

	return cmd
}

// entryFilter builds the listing filter from flags.
func entryFilter(flags infoFlags) (ddpack.EntryFilter, error) {
	f := ddpack.EntryFilter{NamePrefix: flags.prefix, MinSize: flags.minSize}
	for _, name := range flags.typeNames {
		t, ok := ddpack.FileTypeFromExtension(name)
		if !ok {
			return f, fmt.Errorf("%w: %q", ddpack.ErrUnresolvedFileType, name)
		}

		f.Types = append(f.Types, t)
	}

	return f, nil
}

// printInfo writes the archive listing in the selected format.
func printInfo(w io.Writer, header ddpack.MainHeader, entries []ddpack.Entry, flags infoFlags) error {
	if flags.verbose {
		fmt.Fprintln(w, "## HEADER")
		fmt.Fprintf(w, "magic bytes: %q\n", header.Magic[:])
		fmt.Fprintf(w, "toc length: %d\n", header.TOCLength)
		if err := ddpack.ValidateLayout(header, entries); err != nil {
			fmt.Fprintf(w, "layout: %v\n", err)
		} else {
			fmt.Fprintln(w, "layout: ok")
		}
		fmt.Fprintln(w, "## FILES")
	} else {
		suffix := "s"
		if len(entries) == 1 {
			suffix = ""
		}
		fmt.Fprintf(w, "%d file%s\n", len(entries), suffix)
	}

	for _, e := range entries {
		name := e.Name
		if flags.extensions {
			name = e.FileName()
		}

		switch {
		case flags.verbose:
			fmt.Fprintf(w, "offset %d B\tdatetime %s\t%d B\t%s\t%s\n",
				e.Offset, formatTimestamp(e.Timestamp), e.Size, name, e.Type)
		case flags.types:
			fmt.Fprintf(w, "%s: %s, %s\n", name, formatMB(e.Size), e.Type)
		default:
			fmt.Fprintf(w, "%s: %s\n", name, formatMB(e.Size))
		}
	}

	return nil
}

// formatTimestamp renders a stored timestamp as RFC3339 UTC, "-" when unset.
func formatTimestamp(ts uint32) string {
	if ts == 0 {
		return "-"
	}

	return time.Unix(int64(ts), 0).UTC().Format(time.RFC3339)
}

// formatMB renders a byte size in mebibytes.
func formatMB(size uint32) string {
	return fmt.Sprintf("%.3f MB", float64(size)/1024/1024)
}
