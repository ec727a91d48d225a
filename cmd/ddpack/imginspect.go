// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ddpack

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/woozymasta/ddpack/tex2"
)

func newImginspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "imginspect FILE...",
		Short: "Report tex2 texture layout diagnostics",
		Long: `Print dimensions, declared mipmap levels, extra pixels beyond the base level
and unused trailing bytes for each tex2 file, followed by one line per mipmap level
with the pixels remaining after it.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var failed int
			for _, path := range args {
				if err := inspectTexture(cmd.OutOrStdout(), path); err != nil {
					logger.Error("inspect failed", "path", path, "error", err)
					failed++
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d file(s) could not be inspected", failed, len(args))
			}

			return nil
		},
	}
}

// inspectTexture prints the tex2 report of one file.
func inspectTexture(w io.Writer, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	r, err := tex2.Inspect(raw)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s: %dx%d (%d), levels %#X, extra pixels: %d, unused: %d\n",
		path, r.Header.Width, r.Header.Height, r.BasePixels, r.Header.MipmapLevels, r.ExtraPixels, r.UnusedBytes)

	for _, l := range r.Levels {
		fmt.Fprintf(w, "- %dx%d: %d pixels, remaining: %d\n", l.Width, l.Height, l.Pixels, l.Remaining)
	}

	if r.MissingPixels > 0 {
		fmt.Fprintf(w, "- missing %d declared pixel(s)\n", r.MissingPixels)
	}

	return nil
}
