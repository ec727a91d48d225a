// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ddpack

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/woozymasta/ddpack/tex2"
)

func newImgconvCmd() *cobra.Command {
	var level uint8

	cmd := &cobra.Command{
		Use:   "imgconv FILE [OUTFILE]",
		Short: "Convert a tex2 texture to PNG",
		Long: `Convert a tex2 texture to PNG. Every whole pixel in FILE is read,
even beyond the declared mipmap chain. OUTFILE defaults to FILE with a .png extension.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := pngPath(args[0])
			if len(args) == 2 {
				out = args[1]
			}

			if err := convertTexture(args[0], out, level); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Converted image saved to %s\n", out)
			return nil
		},
	}

	cmd.Flags().Uint8Var(&level, "level", 0, "Mipmap level to export")

	return cmd
}

// convertTexture decodes src and writes the selected level to dst as PNG.
func convertTexture(src, dst string, level uint8) error {
	raw, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	img, leftover, err := tex2.ParseUnbounded(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", src, err)
	}

	if leftover > 0 {
		logger.Warn("ignoring partial trailing pixel", "path", src, "bytes", leftover)
	}

	if err := img.SetLevel(level); err != nil {
		return fmt.Errorf("%s: %w", src, err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return err
	}

	if err := tex2.EncodePNG(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("%s: %w", dst, err)
	}

	return f.Close()
}

// pngPath replaces the extension of path with ".png".
func pngPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".png"
}
