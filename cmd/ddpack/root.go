// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ddpack

package main

import (
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/woozymasta/ddpack/internal/logging"
)

var version = "dev"

var (
	logLevel string
	logger   hclog.Logger = hclog.NewNullLogger()
)

var rootCmd = &cobra.Command{
	Use:   "ddpack",
	Short: "Tools for :hx:rg: game asset archives",
	Long: `ddpack works with :hx:rg: asset archives and the formats stored in them.

Supported operations:
  - List archive contents (info)
  - Pack a flat directory into an archive (pack)
  - Unpack an archive, rebuilding folders from folder markers (unpack)
  - Add, replace or delete entries in place (edit)
  - Convert tex2 textures to PNG (imgconv)
  - Report tex2 mipmap layout diagnostics (imginspect)`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logger = newCommandLogger(logLevel, cmd.ErrOrStderr())
	},
}

// newCommandLogger builds the command logger; an empty level falls back to the environment.
func newCommandLogger(level string, output io.Writer) hclog.Logger {
	if level == "" {
		level = logging.GetLogLevel()
	}

	return logging.NewLogger("ddpack", level, logging.GetLogPrefix(), output)
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level (trace, debug, info, warn, error); defaults to $"+logging.EnvLogLevel+" or info")

	rootCmd.AddCommand(
		newInfoCmd(),
		newPackCmd(),
		newUnpackCmd(),
		newEditCmd(),
		newImgconvCmd(),
		newImginspectCmd(),
	)
}
