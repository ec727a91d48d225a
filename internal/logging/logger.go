// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ddpack

// Package logging builds the hclog loggers used by the ddpack command.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Environment variables controlling command logging.
const (
	EnvLogLevel  = "DDPACK_LOG_LEVEL"
	EnvLogPrefix = "DDPACK_LOG_PREFIX"
	EnvJSONLog   = "DDPACK_JSON_LOG"
)

// Defaults used when the environment is unset.
const (
	DefaultLevel  = "info"
	DefaultPrefix = "» "
)

// NewLogger creates an hclog logger writing to output (stderr when nil).
// Plain output lines are prefixed with prefix; JSON output is left untouched.
func NewLogger(name string, level string, prefix string, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}

	jsonFormat := os.Getenv(EnvJSONLog) == "1"
	if !jsonFormat && prefix != "" {
		output = NewPrefixWriter(prefix, output)
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      ParseLevel(level),
		JSONFormat: jsonFormat,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z",
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	})
}

// ParseLevel maps a level name to hclog level, falling back to info.
func ParseLevel(level string) hclog.Level {
	l := hclog.LevelFromString(strings.TrimSpace(level))
	if l == hclog.NoLevel {
		return hclog.Info
	}

	return l
}

// GetLogLevel returns the configured log level from environment.
func GetLogLevel() string {
	level := os.Getenv(EnvLogLevel)
	if level == "" {
		level = DefaultLevel
	}

	return level
}

// GetLogPrefix returns the plain-text line prefix from environment.
// An explicitly empty variable disables the prefix.
func GetLogPrefix() string {
	prefix, ok := os.LookupEnv(EnvLogPrefix)
	if !ok {
		return DefaultPrefix
	}

	return prefix
}
