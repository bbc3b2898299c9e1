// SPDX-License-Identifier: MPL-2.0

// Package logging builds the process slog logger on top of a
// charmbracelet/log handler.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/log"
)

// Options configures New.
type Options struct {
	// Level is one of debug, info, warn, error. Empty means warn.
	Level string
	// Verbose forces the debug level and adds caller information.
	Verbose bool
	// Prefix is printed before every record.
	Prefix string
}

// New returns a slog.Logger that writes styled records to w.
func New(w io.Writer, opts Options) (*slog.Logger, error) {
	level := log.WarnLevel
	if opts.Level != "" {
		parsed, err := log.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}
	if opts.Verbose {
		level = log.DebugLevel
	}

	handler := log.NewWithOptions(w, log.Options{
		Level:        level,
		Prefix:       opts.Prefix,
		ReportCaller: opts.Verbose,
	})
	return slog.New(handler), nil
}

// Install makes logger the slog default and returns a function restoring
// the previous default.
func Install(logger *slog.Logger) (restore func()) {
	previous := slog.Default()
	slog.SetDefault(logger)
	return func() { slog.SetDefault(previous) }
}
