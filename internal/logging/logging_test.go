// SPDX-License-Identifier: MPL-2.0

package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		opts      Options
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"default is warn", Options{}, false, false, true},
		{"info", Options{Level: "info"}, false, true, true},
		{"upper case", Options{Level: "ERROR"}, false, false, false},
		{"verbose wins", Options{Level: "error", Verbose: true}, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger, err := New(&buf, tt.opts)
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			logger.Debug("debug-record")
			logger.Info("info-record")
			logger.Warn("warn-record", "plugin", "my.models")

			out := buf.String()
			check := func(msg string, want bool) {
				if got := strings.Contains(out, msg); got != want {
					t.Errorf("output contains %q = %v, want %v:\n%s", msg, got, want, out)
				}
			}
			check("debug-record", tt.wantDebug)
			check("info-record", tt.wantInfo)
			check("warn-record", tt.wantWarn)
			if tt.wantWarn && !strings.Contains(out, "my.models") {
				t.Errorf("attributes missing:\n%s", out)
			}
		})
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	t.Parallel()

	if _, err := New(&bytes.Buffer{}, Options{Level: "chatty"}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestInstall(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, Options{Level: "info"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	before := slog.Default()
	restore := Install(logger)
	slog.Info("through-default")
	restore()

	if slog.Default() != before {
		t.Error("restore did not reinstate the previous default")
	}
	if !strings.Contains(buf.String(), "through-default") {
		t.Errorf("default logger not installed:\n%s", buf.String())
	}
}
