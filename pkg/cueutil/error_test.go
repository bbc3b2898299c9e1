// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

func TestFormatError(t *testing.T) {
	t.Parallel()

	t.Run("nil error returns nil", func(t *testing.T) {
		t.Parallel()

		if err := FormatError(nil, "test.cue"); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("non-CUE error is wrapped with filepath", func(t *testing.T) {
		t.Parallel()

		original := errors.New("some error")
		err := FormatError(original, "test.cue")
		if !errors.Is(err, original) {
			t.Errorf("error should wrap the original, got: %v", err)
		}
		if !strings.HasPrefix(err.Error(), "test.cue: ") {
			t.Errorf("error should start with the file path, got: %v", err)
		}
	})
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     []string
		expected string
	}{
		{"empty path", []string{}, ""},
		{"single element", []string{"model"}, "model"},
		{"nested path", []string{"dataset", "path"}, "dataset.path"},
		{"array index", []string{"backends", "0", "script"}, "backends[0].script"},
		{"nested arrays", []string{"items", "0", "values", "1"}, "items[0].values[1]"},
		{"leading digits stay a field", []string{"0"}, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := formatPath(tt.path); got != tt.expected {
				t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	if err := CheckFileSize(make([]byte, 100), 100, "test.cue"); err != nil {
		t.Errorf("data at the limit: %v", err)
	}
	if err := CheckFileSize(nil, 100, "test.cue"); err != nil {
		t.Errorf("empty data: %v", err)
	}

	err := CheckFileSize(make([]byte, 101), 100, "test.cue")
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"test.cue", "101", "100"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should contain %q", err, want)
		}
	}
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "single issue with path",
			err:  &ValidationError{FilePath: "config.cue", Issues: []Issue{{Path: "log_level", Message: "conflicting values"}}},
			want: "config.cue: log_level: conflicting values",
		},
		{
			name: "single issue without path",
			err:  &ValidationError{FilePath: "config.cue", Issues: []Issue{{Message: "syntax error"}}},
			want: "config.cue: syntax error",
		},
		{
			name: "several issues",
			err: &ValidationError{FilePath: "x.cue", Issues: []Issue{
				{Path: "a", Message: "bad"},
				{Path: "b", Message: "worse"},
			}},
			want: "x.cue: validation failed:\n  a: bad\n  b: worse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if !errors.Is(tt.err, ErrInvalidCUE) {
				t.Error("ValidationError should wrap ErrInvalidCUE")
			}
		})
	}
}
