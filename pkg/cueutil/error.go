// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
)

// ErrInvalidCUE is the sentinel wrapped by every *ValidationError.
var ErrInvalidCUE = errors.New("invalid CUE data")

type (
	// Issue is one problem reported by CUE.
	Issue struct {
		// Path is the JSON path to the invalid value (e.g. "trainer.epochs").
		Path    string
		Message string
	}

	// ValidationError collects the CUE errors for a single source.
	ValidationError struct {
		FilePath string
		Issues   []Issue
	}
)

// Error implements the error interface.
//
// Format: <file-path>: <json-path>: <message>, or one issue per line when
// there are several.
func (e *ValidationError) Error() string {
	lines := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		if is.Path != "" {
			lines = append(lines, is.Path+": "+is.Message)
		} else {
			lines = append(lines, is.Message)
		}
	}

	switch len(lines) {
	case 0:
		return e.FilePath + ": " + ErrInvalidCUE.Error()
	case 1:
		return e.FilePath + ": " + lines[0]
	default:
		return fmt.Sprintf("%s: validation failed:\n  %s", e.FilePath, strings.Join(lines, "\n  "))
	}
}

// Unwrap returns ErrInvalidCUE.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidCUE
}

// FormatError turns a CUE error into a *ValidationError with JSON-path
// prefixes. Errors that did not come from CUE are wrapped with the file path.
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	cueErrs := cueerrors.Errors(err)
	if len(cueErrs) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	verr := &ValidationError{FilePath: filePath}
	for _, e := range cueErrs {
		path := formatPath(cueerrors.Path(e))
		msg := e.Error()

		// CUE sometimes repeats the path at the start of the message.
		if path != "" && strings.HasPrefix(msg, path) {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, path), ":"))
		}
		verr.Issues = append(verr.Issues, Issue{Path: path, Message: msg})
	}
	return verr
}

// formatPath renders ["trainer", "callbacks", "0", "name"] as
// "trainer.callbacks[0].name".
func formatPath(path []string) string {
	var sb strings.Builder
	for i, part := range path {
		if i > 0 && isIndex(part) {
			sb.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(part)
	}
	return sb.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// CheckFileSize reports an error when data is larger than maxSize.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", filename, len(data), maxSize)
	}
	return nil
}
