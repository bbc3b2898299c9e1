// SPDX-License-Identifier: MPL-2.0

package experiment

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/reclib/reclib/internal/issue"
)

// PrepareSerializationDir makes dir ready for a training run.
//
// A missing or empty dir is created. A non-empty dir is rejected unless
// recover is set (it must then hold the archived config.cue of a previous
// run) or force is set (its contents are removed first).
func PrepareSerializationDir(dir string, recover, force bool) error {
	if recover && force {
		return ErrRecoverAndForce
	}

	entries, err := os.ReadDir(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if recover {
			return serializationError(dir, fmt.Errorf("%w: directory does not exist", ErrNothingToRecover))
		}
		return mkdir(dir)
	case err != nil:
		return serializationError(dir, err)
	}

	if len(entries) == 0 {
		if recover {
			return serializationError(dir, fmt.Errorf("%w: directory is empty", ErrNothingToRecover))
		}
		return nil
	}

	switch {
	case recover:
		if _, err := os.Stat(filepath.Join(dir, ArchivedConfig)); err != nil {
			return serializationError(dir, fmt.Errorf("%w: %s is missing", ErrNothingToRecover, ArchivedConfig))
		}
		return nil
	case force:
		if err := os.RemoveAll(dir); err != nil {
			return serializationError(dir, err)
		}
		return mkdir(dir)
	default:
		return serializationError(dir, ErrSerializationDirNotEmpty)
	}
}

func mkdir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return serializationError(dir, err)
	}
	return nil
}

func serializationError(dir string, err error) error {
	ctx := issue.NewErrorContext().
		WithOperation("prepare serialization directory").
		WithResource(dir).
		Wrap(err)
	if errors.Is(err, ErrSerializationDirNotEmpty) {
		ctx = ctx.WithIssue(issue.SerializationDirNotEmptyId).
			WithSuggestion("pass --recover to resume the previous run").
			WithSuggestion("pass --force to discard it")
	}
	return ctx.BuildError()
}
