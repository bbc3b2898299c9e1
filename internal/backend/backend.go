// SPDX-License-Identifier: MPL-2.0

// Package backend holds the model backends that commands delegate to.
//
// Commands never implement training or inference themselves. They build a
// Task and hand it to the Backend named by the experiment; backends are
// registered by plugins while --include-package modules load.
package backend

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

const (
	TaskTrain    TaskKind = "train"
	TaskEvaluate TaskKind = "evaluate"
	TaskPredict  TaskKind = "predict"
	TaskFineTune TaskKind = "fine-tune"
	TaskFindLR   TaskKind = "find-lr"
	TaskEmbed    TaskKind = "embed"
)

var (
	// ErrDuplicateBackend is returned when a backend name is registered twice.
	ErrDuplicateBackend = errors.New("backend already registered")
	// ErrBackendNotRegistered is the sentinel wrapped by NotRegisteredError.
	ErrBackendNotRegistered = errors.New("backend not registered")
	// ErrInvalidBackend is returned for malformed backend definitions.
	ErrInvalidBackend = errors.New("invalid backend")
	// ErrUnsupportedTask is returned when a backend does not handle a task kind.
	ErrUnsupportedTask = errors.New("task not supported by backend")

	backendNameRE = regexp.MustCompile(`^[a-z][a-z0-9_]*(-[a-z0-9_]+)*$`)
)

type (
	// TaskKind names the operation a backend is asked to perform.
	TaskKind string

	// Task is one unit of work handed to a backend.
	Task struct {
		Kind TaskKind
		// ParamsPath is the experiment file (train, fine-tune, find-lr) or the
		// archived config.cue (evaluate, predict, embed).
		ParamsPath string
		// SerializationDir receives the backend's outputs.
		SerializationDir string
		// Inputs names data files by role ("input", "evaluation", "vocabulary").
		Inputs map[string]string
		// Options carries command flags that the backend interprets.
		Options map[string]string
	}

	// Backend runs tasks for one model type.
	Backend interface {
		Run(ctx context.Context, task Task) error
	}

	// Func adapts a function to the Backend interface.
	Func func(ctx context.Context, task Task) error

	// NotRegisteredError is returned by Registry.Lookup.
	NotRegisteredError struct {
		Name      string
		Available []string
	}
)

// Run calls f.
func (f Func) Run(ctx context.Context, task Task) error {
	return f(ctx, task)
}

// Validate rejects unknown task kinds.
func (k TaskKind) Validate() error {
	switch k {
	case TaskTrain, TaskEvaluate, TaskPredict, TaskFineTune, TaskFindLR, TaskEmbed:
		return nil
	default:
		return fmt.Errorf("%w: unknown task kind %q", ErrInvalidBackend, k)
	}
}

func (e *NotRegisteredError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("backend %q is not registered (no backends loaded)", e.Name)
	}
	return fmt.Sprintf("backend %q is not registered (available: %v)", e.Name, e.Available)
}

func (e *NotRegisteredError) Unwrap() error { return ErrBackendNotRegistered }

// ValidateName checks that name is a lower-case identifier such as
// "fm" or "deep-fm".
func ValidateName(name string) error {
	if !backendNameRE.MatchString(name) {
		return fmt.Errorf("%w: name %q must be lower-case letters, digits, '_' or '-'", ErrInvalidBackend, name)
	}
	return nil
}
