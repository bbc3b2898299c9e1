// SPDX-License-Identifier: MPL-2.0

package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/exp/slices"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

type (
	// ScriptBackend runs a POSIX shell script in the embedded mvdan/sh
	// interpreter. The task is passed through environment variables:
	//
	//	RECLIB_TASK                 task kind ("train", "predict", ...)
	//	RECLIB_PARAMS               experiment or archived config path
	//	RECLIB_SERIALIZATION_DIR    output directory
	//	RECLIB_INPUT_<ROLE>         one per Task.Inputs entry
	//	RECLIB_OPT_<NAME>           one per Task.Options entry
	//
	// Names are upper-cased and every character outside [A-Z0-9] becomes '_'.
	ScriptBackend struct {
		Name string
		// Script is the shell source.
		Script string
		// Dir is the working directory; empty means the current directory.
		Dir string
		// Tasks restricts the accepted task kinds; empty accepts all.
		Tasks []TaskKind
		// Env is added to the inherited environment before the task variables.
		Env map[string]string

		Stdout io.Writer
		Stderr io.Writer
	}

	// ScriptExitError is returned when the script exits with a non-zero status.
	ScriptExitError struct {
		Backend string
		Task    TaskKind
		Code    int
	}
)

func (e *ScriptExitError) Error() string {
	return fmt.Sprintf("backend %s: %s script exited with status %d", e.Backend, e.Task, e.Code)
}

// Validate checks the name, the task kinds and that the script parses.
func (b *ScriptBackend) Validate() error {
	if err := ValidateName(b.Name); err != nil {
		return err
	}
	for _, k := range b.Tasks {
		if err := k.Validate(); err != nil {
			return fmt.Errorf("backend %s: %w", b.Name, err)
		}
	}
	if strings.TrimSpace(b.Script) == "" {
		return fmt.Errorf("%w: backend %s has an empty script", ErrInvalidBackend, b.Name)
	}
	if _, err := syntax.NewParser().Parse(strings.NewReader(b.Script), b.Name); err != nil {
		return fmt.Errorf("%w: backend %s: %w", ErrInvalidBackend, b.Name, err)
	}
	return nil
}

// Supports reports whether the backend accepts kind.
func (b *ScriptBackend) Supports(kind TaskKind) bool {
	return len(b.Tasks) == 0 || slices.Contains(b.Tasks, kind)
}

// Run executes the script for task.
func (b *ScriptBackend) Run(ctx context.Context, task Task) error {
	if !b.Supports(task.Kind) {
		return fmt.Errorf("%w: %s does not handle %s", ErrUnsupportedTask, b.Name, task.Kind)
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(b.Script), b.Name)
	if err != nil {
		return fmt.Errorf("failed to parse script: %w", err)
	}

	stdout, stderr := b.Stdout, b.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(b.environ(task)...)),
		interp.StdIO(nil, stdout, stderr),
	}
	if b.Dir != "" {
		opts = append(opts, interp.Dir(b.Dir))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create interpreter: %w", err)
	}

	if err := runner.Run(ctx, prog); err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			return &ScriptExitError{Backend: b.Name, Task: task.Kind, Code: int(status)}
		}
		return fmt.Errorf("backend %s: script execution failed: %w", b.Name, err)
	}
	return nil
}

// environ builds KEY=VALUE pairs. Later entries win in expand.ListEnviron,
// so task variables override both the process environment and Env.
func (b *ScriptBackend) environ(task Task) []string {
	env := os.Environ()
	env = append(env, sortedPairs("", b.Env)...)
	env = append(env,
		"RECLIB_TASK="+string(task.Kind),
		"RECLIB_PARAMS="+task.ParamsPath,
		"RECLIB_SERIALIZATION_DIR="+task.SerializationDir,
	)
	env = append(env, sortedPairs("RECLIB_INPUT_", task.Inputs)...)
	env = append(env, sortedPairs("RECLIB_OPT_", task.Options)...)
	return env
}

func sortedPairs(prefix string, m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		name := k
		if prefix != "" {
			name = prefix + EnvName(k)
		}
		pairs = append(pairs, name+"="+m[k])
	}
	return pairs
}

// EnvName upper-cases s and replaces every character outside [A-Z0-9]
// with '_': "batch-size" becomes "BATCH_SIZE".
func EnvName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, s)
}
