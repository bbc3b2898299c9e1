// SPDX-License-Identifier: MPL-2.0

package command

import (
	"errors"
	"fmt"
)

var (
	// ErrUsage is the sentinel error wrapped by UsageError.
	ErrUsage = errors.New("usage error")
	// ErrPluginLoad is the sentinel error wrapped by PluginLoadError.
	ErrPluginLoad = errors.New("plugin load failed")
	// ErrNoPluginLoader is returned when plugins are requested but the
	// dispatcher has no loader configured.
	ErrNoPluginLoader = errors.New("no plugin loader configured")
)

type (
	// UsageError reports malformed or unrecognized command-line arguments.
	UsageError struct {
		// Command is the command whose arguments were rejected ("" for the root).
		Command string
		Err     error
	}

	// PluginLoadError reports a plugin module that could not be loaded. The
	// handler of the selected command has not run when this is returned.
	PluginLoadError struct {
		Name string
		Err  error
	}
)

// Error implements the error interface.
func (e *UsageError) Error() string {
	if e.Command == "" {
		return e.Err.Error()
	}
	return e.Command + ": " + e.Err.Error()
}

// Unwrap returns the parser error.
func (e *UsageError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrUsage) match any UsageError.
func (e *UsageError) Is(target error) bool { return target == ErrUsage }

// Error implements the error interface.
func (e *PluginLoadError) Error() string {
	return fmt.Sprintf("failed to load plugin %q: %v", e.Name, e.Err)
}

// Unwrap returns the loader error.
func (e *PluginLoadError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrPluginLoad) match any PluginLoadError.
func (e *PluginLoadError) Is(target error) bool { return target == ErrPluginLoad }
