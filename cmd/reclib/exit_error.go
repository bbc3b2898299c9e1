// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/reclib/reclib/internal/backend"
	"github.com/reclib/reclib/internal/command"
	"github.com/reclib/reclib/internal/issue"
	"github.com/reclib/reclib/internal/plugin"
)

const (
	exitFailure = 1
	exitUsage   = 2
)

// ExitError signals a non-zero exit code without forcing os.Exit in handlers.
type ExitError struct {
	Code int
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// exit renders err and returns the process exit code for it. Usage errors
// were already printed by the parser.
func (a *App) exit(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			a.printError(exitErr.Err)
		}
		return exitErr.Code
	}
	if errors.Is(err, command.ErrUsage) {
		return exitUsage
	}

	a.printError(err)

	var scriptErr *backend.ScriptExitError
	if errors.As(err, &scriptErr) && scriptErr.Code > 0 {
		return scriptErr.Code
	}
	return exitFailure
}

func (a *App) printError(err error) {
	fmt.Fprintln(a.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, a.Config.UI.Verbose))

	id := issueFor(err)
	if id == 0 {
		return
	}
	if entry := issue.Get(id); entry != nil {
		rendered, renderErr := entry.Render(a.Config.UI.ColorScheme.GlamourStyle())
		if renderErr != nil {
			slog.Warn("failed to render issue catalog entry", "issueID", id, "error", renderErr)
			return
		}
		fmt.Fprint(a.stderr, rendered)
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	if ae, ok := issue.Find(err); ok {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// issueFor picks the catalog entry that explains err, or 0.
func issueFor(err error) issue.Id {
	if ae, ok := issue.Find(err); ok && ae.IssueId != 0 {
		return ae.IssueId
	}

	var scriptErr *backend.ScriptExitError
	switch {
	case errors.Is(err, plugin.ErrPluginNotFound):
		return issue.PluginNotFoundId
	case errors.Is(err, command.ErrPluginLoad):
		return issue.PluginLoadFailedId
	case errors.Is(err, backend.ErrBackendNotRegistered):
		return issue.BackendNotRegisteredId
	case errors.As(err, &scriptErr):
		return issue.ScriptExecutionFailedId
	default:
		return 0
	}
}
