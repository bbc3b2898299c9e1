// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "load experiment"},
			expected: "failed to load experiment",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "load experiment", Resource: "exp.cue"},
			expected: "failed to load experiment: exp.cue",
		},
		{
			name:     "full context",
			err:      &ActionableError{Operation: "read dataset", Resource: "ratings.csv", Cause: errors.New("line 3: bad rating")},
			expected: "failed to read dataset: ratings.csv: line 3: bad rating",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("permission denied")
	err := fmt.Errorf("outer: %w", WrapWithContext(cause, "create directory", "out"))

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause through ActionableError")
	}
	ae, ok := Find(err)
	if !ok || ae.Resource != "out" {
		t.Errorf("Find() = %+v, %v", ae, ok)
	}
	if WrapWithContext(nil, "x", "y") != nil {
		t.Error("WrapWithContext(nil) should return nil")
	}
	if _, ok := Find(errors.New("plain")); ok {
		t.Error("Find() should not match a plain error")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	inner := errors.New("no such file")
	err := &ActionableError{
		Operation:   "load plugin",
		Resource:    "my_models",
		Suggestions: []string{"check plugin_paths", "run reclib test-install"},
		Cause:       fmt.Errorf("open manifest: %w", inner),
	}

	short := err.Format(false)
	if !strings.Contains(short, "\n  • check plugin_paths") || !strings.Contains(short, "\n  • run reclib test-install") {
		t.Errorf("Format(false) missing suggestions:\n%s", short)
	}
	if strings.Contains(short, "Error chain") {
		t.Errorf("Format(false) should not include the chain:\n%s", short)
	}

	verbose := err.Format(true)
	if !strings.Contains(verbose, "1. open manifest: no such file") || !strings.Contains(verbose, "2. no such file") {
		t.Errorf("Format(true) missing chain:\n%s", verbose)
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	ctx := NewErrorContext().
		WithOperation("run backend").
		WithResource("fm").
		WithSuggestion("first").
		WithSuggestion("second").
		WithIssue(BackendNotRegisteredId).
		Wrap(cause)

	ae := ctx.Build()
	if ae == nil {
		t.Fatal("Build() returned nil")
	}
	if ae.Operation != "run backend" || ae.Resource != "fm" || len(ae.Suggestions) != 2 || ae.Cause != cause { //nolint:errorlint // identity
		t.Errorf("Build() = %+v", ae)
	}
	if ae.Issue() == nil || ae.Issue().Id() != BackendNotRegisteredId {
		t.Error("Issue() should return the linked catalog entry")
	}

	// Later builder calls must not leak into an already built error.
	ctx.WithSuggestion("third")
	if len(ae.Suggestions) != 2 {
		t.Errorf("built error changed after builder reuse: %v", ae.Suggestions)
	}
}

func TestErrorContext_BuildWithoutOperation(t *testing.T) {
	t.Parallel()

	if NewErrorContext().WithResource("x").Build() != nil {
		t.Error("Build() without operation should return nil")
	}
	if err := NewErrorContext().BuildError(); err != nil {
		t.Errorf("BuildError() without operation = %v, want nil interface", err)
	}
	if (&ActionableError{Operation: "x"}).Issue() != nil {
		t.Error("Issue() without IssueId should be nil")
	}
}
