// SPDX-License-Identifier: MPL-2.0

// Package plugin resolves --include-package names to registrations.
//
// A plugin is identified by a dotted name such as "my_models.readers".
// Loading a plugin runs its registrations against a Host, which is how
// plugins add model backends. Three loaders are provided: a Catalog of
// in-process registrations (populated from init functions), a
// ManifestLoader reading plugin.cue or plugin.toml files from search
// directories, and a Chain that tries loaders in order.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/reclib/reclib/internal/backend"
)

var (
	// ErrPluginNotFound is the sentinel wrapped by NotFoundError.
	ErrPluginNotFound = errors.New("plugin not found")
	// ErrInvalidPluginName is returned for malformed plugin names.
	ErrInvalidPluginName = errors.New("invalid plugin name")
	// ErrInvalidManifest is returned for manifests that fail validation.
	ErrInvalidManifest = errors.New("invalid plugin manifest")

	segmentRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

type (
	// Name is a dotted plugin module name ("pkg", "pkg.sub").
	Name string

	// Loader loads one plugin by name.
	Loader interface {
		LoadPlugin(ctx context.Context, name string) error
	}

	// Host is what a plugin registers into.
	Host struct {
		Backends *backend.Registry
		Logger   *slog.Logger
		// Stdout and Stderr are handed to script backends.
		Stdout io.Writer
		Stderr io.Writer
	}

	// NotFoundError is returned when no loader knows a name.
	NotFoundError struct {
		Name     string
		Searched []string
	}
)

// Validate checks that n is a non-empty sequence of identifiers joined by dots.
func (n Name) Validate() error {
	if n == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidPluginName)
	}
	for _, seg := range strings.Split(string(n), ".") {
		if !segmentRE.MatchString(seg) {
			return fmt.Errorf("%w: %q (segment %q is not an identifier)", ErrInvalidPluginName, n, seg)
		}
	}
	return nil
}

// Segments splits the name at dots.
func (n Name) Segments() []string {
	return strings.Split(string(n), ".")
}

// Covers reports whether other is n itself or a name below it.
func (n Name) Covers(other Name) bool {
	return other == n || strings.HasPrefix(string(other), string(n)+".")
}

// String returns the name.
func (n Name) String() string { return string(n) }

func (e *NotFoundError) Error() string {
	if len(e.Searched) == 0 {
		return fmt.Sprintf("plugin %q not found", e.Name)
	}
	return fmt.Sprintf("plugin %q not found (searched: %s)", e.Name, strings.Join(e.Searched, ", "))
}

func (e *NotFoundError) Unwrap() error { return ErrPluginNotFound }

func (h *Host) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
