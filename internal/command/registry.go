// SPDX-License-Identifier: MPL-2.0

package command

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"
)

// ErrDuplicateCommand is returned when a name is registered twice without override.
var ErrDuplicateCommand = errors.New("command already registered")

type (
	// Registry maps command names to CommandSpecs and remembers registration order.
	// It is populated once at start-up and read-only during dispatch.
	Registry struct {
		order []string
		specs map[string]CommandSpec
	}

	// RegisterOption configures a single Register call.
	RegisterOption func(*registerOptions)

	registerOptions struct {
		allowOverride bool
	}
)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]CommandSpec)}
}

// NewRegistryWithOverrides registers defaults in order and then applies
// overrides. An override sharing a default's name takes that default's
// position; new names are appended in the order given.
func NewRegistryWithOverrides(defaults, overrides []CommandSpec) (*Registry, error) {
	r := NewRegistry()
	for _, spec := range defaults {
		if err := r.Register(spec.Name, spec, WithoutOverride()); err != nil {
			return nil, err
		}
	}
	for _, spec := range overrides {
		if err := r.Register(spec.Name, spec); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// WithoutOverride makes Register fail with ErrDuplicateCommand instead of
// replacing an existing entry.
func WithoutOverride() RegisterOption {
	return func(o *registerOptions) {
		o.allowOverride = false
	}
}

// Register inserts spec under name, or replaces the entry already registered
// under that name in place. The spec's Name is set to name.
func (r *Registry) Register(name string, spec CommandSpec, opts ...RegisterOption) error {
	options := registerOptions{allowOverride: true}
	for _, opt := range opts {
		opt(&options)
	}

	spec.Name = name
	if err := spec.Validate(); err != nil {
		return err
	}

	if _, exists := r.specs[name]; exists {
		if !options.allowOverride {
			return fmt.Errorf("%w: %s", ErrDuplicateCommand, name)
		}
	} else {
		r.order = append(r.order, name)
	}
	r.specs[name] = spec
	return nil
}

// All returns every entry in registration order. The returned slice is a copy.
func (r *Registry) All() []CommandSpec {
	out := make([]CommandSpec, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.specs[name])
	}
	return out
}

// Lookup returns the entry registered under name.
func (r *Registry) Lookup(name string) (CommandSpec, bool) {
	spec, ok := r.specs[name]
	return spec, ok
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	return len(r.order)
}
