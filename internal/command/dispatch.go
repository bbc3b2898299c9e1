// SPDX-License-Identifier: MPL-2.0

package command

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

type (
	// PluginLoader loads an external plugin module for its registration side
	// effects. It is supplied by the host application.
	PluginLoader interface {
		LoadPlugin(ctx context.Context, name string) error
	}

	// PluginLoaderFunc adapts a function to the PluginLoader interface.
	PluginLoaderFunc func(ctx context.Context, name string) error

	// Executor runs the parse of a built tree. The default is cobra's
	// ExecuteContext; the process entry point swaps in fang.
	Executor func(ctx context.Context, root *cobra.Command) error

	// Dispatcher turns process arguments into a single handler invocation.
	Dispatcher struct {
		Registry *Registry
		Builder  Builder
		Loader   PluginLoader
		Execute  Executor
		Stdout   io.Writer
		Stderr   io.Writer
		Logger   *slog.Logger
	}
)

// LoadPlugin calls f.
func (f PluginLoaderFunc) LoadPlugin(ctx context.Context, name string) error {
	return f(ctx, name)
}

// Run parses argv and invokes the selected command's handler.
//
// Invocations that select no command print the root help and return nil;
// so do --help and --version, which the parser handles itself. Plugin
// modules named by --include-package are loaded in order before the
// handler runs; the first failure is returned as a *PluginLoadError and the
// handler is not called. Handler errors are returned unchanged.
func (d *Dispatcher) Run(ctx context.Context, argv []string) error {
	if d.Registry == nil {
		return errors.New("dispatcher has no registry")
	}

	tree, err := d.Builder.Build(d.Registry)
	if err != nil {
		return err
	}

	stdout, stderr := d.Stdout, d.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	root := tree.Root
	// cobra falls back to os.Args when given nil.
	root.SetArgs(append([]string{}, argv...))
	root.SetOut(stdout)
	root.SetErr(stderr)

	execute := d.Execute
	if execute == nil {
		execute = func(ctx context.Context, root *cobra.Command) error {
			return root.ExecuteContext(ctx)
		}
	}
	if err := execute(ctx, root); err != nil {
		var usageErr *UsageError
		if errors.As(err, &usageErr) {
			return usageErr
		}
		return &UsageError{Err: err}
	}

	switch tree.selection {
	case selectionNone:
		return nil
	case selectionRoot:
		return root.Help()
	}

	parsed := tree.Parsed()
	name, _ := parsed.Command()
	spec, ok := d.Registry.Lookup(name)
	if !ok {
		return &UsageError{Err: errors.New("unknown command " + name)}
	}

	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	for _, pkg := range parsed.IncludePackages() {
		if d.Loader == nil {
			return &PluginLoadError{Name: pkg, Err: ErrNoPluginLoader}
		}
		if err := d.Loader.LoadPlugin(ctx, pkg); err != nil {
			return &PluginLoadError{Name: pkg, Err: err}
		}
		logger.Debug("loaded plugin", "plugin", pkg, "command", name)
	}

	return spec.Handler(ctx, parsed)
}
