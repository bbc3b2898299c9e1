// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/reclib/reclib/internal/command"
	"github.com/reclib/reclib/internal/logging"
)

const defaultProg = "reclib"

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

type (
	// Option customizes Execute and Run.
	Option func(*options)

	options struct {
		prog      string
		overrides []command.CommandSpec
		deps      Dependencies
	}
)

// WithProg sets the program name shown in usage and version output.
func WithProg(prog string) Option {
	return func(o *options) { o.prog = prog }
}

// WithCommandOverrides adds commands to the default table. A command with
// the name of a default command replaces it in place.
func WithCommandOverrides(specs ...command.CommandSpec) Option {
	return func(o *options) { o.overrides = append(o.overrides, specs...) }
}

// WithDependencies replaces the production services used by the App.
func WithDependencies(deps Dependencies) Option {
	return func(o *options) { o.deps = deps }
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the command line with os.Args and exits with a non-zero
// status on failure. This is called by main.main().
func Execute(opts ...Option) {
	if code := Run(context.Background(), os.Args[1:], opts...); code != 0 {
		os.Exit(code)
	}
}

// Run dispatches args and returns the process exit code. Errors are
// rendered to the App's stderr.
func Run(ctx context.Context, args []string, opts ...Option) int {
	o := options{prog: defaultProg}
	for _, opt := range opts {
		opt(&o)
	}

	app := NewApp(ctx, o.deps)
	restore := logging.Install(app.Logger)
	defer restore()

	reg, err := command.NewRegistryWithOverrides(app.defaultCommands(), o.overrides)
	if err != nil {
		return app.exit(err)
	}

	d := &command.Dispatcher{
		Registry: reg,
		Builder: command.Builder{
			Prog:        o.prog,
			Version:     getVersionString(),
			Description: "Configure, train and evaluate recommendation models",
			Long: TitleStyle.Render(o.prog) + SubtitleStyle.Render(" - configure, train and evaluate recommendation models") + `

Models are provided by plugins. Load them with --include-package, or place
plugin manifests under one of the configured plugin_paths.

` + SubtitleStyle.Render("Examples:") + `
  ` + o.prog + ` configure --model fm -o experiment.cue
  ` + o.prog + ` train experiment.cue -s runs/fm --include-package my_models
  ` + o.prog + ` evaluate runs/fm data/test.csv --include-package my_models`,
		},
		Loader:  app.Plugins,
		Execute: fangExecutor,
		Stdout:  app.stdout,
		Stderr:  app.stderr,
		Logger:  app.Logger,
	}

	return app.exit(d.Run(ctx, args))
}

// fangExecutor runs the parse through fang for styled help and errors.
// fang overrides root.Version, so the version is passed explicitly.
func fangExecutor(ctx context.Context, root *cobra.Command) error {
	return fang.Execute(
		ctx,
		root,
		fang.WithVersion(root.Version),
		fang.WithNotifySignal(os.Interrupt),
	)
}
