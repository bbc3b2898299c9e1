// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"maps"

	"github.com/reclib/reclib/internal/backend"
	"github.com/reclib/reclib/internal/command"
	"github.com/reclib/reclib/internal/experiment"
)

func (a *App) evaluateCommand() command.CommandSpec {
	return command.CommandSpec{
		Name:        "evaluate",
		Description: "Evaluate the specified model + dataset.",
		Positionals: []command.PositionalSpec{
			archivePath(),
			{Name: "input_file", Help: "path to the file containing the evaluation data"},
		},
		Arguments: []command.ArgumentSpec{
			{Name: "output-file", Help: "path to output the metrics to"},
			{Name: "batch-size", Kind: command.KindInt, Help: "if non-empty, the batch size to use during evaluation"},
			cudaDeviceArg(),
			overridesArg(),
		},
		Handler: func(ctx context.Context, args *command.ParsedArguments) error {
			return a.runArchived(ctx, backend.TaskEvaluate, args.Arg(0), args.String("overrides"),
				map[string]string{"input": args.Arg(1)},
				taskOptions(args, "output-file", "batch-size", "cuda-device"))
		},
	}
}

// runArchived runs a task against a trained model: the experiment is read
// back from the config.cue snapshot of the serialization directory.
func (a *App) runArchived(ctx context.Context, kind backend.TaskKind, archive, overrides string, inputs, options map[string]string) error {
	exp, err := experiment.LoadArchived(archive)
	if err != nil {
		return err
	}
	if overrides != "" {
		// Validate the overrides against the archived experiment before the
		// backend sees them.
		if exp, err = experiment.Load(exp.Source, overrides); err != nil {
			return err
		}
		options["OVERRIDES"] = overrides
	}

	b, err := a.Backends.Lookup(exp.Model)
	if err != nil {
		return err
	}

	in := map[string]string{"archive": archive}
	maps.Copy(in, inputs)

	return a.runTask(ctx, exp.Model, b, backend.Task{
		Kind:             kind,
		ParamsPath:       exp.Source,
		SerializationDir: archive,
		Inputs:           in,
		Options:          options,
	})
}
