// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"maps"

	"github.com/reclib/reclib/internal/backend"
	"github.com/reclib/reclib/internal/command"
	"github.com/reclib/reclib/internal/experiment"
	"github.com/reclib/reclib/internal/issue"
)

// trainingRun is what train, fine-tune and find-lr have in common: an
// experiment, a fresh (or recovered) serialization directory and a backend.
type trainingRun struct {
	kind             backend.TaskKind
	paramsPath       string
	serializationDir string
	overrides        string
	recover          bool
	force            bool
	inputs           map[string]string
	options          map[string]string
}

func (a *App) trainCommand() command.CommandSpec {
	return command.CommandSpec{
		Name:        "train",
		Description: "Train a model.",
		Long:        "Train the model described by an experiment file and save it to a serialization directory.",
		Positionals: []command.PositionalSpec{paramPath()},
		Arguments: []command.ArgumentSpec{
			serializationDirArg(),
			recoverArg(),
			forceArg(),
			overridesArg(),
		},
		Handler: func(ctx context.Context, args *command.ParsedArguments) error {
			return a.train(ctx, trainingRun{
				kind:             backend.TaskTrain,
				paramsPath:       args.Arg(0),
				serializationDir: args.String("serialization-dir"),
				overrides:        args.String("overrides"),
				recover:          args.Bool("recover"),
				force:            args.Bool("force"),
			})
		},
	}
}

func (a *App) train(ctx context.Context, run trainingRun) error {
	exp, err := experiment.Load(run.paramsPath, run.overrides)
	if err != nil {
		return err
	}

	b, err := a.Backends.Lookup(exp.Model)
	if err != nil {
		return err
	}

	if err := experiment.PrepareSerializationDir(run.serializationDir, run.recover, run.force); err != nil {
		return err
	}

	var archived string
	if run.recover {
		prev, err := experiment.LoadArchived(run.serializationDir)
		if err != nil {
			return err
		}
		if prev.Model != exp.Model {
			return issue.NewErrorContext().
				WithOperation("recover training").
				WithResource(run.serializationDir).
				WithSuggestion(fmt.Sprintf("the previous run used model %q; train into a new directory instead", prev.Model)).
				Wrap(fmt.Errorf("experiment model %q does not match the recovered run", exp.Model)).
				BuildError()
		}
		archived = prev.Source
	} else if archived, err = exp.Save(run.serializationDir); err != nil {
		return err
	}

	inputs := datasetInputs(exp.Dataset)
	maps.Copy(inputs, run.inputs)
	options := trainerOptions(exp)
	maps.Copy(options, run.options)
	if run.recover {
		options["RECOVER"] = "true"
	}

	return a.runTask(ctx, exp.Model, b, backend.Task{
		Kind:             run.kind,
		ParamsPath:       archived,
		SerializationDir: run.serializationDir,
		Inputs:           inputs,
		Options:          options,
	})
}
