// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"

	"github.com/reclib/reclib/internal/backend"
	"github.com/reclib/reclib/internal/command"
)

func (a *App) fineTuneCommand() command.CommandSpec {
	return command.CommandSpec{
		Name:        "fine-tune",
		Description: "Continue training a model on a new dataset.",
		Long: "Continue training a trained model with the dataset and trainer options of a new experiment.\n" +
			"The model weights come from --model-archive; the new run is written to --serialization-dir.",
		Arguments: []command.ArgumentSpec{
			{Name: "model-archive", Shorthand: "m", Required: true, Help: "serialization directory of the model to fine-tune"},
			{Name: "config-file", Shorthand: "c", Required: true, Help: "experiment file describing the fine-tuning run"},
			serializationDirArg(),
			overridesArg(),
			{Name: "extend-vocab", Action: command.ActionStoreTrue, Help: "extend the model vocabulary with the new dataset"},
			forceArg(),
		},
		Handler: func(ctx context.Context, args *command.ParsedArguments) error {
			return a.train(ctx, trainingRun{
				kind:             backend.TaskFineTune,
				paramsPath:       args.String("config-file"),
				serializationDir: args.String("serialization-dir"),
				overrides:        args.String("overrides"),
				force:            args.Bool("force"),
				inputs:           map[string]string{"archive": args.String("model-archive")},
				options:          taskOptions(args, "extend-vocab"),
			})
		},
	}
}
