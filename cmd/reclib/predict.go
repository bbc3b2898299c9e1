// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"

	"github.com/reclib/reclib/internal/backend"
	"github.com/reclib/reclib/internal/command"
)

func (a *App) predictCommand() command.CommandSpec {
	return command.CommandSpec{
		Name:        "predict",
		Description: "Use a trained model to make predictions.",
		Positionals: []command.PositionalSpec{
			archivePath(),
			{Name: "input_file", Help: "path to or url of the input file"},
		},
		Arguments: []command.ArgumentSpec{
			{Name: "output-file", Help: "path to output file"},
			{Name: "weights-file", Help: "a path that overrides which weights file to use"},
			{Name: "batch-size", Kind: command.KindInt, Default: 1, Help: "the batch size to use for processing"},
			{Name: "silent", Action: command.ActionStoreTrue, Help: "do not print output to stdout"},
			cudaDeviceArg(),
			{Name: "use-dataset-reader", Action: command.ActionStoreTrue, Help: "whether to use the dataset reader of the experiment to read the input"},
			overridesArg(),
			{Name: "predictor", Help: "optionally specify a specific predictor to use"},
		},
		Handler: func(ctx context.Context, args *command.ParsedArguments) error {
			return a.runArchived(ctx, backend.TaskPredict, args.Arg(0), args.String("overrides"),
				map[string]string{"input": args.Arg(1)},
				taskOptions(args, "output-file", "weights-file", "batch-size", "silent", "cuda-device", "use-dataset-reader", "predictor"))
		},
	}
}
