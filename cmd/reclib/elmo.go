// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"

	"github.com/reclib/reclib/internal/backend"
	"github.com/reclib/reclib/internal/command"
)

const (
	layersAll     = "all"
	layersTop     = "top"
	layersAverage = "average"
)

func (a *App) elmoCommand() command.CommandSpec {
	return command.CommandSpec{
		Name:        "elmo",
		Description: "Create user and item embeddings with a trained model.",
		Long: "Write the embeddings a trained model produces for the ids in input_file.\n" +
			"By default the layers are averaged; --all keeps every layer and --top only the last.",
		Positionals: []command.PositionalSpec{
			{Name: "input_file", Help: "path to the ids to embed, one per line"},
			{Name: "output_file", Help: "path to the output embeddings file"},
		},
		Arguments: []command.ArgumentSpec{
			{Name: "archive", Required: true, Help: "serialization directory of the trained model"},
			{Name: "all", Action: command.ActionStoreConst, Const: layersAll, Help: "output all layers"},
			{Name: "top", Action: command.ActionStoreConst, Const: layersTop, Help: "output the top layer"},
			{Name: "batch-size", Kind: command.KindInt, Default: 64, Help: "the batch size to use"},
			cudaDeviceArg(),
			{Name: "forget-sentences", Action: command.ActionStoreTrue, Help: "do not keep the ids of the input in the output file"},
			overridesArg(),
		},
		Handler: func(ctx context.Context, args *command.ParsedArguments) error {
			layers := layersAverage
			switch {
			case args.Has("all") && args.Has("top"):
				return errors.New("--all and --top are mutually exclusive")
			case args.Has("all"):
				layers = args.String("all")
			case args.Has("top"):
				layers = args.String("top")
			}

			opts := taskOptions(args, "batch-size", "cuda-device", "forget-sentences")
			opts["LAYERS"] = layers

			return a.runArchived(ctx, backend.TaskEmbed, args.String("archive"), args.String("overrides"),
				map[string]string{"input": args.Arg(0), "output": args.Arg(1)},
				opts)
		},
	}
}
