// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/reclib/reclib/internal/backend"
	"github.com/reclib/reclib/internal/command"
)

func (a *App) findLRCommand() command.CommandSpec {
	return command.CommandSpec{
		Name:        "find-lr",
		Description: "Find a learning rate range.",
		Long: "Train for a number of batches while increasing the learning rate, recording the loss,\n" +
			"to find a usable learning rate range for an experiment.",
		Positionals: []command.PositionalSpec{paramPath()},
		Arguments: []command.ArgumentSpec{
			serializationDirArg(),
			overridesArg(),
			{Name: "start-lr", Kind: command.KindFloat, Default: 1e-05, Help: "learning rate to start the search"},
			{Name: "end-lr", Kind: command.KindFloat, Default: 10, Help: "learning rate up to which search is done"},
			{Name: "num-batches", Kind: command.KindInt, Default: 100, Help: "number of mini-batches to run learning rate finder"},
			{Name: "stopping-factor", Kind: command.KindFloat, Help: "stop the search when the current loss exceeds the best loss recorded by this factor"},
			{Name: "linear", Action: command.ActionStoreTrue, Help: "increase learning rate linearly instead of exponential increase"},
			forceArg(),
		},
		Handler: func(ctx context.Context, args *command.ParsedArguments) error {
			if start, end := args.Float("start-lr"), args.Float("end-lr"); start >= end {
				return fmt.Errorf("--start-lr (%g) must be lower than --end-lr (%g)", start, end)
			}
			if args.Int("num-batches") <= 0 {
				return fmt.Errorf("--num-batches must be positive, got %d", args.Int("num-batches"))
			}

			return a.train(ctx, trainingRun{
				kind:             backend.TaskFindLR,
				paramsPath:       args.Arg(0),
				serializationDir: args.String("serialization-dir"),
				overrides:        args.String("overrides"),
				force:            args.Bool("force"),
				options:          taskOptions(args, "start-lr", "end-lr", "num-batches", "stopping-factor", "linear"),
			})
		},
	}
}
