// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"

	"github.com/reclib/reclib/internal/command"
	"github.com/reclib/reclib/internal/results"
)

func (a *App) printResultsCommand() command.CommandSpec {
	return command.CommandSpec{
		Name:        "print-results",
		Description: "Print results from reclib serialization directories to the console.",
		Long: "Collect the metrics files under a directory and print the requested keys,\n" +
			"one line per run, with N/A for keys a run does not report.",
		Positionals: []command.PositionalSpec{
			{Name: "path", Help: "path to recursively search for metric files"},
		},
		Arguments: []command.ArgumentSpec{
			{Name: "keys", Shorthand: "k", Action: command.ActionAppend, Required: true, Help: "keys to print from metric files"},
			{Name: "metrics-filename", Shorthand: "m", Default: results.DefaultMetricsFile, Help: "name of the metrics file to inspect"},
		},
		Handler: func(_ context.Context, args *command.ParsedArguments) error {
			runs, err := results.Collect(args.Arg(0), args.String("metrics-filename"))
			if err != nil {
				return err
			}
			return results.Write(a.stdout, runs, args.Strings("keys"))
		},
	}
}
