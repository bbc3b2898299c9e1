// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/reclib/reclib/internal/command"
	"github.com/reclib/reclib/internal/experiment"
	"github.com/reclib/reclib/internal/issue"
	"github.com/reclib/reclib/internal/vocab"
	"github.com/reclib/reclib/pkg/dataset"
)

func (a *App) makeVocabCommand() command.CommandSpec {
	return command.CommandSpec{
		Name:        "make-vocab",
		Description: "Create a vocabulary.",
		Long: "Build the user and item vocabularies of an experiment's training data and\n" +
			"write them to <serialization-dir>/vocabulary.",
		Positionals: []command.PositionalSpec{paramPath()},
		Arguments: []command.ArgumentSpec{
			serializationDirArg(),
			overridesArg(),
			{Name: "min-count", Kind: command.KindInt, Default: 1, Help: "drop ids with fewer ratings"},
		},
		Handler: func(ctx context.Context, args *command.ParsedArguments) error {
			v, err := a.buildVocabulary(args.Arg(0), args.String("overrides"), args.Int("min-count"))
			if err != nil {
				return err
			}

			dir := args.String("serialization-dir")
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			vdir, err := v.Save(dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, SuccessStyle.Render("Vocabulary written to ")+CmdStyle.Render(vdir))
			return nil
		},
	}
}

// buildVocabulary reads the training data of an experiment.
func (a *App) buildVocabulary(paramsPath, overrides string, minCount int) (*vocab.Vocabulary, error) {
	exp, err := experiment.Load(paramsPath, overrides)
	if err != nil {
		return nil, err
	}

	ds, err := readDataset(exp.Dataset.TrainPath, exp.Dataset.Format)
	if err != nil {
		return nil, err
	}
	a.Logger.Debug("read dataset", "path", exp.Dataset.TrainPath, "instances", ds.Len())

	return vocab.Build(ds, minCount), nil
}

func readDataset(path, format string) (*dataset.Dataset, error) {
	ds, err := dataset.ReadFile(path, dataset.Format(format))
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("read dataset").
			WithResource(path).
			WithIssue(issue.DatasetParseErrorId).
			Wrap(err).
			BuildError()
	}
	return ds, nil
}
