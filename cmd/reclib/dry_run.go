// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/reclib/reclib/internal/command"
	"github.com/reclib/reclib/internal/vocab"
)

func (a *App) dryRunCommand() command.CommandSpec {
	return command.CommandSpec{
		Name:        "dry-run",
		Description: "Create a vocabulary, compute dataset statistics and other training utilities.",
		Positionals: []command.PositionalSpec{paramPath()},
		Arguments: []command.ArgumentSpec{
			serializationDirArg(),
			overridesArg(),
		},
		Handler: func(ctx context.Context, args *command.ParsedArguments) error {
			v, err := a.buildVocabulary(args.Arg(0), args.String("overrides"), 1)
			if err != nil {
				return err
			}

			printStats(a, v)

			dir := args.String("serialization-dir")
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			_, err = v.Save(dir)
			return err
		},
	}
}

func printStats(a *App, v *vocab.Vocabulary) {
	ratio := 0.0
	if v.Meta.Instances > 0 {
		ratio = float64(v.Meta.Positives) / float64(v.Meta.Instances)
	}

	rows := [][2]string{
		{"format", v.Meta.Format},
		{"instances", strconv.Itoa(v.Meta.Instances)},
		{"positives", fmt.Sprintf("%d (%.2f%%)", v.Meta.Positives, ratio*100)},
		{"users", strconv.Itoa(len(v.Users.Tokens))},
		{"items", strconv.Itoa(len(v.Items.Tokens))},
		{"user field size", strconv.Itoa(v.Users.FieldSize)},
		{"item field size", strconv.Itoa(v.Items.FieldSize)},
	}

	fmt.Fprintln(a.stdout, TitleStyle.Render("Dataset statistics"))
	for _, r := range rows {
		fmt.Fprintln(a.stdout, labelStyle.Render(r[0])+r[1])
	}
}
