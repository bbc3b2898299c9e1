// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/reclib/reclib/internal/command"
	"github.com/reclib/reclib/internal/config"
	"github.com/reclib/reclib/internal/experiment"
	"github.com/reclib/reclib/pkg/dataset"
)

func (a *App) configureCommand() command.CommandSpec {
	return command.CommandSpec{
		Name:        "configure",
		Description: "Generate a starter experiment file.",
		Long: "Write an experiment file for the given model and dataset format.\n" +
			"Use \"-\" as the output file to print it instead.",
		Arguments: []command.ArgumentSpec{
			{Name: "model", Default: "fm", Help: "backend name the experiment trains"},
			{Name: "dataset-format", Default: string(dataset.MovieLens20M), Help: "ratings file layout (movielens-20m or movielens-1m)"},
			{Name: "output-file", Shorthand: "o", Default: "experiment.cue", Help: "where to write the experiment"},
			forceArg(),
			{Name: "init-config", Action: command.ActionStoreTrue, Help: "also write the default reclib configuration file if there is none"},
		},
		Handler: a.runConfigure,
	}
}

func (a *App) runConfigure(_ context.Context, args *command.ParsedArguments) error {
	if args.Bool("init-config") {
		if err := a.initConfig(); err != nil {
			return err
		}
	}

	src, err := experiment.Template(args.String("model"), args.String("dataset-format"))
	if err != nil {
		return err
	}

	out := args.String("output-file")
	if out == "-" {
		_, err := a.stdout.Write(src)
		return err
	}

	if _, err := os.Stat(out); err == nil && !args.Bool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", out)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(out, src, 0o644); err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, SuccessStyle.Render("Wrote ")+CmdStyle.Render(out))
	return nil
}

// initConfig writes the default configuration unless a config file was
// already loaded.
func (a *App) initConfig() error {
	if a.Config.Source != "" {
		fmt.Fprintln(a.stdout, SubtitleStyle.Render("Using existing configuration ")+CmdStyle.Render(a.Config.Source))
		return nil
	}
	if a.ConfigDir == "" {
		return errors.New("cannot determine the configuration directory")
	}

	path, err := config.Save(config.DefaultConfig(), a.ConfigDir)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, SuccessStyle.Render("Wrote ")+CmdStyle.Render(path))
	return nil
}
