// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"path/filepath"
	"strconv"

	"github.com/reclib/reclib/internal/backend"
	"github.com/reclib/reclib/internal/command"
	"github.com/reclib/reclib/internal/experiment"
)

// defaultCommands returns the built-in command table in display order.
func (a *App) defaultCommands() []command.CommandSpec {
	return []command.CommandSpec{
		a.configureCommand(),
		a.trainCommand(),
		a.evaluateCommand(),
		a.predictCommand(),
		a.makeVocabCommand(),
		a.elmoCommand(),
		a.fineTuneCommand(),
		a.dryRunCommand(),
		a.testInstallCommand(),
		a.findLRCommand(),
		a.printResultsCommand(),
	}
}

func serializationDirArg() command.ArgumentSpec {
	return command.ArgumentSpec{
		Name:      "serialization-dir",
		Shorthand: "s",
		Required:  true,
		Help:      "directory in which to save the model and its logs",
	}
}

func overridesArg() command.ArgumentSpec {
	return command.ArgumentSpec{
		Name:      "overrides",
		Shorthand: "o",
		Default:   "",
		Help:      "a JSON structure used to override the experiment parameters",
	}
}

func recoverArg() command.ArgumentSpec {
	return command.ArgumentSpec{
		Name:      "recover",
		Shorthand: "r",
		Action:    command.ActionStoreTrue,
		Default:   false,
		Help:      "recover training from the state in serialization_dir",
	}
}

func forceArg() command.ArgumentSpec {
	return command.ArgumentSpec{
		Name:      "force",
		Shorthand: "f",
		Action:    command.ActionStoreTrue,
		Help:      "overwrite the output directory if it exists",
	}
}

func cudaDeviceArg() command.ArgumentSpec {
	return command.ArgumentSpec{
		Name:    "cuda-device",
		Kind:    command.KindInt,
		Default: -1,
		Help:    "id of GPU to use (if any)",
	}
}

func paramPath() command.PositionalSpec {
	return command.PositionalSpec{Name: "param_path", Help: "path to the experiment file"}
}

func archivePath() command.PositionalSpec {
	return command.PositionalSpec{Name: "archive_file", Help: "serialization directory of a trained model"}
}

// taskOptions collects the flag values a backend may interpret. Absent
// flags and empty strings are left out.
func taskOptions(args *command.ParsedArguments, names ...string) map[string]string {
	opts := make(map[string]string)
	for _, name := range names {
		v, ok := args.Value(name)
		if !ok {
			continue
		}
		var s string
		switch v := v.(type) {
		case string:
			s = v
		case int:
			s = strconv.Itoa(v)
		case float64:
			s = strconv.FormatFloat(v, 'g', -1, 64)
		case bool:
			s = strconv.FormatBool(v)
		default:
			continue
		}
		if s != "" {
			opts[backend.EnvName(name)] = s
		}
	}
	return opts
}

// datasetInputs maps the experiment's data files to task input roles.
func datasetInputs(ds experiment.Dataset) map[string]string {
	in := map[string]string{"train": ds.TrainPath}
	if ds.ValidationPath != "" {
		in["validation"] = ds.ValidationPath
	}
	if ds.TestPath != "" {
		in["test"] = ds.TestPath
	}
	return in
}

// trainerOptions renders the trainer section as task options.
func trainerOptions(exp *experiment.Experiment) map[string]string {
	return map[string]string{
		"DATASET_FORMAT": exp.Dataset.Format,
		"NUM_EPOCHS":     strconv.Itoa(exp.Trainer.NumEpochs),
		"BATCH_SIZE":     strconv.Itoa(exp.Trainer.BatchSize),
		"LEARNING_RATE":  strconv.FormatFloat(exp.Trainer.LearningRate, 'g', -1, 64),
		"SEED":           strconv.Itoa(exp.Trainer.Seed),
	}
}

// runTask hands task to b and logs around it.
func (a *App) runTask(ctx context.Context, model string, b backend.Backend, task backend.Task) error {
	task = absTask(task)
	a.Logger.Info("running backend", "backend", model, "task", task.Kind, "serialization_dir", task.SerializationDir)
	if err := b.Run(ctx, task); err != nil {
		return err
	}
	a.Logger.Debug("backend finished", "backend", model, "task", task.Kind)
	return nil
}

// absTask resolves the task's paths against the working directory. Script
// backends run in their plugin's directory.
func absTask(task backend.Task) backend.Task {
	task.ParamsPath = absPath(task.ParamsPath)
	task.SerializationDir = absPath(task.SerializationDir)

	inputs := make(map[string]string, len(task.Inputs))
	for role, p := range task.Inputs {
		inputs[role] = absPath(p)
	}
	task.Inputs = inputs
	return task
}

func absPath(p string) string {
	if p == "" {
		return p
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
