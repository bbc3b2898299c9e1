// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/reclib/reclib/internal/command"
)

func (a *App) testInstallCommand() command.CommandSpec {
	return command.CommandSpec{
		Name:        "test-install",
		Description: "Test reclib installation.",
		Long: "Report the version, configuration, plugin search paths and the backends\n" +
			"registered after loading --include-package plugins.",
		Handler: a.runTestInstall,
	}
}

func (a *App) runTestInstall(_ context.Context, _ *command.ParsedArguments) error {
	source := a.Config.Source
	if source == "" {
		source = "defaults"
	}

	fmt.Fprintln(a.stdout, labelStyle.Render("version")+getVersionString())
	fmt.Fprintln(a.stdout, labelStyle.Render("config")+source)
	fmt.Fprintln(a.stdout, labelStyle.Render("log level")+a.Config.LogLevel.String())

	for i, p := range a.SearchPaths {
		label := ""
		if i == 0 {
			label = "plugin paths"
		}
		state := SuccessStyle.Render("ok")
		if info, err := os.Stat(p); err != nil || !info.IsDir() {
			state = WarningStyle.Render("missing")
		}
		fmt.Fprintln(a.stdout, labelStyle.Render(label)+p+" ("+state+")")
	}

	backends := "none"
	if names := a.Backends.Names(); len(names) > 0 {
		backends = strings.Join(names, ", ")
	}
	fmt.Fprintln(a.stdout, labelStyle.Render("backends")+backends)
	fmt.Fprintln(a.stdout, SuccessStyle.Render("reclib is installed correctly"))
	return nil
}
