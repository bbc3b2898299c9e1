// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/reclib/reclib/internal/backend"
	"github.com/reclib/reclib/internal/config"
	"github.com/reclib/reclib/internal/logging"
	"github.com/reclib/reclib/internal/plugin"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: every command handler is a method on App.
	App struct {
		Config   *config.Config
		Backends *backend.Registry
		Plugins  plugin.Chain
		Logger   *slog.Logger
		// SearchPaths are the plugin manifest directories, in lookup order.
		SearchPaths []string
		// ConfigDir is where the config file and the default plugins
		// directory live. Empty when it cannot be determined.
		ConfigDir string

		stdout io.Writer
		stderr io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config        config.Provider
		ConfigOptions config.LoadOptions
		Backends      *backend.Registry
		Catalog       *plugin.Catalog
		Stdout        io.Writer
		Stderr        io.Writer
	}
)

// NewApp builds an App. A configuration that fails to load is reported on
// stderr and replaced by the defaults; it never prevents a command from
// running.
func NewApp(ctx context.Context, deps Dependencies) *App {
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Backends == nil {
		deps.Backends = backend.NewRegistry()
	}
	if deps.Catalog == nil {
		deps.Catalog = plugin.DefaultCatalog
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}

	cfg, cfgErr := deps.Config.Load(ctx, deps.ConfigOptions)
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if cfgErr != nil {
		fmt.Fprintln(deps.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(cfgErr, cfg.UI.Verbose))
	}

	logger, err := logging.New(deps.Stderr, logging.Options{
		Level:   cfg.LogLevel.String(),
		Verbose: cfg.UI.Verbose,
		Prefix:  defaultProg,
	})
	if err != nil {
		// The level was validated with the config; fall back to the default level.
		logger, _ = logging.New(deps.Stderr, logging.Options{Prefix: defaultProg})
	}

	cfgDir := deps.ConfigOptions.ConfigDirPath
	if cfgDir == "" {
		if dir, err := config.ConfigDir(); err == nil {
			cfgDir = dir
		}
	}

	app := &App{
		Config:      cfg,
		Backends:    deps.Backends,
		Logger:      logger,
		SearchPaths: pluginSearchPaths(cfg, cfgDir),
		ConfigDir:   cfgDir,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
	}

	host := &plugin.Host{
		Backends: app.Backends,
		Logger:   logger,
		Stdout:   deps.Stdout,
		Stderr:   deps.Stderr,
	}
	app.Plugins = plugin.Chain{
		plugin.NewCatalogLoader(deps.Catalog, host),
		&plugin.ManifestLoader{SearchPaths: app.SearchPaths, Host: host},
	}
	return app
}

// pluginSearchPaths returns the configured plugin_paths followed by the
// plugins directory next to the config file.
func pluginSearchPaths(cfg *config.Config, cfgDir string) []string {
	paths := append([]string{}, cfg.PluginPaths...)
	if cfgDir != "" {
		paths = append(paths, filepath.Join(cfgDir, "plugins"))
	}
	return paths
}
