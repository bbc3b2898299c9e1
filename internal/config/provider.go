// SPDX-License-Identifier: MPL-2.0

package config

import "context"

type (
	// LoadOptions selects where configuration is read from. The zero value
	// reads config.cue from ConfigDir.
	LoadOptions struct {
		// ConfigFilePath names the file to load; it must exist.
		ConfigFilePath string
		// ConfigDirPath replaces ConfigDir in the lookup.
		ConfigDirPath string
	}

	// Provider loads the application configuration.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Config, error)
	}

	// ProviderFunc adapts a function to the Provider interface.
	ProviderFunc func(ctx context.Context, opts LoadOptions) (*Config, error)
)

// Load calls f.
func (f ProviderFunc) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	return f(ctx, opts)
}

// NewProvider returns the Provider that layers defaults, the config file
// and RECLIB_* environment variables.
func NewProvider() Provider {
	return ProviderFunc(loadWithOptions)
}
