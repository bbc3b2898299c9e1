// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidLogLevel is the sentinel wrapped by InvalidLogLevelError.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidColorScheme is the sentinel wrapped by InvalidColorSchemeError.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidPluginPath is returned for empty or whitespace-only plugin paths.
	ErrInvalidPluginPath = errors.New("invalid plugin path")
)

type (
	// LogLevel is the minimum level of emitted log records.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		// Verbose prints full error chains and debug logs.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// ColorScheme selects the glamour style for issue pages.
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
	}

	// Config is the reclib application configuration.
	Config struct {
		LogLevel LogLevel `json:"log_level" mapstructure:"log_level"`
		// PluginPaths are searched, in order, for plugin manifest directories.
		PluginPaths []string `json:"plugin_paths" mapstructure:"plugin_paths"`
		UI          UIConfig `json:"ui" mapstructure:"ui"`

		// Source is the file the configuration was read from, or "" when
		// only defaults and environment variables apply.
		Source string `json:"-" mapstructure:"-"`
	}
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:    LogLevelWarn,
		PluginPaths: []string{},
		UI: UIConfig{
			Verbose:     false,
			ColorScheme: ColorSchemeAuto,
		},
	}
}

func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// Validate returns an *InvalidLogLevelError for unknown levels.
func (l LogLevel) Validate() error {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return nil
	default:
		return &InvalidLogLevelError{Value: l}
	}
}

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// Validate returns an *InvalidColorSchemeError for unknown schemes.
func (c ColorScheme) Validate() error {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return &InvalidColorSchemeError{Value: c}
	}
}

// String returns the string representation of the ColorScheme.
func (c ColorScheme) String() string { return string(c) }

// GlamourStyle maps the scheme to a glamour style name.
func (c ColorScheme) GlamourStyle() string {
	switch c {
	case ColorSchemeDark:
		return "dark"
	case ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}

// Validate checks every field. Values coming from environment variables
// bypass the CUE schema, so loading always calls Validate as well.
func (c *Config) Validate() error {
	var errs []error
	if err := c.LogLevel.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.UI.ColorScheme.Validate(); err != nil {
		errs = append(errs, err)
	}
	for i, p := range c.PluginPaths {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, fmt.Errorf("plugin_paths[%d]: %w", i, ErrInvalidPluginPath))
		}
	}
	return errors.Join(errs...)
}
