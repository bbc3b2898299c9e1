// SPDX-License-Identifier: MPL-2.0

// Package config loads the reclib application configuration with Viper,
// using CUE as the file format.
//
// The file lives at config.cue in the platform configuration directory
// (~/.config/reclib on Linux) and is validated against the embedded #Config
// schema. Built-in defaults apply to unset fields, and RECLIB_* environment
// variables (RECLIB_LOG_LEVEL, RECLIB_PLUGIN_PATHS, RECLIB_UI_VERBOSE, ...)
// override both.
package config
