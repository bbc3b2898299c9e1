// SPDX-License-Identifier: MPL-2.0

package command

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// DefaultConfigurationCommand is the command that does not receive the
// --include-package flag: it imports whatever it needs by itself.
const DefaultConfigurationCommand = "configure"

const (
	selectionNone selection = iota
	selectionRoot
	selectionCommand
)

type (
	selection int

	// Builder turns a Registry into a Cobra command tree.
	Builder struct {
		// Prog is the root command name shown in usage lines.
		Prog string
		// Version is printed by --version as "<prog> <version>".
		Version string
		// Description is the root command's short help.
		Description string
		// Long is the root command's detailed help.
		Long string
		// ConfigurationCommand names the command that does not get --include-package.
		// Empty means DefaultConfigurationCommand.
		ConfigurationCommand string
	}

	// Tree is a freshly built parser tree plus the selection recorded by its
	// RunE functions. A Tree is good for exactly one parse.
	Tree struct {
		Root *cobra.Command

		selection selection
		parsed    *ParsedArguments
	}
)

// Build creates a new parser tree. Every call creates new flag sets, so
// default containers are never shared between parses.
func (b Builder) Build(reg *Registry) (*Tree, error) {
	prog := b.Prog
	if prog == "" {
		prog = "reclib"
	}
	configCmd := b.ConfigurationCommand
	if configCmd == "" {
		configCmd = DefaultConfigurationCommand
	}

	t := &Tree{}
	root := &cobra.Command{
		Use:           prog,
		Short:         b.Description,
		Long:          b.Long,
		Version:       b.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			t.selection = selectionRoot
			return nil
		},
	}
	root.SetVersionTemplate("{{.Name}} {{.Version}}\n")
	root.AddGroup(&cobra.Group{ID: "commands", Title: "Commands:"})

	for _, spec := range reg.All() {
		sub, err := b.subcommand(t, spec, spec.Name != configCmd)
		if err != nil {
			return nil, err
		}
		root.AddCommand(sub)
	}

	t.Root = root
	return t, nil
}

// Parsed returns the arguments recorded for the selected command, or nil
// when no command ran.
func (t *Tree) Parsed() *ParsedArguments {
	return t.parsed
}

func (b Builder) subcommand(t *Tree, spec CommandSpec, injectPlugins bool) (*cobra.Command, error) {
	minArgs, maxArgs := 0, len(spec.Positionals)
	for _, pos := range spec.Positionals {
		if !pos.Optional {
			minArgs++
		}
	}

	sub := &cobra.Command{
		Use:     useLine(spec),
		Short:   spec.Description,
		Long:    longHelp(spec),
		GroupID: "commands",
		Args:    cobra.RangeArgs(minArgs, maxArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := resolve(cmd.Flags(), spec, args, injectPlugins)
			if err != nil {
				return &UsageError{Command: spec.Name, Err: err}
			}
			t.selection = selectionCommand
			t.parsed = parsed
			return nil
		},
	}

	fs := sub.Flags()
	for _, arg := range spec.Arguments {
		defineFlag(fs, arg)
		if arg.Required {
			if err := sub.MarkFlagRequired(arg.Name); err != nil {
				return nil, fmt.Errorf("mark --%s required on %s: %w", arg.Name, spec.Name, err)
			}
		}
	}
	if injectPlugins {
		fs.StringArray(IncludePackageFlag, []string{}, "additional packages to include")
	}

	return sub, nil
}

// defineFlag registers arg on fs. The help text carries the default
// annotation, so pflag's own "(default ...)" suffix is suppressed.
func defineFlag(fs *pflag.FlagSet, arg ArgumentSpec) {
	usage := AnnotateHelp(arg.Action, arg.Default, arg.Help)

	switch arg.Action {
	case ActionStoreTrue:
		def, _ := arg.Default.(bool)
		fs.BoolP(arg.Name, arg.Shorthand, def, usage)
	case ActionStoreFalse:
		def := true
		if b, ok := arg.Default.(bool); ok {
			def = b
		}
		fs.BoolP(arg.Name, arg.Shorthand, def, usage)
		fs.Lookup(arg.Name).NoOptDefVal = "false"
	case ActionStoreConst:
		fs.BoolP(arg.Name, arg.Shorthand, false, usage)
	case ActionAppend:
		switch arg.Kind {
		case KindInt:
			def, _ := arg.Default.([]int)
			fs.IntSliceP(arg.Name, arg.Shorthand, append([]int{}, def...), usage)
		default:
			def, _ := arg.Default.([]string)
			fs.StringArrayP(arg.Name, arg.Shorthand, append([]string{}, def...), usage)
		}
	default:
		switch arg.Kind {
		case KindInt:
			def, _ := arg.Default.(int)
			fs.IntP(arg.Name, arg.Shorthand, def, usage)
		case KindFloat:
			fs.Float64P(arg.Name, arg.Shorthand, toFloat(arg.Default), usage)
		case KindBool:
			def, _ := arg.Default.(bool)
			fs.BoolP(arg.Name, arg.Shorthand, def, usage)
		default:
			def, _ := arg.Default.(string)
			fs.StringP(arg.Name, arg.Shorthand, def, usage)
		}
	}

	hidePflagDefault(fs.Lookup(arg.Name))
}

// hidePflagDefault sets DefValue to the zero rendering of the flag type,
// which is what pflag checks before printing its own default suffix.
func hidePflagDefault(f *pflag.Flag) {
	switch f.Value.Type() {
	case "string":
		f.DefValue = ""
	case "bool":
		f.DefValue = "false"
	case "stringArray", "intSlice":
		f.DefValue = "[]"
	default:
		f.DefValue = "0"
	}
}

// resolve reads the parsed flag set back into a ParsedArguments.
func resolve(fs *pflag.FlagSet, spec CommandSpec, positionals []string, injectPlugins bool) (*ParsedArguments, error) {
	p := newParsedArguments()
	p.command = spec.Name
	p.selected = true
	p.positionals = append([]string{}, positionals...)

	for _, arg := range spec.Arguments {
		changed := fs.Changed(arg.Name)

		switch arg.Action {
		case ActionStoreTrue, ActionStoreFalse:
			v, err := fs.GetBool(arg.Name)
			if err != nil {
				return nil, err
			}
			p.values[arg.Name] = v

		case ActionStoreConst:
			on, err := fs.GetBool(arg.Name)
			if err != nil {
				return nil, err
			}
			if on {
				p.values[arg.Name] = arg.Const
			} else if arg.Default != nil {
				p.values[arg.Name] = arg.Default
			}

		case ActionAppend:
			if !changed && arg.Default == nil {
				continue
			}
			var (
				v   any
				err error
			)
			if arg.Kind == KindInt {
				v, err = fs.GetIntSlice(arg.Name)
			} else {
				v, err = fs.GetStringArray(arg.Name)
			}
			if err != nil {
				return nil, err
			}
			p.values[arg.Name] = v

		default:
			if !changed && arg.Default == nil {
				continue
			}
			v, err := storedValue(fs, arg)
			if err != nil {
				return nil, err
			}
			p.values[arg.Name] = v
		}
	}

	if injectPlugins {
		pkgs, err := fs.GetStringArray(IncludePackageFlag)
		if err != nil {
			return nil, err
		}
		p.includePackages = append([]string{}, pkgs...)
	}

	return p, nil
}

func storedValue(fs *pflag.FlagSet, arg ArgumentSpec) (any, error) {
	switch arg.Kind {
	case KindInt:
		return fs.GetInt(arg.Name)
	case KindFloat:
		return fs.GetFloat64(arg.Name)
	case KindBool:
		return fs.GetBool(arg.Name)
	default:
		return fs.GetString(arg.Name)
	}
}

func toFloat(v any) float64 {
	switch f := v.(type) {
	case float64:
		return f
	case int:
		return float64(f)
	default:
		return 0
	}
}

func useLine(spec CommandSpec) string {
	var sb strings.Builder
	sb.WriteString(spec.Name)
	for _, pos := range spec.Positionals {
		if pos.Optional {
			fmt.Fprintf(&sb, " [%s]", pos.Name)
		} else {
			fmt.Fprintf(&sb, " <%s>", pos.Name)
		}
	}
	return sb.String()
}

func longHelp(spec CommandSpec) string {
	long := spec.Long
	if long == "" {
		long = spec.Description
	}
	if len(spec.Positionals) == 0 {
		return long
	}

	var sb strings.Builder
	sb.WriteString(long)
	sb.WriteString("\n\nArguments:\n")
	for _, pos := range spec.Positionals {
		fmt.Fprintf(&sb, "  %-20s %s\n", pos.Name, pos.Help)
	}
	return strings.TrimRight(sb.String(), "\n")
}
