// SPDX-License-Identifier: MPL-2.0

package command

import (
	"golang.org/x/exp/slices"
)

// ParsedArguments is the result of parsing one invocation. It records which
// command was selected (if any), the resolved flag values and the positional
// arguments. A new value is produced for every parse; nothing is shared
// between invocations.
type ParsedArguments struct {
	command         string
	selected        bool
	values          map[string]any
	positionals     []string
	includePackages []string
}

func newParsedArguments() *ParsedArguments {
	return &ParsedArguments{values: make(map[string]any)}
}

// NewParsedArguments builds a ParsedArguments for a selected command. It is
// intended for handler tests that bypass the parser.
func NewParsedArguments(cmd string, values map[string]any, positionals ...string) *ParsedArguments {
	p := newParsedArguments()
	p.command = cmd
	p.selected = true
	for k, v := range values {
		p.values[k] = v
	}
	p.positionals = slices.Clone(positionals)
	return p
}

// Command returns the name of the selected command. The second result is
// false when the invocation selected no command.
func (p *ParsedArguments) Command() (string, bool) {
	return p.command, p.selected
}

// Value returns the raw value of a flag. It reports false when the flag was
// not supplied and has no default.
func (p *ParsedArguments) Value(name string) (any, bool) {
	v, ok := p.values[name]
	return v, ok
}

// Has reports whether the flag resolved to a value.
func (p *ParsedArguments) Has(name string) bool {
	_, ok := p.values[name]
	return ok
}

// String returns a string flag value, or "" when absent.
func (p *ParsedArguments) String(name string) string {
	s, _ := p.values[name].(string)
	return s
}

// Int returns an int flag value, or 0 when absent.
func (p *ParsedArguments) Int(name string) int {
	i, _ := p.values[name].(int)
	return i
}

// Float returns a float flag value, or 0 when absent.
func (p *ParsedArguments) Float(name string) float64 {
	switch v := p.values[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

// Bool returns a bool flag value, or false when absent.
func (p *ParsedArguments) Bool(name string) bool {
	b, _ := p.values[name].(bool)
	return b
}

// Strings returns a copy of a repeatable string flag's values.
func (p *ParsedArguments) Strings(name string) []string {
	s, _ := p.values[name].([]string)
	return slices.Clone(s)
}

// Ints returns a copy of a repeatable int flag's values.
func (p *ParsedArguments) Ints(name string) []int {
	s, _ := p.values[name].([]int)
	return slices.Clone(s)
}

// Args returns a copy of the positional arguments.
func (p *ParsedArguments) Args() []string {
	return slices.Clone(p.positionals)
}

// Arg returns the i-th positional argument, or "" when it was not supplied.
func (p *ParsedArguments) Arg(i int) string {
	if i < 0 || i >= len(p.positionals) {
		return ""
	}
	return p.positionals[i]
}

// IncludePackages returns the plugin module names supplied through
// --include-package, in command-line order. The slice is never nil.
func (p *ParsedArguments) IncludePackages() []string {
	out := make([]string, len(p.includePackages))
	copy(out, p.includePackages)
	return out
}
