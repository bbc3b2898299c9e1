// SPDX-License-Identifier: MPL-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

const (
	// KindString stores the flag value as a string.
	KindString ValueKind = iota
	// KindInt stores the flag value as an int.
	KindInt
	// KindFloat stores the flag value as a float64.
	KindFloat
	// KindBool stores the flag value as a bool.
	KindBool
)

const (
	// ActionStore stores a single value (the default action).
	ActionStore Action = iota
	// ActionAppend collects every occurrence of a repeatable flag.
	ActionAppend
	// ActionStoreTrue is a switch that stores true when present.
	ActionStoreTrue
	// ActionStoreFalse is a switch that stores false when present.
	ActionStoreFalse
	// ActionStoreConst is a switch that stores ArgumentSpec.Const when present.
	ActionStoreConst
	// ActionHelp prints help. The parser always provides it, so declaring it is rejected.
	ActionHelp
)

const (
	// IncludePackageFlag is the repeatable flag injected into every command
	// except the configuration command.
	IncludePackageFlag = "include-package"

	helpFlag = "help"
)

var (
	// ErrInvalidCommandName is returned when a command name is empty or malformed.
	ErrInvalidCommandName = errors.New("invalid command name")
	// ErrInvalidArgument is the sentinel error wrapped by InvalidArgumentError.
	ErrInvalidArgument = errors.New("invalid argument spec")
	// ErrMissingHandler is returned when a CommandSpec has no handler.
	ErrMissingHandler = errors.New("command has no handler")

	commandNamePattern = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)
	flagNamePattern    = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)
)

type (
	// ValueKind is the type a flag value is converted to.
	ValueKind int

	// Action describes how the parser treats occurrences of a flag.
	Action int

	// Handler runs a command with the arguments the parser resolved for it.
	Handler func(ctx context.Context, args *ParsedArguments) error

	// ArgumentSpec declares one flag of a command.
	ArgumentSpec struct {
		// Name is the long flag name without dashes (e.g. "serialization-dir").
		Name string
		// Shorthand is an optional one-letter alias.
		Shorthand string
		// Kind is the value type for store and append actions.
		Kind ValueKind
		// Action selects store, append or one of the switch actions.
		Action Action
		// Default is used when the flag is not supplied. Nil means "no value".
		Default any
		// Const is the value stored by ActionStoreConst.
		Const any
		// Help is the help text before default annotation.
		Help string
		// Required makes the parser reject invocations without the flag.
		Required bool
	}

	// PositionalSpec declares one positional argument of a command.
	PositionalSpec struct {
		Name     string
		Help     string
		Optional bool
	}

	// CommandSpec is a registry entry: a named, self-describing unit of work.
	CommandSpec struct {
		Name        string
		Description string
		// Long is the detailed help shown by "<prog> <name> --help".
		Long        string
		Positionals []PositionalSpec
		Arguments   []ArgumentSpec
		Handler     Handler
	}

	// InvalidArgumentError is returned when an ArgumentSpec is not usable.
	// It wraps ErrInvalidArgument for errors.Is() compatibility.
	InvalidArgumentError struct {
		Command string
		Flag    string
		Reason  string
	}
)

// String returns the lowercase name of the kind.
func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// String returns the argparse-style name of the action.
func (a Action) String() string {
	switch a {
	case ActionStore:
		return "store"
	case ActionAppend:
		return "append"
	case ActionStoreTrue:
		return "store_true"
	case ActionStoreFalse:
		return "store_false"
	case ActionStoreConst:
		return "store_const"
	case ActionHelp:
		return "help"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// IsSwitch reports whether the action takes no value on the command line.
func (a Action) IsSwitch() bool {
	return a == ActionStoreTrue || a == ActionStoreFalse || a == ActionStoreConst
}

// Error implements the error interface.
func (e *InvalidArgumentError) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("invalid argument spec --%s: %s", e.Flag, e.Reason)
	}
	return fmt.Sprintf("invalid argument spec %s --%s: %s", e.Command, e.Flag, e.Reason)
}

// Unwrap returns ErrInvalidArgument so callers can use errors.Is.
func (e *InvalidArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

// ValidateCommandName checks that name is a lowercase, hyphen-separated word.
func ValidateCommandName(name string) error {
	if !commandNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidCommandName, name)
	}
	return nil
}

// Validate checks the spec and every declared argument.
func (s CommandSpec) Validate() error {
	if err := ValidateCommandName(s.Name); err != nil {
		return err
	}
	if s.Handler == nil {
		return fmt.Errorf("%w: %s", ErrMissingHandler, s.Name)
	}

	seen := make(map[string]bool, len(s.Arguments))
	shorts := make(map[string]bool, len(s.Arguments))
	for _, arg := range s.Arguments {
		if err := arg.validate(s.Name); err != nil {
			return err
		}
		if seen[arg.Name] {
			return &InvalidArgumentError{Command: s.Name, Flag: arg.Name, Reason: "declared twice"}
		}
		seen[arg.Name] = true
		if arg.Shorthand != "" {
			if shorts[arg.Shorthand] {
				return &InvalidArgumentError{Command: s.Name, Flag: arg.Name, Reason: "shorthand -" + arg.Shorthand + " declared twice"}
			}
			shorts[arg.Shorthand] = true
		}
	}

	optionalSeen := false
	for _, pos := range s.Positionals {
		if pos.Name == "" {
			return &InvalidArgumentError{Command: s.Name, Flag: "<positional>", Reason: "positional without a name"}
		}
		if optionalSeen && !pos.Optional {
			return &InvalidArgumentError{Command: s.Name, Flag: pos.Name, Reason: "required positional after an optional one"}
		}
		optionalSeen = optionalSeen || pos.Optional
	}

	return nil
}

// Validate checks a single ArgumentSpec outside of a command.
func (a ArgumentSpec) Validate() error {
	return a.validate("")
}

func (a ArgumentSpec) validate(cmdName string) error {
	invalid := func(reason string) error {
		return &InvalidArgumentError{Command: cmdName, Flag: a.Name, Reason: reason}
	}

	if !flagNamePattern.MatchString(a.Name) {
		return invalid("malformed flag name")
	}
	if a.Name == helpFlag || a.Name == IncludePackageFlag {
		return invalid("flag name is reserved")
	}
	if len(a.Shorthand) > 1 {
		return invalid("shorthand must be a single character")
	}
	if a.Shorthand == "h" {
		return invalid("shorthand -h is reserved for help")
	}

	switch a.Action {
	case ActionHelp:
		return invalid("help is provided by the parser")
	case ActionStoreTrue, ActionStoreFalse:
		if a.Default != nil {
			if _, ok := a.Default.(bool); !ok {
				return invalid("switch default must be a bool")
			}
		}
	case ActionStoreConst:
		if a.Const == nil {
			return invalid("store_const requires a Const value")
		}
		if !kindAccepts(a.Kind, a.Const) {
			return invalid(fmt.Sprintf("const %v is not a %s", a.Const, a.Kind))
		}
		if a.Default != nil && !kindAccepts(a.Kind, a.Default) {
			return invalid(fmt.Sprintf("default %v is not a %s", a.Default, a.Kind))
		}
	case ActionStore:
		if a.Default != nil && !kindAccepts(a.Kind, a.Default) {
			return invalid(fmt.Sprintf("default %v is not a %s", a.Default, a.Kind))
		}
	case ActionAppend:
		switch a.Kind {
		case KindString:
			if _, ok := a.Default.([]string); a.Default != nil && !ok {
				return invalid("append default must be []string")
			}
		case KindInt:
			if _, ok := a.Default.([]int); a.Default != nil && !ok {
				return invalid("append default must be []int")
			}
		default:
			return invalid("append supports string and int values only")
		}
	default:
		return invalid("unknown action " + a.Action.String())
	}

	if a.Required && a.Action != ActionStore && a.Action != ActionAppend {
		return invalid("only store and append flags can be required")
	}

	return nil
}

func kindAccepts(kind ValueKind, v any) bool {
	switch kind {
	case KindString:
		_, ok := v.(string)
		return ok
	case KindInt:
		_, ok := v.(int)
		return ok
	case KindFloat:
		switch v.(type) {
		case float64, int:
			return true
		}
		return false
	case KindBool:
		_, ok := v.(bool)
		return ok
	default:
		return false
	}
}
