// SPDX-License-Identifier: MPL-2.0

// Package command implements reclib's subcommand routing core.
//
// A Registry holds CommandSpec entries keyed by name. A Builder turns the
// registry into a Cobra command tree (one subcommand per entry, with help
// text annotated with meaningful defaults), and a Dispatcher parses the
// process arguments against that tree, loads any plugin modules named by
// the injected --include-package flag and finally invokes the handler of
// the selected command.
//
// Parsing never runs business logic: the Cobra RunE functions only record
// which command was selected. The Dispatcher resolves the handler from the
// registry afterwards, so plugin loading always happens between parsing
// and handler execution.
package command
