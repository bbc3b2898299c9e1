// SPDX-License-Identifier: MPL-2.0

// Package cmd is the reclib command line: the default command table, the
// App that wires configuration, logging, plugins and backends together,
// and the process entry point.
package cmd
