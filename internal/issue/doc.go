// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and the catalog of Markdown
// troubleshooting pages that the CLI renders with glamour when a command
// fails with a linked issue.
package issue
