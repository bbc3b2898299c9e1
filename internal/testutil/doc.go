// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers that fail the test on setup errors, so
// test bodies stay focused on the behavior under test.
package testutil
