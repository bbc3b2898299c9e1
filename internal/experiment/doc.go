// SPDX-License-Identifier: MPL-2.0

// Package experiment loads experiment files, the CUE documents naming the
// backend, dataset and trainer options of a run, and prepares the
// serialization directory a run writes into.
package experiment
