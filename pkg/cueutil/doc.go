// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides the CUE parsing helpers shared by the config,
// experiment and plugin manifest loaders.
//
// Every loader follows the same flow:
//
//  1. Compile the embedded schema and look up its root definition
//  2. Compile (or encode) the user data and unify it with the schema
//  3. Validate and decode into a Go struct
//
// # Usage
//
//	//go:embed experiment_schema.cue
//	var schemaBytes []byte
//
//	result, err := cueutil.ParseAndDecode[Experiment](
//	    schemaBytes,
//	    data,
//	    "#Experiment",
//	    cueutil.WithFilename("experiment.cue"),
//	)
//
// Callers that need to edit the data before validation (for example to apply
// command-line overrides) use ParseMap, change the map, and hand it to
// Schema.DecodeMap.
package cueutil
