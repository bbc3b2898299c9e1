// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"bytes"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/goccy/go-json"
)

type (
	// Schema is a compiled root definition from an embedded schema file.
	Schema struct {
		ctx  *cue.Context
		root cue.Value
		path string
	}

	// ParseResult contains the result of a successful parse.
	ParseResult[T any] struct {
		// Value is the decoded Go struct.
		Value *T

		// Unified is the unified CUE value, kept for callers that need to
		// re-format or inspect the data after validation.
		Unified cue.Value
	}
)

// CompileSchema compiles schema source and looks up the definition at
// schemaPath (for example "#Experiment").
func CompileSchema(schema []byte, schemaPath string) (*Schema, error) {
	ctx := cuecontext.New()

	v := ctx.CompileBytes(schema)
	if v.Err() != nil {
		return nil, fmt.Errorf("internal error: failed to compile schema: %w", v.Err())
	}
	root := v.LookupPath(cue.ParsePath(schemaPath))
	if root.Err() != nil {
		return nil, fmt.Errorf("internal error: schema definition %s not found: %w", schemaPath, root.Err())
	}

	return &Schema{ctx: ctx, root: root, path: schemaPath}, nil
}

// Path returns the schema definition path.
func (s *Schema) Path() string {
	return s.path
}

// ParseAndDecode compiles schema, unifies data with the definition at
// schemaPath, validates and decodes the result into T.
func ParseAndDecode[T any](schema, data []byte, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	s, err := CompileSchema(schema, schemaPath)
	if err != nil {
		return nil, err
	}
	return Decode[T](s, data, opts...)
}

// Decode unifies data with the schema, validates and decodes into T.
func Decode[T any](s *Schema, data []byte, opts ...Option) (*ParseResult[T], error) {
	o := applyOptions(opts)

	if err := CheckFileSize(data, o.maxFileSize, o.filename); err != nil {
		return nil, err
	}

	user := s.ctx.CompileBytes(data, cue.Filename(o.filename))
	if user.Err() != nil {
		return nil, FormatError(user.Err(), o.filename)
	}

	unified := s.root.Unify(user)
	var validateOpts []cue.Option
	if o.concrete {
		validateOpts = append(validateOpts, cue.Concrete(true))
	}
	if err := unified.Validate(validateOpts...); err != nil {
		return nil, FormatError(err, o.filename)
	}

	var result T
	if err := unified.Decode(&result); err != nil {
		return nil, FormatError(err, o.filename)
	}

	return &ParseResult[T]{Value: &result, Unified: unified}, nil
}

// DecodeMap validates a map produced by ParseMap (possibly edited since)
// against the schema and decodes it into T. Numbers keep the literal form
// they had in the source, so integers stay integers.
func DecodeMap[T any](s *Schema, m map[string]any, opts ...Option) (*ParseResult[T], error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode merged data: %w", err)
	}
	return Decode[T](s, data, opts...)
}

// ParseMap compiles data without a schema and returns it as a generic map.
// The data must be concrete. Numbers are returned as json.Number.
func ParseMap(data []byte, opts ...Option) (map[string]any, error) {
	o := applyOptions(opts)

	if err := CheckFileSize(data, o.maxFileSize, o.filename); err != nil {
		return nil, err
	}

	v := cuecontext.New().CompileBytes(data, cue.Filename(o.filename))
	if v.Err() != nil {
		return nil, FormatError(v.Err(), o.filename)
	}
	if v.IncompleteKind() != cue.StructKind {
		return nil, fmt.Errorf("%s: top level must be a struct", o.filename)
	}

	raw, err := v.MarshalJSON()
	if err != nil {
		return nil, FormatError(err, o.filename)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	m := map[string]any{}
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%s: %w", o.filename, err)
	}
	return m, nil
}
