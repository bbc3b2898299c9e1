// SPDX-License-Identifier: MPL-2.0

// Package experiment loads experiment files and manages serialization
// directories.
package experiment

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/format"

	"github.com/reclib/reclib/internal/issue"
	"github.com/reclib/reclib/pkg/cueutil"
)

// ArchivedConfig is the experiment snapshot written into every
// serialization directory.
const ArchivedConfig = "config.cue"

//go:embed experiment_schema.cue
var experimentSchema []byte

var (
	// ErrSerializationDirNotEmpty is returned when training would overwrite
	// an earlier run.
	ErrSerializationDirNotEmpty = errors.New("serialization directory is not empty")
	// ErrNothingToRecover is returned by --recover without a previous run.
	ErrNothingToRecover = errors.New("nothing to recover")
	// ErrRecoverAndForce is returned when both --recover and --force are set.
	ErrRecoverAndForce = errors.New("--recover and --force are mutually exclusive")
)

type (
	// Dataset locates the ratings files.
	Dataset struct {
		Format         string `json:"format"`
		TrainPath      string `json:"train_path"`
		ValidationPath string `json:"validation_path,omitempty"`
		TestPath       string `json:"test_path,omitempty"`
	}

	// Trainer holds the options every backend understands.
	Trainer struct {
		NumEpochs    int     `json:"num_epochs"`
		BatchSize    int     `json:"batch_size"`
		LearningRate float64 `json:"learning_rate"`
		Seed         int     `json:"seed"`
	}

	// Experiment is a validated experiment file.
	Experiment struct {
		Model        string         `json:"model"`
		Dataset      Dataset        `json:"dataset"`
		Trainer      Trainer        `json:"trainer"`
		ModelOptions map[string]any `json:"model_options"`

		// Source is the path the experiment was loaded from.
		Source string `json:"-"`

		value cue.Value
	}
)

// Load reads an experiment file and applies overrides, a JSON or CUE
// struct whose fields replace those of the file (nested structs are merged
// field by field). Empty overrides are ignored.
func Load(path, overrides string) (*Experiment, error) {
	exp, err := load(path, overrides)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load experiment").
			WithResource(path).
			WithIssue(issue.ExperimentParseErrorId).
			Wrap(err).
			BuildError()
	}
	return exp, nil
}

func load(path, overrides string) (*Experiment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	merged, err := cueutil.ParseMap(data, cueutil.WithFilename(path))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(overrides) != "" {
		over, err := cueutil.ParseMap([]byte(overrides), cueutil.WithFilename("overrides"))
		if err != nil {
			return nil, err
		}
		MergeMaps(merged, over)
	}

	schema, err := cueutil.CompileSchema(experimentSchema, "#Experiment")
	if err != nil {
		return nil, err
	}
	res, err := cueutil.DecodeMap[Experiment](schema, merged, cueutil.WithFilename(path))
	if err != nil {
		return nil, err
	}

	exp := res.Value
	exp.Source = path
	exp.value = res.Unified
	if exp.ModelOptions == nil {
		exp.ModelOptions = map[string]any{}
	}
	return exp, nil
}

// LoadArchived loads the config.cue snapshot of a serialization directory.
func LoadArchived(dir string) (*Experiment, error) {
	return Load(filepath.Join(dir, ArchivedConfig), "")
}

// MergeMaps copies src into dst. Values that are maps on both sides are
// merged recursively; anything else in src replaces dst.
func MergeMaps(dst, src map[string]any) {
	for k, sv := range src {
		if sm, ok := sv.(map[string]any); ok {
			if dm, ok := dst[k].(map[string]any); ok {
				MergeMaps(dm, sm)
				continue
			}
		}
		dst[k] = sv
	}
}

// Format renders the experiment, with defaults filled in, as CUE source.
func (e *Experiment) Format() ([]byte, error) {
	node := e.value.Syntax(cue.Final(), cue.Concrete(true))
	if s, ok := node.(*ast.StructLit); ok {
		node = &ast.File{Decls: s.Elts}
	}
	out, err := format.Node(node)
	if err != nil {
		return nil, fmt.Errorf("format experiment: %w", err)
	}
	return out, nil
}

// Save writes the experiment to dir/config.cue and returns the path.
func (e *Experiment) Save(dir string) (string, error) {
	src, err := e.Format()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, ArchivedConfig)
	if err := os.WriteFile(path, src, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
