// SPDX-License-Identifier: MPL-2.0

package experiment

import (
	"fmt"
	"strconv"

	"cuelang.org/go/cue/format"

	"github.com/reclib/reclib/internal/backend"
	"github.com/reclib/reclib/pkg/dataset"
)

// Template returns a starter experiment for the given backend and dataset
// format, as written by the configure command.
func Template(model, datasetFormat string) ([]byte, error) {
	if err := backend.ValidateName(model); err != nil {
		return nil, err
	}
	if _, err := dataset.ParseFormat(datasetFormat); err != nil {
		return nil, err
	}

	src := fmt.Sprintf(`// Experiment generated by reclib configure.
model: %s
dataset: {
format: %s
train_path: "data/train.csv"
// validation_path: "data/validation.csv"
}
trainer: {
num_epochs: 10
batch_size: 256
learning_rate: 0.001
seed: 42
}
model_options: {}
`, strconv.Quote(model), strconv.Quote(datasetFormat))

	out, err := format.Source([]byte(src))
	if err != nil {
		return nil, fmt.Errorf("format template: %w", err)
	}
	return out, nil
}
