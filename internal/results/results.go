// SPDX-License-Identifier: MPL-2.0

// Package results collects the metrics files written by training runs.
package results

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/exp/slices"
)

const (
	// DefaultMetricsFile is the file name searched for by Collect.
	DefaultMetricsFile = "metrics.json"
	// Missing is printed for keys a run does not report.
	Missing = "N/A"
)

// ErrNoKeys is returned by Write when no metric keys were requested.
var ErrNoKeys = errors.New("no metric keys requested")

// Run is one metrics file.
type Run struct {
	// Path is relative to the collected root, slash separated.
	Path    string
	Metrics map[string]any
}

// Collect finds every file named filename below root, in lexical order.
func Collect(root, filename string) ([]Run, error) {
	if filename == "" {
		filename = DefaultMetricsFile
	}

	var runs []Run
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != filename {
			return nil
		}

		metrics, err := readMetrics(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		runs = append(runs, Run{Path: filepath.ToSlash(rel), Metrics: metrics})
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(runs, func(a, b Run) int { return strings.Compare(a.Path, b.Path) })
	return runs, nil
}

func readMetrics(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Write prints a header line and one line per run, comma separated, with
// Missing in place of absent keys.
func Write(w io.Writer, runs []Run, keys []string) error {
	if len(keys) == 0 {
		return ErrNoKeys
	}

	if _, err := fmt.Fprintln(w, strings.Join(append([]string{"model_run"}, keys...), ", ")); err != nil {
		return err
	}
	for _, run := range runs {
		fields := make([]string, 0, len(keys)+1)
		fields = append(fields, run.Path)
		for _, k := range keys {
			fields = append(fields, format(run.Metrics, k))
		}
		if _, err := fmt.Fprintln(w, strings.Join(fields, ", ")); err != nil {
			return err
		}
	}
	return nil
}

func format(metrics map[string]any, key string) string {
	v, ok := metrics[key]
	if !ok || v == nil {
		return Missing
	}
	switch v.(type) {
	case map[string]any, []any:
		raw, err := json.Marshal(v)
		if err != nil {
			return Missing
		}
		return string(raw)
	default:
		return fmt.Sprint(v)
	}
}
