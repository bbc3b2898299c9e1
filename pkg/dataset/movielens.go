// SPDX-License-Identifier: MPL-2.0

package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const (
	// MovieLens20M is the comma separated ratings.csv layout.
	MovieLens20M Format = "movielens-20m"
	// MovieLens1M is the "::" separated ratings.dat layout.
	MovieLens1M Format = "movielens-1m"

	// PositiveThreshold is the highest rating still treated as negative.
	PositiveThreshold = 3.0

	maxLineSize = 1024 * 1024
)

var (
	// ErrInvalidFormat is returned for an unknown dataset format name.
	ErrInvalidFormat = errors.New("invalid dataset format")
	// ErrMalformedRow is wrapped by every *RowError.
	ErrMalformedRow = errors.New("malformed rating row")
	// ErrEmptyDataset is returned when a file holds no ratings.
	ErrEmptyDataset = errors.New("dataset has no ratings")
)

type (
	// Format names a ratings file layout.
	Format string

	// InvalidFormatError is returned when a format name is not recognized.
	InvalidFormatError struct {
		Value string
	}

	// RowError reports a bad line. Line is 1-based.
	RowError struct {
		Path   string
		Line   int
		Reason string
	}

	// Instance is one rating.
	Instance struct {
		User   int
		Item   int
		Target float32
	}

	// Dataset holds every rating of a file.
	Dataset struct {
		Format    Format
		Instances []Instance
		// FieldSizes is max id + 1 for the user and item columns.
		FieldSizes [2]int
	}
)

// Formats lists the supported layouts.
func Formats() []Format {
	return []Format{MovieLens20M, MovieLens1M}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(s)
	if err := f.Validate(); err != nil {
		return "", err
	}
	return f, nil
}

// Validate returns an error when f is not a known layout.
func (f Format) Validate() error {
	switch f {
	case MovieLens20M, MovieLens1M:
		return nil
	default:
		return &InvalidFormatError{Value: string(f)}
	}
}

// Separator returns the column separator of the layout.
func (f Format) Separator() string {
	if f == MovieLens1M {
		return "::"
	}
	return ","
}

func (f Format) String() string { return string(f) }

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid dataset format %q (valid: %s, %s)", e.Value, MovieLens20M, MovieLens1M)
}

func (e *InvalidFormatError) Unwrap() error { return ErrInvalidFormat }

func (e *RowError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Reason)
}

func (e *RowError) Unwrap() error { return ErrMalformedRow }

// Len returns the number of ratings.
func (d *Dataset) Len() int { return len(d.Instances) }

// Positives returns the number of ratings with target 1.
func (d *Dataset) Positives() int {
	n := 0
	for _, in := range d.Instances {
		if in.Target == 1 {
			n++
		}
	}
	return n
}

// ReadFile reads the ratings file at path.
func ReadFile(path string, format Format) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return read(f, format, path)
}

// Read reads ratings from r.
func Read(r io.Reader, format Format) (*Dataset, error) {
	return read(r, format, "")
}

func read(r io.Reader, format Format, path string) (*Dataset, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}

	sep := format.Separator()
	ds := &Dataset{Format: format}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		fields := strings.Split(text, sep)
		if line == 1 && isHeader(fields) {
			continue
		}

		in, err := parseRow(fields)
		if err != nil {
			return nil, &RowError{Path: path, Line: line, Reason: err.Error()}
		}
		ds.Instances = append(ds.Instances, in)
		ds.FieldSizes[0] = max(ds.FieldSizes[0], in.User+1)
		ds.FieldSizes[1] = max(ds.FieldSizes[1], in.Item+1)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if len(ds.Instances) == 0 {
		if path != "" {
			return nil, fmt.Errorf("%s: %w", path, ErrEmptyDataset)
		}
		return nil, ErrEmptyDataset
	}
	return ds, nil
}

// isHeader reports whether the first column of a line is not a number.
func isHeader(fields []string) bool {
	_, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	return err != nil
}

func parseRow(fields []string) (Instance, error) {
	if len(fields) < 3 {
		return Instance{}, fmt.Errorf("expected at least 3 columns, got %d", len(fields))
	}

	user, err := parseID("user", fields[0])
	if err != nil {
		return Instance{}, err
	}
	item, err := parseID("item", fields[1])
	if err != nil {
		return Instance{}, err
	}

	rating, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil {
		return Instance{}, fmt.Errorf("rating %q is not a number", fields[2])
	}

	return Instance{User: user, Item: item, Target: Binarize(rating)}, nil
}

func parseID(column, s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%s id %q is not an integer", column, s)
	}
	if id < 1 {
		return 0, fmt.Errorf("%s id %d must be at least 1", column, id)
	}
	return id - 1, nil
}

// Binarize maps a rating to 0 (<= 3) or 1 (> 3).
func Binarize(rating float64) float32 {
	if rating <= PositiveThreshold {
		return 0
	}
	return 1
}
