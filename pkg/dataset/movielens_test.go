// SPDX-License-Identifier: MPL-2.0

package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Format
		wantSep string
		wantErr bool
	}{
		{"movielens-20m", MovieLens20M, ",", false},
		{"movielens-1m", MovieLens1M, "::", false},
		{"movielens-100k", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalidFormat) {
					t.Errorf("error should wrap ErrInvalidFormat, got: %v", err)
				}
				return
			}
			if got != tt.want || got.Separator() != tt.wantSep {
				t.Errorf("ParseFormat(%q) = %q (sep %q), want %q (sep %q)", tt.in, got, got.Separator(), tt.want, tt.wantSep)
			}
		})
	}
}

func TestRead_MovieLens20M(t *testing.T) {
	t.Parallel()

	data := "userId,movieId,rating,timestamp\n" +
		"1,2,3.5,1112486027\n" +
		"1,29,3.0,1112484676\n" +
		"3,1,5,1112484819\n"

	ds, err := Read(strings.NewReader(data), MovieLens20M)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}

	want := []Instance{
		{User: 0, Item: 1, Target: 1},
		{User: 0, Item: 28, Target: 0},
		{User: 2, Item: 0, Target: 1},
	}
	if ds.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", ds.Len(), len(want))
	}
	for i, in := range want {
		if ds.Instances[i] != in {
			t.Errorf("Instances[%d] = %+v, want %+v", i, ds.Instances[i], in)
		}
	}
	if ds.FieldSizes != [2]int{3, 29} {
		t.Errorf("FieldSizes = %v, want [3 29]", ds.FieldSizes)
	}
	if ds.Positives() != 2 {
		t.Errorf("Positives() = %d, want 2", ds.Positives())
	}
}

func TestRead_MovieLens1MWithoutHeader(t *testing.T) {
	t.Parallel()

	data := "1::1193::5::978300760\n\n2::661::3::978302109\n"
	ds, err := Read(strings.NewReader(data), MovieLens1M)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if ds.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (first line is data, blank lines skipped)", ds.Len())
	}
	if ds.FieldSizes != [2]int{2, 1193} {
		t.Errorf("FieldSizes = %v, want [2 1193]", ds.FieldSizes)
	}
	if ds.Instances[1].Target != 0 {
		t.Errorf("rating 3 should be negative, got %v", ds.Instances[1].Target)
	}
}

func TestRead_MalformedRows(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     string
		wantLine int
		wantMsg  string
	}{
		{"too few columns", "1,2,4\n3,4\n", 2, "expected at least 3 columns"},
		{"bad user id", "h,i,r\n1,2,3\nx,2,3\n", 3, `user id "x"`},
		{"zero item id", "1,0,3\n", 1, "item id 0 must be at least 1"},
		{"bad rating", "1,2,good\n", 1, `rating "good"`},
		{"wrong separator", "1,2,3\n1::2::3\n", 2, "expected at least 3 columns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Read(strings.NewReader(tt.data), MovieLens20M)
			var rowErr *RowError
			if !errors.As(err, &rowErr) {
				t.Fatalf("Read() error = %v, want *RowError", err)
			}
			if rowErr.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d", rowErr.Line, tt.wantLine)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should contain %q", err, tt.wantMsg)
			}
			if !errors.Is(err, ErrMalformedRow) {
				t.Error("RowError should wrap ErrMalformedRow")
			}
		})
	}
}

func TestRead_Empty(t *testing.T) {
	t.Parallel()

	_, err := Read(strings.NewReader("userId,movieId,rating\n"), MovieLens20M)
	if !errors.Is(err, ErrEmptyDataset) {
		t.Errorf("Read() error = %v, want ErrEmptyDataset", err)
	}
}

func TestRead_InvalidFormat(t *testing.T) {
	t.Parallel()

	_, err := Read(strings.NewReader("1,2,3\n"), Format("csv"))
	if !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("Read() error = %v, want ErrInvalidFormat", err)
	}
}

func TestReadFile_ErrorHasPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ratings.csv")
	if err := os.WriteFile(path, []byte("1,2,3\n1,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ReadFile(path, MovieLens20M)
	if err == nil || !strings.HasPrefix(err.Error(), path+":2:") {
		t.Errorf("ReadFile() error = %v, want prefix %q", err, path+":2:")
	}
}

func TestBinarize(t *testing.T) {
	t.Parallel()

	for rating, want := range map[float64]float32{0.5: 0, 3: 0, 3.5: 1, 5: 1} {
		if got := Binarize(rating); got != want {
			t.Errorf("Binarize(%v) = %v, want %v", rating, got, want)
		}
	}
}
