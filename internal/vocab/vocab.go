// SPDX-License-Identifier: MPL-2.0

// Package vocab builds the user and item vocabularies of a ratings dataset
// and stores them next to a TOML metadata file.
package vocab

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/exp/slices"

	"github.com/reclib/reclib/pkg/dataset"
)

const (
	// DirName is the vocabulary directory inside a serialization directory.
	DirName = "vocabulary"
	// MetaFile holds the vocabulary metadata.
	MetaFile = "meta.toml"

	// Users and Items are the namespace names.
	Users = "users"
	Items = "items"
)

// ErrVocabularyExists is returned by Save when the target already holds a
// vocabulary.
var ErrVocabularyExists = errors.New("vocabulary already exists")

type (
	// Token is an id with its number of ratings.
	Token struct {
		ID    int
		Count int
	}

	// Namespace is the vocabulary of one dataset column.
	Namespace struct {
		Name string
		// FieldSize is the embedding size the column needs (max id + 1).
		FieldSize int
		// Tokens are ordered by descending count, then ascending id.
		Tokens []Token
	}

	// Vocabulary is the result of Build.
	Vocabulary struct {
		Meta  Meta
		Users Namespace
		Items Namespace
	}

	// Meta is the content of meta.toml.
	Meta struct {
		Format     string                   `toml:"format"`
		Instances  int                      `toml:"instances"`
		Positives  int                      `toml:"positives"`
		MinCount   int                      `toml:"min_count"`
		Namespaces map[string]NamespaceMeta `toml:"namespaces"`
	}

	// NamespaceMeta summarizes one namespace.
	NamespaceMeta struct {
		FieldSize int `toml:"field_size"`
		Size      int `toml:"size"`
	}
)

// Build counts the ratings of every user and item. Ids rated fewer than
// minCount times are left out; minCount below 1 keeps everything.
func Build(ds *dataset.Dataset, minCount int) *Vocabulary {
	minCount = max(minCount, 1)

	users := make(map[int]int)
	items := make(map[int]int)
	for _, in := range ds.Instances {
		users[in.User]++
		items[in.Item]++
	}

	v := &Vocabulary{
		Users: newNamespace(Users, ds.FieldSizes[0], users, minCount),
		Items: newNamespace(Items, ds.FieldSizes[1], items, minCount),
	}
	v.Meta = Meta{
		Format:    ds.Format.String(),
		Instances: ds.Len(),
		Positives: ds.Positives(),
		MinCount:  minCount,
		Namespaces: map[string]NamespaceMeta{
			Users: {FieldSize: v.Users.FieldSize, Size: len(v.Users.Tokens)},
			Items: {FieldSize: v.Items.FieldSize, Size: len(v.Items.Tokens)},
		},
	}
	return v
}

func newNamespace(name string, fieldSize int, counts map[int]int, minCount int) Namespace {
	ns := Namespace{Name: name, FieldSize: fieldSize}
	for id, n := range counts {
		if n >= minCount {
			ns.Tokens = append(ns.Tokens, Token{ID: id, Count: n})
		}
	}
	slices.SortFunc(ns.Tokens, func(a, b Token) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return a.ID - b.ID
	})
	return ns
}

// Save writes the vocabulary to <dir>/vocabulary and returns that path.
// An existing vocabulary is never overwritten.
func (v *Vocabulary) Save(dir string) (string, error) {
	vdir := filepath.Join(dir, DirName)
	if _, err := os.Stat(filepath.Join(vdir, MetaFile)); err == nil {
		return "", fmt.Errorf("%s: %w", vdir, ErrVocabularyExists)
	}
	if err := os.MkdirAll(vdir, 0o755); err != nil {
		return "", err
	}

	for _, ns := range []Namespace{v.Users, v.Items} {
		if err := writeNamespace(filepath.Join(vdir, ns.Name+".txt"), ns); err != nil {
			return "", err
		}
	}

	meta, err := toml.Marshal(v.Meta)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", MetaFile, err)
	}
	if err := os.WriteFile(filepath.Join(vdir, MetaFile), meta, 0o644); err != nil {
		return "", err
	}
	return vdir, nil
}

// writeNamespace writes one "<id>\t<count>" line per token.
func writeNamespace(path string, ns Namespace) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	for _, tok := range ns.Tokens {
		w.WriteString(strconv.Itoa(tok.ID))
		w.WriteByte('\t')
		w.WriteString(strconv.Itoa(tok.Count))
		w.WriteByte('\n')
	}
	return w.Flush()
}

// LoadMeta reads <dir>/vocabulary/meta.toml.
func LoadMeta(dir string) (*Meta, error) {
	path := filepath.Join(dir, DirName, MetaFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Meta
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}
