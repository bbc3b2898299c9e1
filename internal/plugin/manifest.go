// SPDX-License-Identifier: MPL-2.0

package plugin

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/reclib/reclib/internal/backend"
	"github.com/reclib/reclib/pkg/cueutil"
)

const (
	// CUEManifest is the CUE manifest file name.
	CUEManifest = "plugin.cue"
	// TOMLManifest is the TOML manifest file name.
	TOMLManifest = "plugin.toml"
)

//go:embed plugin_schema.cue
var manifestSchema []byte

type (
	// Manifest declares what a plugin directory provides.
	Manifest struct {
		Name        string            `json:"name,omitempty" toml:"name"`
		Description string            `json:"description,omitempty" toml:"description"`
		Backends    []BackendManifest `json:"backends" toml:"backends"`
	}

	// BackendManifest declares one script backend.
	BackendManifest struct {
		Name       string            `json:"name" toml:"name"`
		Tasks      []string          `json:"tasks,omitempty" toml:"tasks"`
		Script     string            `json:"script,omitempty" toml:"script"`
		ScriptFile string            `json:"script_file,omitempty" toml:"script_file"`
		Env        map[string]string `json:"env,omitempty" toml:"env"`
	}

	// ManifestLoader resolves plugin names against directories. The name
	// "a.b" maps to <search path>/a/b; that directory and every directory
	// below it is scanned, in lexical order, for a manifest. The first
	// search path containing the directory wins.
	ManifestLoader struct {
		SearchPaths []string
		Host        *Host

		mu     sync.Mutex
		loaded map[string]bool
	}
)

// ParseManifest reads a plugin.cue or plugin.toml file. Relative
// script_file entries are resolved against the manifest's directory and
// read into Script.
func ParseManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	switch filepath.Base(path) {
	case CUEManifest:
		res, err := cueutil.ParseAndDecode[Manifest](manifestSchema, data, "#Plugin", cueutil.WithFilename(path))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
		}
		m = *res.Value
	case TOMLManifest:
		if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
			return nil, err
		}
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidManifest, path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s is not a manifest file", ErrInvalidManifest, path)
	}

	dir := filepath.Dir(path)
	for i := range m.Backends {
		b := &m.Backends[i]
		if (b.Script == "") == (b.ScriptFile == "") {
			return nil, fmt.Errorf("%w: %s: backend %q needs exactly one of script and script_file", ErrInvalidManifest, path, b.Name)
		}
		if b.ScriptFile != "" {
			scriptPath := b.ScriptFile
			if !filepath.IsAbs(scriptPath) {
				scriptPath = filepath.Join(dir, scriptPath)
			}
			src, err := os.ReadFile(scriptPath)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: backend %q: %w", ErrInvalidManifest, path, b.Name, err)
			}
			b.Script = string(src)
		}
	}
	return &m, nil
}

// ScriptBackends converts the manifest entries into validated backends
// running in dir.
func (m *Manifest) ScriptBackends(dir string, host *Host) ([]*backend.ScriptBackend, error) {
	out := make([]*backend.ScriptBackend, 0, len(m.Backends))
	for _, bm := range m.Backends {
		tasks := make([]backend.TaskKind, 0, len(bm.Tasks))
		for _, t := range bm.Tasks {
			tasks = append(tasks, backend.TaskKind(t))
		}
		sb := &backend.ScriptBackend{
			Name:   bm.Name,
			Script: bm.Script,
			Dir:    dir,
			Tasks:  tasks,
			Env:    bm.Env,
		}
		if host != nil {
			sb.Stdout, sb.Stderr = host.Stdout, host.Stderr
		}
		if err := sb.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
		}
		out = append(out, sb)
	}
	return out, nil
}

// LoadPlugin implements Loader.
func (l *ManifestLoader) LoadPlugin(ctx context.Context, name string) error {
	n := Name(name)
	if err := n.Validate(); err != nil {
		return err
	}

	var searched []string
	for _, sp := range l.SearchPaths {
		dir := filepath.Join(append([]string{sp}, n.Segments()...)...)
		searched = append(searched, dir)

		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		return l.loadDir(ctx, dir)
	}
	return &NotFoundError{Name: name, Searched: searched}
}

func (l *ManifestLoader) loadDir(ctx context.Context, root string) error {
	manifests, err := findManifests(root)
	if err != nil {
		return err
	}
	if len(manifests) == 0 {
		return fmt.Errorf("%w: no %s or %s under %s", ErrInvalidManifest, CUEManifest, TOMLManifest, root)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loaded == nil {
		l.loaded = make(map[string]bool)
	}

	for _, path := range manifests {
		if err := ctx.Err(); err != nil {
			return err
		}
		if l.loaded[path] {
			continue
		}
		if err := l.register(path); err != nil {
			return err
		}
		l.loaded[path] = true
	}
	return nil
}

func (l *ManifestLoader) register(path string) error {
	m, err := ParseManifest(path)
	if err != nil {
		return err
	}
	backends, err := m.ScriptBackends(filepath.Dir(path), l.Host)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	for _, b := range backends {
		if err := l.Host.Backends.Register(b.Name, b); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		l.Host.logger().Debug("registered script backend", "backend", b.Name, "manifest", path)
	}
	return nil
}

// findManifests walks root in lexical order. A directory holding both
// manifest kinds is an error.
func findManifests(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}

		cuePath := filepath.Join(path, CUEManifest)
		tomlPath := filepath.Join(path, TOMLManifest)
		hasCUE, hasTOML := isFile(cuePath), isFile(tomlPath)
		switch {
		case hasCUE && hasTOML:
			return fmt.Errorf("%w: %s has both %s and %s", ErrInvalidManifest, path, CUEManifest, TOMLManifest)
		case hasCUE:
			out = append(out, cuePath)
		case hasTOML:
			out = append(out, tomlPath)
		}
		return nil
	})
	return out, err
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
