// SPDX-License-Identifier: MPL-2.0

package plugin

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/exp/slices"
)

// DefaultCatalog receives the registrations made through Register.
var DefaultCatalog = NewCatalog()

type (
	// RegisterFunc is a plugin's registration entry point.
	RegisterFunc func(ctx context.Context, host *Host) error

	// Catalog holds in-process plugin registrations by name.
	Catalog struct {
		mu      sync.RWMutex
		entries map[Name]RegisterFunc
	}

	// CatalogLoader loads Catalog entries into a Host. Each entry runs at
	// most once per loader.
	CatalogLoader struct {
		catalog *Catalog
		host    *Host

		mu     sync.Mutex
		loaded map[Name]bool
	}
)

// NewCatalog creates an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{entries: make(map[Name]RegisterFunc)}
}

// Register adds fn to the DefaultCatalog. It panics on invalid or duplicate
// names and is meant to be called from init functions.
func Register(name string, fn RegisterFunc) {
	if err := DefaultCatalog.Add(Name(name), fn); err != nil {
		panic(err)
	}
}

// Add registers fn under name.
func (c *Catalog) Add(name Name, fn RegisterFunc) error {
	if err := name.Validate(); err != nil {
		return err
	}
	if fn == nil {
		return fmt.Errorf("plugin %s: nil registration function", name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[name]; exists {
		return fmt.Errorf("plugin %s registered twice", name)
	}
	c.entries[name] = fn
	return nil
}

// Names returns the registered names in lexical order.
func (c *Catalog) Names() []Name {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]Name, 0, len(c.entries))
	for n := range c.entries {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// covered returns the names under root, root first, then lexical order.
func (c *Catalog) covered(root Name) []Name {
	var out []Name
	for _, n := range c.Names() {
		if root.Covers(n) {
			out = append(out, n)
		}
	}
	return out
}

func (c *Catalog) lookup(n Name) RegisterFunc {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[n]
}

// NewCatalogLoader returns a Loader for cat that registers into host.
func NewCatalogLoader(cat *Catalog, host *Host) *CatalogLoader {
	return &CatalogLoader{catalog: cat, host: host, loaded: make(map[Name]bool)}
}

// LoadPlugin runs the entry for name and every entry below it
// ("name.sub", "name.sub.deeper", ...), like importing a package imports
// its submodules. Entries already loaded are skipped.
func (l *CatalogLoader) LoadPlugin(ctx context.Context, name string) error {
	root := Name(name)
	if err := root.Validate(); err != nil {
		return err
	}

	names := l.catalog.covered(root)
	if len(names) == 0 {
		return &NotFoundError{Name: name, Searched: []string{"built-in plugins"}}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, n := range names {
		if l.loaded[n] {
			continue
		}
		if err := l.catalog.lookup(n)(ctx, l.host); err != nil {
			return fmt.Errorf("plugin %s: %w", n, err)
		}
		l.loaded[n] = true
		l.host.logger().Debug("registered built-in plugin", "plugin", n.String())
	}
	return nil
}
