// SPDX-License-Identifier: MPL-2.0

package backend

import (
	"fmt"
	"sync"

	"golang.org/x/exp/slices"
)

// Registry maps backend names to implementations. It is safe for
// concurrent use; plugins register into it while the dispatcher loads them.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]Backend
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{backends: make(map[string]Backend)}
}

// Register adds b under name. A name can be registered once.
func (r *Registry) Register(name string, b Backend) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if b == nil {
		return fmt.Errorf("%w: backend %q is nil", ErrInvalidBackend, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.backends[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateBackend, name)
	}
	r.backends[name] = b
	return nil
}

// Lookup returns the backend registered under name, or a
// *NotRegisteredError listing the available names.
func (r *Registry) Lookup(name string) (Backend, error) {
	r.mu.RLock()
	b, ok := r.backends[name]
	r.mu.RUnlock()

	if !ok {
		return nil, &NotRegisteredError{Name: name, Available: r.Names()}
	}
	return b, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of registered backends.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.backends)
}
