// Package registry maps collection names to the Collection instances owned by
// the running process. A Registry is built once at startup and passed to the
// components that need it.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gogotex/pubsub/backend/broker/internal/collection"
)

var (
	ErrNotRegistered = errors.New("collection not registered")
	ErrDuplicate     = errors.New("collection already registered")
)

// Registry holds the collections of one process, keyed by collection name.
type Registry struct {
	mu          sync.RWMutex
	collections map[string]*collection.Collection
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{collections: make(map[string]*collection.Collection)}
}

// Register adds a collection under its own name.
func (r *Registry) Register(c *collection.Collection) error {
	if c == nil {
		return errors.New("registry: nil collection")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.collections[c.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, c.Name())
	}
	r.collections[c.Name()] = c
	return nil
}

// NewCollection builds a collection from a schema and registers it.
func (r *Registry) NewCollection(name string, schema collection.Schema, opts ...collection.Option) (*collection.Collection, error) {
	c, err := collection.New(name, schema, opts...)
	if err != nil {
		return nil, err
	}
	if err := r.Register(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Collection resolves a registered collection by name.
func (r *Registry) Collection(name string) (*collection.Collection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}
	return c, nil
}

// Names lists registered collection names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.collections))
	for n := range r.collections {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
