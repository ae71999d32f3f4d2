// Package catalog registers the record types the recordcol command can map.
package catalog

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ajitpratap0/recordcol/pkg/errors"
	"github.com/ajitpratap0/recordcol/pkg/typemodel"
)

// Entry is a registered record type with sample values used by the write
// commands.
type Entry struct {
	Record      *typemodel.Record
	Description string
	Samples     func() []any
}

// Registry maps record names to entries.
type Registry struct {
	entries map[string]Entry
	mu      sync.RWMutex
}

// Global registry instance
var globalRegistry = NewRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds e under the name of its record.
func (r *Registry) Register(e Entry) error {
	if e.Record == nil {
		return errors.New(errors.ErrorTypeConfig, "entry has no record type")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	name := e.Record.Name()
	if _, exists := r.entries[name]; exists {
		return errors.New(errors.ErrorTypeConfig, fmt.Sprintf("record type %s already registered", name))
	}
	if e.Samples == nil {
		e.Samples = func() []any { return nil }
	}
	r.entries[name] = e
	return nil
}

// Lookup returns the entry registered under name.
func (r *Registry) Lookup(name string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.entries[name]
	if !exists {
		return Entry{}, errors.New(errors.ErrorTypeConfig, fmt.Sprintf("record type %s not found", name)).
			WithDetail("record", name)
	}
	return e, nil
}

// List returns the registered names in order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register adds e to the global registry.
func Register(e Entry) error { return globalRegistry.Register(e) }

// Lookup finds name in the global registry.
func Lookup(name string) (Entry, error) { return globalRegistry.Lookup(name) }

// List returns the names in the global registry.
func List() []string { return globalRegistry.List() }
