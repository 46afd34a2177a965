// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package host

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Factory creates a new Runtime instance.
type Factory func() (Runtime, error)

// RegistryEntry describes a registered host runtime binding.
type RegistryEntry struct {
	// Name is the unique identifier for this binding.
	Name string

	// Priority determines selection order (higher = preferred).
	// Standard priorities:
	//   - 100: real platform bindings (browser, emulator bridge)
	//   - 10: simulated runtimes
	Priority int

	// Factory creates runtime instances.
	Factory Factory

	// Available reports whether the binding can run on this system.
	Available func() bool
}

// globalRegistry is the default registry.
var globalRegistry = &Registry{}

// Registry manages registered host runtime bindings.
//
// Bindings register themselves from init functions, so applications select
// a runtime without importing every binding:
//
//	import _ "github.com/gogpu/webxr/host/sim" // registers "sim"
//
//	rt, err := host.Default()
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*RegistryEntry
}

// NewRegistry creates a new empty registry.
// Most code should use the global registry via Register and Default.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*RegistryEntry)}
}

// Register adds a runtime binding to the global registry.
// If available is nil, the binding is assumed always available.
// Registering a name that already exists replaces the previous entry.
func Register(name string, priority int, factory Factory, available func() bool) {
	globalRegistry.Register(name, priority, factory, available)
}

// Unregister removes a binding from the global registry.
func Unregister(name string) {
	globalRegistry.Unregister(name)
}

// List returns all registered binding names sorted by priority (highest first).
func List() []string {
	return globalRegistry.List()
}

// Default returns a runtime from the best available binding.
func Default() (Runtime, error) {
	return globalRegistry.Default()
}

// New returns a runtime from a specific named binding.
func New(name string) (Runtime, error) {
	return globalRegistry.New(name)
}

// Register adds a runtime binding to this registry.
func (r *Registry) Register(name string, priority int, factory Factory, available func() bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries == nil {
		r.entries = make(map[string]*RegistryEntry)
	}
	if available == nil {
		available = func() bool { return true }
	}

	r.entries[name] = &RegistryEntry{
		Name:      name,
		Priority:  priority,
		Factory:   factory,
		Available: available,
	}
}

// Unregister removes a binding from this registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, name)
}

// List returns all registered binding names sorted by priority.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedNames(false)
}

// Default returns a runtime from the best available binding, trying each in
// priority order until one succeeds.
func (r *Registry) Default() (Runtime, error) {
	r.mu.RLock()
	available := r.sortedNames(true)
	r.mu.RUnlock()

	if len(available) == 0 {
		return nil, ErrNoRuntime
	}

	var lastErr error
	for _, name := range available {
		rt, err := r.New(name)
		if err == nil {
			return rt, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// New returns a runtime from a specific named binding.
func (r *Registry) New(name string) (Runtime, error) {
	r.mu.RLock()
	entry, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("host: runtime %q is not registered", name)
	}
	if !entry.Available() {
		return nil, fmt.Errorf("host: runtime %q is not available: %w", name, ErrNoRuntime)
	}
	return entry.Factory()
}

// sortedNames returns binding names sorted by priority (highest first).
// If onlyAvailable is true, filters to available bindings.
// Must be called with the lock held.
func (r *Registry) sortedNames(onlyAvailable bool) []string {
	if len(r.entries) == 0 {
		return nil
	}

	type entry struct {
		name     string
		priority int
	}

	entries := make([]entry, 0, len(r.entries))
	for name, e := range r.entries {
		if onlyAvailable && !e.Available() {
			continue
		}
		entries = append(entries, entry{name: name, priority: e.Priority})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].priority > entries[j].priority
	})

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

// ErrNoRuntime is returned when no host runtime binding is available.
var ErrNoRuntime = errors.New("host: no XR runtime available")
