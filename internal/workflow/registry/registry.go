// Package registry maps workflow type tags to renderers. Content and form-field
// plugins register themselves on explicit registry objects built at startup and
// injected into the assembler.
package registry

import (
	"errors"
	"sort"
	"sync"
)

var errNilRenderer = errors.New("registry: renderer required")

// Registry stores renderers by tag. Registering an existing tag replaces the
// previous entry; there is no unregister.
type Registry[R any] struct {
	mu      sync.RWMutex
	entries map[string]R
}

// New allocates an empty registry.
func New[R any]() *Registry[R] {
	return &Registry[R]{entries: make(map[string]R)}
}

// Register stores renderer under tag. Tags are case-sensitive.
func (r *Registry[R]) Register(tag string, renderer R) error {
	if tag == "" {
		return errors.New("registry: tag required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[tag] = renderer
	return nil
}

// Lookup fetches the renderer for tag. ok is false when nothing is registered.
func (r *Registry[R]) Lookup(tag string) (R, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	renderer, ok := r.entries[tag]
	return renderer, ok
}

// Tags returns the registered tags, sorted.
func (r *Registry[R]) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]string, 0, len(r.entries))
	for tag := range r.entries {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Len returns the number of registered tags.
func (r *Registry[R]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
