package menu

import (
	"maps"
	"sync"
)

// FormState holds the values of every form field in one view. Updates are
// partial: setting one name never drops the others.
type FormState struct {
	mu      sync.RWMutex
	values  map[string]any
	version uint64
}

// NewFormState returns an empty form state.
func NewFormState() *FormState {
	return &FormState{values: make(map[string]any)}
}

// Set stores value under name.
func (f *FormState) Set(name string, value any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[name] = value
	f.version++
}

// Get returns the value stored under name.
func (f *FormState) Get(name string) (any, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.values[name]
	return v, ok
}

// Snapshot returns a copy of all values.
func (f *FormState) Snapshot() map[string]any {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return maps.Clone(f.values)
}

// Version increases on every Set.
func (f *FormState) Version() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.version
}
