package engine

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/kbukum/transcriptkit/errors"
)

// Registry maps engine names to the factories that build them. A later
// registration under the same name replaces the earlier one.
type Registry[T Engine] struct {
	kind      string
	mu        sync.RWMutex
	factories map[string]Factory[T]
}

// NewRegistry creates an empty registry; kind ("transcription",
// "diarization") prefixes its error messages.
func NewRegistry[T Engine](kind string) *Registry[T] {
	return &Registry[T]{kind: kind, factories: make(map[string]Factory[T])}
}

// Register binds name to factory.
func (r *Registry[T]) Register(name string, factory Factory[T]) {
	r.mu.Lock()
	r.factories[name] = factory
	r.mu.Unlock()
}

// Build runs the named factory with cfg.
func (r *Registry[T]) Build(name string, cfg map[string]any) (T, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	var zero T
	if !ok {
		return zero, errors.NotFound(r.kind+" engine", name).WithDetail("known", r.Names())
	}
	e, err := factory(cfg)
	if err != nil {
		return zero, fmt.Errorf("%s engine %q: %w", r.kind, name, err)
	}
	return e, nil
}

// Names returns the registered engine names in sorted order.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}
