package engine

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/kbukum/transcriptkit/errors"
	"github.com/kbukum/transcriptkit/logger"
)

// Manager combines a Registry of factories with a Selector and holds the
// initialized engines of one kind.
type Manager[T Engine] struct {
	mu          sync.RWMutex
	registry    *Registry[T]
	selector    Selector[T]
	engines     map[string]T
	defaultName string
	log         *logger.Logger
}

// NewManager creates a Manager backed by the given registry and selector.
// A nil selector falls back to health-check selection.
func NewManager[T Engine](registry *Registry[T], selector Selector[T]) *Manager[T] {
	if selector == nil {
		selector = &HealthCheckSelector[T]{}
	}
	return &Manager[T]{
		registry: registry,
		selector: selector,
		engines:  make(map[string]T),
		log:      logger.Get("engine"),
	}
}

// NewTranscribers creates a manager for speech-to-text engines.
func NewTranscribers(selector Selector[Transcriber]) *Manager[Transcriber] {
	return NewManager(NewRegistry[Transcriber]("transcription"), selector)
}

// NewDiarizers creates a manager for diarization engines.
func NewDiarizers(selector Selector[Diarizer]) *Manager[Diarizer] {
	return NewManager(NewRegistry[Diarizer]("diarization"), selector)
}

// Register adds a factory to the underlying registry.
func (m *Manager[T]) Register(name string, factory Factory[T]) {
	m.registry.Register(name, factory)
	m.log.Debug("factory registered", map[string]interface{}{logger.FieldEngine: name})
}

// Initialize creates an engine from its factory and stores it for use.
func (m *Manager[T]) Initialize(name string, cfg map[string]any) error {
	instance, err := m.registry.Build(name, cfg)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.engines[name] = instance
	m.mu.Unlock()
	m.log.Info("engine initialized", map[string]interface{}{logger.FieldEngine: name})
	return nil
}

// Get returns the default engine if one is set, otherwise the selector's pick.
func (m *Manager[T]) Get(ctx context.Context) (T, error) {
	m.mu.RLock()
	defaultName := m.defaultName
	engines := maps.Clone(m.engines)
	m.mu.RUnlock()

	if defaultName != "" {
		if e, ok := engines[defaultName]; ok {
			return e, nil
		}
		var zero T
		return zero, errors.NotFound("engine", defaultName)
	}
	return m.selector.Select(ctx, engines)
}

// GetByName returns a specific initialized engine.
func (m *Manager[T]) GetByName(name string) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.engines[name]; ok {
		return e, nil
	}
	var zero T
	return zero, errors.NotFound("engine", name)
}

// SetDefault pins Get to a single initialized engine.
func (m *Manager[T]) SetDefault(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.engines[name]; !ok {
		return errors.NotFound("engine", name)
	}
	m.defaultName = name
	m.log.Info("default engine set", map[string]interface{}{logger.FieldEngine: name})
	return nil
}

// Available returns the sorted names of all initialized engines.
func (m *Manager[T]) Available() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.engines))
}
