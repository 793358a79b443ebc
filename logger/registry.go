package logger

import "sync"

var registry = &componentRegistry{loggers: make(map[string]*Logger)}

// componentRegistry caches one logger per component name.
type componentRegistry struct {
	mu      sync.Mutex
	loggers map[string]*Logger
	pinned  map[string]bool
}

// Register pins a logger under name. Pinned loggers survive Init.
func Register(name string, l *Logger) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.loggers[name] = l
	if registry.pinned == nil {
		registry.pinned = make(map[string]bool)
	}
	registry.pinned[name] = true
}

// Get returns the logger for a component, deriving it from the global
// logger on first use.
func Get(name string) *Logger {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if l, ok := registry.loggers[name]; ok {
		return l
	}
	l := Global().WithComponent(name)
	registry.loggers[name] = l
	return l
}

func (r *componentRegistry) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name := range r.loggers {
		if !r.pinned[name] {
			delete(r.loggers, name)
		}
	}
}
