package engine

import (
	"context"
	"sort"

	"github.com/kbukum/transcriptkit/errors"
)

// Selector picks an engine from the initialized ones.
type Selector[T Engine] interface {
	Select(ctx context.Context, engines map[string]T) (T, error)
}

// PrioritySelector tries engines in the given order and returns the first
// one that is available.
type PrioritySelector[T Engine] struct {
	Priority []string
}

// Select returns the first available engine in priority order.
func (s *PrioritySelector[T]) Select(ctx context.Context, engines map[string]T) (T, error) {
	for _, name := range s.Priority {
		if e, ok := engines[name]; ok && e.IsAvailable(ctx) {
			return e, nil
		}
	}
	var zero T
	return zero, errors.ServiceUnavailable("inference engine").WithDetail("priority", s.Priority)
}

// HealthCheckSelector picks the first available engine in name order.
type HealthCheckSelector[T Engine] struct{}

// Select returns the first engine that reports as available.
func (s *HealthCheckSelector[T]) Select(ctx context.Context, engines map[string]T) (T, error) {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if e := engines[name]; e.IsAvailable(ctx) {
			return e, nil
		}
	}
	var zero T
	return zero, errors.ServiceUnavailable("inference engine")
}
