package engine

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/kbukum/transcriptkit/errors"
)

// Pool errors, carried as the cause of an ENGINE_BUSY AppError.
var (
	ErrPoolFull    = stderrors.New("inference pool is full")
	ErrPoolTimeout = stderrors.New("inference pool wait timeout")
)

// PoolConfig configures an inference-slot pool.
type PoolConfig struct {
	// Name identifies this pool for metrics/logging.
	Name string
	// Slots is the number of inferences that may run at once.
	Slots int
	// MaxWait is how long to wait for a slot. 0 means fail immediately.
	MaxWait time.Duration
	// OnReject is called when an acquire fails.
	OnReject func(name string)
	// OnAcquire is called when a slot is acquired.
	OnAcquire func(name string)
	// OnRelease is called when a slot is released.
	OnRelease func(name string)
}

// Pool bounds concurrent use of the shared accelerator. Every engine call
// holds one slot for its whole duration.
type Pool struct {
	config PoolConfig
	sem    *semaphore.Weighted
	inUse  atomic.Int64
}

// NewPool creates a new pool. Slots below 1 are raised to 1.
func NewPool(config PoolConfig) *Pool {
	if config.Slots <= 0 {
		config.Slots = 1
	}
	if config.Name == "" {
		config.Name = "accelerator"
	}
	return &Pool{
		config: config,
		sem:    semaphore.NewWeighted(int64(config.Slots)),
	}
}

// Acquire reserves a slot and returns the function that gives it back.
// The release function is safe to call more than once.
func (p *Pool) Acquire(ctx context.Context) (func(), error) {
	if err := p.acquire(ctx); err != nil {
		if p.config.OnReject != nil {
			p.config.OnReject(p.config.Name)
		}
		return nil, err
	}
	p.inUse.Add(1)
	if p.config.OnAcquire != nil {
		p.config.OnAcquire(p.config.Name)
	}

	var once atomic.Bool
	return func() {
		if !once.CompareAndSwap(false, true) {
			return
		}
		p.inUse.Add(-1)
		p.sem.Release(1)
		if p.config.OnRelease != nil {
			p.config.OnRelease(p.config.Name)
		}
	}, nil
}

// Do runs fn while holding a slot.
func (p *Pool) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	release, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return fn(ctx)
}

// DoWithResult runs a function that returns a value while holding a slot.
func DoWithResult[T any](p *Pool, ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := p.Do(ctx, func(ctx context.Context) error {
		var fnErr error
		result, fnErr = fn(ctx)
		return fnErr
	})
	return result, err
}

func (p *Pool) acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.sem.TryAcquire(1) {
		return nil
	}
	if p.config.MaxWait <= 0 {
		return errors.EngineBusy(p.config.Name, ErrPoolFull)
	}

	waitCtx, cancel := context.WithTimeout(ctx, p.config.MaxWait)
	defer cancel()
	if err := p.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.EngineBusy(p.config.Name, ErrPoolTimeout)
	}
	return nil
}

// InUse returns the number of slots currently held.
func (p *Pool) InUse() int { return int(p.inUse.Load()) }

// Available returns the number of free slots.
func (p *Pool) Available() int { return p.config.Slots - p.InUse() }

// Slots returns the pool capacity.
func (p *Pool) Slots() int { return p.config.Slots }

// Name returns the pool name.
func (p *Pool) Name() string { return p.config.Name }
