package engine

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/transcriptkit/errors"
)

func TestPool_AllowsCallsWithinLimit(t *testing.T) {
	p := NewPool(PoolConfig{Name: "test", Slots: 3})

	var calls atomic.Int32
	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := p.Do(context.Background(), func(context.Context) error {
				calls.Add(1)
				time.Sleep(10 * time.Millisecond)
				return nil
			})
			if err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		}()
	}
	wg.Wait()

	if calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", calls.Load())
	}
	if p.InUse() != 0 {
		t.Errorf("expected all slots released, %d in use", p.InUse())
	}
}

func TestPool_RejectsWhenFull(t *testing.T) {
	var rejected atomic.Int32
	p := NewPool(PoolConfig{
		Name:     "test",
		Slots:    1,
		OnReject: func(string) { rejected.Add(1) },
	})

	release, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	defer release()

	_, err = p.Acquire(context.Background())
	if !errors.IsCode(err, errors.ErrCodeEngineBusy) {
		t.Fatalf("expected ENGINE_BUSY, got %v", err)
	}
	if !stderrors.Is(err, ErrPoolFull) {
		t.Errorf("expected ErrPoolFull cause, got %v", err)
	}
	if rejected.Load() != 1 {
		t.Errorf("expected OnReject once, got %d", rejected.Load())
	}
}

func TestPool_WaitTimeout(t *testing.T) {
	p := NewPool(PoolConfig{Name: "test", Slots: 1, MaxWait: 20 * time.Millisecond})

	release, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	defer release()

	start := time.Now()
	_, err = p.Acquire(context.Background())
	if !stderrors.Is(err, ErrPoolTimeout) {
		t.Fatalf("expected ErrPoolTimeout, got %v", err)
	}
	if !errors.IsRetryable(err) {
		t.Error("busy pool errors should be retryable")
	}
	if time.Since(start) < 15*time.Millisecond {
		t.Error("expected acquire to wait before timing out")
	}
}

func TestPool_WaitsForRelease(t *testing.T) {
	p := NewPool(PoolConfig{Name: "test", Slots: 1, MaxWait: time.Second})

	release, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	go func() {
		time.Sleep(10 * time.Millisecond)
		release()
	}()

	second, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("expected slot after release, got %v", err)
	}
	second()
}

func TestPool_ContextCancelledWhileWaiting(t *testing.T) {
	p := NewPool(PoolConfig{Name: "test", Slots: 1, MaxWait: time.Second})

	release, _ := p.Acquire(context.Background())
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := p.Acquire(ctx)
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPool_ReleaseIsIdempotent(t *testing.T) {
	var released atomic.Int32
	p := NewPool(PoolConfig{Slots: 2, OnRelease: func(string) { released.Add(1) }})

	release, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if p.InUse() != 1 || p.Available() != 1 {
		t.Fatalf("expected 1 in use and 1 available, got %d/%d", p.InUse(), p.Available())
	}
	release()
	release()

	if p.InUse() != 0 {
		t.Errorf("expected 0 in use, got %d", p.InUse())
	}
	if released.Load() != 1 {
		t.Errorf("expected OnRelease once, got %d", released.Load())
	}
}

func TestPool_DoWithResult(t *testing.T) {
	p := NewPool(PoolConfig{Slots: 1})
	got, err := DoWithResult(p, context.Background(), func(context.Context) (int, error) {
		return 42, nil
	})
	if err != nil || got != 42 {
		t.Errorf("expected 42, nil; got %d, %v", got, err)
	}
}

func TestNewPool_Defaults(t *testing.T) {
	p := NewPool(PoolConfig{})
	if p.Slots() != 1 {
		t.Errorf("expected 1 slot, got %d", p.Slots())
	}
	if p.Name() != "accelerator" {
		t.Errorf("expected default name, got %q", p.Name())
	}
}
