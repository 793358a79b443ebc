package engine

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/kbukum/transcriptkit/errors"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		BackoffFactor:  2.0,
	}
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	calls := 0
	got, err := Retry(context.Background(), DefaultRetryConfig(), func(context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil || got != "ok" {
		t.Fatalf("expected ok, got %q, %v", got, err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetry_RetriesEngineFailures(t *testing.T) {
	calls := 0
	got, err := Retry(context.Background(), fastRetry(3), func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.EngineFailure("whisper", fmt.Errorf("oom"))
		}
		return "ok", nil
	})
	if err != nil || got != "ok" {
		t.Fatalf("expected ok, got %q, %v", got, err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	var retries []int
	cfg := fastRetry(3)
	cfg.OnRetry = func(attempt int, _ error, _ time.Duration) { retries = append(retries, attempt) }

	_, err := Retry(context.Background(), cfg, func(context.Context) (int, error) {
		calls++
		return 0, errors.EngineBusy("accelerator", nil)
	})
	if !errors.IsCode(err, errors.ErrCodeEngineBusy) {
		t.Fatalf("expected last error returned, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
	if len(retries) != 2 || retries[0] != 1 || retries[1] != 2 {
		t.Errorf("expected OnRetry for attempts 1 and 2, got %v", retries)
	}
}

func TestRetry_DoesNotRetryPermanentErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"precondition", errors.Precondition("align", "unsorted")},
		{"plain error", fmt.Errorf("boom")},
		{"context canceled", context.Canceled},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			_, err := Retry(context.Background(), fastRetry(5), func(context.Context) (int, error) {
				calls++
				return 0, tc.err
			})
			if !stderrors.Is(err, tc.err) {
				t.Errorf("expected %v, got %v", tc.err, err)
			}
			if calls != 1 {
				t.Errorf("expected 1 call, got %d", calls)
			}
		})
	}
}

func TestRetry_RespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastRetry(5)
	cfg.InitialBackoff = time.Second
	cfg.MaxBackoff = time.Second

	calls := 0
	_, err := Retry(ctx, cfg, func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, errors.Timeout("diarize")
	})
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestCalculateBackoff_Table(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     time.Second,
		BackoffFactor:  2.0,
	}
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{5, time.Second},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tc.attempt), func(t *testing.T) {
			if got := calculateBackoff(tc.attempt, cfg); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestCalculateBackoff_JitterBounds(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     time.Second,
		BackoffFactor:  2.0,
		Jitter:         0.5,
	}
	for range 100 {
		got := calculateBackoff(1, cfg)
		if got < 50*time.Millisecond || got > 150*time.Millisecond {
			t.Fatalf("jittered backoff %v out of bounds", got)
		}
	}
}
