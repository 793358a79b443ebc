package engine

import (
	"testing"
	"time"

	"github.com/kbukum/transcriptkit/errors"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Transcriber != "whisper" || cfg.Diarizer != "pyannote" {
		t.Errorf("unexpected default engines %q/%q", cfg.Transcriber, cfg.Diarizer)
	}
	if cfg.WindowSeconds != 20 || cfg.StrideSeconds != 4 {
		t.Errorf("expected 20s windows with 4s stride, got %v/%v", cfg.WindowSeconds, cfg.StrideSeconds)
	}
	if cfg.Slots != 1 || cfg.MaxWait != 30*time.Second {
		t.Errorf("unexpected pool defaults %d/%v", cfg.Slots, cfg.MaxWait)
	}
	if cfg.Profile != ProfileAuto {
		t.Errorf("expected auto profile, got %q", cfg.Profile)
	}
	if cfg.Retry.MaxAttempts != 3 {
		t.Errorf("expected 3 attempts, got %d", cfg.Retry.MaxAttempts)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestConfig_Validate_Table(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"stride not below window", func(c *Config) { c.StrideSeconds = c.WindowSeconds }},
		{"unknown profile", func(c *Config) { c.Profile = "studio" }},
		{"too many attempts", func(c *Config) { c.Retry.MaxAttempts = 50 }},
		{"max backoff below initial", func(c *Config) { c.Retry.MaxBackoff = time.Millisecond }},
		{"jitter above one", func(c *Config) { c.Retry.Jitter = 2 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.IsCode(err, errors.ErrCodeInvalidInput) {
				t.Errorf("expected INVALID_INPUT, got %v", err)
			}
		})
	}
}

func TestConfig_ProviderConfig(t *testing.T) {
	cfg := Config{Providers: map[string]map[string]any{
		"whisper": {"url": "http://asr:8387", "window_seconds": 30.0},
	}}
	cfg.ApplyDefaults()

	got := cfg.ProviderConfig("whisper")
	if got["url"] != "http://asr:8387" {
		t.Errorf("expected url passed through, got %v", got["url"])
	}
	if got["window_seconds"] != 30.0 {
		t.Errorf("expected provider override to win, got %v", got["window_seconds"])
	}
	if got["stride_seconds"] != 4.0 {
		t.Errorf("expected injected stride, got %v", got["stride_seconds"])
	}

	if empty := cfg.ProviderConfig("pyannote"); empty == nil {
		t.Error("expected non-nil map for unconfigured engine")
	}
}
