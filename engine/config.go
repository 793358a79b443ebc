package engine

import (
	"time"

	"github.com/kbukum/transcriptkit/validation"
)

const (
	defaultTranscriber   = "whisper"
	defaultDiarizer      = "pyannote"
	defaultSlots         = 1
	defaultMaxWait       = 30 * time.Second
	defaultWindowSeconds = 20.0
	defaultStrideSeconds = 4.0
)

// Config selects and tunes the inference engines.
type Config struct {
	// Transcriber is the name of the speech-to-text engine to use.
	Transcriber string `yaml:"transcriber" mapstructure:"transcriber" validate:"required"`
	// Diarizer is the name of the diarization engine to use.
	Diarizer string `yaml:"diarizer" mapstructure:"diarizer" validate:"required"`
	// Slots bounds concurrent inferences on the shared accelerator.
	Slots int `yaml:"slots" mapstructure:"slots" validate:"gte=1"`
	// MaxWait is how long a call waits for a free slot.
	MaxWait time.Duration `yaml:"max_wait" mapstructure:"max_wait" validate:"gte=0"`
	// WindowSeconds is the ASR decode window length.
	WindowSeconds float64 `yaml:"window_seconds" mapstructure:"window_seconds" validate:"gt=0"`
	// StrideSeconds is how much consecutive windows share.
	StrideSeconds float64 `yaml:"stride_seconds" mapstructure:"stride_seconds" validate:"gte=0,ltfield=WindowSeconds"`
	// Profile is the default diarization profile.
	Profile string `yaml:"profile" mapstructure:"profile" validate:"oneof=auto high_quality podcast_interview noisy_meeting aggressive"`
	// Retry tunes caller-side retry of failed engine calls.
	Retry RetryConfig `yaml:"retry" mapstructure:"retry"`
	// Providers holds per-engine settings keyed by engine name, handed to
	// the engine's Factory as-is.
	Providers map[string]map[string]any `yaml:"providers" mapstructure:"providers"`
}

// DefaultConfig returns a Config with all defaults applied.
func DefaultConfig() Config {
	var c Config
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills zero values with defaults.
func (c *Config) ApplyDefaults() {
	if c.Transcriber == "" {
		c.Transcriber = defaultTranscriber
	}
	if c.Diarizer == "" {
		c.Diarizer = defaultDiarizer
	}
	if c.Slots <= 0 {
		c.Slots = defaultSlots
	}
	if c.MaxWait == 0 {
		c.MaxWait = defaultMaxWait
	}
	if c.WindowSeconds == 0 {
		c.WindowSeconds = defaultWindowSeconds
	}
	if c.StrideSeconds == 0 {
		c.StrideSeconds = defaultStrideSeconds
	}
	if c.Profile == "" {
		c.Profile = ProfileAuto
	}
	c.Retry.ApplyDefaults()
	if c.Providers == nil {
		c.Providers = make(map[string]map[string]any)
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// ProviderConfig returns the settings for the named engine, never nil.
// Window settings are injected so transcribers decode with the configured plan.
func (c *Config) ProviderConfig(name string) map[string]any {
	out := map[string]any{
		"window_seconds": c.WindowSeconds,
		"stride_seconds": c.StrideSeconds,
	}
	for k, v := range c.Providers[name] {
		out[k] = v
	}
	return out
}

// PoolConfig derives the accelerator pool settings.
func (c *Config) PoolConfig() PoolConfig {
	return PoolConfig{Name: "accelerator", Slots: c.Slots, MaxWait: c.MaxWait}
}
