package engine

import (
	"testing"
	"time"

	"github.com/kbukum/transcriptkit/errors"
)

func TestDecodeConfig(t *testing.T) {
	var out struct {
		URL     string        `mapstructure:"url"`
		Timeout time.Duration `mapstructure:"timeout"`
		Window  float64       `mapstructure:"window_seconds"`
	}
	err := DecodeConfig(map[string]any{
		"url":            "http://asr:8387",
		"timeout":        "90s",
		"window_seconds": "30",
		"unknown":        true,
	}, &out)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.URL != "http://asr:8387" || out.Timeout != 90*time.Second || out.Window != 30 {
		t.Errorf("unexpected decode result %+v", out)
	}
}

func TestDecodeConfig_BadType(t *testing.T) {
	var out struct {
		Timeout time.Duration `mapstructure:"timeout"`
	}
	err := DecodeConfig(map[string]any{"timeout": "soon"}, &out)
	if !errors.IsCode(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("expected INVALID_FORMAT, got %v", err)
	}
}
