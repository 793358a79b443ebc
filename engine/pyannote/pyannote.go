// Package pyannote adapts a pyannote.audio HTTP sidecar to engine.Diarizer.
package pyannote

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kbukum/transcriptkit/engine"
	"github.com/kbukum/transcriptkit/errors"
	"github.com/kbukum/transcriptkit/transcript"
)

const (
	// EngineName is the registered name for the Pyannote engine.
	EngineName = "pyannote"

	defaultURL     = "http://localhost:8388"
	defaultTimeout = 300 * time.Second
)

// Config holds configuration for the Pyannote engine.
type Config struct {
	BaseURL string        `json:"base_url" yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	// Profile is used when a call does not name one.
	Profile string `json:"profile,omitempty" yaml:"profile" mapstructure:"profile"`
}

// Provider implements engine.Diarizer using the Pyannote HTTP sidecar.
type Provider struct {
	cfg     Config
	sidecar *engine.Sidecar
}

// NewProvider creates a new Pyannote engine.
func NewProvider(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Profile == "" {
		cfg.Profile = engine.ProfileAuto
	}
	return &Provider{
		cfg:     cfg,
		sidecar: engine.NewSidecar(EngineName, strings.TrimRight(cfg.BaseURL, "/"), cfg.Timeout),
	}
}

// Factory returns an engine.Factory that creates Pyannote engines from a
// generic config map.
func Factory() engine.Factory[engine.Diarizer] {
	return func(raw map[string]any) (engine.Diarizer, error) {
		var cfg Config
		if err := engine.DecodeConfig(raw, &cfg); err != nil {
			return nil, err
		}
		return NewProvider(cfg), nil
	}
}

// Name returns the engine name.
func (p *Provider) Name() string { return EngineName }

// IsAvailable checks if the Pyannote sidecar is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	return p.sidecar.Healthy(ctx)
}

// Diarize sends the recording to the sidecar and returns raw speaker
// intervals. Speaker bounds are only sent when set; the sidecar ignores a
// min/max pair unless both are present.
func (p *Provider) Diarize(ctx context.Context, audio engine.Audio, opts engine.DiarizeOptions) ([]transcript.SpeakerInterval, error) {
	data, err := os.ReadFile(audio.Path)
	if err != nil {
		return nil, errors.NotFound("audio file", audio.Path).WithCause(err)
	}

	profile := opts.Profile
	if profile == "" {
		profile = p.cfg.Profile
	}
	fields := map[string]string{"profile": profile}
	if opts.NumSpeakers > 0 {
		fields["num_speakers"] = strconv.Itoa(opts.NumSpeakers)
	}
	if opts.MinSpeakers > 0 {
		fields["min_speakers"] = strconv.Itoa(opts.MinSpeakers)
	}
	if opts.MaxSpeakers > 0 {
		fields["max_speakers"] = strconv.Itoa(opts.MaxSpeakers)
	}
	if audio.Language != "" {
		fields["language"] = audio.Language
	}

	var resp pyannoteResponse
	form := engine.Form{Fields: fields, FileName: filepath.Base(audio.Path), Audio: data}
	if err := p.sidecar.Post(ctx, "/diarize", form, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, errors.EngineFailure(EngineName, stderrors.New(resp.Error))
	}
	return toIntervals(&resp), nil
}

// --- internal Pyannote API types ---

type pyannoteResponse struct {
	Segments    []pyannoteSegment `json:"segments"`
	NumSpeakers int               `json:"num_speakers"`
	Profile     string            `json:"profile,omitempty"`
	Error       string            `json:"error,omitempty"`
}

type pyannoteSegment struct {
	SpeakerID string  `json:"speaker_id"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

func toIntervals(resp *pyannoteResponse) []transcript.SpeakerInterval {
	out := make([]transcript.SpeakerInterval, len(resp.Segments))
	for i, seg := range resp.Segments {
		out[i] = transcript.SpeakerInterval{
			Start:   seg.StartTime,
			End:     seg.EndTime,
			Speaker: seg.SpeakerID,
		}
	}
	return out
}
